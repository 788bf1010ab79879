package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/sleeper-trades/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	LogLevel       logging.Level

	CORSAllowedOrigins []string

	SleeperBaseURL               string
	SleeperMaxConcurrent         int
	SleeperTimeout               time.Duration
	SleeperMaxRetries            int
	SleeperCircuitEnabled        bool
	SleeperCircuitFailureCount   int
	SleeperCircuitOpenTimeout    time.Duration
	SleeperCircuitHalfOpenMaxReq int

	CacheDir       string
	PlayersFile    string
	PlayersTTL     time.Duration
	UserCacheTTL   time.Duration
	UserCacheSize  int
	ResultCacheTTL time.Duration
	ResultCacheMax int

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	maxConcurrent, err := getEnvAsInt("SLEEPER_MAX_CONCURRENT", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse SLEEPER_MAX_CONCURRENT: %w", err)
	}
	if maxConcurrent < 1 {
		return Config{}, fmt.Errorf("SLEEPER_MAX_CONCURRENT must be >= 1")
	}

	sleeperTimeout, err := time.ParseDuration(getEnv("SLEEPER_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SLEEPER_TIMEOUT: %w", err)
	}
	if sleeperTimeout <= 0 {
		return Config{}, fmt.Errorf("SLEEPER_TIMEOUT must be > 0")
	}

	sleeperMaxRetries, err := getEnvAsInt("SLEEPER_MAX_RETRIES", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse SLEEPER_MAX_RETRIES: %w", err)
	}
	if sleeperMaxRetries < 0 {
		return Config{}, fmt.Errorf("SLEEPER_MAX_RETRIES must be >= 0")
	}

	circuitEnabled, err := strconv.ParseBool(getEnv("SLEEPER_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SLEEPER_CIRCUIT_ENABLED: %w", err)
	}
	circuitFailureCount, err := getEnvAsInt("SLEEPER_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SLEEPER_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if circuitFailureCount < 1 {
		return Config{}, fmt.Errorf("SLEEPER_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	circuitOpenTimeout, err := time.ParseDuration(getEnv("SLEEPER_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SLEEPER_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if circuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("SLEEPER_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	circuitHalfOpenMaxReq, err := getEnvAsInt("SLEEPER_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SLEEPER_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if circuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("SLEEPER_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	cacheDir := strings.TrimSpace(getEnv("SLEEPER_CACHE_DIR", ".sleeper_cache"))
	if cacheDir == "" {
		return Config{}, fmt.Errorf("SLEEPER_CACHE_DIR cannot be empty")
	}
	playersFile := strings.TrimSpace(getEnv("SLEEPER_PLAYERS_FILE", ""))
	if playersFile == "" {
		playersFile = filepath.Join(cacheDir, "players_nfl.json")
	}

	playersTTL, err := time.ParseDuration(getEnv("PLAYERS_CACHE_TTL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PLAYERS_CACHE_TTL: %w", err)
	}
	if playersTTL <= 0 {
		return Config{}, fmt.Errorf("PLAYERS_CACHE_TTL must be > 0")
	}

	userCacheTTL, err := time.ParseDuration(getEnv("USER_CACHE_TTL", "1h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse USER_CACHE_TTL: %w", err)
	}
	if userCacheTTL <= 0 {
		return Config{}, fmt.Errorf("USER_CACHE_TTL must be > 0")
	}
	userCacheSize, err := getEnvAsInt("USER_CACHE_SIZE", 1024)
	if err != nil {
		return Config{}, fmt.Errorf("parse USER_CACHE_SIZE: %w", err)
	}
	if userCacheSize < 1 {
		return Config{}, fmt.Errorf("USER_CACHE_SIZE must be >= 1")
	}

	resultCacheTTL, err := time.ParseDuration(getEnv("RESULT_CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse RESULT_CACHE_TTL: %w", err)
	}
	if resultCacheTTL <= 0 {
		return Config{}, fmt.Errorf("RESULT_CACHE_TTL must be > 0")
	}
	resultCacheMax, err := getEnvAsInt("RESULT_CACHE_SIZE", 128)
	if err != nil {
		return Config{}, fmt.Errorf("parse RESULT_CACHE_SIZE: %w", err)
	}
	if resultCacheMax < 1 {
		return Config{}, fmt.Errorf("RESULT_CACHE_SIZE must be >= 1")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "45s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cfg := Config{
		AppEnv:                       appEnv,
		ServiceName:                  getEnv("APP_SERVICE_NAME", "sleeper-trades-api"),
		ServiceVersion:               getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                     getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                  readTimeout,
		WriteTimeout:                 writeTimeout,
		LogLevel:                     parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		CORSAllowedOrigins:           splitCommaList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		SleeperBaseURL:               strings.TrimSpace(getEnv("SLEEPER_BASE_URL", "https://api.sleeper.app/v1")),
		SleeperMaxConcurrent:         maxConcurrent,
		SleeperTimeout:               sleeperTimeout,
		SleeperMaxRetries:            sleeperMaxRetries,
		SleeperCircuitEnabled:        circuitEnabled,
		SleeperCircuitFailureCount:   circuitFailureCount,
		SleeperCircuitOpenTimeout:    circuitOpenTimeout,
		SleeperCircuitHalfOpenMaxReq: circuitHalfOpenMaxReq,
		CacheDir:                     cacheDir,
		PlayersFile:                  playersFile,
		PlayersTTL:                   playersTTL,
		UserCacheTTL:                 userCacheTTL,
		UserCacheSize:                userCacheSize,
		ResultCacheTTL:               resultCacheTTL,
		ResultCacheMax:               resultCacheMax,
		PprofEnabled:                 pprofEnabled,
		PprofAddr:                    pprofAddr,
		UptraceEnabled:               uptraceEnabled,
		UptraceDSN:                   uptraceDSN,
		PyroscopeEnabled:             pyroscopeEnabled,
		PyroscopeServerAddress:       pyroscopeServerAddress,
		PyroscopeAuthToken:           strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:       strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:   strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:          pyroscopeUploadRate,
	}

	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if cfg.SleeperBaseURL == "" {
		return Config{}, fmt.Errorf("SLEEPER_BASE_URL cannot be empty")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func splitCommaList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
