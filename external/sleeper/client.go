package sleeper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sleeper-trades/internal/domain/trades"
	"github.com/riskibarqy/sleeper-trades/internal/platform/logging"
	"github.com/riskibarqy/sleeper-trades/internal/platform/resilience"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/semaphore"
)

const (
	defaultBaseURL       = "https://api.sleeper.app/v1"
	defaultTimeout       = 20 * time.Second
	defaultMaxConcurrent = 8
	maxBodyBytes         = 32 << 20
)

var errSleeperTransient = crerr.New("sleeper transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxConcurrent  int
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the Sleeper read-only JSON API. A single weighted gate
// caps in-flight requests process-wide; every endpoint wrapper absorbs
// transport, status, and decode failures into an empty result so callers
// degrade instead of erroring.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	gate           *semaphore.Weighted
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = timeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = defaultMaxConcurrent
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		gate:           semaphore.NewWeighted(int64(maxConcurrent)),
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// Players returns the full player directory, or nil when unavailable.
func (c *Client) Players(ctx context.Context) trades.Directory {
	var out trades.Directory
	if !c.getJSON(ctx, "/players/nfl", &out) {
		return nil
	}
	return out
}

// UserByUsername returns the raw user object, or nil when the lookup fails
// or the username does not exist.
func (c *Client) UserByUsername(ctx context.Context, username string) map[string]any {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil
	}
	var out map[string]any
	if !c.getJSON(ctx, "/user/"+url.PathEscape(username), &out) {
		return nil
	}
	return out
}

// State returns the platform state object for the sport, or nil.
func (c *Client) State(ctx context.Context) map[string]any {
	var out map[string]any
	if !c.getJSON(ctx, "/state/nfl", &out) {
		return nil
	}
	return out
}

// LeaguesForUser returns the raw league list for a user and season.
func (c *Client) LeaguesForUser(ctx context.Context, userID string, season int) []map[string]any {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil
	}
	path := "/user/" + url.PathEscape(userID) + "/leagues/nfl/" + strconv.Itoa(season)
	var out []map[string]any
	if !c.getJSON(ctx, path, &out) {
		return nil
	}
	return out
}

// Rosters returns the raw roster list of a league.
func (c *Client) Rosters(ctx context.Context, leagueID string) []map[string]any {
	var out []map[string]any
	if !c.getJSON(ctx, "/league/"+url.PathEscape(leagueID)+"/rosters", &out) {
		return nil
	}
	return out
}

// LeagueUsers returns the raw member list of a league.
func (c *Client) LeagueUsers(ctx context.Context, leagueID string) []map[string]any {
	var out []map[string]any
	if !c.getJSON(ctx, "/league/"+url.PathEscape(leagueID)+"/users", &out) {
		return nil
	}
	return out
}

// Transactions returns one round's transaction page for a league.
func (c *Client) Transactions(ctx context.Context, leagueID string, round int) []trades.Transaction {
	path := "/league/" + url.PathEscape(leagueID) + "/transactions/" + strconv.Itoa(round)
	var out []trades.Transaction
	if !c.getJSON(ctx, path, &out) {
		return nil
	}
	return out
}

// TradedPicks returns the traded draft picks of a league.
func (c *Client) TradedPicks(ctx context.Context, leagueID string) []trades.TradedPick {
	var out []trades.TradedPick
	if !c.getJSON(ctx, "/league/"+url.PathEscape(leagueID)+"/traded_picks", &out) {
		return nil
	}
	return out
}

// getJSON fetches a path and decodes it into target. It returns false on any
// transport error, non-2xx status, or malformed body; the failure is logged
// at warn level and target is left untouched.
func (c *Client) getJSON(ctx context.Context, path string, target any) bool {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "sleeper circuit breaker rejected request",
				"path", path,
				"state", c.breaker.State(),
			)
			return false
		}
	}

	fullURL := c.baseURL + path

	out, err, _ := c.flight.Do(path, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errSleeperTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		c.logger.WarnContext(ctx, "sleeper request failed", "url", fullURL, "error", err)
		return false
	}

	raw, ok := out.([]byte)
	if !ok {
		c.logger.WarnContext(ctx, "unexpected sleeper payload type", "url", fullURL)
		return false
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		c.logger.WarnContext(ctx, "decode sleeper payload failed", "url", fullURL, "error", err)
		return false
	}

	return true
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, err := c.doOnce(ctx, fullURL)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !crerr.Is(err, errSleeperTransient) || attempt == c.maxRetries {
			break
		}

		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = crerr.New("sleeper request failed")
	}
	return nil, lastErr
}

// doOnce performs a single request. The gate is held only for the network
// exchange so slow callers never starve the pool with body processing.
func (c *Client) doOnce(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, crerr.Wrap(err, "build request")
	}
	req.Header.Set("accept", "application/json")

	if err := c.gate.Acquire(ctx, 1); err != nil {
		return nil, crerr.Wrap(err, "acquire request gate")
	}
	resp, err := c.httpClient.Do(req)
	c.gate.Release(1)
	if err != nil {
		return nil, crerr.Wrapf(errSleeperTransient, "send request: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, crerr.Wrapf(errSleeperTransient, "read response body: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if isRetryableStatus(resp.StatusCode) {
			return nil, crerr.Wrapf(errSleeperTransient, "status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
		}
		return nil, fmt.Errorf("status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
	}

	return raw, nil
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
