package sleeper

import (
	"fmt"
	"os"
	"path/filepath"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sleeper-trades/internal/domain/trades"
	"github.com/riskibarqy/sleeper-trades/internal/platform/logging"
)

// PlayerFile persists the player directory as a single JSON document so a
// fresh process can serve names without re-downloading the multi-megabyte
// directory. A missing or corrupt file is treated as absence, never an error.
type PlayerFile struct {
	path   string
	logger *logging.Logger
}

func NewPlayerFile(path string, logger *logging.Logger) *PlayerFile {
	if logger == nil {
		logger = logging.Default()
	}
	return &PlayerFile{path: path, logger: logger}
}

func (f *PlayerFile) Path() string {
	return f.path
}

// Load reads the directory from disk. The second return is false when the
// file is missing, unreadable, or does not decode to a JSON object.
func (f *PlayerFile) Load() (trades.Directory, bool) {
	if f == nil || f.path == "" {
		return nil, false
	}

	raw, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			f.logger.Warn("read player file failed", "path", f.path, "error", err)
		}
		return nil, false
	}

	var dir trades.Directory
	if err := sonic.Unmarshal(raw, &dir); err != nil {
		f.logger.Warn("player file is corrupt, ignoring", "path", f.path, "error", err)
		return nil, false
	}
	if dir == nil {
		return nil, false
	}

	return dir, true
}

// Store writes the directory atomically via a temp file rename so readers
// never observe a partial document.
func (f *PlayerFile) Store(dir trades.Directory) error {
	if f == nil || f.path == "" {
		return crerr.New("player file path is not configured")
	}
	if dir == nil {
		return crerr.New("player directory is required")
	}

	raw, err := sonic.Marshal(dir)
	if err != nil {
		return crerr.Wrap(err, "encode player directory")
	}

	parent := filepath.Dir(f.path)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return crerr.Wrap(err, "create cache directory")
	}

	tmp, err := os.CreateTemp(parent, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return crerr.Wrap(err, "create temp player file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return crerr.Wrap(err, "write temp player file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return crerr.Wrap(err, "close temp player file")
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return crerr.Wrap(err, fmt.Sprintf("rename temp player file to %s", f.path))
	}

	return nil
}
