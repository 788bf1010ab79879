package usecase

import (
	"context"

	"github.com/riskibarqy/sleeper-trades/internal/domain/trades"
	"github.com/riskibarqy/sleeper-trades/internal/platform/cache"
	"github.com/riskibarqy/sleeper-trades/internal/platform/logging"
)

const directoryCacheKey = "players:nfl"

// PlayerStore is the durable tier behind the in-memory directory cache.
type PlayerStore interface {
	Load() (trades.Directory, bool)
	Store(trades.Directory) error
}

// DirectoryService owns the player directory: an in-memory TTL tier backed by
// a durable file, backed by the network. The directory payload is large, so a
// file hit saves a multi-megabyte download on every process start.
type DirectoryService struct {
	api    PlatformAPI
	file   PlayerStore
	memory *cache.Store
	logger *logging.Logger
}

func NewDirectoryService(api PlatformAPI, file PlayerStore, memory *cache.Store, logger *logging.Logger) *DirectoryService {
	if logger == nil {
		logger = logging.Default()
	}
	return &DirectoryService{
		api:    api,
		file:   file,
		memory: memory,
		logger: logger,
	}
}

// Directory returns the player directory, never nil. Concurrent cold starts
// coalesce into a single load; a failed fetch caches an empty directory until
// the TTL lapses, which degrades names to raw ids instead of failing feeds.
func (s *DirectoryService) Directory(ctx context.Context) trades.Directory {
	ctx, span := startEngineSpan(ctx, "DirectoryService.Directory")
	defer span.End()

	value, err := s.memory.GetOrLoad(ctx, directoryCacheKey, func(ctx context.Context) (any, error) {
		return s.loadDirectory(ctx), nil
	})
	if err != nil {
		return trades.Directory{}
	}
	dir, _ := value.(trades.Directory)
	if dir == nil {
		return trades.Directory{}
	}
	return dir
}

func (s *DirectoryService) loadDirectory(ctx context.Context) trades.Directory {
	if s.file != nil {
		if dir, ok := s.file.Load(); ok {
			return dir
		}
	}

	dir := s.api.Players(ctx)
	if len(dir) == 0 {
		s.logger.WarnContext(ctx, "player directory unavailable, names degrade to raw ids")
		return trades.Directory{}
	}

	if s.file != nil {
		if err := s.file.Store(dir); err != nil {
			s.logger.WarnContext(ctx, "persist player directory failed", "error", err)
		}
	}

	return dir
}

// PlayerName renders a player id as a display string, "Jane Doe (WR BUF)"
// style. Unknown ids come back verbatim so the feed never hides an asset.
func PlayerName(dir trades.Directory, pid string) string {
	if pid == "" {
		return "Unknown"
	}

	record, ok := dir[pid].(map[string]any)
	if !ok {
		return pid
	}

	name := asString(record["full_name"])
	if name == "" {
		name = trimJoin(asString(record["first_name"]), asString(record["last_name"]))
	}
	detail := trimJoin(asString(record["position"]), asString(record["team"]))
	if detail != "" {
		detail = "(" + detail + ")"
	}

	out := trimJoin(name, detail)
	if out == "" {
		return pid
	}
	return out
}
