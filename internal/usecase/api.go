package usecase

import (
	"context"

	"github.com/riskibarqy/sleeper-trades/internal/domain/trades"
)

// PlatformAPI is the read surface of the fantasy platform. Implementations
// must degrade: every method returns its zero value on upstream failure
// instead of an error, so the aggregation pipeline keeps going with whatever
// data arrived.
type PlatformAPI interface {
	Players(ctx context.Context) trades.Directory
	UserByUsername(ctx context.Context, username string) map[string]any
	State(ctx context.Context) map[string]any
	LeaguesForUser(ctx context.Context, userID string, season int) []map[string]any
	Rosters(ctx context.Context, leagueID string) []map[string]any
	LeagueUsers(ctx context.Context, leagueID string) []map[string]any
	Transactions(ctx context.Context, leagueID string, round int) []trades.Transaction
	TradedPicks(ctx context.Context, leagueID string) []trades.TradedPick
}
