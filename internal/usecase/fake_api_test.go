package usecase

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/riskibarqy/sleeper-trades/internal/domain/trades"
)

// fakeAPI is an in-memory PlatformAPI with per-endpoint call counters.
type fakeAPI struct {
	players      trades.Directory
	user         map[string]any
	state        map[string]any
	leagues      []map[string]any
	rosters      map[string][]map[string]any
	members      map[string][]map[string]any
	transactions map[string]map[int][]trades.Transaction
	picks        map[string][]trades.TradedPick

	playersCalls atomic.Int32
	userCalls    atomic.Int32
	stateCalls   atomic.Int32
	leaguesCalls atomic.Int32
	txCalls      atomic.Int32

	mu              sync.Mutex
	requestedRounds []int
}

func (f *fakeAPI) Players(context.Context) trades.Directory {
	f.playersCalls.Add(1)
	return f.players
}

func (f *fakeAPI) UserByUsername(_ context.Context, username string) map[string]any {
	f.userCalls.Add(1)
	return f.user
}

func (f *fakeAPI) State(context.Context) map[string]any {
	f.stateCalls.Add(1)
	return f.state
}

func (f *fakeAPI) LeaguesForUser(_ context.Context, userID string, season int) []map[string]any {
	f.leaguesCalls.Add(1)
	return f.leagues
}

func (f *fakeAPI) Rosters(_ context.Context, leagueID string) []map[string]any {
	return f.rosters[leagueID]
}

func (f *fakeAPI) LeagueUsers(_ context.Context, leagueID string) []map[string]any {
	return f.members[leagueID]
}

func (f *fakeAPI) Transactions(_ context.Context, leagueID string, round int) []trades.Transaction {
	f.txCalls.Add(1)
	f.mu.Lock()
	f.requestedRounds = append(f.requestedRounds, round)
	f.mu.Unlock()
	if pages, ok := f.transactions[leagueID]; ok {
		return pages[round]
	}
	return nil
}

func (f *fakeAPI) TradedPicks(_ context.Context, leagueID string) []trades.TradedPick {
	return f.picks[leagueID]
}

func (f *fakeAPI) roundsRequested() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, len(f.requestedRounds))
	copy(out, f.requestedRounds)
	return out
}
