package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	sonic "github.com/bytedance/sonic"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/sleeper-trades/internal/domain/trades"
	"github.com/riskibarqy/sleeper-trades/internal/platform/logging"
	"github.com/valyala/bytebufferpool"
)

const (
	firstRound = 1
	lastRound  = 18
)

// TransactionCollector pulls a league's transaction pages round by round on a
// shared worker pool and flattens them into one deduplicated list. Page order
// follows the requested rounds, so dedup keeps the earliest round's copy.
type TransactionCollector struct {
	api    PlatformAPI
	pool   *ants.Pool
	logger *logging.Logger
}

func NewTransactionCollector(api PlatformAPI, pool *ants.Pool, logger *logging.Logger) *TransactionCollector {
	if logger == nil {
		logger = logging.Default()
	}
	return &TransactionCollector{
		api:    api,
		pool:   pool,
		logger: logger,
	}
}

// DefaultRounds is the full regular-season round span fetched when a request
// does not narrow it.
func DefaultRounds() []int {
	out := make([]int, 0, lastRound-firstRound+1)
	for r := firstRound; r <= lastRound; r++ {
		out = append(out, r)
	}
	return out
}

// Collect fetches the given rounds concurrently and returns the deduplicated
// union. A nil or empty rounds slice means the full default span.
func (c *TransactionCollector) Collect(ctx context.Context, leagueID string, rounds []int) []trades.Transaction {
	ctx, span := startEngineSpan(ctx, "TransactionCollector.Collect")
	defer span.End()

	if len(rounds) == 0 {
		rounds = DefaultRounds()
	}

	pages := make([][]trades.Transaction, len(rounds))
	var wg sync.WaitGroup
	for i, round := range rounds {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			pages[i] = c.api.Transactions(ctx, leagueID, round)
		}
		if c.pool == nil || c.pool.Submit(task) != nil {
			task()
		}
	}
	wg.Wait()

	seen := make(map[string]struct{})
	var out []trades.Transaction
	for _, page := range pages {
		for _, tx := range page {
			key := dedupKey(tx)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, tx)
		}
	}

	return out
}

// dedupKey identifies a transaction by its id when it carries one, otherwise
// by a canonical serialization of the whole record so identical id-less
// records still collapse.
func dedupKey(tx trades.Transaction) string {
	if id, ok := tx["transaction_id"]; ok && present(id) {
		return "id:" + asString(id)
	}
	return "raw:" + canonicalJSON(map[string]any(tx))
}

// canonicalJSON serializes with sorted object keys so equal maps produce
// equal strings regardless of insertion order.
func canonicalJSON(v any) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	enc := sonic.ConfigStd.NewEncoder(buf)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
