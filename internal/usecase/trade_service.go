package usecase

import (
	"context"
	"sort"
	"strconv"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sleeper-trades/internal/domain/trades"
	"github.com/riskibarqy/sleeper-trades/internal/platform/cache"
	"github.com/riskibarqy/sleeper-trades/internal/platform/logging"
	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TradeQuery narrows a feed request. Season 0 means the current season as
// reported by the platform; an empty Rounds slice means the full default span.
type TradeQuery struct {
	Username string
	Season   int
	Rounds   []int
}

// TradeService aggregates a user's trade activity across every league they
// belong to in a season. Whole feed results sit behind a short TTL cache so
// page refreshes do not refetch dozens of upstream pages.
type TradeService struct {
	api       PlatformAPI
	directory *DirectoryService
	resolver  *IdentityResolver
	collector *TransactionCollector
	results   *cache.Store
	logger    *logging.Logger
}

func NewTradeService(
	api PlatformAPI,
	directory *DirectoryService,
	resolver *IdentityResolver,
	collector *TransactionCollector,
	results *cache.Store,
	logger *logging.Logger,
) *TradeService {
	if logger == nil {
		logger = logging.Default()
	}
	return &TradeService{
		api:       api,
		directory: directory,
		resolver:  resolver,
		collector: collector,
		results:   results,
		logger:    logger,
	}
}

// GatherTrades returns the user's trade feed, newest first. The only error
// conditions are an invalid query and an unknown username; every upstream
// failure degrades to missing data instead. Identical queries inside the
// result TTL share one aggregation run.
func (s *TradeService) GatherTrades(ctx context.Context, query TradeQuery) ([]trades.Entry, error) {
	ctx, span := startEngineSpan(ctx, "TradeService.GatherTrades", trace.WithAttributes(
		attribute.String("trades.username", query.Username),
		attribute.Int("trades.season", query.Season),
	))
	defer span.End()

	username := strings.TrimSpace(query.Username)
	if username == "" {
		return nil, crerr.Wrap(ErrInvalidInput, "username is required")
	}

	value, err := s.results.GetOrLoad(ctx, resultKey(username, query.Season, query.Rounds), func(ctx context.Context) (any, error) {
		return s.gather(ctx, username, query.Season, query.Rounds)
	})
	if err != nil {
		return nil, err
	}

	entries, _ := value.([]trades.Entry)
	return entries, nil
}

func (s *TradeService) gather(ctx context.Context, username string, season int, rounds []int) ([]trades.Entry, error) {
	if season == 0 {
		season = s.resolver.CurrentSeason(ctx)
	}

	dir := s.directory.Directory(ctx)

	user, err := s.resolver.ResolveUser(ctx, username)
	if err != nil {
		return nil, err
	}

	leagues := s.api.LeaguesForUser(ctx, user.ID, season)
	if len(leagues) == 0 {
		s.logger.InfoContext(ctx, "no leagues for user in season",
			"username", username,
			"season", season,
		)
		return []trades.Entry{}, nil
	}

	perLeague := make([][]trades.Entry, len(leagues))
	var wg conc.WaitGroup
	for i, league := range leagues {
		wg.Go(func() {
			perLeague[i] = s.processLeague(ctx, league, user.ID, rounds, season, dir)
		})
	}
	wg.Wait()

	out := make([]trades.Entry, 0)
	for _, chunk := range perLeague {
		out = append(out, chunk...)
	}
	sortEntriesNewestFirst(out)

	return out, nil
}

// processLeague fetches one league's transactions, rosters, members, and
// traded picks concurrently, then reduces them to the user's feed entries.
func (s *TradeService) processLeague(ctx context.Context, league map[string]any, userID string, rounds []int, season int, dir trades.Directory) []trades.Entry {
	leagueID := asString(league["league_id"])
	leagueName := firstString(league, "name")
	if leagueName == "" {
		leagueName = leagueID
	}

	var (
		txs     []trades.Transaction
		rosters []map[string]any
		members []map[string]any
		picks   []trades.TradedPick
	)
	var wg conc.WaitGroup
	wg.Go(func() { txs = s.collector.Collect(ctx, leagueID, rounds) })
	wg.Go(func() { rosters = s.api.Rosters(ctx, leagueID) })
	wg.Go(func() { members = s.api.LeagueUsers(ctx, leagueID) })
	wg.Go(func() { picks = s.api.TradedPicks(ctx, leagueID) })
	wg.Wait()

	s.logger.DebugContext(ctx, "league fetched",
		"league_id", leagueID,
		"transactions", len(txs),
		"rosters", len(rosters),
		"members", len(members),
		"traded_picks", len(picks),
	)

	userRosterIDs := rosterIDsForUser(rosters, userID)

	entries := make([]trades.Entry, 0, len(txs))
	for _, tx := range txs {
		if !isTradeType(tx) {
			continue
		}
		if !involvesUser(tx, userRosterIDs, userID) {
			continue
		}
		flow := resolveAssetFlow(tx, userRosterIDs, dir)
		if flow.Empty() {
			continue
		}
		entries = append(entries, trades.Entry{
			LeagueID:      leagueID,
			LeagueName:    leagueName,
			TransactionID: transactionID(tx),
			Date:          isoTimestamp(firstPresent(tx, "status_updated", "created", "updated_at")),
			AssetsGained:  flow.Gained,
			AssetsLost:    flow.Lost,
			Raw:           map[string]any(tx),
		})
	}

	// The traded-picks endpoint reports pick ownership changes that never
	// appear as transactions. Owner fields there may hold roster ids or user
	// ids depending on payload vintage, so both are accepted.
	for _, pick := range picks {
		p := map[string]any(pick)
		owner := firstString(p, "owner_id", "owner")
		prev := firstString(p, "previous_owner_id", "previous_owner")

		pickSeason := firstString(p, "season", "draft_season")
		if pickSeason == "" {
			pickSeason = strconv.Itoa(season)
		}
		desc := pickDescription(pickSeason, firstString(p, "round", "draft_round", "round_number"))
		date := isoTimestamp(firstPresent(p, "updated_at", "created", "draft_id"))

		if owner != "" && (containsString(userRosterIDs, owner) || owner == userID) {
			entries = append(entries, trades.Entry{
				LeagueID:     leagueID,
				LeagueName:   leagueName,
				Date:         date,
				AssetsGained: []string{desc},
				AssetsLost:   []string{},
				Raw:          p,
			})
		}
		if prev != "" && (containsString(userRosterIDs, prev) || prev == userID) {
			entries = append(entries, trades.Entry{
				LeagueID:     leagueID,
				LeagueName:   leagueName,
				Date:         date,
				AssetsGained: []string{},
				AssetsLost:   []string{desc},
				Raw:          p,
			})
		}
	}

	return entries
}

func transactionID(tx trades.Transaction) *string {
	id, ok := tx["transaction_id"]
	if !ok || id == nil {
		return nil
	}
	return ptr(asString(id))
}

// sortEntriesNewestFirst orders by date descending; entries without a date
// sort last. The sort is stable so same-dated entries keep league order.
func sortEntriesNewestFirst(entries []trades.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entryDate(entries[i]) > entryDate(entries[j])
	})
}

func entryDate(e trades.Entry) string {
	if e.Date == nil {
		return ""
	}
	return *e.Date
}

func resultKey(username string, season int, rounds []int) string {
	var b strings.Builder
	b.WriteString("trades:")
	b.WriteString(username)
	b.WriteString("|")
	b.WriteString(strconv.Itoa(season))
	b.WriteString("|")
	for i, r := range rounds {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(strconv.Itoa(r))
	}
	return b.String()
}
