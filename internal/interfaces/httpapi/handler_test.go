package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/sleeper-trades/internal/domain/trades"
	"github.com/riskibarqy/sleeper-trades/internal/platform/cache"
	"github.com/riskibarqy/sleeper-trades/internal/platform/logging"
	"github.com/riskibarqy/sleeper-trades/internal/usecase"
	"github.com/stretchr/testify/require"
)

type stubAPI struct {
	user         map[string]any
	leagues      []map[string]any
	rosters      []map[string]any
	transactions []trades.Transaction
}

func (s *stubAPI) Players(context.Context) trades.Directory { return nil }
func (s *stubAPI) UserByUsername(context.Context, string) map[string]any {
	return s.user
}
func (s *stubAPI) State(context.Context) map[string]any {
	return map[string]any{"league_season": "2025"}
}
func (s *stubAPI) LeaguesForUser(context.Context, string, int) []map[string]any {
	return s.leagues
}
func (s *stubAPI) Rosters(context.Context, string) []map[string]any  { return s.rosters }
func (s *stubAPI) LeagueUsers(context.Context, string) []map[string]any { return nil }
func (s *stubAPI) Transactions(context.Context, string, int) []trades.Transaction {
	return s.transactions
}
func (s *stubAPI) TradedPicks(context.Context, string) []trades.TradedPick { return nil }

func newTestRouter(api usecase.PlatformAPI) http.Handler {
	logger := logging.NewNop()
	directory := usecase.NewDirectoryService(api, nil, cache.NewStore(time.Minute, 1), logger)
	resolver := usecase.NewIdentityResolver(api, cache.NewStore(time.Minute, 16), logger)
	collector := usecase.NewTransactionCollector(api, nil, logger)
	tradeSvc := usecase.NewTradeService(api, directory, resolver, collector, cache.NewStore(time.Minute, 16), logger)

	handler := NewHandler(tradeSvc, slog.New(slog.DiscardHandler))
	return NewRouter(handler, slog.New(slog.DiscardHandler), nil)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) googleResponseEnvelope {
	t.Helper()
	var envelope googleResponseEnvelope
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(&stubAPI{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Equal(t, "2.0", envelope.APIVersion)
	require.Nil(t, envelope.Error)
}

func TestGetTrades_MissingUsername(t *testing.T) {
	router := newTestRouter(&stubAPI{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/trades", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	require.Equal(t, "INVALID_ARGUMENT", envelope.Error.Status)
}

func TestGetTrades_BadSeason(t *testing.T) {
	router := newTestRouter(&stubAPI{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/trades?username=alice&season=soon", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTrades_UnknownUser(t *testing.T) {
	router := newTestRouter(&stubAPI{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/trades?username=nobody", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	require.Equal(t, "NOT_FOUND", envelope.Error.Status)
}

func TestGetTrades_Success(t *testing.T) {
	api := &stubAPI{
		user:    map[string]any{"user_id": "u1"},
		leagues: []map[string]any{{"league_id": "L1", "name": "Dynasty Dogs"}},
		rosters: []map[string]any{{"roster_id": float64(1), "owner_id": "u1"}},
		transactions: []trades.Transaction{
			{
				"transaction_id": "t1",
				"type":           "trade",
				"status_updated": float64(1700000000000),
				"adds":           map[string]any{"123": float64(1)},
				"roster_ids":     []any{float64(1)},
			},
		},
	}
	router := newTestRouter(api)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/trades?username=alice&rounds=1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Nil(t, envelope.Error)

	items, ok := envelope.Data.([]any)
	require.True(t, ok)
	require.Len(t, items, 1)

	entry, ok := items[0].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "L1", entry["league_id"])
	require.Equal(t, "Dynasty Dogs", entry["league_name"])
	require.Equal(t, "t1", entry["transaction_id"])
}

func TestParseRounds(t *testing.T) {
	require.Equal(t, []int{1, 2, 3}, parseRounds("1, 2,x,3"))
	require.Nil(t, parseRounds(""))
	require.Nil(t, parseRounds("a,b,-1"))
}
