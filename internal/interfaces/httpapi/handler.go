package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/sleeper-trades/internal/usecase"
)

type Handler struct {
	tradeService *usecase.TradeService
	logger       *slog.Logger
	validator    *validator.Validate
}

func NewHandler(tradeService *usecase.TradeService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		tradeService: tradeService,
		logger:       logger,
		validator:    validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type tradesQueryDTO struct {
	Username string `validate:"required"`
	Season   int    `validate:"gte=0"`
}

// GetTrades serves the aggregated trade feed for a username. Season and
// rounds are optional; season defaults to the platform's current season and
// rounds to the full span.
func (h *Handler) GetTrades(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTrades")
	defer span.End()

	q := r.URL.Query()
	dto := tradesQueryDTO{Username: strings.TrimSpace(q.Get("username"))}

	if raw := strings.TrimSpace(q.Get("season")); raw != "" {
		season, err := strconv.Atoi(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: season must be an integer", usecase.ErrInvalidInput))
			return
		}
		dto.Season = season
	}

	if err := h.validator.Struct(dto); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	entries, err := h.tradeService.GatherTrades(ctx, usecase.TradeQuery{
		Username: dto.Username,
		Season:   dto.Season,
		Rounds:   parseRounds(q.Get("rounds")),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "gather trades failed", "username", dto.Username, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, entries)
}

// parseRounds splits a comma-separated rounds parameter. Tokens that are not
// plain digit runs are skipped rather than rejected.
func parseRounds(raw string) []int {
	var out []int
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" || !isDigits(token) {
			continue
		}
		n, err := strconv.Atoi(token)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
