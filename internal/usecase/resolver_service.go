package usecase

import (
	"context"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sleeper-trades/internal/domain/trades"
	"github.com/riskibarqy/sleeper-trades/internal/platform/cache"
	"github.com/riskibarqy/sleeper-trades/internal/platform/logging"
)

// IdentityResolver turns usernames into platform users and figures out the
// current season. User lookups go through a bounded TTL cache so repeated
// feed requests for the same username skip the network.
type IdentityResolver struct {
	api    PlatformAPI
	users  *cache.Store
	logger *logging.Logger
	now    func() time.Time
}

func NewIdentityResolver(api PlatformAPI, users *cache.Store, logger *logging.Logger) *IdentityResolver {
	if logger == nil {
		logger = logging.Default()
	}
	return &IdentityResolver{
		api:    api,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

// ResolveUser returns the user for a username. Absent lookups are cached like
// hits so a misspelled username does not hammer the upstream, and surface as
// ErrNotFound.
func (r *IdentityResolver) ResolveUser(ctx context.Context, username string) (trades.User, error) {
	ctx, span := startEngineSpan(ctx, "IdentityResolver.ResolveUser")
	defer span.End()

	username = strings.TrimSpace(username)
	if username == "" {
		return trades.User{}, crerr.Wrap(ErrInvalidInput, "username is required")
	}

	value, err := r.users.GetOrLoad(ctx, "user:"+username, func(ctx context.Context) (any, error) {
		return r.api.UserByUsername(ctx, username), nil
	})
	if err != nil {
		return trades.User{}, err
	}

	raw, _ := value.(map[string]any)
	if raw == nil {
		return trades.User{}, crerr.Wrapf(ErrNotFound, "user %q", username)
	}
	idVal, ok := raw["user_id"]
	if !ok {
		return trades.User{}, crerr.Wrapf(ErrNotFound, "user %q", username)
	}

	return trades.User{
		ID:       asString(idVal),
		Username: username,
	}, nil
}

// CurrentSeason asks the platform state endpoint which season is live. When
// the state is unavailable or carries no usable season, the current UTC year
// stands in.
func (r *IdentityResolver) CurrentSeason(ctx context.Context) int {
	ctx, span := startEngineSpan(ctx, "IdentityResolver.CurrentSeason")
	defer span.End()

	state := r.api.State(ctx)
	for _, key := range []string{"league_season", "season", "year"} {
		v, ok := state[key]
		if !ok {
			continue
		}
		if year, ok := intFromAny(v); ok {
			return year
		}
	}

	return r.now().UTC().Year()
}

// rosterIDsForUser returns the roster id strings owned by userID across a
// league's rosters. Ownership and roster keys vary by payload vintage, so
// alternates are tried and every comparison is stringwise.
func rosterIDsForUser(rosters []map[string]any, userID string) []string {
	var out []string
	for _, roster := range rosters {
		owner := firstString(roster, "owner_id", "user_id", "user")
		if owner == "" || owner != userID {
			continue
		}
		out = append(out, firstString(roster, "roster_id", "roster"))
	}
	return out
}
