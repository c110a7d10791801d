package middleware

import (
	"context"
	"net/http"

	"github.com/AdamBeresnev/rumble-raffle/internal/httputil"
	"github.com/AdamBeresnev/rumble-raffle/internal/league"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ContextKey string

const LeagueKey ContextKey = "league"

type LeagueResolver interface {
	ResolveLeague(ctx context.Context, idOrSlug string) (*league.League, error)
}

// LoadLeague resolves the {id} URL parameter, a league id or slug, and puts
// the league in the request context. Unknown leagues end the request with a
// 404.
func LoadLeague(resolver LeagueResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l, err := resolver.ResolveLeague(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				httputil.Error(w, "Failed to load league", err)
				return
			}

			ctx := context.WithValue(r.Context(), LeagueKey, l)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetLeagueFromContext(ctx context.Context) (*league.League, bool) {
	l, ok := ctx.Value(LeagueKey).(*league.League)
	return l, ok
}

func GetLeagueIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	l, ok := GetLeagueFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return l.ID, true
}
