package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/rumble-raffle/internal/league"
	"github.com/google/uuid"
)

type DrawService struct {
	leagues LeagueRepository
	rng     league.Rand
	now     func() time.Time
}

func NewDrawService(leagues LeagueRepository, rng league.Rand) *DrawService {
	if rng == nil {
		rng = league.DefaultRand
	}
	return &DrawService{leagues: leagues, rng: rng, now: time.Now}
}

// Draw assigns every entry of the league's pool to a participant and moves the
// league to active. It succeeds at most once per league.
func (s *DrawService) Draw(ctx context.Context, leagueID uuid.UUID) ([]league.Assignment, error) {
	assignments, err := s.leagues.CommitDraw(ctx, leagueID, s.now().UTC(), s.deal)
	if err != nil {
		return nil, err
	}

	slog.Info("league drawn", "league_id", leagueID, "assignments", len(assignments))
	return assignments, nil
}

func (s *DrawService) deal(l *league.League, participants []league.Participant, entrants []league.Entrant) ([]league.Assignment, error) {
	pool := league.OrderPools(l.EventIDs(), entrants)
	for _, eventID := range l.EventIDs() {
		if err := league.ValidatePool(poolOf(pool, eventID)); err != nil {
			return nil, fmt.Errorf("event %s: %w", eventID, err)
		}
	}
	return league.Draw(l.ID, participants, pool, s.rng)
}

func poolOf(entrants []league.Entrant, eventID uuid.UUID) []league.Entrant {
	var pool []league.Entrant
	for _, e := range entrants {
		if e.EventID == eventID {
			pool = append(pool, e)
		}
	}
	return pool
}
