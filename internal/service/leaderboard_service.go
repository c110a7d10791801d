package service

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/rumble-raffle/internal/league"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type LeaderboardService struct {
	leagues LeagueRepository
	events  EventRepository
}

func NewLeaderboardService(leagues LeagueRepository, events EventRepository) *LeaderboardService {
	return &LeaderboardService{leagues: leagues, events: events}
}

type Leaderboard struct {
	LeagueID         uuid.UUID         `json:"league_id"`
	Status           league.Status     `json:"status"`
	Mode             league.Mode       `json:"mode"`
	PrizePool        decimal.Decimal   `json:"prize_pool"`
	TimeBonusEnabled bool              `json:"time_bonus_enabled"`
	Standings        []league.Standing `json:"standings"`
}

// GetLeaderboard scores every participant from the current tracker state.
// Nothing is cached, so the result always reflects the latest edits.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, leagueID uuid.UUID) (*Leaderboard, error) {
	l, err := s.leagues.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	var (
		participants []league.Participant
		assignments  []league.Assignment
		entrants     []league.Entrant
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if participants, err = s.leagues.ListParticipants(gCtx, leagueID); err != nil {
			return fmt.Errorf("failed to load participants: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if assignments, err = s.leagues.ListAssignments(gCtx, leagueID); err != nil {
			return fmt.Errorf("failed to load assignments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if entrants, err = s.events.ListEntrants(gCtx, l.EventIDs()...); err != nil {
			return fmt.Errorf("failed to load entrants: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	prizePool := league.PrizePool(l, len(entrants))
	return &Leaderboard{
		LeagueID:         l.ID,
		Status:           l.Status,
		Mode:             l.Mode,
		PrizePool:        prizePool,
		TimeBonusEnabled: l.TimeBonusEnabled,
		Standings:        league.Leaderboard(participants, assignments, entrants, l.ScoringConfig, prizePool),
	}, nil
}
