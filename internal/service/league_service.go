package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/rumble-raffle/internal/league"
	"github.com/AdamBeresnev/rumble-raffle/internal/utils"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

type LeagueService struct {
	leagues LeagueRepository
	events  EventRepository
	now     func() time.Time
}

func NewLeagueService(leagues LeagueRepository, events EventRepository) *LeagueService {
	return &LeagueService{leagues: leagues, events: events, now: time.Now}
}

type CreateLeagueInput struct {
	Name             string          `json:"name"`
	EventID          uuid.UUID       `json:"event_id"`
	SecondaryEventID *uuid.UUID      `json:"secondary_event_id"`
	BuyIn            decimal.Decimal `json:"buy_in"`
	league.ScoringConfig
}

func (s *LeagueService) CreateLeague(ctx context.Context, in CreateLeagueInput) (*league.League, error) {
	id := uuid.New()
	l := &league.League{
		ID:               id,
		Name:             utils.SanitizeName(in.Name),
		EventID:          in.EventID,
		SecondaryEventID: in.SecondaryEventID,
		BuyIn:            in.BuyIn,
		Status:           league.StatusSetup,
		CreatedAt:        s.now().UTC(),
		ScoringConfig:    in.ScoringConfig,
	}
	if l.Mode == "" {
		l.Mode = league.PointsBased
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	for _, eventID := range l.EventIDs() {
		if _, err := s.events.GetEvent(ctx, eventID); err != nil {
			return nil, err
		}
	}
	l.Slug = leagueSlug(l.Name, id)

	if err := s.leagues.CreateLeague(ctx, l); err != nil {
		return nil, err
	}

	slog.Info("league created", "league_id", l.ID, "slug", l.Slug, "mode", l.Mode)
	return l, nil
}

// leagueSlug is the shareable handle of a league. The id prefix keeps leagues
// with the same name apart.
func leagueSlug(name string, id uuid.UUID) string {
	base := slug.Make(name)
	if base == "" {
		base = "league"
	}
	return base + "-" + id.String()[:6]
}

type LeagueDetails struct {
	*league.League
	Participants []league.Participant `json:"participants"`
	PoolSize     int                  `json:"pool_size"`
	Requested    int                  `json:"requested_entries"`
	// PrizePool shadows the configured value with the effective one.
	PrizePool decimal.Decimal `json:"prize_pool"`
}

// ResolveLeague finds a league by id, falling back to its slug.
func (s *LeagueService) ResolveLeague(ctx context.Context, idOrSlug string) (*league.League, error) {
	if id, err := uuid.Parse(idOrSlug); err == nil {
		return s.leagues.GetLeague(ctx, id)
	}
	return s.leagues.GetLeagueBySlug(ctx, idOrSlug)
}

func (s *LeagueService) GetLeagueDetails(ctx context.Context, leagueID uuid.UUID) (*LeagueDetails, error) {
	l, err := s.leagues.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	participants, err := s.leagues.ListParticipants(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	entrants, err := s.events.ListEntrants(ctx, l.EventIDs()...)
	if err != nil {
		return nil, fmt.Errorf("failed to load entrants: %w", err)
	}

	details := &LeagueDetails{
		League:       l,
		Participants: participants,
		PoolSize:     len(entrants),
		PrizePool:    league.PrizePool(l, len(entrants)),
	}
	for _, p := range participants {
		details.Requested += p.RequestedEntryCount
	}
	return details, nil
}

func (s *LeagueService) AddParticipant(ctx context.Context, leagueID uuid.UUID, name string, count int) (*league.Participant, error) {
	name = utils.SanitizeName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: display name is required", league.ErrValidation)
	}
	if count < 0 {
		return nil, league.ErrNegativeEntryCount
	}

	p := &league.Participant{
		ID:                  uuid.New(),
		LeagueID:            leagueID,
		DisplayName:         name,
		RequestedEntryCount: count,
		CreatedAt:           s.now().UTC(),
	}
	if err := s.leagues.AddParticipant(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *LeagueService) SetEntryCount(ctx context.Context, leagueID, participantID uuid.UUID, count int) error {
	if count < 0 {
		return league.ErrNegativeEntryCount
	}
	return s.leagues.SetEntryCount(ctx, leagueID, participantID, count)
}

func (s *LeagueService) RemoveParticipant(ctx context.Context, leagueID, participantID uuid.UUID) error {
	return s.leagues.RemoveParticipant(ctx, leagueID, participantID)
}

type Distribution struct {
	Share int `json:"share"`
	// Remainder is the number of entries still to be handed out by hand.
	Remainder    int                  `json:"remainder"`
	Participants []league.Participant `json:"participants"`
}

// DistributeEvenly gives every participant floor(N / participants) entries.
func (s *LeagueService) DistributeEvenly(ctx context.Context, leagueID uuid.UUID) (*Distribution, error) {
	l, err := s.leagues.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if l.Status != league.StatusSetup {
		return nil, fmt.Errorf("%w: league is %s", league.ErrLeagueLocked, l.Status)
	}
	entrants, err := s.events.ListEntrants(ctx, l.EventIDs()...)
	if err != nil {
		return nil, err
	}

	participants, err := s.leagues.DistributeEntries(ctx, leagueID, len(entrants))
	if err != nil {
		return nil, err
	}

	share := league.EvenShare(len(entrants), len(participants))
	return &Distribution{
		Share:        share,
		Remainder:    len(entrants) - share*len(participants),
		Participants: participants,
	}, nil
}

func (s *LeagueService) CompleteLeague(ctx context.Context, leagueID uuid.UUID) error {
	l, err := s.leagues.GetLeague(ctx, leagueID)
	if err != nil {
		return err
	}
	if !l.Status.CanTransition(league.StatusCompleted) {
		return fmt.Errorf("%w: league is %s", league.ErrInvalidTransition, l.Status)
	}
	if err := s.leagues.CompleteLeague(ctx, leagueID); err != nil {
		return err
	}
	slog.Info("league completed", "league_id", leagueID)
	return nil
}
