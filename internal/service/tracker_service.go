package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AdamBeresnev/rumble-raffle/internal/league"
	"github.com/AdamBeresnev/rumble-raffle/internal/utils"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type TrackerOptions struct {
	UniquePlacements    bool
	UniqueWrestlerNames bool
}

type TrackerService struct {
	leagues   LeagueRepository
	events    EventRepository
	wrestlers WrestlerRepository
	opts      TrackerOptions
	now       func() time.Time
}

func NewTrackerService(leagues LeagueRepository, events EventRepository, wrestlers WrestlerRepository, opts TrackerOptions) *TrackerService {
	return &TrackerService{
		leagues:   leagues,
		events:    events,
		wrestlers: wrestlers,
		opts:      opts,
		now:       time.Now,
	}
}

// EntrantPatch is a partial update of one entry. Nil fields are left alone.
// EventID picks the pool in a combined league, the primary event otherwise.
type EntrantPatch struct {
	WrestlerName   *string                `json:"wrestler_name"`
	Status         *league.EntrantStatus  `json:"status"`
	EliminatedBy   *league.EliminationRef `json:"eliminated_by"`
	FinalPlacement *int                   `json:"final_placement"`
	EnteredAt      *time.Time             `json:"entered_at"`
	EventID        *uuid.UUID             `json:"event_id"`
}

func (p *EntrantPatch) empty() bool {
	return p.WrestlerName == nil && p.Status == nil && p.EliminatedBy == nil &&
		p.FinalPlacement == nil && p.EnteredAt == nil
}

// UpdateEntrant applies a patch to entry number of one of the league's pools.
// The entry is re-read and written back in a single transaction.
//
// Setting eliminated_by without a status eliminates an active entry, or
// corrects the eliminator of an entry that is already out.
func (s *TrackerService) UpdateEntrant(ctx context.Context, leagueID uuid.UUID, number int, patch EntrantPatch) (*league.Entrant, error) {
	if patch.empty() {
		return nil, fmt.Errorf("%w: nothing to update", league.ErrValidation)
	}
	if patch.Status != nil && *patch.Status != league.EntrantActive && *patch.Status != league.EntrantEliminated {
		return nil, fmt.Errorf("%w: %q", league.ErrInvalidStatus, *patch.Status)
	}
	if patch.EliminatedBy != nil && patch.Status != nil && *patch.Status == league.EntrantActive {
		return nil, fmt.Errorf("%w: an active entrant has no eliminator", league.ErrInvalidElimination)
	}

	l, err := s.leagues.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	eventID := l.EventID
	if patch.EventID != nil {
		if !l.HasEvent(*patch.EventID) {
			return nil, fmt.Errorf("%w: event %s is not part of this league", league.ErrValidation, *patch.EventID)
		}
		eventID = *patch.EventID
	}

	var (
		wrestlerName string
		newWrestler  bool
	)
	if patch.WrestlerName != nil {
		if wrestlerName, newWrestler, err = s.resolveWrestler(ctx, *patch.WrestlerName); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	entrant, err := s.events.MutateEntrant(ctx, eventID, number, func(e *league.Entrant, pool []league.Entrant) error {
		if patch.WrestlerName != nil {
			if s.opts.UniqueWrestlerNames && wrestlerName != league.PlaceholderWrestler {
				if other, taken := wrestlerTaken(pool, e.Number, wrestlerName); taken {
					return fmt.Errorf("%w: %s is already #%d", league.ErrDuplicateWrestler, wrestlerName, other)
				}
			}
			e.AssignWrestler(wrestlerName)
		}

		if patch.EnteredAt != nil {
			e.MarkEntrance(patch.EnteredAt.UTC())
		}

		if err := applyStatus(e, pool, patch, now); err != nil {
			return err
		}

		if patch.FinalPlacement != nil {
			if s.opts.UniquePlacements {
				if other, taken := placementTaken(pool, e.Number, *patch.FinalPlacement); taken {
					return fmt.Errorf("%w: placement %d is held by #%d", league.ErrDuplicatePlacement, *patch.FinalPlacement, other)
				}
			}
			if err := e.SetPlacement(*patch.FinalPlacement, len(pool)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Only names that made it onto an entry join the roster.
	if newWrestler {
		if err := s.wrestlers.AddWrestler(ctx, wrestlerName); err != nil {
			slog.Warn("failed to add wrestler to roster", "name", wrestlerName, "error", err)
		}
	}

	slog.Info("entrant updated",
		"league_id", leagueID,
		"event_id", eventID,
		"entrant_number", number,
		"status", entrant.Status(),
		"final_placement", utils.OrZero(entrant.FinalPlacement),
	)
	return entrant, nil
}

func applyStatus(e *league.Entrant, pool []league.Entrant, patch EntrantPatch, now time.Time) error {
	switch {
	case patch.Status != nil && *patch.Status == league.EntrantActive:
		return e.UndoElimination()

	case patch.Status != nil && *patch.Status == league.EntrantEliminated:
		if err := checkEliminator(pool, e.Number, patch.EliminatedBy); err != nil {
			return err
		}
		return e.Eliminate(patch.EliminatedBy, now)

	case patch.EliminatedBy != nil:
		if err := checkEliminator(pool, e.Number, patch.EliminatedBy); err != nil {
			return err
		}
		if e.IsEliminated {
			if !patch.EliminatedBy.Self && patch.EliminatedBy.Number == e.Number {
				return fmt.Errorf("%w: #%d cannot eliminate itself by number", league.ErrInvalidElimination, e.Number)
			}
			e.EliminatedBy = patch.EliminatedBy
			return nil
		}
		return e.Eliminate(patch.EliminatedBy, now)
	}
	return nil
}

// checkEliminator rejects eliminator numbers that are not in the same event.
// Self-references by number are left to Entrant.Eliminate.
func checkEliminator(pool []league.Entrant, number int, by *league.EliminationRef) error {
	if by == nil || by.Self || by.Number == number {
		return nil
	}
	if _, ok := league.FindEntrant(pool, by.Number); !ok {
		return fmt.Errorf("%w: #%d is not in this event", league.ErrInvalidElimination, by.Number)
	}
	return nil
}

func wrestlerTaken(pool []league.Entrant, number int, name string) (int, bool) {
	for _, other := range pool {
		if other.Number != number && strings.EqualFold(other.WrestlerName, name) {
			return other.Number, true
		}
	}
	return 0, false
}

func placementTaken(pool []league.Entrant, number, placement int) (int, bool) {
	for _, other := range pool {
		if other.Number != number && other.FinalPlacement != nil && *other.FinalPlacement == placement {
			return other.Number, true
		}
	}
	return 0, false
}

// resolveWrestler cleans a typed name and fixes its case when the roster
// knows it. isNew reports a name the roster has not seen yet.
func (s *TrackerService) resolveWrestler(ctx context.Context, typed string) (name string, isNew bool, err error) {
	name = utils.SanitizeName(typed)
	if name == "" {
		return "", false, fmt.Errorf("%w: wrestler name is empty", league.ErrValidation)
	}
	if strings.EqualFold(name, league.PlaceholderWrestler) {
		return league.PlaceholderWrestler, false, nil
	}

	names, err := s.wrestlers.ListWrestlers(ctx)
	if err != nil {
		return "", false, fmt.Errorf("failed to load roster: %w", err)
	}
	resolved, known := league.NewRoster(names).Resolve(name)
	return resolved, !known, nil
}

// PoolSnapshot is one event's pool. Winner is the last entrant standing,
// derived on read.
type PoolSnapshot struct {
	EventID   uuid.UUID        `json:"event_id"`
	Entrants  []league.Entrant `json:"entrants"`
	Remaining int              `json:"remaining"`
	Winner    *league.Entrant  `json:"winner"`
}

type EntrantsSnapshot struct {
	LeagueID    uuid.UUID           `json:"league_id"`
	Pools       []PoolSnapshot      `json:"pools"`
	Assignments []league.Assignment `json:"assignments"`
}

// GetEntrants returns every pool of the league with its elimination state and
// the league's assignments.
func (s *TrackerService) GetEntrants(ctx context.Context, leagueID uuid.UUID) (*EntrantsSnapshot, error) {
	l, err := s.leagues.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	var (
		entrants    []league.Entrant
		assignments []league.Assignment
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entrants, err = s.events.ListEntrants(gCtx, l.EventIDs()...)
		if err != nil {
			return fmt.Errorf("failed to load entrants: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		assignments, err = s.leagues.ListAssignments(gCtx, leagueID)
		if err != nil {
			return fmt.Errorf("failed to load assignments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshot := &EntrantsSnapshot{LeagueID: l.ID, Assignments: assignments}
	for _, eventID := range l.EventIDs() {
		pool := poolOf(entrants, eventID)
		if pool == nil {
			pool = []league.Entrant{}
		}
		ps := PoolSnapshot{EventID: eventID, Entrants: pool}
		for _, e := range pool {
			if !e.IsEliminated {
				ps.Remaining++
			}
		}
		if winner, ok := league.Winner(pool); ok {
			ps.Winner = winner
		}
		snapshot.Pools = append(snapshot.Pools, ps)
	}
	return snapshot, nil
}
