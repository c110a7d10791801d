package store

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/rumble-raffle/internal/league"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type EventStore struct {
	db *sqlx.DB
}

func NewEventStore(db *sqlx.DB) *EventStore {
	return &EventStore{db: db}
}

// MutateFunc edits e in place. pool is the whole event as read in the same
// transaction, e included with its previous state.
type MutateFunc func(e *league.Entrant, pool []league.Entrant) error

// CreateEvent stores an event together with its entrant pool.
func (s *EventStore) CreateEvent(ctx context.Context, event *league.Event, pool []league.Entrant) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `INSERT INTO events (id, name, year, status, created_at)
		VALUES (:id, :name, :year, :status, :created_at)`, event)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	if err := s.CreateEntrants(ctx, tx, pool); err != nil {
		return fmt.Errorf("failed to insert entrants: %w", err)
	}

	return tx.Commit()
}

func (s *EventStore) CreateEntrants(ctx context.Context, tx *sqlx.Tx, entrants []league.Entrant) error {
	if len(entrants) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO entrants (id, event_id, entrant_number, wrestler_name, entered_at, is_eliminated, eliminated_by, eliminated_at, final_placement)
		VALUES (:id, :event_id, :entrant_number, :wrestler_name, :entered_at, :is_eliminated, :eliminated_by, :eliminated_at, :final_placement)`, entrants)
	return err
}

func (s *EventStore) GetEvent(ctx context.Context, id uuid.UUID) (*league.Event, error) {
	var event league.Event
	err := s.db.GetContext(ctx, &event, "SELECT * FROM events WHERE id = ?", id)
	if err != nil {
		return nil, notFound(err, league.ErrEventNotFound)
	}
	return &event, nil
}

// SetEventStatus moves an event from one status to the next. The update is
// conditional on the event still being in from.
func (s *EventStore) SetEventStatus(ctx context.Context, id uuid.UUID, from, to league.EventStatus) error {
	res, err := s.db.ExecContext(ctx, "UPDATE events SET status = ? WHERE id = ? AND status = ?", to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update event status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := s.GetEvent(ctx, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: event is no longer %s", league.ErrInvalidTransition, from)
	}
	return nil
}

// ListEntrants returns the entrants of the given events, grouped by event and
// ordered by number.
func (s *EventStore) ListEntrants(ctx context.Context, eventIDs ...uuid.UUID) ([]league.Entrant, error) {
	return listEntrants(ctx, s.db, eventIDs)
}

func listEntrants(ctx context.Context, q sqlx.QueryerContext, eventIDs []uuid.UUID) ([]league.Entrant, error) {
	entrants := []league.Entrant{}
	if len(eventIDs) == 0 {
		return entrants, nil
	}
	query, args, err := sqlx.In("SELECT * FROM entrants WHERE event_id IN (?) ORDER BY event_id, entrant_number ASC", eventIDs)
	if err != nil {
		return nil, err
	}
	if err := sqlx.SelectContext(ctx, q, &entrants, query, args...); err != nil {
		return nil, err
	}
	return league.OrderPools(eventIDs, entrants), nil
}

// MutateEntrant re-reads one entrant and its pool inside a transaction, lets
// fn change it and writes it back. Concurrent edits to the same event are
// serialized by the transaction.
func (s *EventStore) MutateEntrant(ctx context.Context, eventID uuid.UUID, number int, fn MutateFunc) (*league.Entrant, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	pool, err := listEntrants(ctx, tx, []uuid.UUID{eventID})
	if err != nil {
		return nil, fmt.Errorf("failed to read pool: %w", err)
	}
	if len(pool) == 0 {
		var exists bool
		if err := tx.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM events WHERE id = ?)", eventID); err != nil {
			return nil, err
		}
		if !exists {
			return nil, league.ErrEventNotFound
		}
	}

	found, ok := league.FindEntrant(pool, number)
	if !ok {
		return nil, fmt.Errorf("%w: #%d", league.ErrEntrantNotFound, number)
	}
	entrant := *found

	if err := fn(&entrant, pool); err != nil {
		return nil, err
	}

	_, err = tx.NamedExecContext(ctx, `UPDATE entrants SET
			wrestler_name = :wrestler_name,
			entered_at = :entered_at,
			is_eliminated = :is_eliminated,
			eliminated_by = :eliminated_by,
			eliminated_at = :eliminated_at,
			final_placement = :final_placement
		WHERE id = :id`, &entrant)
	if err != nil {
		return nil, fmt.Errorf("failed to update entrant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &entrant, nil
}
