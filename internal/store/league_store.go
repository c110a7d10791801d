package store

import (
	"context"
	"fmt"
	"time"

	"github.com/AdamBeresnev/rumble-raffle/internal/league"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type LeagueStore struct {
	db *sqlx.DB
}

func NewLeagueStore(db *sqlx.DB) *LeagueStore {
	return &LeagueStore{db: db}
}

// DealFunc turns the league's participants and the entrants of its events into
// assignments. It runs inside the draw transaction.
type DealFunc func(l *league.League, participants []league.Participant, entrants []league.Entrant) ([]league.Assignment, error)

func (s *LeagueStore) CreateLeague(ctx context.Context, l *league.League) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO leagues (id, name, slug, event_id, secondary_event_id, buy_in, status, drawn_at, created_at,
			mode, elimination_points_enabled, points_per_elimination, time_bonus_enabled, prize_pool)
		VALUES (:id, :name, :slug, :event_id, :secondary_event_id, :buy_in, :status, :drawn_at, :created_at,
			:mode, :elimination_points_enabled, :points_per_elimination, :time_bonus_enabled, :prize_pool)`, l)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: slug %q is taken", league.ErrConflict, l.Slug)
	}
	return err
}

func (s *LeagueStore) GetLeague(ctx context.Context, id uuid.UUID) (*league.League, error) {
	return getLeague(ctx, s.db, id)
}

func (s *LeagueStore) GetLeagueBySlug(ctx context.Context, slug string) (*league.League, error) {
	var l league.League
	err := s.db.GetContext(ctx, &l, "SELECT * FROM leagues WHERE slug = ?", slug)
	if err != nil {
		return nil, notFound(err, league.ErrLeagueNotFound)
	}
	return &l, nil
}

func getLeague(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*league.League, error) {
	var l league.League
	err := sqlx.GetContext(ctx, q, &l, "SELECT * FROM leagues WHERE id = ?", id)
	if err != nil {
		return nil, notFound(err, league.ErrLeagueNotFound)
	}
	return &l, nil
}

func (s *LeagueStore) ListParticipants(ctx context.Context, leagueID uuid.UUID) ([]league.Participant, error) {
	return listParticipants(ctx, s.db, leagueID)
}

func listParticipants(ctx context.Context, q sqlx.QueryerContext, leagueID uuid.UUID) ([]league.Participant, error) {
	participants := []league.Participant{}
	err := sqlx.SelectContext(ctx, q, &participants, "SELECT * FROM participants WHERE league_id = ? ORDER BY position ASC", leagueID)
	return participants, err
}

func (s *LeagueStore) ListAssignments(ctx context.Context, leagueID uuid.UUID) ([]league.Assignment, error) {
	assignments := []league.Assignment{}
	err := s.db.SelectContext(ctx, &assignments, "SELECT * FROM assignments WHERE league_id = ? ORDER BY position ASC", leagueID)
	return assignments, err
}

// AddParticipant appends p to the league's setup order. The insert only
// happens while the league is in setup.
func (s *LeagueStore) AddParticipant(ctx context.Context, p *league.Participant) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO participants (id, league_id, display_name, requested_entry_count, position, created_at)
		SELECT ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM participants WHERE league_id = ?), ?
		WHERE EXISTS (SELECT 1 FROM leagues WHERE id = ? AND status = 'setup')`,
		p.ID, p.LeagueID, p.DisplayName, p.RequestedEntryCount, p.LeagueID, p.CreatedAt, p.LeagueID)
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return leagueStateError(ctx, tx, p.LeagueID, league.StatusSetup, league.ErrLeagueLocked)
	}

	if err := tx.GetContext(ctx, &p.Position, "SELECT position FROM participants WHERE id = ?", p.ID); err != nil {
		return err
	}
	return tx.Commit()
}

// SetEntryCount changes a participant's requested entries while the league is
// in setup.
func (s *LeagueStore) SetEntryCount(ctx context.Context, leagueID, participantID uuid.UUID, count int) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := setEntryCount(ctx, tx, leagueID, participantID, count); err != nil {
		return err
	}
	return tx.Commit()
}

// DistributeEntries gives every participant of a league in setup an even
// share of poolSize entries. The participants are read and updated in one
// transaction and returned with their new counts.
func (s *LeagueStore) DistributeEntries(ctx context.Context, leagueID uuid.UUID, poolSize int) ([]league.Participant, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := leagueStateError(ctx, tx, leagueID, league.StatusSetup, league.ErrLeagueLocked); err != nil {
		return nil, err
	}
	participants, err := listParticipants(ctx, tx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: league has no participants", league.ErrValidation)
	}

	share := league.EvenShare(poolSize, len(participants))
	for i := range participants {
		if err := setEntryCount(ctx, tx, leagueID, participants[i].ID, share); err != nil {
			return nil, err
		}
		participants[i].RequestedEntryCount = share
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return participants, nil
}

func setEntryCount(ctx context.Context, tx *sqlx.Tx, leagueID, participantID uuid.UUID, count int) error {
	res, err := tx.ExecContext(ctx, `UPDATE participants SET requested_entry_count = ?
		WHERE id = ? AND league_id = ?
		AND EXISTS (SELECT 1 FROM leagues WHERE id = ? AND status = 'setup')`,
		count, participantID, leagueID, leagueID)
	if err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if err := leagueStateError(ctx, tx, leagueID, league.StatusSetup, league.ErrLeagueLocked); err != nil {
			return err
		}
		return league.ErrParticipantNotFound
	}
	return nil
}

func (s *LeagueStore) RemoveParticipant(ctx context.Context, leagueID, participantID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM participants
		WHERE id = ? AND league_id = ?
		AND EXISTS (SELECT 1 FROM leagues WHERE id = ? AND status = 'setup')`,
		participantID, leagueID, leagueID)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if err := leagueStateError(ctx, tx, leagueID, league.StatusSetup, league.ErrLeagueLocked); err != nil {
			return err
		}
		return league.ErrParticipantNotFound
	}
	return tx.Commit()
}

// CompleteLeague moves an active league to completed.
func (s *LeagueStore) CompleteLeague(ctx context.Context, leagueID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, "UPDATE leagues SET status = 'completed' WHERE id = ? AND status = 'active'", leagueID)
	if err != nil {
		return fmt.Errorf("failed to complete league: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return leagueStateError(ctx, s.db, leagueID, league.StatusActive, league.ErrInvalidTransition)
	}
	return nil
}

// CommitDraw runs a draw in a single transaction. The league is flipped from
// setup to active before anything is read, so of two concurrent draws only
// one can proceed and the other gets ErrAlreadyDrawn. Any error from deal
// rolls the status change back.
func (s *LeagueStore) CommitDraw(ctx context.Context, leagueID uuid.UUID, drawnAt time.Time, deal DealFunc) ([]league.Assignment, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "UPDATE leagues SET status = 'active', drawn_at = ? WHERE id = ? AND status = 'setup'", drawnAt, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock league for draw: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if err := leagueStateError(ctx, tx, leagueID, league.StatusSetup, league.ErrAlreadyDrawn); err != nil {
			return nil, err
		}
		return nil, league.ErrAlreadyDrawn
	}

	l, err := getLeague(ctx, tx, leagueID)
	if err != nil {
		return nil, err
	}
	participants, err := listParticipants(ctx, tx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to read participants: %w", err)
	}
	entrants, err := listEntrants(ctx, tx, l.EventIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to read pool: %w", err)
	}

	assignments, err := deal(l, participants, entrants)
	if err != nil {
		return nil, err
	}

	if err := s.CreateAssignments(ctx, tx, assignments); err != nil {
		return nil, fmt.Errorf("failed to insert assignments: %w", err)
	}

	var written int
	if err := tx.GetContext(ctx, &written, "SELECT COUNT(*) FROM assignments WHERE league_id = ?", leagueID); err != nil {
		return nil, err
	}
	if written != len(entrants) {
		return nil, fmt.Errorf("draw wrote %d assignments for a pool of %d entrants", written, len(entrants))
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return assignments, nil
}

func (s *LeagueStore) CreateAssignments(ctx context.Context, tx *sqlx.Tx, assignments []league.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO assignments (league_id, entrant_id, event_id, entrant_number, position, participant_id)
		VALUES (:league_id, :entrant_id, :event_id, :entrant_number, :position, :participant_id)`, assignments)
	return err
}
