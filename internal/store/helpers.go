package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/rumble-raffle/internal/league"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// notFound replaces sql.ErrNoRows with the domain error for the missing row.
func notFound(err, domainErr error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domainErr
	}
	return err
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// leagueStateError explains why a conditional update on a league touched no
// rows: either the league does not exist or it is not in the wanted status.
func leagueStateError(ctx context.Context, q sqlx.QueryerContext, leagueID uuid.UUID, want league.Status, wrongState error) error {
	var status league.Status
	err := sqlx.GetContext(ctx, q, &status, "SELECT status FROM leagues WHERE id = ?", leagueID)
	if err != nil {
		return notFound(err, league.ErrLeagueNotFound)
	}
	if status != want {
		return fmt.Errorf("%w: league is %s", wrongState, status)
	}
	return nil
}
