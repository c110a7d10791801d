package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type WrestlerStore struct {
	db *sqlx.DB
}

func NewWrestlerStore(db *sqlx.DB) *WrestlerStore {
	return &WrestlerStore{db: db}
}

func (s *WrestlerStore) ListWrestlers(ctx context.Context) ([]string, error) {
	names := []string{}
	err := s.db.SelectContext(ctx, &names, "SELECT name FROM wrestlers ORDER BY name COLLATE NOCASE")
	return names, err
}

// AddWrestler records a name typed during an event so later lookups resolve
// it. Known names are ignored.
func (s *WrestlerStore) AddWrestler(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO wrestlers (name) VALUES (?) ON CONFLICT (name) DO NOTHING", name)
	return err
}
