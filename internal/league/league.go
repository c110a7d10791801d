package league

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusSetup     Status = "setup"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

type Mode string

const (
	WinnerTakesAll Mode = "winner_takes_all"
	PointsBased    Mode = "points_based"
	Combined       Mode = "combined"
)

func (m Mode) Valid() bool {
	switch m {
	case WinnerTakesAll, PointsBased, Combined:
		return true
	}
	return false
}

type ScoringConfig struct {
	Mode                     Mode                `db:"mode" json:"mode"`
	EliminationPointsEnabled bool                `db:"elimination_points_enabled" json:"elimination_points_enabled"`
	PointsPerElimination     int                 `db:"points_per_elimination" json:"points_per_elimination"`
	TimeBonusEnabled         bool                `db:"time_bonus_enabled" json:"time_bonus_enabled"`
	PrizePool                decimal.NullDecimal `db:"prize_pool" json:"prize_pool"`
}

type League struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	Name             string          `db:"name" json:"name"`
	Slug             string          `db:"slug" json:"slug"`
	EventID          uuid.UUID       `db:"event_id" json:"event_id"`
	SecondaryEventID *uuid.UUID      `db:"secondary_event_id" json:"secondary_event_id,omitempty"`
	BuyIn            decimal.Decimal `db:"buy_in" json:"buy_in"`
	Status           Status          `db:"status" json:"status"`
	DrawnAt          *time.Time      `db:"drawn_at" json:"drawn_at,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`

	ScoringConfig
}

// EventIDs lists the pools of the league, primary first.
func (l *League) EventIDs() []uuid.UUID {
	ids := []uuid.UUID{l.EventID}
	if l.SecondaryEventID != nil {
		ids = append(ids, *l.SecondaryEventID)
	}
	return ids
}

func (l *League) HasEvent(eventID uuid.UUID) bool {
	for _, id := range l.EventIDs() {
		if id == eventID {
			return true
		}
	}
	return false
}

// Validate checks the parts of a league that must hold before it is stored.
func (l *League) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if !l.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, l.Mode)
	}
	if l.Mode == Combined {
		if l.SecondaryEventID == nil {
			return fmt.Errorf("%w: combined leagues need a secondary event", ErrInvalidConfig)
		}
		if *l.SecondaryEventID == l.EventID {
			return fmt.Errorf("%w: secondary event must differ from the primary event", ErrInvalidConfig)
		}
	} else if l.SecondaryEventID != nil {
		return fmt.Errorf("%w: only combined leagues take a secondary event", ErrInvalidConfig)
	}
	if l.Mode == WinnerTakesAll && l.EliminationPointsEnabled {
		return fmt.Errorf("%w: elimination points do not apply to winner takes all", ErrInvalidConfig)
	}
	if l.PointsPerElimination < 0 {
		return fmt.Errorf("%w: points per elimination must not be negative", ErrInvalidConfig)
	}
	if l.BuyIn.IsNegative() {
		return fmt.Errorf("%w: buy-in must not be negative", ErrInvalidConfig)
	}
	if l.PrizePool.Valid && l.PrizePool.Decimal.IsNegative() {
		return fmt.Errorf("%w: prize pool must not be negative", ErrInvalidConfig)
	}
	return nil
}

// CanTransition reports whether an administrative status change is allowed.
// setup -> active is reserved for the draw.
func (s Status) CanTransition(to Status) bool {
	return s == StatusActive && to == StatusCompleted
}
