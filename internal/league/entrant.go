package league

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type EntrantStatus string

const (
	EntrantActive     EntrantStatus = "active"
	EntrantEliminated EntrantStatus = "eliminated"
)

const selfElimination = "self"

// EliminationRef names who eliminated an entry: another entrant number in the
// same event, or the entrant itself ("self").
type EliminationRef struct {
	Self   bool
	Number int
}

func SelfEliminated() *EliminationRef {
	return &EliminationRef{Self: true}
}

func EliminatedByNumber(n int) *EliminationRef {
	return &EliminationRef{Number: n}
}

func (r EliminationRef) String() string {
	if r.Self {
		return selfElimination
	}
	return strconv.Itoa(r.Number)
}

func ParseEliminationRef(s string) (EliminationRef, error) {
	if s == selfElimination {
		return EliminationRef{Self: true}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return EliminationRef{}, fmt.Errorf("%w: eliminated_by must be an entrant number or %q", ErrInvalidElimination, selfElimination)
	}
	return EliminationRef{Number: n}, nil
}

func (r EliminationRef) Value() (driver.Value, error) {
	return r.String(), nil
}

func (r *EliminationRef) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	default:
		return fmt.Errorf("unsupported eliminated_by value %T", src)
	}
	parsed, err := ParseEliminationRef(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (r EliminationRef) MarshalJSON() ([]byte, error) {
	if r.Self {
		return json.Marshal(selfElimination)
	}
	return json.Marshal(r.Number)
}

// UnmarshalJSON accepts 17, "17" and "self".
func (r *EliminationRef) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if n < 1 {
			return fmt.Errorf("%w: eliminated_by must be a positive entrant number", ErrInvalidElimination)
		}
		*r = EliminationRef{Number: n}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: eliminated_by must be an entrant number or %q", ErrInvalidElimination, selfElimination)
	}
	parsed, err := ParseEliminationRef(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Entrant is one numbered ring entry of an event together with its live
// elimination state.
type Entrant struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	EventID        uuid.UUID       `db:"event_id" json:"event_id"`
	Number         int             `db:"entrant_number" json:"entrant_number"`
	WrestlerName   string          `db:"wrestler_name" json:"wrestler_name"`
	EnteredAt      *time.Time      `db:"entered_at" json:"entered_at"`
	IsEliminated   bool            `db:"is_eliminated" json:"is_eliminated"`
	EliminatedBy   *EliminationRef `db:"eliminated_by" json:"eliminated_by"`
	EliminatedAt   *time.Time      `db:"eliminated_at" json:"eliminated_at"`
	FinalPlacement *int            `db:"final_placement" json:"final_placement"`
}

func (e *Entrant) Status() EntrantStatus {
	if e.IsEliminated {
		return EntrantEliminated
	}
	return EntrantActive
}

func (e *Entrant) AssignWrestler(name string) {
	e.WrestlerName = name
}

// MarkEntrance records when the entrant hit the ring. Calling it again
// overwrites the time.
func (e *Entrant) MarkEntrance(at time.Time) {
	e.EnteredAt = &at
}

func (e *Entrant) Eliminate(by *EliminationRef, at time.Time) error {
	if e.IsEliminated {
		return fmt.Errorf("%w: #%d", ErrAlreadyEliminated, e.Number)
	}
	if by != nil && !by.Self && by.Number == e.Number {
		return fmt.Errorf("%w: #%d cannot eliminate itself by number, use %q", ErrInvalidElimination, e.Number, selfElimination)
	}
	e.IsEliminated = true
	e.EliminatedBy = by
	e.EliminatedAt = &at
	return nil
}

// UndoElimination puts the entrant back in the ring. The eliminator, time and
// placement are cleared together.
func (e *Entrant) UndoElimination() error {
	if !e.IsEliminated {
		return fmt.Errorf("%w: #%d", ErrNotEliminated, e.Number)
	}
	e.IsEliminated = false
	e.EliminatedBy = nil
	e.EliminatedAt = nil
	e.FinalPlacement = nil
	return nil
}

// SetPlacement records a final rank for an event of poolSize entries. It does
// not depend on the elimination state, the winner is usually never eliminated.
func (e *Entrant) SetPlacement(placement, poolSize int) error {
	if placement < 1 || placement > poolSize {
		return fmt.Errorf("%w: placement %d is outside 1..%d", ErrInvalidPlacement, placement, poolSize)
	}
	e.FinalPlacement = &placement
	return nil
}

// Winner returns the implicit winner of one pool: the only entrant still
// active. It is derived on every read and never stored.
func Winner(pool []Entrant) (*Entrant, bool) {
	var winner *Entrant
	for i := range pool {
		if pool[i].IsEliminated {
			continue
		}
		if winner != nil {
			return nil, false
		}
		winner = &pool[i]
	}
	return winner, winner != nil
}
