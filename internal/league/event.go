package league

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventLive      EventStatus = "live"
	EventCompleted EventStatus = "completed"
)

// PlaceholderWrestler is the name given to entries before the roster is known.
const PlaceholderWrestler = "TBD"

type Event struct {
	ID        uuid.UUID   `db:"id" json:"id"`
	Name      string      `db:"name" json:"name"`
	Year      int         `db:"year" json:"year"`
	Status    EventStatus `db:"status" json:"status"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}

func (s EventStatus) CanTransition(to EventStatus) bool {
	switch s {
	case EventUpcoming:
		return to == EventLive
	case EventLive:
		return to == EventCompleted
	}
	return false
}

// MaxPoolSize bounds the number of entries of one event.
const MaxPoolSize = 100

// NewPool builds the placeholder entries 1..size for an event.
func NewPool(eventID uuid.UUID, size int) ([]Entrant, error) {
	if size < 1 {
		return nil, ErrEmptyPool
	}
	if size > MaxPoolSize {
		return nil, fmt.Errorf("%w: an event has at most %d entries", ErrValidation, MaxPoolSize)
	}
	pool := make([]Entrant, 0, size)
	for n := 1; n <= size; n++ {
		pool = append(pool, Entrant{
			ID:           uuid.New(),
			EventID:      eventID,
			Number:       n,
			WrestlerName: PlaceholderWrestler,
		})
	}
	return pool, nil
}

// ValidatePool checks that the entries of one event are numbered 1..N
// without gaps or repeats, in order.
func ValidatePool(pool []Entrant) error {
	if len(pool) == 0 {
		return ErrEmptyPool
	}
	for i, e := range pool {
		if e.Number != i+1 {
			return fmt.Errorf("%w: entry %d of event %s is numbered %d", ErrValidation, i+1, e.EventID, e.Number)
		}
	}
	return nil
}

// FindEntrant looks an entry up by number within one event's pool.
func FindEntrant(pool []Entrant, number int) (*Entrant, bool) {
	for i := range pool {
		if pool[i].Number == number {
			return &pool[i], true
		}
	}
	return nil, false
}

// OrderPools concatenates the pools of a league into draw order: the events
// in the order given, entries by number within each.
func OrderPools(eventIDs []uuid.UUID, entrants []Entrant) []Entrant {
	byEvent := make(map[uuid.UUID][]Entrant, len(eventIDs))
	for _, e := range entrants {
		byEvent[e.EventID] = append(byEvent[e.EventID], e)
	}
	ordered := make([]Entrant, 0, len(entrants))
	for _, id := range eventIDs {
		pool := byEvent[id]
		sortByNumber(pool)
		ordered = append(ordered, pool...)
	}
	return ordered
}
