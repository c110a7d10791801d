package league

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"
)

// Assignment binds one entry of the league's pool to a participant. Position
// is the 1-based index of the entry in draw order across all pools.
type Assignment struct {
	LeagueID      uuid.UUID `db:"league_id" json:"league_id"`
	EntrantID     uuid.UUID `db:"entrant_id" json:"entrant_id"`
	EventID       uuid.UUID `db:"event_id" json:"event_id"`
	EntrantNumber int       `db:"entrant_number" json:"entrant_number"`
	Position      int       `db:"position" json:"position"`
	ParticipantID uuid.UUID `db:"participant_id" json:"participant_id"`
}

// Rand is the randomness source for the shuffle. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand draws from the runtime's randomly seeded generator.
var DefaultRand Rand = globalRand{}

// Draw deals every entry of pool to exactly one participant. Each participant
// receives as many entries as they requested, and every arrangement of tickets
// is equally likely.
func Draw(leagueID uuid.UUID, participants []Participant, pool []Entrant, rng Rand) ([]Assignment, error) {
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}

	requested := 0
	for _, p := range participants {
		if p.RequestedEntryCount < 0 {
			return nil, ErrNegativeEntryCount
		}
		requested += p.RequestedEntryCount
	}
	if requested != len(pool) {
		return nil, &CountMismatchError{Requested: requested, PoolSize: len(pool)}
	}

	// One ticket per requested entry
	tickets := make([]uuid.UUID, 0, requested)
	for _, p := range participants {
		for range p.RequestedEntryCount {
			tickets = append(tickets, p.ID)
		}
	}

	shuffle(tickets, rng)

	assignments := make([]Assignment, len(pool))
	for i, entrant := range pool {
		assignments[i] = Assignment{
			LeagueID:      leagueID,
			EntrantID:     entrant.ID,
			EventID:       entrant.EventID,
			EntrantNumber: entrant.Number,
			Position:      i + 1,
			ParticipantID: tickets[i],
		}
	}
	return assignments, nil
}

// Fisher-Yates
func shuffle[T any](s []T, rng Rand) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

func sortByNumber(pool []Entrant) {
	slices.SortFunc(pool, func(a, b Entrant) int {
		return cmp.Compare(a.Number, b.Number)
	})
}
