package league

import (
	"time"

	"github.com/google/uuid"
)

type Participant struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	LeagueID            uuid.UUID `db:"league_id" json:"league_id"`
	DisplayName         string    `db:"display_name" json:"display_name"`
	RequestedEntryCount int       `db:"requested_entry_count" json:"requested_entry_count"`
	// Position is the setup order and the leaderboard tie-break.
	Position  int       `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// EvenShare is the entry count each participant gets when the pool is split
// evenly. The remainder is left for the organizer to hand out.
func EvenShare(poolSize, participants int) int {
	if participants <= 0 {
		return 0
	}
	return poolSize / participants
}
