package league

import (
	"cmp"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EntryResult struct {
	EntrantID      uuid.UUID     `json:"entrant_id"`
	EventID        uuid.UUID     `json:"event_id"`
	Number         int           `json:"entrant_number"`
	WrestlerName   string        `json:"wrestler_name"`
	Status         EntrantStatus `json:"status"`
	FinalPlacement *int          `json:"final_placement"`
	Eliminations   int           `json:"eliminations"`
	Points         int           `json:"points"`
}

type Standing struct {
	ParticipantID uuid.UUID       `json:"participant_id"`
	DisplayName   string          `json:"display_name"`
	Rank          int             `json:"rank"`
	Score         int             `json:"score"`
	Payout        decimal.Decimal `json:"payout"`
	Entries       []EntryResult   `json:"entries"`
}

type entryKey struct {
	eventID uuid.UUID
	number  int
}

// scoreboard indexes the tracker state once so a full leaderboard can be
// derived without rescanning the pools per participant.
type scoreboard struct {
	cfg          ScoringConfig
	prizePool    decimal.Decimal
	entrants     map[uuid.UUID]Entrant
	poolSize     map[uuid.UUID]int
	eliminations map[entryKey]int
}

func newScoreboard(entrants []Entrant, cfg ScoringConfig, prizePool decimal.Decimal) *scoreboard {
	sb := &scoreboard{
		cfg:          cfg,
		prizePool:    prizePool,
		entrants:     make(map[uuid.UUID]Entrant, len(entrants)),
		poolSize:     make(map[uuid.UUID]int),
		eliminations: make(map[entryKey]int),
	}
	for _, e := range entrants {
		sb.entrants[e.ID] = e
		sb.poolSize[e.EventID]++
		if e.IsEliminated && e.EliminatedBy != nil && !e.EliminatedBy.Self {
			sb.eliminations[entryKey{e.EventID, e.EliminatedBy.Number}]++
		}
	}
	return sb
}

// placementPoints is (N + 1) - p for an event of N entries, 0 without a placement.
func placementPoints(placement *int, poolSize int) int {
	if placement == nil {
		return 0
	}
	return poolSize + 1 - *placement
}

func (sb *scoreboard) entry(a Assignment) (EntryResult, bool) {
	e, ok := sb.entrants[a.EntrantID]
	if !ok {
		return EntryResult{}, false
	}
	res := EntryResult{
		EntrantID:      e.ID,
		EventID:        e.EventID,
		Number:         e.Number,
		WrestlerName:   e.WrestlerName,
		Status:         e.Status(),
		FinalPlacement: e.FinalPlacement,
		Eliminations:   sb.eliminations[entryKey{e.EventID, e.Number}],
	}
	if sb.cfg.Mode != WinnerTakesAll {
		res.Points = placementPoints(e.FinalPlacement, sb.poolSize[e.EventID])
		if sb.cfg.EliminationPointsEnabled {
			res.Points += res.Eliminations * sb.cfg.PointsPerElimination
		}
	}
	return res, true
}

func (sb *scoreboard) standing(p Participant, assignments []Assignment) Standing {
	st := Standing{
		ParticipantID: p.ID,
		DisplayName:   p.DisplayName,
		Payout:        decimal.Zero,
		Entries:       []EntryResult{},
	}
	holdsWinner := false
	for _, a := range assignments {
		if a.ParticipantID != p.ID {
			continue
		}
		res, ok := sb.entry(a)
		if !ok {
			continue
		}
		st.Entries = append(st.Entries, res)
		st.Score += res.Points
		if res.FinalPlacement != nil && *res.FinalPlacement == 1 {
			holdsWinner = true
		}
	}
	if sb.cfg.Mode == WinnerTakesAll && holdsWinner {
		st.Payout = sb.prizePool
		st.Score = int(sb.prizePool.IntPart())
	}
	return st
}

// Score computes one participant's score from the current tracker state.
//
// points_based and combined sum (N + 1) - placement over the participant's
// entries, N being the size of each entry's own event, plus elimination
// points when enabled. winner_takes_all scores the whole prize pool for the
// holder of placement 1 and 0 for everyone else.
func Score(participantID uuid.UUID, assignments []Assignment, entrants []Entrant, cfg ScoringConfig, prizePool decimal.Decimal) int {
	sb := newScoreboard(entrants, cfg, prizePool)
	return sb.standing(Participant{ID: participantID}, assignments).Score
}

// PrizePool is the configured prize pool, or the buy-in times the number of
// entries when none is set.
func PrizePool(l *League, entries int) decimal.Decimal {
	if l.PrizePool.Valid {
		return l.PrizePool.Decimal
	}
	return l.BuyIn.Mul(decimal.NewFromInt(int64(entries)))
}

// Leaderboard ranks every participant by descending score. Ties keep the
// setup order of the participants and share a rank.
func Leaderboard(participants []Participant, assignments []Assignment, entrants []Entrant, cfg ScoringConfig, prizePool decimal.Decimal) []Standing {
	ordered := slices.Clone(participants)
	slices.SortStableFunc(ordered, func(a, b Participant) int {
		return cmp.Compare(a.Position, b.Position)
	})

	sb := newScoreboard(entrants, cfg, prizePool)
	standings := make([]Standing, 0, len(ordered))
	for _, p := range ordered {
		standings = append(standings, sb.standing(p, assignments))
	}

	slices.SortStableFunc(standings, func(a, b Standing) int {
		return cmp.Compare(b.Score, a.Score)
	})
	for i := range standings {
		if i > 0 && standings[i].Score == standings[i-1].Score {
			standings[i].Rank = standings[i-1].Rank
		} else {
			standings[i].Rank = i + 1
		}
	}
	return standings
}
