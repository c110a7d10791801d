package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/AdamBeresnev/rumble-raffle/internal/db"
	"github.com/AdamBeresnev/rumble-raffle/internal/league"
	"github.com/AdamBeresnev/rumble-raffle/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var (
	_ LeagueRepository   = (*store.LeagueStore)(nil)
	_ EventRepository    = (*store.EventStore)(nil)
	_ WrestlerRepository = (*store.WrestlerStore)(nil)
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Open("file::memory:?_foreign_keys=on")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	database.SetMaxOpenConns(1)

	require.NoError(t, db.RunMigrations(database.DB), "Failed to apply migrations")

	t.Cleanup(func() { database.Close() })
	return database
}

// setupFileTestDB opens a database file with the production connection
// options, so concurrent callers get their own connections and contend for
// the write lock.
func setupFileTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Open(db.DSN(filepath.Join(t.TempDir(), "rumble_raffle.db")))
	require.NoError(t, err, "Failed to open file DB")

	require.NoError(t, db.RunMigrations(database.DB), "Failed to apply migrations")

	t.Cleanup(func() { database.Close() })
	return database
}

// inOrder is a Rand that leaves the tickets in participant order, so the
// first participant owns the lowest numbers.
type inOrder struct{}

func (inOrder) IntN(n int) int { return n - 1 }

type testEnv struct {
	leagueStore *store.LeagueStore
	eventStore  *store.EventStore

	leagues     *LeagueService
	events      *EventService
	draws       *DrawService
	tracker     *TrackerService
	leaderboard *LeaderboardService
}

func newTestEnv(t *testing.T, rng league.Rand, opts TrackerOptions) *testEnv {
	t.Helper()
	return newTestEnvWithDB(t, setupTestDB(t), rng, opts)
}

func newTestEnvWithDB(t *testing.T, database *sqlx.DB, rng league.Rand, opts TrackerOptions) *testEnv {
	t.Helper()

	leagueStore := store.NewLeagueStore(database)
	eventStore := store.NewEventStore(database)
	wrestlerStore := store.NewWrestlerStore(database)

	return &testEnv{
		leagueStore: leagueStore,
		eventStore:  eventStore,
		leagues:     NewLeagueService(leagueStore, eventStore),
		events:      NewEventService(eventStore, wrestlerStore),
		draws:       NewDrawService(leagueStore, rng),
		tracker:     NewTrackerService(leagueStore, eventStore, wrestlerStore, opts),
		leaderboard: NewLeaderboardService(leagueStore, eventStore),
	}
}

func (env *testEnv) createEvent(t *testing.T, size int) uuid.UUID {
	t.Helper()
	event, err := env.events.CreateEvent(context.Background(), CreateEventInput{Name: "Royal Rumble", Year: 2025, Size: size})
	require.NoError(t, err)
	return event.ID
}

func (env *testEnv) createLeague(t *testing.T, in CreateLeagueInput, counts ...int) (*league.League, []league.Participant) {
	t.Helper()
	ctx := context.Background()

	if in.Name == "" {
		in.Name = "Office Rumble"
	}
	l, err := env.leagues.CreateLeague(ctx, in)
	require.NoError(t, err)

	var participants []league.Participant
	for i, c := range counts {
		p, err := env.leagues.AddParticipant(ctx, l.ID, string(rune('A'+i)), c)
		require.NoError(t, err)
		participants = append(participants, *p)
	}
	return l, participants
}
