package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/AdamBeresnev/rumble-raffle/internal/league"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLeague(t *testing.T) {
	env := newTestEnv(t, nil, TrackerOptions{})
	ctx := context.Background()
	men := env.createEvent(t, 30)
	women := env.createEvent(t, 30)

	l, err := env.leagues.CreateLeague(ctx, CreateLeagueInput{Name: "Rumble at the Office!", EventID: men, BuyIn: decimal.NewFromInt(5)})
	require.NoError(t, err)
	assert.Equal(t, league.StatusSetup, l.Status)
	assert.Equal(t, league.PointsBased, l.Mode)
	assert.True(t, strings.HasPrefix(l.Slug, "rumble-at-the-office-"), l.Slug)

	resolved, err := env.leagues.ResolveLeague(ctx, l.Slug)
	require.NoError(t, err)
	assert.Equal(t, l.ID, resolved.ID)
	resolved, err = env.leagues.ResolveLeague(ctx, l.ID.String())
	require.NoError(t, err)
	assert.Equal(t, l.Slug, resolved.Slug)

	testCases := []struct {
		name string
		in   CreateLeagueInput
		err  error
	}{
		{
			name: "missing name",
			in:   CreateLeagueInput{Name: "<i></i>", EventID: men},
			err:  league.ErrInvalidConfig,
		},
		{
			name: "combined without secondary event",
			in:   CreateLeagueInput{Name: "Both", EventID: men, ScoringConfig: league.ScoringConfig{Mode: league.Combined}},
			err:  league.ErrInvalidConfig,
		},
		{
			name: "secondary event outside combined",
			in:   CreateLeagueInput{Name: "Both", EventID: men, SecondaryEventID: &women},
			err:  league.ErrInvalidConfig,
		},
		{
			name: "unknown mode",
			in:   CreateLeagueInput{Name: "Odd", EventID: men, ScoringConfig: league.ScoringConfig{Mode: "highest_card"}},
			err:  league.ErrInvalidConfig,
		},
		{
			name: "negative buy-in",
			in:   CreateLeagueInput{Name: "Owe", EventID: men, BuyIn: decimal.NewFromInt(-1)},
			err:  league.ErrInvalidConfig,
		},
		{
			name: "unknown event",
			in:   CreateLeagueInput{Name: "Ghost", EventID: uuid.New()},
			err:  league.ErrEventNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.leagues.CreateLeague(ctx, tc.in)
			assert.ErrorIs(t, err, tc.err)
		})
	}

	combined, err := env.leagues.CreateLeague(ctx, CreateLeagueInput{
		Name:             "Both Rumbles",
		EventID:          men,
		SecondaryEventID: &women,
		ScoringConfig:    league.ScoringConfig{Mode: league.Combined},
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{men, women}, combined.EventIDs())
}

func TestLeagueDetails(t *testing.T) {
	env := newTestEnv(t, nil, TrackerOptions{})
	ctx := context.Background()
	eventID := env.createEvent(t, 30)
	l, _ := env.createLeague(t, CreateLeagueInput{EventID: eventID, BuyIn: decimal.NewFromInt(2)}, 10, 12)

	details, err := env.leagues.GetLeagueDetails(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, details.PoolSize)
	assert.Equal(t, 22, details.Requested)
	assert.Len(t, details.Participants, 2)
	assert.True(t, decimal.NewFromInt(60).Equal(details.PrizePool))
}

func TestParticipants(t *testing.T) {
	env := newTestEnv(t, nil, TrackerOptions{})
	ctx := context.Background()
	eventID := env.createEvent(t, 30)
	l, participants := env.createLeague(t, CreateLeagueInput{EventID: eventID}, 10, 10)

	_, err := env.leagues.AddParticipant(ctx, l.ID, "   ", 1)
	assert.ErrorIs(t, err, league.ErrValidation)
	_, err = env.leagues.AddParticipant(ctx, l.ID, "Neg", -1)
	assert.ErrorIs(t, err, league.ErrNegativeEntryCount)
	assert.ErrorIs(t, env.leagues.SetEntryCount(ctx, l.ID, participants[0].ID, -2), league.ErrNegativeEntryCount)

	p, err := env.leagues.AddParticipant(ctx, l.ID, "<script>alert(1)</script>Carol", 10)
	require.NoError(t, err)
	assert.Equal(t, "alert(1)Carol", p.DisplayName)
	assert.Equal(t, 3, p.Position)

	require.NoError(t, env.leagues.RemoveParticipant(ctx, l.ID, participants[1].ID))
	require.NoError(t, env.leagues.SetEntryCount(ctx, l.ID, participants[0].ID, 20))

	_, err = env.draws.Draw(ctx, l.ID)
	require.NoError(t, err)

	_, err = env.leagues.AddParticipant(ctx, l.ID, "Late", 1)
	assert.ErrorIs(t, err, league.ErrLeagueLocked)
	assert.ErrorIs(t, env.leagues.SetEntryCount(ctx, l.ID, p.ID, 1), league.ErrLeagueLocked)
	assert.ErrorIs(t, env.leagues.RemoveParticipant(ctx, l.ID, p.ID), league.ErrLeagueLocked)
}

func TestDistributeEvenly(t *testing.T) {
	env := newTestEnv(t, nil, TrackerOptions{})
	ctx := context.Background()
	eventID := env.createEvent(t, 30)
	l, _ := env.createLeague(t, CreateLeagueInput{EventID: eventID}, 0, 0, 0, 0)

	dist, err := env.leagues.DistributeEvenly(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, dist.Share)
	assert.Equal(t, 2, dist.Remainder)

	details, err := env.leagues.GetLeagueDetails(ctx, l.ID)
	require.NoError(t, err)
	for _, p := range details.Participants {
		assert.Equal(t, 7, p.RequestedEntryCount)
	}

	// 28 of 30 handed out, the draw refuses
	_, err = env.draws.Draw(ctx, l.ID)
	assert.ErrorIs(t, err, league.ErrValidation)

	empty, _ := env.createLeague(t, CreateLeagueInput{Name: "Empty", EventID: eventID})
	_, err = env.leagues.DistributeEvenly(ctx, empty.ID)
	assert.ErrorIs(t, err, league.ErrValidation)
}

// lateJoiner adds a participant to the league the first time the pool is
// listed, as a concurrent AddParticipant would.
type lateJoiner struct {
	EventRepository
	leagues  LeagueRepository
	leagueID uuid.UUID
	joined   bool
}

func (j *lateJoiner) ListEntrants(ctx context.Context, eventIDs ...uuid.UUID) ([]league.Entrant, error) {
	if !j.joined {
		j.joined = true
		err := j.leagues.AddParticipant(ctx, &league.Participant{
			ID:                  uuid.New(),
			LeagueID:            j.leagueID,
			DisplayName:         "Late",
			RequestedEntryCount: 9,
			CreatedAt:           time.Now().UTC(),
		})
		if err != nil {
			return nil, err
		}
	}
	return j.EventRepository.ListEntrants(ctx, eventIDs...)
}

func TestDistributeEvenly_IncludesLateParticipant(t *testing.T) {
	env := newTestEnv(t, nil, TrackerOptions{})
	ctx := context.Background()
	eventID := env.createEvent(t, 30)
	l, _ := env.createLeague(t, CreateLeagueInput{EventID: eventID}, 0, 0, 0, 0)

	svc := NewLeagueService(env.leagueStore, &lateJoiner{
		EventRepository: env.eventStore,
		leagues:         env.leagueStore,
		leagueID:        l.ID,
	})
	dist, err := svc.DistributeEvenly(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, dist.Share)
	assert.Equal(t, 0, dist.Remainder)
	require.Len(t, dist.Participants, 5)

	details, err := env.leagues.GetLeagueDetails(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, details.Participants, 5)
	for _, p := range details.Participants {
		assert.Equal(t, 6, p.RequestedEntryCount, p.DisplayName)
	}
	assert.Equal(t, 30, details.Requested)
}

func TestCompleteLeague(t *testing.T) {
	env := newTestEnv(t, nil, TrackerOptions{})
	ctx := context.Background()
	eventID := env.createEvent(t, 30)
	l, _ := env.createLeague(t, CreateLeagueInput{EventID: eventID}, 30)

	assert.ErrorIs(t, env.leagues.CompleteLeague(ctx, l.ID), league.ErrInvalidTransition)

	_, err := env.draws.Draw(ctx, l.ID)
	require.NoError(t, err)
	require.NoError(t, env.leagues.CompleteLeague(ctx, l.ID))
	assert.ErrorIs(t, env.leagues.CompleteLeague(ctx, l.ID), league.ErrConflict)

	_, err = env.leagues.DistributeEvenly(ctx, l.ID)
	assert.ErrorIs(t, err, league.ErrLeagueLocked)
}
