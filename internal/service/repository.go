package service

import (
	"context"
	"time"

	"github.com/AdamBeresnev/rumble-raffle/internal/league"
	"github.com/AdamBeresnev/rumble-raffle/internal/store"
	"github.com/google/uuid"
)

type LeagueRepository interface {
	CreateLeague(ctx context.Context, l *league.League) error
	GetLeague(ctx context.Context, id uuid.UUID) (*league.League, error)
	GetLeagueBySlug(ctx context.Context, slug string) (*league.League, error)
	ListParticipants(ctx context.Context, leagueID uuid.UUID) ([]league.Participant, error)
	ListAssignments(ctx context.Context, leagueID uuid.UUID) ([]league.Assignment, error)
	AddParticipant(ctx context.Context, p *league.Participant) error
	SetEntryCount(ctx context.Context, leagueID, participantID uuid.UUID, count int) error
	DistributeEntries(ctx context.Context, leagueID uuid.UUID, poolSize int) ([]league.Participant, error)
	RemoveParticipant(ctx context.Context, leagueID, participantID uuid.UUID) error
	CompleteLeague(ctx context.Context, leagueID uuid.UUID) error
	CommitDraw(ctx context.Context, leagueID uuid.UUID, drawnAt time.Time, deal store.DealFunc) ([]league.Assignment, error)
}

type EventRepository interface {
	CreateEvent(ctx context.Context, event *league.Event, pool []league.Entrant) error
	GetEvent(ctx context.Context, id uuid.UUID) (*league.Event, error)
	SetEventStatus(ctx context.Context, id uuid.UUID, from, to league.EventStatus) error
	ListEntrants(ctx context.Context, eventIDs ...uuid.UUID) ([]league.Entrant, error)
	MutateEntrant(ctx context.Context, eventID uuid.UUID, number int, fn store.MutateFunc) (*league.Entrant, error)
}

type WrestlerRepository interface {
	ListWrestlers(ctx context.Context) ([]string, error)
	AddWrestler(ctx context.Context, name string) error
}
