package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/rumble-raffle/internal/league"
	"github.com/AdamBeresnev/rumble-raffle/internal/utils"
	"github.com/google/uuid"
)

// DefaultPoolSize is the entrant count of a Royal Rumble.
const DefaultPoolSize = 30

type EventService struct {
	events    EventRepository
	wrestlers WrestlerRepository
	now       func() time.Time
}

func NewEventService(events EventRepository, wrestlers WrestlerRepository) *EventService {
	return &EventService{events: events, wrestlers: wrestlers, now: time.Now}
}

type CreateEventInput struct {
	Name string `json:"name"`
	Year int    `json:"year"`
	// Size defaults to DefaultPoolSize.
	Size int `json:"size"`
}

type EventWithPool struct {
	league.Event
	Entrants []league.Entrant `json:"entrants"`
}

// CreateEvent creates an upcoming event with placeholder entries 1..size.
func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (*EventWithPool, error) {
	name := utils.SanitizeName(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: event name is required", league.ErrValidation)
	}
	if in.Year <= 0 {
		return nil, fmt.Errorf("%w: year must be positive", league.ErrValidation)
	}
	size := in.Size
	if size == 0 {
		size = DefaultPoolSize
	}

	event := &league.Event{
		ID:        uuid.New(),
		Name:      name,
		Year:      in.Year,
		Status:    league.EventUpcoming,
		CreatedAt: s.now().UTC(),
	}
	pool, err := league.NewPool(event.ID, size)
	if err != nil {
		return nil, err
	}

	if err := s.events.CreateEvent(ctx, event, pool); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	slog.Info("event created", "event_id", event.ID, "name", event.Name, "size", size)
	return &EventWithPool{Event: *event, Entrants: pool}, nil
}

func (s *EventService) SetEventStatus(ctx context.Context, eventID uuid.UUID, to league.EventStatus) (*league.Event, error) {
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	switch to {
	case league.EventUpcoming, league.EventLive, league.EventCompleted:
	default:
		return nil, fmt.Errorf("%w: %q", league.ErrInvalidStatus, to)
	}
	if !event.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: event cannot go from %s to %s", league.ErrInvalidTransition, event.Status, to)
	}

	if err := s.events.SetEventStatus(ctx, eventID, event.Status, to); err != nil {
		return nil, err
	}
	event.Status = to
	return event, nil
}

// SearchWrestlers returns roster names matching q, best match first.
func (s *EventService) SearchWrestlers(ctx context.Context, q string) ([]string, error) {
	names, err := s.wrestlers.ListWrestlers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	return league.NewRoster(names).Search(q), nil
}
