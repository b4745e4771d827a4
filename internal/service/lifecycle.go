// Package service implements the business rules between the HTTP
// handlers and the repository layer: the event lifecycle state machine
// and the reservation transaction coordinator.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/avelier/event-ticketing/internal/model"
	"github.com/avelier/event-ticketing/internal/repository"
)

// ErrInvalidInput is returned for malformed lifecycle requests (empty
// title, unparseable date).  Handlers translate it into HTTP 400.
var ErrInvalidInput = errors.New("invalid input")

// Lifecycle enforces the Draft -> Publish state machine and its
// preconditions.  Events move forward only: publish is the single
// transition, and deletion removes the entity rather than adding a
// terminal state.  All operations take the acting organiser explicitly;
// nothing here reads ambient session state.
type Lifecycle struct {
	Events  *repository.EventRepo
	Tickets *repository.TicketRepo
}

// NewLifecycle constructs a Lifecycle service.  Both repositories must be
// non-nil.
func NewLifecycle(events *repository.EventRepo, tickets *repository.TicketRepo) *Lifecycle {
	if events == nil || tickets == nil {
		panic("nil repository passed to NewLifecycle")
	}
	return &Lifecycle{Events: events, Tickets: tickets}
}

// CreateDraft validates the inputs and inserts a new Draft event.  The
// date must carry date-only precision ("2006-01-02").
func (s *Lifecycle) CreateDraft(ctx context.Context, organiserID uint64, title, description, eventDate string) (*model.Event, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidInput
	}
	if _, err := time.Parse("2006-01-02", eventDate); err != nil {
		return nil, ErrInvalidInput
	}
	e := &model.Event{
		OrganiserID: organiserID,
		Title:       title,
		Description: strings.TrimSpace(description),
		EventDate:   eventDate,
	}
	if err := s.Events.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Publish transitions an event from Draft to Publish.  It fails with
// repository.ErrNotOwner when the caller does not own the event and with
// repository.ErrNoTicketTypes when the event has no tiers.  Publishing an
// already published event is a no-op success: the transition happened
// once, re-attempting it changes nothing.
func (s *Lifecycle) Publish(ctx context.Context, eventID, organiserID uint64) error {
	ownerID, err := s.Events.OwnerOf(ctx, eventID)
	if err != nil {
		return err
	}
	if ownerID != organiserID {
		return repository.ErrNotOwner
	}
	n, err := s.Tickets.CountByEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNoTicketTypes
	}
	// Zero rows transitioned means the event was already Publish; the
	// existence and ownership checks above rule out the other causes, so
	// re-publishing falls through as a no-op success.
	_, err = s.Events.Publish(ctx, eventID)
	return err
}

// Update applies field changes to an event.  Editing is blocked until the
// event has at least one ticket tier; in that case the submitted fields
// are not persisted and the handler echoes them back to the caller.
func (s *Lifecycle) Update(ctx context.Context, eventID, organiserID uint64, title, description, eventDate string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrInvalidInput
	}
	if _, err := time.Parse("2006-01-02", eventDate); err != nil {
		return ErrInvalidInput
	}
	ownerID, err := s.Events.OwnerOf(ctx, eventID)
	if err != nil {
		return err
	}
	if ownerID != organiserID {
		return repository.ErrNotOwner
	}
	n, err := s.Tickets.CountByEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNoTicketTypes
	}
	return s.Events.UpdateFields(ctx, eventID, title, strings.TrimSpace(description), eventDate)
}

// Delete removes an event and all of its ticket tiers and bookings.  The
// cascade is explicit and transactional in the repository.
func (s *Lifecycle) Delete(ctx context.Context, eventID, organiserID uint64) error {
	return s.Events.DeleteByIDAndOrganiser(ctx, eventID, organiserID)
}
