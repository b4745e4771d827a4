package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/avelier/event-ticketing/internal/model"
	"github.com/avelier/event-ticketing/internal/repository"
)

// ErrUnknownEventOrCategory is returned when a reservation line names a
// ticket category that the event does not offer, or the event itself is
// missing or unpublished.
var ErrUnknownEventOrCategory = errors.New("unknown event or ticket category")

// ReservationLine is one tuple of the submitted order: the category, how
// many tickets the attendee requested, and how many the form claimed were
// available when it was rendered.  The rendered count travels back
// through hidden form fields; it is part of the external contract but it
// is a stale hint, never the value that gets written.
type ReservationLine struct {
	Category          model.Category
	Requested         int
	RenderedAvailable int
}

// BookedLine reports one persisted booking back to the caller.
type BookedLine struct {
	Reference string         `json:"reference"`
	Category  model.Category `json:"category"`
	Quantity  int            `json:"quantity"`
}

// PartialBookingError describes a multi-category submission that failed
// partway through.  The whole transaction is rolled back, so nothing in
// Applied persists; the field records which line items had already been
// processed when Failed aborted the order, which callers surface so the
// attendee knows where their submission stopped.
type PartialBookingError struct {
	Applied []model.Category // categories processed before the failure
	Failed  model.Category   // the category whose line aborted the order
	Err     error            // underlying cause
}

func (e *PartialBookingError) Error() string {
	return fmt.Sprintf("reservation aborted at category %q after %d line(s): %v", e.Failed, len(e.Applied), e.Err)
}

func (e *PartialBookingError) Unwrap() error { return e.Err }

// Reservation coordinates the booking/inventory transaction.  A
// submission of one or many (category, quantity) lines is applied as a
// single unit: every inventory decrement and booking insert happens
// inside one transaction, and a failure on any line rolls back the whole
// order.  Single- and multi-category submissions share this code path;
// a one-line order is simply the degenerate case.
type Reservation struct {
	Events   *repository.EventRepo
	Tickets  *repository.TicketRepo
	Bookings *repository.BookingRepo
}

// NewReservation constructs the coordinator.  All repositories must be
// non-nil and share the same underlying database.
func NewReservation(events *repository.EventRepo, tickets *repository.TicketRepo, bookings *repository.BookingRepo) *Reservation {
	if events == nil || tickets == nil || bookings == nil {
		panic("nil repository passed to NewReservation")
	}
	return &Reservation{Events: events, Tickets: tickets, Bookings: bookings}
}

// Reserve processes an attendee's order against a published event.
//
// Lines are processed in submission order.  For each line the remainder
// implied by the rendered form (renderedAvailable - requested) is checked
// first: a negative remainder means the client asked for more than the
// form offered and is rejected without touching storage.  The write
// itself never trusts that snapshot; it is an atomic decrement with a
// floor at zero against the live row, so a reservation that raced past
// another one fails cleanly instead of overbooking.  Lines with a zero
// quantity adjust nothing and never produce a booking row.
//
// On success the committed bookings are returned.  On failure the
// transaction is rolled back and a *PartialBookingError reports how far
// the order got.
func (s *Reservation) Reserve(ctx context.Context, eventID uint64, attendeeName string, lines []ReservationLine) ([]BookedLine, error) {
	attendeeName = strings.TrimSpace(attendeeName)
	if _, err := s.Events.GetPublishedByID(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, ErrUnknownEventOrCategory
		}
		return nil, err
	}
	tx, err := s.Events.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	booked := make([]BookedLine, 0, len(lines))
	applied := make([]model.Category, 0, len(lines))
	for _, line := range lines {
		if err := s.applyLine(ctx, tx, eventID, attendeeName, line, &booked); err != nil {
			return nil, &PartialBookingError{Applied: applied, Failed: line.Category, Err: err}
		}
		applied = append(applied, line.Category)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return booked, nil
}

// applyLine validates and applies a single order line inside the
// transaction: snapshot sanity check, atomic decrement, booking insert.
func (s *Reservation) applyLine(ctx context.Context, tx *sql.Tx, eventID uint64, attendeeName string, line ReservationLine, booked *[]BookedLine) error {
	if _, ok := model.ParseCategory(line.Category.String()); !ok {
		return ErrUnknownEventOrCategory
	}
	if line.Requested < 0 {
		return repository.ErrNegativeInventory
	}
	// A negative remainder means more was requested than the rendered
	// form offered; reject before any write.
	if line.RenderedAvailable-line.Requested < 0 {
		return repository.ErrNegativeInventory
	}
	if err := s.Tickets.DecrementRemainingTx(ctx, tx, eventID, line.Category, line.Requested); err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return ErrUnknownEventOrCategory
		}
		return err
	}
	if line.Requested == 0 {
		// zero-quantity lines never produce a booking row
		return nil
	}
	b, err := s.Bookings.RecordTx(ctx, tx, eventID, attendeeName, line.Category, line.Requested)
	if err != nil {
		return err
	}
	*booked = append(*booked, BookedLine{Reference: b.Reference, Category: b.Category, Quantity: b.Quantity})
	return nil
}
