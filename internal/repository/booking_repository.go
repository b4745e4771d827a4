package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/avelier/event-ticketing/internal/model"
)

// BookingRepo appends and lists booking rows.  Bookings are immutable:
// there is no update path, and rows are only removed when their event is
// cascade-deleted.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// ErrZeroQuantity is returned when the recorder is asked to persist a
// line item with quantity <= 0.  The reservation coordinator skips such
// lines before calling RecordTx, so hitting this error indicates a bug in
// the caller rather than bad user input.
var ErrZeroQuantity = errors.New("booking quantity must be positive")

// RecordTx appends one immutable booking row within the scope of an
// existing transaction.  It assigns a fresh UUID reference and populates
// the generated ID and timestamps on the returned model.  The caller must
// commit or roll back the transaction.
func (r *BookingRepo) RecordTx(ctx context.Context, tx *sql.Tx, eventID uint64, attendeeName string, category model.Category, quantity int) (*model.Booking, error) {
	if quantity <= 0 {
		return nil, ErrZeroQuantity
	}
	ref := uuid.NewString()
	const q = `INSERT INTO bookings (reference, event_id, attendee_name, category, quantity) VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, ref, eventID, attendeeName, category.String(), quantity)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	b := &model.Booking{
		ID:           uint64(id),
		Reference:    ref,
		EventID:      eventID,
		AttendeeName: attendeeName,
		Category:     category,
		Quantity:     quantity,
	}
	// Query back the row to populate the DB-assigned timestamp.
	const sel = `SELECT created_at FROM bookings WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, b.ID).Scan(&b.CreatedAt); err != nil {
		return nil, err
	}
	return b, nil
}

// ListByEvent returns all bookings for an event in insertion order.  Both
// the organiser bookings view and the attendee event page use it.
func (r *BookingRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Booking, error) {
	const q = `SELECT id, reference, event_id, attendee_name, category, quantity, created_at
			   FROM bookings WHERE event_id = ? ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.Reference, &b.EventID, &b.AttendeeName, &b.Category, &b.Quantity, &b.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}
