// Package repository contains data access logic for events.  An Event is
// an organiser's listing; it is created as a Draft and becomes visible to
// attendees once published.  Date columns (event_date, published_date)
// carry date-only precision and are read/written as "2006-01-02" strings.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/avelier/event-ticketing/internal/model"
)

// EventRepo manages persistence for events.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.  Use this method to
// obtain a *sql.DB when you need fine-grained transaction control.
func (r *EventRepo) DB() *sql.DB {
	return r.db
}

// Create inserts a new Draft event and assigns the generated ID back to
// the struct.  Status and the timestamps come from DB defaults and are
// scanned back after the insert.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	const q = `INSERT INTO events (organiser_id, title, description, event_date, status) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, e.OrganiserID, e.Title, e.Description, e.EventDate, model.StatusDraft)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	const sel = `SELECT id, organiser_id, title, description, DATE_FORMAT(event_date, '%Y-%m-%d'), status,
						DATE_FORMAT(published_date, '%Y-%m-%d'), views, created_at, last_modified
				 FROM events WHERE id = ?`
	return r.scanEvent(r.db.QueryRowContext(ctx, sel, e.ID), e)
}

// GetByID retrieves an event by its ID.  It returns ErrEventNotFound if
// there is no matching row.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	const q = `SELECT id, organiser_id, title, description, DATE_FORMAT(event_date, '%Y-%m-%d'), status,
					  DATE_FORMAT(published_date, '%Y-%m-%d'), views, created_at, last_modified
			   FROM events WHERE id = ?`
	var e model.Event
	if err := r.scanEvent(r.db.QueryRowContext(ctx, q, id), &e); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

// GetPublishedByID retrieves an event only when it is published.  It is
// used by the attendee event page so drafts never leak.
func (r *EventRepo) GetPublishedByID(ctx context.Context, id uint64) (*model.Event, error) {
	const q = `SELECT id, organiser_id, title, description, DATE_FORMAT(event_date, '%Y-%m-%d'), status,
					  DATE_FORMAT(published_date, '%Y-%m-%d'), views, created_at, last_modified
			   FROM events WHERE id = ? AND status = ?`
	var e model.Event
	if err := r.scanEvent(r.db.QueryRowContext(ctx, q, id, model.StatusPublish), &e); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

// ListByOrganiser returns every event the organiser owns, newest first.
// Draft/Publish filtering happens in the handler where the home page is
// assembled.
func (r *EventRepo) ListByOrganiser(ctx context.Context, organiserID uint64) ([]model.Event, error) {
	const q = `SELECT id, organiser_id, title, description, DATE_FORMAT(event_date, '%Y-%m-%d'), status,
					  DATE_FORMAT(published_date, '%Y-%m-%d'), views, created_at, last_modified
			   FROM events WHERE organiser_id = ? ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, organiserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Event, 0)
	for rows.Next() {
		var e model.Event
		if err := r.scanEventRows(rows, &e); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// OwnerOf returns the organiser that owns the event, or ErrEventNotFound.
func (r *EventRepo) OwnerOf(ctx context.Context, eventID uint64) (uint64, error) {
	var ownerID uint64
	err := r.db.QueryRowContext(ctx, `SELECT organiser_id FROM events WHERE id = ?`, eventID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrEventNotFound
		}
		return 0, err
	}
	return ownerID, nil
}

// UpdateFields overwrites title, description and event date and stamps
// last_modified.  Ownership and the ticket-gate precondition are enforced
// by the lifecycle service before this is called.  Returns
// ErrEventNotFound when the row does not exist.
func (r *EventRepo) UpdateFields(ctx context.Context, eventID uint64, title, description, eventDate string) error {
	const q = `UPDATE events SET title = ?, description = ?, event_date = ?, last_modified = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, title, description, eventDate, eventID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ? LIMIT 1`, eventID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrEventNotFound
			}
			return err
		}
		// Row exists, values were already identical.
	}
	return nil
}

// Publish transitions a Draft event to Publish and records the published
// date with date precision.  The WHERE clause restricts the transition to
// Draft rows, so re-publishing an already published event affects zero
// rows; the caller decides whether that is a no-op or an error.
// The returned bool reports whether a row actually transitioned.
func (r *EventRepo) Publish(ctx context.Context, eventID uint64) (bool, error) {
	const q = `UPDATE events SET status = ?, published_date = CURDATE(), last_modified = CURRENT_TIMESTAMP
			   WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, model.StatusPublish, eventID, model.StatusDraft)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// IncrementViews bumps the attendee view counter for a published event.
// Drafts are never counted.  The update is a single statement and is
// deliberately independent of the booking core.
func (r *EventRepo) IncrementViews(ctx context.Context, eventID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE events SET views = views + 1 WHERE id = ? AND status = ?`, eventID, model.StatusPublish)
	return err
}

// DeleteByIDAndOrganiser removes an event and all of its dependent rows
// provided the caller owns it.  The store does not cascade for ticket
// types and bookings, so the deletes are explicit and run inside a single
// transaction.  ErrEventNotFound is returned for unknown events and
// ErrNotOwner when the event belongs to another organiser.
func (r *EventRepo) DeleteByIDAndOrganiser(ctx context.Context, eventID, organiserID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	var dbOwnerID uint64
	err = tx.QueryRowContext(ctx, `SELECT organiser_id FROM events WHERE id = ?`, eventID).Scan(&dbOwnerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrEventNotFound
		}
		return err
	}
	if dbOwnerID != organiserID {
		err = ErrNotOwner
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM bookings WHERE event_id = ?`, eventID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM ticket_types WHERE event_id = ?`, eventID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, eventID); err != nil {
		return err
	}
	return nil
}

// PublicListingRow is one event in the attendee home listing.  It joins
// the organiser's public profile and the aggregate remaining inventory so
// the handler can group events by organiser without further queries.
type PublicListingRow struct {
	EventID        uint64 `json:"event_id"`
	Title          string `json:"title"`
	EventDate      string `json:"event_date"`
	OrganiserID    uint64 `json:"organiser_id"`
	OrganiserName  string `json:"organiser_name"`
	OrganiserDesc  string `json:"organiser_desc"`
	TotalRemaining int    `json:"total_remaining"`
}

// ListPublic returns published events that still have aggregate remaining
// inventory, joined with the organiser profile.  Sold-out events (sum of
// remaining = 0) drop out of the listing.  Rows are ordered by event date
// so grouped output stays chronological.
func (r *EventRepo) ListPublic(ctx context.Context) ([]PublicListingRow, error) {
	const q = `SELECT e.id, e.title, DATE_FORMAT(e.event_date, '%Y-%m-%d'),
					  s.organiser_id, s.display_name, s.description,
					  COALESCE(SUM(t.remaining), 0) AS total_remaining
			   FROM events e
			   JOIN organiser_settings s ON s.organiser_id = e.organiser_id
			   LEFT JOIN ticket_types t ON t.event_id = e.id
			   WHERE e.status = ?
			   GROUP BY e.id, e.title, e.event_date, s.organiser_id, s.display_name, s.description
			   HAVING total_remaining > 0
			   ORDER BY e.event_date ASC, e.id ASC`
	rows, err := r.db.QueryContext(ctx, q, model.StatusPublish)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]PublicListingRow, 0)
	for rows.Next() {
		var row PublicListingRow
		if err := rows.Scan(&row.EventID, &row.Title, &row.EventDate,
			&row.OrganiserID, &row.OrganiserName, &row.OrganiserDesc, &row.TotalRemaining); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// scanEvent scans a single-row query into an Event, mapping the nullable
// published_date column onto the pointer field.
func (r *EventRepo) scanEvent(row *sql.Row, e *model.Event) error {
	var published sql.NullString
	if err := row.Scan(&e.ID, &e.OrganiserID, &e.Title, &e.Description, &e.EventDate, &e.Status,
		&published, &e.Views, &e.CreatedAt, &e.LastModified); err != nil {
		return err
	}
	if published.Valid {
		p := published.String
		e.PublishedDate = &p
	}
	return nil
}

func (r *EventRepo) scanEventRows(rows *sql.Rows, e *model.Event) error {
	var published sql.NullString
	if err := rows.Scan(&e.ID, &e.OrganiserID, &e.Title, &e.Description, &e.EventDate, &e.Status,
		&published, &e.Views, &e.CreatedAt, &e.LastModified); err != nil {
		return err
	}
	if published.Valid {
		p := published.String
		e.PublishedDate = &p
	}
	return nil
}
