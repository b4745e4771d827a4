// Package repository contains data access logic for ticket tiers.  The
// ticket_types table is the inventory store: one row per (event,
// category) pair holding the remaining count.  Remaining must never be
// negative; every write path below enforces that at the SQL level rather
// than trusting callers.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/avelier/event-ticketing/internal/model"
)

// TicketRepo manages persistence for ticket tiers.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo constructs a TicketRepo with the given DB handle.
func NewTicketRepo(db *sql.DB) *TicketRepo {
	return &TicketRepo{db: db}
}

// DB exposes the underlying sql.DB for callers that need to begin
// transactions spanning multiple repositories.
func (r *TicketRepo) DB() *sql.DB {
	return r.db
}

// Create inserts a new ticket tier.  The (event_id, category) unique key
// enforces at most one tier per category per event; a duplicate insert
// surfaces as ErrCategoryTaken.  Negative initial counts are rejected
// before touching the database.
func (r *TicketRepo) Create(ctx context.Context, t *model.TicketType) error {
	if t.Remaining < 0 {
		return ErrNegativeInventory
	}
	const q = `INSERT INTO ticket_types (event_id, category, price_cents, remaining) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, t.EventID, t.Category.String(), t.PriceCents, t.Remaining)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrCategoryTaken
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	const sel = `SELECT id, event_id, category, price_cents, remaining, created_at FROM ticket_types WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, t.ID).Scan(
		&t.ID, &t.EventID, &t.Category, &t.PriceCents, &t.Remaining, &t.CreatedAt)
}

// GetByID retrieves a tier by its primary key, scoped to an event so a
// ticket ID from one event cannot address another event's tier.
func (r *TicketRepo) GetByID(ctx context.Context, ticketID, eventID uint64) (*model.TicketType, error) {
	const q = `SELECT id, event_id, category, price_cents, remaining, created_at FROM ticket_types WHERE id = ? AND event_id = ?`
	var t model.TicketType
	err := r.db.QueryRowContext(ctx, q, ticketID, eventID).Scan(
		&t.ID, &t.EventID, &t.Category, &t.PriceCents, &t.Remaining, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

// GetRemaining returns the current remaining count for an event/category
// pair, or ErrTicketNotFound when no such tier exists.
func (r *TicketRepo) GetRemaining(ctx context.Context, eventID uint64, category model.Category) (int, error) {
	var remaining int
	err := r.db.QueryRowContext(ctx,
		`SELECT remaining FROM ticket_types WHERE event_id = ? AND category = ?`,
		eventID, category.String()).Scan(&remaining)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrTicketNotFound
		}
		return 0, err
	}
	return remaining, nil
}

// SetRemaining overwrites the remaining count.  This is the organiser
// reset path (editing the configured amount); it rejects negative values
// with ErrNegativeInventory and unknown tiers with ErrTicketNotFound.
func (r *TicketRepo) SetRemaining(ctx context.Context, eventID uint64, category model.Category, n int) error {
	if n < 0 {
		return ErrNegativeInventory
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE ticket_types SET remaining = ? WHERE event_id = ? AND category = ?`,
		n, eventID, category.String())
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx,
			`SELECT 1 FROM ticket_types WHERE event_id = ? AND category = ? LIMIT 1`,
			eventID, category.String()).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTicketNotFound
			}
			return err
		}
	}
	return nil
}

// DecrementRemainingTx atomically subtracts qty from the live remaining
// count inside the caller's transaction.  The conditional `remaining >= ?`
// is the floor-at-zero guard: when current inventory cannot cover the
// request the UPDATE matches no row and ErrNegativeInventory is returned,
// so the stored value can never go negative regardless of what quantity
// the client claims was available at render time.  A missing tier is
// reported as ErrTicketNotFound instead.
func (r *TicketRepo) DecrementRemainingTx(ctx context.Context, tx *sql.Tx, eventID uint64, category model.Category, qty int) error {
	if qty < 0 {
		return ErrNegativeInventory
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE ticket_types SET remaining = remaining - ? WHERE event_id = ? AND category = ? AND remaining >= ?`,
		qty, eventID, category.String(), qty)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows > 0 {
		return nil
	}
	// No row matched: either the tier does not exist or it exists with
	// insufficient inventory.  Probe within the same transaction.
	var one int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM ticket_types WHERE event_id = ? AND category = ? LIMIT 1`,
		eventID, category.String()).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTicketNotFound
		}
		return err
	}
	if qty == 0 {
		// Zero-quantity decrement against an existing row is a no-op;
		// MySQL reports zero affected rows when values do not change.
		return nil
	}
	return ErrNegativeInventory
}

// ListByEvent returns all tiers for an event in insertion order.  The
// ordering matters: reservation forms render tiers in this order and
// submit parallel arrays back in the same positions.
func (r *TicketRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.TicketType, error) {
	const q = `SELECT id, event_id, category, price_cents, remaining, created_at
			   FROM ticket_types WHERE event_id = ? ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.TicketType, 0)
	for rows.Next() {
		var t model.TicketType
		if err := rows.Scan(&t.ID, &t.EventID, &t.Category, &t.PriceCents, &t.Remaining, &t.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// CountByEvent returns how many tiers an event has.  The lifecycle
// service uses it for the publish and edit preconditions.
func (r *TicketRepo) CountByEvent(ctx context.Context, eventID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ticket_types WHERE event_id = ?`, eventID).Scan(&n)
	return n, err
}

// Update overwrites category, price and remaining for one tier.  Moving
// the tier onto a category the event already uses trips the unique key
// and surfaces as ErrCategoryTaken.  Setting remaining is a reset, not a
// delta, and negative values are rejected.
func (r *TicketRepo) Update(ctx context.Context, t *model.TicketType) error {
	if t.Remaining < 0 {
		return ErrNegativeInventory
	}
	const q = `UPDATE ticket_types SET category = ?, price_cents = ?, remaining = ? WHERE id = ? AND event_id = ?`
	res, err := r.db.ExecContext(ctx, q, t.Category.String(), t.PriceCents, t.Remaining, t.ID, t.EventID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrCategoryTaken
		}
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx,
			`SELECT 1 FROM ticket_types WHERE id = ? AND event_id = ? LIMIT 1`, t.ID, t.EventID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTicketNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes one tier from an event.
func (r *TicketRepo) Delete(ctx context.Context, ticketID, eventID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM ticket_types WHERE id = ? AND event_id = ?`, ticketID, eventID)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrTicketNotFound
	}
	return nil
}
