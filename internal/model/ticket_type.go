package model

import "time"

// TicketType is a priced tier of tickets for one event.  At most one
// row exists per (event, category) pair; the unique key backs the
// category uniqueness rule and gives the reservation coordinator a
// stable row to decrement.
//
// Remaining is a non-negative count.  It is only ever reduced by a
// successful reservation; an organiser edit overwrites it outright (a
// reset, not a delta).
type TicketType struct {
	ID         uint64    // ticket_types.id
	EventID    uint64    // ticket_types.event_id
	Category   Category  // ticket_types.category
	PriceCents uint32    // ticket_types.price_cents
	Remaining  int       // ticket_types.remaining
	CreatedAt  time.Time // ticket_types.created_at
}
