package model

import "time"

// Booking is an immutable record of one reservation line item.  There is
// no edit or cancel flow; rows are only removed when their event is
// deleted.  Quantity is always positive: zero-quantity line items in a
// multi-category submission are skipped before the recorder is called.
//
// Reference is an opaque UUID handed back to the attendee, who has no
// account to look bookings up under.
type Booking struct {
	ID           uint64    // bookings.id
	Reference    string    // bookings.reference (UUID)
	EventID      uint64    // bookings.event_id
	AttendeeName string    // bookings.attendee_name (free text, unverified)
	Category     Category  // bookings.category
	Quantity     int       // bookings.quantity
	CreatedAt    time.Time // bookings.created_at
}
