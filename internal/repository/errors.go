// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as the
// services and handlers to distinguish between failure scenarios: for
// example, ErrNotOwner indicates that the calling organiser does not own
// the event being mutated, while ErrNegativeInventory signals that a
// write would drive a ticket tier's remaining count below zero.
package repository

import (
	"errors"
	"strings"
)

// ErrNotOwner is returned when an organiser attempts an operation on an
// event owned by someone else.  Handlers translate this into HTTP 403.
var ErrNotOwner = errors.New("not owner")

// ErrEventNotFound indicates that an event was not located in the DB.
var ErrEventNotFound = errors.New("event not found")

// ErrTicketNotFound indicates that no ticket tier exists for the
// requested (event, category) pair or ticket ID.
var ErrTicketNotFound = errors.New("ticket type not found")

// ErrNegativeInventory is returned when a write would leave a ticket
// tier with a remaining count below zero.  The stored value is never
// allowed to go negative; handlers translate this into HTTP 409.
var ErrNegativeInventory = errors.New("negative inventory")

// ErrCategoryTaken is returned when an organiser tries to create a
// second ticket tier with a category the event already has.
var ErrCategoryTaken = errors.New("category already exists for event")

// ErrNoTicketTypes is returned when a lifecycle operation requires the
// event to have at least one ticket tier and it has none.
var ErrNoTicketTypes = errors.New("event has no ticket types")

// isDuplicateKey reports whether err is the MySQL duplicate-entry error
// (code 1062), raised here when a unique key such as
// ticket_types(event_id, category) is violated.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
