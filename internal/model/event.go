package model

import "time"

// Event status values.  An event starts as Draft and may move to
// Publish exactly once; there is no reverse transition.  Deleting an
// event removes the row rather than introducing a terminal state.
const (
	StatusDraft   = "Draft"
	StatusPublish = "Publish"
)

// Event represents an organiser's listing.
//
// EventDate and PublishedDate carry date-only precision ("2006-01-02");
// PublishedDate is nil until the event is published.  Views counts
// attendee page loads and is incremented independently of the booking
// core.
type Event struct {
	ID            uint64     // events.id
	OrganiserID   uint64     // events.organiser_id
	Title         string     // events.title
	Description   string     // events.description
	EventDate     string     // events.event_date (DATE, "2006-01-02")
	Status        string     // events.status (Draft | Publish)
	PublishedDate *string    // events.published_date (DATE, nil while Draft)
	Views         uint64     // events.views
	CreatedAt     time.Time  // events.created_at
	LastModified  time.Time  // events.last_modified
}

// Published reports whether the event is visible to attendees.
func (e *Event) Published() bool { return e.Status == StatusPublish }
