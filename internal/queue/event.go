// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingRecordedEvent is published after an attendee's reservation has
// been committed. It carries enough detail for downstream consumers to
// log, notify, or feed analytics without querying the primary database.
type BookingRecordedEvent struct {
	EventID      uint64        `json:"event_id"`
	EventTitle   string        `json:"event_title"`
	EventDate    string        `json:"event_date"`
	AttendeeName string        `json:"attendee_name"`
	Lines        []BookedEntry `json:"lines"`
	TotalTickets int           `json:"total_tickets"`
	RecordedAt   string        `json:"recorded_at"`
}

// BookedEntry is one committed line of the reservation.
type BookedEntry struct {
	Reference string `json:"reference"`
	Category  string `json:"category"`
	Quantity  int    `json:"quantity"`
}
