package model

import "time"

// Organiser mirrors the 'organisers' table.  Credentials are stored as
// bcrypt hashes; the plain password never leaves the auth handler.
type Organiser struct {
	ID           uint64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OrganiserSettings holds the public profile shown above an organiser's
// published events.  Exactly one row exists per organiser; it is created
// with defaults at registration time.
type OrganiserSettings struct {
	OrganiserID uint64
	DisplayName string
	Description string
	UpdatedAt   time.Time
}
