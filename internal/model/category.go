// Package model defines the domain entities persisted by the repository
// layer.  Entities mirror the database tables; repositories own the SQL.
package model

import "strings"

// Category identifies a ticket tier.  The set is closed: free-text
// categories must never reach the inventory tables, so handlers parse
// submitted values through ParseCategory before anything is written.
type Category string

const (
	CategoryNonConcession Category = "non-concession"
	CategoryConcession    Category = "concession"
	CategoryStudent       Category = "student"
)

// AllCategories lists every valid category in display order.  It is used
// to build ticket creation forms (categories already taken by an event
// are filtered out) and to validate reservation submissions.
var AllCategories = []Category{CategoryNonConcession, CategoryConcession, CategoryStudent}

// ParseCategory normalizes a submitted category string and reports
// whether it names a known tier.
func ParseCategory(raw string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	switch c {
	case CategoryNonConcession, CategoryConcession, CategoryStudent:
		return c, true
	}
	return "", false
}

// String returns the wire form of the category.
func (c Category) String() string { return string(c) }
