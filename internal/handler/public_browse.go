// Package handler exposes HTTP handlers for both authenticated and public
// endpoints.  This file defines handlers for the public browsing API:
// unauthenticated visitors see published events grouped by organiser and
// can open an event page.  Sensitive fields (organiser account IDs are
// fine, credentials and draft events are not) never appear in responses.
package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avelier/event-ticketing/internal/repository"
)

// PublicHandler aggregates repositories needed for unauthenticated browsing.
type PublicHandler struct {
	Events   *repository.EventRepo
	Tickets  *repository.TicketRepo
	Bookings *repository.BookingRepo
}

func NewPublicHandler(events *repository.EventRepo, tickets *repository.TicketRepo, bookings *repository.BookingRepo) *PublicHandler {
	if events == nil || tickets == nil || bookings == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Events: events, Tickets: tickets, Bookings: bookings}
}

// publicEvent is an event entry in the attendee listing.
type publicEvent struct {
	ID             uint64 `json:"id"`
	Title          string `json:"title"`
	EventDate      string `json:"event_date"`
	TotalRemaining int    `json:"total_remaining"`
}

// organiserGroup is one organiser's block of the home listing.
type organiserGroup struct {
	OrganiserName string        `json:"organiser_name"`
	Description   string        `json:"description"`
	Events        []publicEvent `json:"events"`
}

// Home renders the attendee landing data: published events that still
// have tickets, grouped by organiser.  Sold-out and draft events never
// appear.  Group order follows the first event date of each organiser
// because rows arrive sorted by date.
func (h *PublicHandler) Home(c echo.Context) error {
	rows, err := h.Events.ListPublic(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	order := make([]uint64, 0)
	groups := make(map[uint64]*organiserGroup)
	for _, r := range rows {
		g, ok := groups[r.OrganiserID]
		if !ok {
			g = &organiserGroup{OrganiserName: r.OrganiserName, Description: r.OrganiserDesc}
			groups[r.OrganiserID] = g
			order = append(order, r.OrganiserID)
		}
		g.Events = append(g.Events, publicEvent{
			ID:             r.EventID,
			Title:          r.Title,
			EventDate:      r.EventDate,
			TotalRemaining: r.TotalRemaining,
		})
	}

	out := make([]organiserGroup, 0, len(order))
	for _, id := range order {
		out = append(out, *groups[id])
	}
	return c.JSON(http.StatusOK, echo.Map{"organisers": out})
}

// EventPage returns one published event with its ticket tiers and the
// bookings taken so far.  Loading the page counts as a view; the counter
// update is fire-and-forget and never blocks the response.
func (h *PublicHandler) EventPage(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()

	e, err := h.Events.GetPublishedByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	if err := h.Events.IncrementViews(ctx, eventID); err != nil {
		log.Printf("public: increment views for event %d failed: %v", eventID, err)
	}

	tiers, err := h.Tickets.ListByEvent(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	bookings, err := h.Bookings.ListByEvent(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	bookingItems := make([]echo.Map, 0, len(bookings))
	for _, b := range bookings {
		bookingItems = append(bookingItems, echo.Map{
			"attendee_name": b.AttendeeName,
			"category":      b.Category.String(),
			"quantity":      b.Quantity,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"event": echo.Map{
			"id":          e.ID,
			"title":       e.Title,
			"description": e.Description,
			"event_date":  e.EventDate,
			"views":       e.Views + 1, // reflect this page load
		},
		"tickets":  toTicketResp(tiers),
		"bookings": bookingItems,
	})
}
