package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avelier/event-ticketing/internal/model"
	"github.com/avelier/event-ticketing/internal/repository"
	"github.com/avelier/event-ticketing/internal/service"
)

// OrganiserHandler bundles the lifecycle service and repositories behind
// the authenticated organiser endpoints.
type OrganiserHandler struct {
	Lifecycle *service.Lifecycle
	Events    *repository.EventRepo
	Tickets   *repository.TicketRepo
	Bookings  *repository.BookingRepo
	Settings  *repository.SettingsRepo
}

// NewOrganiserHandler constructs an OrganiserHandler and panics if any dependency is nil.
func NewOrganiserHandler(lc *service.Lifecycle, events *repository.EventRepo, tickets *repository.TicketRepo, bookings *repository.BookingRepo, settings *repository.SettingsRepo) *OrganiserHandler {
	if lc == nil || events == nil || tickets == nil || bookings == nil || settings == nil {
		panic("nil dependency passed to NewOrganiserHandler")
	}
	return &OrganiserHandler{Lifecycle: lc, Events: events, Tickets: tickets, Bookings: bookings, Settings: settings}
}

// ----- DTOs -----

type eventReq struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	EventDate   string `json:"event_date" form:"event_date"`
}

type eventResp struct {
	ID            uint64       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	EventDate     string       `json:"event_date"`
	Status        string       `json:"status"`
	PublishedDate *string      `json:"published_date,omitempty"`
	Views         uint64       `json:"views"`
	Tickets       []ticketResp `json:"tickets,omitempty"`
}

type ticketResp struct {
	ID         uint64 `json:"id"`
	Category   string `json:"category"`
	PriceCents uint32 `json:"price_cents"`
	Remaining  int    `json:"remaining"`
}

func toEventResp(e *model.Event) eventResp {
	return eventResp{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		EventDate:     e.EventDate,
		Status:        e.Status,
		PublishedDate: e.PublishedDate,
		Views:         e.Views,
	}
}

func toTicketResp(ts []model.TicketType) []ticketResp {
	out := make([]ticketResp, 0, len(ts))
	for _, t := range ts {
		out = append(out, ticketResp{ID: t.ID, Category: t.Category.String(), PriceCents: t.PriceCents, Remaining: t.Remaining})
	}
	return out
}

// Home lists the organiser's settings together with all of their events,
// drafts included, each with its ticket tiers.
func (h *OrganiserHandler) Home(c echo.Context) error {
	oid, err := getOrganiserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()

	settings, err := h.Settings.Get(ctx, oid)
	if err != nil && !errors.Is(err, repository.ErrSettingsNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	events, err := h.Events.ListByOrganiser(ctx, oid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	out := make([]eventResp, 0, len(events))
	for i := range events {
		resp := toEventResp(&events[i])
		tiers, err := h.Tickets.ListByEvent(ctx, events[i].ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		resp.Tickets = toTicketResp(tiers)
		out = append(out, resp)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"settings": echo.Map{
			"display_name": settings.DisplayName,
			"description":  settings.Description,
		},
		"events": out,
	})
}

// Create inserts a new Draft event for the organiser.
func (h *OrganiserHandler) Create(c echo.Context) error {
	oid, err := getOrganiserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e, err := h.Lifecycle.CreateDraft(ctx, oid, req.Title, req.Description, req.EventDate)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and event_date (YYYY-MM-DD) required"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
	}
	return c.JSON(http.StatusCreated, toEventResp(e))
}

// Update edits an event's fields.  Editing is gated on the event having
// at least one ticket tier; when the gate rejects, the submitted fields
// come back in the response body so a form can re-render them unsaved.
func (h *OrganiserHandler) Update(c echo.Context) error {
	oid, err := getOrganiserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, ok := pathID(c, "eventId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err = h.Lifecycle.Update(ctx, eventID, oid, req.Title, req.Description, req.EventDate)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"updated": eventID})
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and event_date (YYYY-MM-DD) required"})
	case errors.Is(err, repository.ErrEventNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, repository.ErrNotOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your event"})
	case errors.Is(err, repository.ErrNoTicketTypes):
		// nothing was saved; hand the submission back for the form
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":       "add at least one ticket type before editing",
			"title":       req.Title,
			"description": req.Description,
			"event_date":  req.EventDate,
		})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
}

// Publish moves an event from Draft to Publish.
func (h *OrganiserHandler) Publish(c echo.Context) error {
	oid, err := getOrganiserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, ok := pathID(c, "eventId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err = h.Lifecycle.Publish(ctx, eventID, oid)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"published": eventID})
	case errors.Is(err, repository.ErrEventNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, repository.ErrNotOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your event"})
	case errors.Is(err, repository.ErrNoTicketTypes):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "add at least one ticket type before publishing"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "publish failed"})
	}
}

// Delete removes an event with its tiers and bookings.
func (h *OrganiserHandler) Delete(c echo.Context) error {
	oid, err := getOrganiserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, ok := pathID(c, "eventId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err = h.Lifecycle.Delete(ctx, eventID, oid)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"deleted": eventID})
	case errors.Is(err, repository.ErrEventNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, repository.ErrNotOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your event"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
}

// ListBookings returns the booking rows for an owned event.
func (h *OrganiserHandler) ListBookings(c echo.Context) error {
	oid, err := getOrganiserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, ok := pathID(c, "eventId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx := c.Request().Context()

	ownerID, err := h.Events.OwnerOf(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if ownerID != oid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your event"})
	}

	bookings, err := h.Bookings.ListByEvent(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]echo.Map, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, echo.Map{
			"reference":     b.Reference,
			"attendee_name": b.AttendeeName,
			"category":      b.Category.String(),
			"quantity":      b.Quantity,
			"created_at":    b.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
