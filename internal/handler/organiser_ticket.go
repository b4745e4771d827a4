package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avelier/event-ticketing/internal/model"
	"github.com/avelier/event-ticketing/internal/repository"
)

// ticketReq is the add/edit payload for a ticket tier.  Amount is the
// remaining count; an edit overwrites it outright rather than applying a
// delta.
type ticketReq struct {
	Category   string `json:"category" form:"category"`
	PriceCents uint32 `json:"price_cents" form:"price_cents"`
	Amount     int    `json:"amount" form:"amount"`
}

// requireOwner loads the event's owner and compares against the caller.
// On failure it writes the error response and reports false; the caller
// must stop handling.
func (h *OrganiserHandler) requireOwner(c echo.Context, eventID uint64) (uint64, bool) {
	oid, err := getOrganiserID(c)
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		return 0, false
	}
	ownerID, err := h.Events.OwnerOf(c.Request().Context(), eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		return 0, false
	}
	if ownerID != oid {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "not your event"})
		return 0, false
	}
	return oid, true
}

// AddTicket creates a new tier on an owned event.  Each of the three
// categories may appear at most once per event.
func (h *OrganiserHandler) AddTicket(c echo.Context) error {
	eventID, ok := pathID(c, "eventId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	if _, ok := h.requireOwner(c, eventID); !ok {
		return nil
	}
	var req ticketReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	cat, ok := model.ParseCategory(req.Category)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
	}
	if req.Amount < 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "amount must not be negative"})
	}

	t := &model.TicketType{EventID: eventID, Category: cat, PriceCents: req.PriceCents, Remaining: req.Amount}
	if err := h.Tickets.Create(c.Request().Context(), t); err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryTaken):
			return c.JSON(http.StatusConflict, echo.Map{"error": "category already exists for this event"})
		case errors.Is(err, repository.ErrNegativeInventory):
			return c.JSON(http.StatusConflict, echo.Map{"error": "amount must not be negative"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create ticket failed"})
		}
	}
	return c.JSON(http.StatusCreated, ticketResp{ID: t.ID, Category: t.Category.String(), PriceCents: t.PriceCents, Remaining: t.Remaining})
}

// UpdateTicket overwrites a tier's category, price and remaining count.
func (h *OrganiserHandler) UpdateTicket(c echo.Context) error {
	eventID, ok := pathID(c, "eventId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ticketID, ok := pathID(c, "ticketId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	if _, ok := h.requireOwner(c, eventID); !ok {
		return nil
	}
	var req ticketReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	cat, ok := model.ParseCategory(req.Category)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
	}

	t := &model.TicketType{ID: ticketID, EventID: eventID, Category: cat, PriceCents: req.PriceCents, Remaining: req.Amount}
	err := h.Tickets.Update(c.Request().Context(), t)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, ticketResp{ID: t.ID, Category: t.Category.String(), PriceCents: t.PriceCents, Remaining: t.Remaining})
	case errors.Is(err, repository.ErrTicketNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	case errors.Is(err, repository.ErrCategoryTaken):
		return c.JSON(http.StatusConflict, echo.Map{"error": "category already exists for this event"})
	case errors.Is(err, repository.ErrNegativeInventory):
		return c.JSON(http.StatusConflict, echo.Map{"error": "amount must not be negative"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update ticket failed"})
	}
}

// DeleteTicket removes a tier from an owned event.
func (h *OrganiserHandler) DeleteTicket(c echo.Context) error {
	eventID, ok := pathID(c, "eventId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ticketID, ok := pathID(c, "ticketId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	if _, ok := h.requireOwner(c, eventID); !ok {
		return nil
	}

	err := h.Tickets.Delete(c.Request().Context(), ticketID, eventID)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"deleted": ticketID})
	case errors.Is(err, repository.ErrTicketNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete ticket failed"})
	}
}
