package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avelier/event-ticketing/internal/model"
	"github.com/avelier/event-ticketing/internal/queue"
	"github.com/avelier/event-ticketing/internal/repository"
	"github.com/avelier/event-ticketing/internal/service"
)

// ReservationHandler exposes the attendee booking endpoint.
type ReservationHandler struct {
	Reservations *service.Reservation
	Events       *repository.EventRepo
}

func NewReservationHandler(res *service.Reservation, events *repository.EventRepo) *ReservationHandler {
	if res == nil || events == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: res, Events: events}
}

// Reserve handles POST /user/event/:id.
//
// The browser form submits `name` once plus parallel `category`, `amount`
// and `ticket` fields, one triple per tier shown on the page; a page with
// a single tier submits single values, which parse as one-element arrays.
// `ticket` is the remaining count the page displayed when it was
// rendered.  It participates in a sanity check only; the decrement runs
// against the live row.
//
// Browser clients get a 303 back to /user/home on success.  Clients that
// sent JSON get the booked lines back instead.
func (h *ReservationHandler) Reserve(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	form, err := c.FormParams()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid form"})
	}
	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	categories := form["category"]
	amounts := form["amount"]
	tickets := form["ticket"]
	if len(categories) == 0 || len(categories) != len(amounts) || len(categories) != len(tickets) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category/amount/ticket fields must align"})
	}

	lines := make([]service.ReservationLine, 0, len(categories))
	for i := range categories {
		cat, ok := model.ParseCategory(categories[i])
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown category"})
		}
		requested, err := strconv.Atoi(strings.TrimSpace(amounts[i]))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be a number"})
		}
		available, err := strconv.Atoi(strings.TrimSpace(tickets[i]))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "ticket must be a number"})
		}
		lines = append(lines, service.ReservationLine{Category: cat, Requested: requested, RenderedAvailable: available})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	booked, err := h.Reservations.Reserve(ctx, eventID, name, lines)
	if err != nil {
		return h.reserveError(c, err)
	}

	// Best-effort notification; a broker outage never fails the booking.
	go h.publishRecorded(eventID, name, booked)

	if strings.Contains(c.Request().Header.Get("Content-Type"), echo.MIMEApplicationJSON) {
		return c.JSON(http.StatusCreated, echo.Map{"booked": booked})
	}
	return c.Redirect(http.StatusSeeOther, "/user/home")
}

// reserveError maps coordinator failures onto the HTTP error taxonomy.
func (h *ReservationHandler) reserveError(c echo.Context, err error) error {
	var partial *service.PartialBookingError
	if errors.As(err, &partial) {
		applied := make([]string, 0, len(partial.Applied))
		for _, cat := range partial.Applied {
			applied = append(applied, cat.String())
		}
		body := echo.Map{
			"failed_category":    partial.Failed.String(),
			"applied_categories": applied,
		}
		switch {
		case errors.Is(err, repository.ErrNegativeInventory):
			body["error"] = "not enough tickets remaining"
			return c.JSON(http.StatusConflict, body)
		case errors.Is(err, service.ErrUnknownEventOrCategory):
			body["error"] = "unknown event or category"
			return c.JSON(http.StatusNotFound, body)
		default:
			body["error"] = "reservation failed"
			return c.JSON(http.StatusInternalServerError, body)
		}
	}
	if errors.Is(err, service.ErrUnknownEventOrCategory) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown event or category"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reservation failed"})
}

// publishRecorded emits the booking.recorded message for a committed
// reservation.  Runs outside the request path.
func (h *ReservationHandler) publishRecorded(eventID uint64, name string, booked []service.BookedLine) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ev := queue.BookingRecordedEvent{
		EventID:      eventID,
		AttendeeName: name,
		RecordedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if e, err := h.Events.GetByID(ctx, eventID); err == nil {
		ev.EventTitle = e.Title
		ev.EventDate = e.EventDate
	}
	for _, b := range booked {
		ev.Lines = append(ev.Lines, queue.BookedEntry{Reference: b.Reference, Category: b.Category.String(), Quantity: b.Quantity})
		ev.TotalTickets += b.Quantity
	}
	_ = queue.PublishBookingRecorded(ctx, ev)
}
