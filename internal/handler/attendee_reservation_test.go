package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelier/event-ticketing/internal/repository"
	"github.com/avelier/event-ticketing/internal/service"
)

func newReservationHandler(t *testing.T) (*ReservationHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	events := repository.NewEventRepo(db)
	tickets := repository.NewTicketRepo(db)
	bookings := repository.NewBookingRepo(db)
	return NewReservationHandler(service.NewReservation(events, tickets, bookings), events), mock
}

func postReservation(h *ReservationHandler, eventID string, form url.Values) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/user/event/"+eventID, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/user/event/:id")
	c.SetParamNames("id")
	c.SetParamValues(eventID)
	_ = h.Reserve(c)
	return rec
}

func TestReserveRequiresName(t *testing.T) {
	h, _ := newReservationHandler(t)
	rec := postReservation(h, "7", url.Values{
		"category": {"concession"},
		"amount":   {"1"},
		"ticket":   {"5"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReserveRequiresAlignedFields(t *testing.T) {
	h, _ := newReservationHandler(t)
	rec := postReservation(h, "7", url.Values{
		"name":     {"Dana"},
		"category": {"concession", "student"},
		"amount":   {"1"},
		"ticket":   {"5", "3"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReserveUnknownCategoryName(t *testing.T) {
	h, _ := newReservationHandler(t)
	rec := postReservation(h, "7", url.Values{
		"name":     {"Dana"},
		"category": {"vip"},
		"amount":   {"1"},
		"ticket":   {"5"},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReserveInvalidEventID(t *testing.T) {
	h, _ := newReservationHandler(t)
	rec := postReservation(h, "abc", url.Values{
		"name":     {"Dana"},
		"category": {"concession"},
		"amount":   {"1"},
		"ticket":   {"5"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReserveSingleCategoryFormRedirects(t *testing.T) {
	h, mock := newReservationHandler(t)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, organiser_id, title, description, DATE_FORMAT(event_date, '%Y-%m-%d'), status,
					  DATE_FORMAT(published_date, '%Y-%m-%d'), views, created_at, last_modified
			   FROM events WHERE id = ? AND status = ?`)).
		WithArgs(7, "Publish").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "organiser_id", "title", "description", "event_date", "status",
			"published_date", "views", "created_at", "last_modified",
		}).AddRow(7, 12, "Warehouse Gig", "doors at 8", "2026-10-01", "Publish", "2026-08-15", 4, now, now))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE ticket_types SET remaining = remaining - ? WHERE event_id = ? AND category = ? AND remaining >= ?`)).
		WithArgs(2, 7, "concession", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO bookings (reference, event_id, attendee_name, category, quantity) VALUES (?, ?, ?, ?, ?)`)).
		WithArgs(sqlmock.AnyArg(), 7, "Dana", "concession", 2).
		WillReturnResult(sqlmock.NewResult(31, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT created_at FROM bookings WHERE id = ?`)).
		WithArgs(31).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectCommit()

	rec := postReservation(h, "7", url.Values{
		"name":     {"Dana"},
		"category": {"concession"},
		"amount":   {"2"},
		"ticket":   {"5"},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/user/home", rec.Header().Get(echo.HeaderLocation))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveConflictWhenFormIsStale(t *testing.T) {
	h, mock := newReservationHandler(t)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, organiser_id, title, description, DATE_FORMAT(event_date, '%Y-%m-%d'), status,
					  DATE_FORMAT(published_date, '%Y-%m-%d'), views, created_at, last_modified
			   FROM events WHERE id = ? AND status = ?`)).
		WithArgs(7, "Publish").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "organiser_id", "title", "description", "event_date", "status",
			"published_date", "views", "created_at", "last_modified",
		}).AddRow(7, 12, "Warehouse Gig", "doors at 8", "2026-10-01", "Publish", "2026-08-15", 4, now, now))
	mock.ExpectBegin()
	// the page said 5 were left but another order got there first
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE ticket_types SET remaining = remaining - ? WHERE event_id = ? AND category = ? AND remaining >= ?`)).
		WithArgs(5, 7, "concession", 5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT 1 FROM ticket_types WHERE event_id = ? AND category = ? LIMIT 1`)).
		WithArgs(7, "concession").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectRollback()

	rec := postReservation(h, "7", url.Values{
		"name":     {"Dana"},
		"category": {"concession"},
		"amount":   {"5"},
		"ticket":   {"5"},
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed_category")
	assert.NoError(t, mock.ExpectationsWereMet())
}
