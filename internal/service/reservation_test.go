package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelier/event-ticketing/internal/model"
	"github.com/avelier/event-ticketing/internal/repository"
)

const (
	publishedEventSQL = `SELECT id, organiser_id, title, description, DATE_FORMAT(event_date, '%Y-%m-%d'), status,
					  DATE_FORMAT(published_date, '%Y-%m-%d'), views, created_at, last_modified
			   FROM events WHERE id = ? AND status = ?`
	decrementSQL  = `UPDATE ticket_types SET remaining = remaining - ? WHERE event_id = ? AND category = ? AND remaining >= ?`
	probeSQL      = `SELECT 1 FROM ticket_types WHERE event_id = ? AND category = ? LIMIT 1`
	insertSQL     = `INSERT INTO bookings (reference, event_id, attendee_name, category, quantity) VALUES (?, ?, ?, ?, ?)`
	createdAtSQL  = `SELECT created_at FROM bookings WHERE id = ?`
)

func newReservation(t *testing.T) (*Reservation, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	events := repository.NewEventRepo(db)
	tickets := repository.NewTicketRepo(db)
	bookings := repository.NewBookingRepo(db)
	return NewReservation(events, tickets, bookings), mock
}

func expectPublishedEvent(mock sqlmock.Sqlmock, eventID uint64) {
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(publishedEventSQL)).
		WithArgs(eventID, "Publish").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "organiser_id", "title", "description", "event_date", "status",
			"published_date", "views", "created_at", "last_modified",
		}).AddRow(eventID, 12, "Warehouse Gig", "doors at 8", "2026-10-01", "Publish",
			"2026-08-15", 4, now, now))
}

func TestReserveMultiCategoryWithZeroLine(t *testing.T) {
	svc, mock := newReservation(t)
	expectPublishedEvent(mock, 7)
	mock.ExpectBegin()
	// concession x2 decrements and books
	mock.ExpectExec(regexp.QuoteMeta(decrementSQL)).
		WithArgs(2, 7, "concession", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertSQL)).
		WithArgs(sqlmock.AnyArg(), 7, "Dana", "concession", 2).
		WillReturnResult(sqlmock.NewResult(31, 1))
	mock.ExpectQuery(regexp.QuoteMeta(createdAtSQL)).
		WithArgs(31).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	// student x0 touches inventory as a no-op and records nothing
	mock.ExpectExec(regexp.QuoteMeta(decrementSQL)).
		WithArgs(0, 7, "student", 0).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(probeSQL)).
		WithArgs(7, "student").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectCommit()

	booked, err := svc.Reserve(context.Background(), 7, "Dana", []ReservationLine{
		{Category: model.CategoryConcession, Requested: 2, RenderedAvailable: 5},
		{Category: model.CategoryStudent, Requested: 0, RenderedAvailable: 3},
	})
	require.NoError(t, err)
	require.Len(t, booked, 1)
	assert.Equal(t, model.CategoryConcession, booked[0].Category)
	assert.Equal(t, 2, booked[0].Quantity)
	assert.NotEmpty(t, booked[0].Reference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveDepletesToZero(t *testing.T) {
	svc, mock := newReservation(t)
	expectPublishedEvent(mock, 7)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(decrementSQL)).
		WithArgs(10, 7, "non-concession", 10).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertSQL)).
		WithArgs(sqlmock.AnyArg(), 7, "Kim", "non-concession", 10).
		WillReturnResult(sqlmock.NewResult(32, 1))
	mock.ExpectQuery(regexp.QuoteMeta(createdAtSQL)).
		WithArgs(32).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectCommit()

	booked, err := svc.Reserve(context.Background(), 7, "Kim", []ReservationLine{
		{Category: model.CategoryNonConcession, Requested: 10, RenderedAvailable: 10},
	})
	require.NoError(t, err)
	require.Len(t, booked, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveRejectsOverRequestBeforeWriting(t *testing.T) {
	svc, mock := newReservation(t)
	expectPublishedEvent(mock, 7)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Reserve(context.Background(), 7, "Lee", []ReservationLine{
		{Category: model.CategoryConcession, Requested: 7, RenderedAvailable: 5},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrNegativeInventory)

	var partial *PartialBookingError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, model.CategoryConcession, partial.Failed)
	assert.Empty(t, partial.Applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveRollsBackWhenLaterLineFails(t *testing.T) {
	svc, mock := newReservation(t)
	expectPublishedEvent(mock, 7)
	mock.ExpectBegin()
	// first line succeeds inside the transaction
	mock.ExpectExec(regexp.QuoteMeta(decrementSQL)).
		WithArgs(1, 7, "concession", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertSQL)).
		WithArgs(sqlmock.AnyArg(), 7, "Ana", "concession", 1).
		WillReturnResult(sqlmock.NewResult(33, 1))
	mock.ExpectQuery(regexp.QuoteMeta(createdAtSQL)).
		WithArgs(33).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	// second line raced behind another reservation and the floor holds
	mock.ExpectExec(regexp.QuoteMeta(decrementSQL)).
		WithArgs(4, 7, "student", 4).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(probeSQL)).
		WithArgs(7, "student").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectRollback()

	_, err := svc.Reserve(context.Background(), 7, "Ana", []ReservationLine{
		{Category: model.CategoryConcession, Requested: 1, RenderedAvailable: 5},
		{Category: model.CategoryStudent, Requested: 4, RenderedAvailable: 4},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrNegativeInventory)

	var partial *PartialBookingError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, model.CategoryStudent, partial.Failed)
	assert.Equal(t, []model.Category{model.CategoryConcession}, partial.Applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveUnknownCategory(t *testing.T) {
	svc, mock := newReservation(t)
	expectPublishedEvent(mock, 7)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(decrementSQL)).
		WithArgs(1, 7, "concession", 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(probeSQL)).
		WithArgs(7, "concession").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectRollback()

	_, err := svc.Reserve(context.Background(), 7, "Sam", []ReservationLine{
		{Category: model.CategoryConcession, Requested: 1, RenderedAvailable: 5},
	})
	assert.ErrorIs(t, err, ErrUnknownEventOrCategory)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveUnpublishedEvent(t *testing.T) {
	svc, mock := newReservation(t)
	mock.ExpectQuery(regexp.QuoteMeta(publishedEventSQL)).
		WithArgs(99, "Publish").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "organiser_id", "title", "description", "event_date", "status",
			"published_date", "views", "created_at", "last_modified",
		}))

	_, err := svc.Reserve(context.Background(), 99, "Sam", []ReservationLine{
		{Category: model.CategoryConcession, Requested: 1, RenderedAvailable: 5},
	})
	assert.ErrorIs(t, err, ErrUnknownEventOrCategory)
	assert.NoError(t, mock.ExpectationsWereMet())
}
