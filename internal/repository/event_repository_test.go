package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventMock(t *testing.T) (*EventRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEventRepo(db), mock
}

const publishSQL = `UPDATE events SET status = ?, published_date = CURDATE(), last_modified = CURRENT_TIMESTAMP
			   WHERE id = ? AND status = ?`

func TestPublishTransitionsDraftOnly(t *testing.T) {
	t.Run("draft transitions", func(t *testing.T) {
		repo, mock := newEventMock(t)
		mock.ExpectExec(regexp.QuoteMeta(publishSQL)).
			WithArgs("Publish", 5, "Draft").
			WillReturnResult(sqlmock.NewResult(0, 1))

		changed, err := repo.Publish(context.Background(), 5)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already published affects nothing", func(t *testing.T) {
		repo, mock := newEventMock(t)
		mock.ExpectExec(regexp.QuoteMeta(publishSQL)).
			WithArgs("Publish", 5, "Draft").
			WillReturnResult(sqlmock.NewResult(0, 0))

		changed, err := repo.Publish(context.Background(), 5)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOwnerOfUnknownEvent(t *testing.T) {
	repo, mock := newEventMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT organiser_id FROM events WHERE id = ?`)).
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows([]string{"organiser_id"}))

	_, err := repo.OwnerOf(context.Background(), 404)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestDeleteByIDAndOrganiser(t *testing.T) {
	t.Run("cascade removes bookings then tiers then the event", func(t *testing.T) {
		repo, mock := newEventMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT organiser_id FROM events WHERE id = ?`)).
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"organiser_id"}).AddRow(12))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM bookings WHERE event_id = ?`)).
			WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM ticket_types WHERE event_id = ?`)).
			WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM events WHERE id = ?`)).
			WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.DeleteByIDAndOrganiser(context.Background(), 5, 12)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("foreign organiser is rejected and nothing is deleted", func(t *testing.T) {
		repo, mock := newEventMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT organiser_id FROM events WHERE id = ?`)).
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"organiser_id"}).AddRow(12))
		mock.ExpectRollback()

		err := repo.DeleteByIDAndOrganiser(context.Background(), 5, 99)
		assert.ErrorIs(t, err, ErrNotOwner)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown event", func(t *testing.T) {
		repo, mock := newEventMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT organiser_id FROM events WHERE id = ?`)).
			WithArgs(404).
			WillReturnRows(sqlmock.NewRows([]string{"organiser_id"}))
		mock.ExpectRollback()

		err := repo.DeleteByIDAndOrganiser(context.Background(), 404, 12)
		assert.ErrorIs(t, err, ErrEventNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateFieldsUnknownEvent(t *testing.T) {
	repo, mock := newEventMock(t)
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE events SET title = ?, description = ?, event_date = ?, last_modified = CURRENT_TIMESTAMP WHERE id = ?`)).
		WithArgs("New title", "desc", "2026-10-01", 404).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM events WHERE id = ? LIMIT 1`)).
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	err := repo.UpdateFields(context.Background(), 404, "New title", "desc", "2026-10-01")
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
