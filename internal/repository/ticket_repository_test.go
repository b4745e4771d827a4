package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelier/event-ticketing/internal/model"
)

func newMock(t *testing.T) (*TicketRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTicketRepo(db), mock
}

const decrementSQL = `UPDATE ticket_types SET remaining = remaining - ? WHERE event_id = ? AND category = ? AND remaining >= ?`
const probeSQL = `SELECT 1 FROM ticket_types WHERE event_id = ? AND category = ? LIMIT 1`

func TestDecrementRemainingTx(t *testing.T) {
	t.Run("covers request", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(decrementSQL)).
			WithArgs(2, 7, "concession", 2).
			WillReturnResult(sqlmock.NewResult(0, 1))

		tx, err := repo.DB().Begin()
		require.NoError(t, err)
		err = repo.DecrementRemainingTx(context.Background(), tx, 7, model.CategoryConcession, 2)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("floor holds when inventory is short", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(decrementSQL)).
			WithArgs(10, 7, "student", 10).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta(probeSQL)).
			WithArgs(7, "student").
			WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

		tx, err := repo.DB().Begin()
		require.NoError(t, err)
		err = repo.DecrementRemainingTx(context.Background(), tx, 7, model.CategoryStudent, 10)
		assert.ErrorIs(t, err, ErrNegativeInventory)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing tier", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(decrementSQL)).
			WithArgs(1, 7, "non-concession", 1).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta(probeSQL)).
			WithArgs(7, "non-concession").
			WillReturnRows(sqlmock.NewRows([]string{"1"}))

		tx, err := repo.DB().Begin()
		require.NoError(t, err)
		err = repo.DecrementRemainingTx(context.Background(), tx, 7, model.CategoryNonConcession, 1)
		assert.ErrorIs(t, err, ErrTicketNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero quantity is a no-op on an existing tier", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(decrementSQL)).
			WithArgs(0, 7, "student", 0).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta(probeSQL)).
			WithArgs(7, "student").
			WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

		tx, err := repo.DB().Begin()
		require.NoError(t, err)
		err = repo.DecrementRemainingTx(context.Background(), tx, 7, model.CategoryStudent, 0)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("negative quantity rejected before any SQL", func(t *testing.T) {
		repo, mock := newMock(t)
		mock.ExpectBegin()
		tx, err := repo.DB().Begin()
		require.NoError(t, err)
		err = repo.DecrementRemainingTx(context.Background(), tx, 7, model.CategoryStudent, -1)
		assert.ErrorIs(t, err, ErrNegativeInventory)
	})
}

func TestSetRemainingRejectsNegative(t *testing.T) {
	repo, _ := newMock(t)
	err := repo.SetRemaining(context.Background(), 7, model.CategoryConcession, -3)
	assert.ErrorIs(t, err, ErrNegativeInventory)
}

func TestCreateRejectsNegativeInitialCount(t *testing.T) {
	repo, _ := newMock(t)
	err := repo.Create(context.Background(), &model.TicketType{
		EventID:   7,
		Category:  model.CategoryConcession,
		Remaining: -1,
	})
	assert.ErrorIs(t, err, ErrNegativeInventory)
}

func TestCreateDuplicateCategory(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO ticket_types (event_id, category, price_cents, remaining) VALUES (?, ?, ?, ?)`)).
		WithArgs(7, "student", uint32(1500), 20).
		WillReturnError(errDuplicate1062{})

	err := repo.Create(context.Background(), &model.TicketType{
		EventID:    7,
		Category:   model.CategoryStudent,
		PriceCents: 1500,
		Remaining:  20,
	})
	assert.ErrorIs(t, err, ErrCategoryTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// errDuplicate1062 mimics the mysql driver's duplicate-key error text.
type errDuplicate1062 struct{}

func (errDuplicate1062) Error() string {
	return "Error 1062 (23000): Duplicate entry '7-student' for key 'ticket_types.uq_event_category'"
}

func TestDeleteMissingTicket(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM ticket_types WHERE id = ? AND event_id = ?`)).
		WithArgs(99, 7).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 99, 7)
	assert.ErrorIs(t, err, ErrTicketNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
