package request_test

import (
	"context"
	"testing"
	"time"

	"go-leave/internal/request"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupRepoTxTest binds the repository to one connection pool and attaches a
// transaction opened on a second one. Expectations registered on the tx mock
// prove each statement ran inside the transaction; the pool mock carries no
// expectations, so any statement leaking there fails the test.
func setupRepoTxTest(t *testing.T) (request.Repository, sqlmock.Sqlmock, sqlmock.Sqlmock, func()) {
	t.Helper()

	poolDB, poolMock, err := sqlmock.New()
	assert.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: poolDB}), &gorm.Config{})
	assert.NoError(t, err)

	txDB, txMock, err := sqlmock.New()
	assert.NoError(t, err)

	txMock.ExpectBegin()
	tx, err := txDB.Begin()
	assert.NoError(t, err)

	repo := request.NewRepository(gormDB).WithTx(tx)
	cleanup := func() {
		poolDB.Close()
		txDB.Close()
	}
	return repo, poolMock, txMock, cleanup
}

func TestRequestRepository_WithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("update rides the attached transaction", func(t *testing.T) {
		repo, poolMock, txMock, cleanup := setupRepoTxTest(t)
		defer cleanup()

		txMock.ExpectExec(`UPDATE "leave_requests" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		l := pendingLeave(1, 7, "engineering")
		err := repo.Update(ctx, l)

		assert.NoError(t, err)
		assert.Equal(t, 2, l.Version)
		assert.NoError(t, txMock.ExpectationsWereMet())
		assert.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("negative concurrent writer bumped the version first", func(t *testing.T) {
		repo, poolMock, txMock, cleanup := setupRepoTxTest(t)
		defer cleanup()

		txMock.ExpectExec(`UPDATE "leave_requests" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, pendingLeave(1, 7, "engineering"))

		assert.ErrorIs(t, err, request.ErrVersionMismatch)
		assert.NoError(t, txMock.ExpectationsWereMet())
		assert.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("conflict check and insert share the attached transaction", func(t *testing.T) {
		repo, poolMock, txMock, cleanup := setupRepoTxTest(t)
		defer cleanup()

		txMock.ExpectQuery(`SELECT count\(\*\) FROM "leave_requests"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		txMock.ExpectQuery(`INSERT INTO "leave_requests"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		start := time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)
		end := time.Date(2030, 3, 8, 0, 0, 0, 0, time.UTC)

		conflict, err := repo.HasOverlappingRequest(ctx, 7, start, end, nil)
		assert.NoError(t, err)
		assert.False(t, conflict)

		l := pendingLeave(0, 7, "engineering")
		assert.NoError(t, repo.Create(ctx, l))

		assert.NoError(t, txMock.ExpectationsWereMet())
		assert.NoError(t, poolMock.ExpectationsWereMet())
	})

	t.Run("find by id rides the attached transaction", func(t *testing.T) {
		repo, poolMock, txMock, cleanup := setupRepoTxTest(t)
		defer cleanup()

		rows := sqlmock.NewRows([]string{"id", "employee_id", "department", "manager_status", "hr_status", "version"}).
			AddRow(int64(1), int64(7), "engineering", "PENDING", "PENDING", int64(1))
		txMock.ExpectQuery(`SELECT \* FROM "leave_requests"`).
			WillReturnRows(rows)

		got, err := repo.FindByID(ctx, 1)

		assert.NoError(t, err)
		assert.Equal(t, uint(7), got.EmployeeID)
		assert.NoError(t, txMock.ExpectationsWereMet())
		assert.NoError(t, poolMock.ExpectationsWereMet())
	})
}
