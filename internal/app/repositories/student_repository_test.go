package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/config"
	"github.com/yigit/coursehub/internal/db"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
)

func newMockStudentRepository(t *testing.T) (*StudentRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return NewStudentRepository(sqlDB, db.StatementBuilder(config.DriverPostgres)), mock
}

func TestStudentRepository_Create(t *testing.T) {
	repo, mock := newMockStudentRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO students (name,birth_date) VALUES ($1,$2) RETURNING id`)).
		WithArgs("Ada", "1990-12-10").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))

	id, err := repo.Create(context.Background(), &models.Student{
		Name:      "Ada",
		BirthDate: models.NewDate(1990, time.December, 10),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newMockStudentRepository(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, birth_date FROM students WHERE id = $1`)).
			WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "birth_date"}).AddRow(4, "Ada", "1990-12-10"))

		student, err := repo.GetByID(context.Background(), 4)

		require.NoError(t, err)
		assert.Equal(t, "Ada", student.Name)
		assert.Equal(t, "1990-12-10", student.BirthDate.String())
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newMockStudentRepository(t)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM students`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "birth_date"}))

		_, err := repo.GetByID(context.Background(), 4)

		assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	})
}

func TestStudentRepository_ExistingIDs(t *testing.T) {
	t.Run("returns only stored ids", func(t *testing.T) {
		repo, mock := newMockStudentRepository(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM students WHERE id IN ($1,$2,$3)`)).
			WithArgs(int64(1), int64(2), int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(3))

		existing, err := repo.ExistingIDs(context.Background(), []int64{1, 2, 3})

		require.NoError(t, err)
		assert.Equal(t, map[int64]bool{1: true, 3: true}, existing)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no ids means no query", func(t *testing.T) {
		repo, mock := newMockStudentRepository(t)

		existing, err := repo.ExistingIDs(context.Background(), nil)

		require.NoError(t, err)
		assert.Empty(t, existing)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
