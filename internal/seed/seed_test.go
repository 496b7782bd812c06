package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursehub/internal/app/migrations"
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/repositories"
	"github.com/yigit/coursehub/internal/db"
)

func newSeedDB(t *testing.T) *db.Database {
	t.Helper()
	database, err := db.NewSQLiteDB(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, migrations.NewMigrator(database).Migrate(context.Background()))
	return database
}

func TestCreateDefaultData_SeedsOnce(t *testing.T) {
	ctx := context.Background()
	database := newSeedDB(t)
	repos := repositories.NewRepositories(database)

	require.NoError(t, CreateDefaultData(ctx, database, zerolog.Nop()))
	require.NoError(t, CreateDefaultData(ctx, database, zerolog.Nop()))

	students, err := repos.StudentRepository.List(ctx)
	require.NoError(t, err)
	assert.Len(t, students, len(demoStudents))

	name := DemoCourseName
	courses, err := repos.CourseRepository.List(ctx, models.CourseFilter{Name: &name})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Len(t, courses[0].Students, len(demoStudents))
}

func TestCreateDefaultData_FailureLeavesNothingBehind(t *testing.T) {
	ctx := context.Background()
	database := newSeedDB(t)
	repos := repositories.NewRepositories(database)

	// enrolment is the last write, so every earlier row has to be rolled back
	_, err := database.SQL.ExecContext(ctx, `DROP TABLE `+models.TableCourseStudents)
	require.NoError(t, err)

	require.Error(t, CreateDefaultData(ctx, database, zerolog.Nop()))

	students, err := repos.StudentRepository.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, students)

	var courses int
	require.NoError(t, database.SQL.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+models.TableCourses).Scan(&courses))
	assert.Zero(t, courses)
}
