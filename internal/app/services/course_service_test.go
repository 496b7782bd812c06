package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursehub/internal/app/migrations"
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/app/repositories"
	"github.com/yigit/coursehub/internal/db"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
)

type serviceFixture struct {
	service CourseService
	repos   *repositories.Repositories
}

func newServiceFixture(t *testing.T, maxStudents int) *serviceFixture {
	t.Helper()
	database, err := db.NewSQLiteDB(filepath.Join(t.TempDir(), "courses.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, migrations.NewMigrator(database).Migrate(context.Background()))

	repos := repositories.NewRepositories(database)
	return &serviceFixture{
		service: NewCourseService(repos, database, maxStudents),
		repos:   repos,
	}
}

func (f *serviceFixture) students(t *testing.T, n int) []int64 {
	t.Helper()
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		id, err := f.repos.StudentRepository.Create(context.Background(), &models.Student{
			Name:      "student",
			BirthDate: models.NewDate(2000, time.January, i+1),
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestCreateCourse_PersistsStudentsSortedAndDeduplicated(t *testing.T) {
	f := newServiceFixture(t, 20)
	ids := f.students(t, 3)

	created, err := f.service.CreateCourse(context.Background(), &models.Course{
		ID:       999,
		Name:     "Algorithms",
		Students: []int64{ids[2], ids[0], ids[2]},
	})

	require.NoError(t, err)
	assert.NotEqual(t, int64(999), created.ID)
	assert.Equal(t, "Algorithms", created.Name)
	assert.Equal(t, []int64{ids[0], ids[2]}, created.Students)

	stored, err := f.service.GetCourseByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, stored)
}

func TestCreateCourse_Validation(t *testing.T) {
	f := newServiceFixture(t, 2)
	ids := f.students(t, 3)

	tests := []struct {
		name    string
		course  *models.Course
		wantErr error
	}{
		{"empty name", &models.Course{Name: "  "}, apperrors.ErrValidationFailed},
		{"name too long", &models.Course{Name: strings.Repeat("a", MaxCourseNameLength+1)}, apperrors.ErrValidationFailed},
		{"unknown student", &models.Course{Name: "A", Students: []int64{ids[0], 12345}}, apperrors.ErrValidationFailed},
		{"too many students", &models.Course{Name: "B", Students: ids}, apperrors.ErrValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreateCourse(context.Background(), tt.course)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	courses, err := f.service.ListCourses(context.Background(), models.CourseFilter{})
	require.NoError(t, err)
	assert.Empty(t, courses, "failed creates must not leave rows behind")
}

func TestCreateCourse_DuplicateName(t *testing.T) {
	f := newServiceFixture(t, 20)

	_, err := f.service.CreateCourse(context.Background(), &models.Course{Name: "Go"})
	require.NoError(t, err)

	_, err = f.service.CreateCourse(context.Background(), &models.Course{Name: "Go"})
	assert.ErrorIs(t, err, apperrors.ErrResourceAlreadyExists)
}

func TestListCourses_FiltersAndOrder(t *testing.T) {
	f := newServiceFixture(t, 20)
	ctx := context.Background()

	var created []*models.Course
	for _, name := range []string{"C", "A", "B"} {
		c, err := f.service.CreateCourse(ctx, &models.Course{Name: name})
		require.NoError(t, err)
		created = append(created, c)
	}

	all, err := f.service.ListCourses(ctx, models.CourseFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := range created {
		assert.Equal(t, created[i].ID, all[i].ID)
	}

	name := "A"
	byName, err := f.service.ListCourses(ctx, models.CourseFilter{Name: &name})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, created[1].ID, byName[0].ID)

	id := created[2].ID
	byID, err := f.service.ListCourses(ctx, models.CourseFilter{ID: &id})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "B", byID[0].Name)

	byBoth, err := f.service.ListCourses(ctx, models.CourseFilter{ID: &id, Name: &name})
	require.NoError(t, err)
	assert.Empty(t, byBoth)
}

func TestUpdateCourse_PartialAndFull(t *testing.T) {
	f := newServiceFixture(t, 20)
	ctx := context.Background()
	ids := f.students(t, 2)

	course, err := f.service.CreateCourse(ctx, &models.Course{Name: "Go", Students: []int64{ids[0]}})
	require.NoError(t, err)

	newStudents := []int64{ids[1]}
	updated, err := f.service.UpdateCourse(ctx, course.ID, dto.CoursePatch{Students: &newStudents})
	require.NoError(t, err)
	assert.Equal(t, "Go", updated.Name)
	assert.Equal(t, []int64{ids[1]}, updated.Students)

	name := "Go Advanced"
	updated, err = f.service.UpdateCourse(ctx, course.ID, dto.CoursePatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Go Advanced", updated.Name)
	assert.Equal(t, []int64{ids[1]}, updated.Students)

	replaced, err := f.service.ReplaceCourse(ctx, &models.Course{ID: course.ID, Name: "Rust"})
	require.NoError(t, err)
	assert.Equal(t, "Rust", replaced.Name)
	assert.Empty(t, replaced.Students)
}

func TestUpdateCourse_Errors(t *testing.T) {
	f := newServiceFixture(t, 20)
	ctx := context.Background()

	course, err := f.service.CreateCourse(ctx, &models.Course{Name: "Go"})
	require.NoError(t, err)
	_, err = f.service.CreateCourse(ctx, &models.Course{Name: "Rust"})
	require.NoError(t, err)

	name := "Rust"
	_, err = f.service.UpdateCourse(ctx, course.ID, dto.CoursePatch{Name: &name})
	assert.ErrorIs(t, err, apperrors.ErrResourceAlreadyExists)

	unknown := []int64{777}
	_, err = f.service.UpdateCourse(ctx, course.ID, dto.CoursePatch{Students: &unknown})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.service.UpdateCourse(ctx, course.ID+100, dto.CoursePatch{Name: &name})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestDeleteCourse(t *testing.T) {
	f := newServiceFixture(t, 20)
	ctx := context.Background()
	ids := f.students(t, 1)

	course, err := f.service.CreateCourse(ctx, &models.Course{Name: "Go", Students: ids})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteCourse(ctx, course.ID))

	_, err = f.service.GetCourseByID(ctx, course.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	err = f.service.DeleteCourse(ctx, course.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	student, err := f.repos.StudentRepository.GetByID(ctx, ids[0])
	require.NoError(t, err, "students outlive the courses they attend")
	assert.Equal(t, ids[0], student.ID)
}
