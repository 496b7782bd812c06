package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/app/repositories"
	"github.com/yigit/coursehub/internal/db"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/logger"
)

// MaxCourseNameLength is the longest course name accepted
const MaxCourseNameLength = 256

// CourseService defines the interface for course-related operations
type CourseService interface {
	ListCourses(ctx context.Context, filter models.CourseFilter) ([]*models.Course, error)
	GetCourseByID(ctx context.Context, id int64) (*models.Course, error)
	CreateCourse(ctx context.Context, course *models.Course) (*models.Course, error)
	ReplaceCourse(ctx context.Context, course *models.Course) (*models.Course, error)
	UpdateCourse(ctx context.Context, id int64, patch dto.CoursePatch) (*models.Course, error)
	DeleteCourse(ctx context.Context, id int64) error
}

// Transactor runs fn inside a database transaction
type Transactor interface {
	WithTransaction(ctx context.Context, fn db.TransactionFn) error
}

// courseServiceImpl implements the CourseService interface
type courseServiceImpl struct {
	repos       *repositories.Repositories
	tx          Transactor
	maxStudents int
}

// NewCourseService creates a new course service instance. maxStudents <= 0 disables the limit.
func NewCourseService(repos *repositories.Repositories, tx Transactor, maxStudents int) CourseService {
	return &courseServiceImpl{
		repos:       repos,
		tx:          tx,
		maxStudents: maxStudents,
	}
}

// validateName checks the course name constraints
func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.NewValidationError("name", "name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxCourseNameLength {
		return apperrors.NewValidationError("name", fmt.Sprintf("name must be at most %d characters", MaxCourseNameLength))
	}
	return nil
}

// normalizeStudents drops duplicates and sorts ids ascending
func normalizeStudents(ids []int64) []int64 {
	out := slices.Clone(ids)
	if out == nil {
		return []int64{}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// validateStudents enforces the per-course limit and checks every id refers to a stored student
func (s *courseServiceImpl) validateStudents(ctx context.Context, repos *repositories.Repositories, ids []int64) error {
	if s.maxStudents > 0 && len(ids) > s.maxStudents {
		return apperrors.ErrTooManyStudents.WithDetails(map[string]interface{}{
			"max":   s.maxStudents,
			"given": len(ids),
		})
	}

	for _, id := range ids {
		if id <= 0 {
			return apperrors.NewValidationError("students", fmt.Sprintf("invalid student id %d", id))
		}
	}

	existing, err := repos.StudentRepository.ExistingIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("error checking students: %w", err)
	}

	var missing []int64
	for _, id := range ids {
		if !existing[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return apperrors.ErrUnknownStudent.WithDetails(map[string]interface{}{
			"students": missing,
		})
	}

	return nil
}

// ListCourses returns the courses matching filter
func (s *courseServiceImpl) ListCourses(ctx context.Context, filter models.CourseFilter) ([]*models.Course, error) {
	courses, err := s.repos.CourseRepository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error retrieving courses: %w", err)
	}
	return courses, nil
}

// GetCourseByID retrieves a course by ID
func (s *courseServiceImpl) GetCourseByID(ctx context.Context, id int64) (*models.Course, error) {
	if id <= 0 {
		return nil, apperrors.ErrCourseNotFound
	}

	course, err := s.repos.CourseRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}
	return course, nil
}

// CreateCourse stores a new course with its students and returns it as persisted.
// Any ID on the input is ignored.
func (s *courseServiceImpl) CreateCourse(ctx context.Context, course *models.Course) (*models.Course, error) {
	if course == nil {
		return nil, fmt.Errorf("%w: course is nil", apperrors.ErrValidationFailed)
	}
	if err := validateName(course.Name); err != nil {
		return nil, err
	}
	students := normalizeStudents(course.Students)

	var created *models.Course
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		repos := s.repos.WithTx(tx)

		if err := s.validateStudents(ctx, repos, students); err != nil {
			return err
		}

		id, err := repos.CourseRepository.Create(ctx, &models.Course{Name: course.Name})
		if err != nil {
			return err
		}
		if err := repos.CourseRepository.SetStudents(ctx, id, students); err != nil {
			return err
		}

		created, err = repos.CourseRepository.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, s.wrapWriteError("creating", err)
	}

	logger.Info().Int64("courseID", created.ID).Int("students", len(created.Students)).Msg("Course created")
	return created, nil
}

// ReplaceCourse overwrites name and students of an existing course
func (s *courseServiceImpl) ReplaceCourse(ctx context.Context, course *models.Course) (*models.Course, error) {
	if course == nil {
		return nil, fmt.Errorf("%w: course is nil", apperrors.ErrValidationFailed)
	}
	students := course.Students
	return s.UpdateCourse(ctx, course.ID, dto.CoursePatch{Name: &course.Name, Students: &students})
}

// UpdateCourse applies patch to a course. Fields left nil are not touched.
func (s *courseServiceImpl) UpdateCourse(ctx context.Context, id int64, patch dto.CoursePatch) (*models.Course, error) {
	if id <= 0 {
		return nil, apperrors.ErrCourseNotFound
	}
	if patch.Name != nil {
		if err := validateName(*patch.Name); err != nil {
			return nil, err
		}
	}
	var students []int64
	if patch.Students != nil {
		students = normalizeStudents(*patch.Students)
	}

	var updated *models.Course
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		repos := s.repos.WithTx(tx)

		current, err := repos.CourseRepository.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if patch.Name != nil && *patch.Name != current.Name {
			current.Name = *patch.Name
			if err := repos.CourseRepository.Update(ctx, current); err != nil {
				return err
			}
		}

		if patch.Students != nil {
			if err := s.validateStudents(ctx, repos, students); err != nil {
				return err
			}
			if err := repos.CourseRepository.SetStudents(ctx, id, students); err != nil {
				return err
			}
		}

		updated, err = repos.CourseRepository.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, s.wrapWriteError("updating", err)
	}

	logger.Info().Int64("courseID", id).Msg("Course updated")
	return updated, nil
}

// DeleteCourse deletes a course by ID
func (s *courseServiceImpl) DeleteCourse(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperrors.ErrCourseNotFound
	}

	err := s.repos.CourseRepository.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			return apperrors.ErrCourseNotFound
		}
		return fmt.Errorf("error deleting course: %w", err)
	}

	logger.Info().Int64("courseID", id).Msg("Course deleted")
	return nil
}

// wrapWriteError passes application errors through and wraps everything else
func (s *courseServiceImpl) wrapWriteError(op string, err error) error {
	if apperrors.Is(err, apperrors.ErrResourceNotFound,
		apperrors.ErrResourceAlreadyExists,
		apperrors.ErrValidationFailed,
		apperrors.ErrBadRequest) {
		return err
	}
	return fmt.Errorf("error %s course: %w", op, err)
}
