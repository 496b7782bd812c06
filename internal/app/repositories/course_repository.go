package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/db"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/dberrors"
	"github.com/yigit/coursehub/internal/pkg/logger"
)

// CourseRepository handles course database operations
type CourseRepository struct {
	q  db.DBTX
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(q db.DBTX, sb squirrel.StatementBuilderType) *CourseRepository {
	return &CourseRepository{q: q, sb: sb}
}

// WithTx returns a copy of the repository bound to tx
func (r *CourseRepository) WithTx(tx db.DBTX) *CourseRepository {
	return &CourseRepository{q: tx, sb: r.sb}
}

// Create inserts the course row and returns its id. Student links are written by SetStudents.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) (int64, error) {
	query, args, err := r.sb.Insert(models.TableCourses).
		Columns("name").
		Values(course.Name).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create course query: %w", err)
	}

	var id int64
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrCourseAlreadyExists
		}
		logger.Error().Err(err).Str("name", course.Name).Msg("Error executing create course query")
		return 0, fmt.Errorf("error creating course: %w", err)
	}

	return id, nil
}

// GetByID retrieves a course and its student ids
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	query, args, err := r.sb.Select("id", "name").
		From(models.TableCourses).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	course := &models.Course{}
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&course.ID, &course.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("courseID", id).Msg("Error scanning course row")
		return nil, fmt.Errorf("error getting course by ID: %w", err)
	}

	if course.Students, err = r.StudentIDs(ctx, id); err != nil {
		return nil, err
	}

	return course, nil
}

// List returns the courses matching filter ordered by id, i.e. creation order
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]*models.Course, error) {
	builder := r.sb.Select("id", "name").
		From(models.TableCourses).
		OrderBy("id ASC")

	if filter.ID != nil {
		builder = builder.Where(squirrel.Eq{"id": *filter.ID})
	}
	if filter.Name != nil {
		builder = builder.Where(squirrel.Eq{"name": *filter.Name})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list courses query")
		return nil, fmt.Errorf("error querying courses: %w", err)
	}
	defer rows.Close()

	courses := []*models.Course{}
	var ids []int64
	for rows.Next() {
		course := &models.Course{Students: []int64{}}
		if err := rows.Scan(&course.ID, &course.Name); err != nil {
			return nil, fmt.Errorf("error scanning course row: %w", err)
		}
		courses = append(courses, course)
		ids = append(ids, course.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course rows: %w", err)
	}
	// release the connection before the follow-up query; sqlite runs with a single one
	rows.Close()

	if len(ids) == 0 {
		return courses, nil
	}

	students, err := r.studentIDsByCourse(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, course := range courses {
		if linked, ok := students[course.ID]; ok {
			course.Students = linked
		}
	}

	return courses, nil
}

// StudentIDs returns the ids of the students enrolled in a course, ascending
func (r *CourseRepository) StudentIDs(ctx context.Context, courseID int64) ([]int64, error) {
	students, err := r.studentIDsByCourse(ctx, []int64{courseID})
	if err != nil {
		return nil, err
	}
	if students[courseID] == nil {
		return []int64{}, nil
	}
	return students[courseID], nil
}

// studentIDsByCourse loads the student links of the given courses, ids ascending
func (r *CourseRepository) studentIDsByCourse(ctx context.Context, courseIDs []int64) (map[int64][]int64, error) {
	query, args, err := r.sb.Select("course_id", "student_id").
		From(models.TableCourseStudents).
		Where(squirrel.Eq{"course_id": courseIDs}).
		OrderBy("course_id ASC", "student_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build course students query: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing course students query")
		return nil, fmt.Errorf("error querying course students: %w", err)
	}
	defer rows.Close()

	result := make(map[int64][]int64, len(courseIDs))
	for rows.Next() {
		var courseID, studentID int64
		if err := rows.Scan(&courseID, &studentID); err != nil {
			return nil, fmt.Errorf("error scanning course student row: %w", err)
		}
		result[courseID] = append(result[courseID], studentID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course student rows: %w", err)
	}

	return result, nil
}

// Update writes the course's scalar fields. Student links are written by SetStudents.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	query, args, err := r.sb.Update(models.TableCourses).
		Set("name", course.Name).
		Where(squirrel.Eq{"id": course.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update course query: %w", err)
	}

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrCourseAlreadyExists
		}
		logger.Error().Err(err).Int64("courseID", course.ID).Msg("Error executing update course query")
		return fmt.Errorf("error updating course: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrCourseNotFound
	}

	return nil
}

// SetStudents replaces the course's student set with studentIDs
func (r *CourseRepository) SetStudents(ctx context.Context, courseID int64, studentIDs []int64) error {
	query, args, err := r.sb.Delete(models.TableCourseStudents).
		Where(squirrel.Eq{"course_id": courseID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build clear course students query: %w", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error clearing course students")
		return fmt.Errorf("error clearing course students: %w", err)
	}

	if len(studentIDs) == 0 {
		return nil
	}

	insert := r.sb.Insert(models.TableCourseStudents).Columns("course_id", "student_id")
	for _, studentID := range studentIDs {
		insert = insert.Values(courseID, studentID)
	}

	query, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert course students query: %w", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrUnknownStudent
		}
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error inserting course students")
		return fmt.Errorf("error inserting course students: %w", err)
	}

	return nil
}

// Delete removes a course; its student links are removed by cascade
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete(models.TableCourses).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete course query: %w", err)
	}

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", id).Msg("Error executing delete course query")
		return fmt.Errorf("error deleting course: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrCourseNotFound
	}

	return nil
}
