// Package fixtures persists randomly populated courses and students straight into the
// store, bypassing the HTTP layer, so scenarios can set up state before calling the API.
package fixtures

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/repositories"
)

// Factories bundles one factory per entity. Build a fresh one for every scenario.
type Factories struct {
	Courses  *CourseFactory
	Students *StudentFactory
}

// New creates factories writing through repos. Random values are drawn from a source
// seeded with seed, so a failing run can be reproduced.
func New(repos *repositories.Repositories, seed uint64) *Factories {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return &Factories{
		Courses:  &CourseFactory{repos: repos, rng: rng},
		Students: &StudentFactory{repos: repos, rng: rng},
	}
}

// suffix keeps generated names unique within a store while staying reproducible
func suffix(rng *rand.Rand) string {
	return fmt.Sprintf("%08x", rng.Uint32())
}

func quantity(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// StudentOverrides fixes fields that would otherwise be random
type StudentOverrides struct {
	Name      *string
	BirthDate *models.Date
}

// StudentOptions controls StudentFactory.Create. Quantity below 1 means 1.
type StudentOptions struct {
	Quantity  int
	Overrides StudentOverrides
}

// StudentFactory creates students
type StudentFactory struct {
	repos *repositories.Repositories
	rng   *rand.Rand
}

// Create persists the requested students and returns them in creation order
func (f *StudentFactory) Create(ctx context.Context, opts StudentOptions) ([]*models.Student, error) {
	n := quantity(opts.Quantity)
	students := make([]*models.Student, 0, n)

	for i := 0; i < n; i++ {
		student := &models.Student{
			Name:      "Student " + suffix(f.rng),
			BirthDate: f.randomBirthDate(),
		}
		if opts.Overrides.Name != nil {
			student.Name = *opts.Overrides.Name
		}
		if opts.Overrides.BirthDate != nil {
			student.BirthDate = *opts.Overrides.BirthDate
		}

		id, err := f.repos.StudentRepository.Create(ctx, student)
		if err != nil {
			return students, fmt.Errorf("creating student %d of %d: %w", i+1, n, err)
		}
		student.ID = id
		students = append(students, student)
	}

	return students, nil
}

// One creates a single student with random fields
func (f *StudentFactory) One(ctx context.Context) (*models.Student, error) {
	students, err := f.Create(ctx, StudentOptions{})
	if err != nil {
		return nil, err
	}
	return students[0], nil
}

func (f *StudentFactory) randomBirthDate() models.Date {
	start := time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)
	return models.Date{Time: start.AddDate(0, 0, f.rng.IntN(15*365))}
}

// CourseOverrides fixes fields that would otherwise be random. Course names are unique, so
// an overridden name only works with a quantity of one.
type CourseOverrides struct {
	Name     *string
	Students []int64
}

// CourseOptions controls CourseFactory.Create. Quantity below 1 means 1.
type CourseOptions struct {
	Quantity  int
	Overrides CourseOverrides
}

// CourseFactory creates courses. Courses start without students unless overridden.
type CourseFactory struct {
	repos *repositories.Repositories
	rng   *rand.Rand
}

var subjects = []string{"Algorithms", "Databases", "Networks", "Compilers", "Statistics", "Go", "Python", "Linear Algebra"}

// Create persists the requested courses and returns them in creation order
func (f *CourseFactory) Create(ctx context.Context, opts CourseOptions) ([]*models.Course, error) {
	n := quantity(opts.Quantity)
	courses := make([]*models.Course, 0, n)

	for i := 0; i < n; i++ {
		course := &models.Course{
			Name:     fmt.Sprintf("%s %s", subjects[f.rng.IntN(len(subjects))], suffix(f.rng)),
			Students: []int64{},
		}
		if opts.Overrides.Name != nil {
			course.Name = *opts.Overrides.Name
		}
		if opts.Overrides.Students != nil {
			course.Students = append([]int64{}, opts.Overrides.Students...)
		}

		id, err := f.repos.CourseRepository.Create(ctx, course)
		if err != nil {
			return courses, fmt.Errorf("creating course %d of %d: %w", i+1, n, err)
		}
		course.ID = id
		if err := f.repos.CourseRepository.SetStudents(ctx, id, course.Students); err != nil {
			return courses, fmt.Errorf("enrolling students in course %d: %w", id, err)
		}
		courses = append(courses, course)
	}

	return courses, nil
}

// One creates a single course with a random name and no students
func (f *CourseFactory) One(ctx context.Context) (*models.Course, error) {
	courses, err := f.Create(ctx, CourseOptions{})
	if err != nil {
		return nil, err
	}
	return courses[0], nil
}
