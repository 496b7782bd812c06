package repositories

import (
	"github.com/yigit/coursehub/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	CourseRepository  *CourseRepository
	StudentRepository *StudentRepository
}

// NewRepositories initializes all repositories on the shared connection
func NewRepositories(database *db.Database) *Repositories {
	sb := database.Builder()
	return &Repositories{
		CourseRepository:  NewCourseRepository(database.SQL, sb),
		StudentRepository: NewStudentRepository(database.SQL, sb),
	}
}

// WithTx returns repositories bound to tx
func (r *Repositories) WithTx(tx db.DBTX) *Repositories {
	return &Repositories{
		CourseRepository:  r.CourseRepository.WithTx(tx),
		StudentRepository: r.StudentRepository.WithTx(tx),
	}
}
