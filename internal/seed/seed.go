package seed

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/coursehub/internal/app/models"
	appRepos "github.com/yigit/coursehub/internal/app/repositories"
	"github.com/yigit/coursehub/internal/db"
)

// DemoCourseName is the course created by CreateDefaultData
const DemoCourseName = "Introduction to Programming"

var demoStudents = []appModels.Student{
	{Name: "Ada Lovelace", BirthDate: appModels.NewDate(1995, time.December, 10)},
	{Name: "Alan Turing", BirthDate: appModels.NewDate(1996, time.June, 23)},
	{Name: "Grace Hopper", BirthDate: appModels.NewDate(1997, time.December, 9)},
}

// CreateDefaultData fills an empty database with a few students and one course enrolling them.
// It does nothing when students already exist, so it is safe to call on every start. Either all
// of the demo rows are written or none are.
func CreateDefaultData(ctx context.Context, database *db.Database, lgr zerolog.Logger) error {
	repos := appRepos.NewRepositories(database)

	existing, err := repos.StudentRepository.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		lgr.Debug().Int("students", len(existing)).Msg("Database already has students, skipping demo data")
		return nil
	}

	lgr.Info().Msg("Creating demo data (students/course)...")
	var ids []int64

	err = database.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		repos := repos.WithTx(tx)

		name := DemoCourseName
		courses, err := repos.CourseRepository.List(ctx, appModels.CourseFilter{Name: &name})
		if err != nil {
			return err
		}
		if len(courses) > 0 {
			lgr.Info().Str("name", DemoCourseName).Msg("Demo course already exists")
			return nil
		}

		for i := range demoStudents {
			student := demoStudents[i]
			id, err := repos.StudentRepository.Create(ctx, &student)
			if err != nil {
				return fmt.Errorf("creating demo student %q: %w", student.Name, err)
			}
			ids = append(ids, id)
		}

		courseID, err := repos.CourseRepository.Create(ctx, &appModels.Course{Name: DemoCourseName})
		if err != nil {
			return fmt.Errorf("creating demo course: %w", err)
		}
		if err := repos.CourseRepository.SetStudents(ctx, courseID, ids); err != nil {
			return fmt.Errorf("enrolling demo students: %w", err)
		}
		return nil
	})
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating demo data")
		return err
	}

	lgr.Info().Int("students", len(ids)).Msg("Demo data created")
	return nil
}
