package fixtures

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/db"
)

// Reset deletes every course and student so the next scenario starts from an empty store
func Reset(ctx context.Context, database *db.Database) error {
	sb := database.Builder()
	return database.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		for _, table := range []string{models.TableCourseStudents, models.TableCourses, models.TableStudents} {
			query, args, err := sb.Delete(table).ToSql()
			if err != nil {
				return fmt.Errorf("failed to build reset query for %s: %w", table, err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("error clearing %s: %w", table, err)
			}
		}
		return nil
	})
}
