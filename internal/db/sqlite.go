package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yigit/coursehub/internal/config"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// NewSQLiteDB opens (creating if needed) a SQLite database file with foreign keys enforced.
func NewSQLiteDB(path string) (*Database, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite only allows one writer at a time
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &Database{SQL: sqlDB, Driver: config.DriverSQLite}, nil
}
