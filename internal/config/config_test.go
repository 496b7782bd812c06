package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 20, cfg.Courses.MaxStudentsPerCourse)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfig_FileValues(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: "9090"
database:
  driver: postgres
  host: db.internal
  dbname: courses
courses:
  max_students_per_course: 3
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 3, cfg.Courses.MaxStudentsPerCourse)
	// untouched keys keep their defaults
	assert.Equal(t, "5432", cfg.Database.Port)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: \"9090\"\n")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("COURSES_MAX_STUDENTS", "5")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Courses.MaxStudentsPerCourse)
}

func TestLoadConfig_InvalidEnvValue(t *testing.T) {
	t.Setenv("COURSES_MAX_STUDENTS", "many")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COURSES_MAX_STUDENTS")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "oracle" },
			wantErr: "unsupported database driver",
		},
		{
			name: "postgres without host",
			mutate: func(c *Config) {
				c.Database.Driver = DriverPostgres
				c.Database.Host = ""
			},
			wantErr: "database host is required",
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.Database.SQLitePath = "" },
			wantErr: "sqlite path is required",
		},
		{
			name:    "bad lifetime",
			mutate:  func(c *Config) { c.Database.ConnMaxLifetime = "forever" },
			wantErr: "invalid connection max lifetime",
		},
		{
			name: "min conns above max",
			mutate: func(c *Config) {
				c.Database.MinConns = 30
				c.Database.MaxOpenConns = 10
			},
			wantErr: "min_conns (30) cannot exceed max_open_conns (10)",
		},
		{
			name:    "negative student cap",
			mutate:  func(c *Config) { c.Courses.MaxStudentsPerCourse = -1 },
			wantErr: "cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetPostgresConnectionString(t *testing.T) {
	cfg := Default()
	cfg.Database.User = "app"
	cfg.Database.Password = "secret"
	cfg.Database.Host = "pg"
	cfg.Database.Port = "6543"
	cfg.Database.DBName = "courses"
	cfg.Database.SSLMode = ""

	assert.Equal(t, "postgres://app:secret@pg:6543/courses?sslmode=disable", cfg.GetPostgresConnectionString())
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("COURSEHUB_FLAG", "yes")
	assert.True(t, GetEnvAsBool("COURSEHUB_FLAG", false))

	t.Setenv("COURSEHUB_FLAG", "garbage")
	assert.True(t, GetEnvAsBool("COURSEHUB_FLAG", true))

	assert.False(t, GetEnvAsBool("COURSEHUB_UNSET_FLAG", false))
}
