package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	Database struct {
		Driver     string `yaml:"driver" env:"DB_DRIVER"`
		Host       string `yaml:"host" env:"DB_HOST"`
		Port       string `yaml:"port" env:"DB_PORT"`
		User       string `yaml:"user" env:"DB_USER"`
		Password   string `yaml:"password" env:"DB_PASSWORD"`
		DBName     string `yaml:"dbname" env:"DB_NAME"`
		SSLMode    string `yaml:"sslmode" env:"DB_SSLMODE"`
		SQLitePath string `yaml:"sqlite_path" env:"DB_SQLITE_PATH"`
		// MinConns is the number of connections the postgres pool keeps open while idle
		MinConns        int    `yaml:"min_conns" env:"DB_MIN_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		SeedDemoData    bool   `yaml:"seed_demo_data" env:"DB_SEED_DEMO_DATA"`
	} `yaml:"database"`

	Courses struct {
		// MaxStudentsPerCourse caps the size of a course's student set. Zero disables the check.
		MaxStudentsPerCourse int `yaml:"max_students_per_course" env:"COURSES_MAX_STUDENTS"`
	} `yaml:"courses"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file, an optional .env file and environment variables.
// A missing config file is not an error; defaults and the environment still apply.
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// .env values never override variables that are already exported
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Default returns a Config populated with sane defaults
func Default() *Config {
	config := &Config{}

	config.Server.Port = "8000"
	config.Server.Mode = "development"

	config.Database.Driver = DriverSQLite
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "coursehub"
	config.Database.SSLMode = "disable"
	config.Database.SQLitePath = "data/coursehub.db"
	config.Database.MinConns = 2
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	config.Courses.MaxStudentsPerCourse = 20

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	return config
}

// Validate ensures that the configuration is usable
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name is required")
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required")
		}
	default:
		return fmt.Errorf("unsupported database driver %q (valid: %s, %s)", c.Database.Driver, DriverPostgres, DriverSQLite)
	}

	if _, err := time.ParseDuration(c.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid connection max lifetime format: %w", err)
	}

	if c.Database.MinConns < 0 || c.Database.MaxOpenConns < 0 {
		return fmt.Errorf("connection pool sizes cannot be negative")
	}
	if c.Database.MaxOpenConns > 0 && c.Database.MinConns > c.Database.MaxOpenConns {
		return fmt.Errorf("min_conns (%d) cannot exceed max_open_conns (%d)", c.Database.MinConns, c.Database.MaxOpenConns)
	}

	if c.Courses.MaxStudentsPerCourse < 0 {
		return fmt.Errorf("max students per course cannot be negative")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsBool gets an environment variable as a boolean or returns a default value
func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	switch strings.ToLower(valueStr) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}

	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
