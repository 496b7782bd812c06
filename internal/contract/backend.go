package contract

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/yigit/coursehub/internal/app/repositories"
	"github.com/yigit/coursehub/internal/bootstrap"
	"github.com/yigit/coursehub/internal/config"
	"github.com/yigit/coursehub/internal/contract/client"
	"github.com/yigit/coursehub/internal/contract/fixtures"
	"github.com/yigit/coursehub/internal/contract/framework"
	"github.com/yigit/coursehub/internal/db"
)

// APIPrefix is the path under which the course resource is mounted
const APIPrefix = "/api/v1"

// Session is the isolated environment of one scenario: a client pointed at the service and
// factories writing into the same store the service reads.
type Session struct {
	Client   *client.Client
	Fixtures *fixtures.Factories
	// MaxStudents is the service's per-course student limit, 0 when unknown or disabled
	MaxStudents int

	closers []func()
}

// Close releases everything the session opened, most recent first
func (s *Session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// Backend hands out sessions. Data written in one session is never visible in the next.
type Backend interface {
	NewSession(ctx context.Context, logger framework.Logger) (*Session, error)
}

// EphemeralBackend gives every session its own SQLite file and in-process server
type EphemeralBackend struct {
	// MaxStudents configures the service's per-course limit; 0 disables it
	MaxStudents int
	// Seed is the base seed for fixture randomness; each session adds its sequence number
	Seed uint64

	sessions atomic.Uint64
}

// NewSession implements Backend
func (b *EphemeralBackend) NewSession(ctx context.Context, logger framework.Logger) (*Session, error) {
	dir, err := os.MkdirTemp("", "coursehub-contract-*")
	if err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}
	session := &Session{MaxStudents: b.MaxStudents}
	session.closers = append(session.closers, func() { os.RemoveAll(dir) })

	cfg := config.Default()
	cfg.Server.Mode = "test"
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.SQLitePath = filepath.Join(dir, "contract.db")
	cfg.Courses.MaxStudentsPerCourse = b.MaxStudents

	database, err := bootstrap.SetupDatabase(ctx, cfg, zerolog.Nop())
	if err != nil {
		session.Close()
		return nil, err
	}
	session.closers = append(session.closers, func() { database.Close() })

	if err := serveInProcess(session, cfg, database, logger); err != nil {
		session.Close()
		return nil, err
	}
	session.Fixtures = fixtures.New(repositories.NewRepositories(database), b.Seed+b.sessions.Add(1))
	return session, nil
}

// SharedBackend runs every session against one database, emptying it before each session.
// With BaseURL set the client talks to that already running service, which must use the
// same database; otherwise an in-process server is started per session.
type SharedBackend struct {
	Database *db.Database
	BaseURL  string
	// Config is used for the in-process server; nil means defaults
	Config *config.Config
	// MaxStudents is reported to scenarios; it must match the service's configuration
	MaxStudents int
	Seed        uint64

	sessions atomic.Uint64
}

// NewSession implements Backend
func (b *SharedBackend) NewSession(ctx context.Context, logger framework.Logger) (*Session, error) {
	if err := fixtures.Reset(ctx, b.Database); err != nil {
		return nil, fmt.Errorf("resetting store: %w", err)
	}

	session := &Session{MaxStudents: b.MaxStudents}
	if b.BaseURL != "" {
		c, err := client.New(b.BaseURL+APIPrefix, client.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		session.Client = c
	} else {
		cfg := b.Config
		if cfg == nil {
			cfg = config.Default()
			cfg.Server.Mode = "test"
			cfg.Courses.MaxStudentsPerCourse = b.MaxStudents
		}
		if err := serveInProcess(session, cfg, b.Database, logger); err != nil {
			return nil, err
		}
	}

	session.Fixtures = fixtures.New(repositories.NewRepositories(b.Database), b.Seed+b.sessions.Add(1))
	return session, nil
}

func serveInProcess(session *Session, cfg *config.Config, database *db.Database, logger framework.Logger) error {
	deps := bootstrap.BuildDependencies(cfg, database, zerolog.Nop())
	server := httptest.NewServer(bootstrap.SetupRouter(cfg, deps))
	session.closers = append(session.closers, server.Close)

	c, err := client.New(server.URL+APIPrefix, client.WithLogger(logger), client.WithHTTPClient(server.Client()))
	if err != nil {
		return err
	}
	session.Client = c
	return nil
}
