// Command contract-tests runs the course resource contract suite, either against a running
// service or against throwaway in-process instances.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/yigit/coursehub/internal/bootstrap"
	"github.com/yigit/coursehub/internal/config"
	"github.com/yigit/coursehub/internal/contract"
	"github.com/yigit/coursehub/internal/contract/framework"
	"github.com/yigit/coursehub/internal/pkg/logger"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	var params commandParams
	if !params.Read(args) {
		return 2
	}

	logger.Configure(logger.Config{Level: logger.WarnLevel, Pretty: true, Output: os.Stderr})

	backend, cleanup, err := newBackend(&params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Setup failed: %s\n", err)
		return 1
	}
	defer cleanup()

	fmt.Println()
	params.filters.Describe(os.Stdout)
	if params.serviceURL != "" {
		fmt.Printf("Running test suite against %s (seed %d)\n", params.serviceURL, params.seed)
	} else {
		fmt.Printf("Running test suite against in-process services (seed %d)\n", params.seed)
	}

	testLogger := &ConsoleTestLogger{
		Out:                  os.Stdout,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	results := contract.RunSuite(backend, params.filters.AsFilter, testLogger)

	fmt.Println()
	framework.PrintResults(os.Stdout, results)
	if results.OK() {
		return 0
	}

	fmt.Println()
	fmt.Println("To rerun a failed test:")
	program := filepath.Base(args[0])
	for _, f := range results.Failures {
		fmt.Printf("  %s\n", params.rerunCommand(program, f.TestID))
	}
	return 1
}

// newBackend opens the service's database when -url is given, so fixtures land where the
// service reads them; otherwise every scenario gets its own in-process service.
func newBackend(params *commandParams) (contract.Backend, func(), error) {
	if params.serviceURL == "" {
		cfg := config.Default()
		return &contract.EphemeralBackend{
			MaxStudents: cfg.Courses.MaxStudentsPerCourse,
			Seed:        params.seed,
		}, func() {}, nil
	}

	cfg, err := config.LoadConfig(params.configPath)
	if err != nil {
		return nil, nil, err
	}

	database, err := bootstrap.SetupDatabase(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		return nil, nil, fmt.Errorf("opening the service database: %w", err)
	}

	return &contract.SharedBackend{
		Database:    database,
		BaseURL:     params.serviceURL,
		MaxStudents: cfg.Courses.MaxStudentsPerCourse,
		Seed:        params.seed,
	}, func() { database.Close() }, nil
}
