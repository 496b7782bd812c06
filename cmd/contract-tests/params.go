package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alessio/shellescape"
	"github.com/yigit/coursehub/internal/contract/framework"
)

type commandParams struct {
	serviceURL string
	configPath string
	filters    framework.RegexFilters
	seed       uint64
	debug      bool
	debugAll   bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.StringVar(&c.serviceURL, "url", "", "base URL of a running service, e.g. http://localhost:8000 (default: start one in-process per scenario)")
	fs.StringVar(&c.configPath, "config", filepath.Join("configs", "config.yaml"), "config of the running service; fixtures are written to its database")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.Uint64Var(&c.seed, "seed", uint64(time.Now().UnixNano()), "seed for random fixture data")
	fs.BoolVar(&c.debug, "debug", false, "show request logs for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "show request logs for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		return false
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return false
	}
	return true
}

// rerunCommand builds a shell command that runs only the given test with the same inputs
func (c *commandParams) rerunCommand(program string, id framework.TestID) string {
	var cmd commandBuilder
	cmd.add(program)
	if c.serviceURL != "" {
		cmd.add("-url", c.serviceURL, "-config", c.configPath)
	}
	cmd.add("-seed", strconv.FormatUint(c.seed, 10))
	cmd.add("-run", exactPattern(id))
	if c.debug || c.debugAll {
		cmd.add("-debug")
	}
	return cmd.String()
}

// exactPattern matches id and nothing else, one anchored element per level
func exactPattern(id framework.TestID) string {
	parts := make([]string, 0, len(id.Path))
	for _, p := range id.Path {
		parts = append(parts, "^"+regexp.QuoteMeta(p)+"$")
	}
	return strings.Join(parts, "/")
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
