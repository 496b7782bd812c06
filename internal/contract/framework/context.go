package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
}

// Context is the state of one running test or group of tests. It satisfies testify's
// require.TestingT, so assertions can be made against it directly; a failed require stops
// the current test by panicking back to Run.
type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	cleanups    []func()
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
}

// Run executes action as the root of a test tree and returns the outcome of every test
// started underneath it. A nil filter runs everything.
func Run(filter Filter, testLogger TestLogger, action func(*Context)) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{filter: filter, testLogger: testLogger}
	root := &Context{env: env}
	root.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil && !c.skipped {
			c.failed = true
			var err error
			if _, ok := r.(*Context); ok {
				if len(c.errors) == 0 {
					err = errors.New("test failed with no failure message")
				}
			} else {
				err = fmt.Errorf("unexpected panic in test: %+v\n%s", r, debug.Stack())
			}
			if err != nil {
				c.errors = append(c.errors, err)
				c.env.testLogger.TestError(c.id, err)
			}
		}
		c.runCleanups()

		if len(c.id.Path) == 0 {
			return
		}
		result := TestResult{
			TestID:   c.id,
			Errors:   c.errors,
			Skipped:  c.skipped,
			Duration: time.Since(started),
		}
		c.env.results.Tests = append(c.env.results.Tests, result)
		if c.failed {
			c.env.results.Failures = append(c.env.results.Failures, result)
		}
	}()

	action(c)
}

func (c *Context) runCleanups() {
	for i := len(c.cleanups) - 1; i >= 0; i-- {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.failed = true
					err := fmt.Errorf("panic in cleanup: %+v", r)
					c.errors = append(c.errors, err)
					c.env.testLogger.TestError(c.id, err)
				}
			}()
			c.cleanups[i]()
		}()
	}
	c.cleanups = nil
}

// ID returns the full path of the current test
func (c *Context) ID() TestID {
	return c.id
}

// Run starts a subtest. Failures in the subtest do not stop the parent.
func (c *Context) Run(name string, action func(*Context)) {
	id := c.id.Plus(name)

	c.env.testLogger.TestStarted(id)
	if c.env.filter != nil && !c.env.filter(id) {
		c.env.testLogger.TestSkipped(id, "excluded by filter parameters")
		return
	}

	sub := &Context{id: id, env: c.env}
	sub.run(action)
	if sub.skipped {
		c.env.testLogger.TestSkipped(id, sub.skipReason)
	} else {
		c.env.testLogger.TestFinished(id, sub.failed, sub.debugLogger.Output())
	}
}

// Cleanup registers fn to run when the current test finishes, last registered first
func (c *Context) Cleanup(fn func()) {
	c.cleanups = append(c.cleanups, fn)
}

// Errorf records a failure and lets the test continue
func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, reformatError(err))
}

// FailNow stops the current test
func (c *Context) FailNow() {
	panic(c)
}

// Skip stops the current test without failing it
func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

// SkipWithReason is Skip with an explanation for the test log
func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Debug adds a line to the test's debug output
func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

// DebugLogger returns a Logger writing to the test's debug output
func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}
