// Package contract is a black-box test suite for the course resource. It only talks to the
// service over HTTP, and only touches the store through fixture factories during setup.
package contract

import (
	"context"
	"net/url"

	"github.com/stretchr/testify/require"
	"github.com/yigit/coursehub/internal/contract/client"
	"github.com/yigit/coursehub/internal/contract/fixtures"
	"github.com/yigit/coursehub/internal/contract/framework"
)

// RunSuite runs every scenario against backend and returns the results
func RunSuite(backend Backend, filter framework.Filter, testLogger framework.TestLogger) framework.Results {
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		t := &T{context: c, backend: backend}
		t.Run("courses", DoCourseTests)
	})
}

// T is one scenario or group of scenarios. Pass it to testify's assert and require like a
// *testing.T. The first call to Session opens an isolated session that is closed when the
// scenario ends.
type T struct {
	context *framework.Context
	backend Backend
	session *Session
}

// Run starts a nested scenario with its own session
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(&T{context: c, backend: t.backend})
	})
}

// Errorf implements require.TestingT
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow implements require.TestingT
func (t *T) FailNow() {
	t.context.FailNow()
}

// Skip stops the scenario without failing it
func (t *T) Skip(reason string) {
	t.context.SkipWithReason(reason)
}

// Debug adds a line to the scenario's debug output
func (t *T) Debug(message string, args ...interface{}) {
	t.context.Debug(message, args...)
}

// Ctx is the context requests and fixtures run under
func (t *T) Ctx() context.Context {
	return context.Background()
}

// Session returns the scenario's session, opening it on first use
func (t *T) Session() *Session {
	if t.session == nil {
		session, err := t.backend.NewSession(t.Ctx(), t.context.DebugLogger())
		require.NoError(t, err, "could not open a session")
		t.session = session
		t.context.Cleanup(session.Close)
	}
	return t.session
}

// Client is shorthand for Session().Client
func (t *T) Client() *client.Client {
	return t.Session().Client
}

// Fixtures is shorthand for Session().Fixtures
func (t *T) Fixtures() *fixtures.Factories {
	return t.Session().Fixtures
}

func (t *T) get(path string, query url.Values) *client.Response {
	resp, err := t.Client().Get(t.Ctx(), path, query)
	require.NoError(t, err)
	return resp
}

func (t *T) post(path string, body interface{}) *client.Response {
	resp, err := t.Client().Post(t.Ctx(), path, body)
	require.NoError(t, err)
	return resp
}

func (t *T) postForm(path string, form url.Values) *client.Response {
	resp, err := t.Client().PostForm(t.Ctx(), path, form)
	require.NoError(t, err)
	return resp
}

func (t *T) patchForm(path string, form url.Values) *client.Response {
	resp, err := t.Client().PatchForm(t.Ctx(), path, form)
	require.NoError(t, err)
	return resp
}

func (t *T) patch(path string, body interface{}) *client.Response {
	resp, err := t.Client().Patch(t.Ctx(), path, body)
	require.NoError(t, err)
	return resp
}

func (t *T) put(path string, body interface{}) *client.Response {
	resp, err := t.Client().Put(t.Ctx(), path, body)
	require.NoError(t, err)
	return resp
}

func (t *T) delete(path string) *client.Response {
	resp, err := t.Client().Delete(t.Ctx(), path)
	require.NoError(t, err)
	return resp
}
