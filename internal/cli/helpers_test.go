package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testMocks - convenience struct for grouping all mocks
// ---------------------------------------------------------------------------

type testMocks struct {
	store   *mockConfigStore
	client  *mockClient
	factory *mockClientFactory
	hosts   *mockHostFactory
	stdout  *syncBuffer
	stderr  *syncBuffer
}

func newTestMocks() *testMocks {
	client := &mockClient{}
	return &testMocks{
		store:   &mockConfigStore{},
		client:  client,
		factory: &mockClientFactory{client: client},
		hosts:   &mockHostFactory{},
		stdout:  &syncBuffer{},
		stderr:  &syncBuffer{},
	}
}

// ---------------------------------------------------------------------------
// testEnv - creates a fully mocked Env for testing
// ---------------------------------------------------------------------------

// testEnvOptions configures a test environment.
type testEnvOptions struct {
	getenv   func(string) string
	now      func() time.Time
	terminal bool
	mocks    *testMocks
}

// testEnvOption configures testEnv.
type testEnvOption func(*testEnvOptions)

// withTerminal makes the environment interactive.
func withTerminal() testEnvOption {
	return func(o *testEnvOptions) {
		o.terminal = true
	}
}

// withGetenv sets the environment variable getter.
func withGetenv(fn func(string) string) testEnvOption {
	return func(o *testEnvOptions) {
		o.getenv = fn
	}
}

// testEnv creates a test Env with all dependencies mocked.
// Returns the Env and the mocks for assertions.
func testEnv(opts ...testEnvOption) (*Env, *testMocks) {
	options := &testEnvOptions{
		getenv: staticEnv(nil),
		now:    fixedTime,
		mocks:  newTestMocks(),
	}
	options.mocks.store.cfg.URL = "http://jenkins.test"

	for _, opt := range opts {
		opt(options)
	}

	env := &Env{
		Stdin:         strings.NewReader(""),
		Stdout:        options.mocks.stdout,
		Stderr:        options.mocks.stderr,
		Getenv:        options.getenv,
		Now:           options.now,
		IsTerminal:    func() bool { return options.terminal },
		ConfigStore:   options.mocks.store,
		ClientFactory: options.mocks.factory,
		HostFactory:   options.mocks.hosts,
	}

	return env, options.mocks
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// fixedTime returns the reference clock used by tests.
func fixedTime() time.Time {
	return time.Date(2026, 1, 26, 14, 30, 52, 0, time.UTC)
}

// staticEnv returns a Getenv backed by vars.
func staticEnv(vars map[string]string) func(string) string {
	return func(key string) string {
		return vars[key]
	}
}

// ptr returns a pointer to v.
func ptr[T any](v T) *T {
	return &v
}

// execute runs the CLI with args against env, the way main wires it.
func execute(t *testing.T, ctx context.Context, env *Env, args ...string) error {
	t.Helper()

	root := &cobra.Command{
		Use:           "jenkins",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	opts := GlobalFlags(root)
	root.AddCommand(JobsCmd(env, opts))
	root.AddCommand(BuildCmd(env, opts))
	root.AddCommand(StatusCmd(env, opts))
	root.AddCommand(WatchCmd(env, opts))
	root.AddCommand(ConfigCmd(env))

	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(ctx)
}
