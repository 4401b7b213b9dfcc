package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/alnah/go-jenkins/internal/config"
	"github.com/alnah/go-jenkins/internal/jenkins"
	"github.com/alnah/go-jenkins/internal/prompt"
	"github.com/alnah/go-jenkins/internal/recovery"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
	Getenv     func(string) string
	Now        func() time.Time
	IsTerminal func() bool

	// Factories for domain objects
	ConfigStore   ConfigStore
	ClientFactory ClientFactory
	HostFactory   HostFactory
}

// ConfigStore loads and persists configuration.
type ConfigStore interface {
	Load() (config.Config, error)
	List() (map[string]string, error)
	SaveAll(values map[string]string) error
}

// Client is the subset of the Jenkins API used by commands.
type Client interface {
	BaseURL() string
	Jobs(ctx context.Context) ([]jenkins.Job, error)
	Build(ctx context.Context, job string, number int) (jenkins.Build, error)
	LastBuilds(ctx context.Context, jobs []string, parallel int) ([]jenkins.Build, error)
}

// ClientSettings are the inputs needed to build a Client.
type ClientSettings struct {
	URL         string
	Credentials jenkins.Credentials
	Secure      bool
	HTTPSPort   *int
	Logger      *slog.Logger
}

// ClientFactory creates Jenkins clients.
type ClientFactory interface {
	NewClient(s ClientSettings) (Client, error)
}

// HostFactory creates a fresh prompt host for each recovery prompt.
type HostFactory interface {
	NewHost(plain bool) recovery.Host
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdin sets the stdin reader.
func WithStdin(r io.Reader) EnvOption {
	return func(e *Env) {
		e.Stdin = r
	}
}

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) {
		e.Now = fn
	}
}

// WithIsTerminal sets the interactive terminal check.
func WithIsTerminal(fn func() bool) EnvOption {
	return func(e *Env) {
		e.IsTerminal = fn
	}
}

// WithConfigStore sets the config store.
func WithConfigStore(s ConfigStore) EnvOption {
	return func(e *Env) {
		e.ConfigStore = s
	}
}

// WithClientFactory sets the Jenkins client factory.
func WithClientFactory(f ClientFactory) EnvOption {
	return func(e *Env) {
		e.ClientFactory = f
	}
}

// WithHostFactory sets the prompt host factory.
func WithHostFactory(f HostFactory) EnvOption {
	return func(e *Env) {
		e.HostFactory = f
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdin:         os.Stdin,
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		Getenv:        os.Getenv,
		Now:           time.Now,
		IsTerminal:    stdinIsTerminal,
		ConfigStore:   &defaultConfigStore{},
		ClientFactory: &defaultClientFactory{},
		HostFactory:   &defaultHostFactory{in: os.Stdin, out: os.Stderr},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// stdinIsTerminal reports whether both stdin and stderr are terminals.
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultConfigStore implements ConfigStore using the config package.
type defaultConfigStore struct{}

func (defaultConfigStore) Load() (config.Config, error) {
	return config.Load()
}

func (defaultConfigStore) List() (map[string]string, error) {
	return config.List()
}

func (defaultConfigStore) SaveAll(values map[string]string) error {
	return config.SaveAll(values)
}

// defaultClientFactory implements ClientFactory using the jenkins package.
type defaultClientFactory struct{}

func (defaultClientFactory) NewClient(s ClientSettings) (Client, error) {
	opts := []jenkins.Option{
		jenkins.WithCredentials(s.Credentials),
		jenkins.WithLogger(s.Logger),
	}
	if s.Secure {
		opts = append(opts, jenkins.WithSecure(s.HTTPSPort))
	}
	c, err := jenkins.NewClient(s.URL, opts...)
	if err != nil {
		return nil, err
	}
	return &jenkinsClient{c}, nil
}

// jenkinsClient adapts *jenkins.Client to Client.
type jenkinsClient struct {
	*jenkins.Client
}

func (c *jenkinsClient) LastBuilds(ctx context.Context, jobs []string, parallel int) ([]jenkins.Build, error) {
	return jenkins.LastBuilds(ctx, c.Client, jobs, parallel)
}

// defaultHostFactory implements HostFactory with terminal hosts.
// Prompts are drawn on out so stdout stays clean for command output.
type defaultHostFactory struct {
	in  io.Reader
	out io.Writer
}

func (f *defaultHostFactory) NewHost(plain bool) recovery.Host {
	if plain {
		return prompt.NewLineHost(f.in, f.out)
	}
	return prompt.NewTUIHost(f.in, f.out)
}

// Compile-time interface verification.
var (
	_ ConfigStore   = (*defaultConfigStore)(nil)
	_ ClientFactory = (*defaultClientFactory)(nil)
	_ HostFactory   = (*defaultHostFactory)(nil)
	_ Client        = (*jenkinsClient)(nil)
)
