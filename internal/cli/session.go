package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/alnah/go-jenkins/internal/config"
	"github.com/alnah/go-jenkins/internal/jenkins"
	"github.com/alnah/go-jenkins/internal/recovery"
)

// maxCredentialAttempts bounds how many times the user is asked for
// credentials during a single command.
const maxCredentialAttempts = 3

// session is the per-command state: resolved settings, logger and client.
type session struct {
	env    *Env
	opts   *Options
	logger *slog.Logger
	cfg    config.Config
	client Client
}

// newSession loads configuration and connects a client.
func newSession(env *Env, opts *Options) (*session, error) {
	cfg, err := env.ConfigStore.Load()
	if err != nil {
		return nil, err
	}

	s := &session{
		env:    env,
		opts:   opts,
		logger: newLogger(env.Stderr, opts.Verbose),
		cfg:    cfg,
	}
	if err := s.connect(); err != nil {
		return nil, err
	}
	return s, nil
}

// settings merges flags over configuration. Flags win.
func (s *session) settings() (ClientSettings, error) {
	cs := ClientSettings{
		URL: s.cfg.URL,
		Credentials: jenkins.Credentials{
			Username: s.cfg.Username,
			Token:    s.cfg.Token,
		},
		Secure:    s.opts.Secure,
		HTTPSPort: s.cfg.HTTPSPort,
		Logger:    s.logger,
	}
	if s.opts.URL != "" {
		cs.URL = s.opts.URL
	}
	if s.opts.Port != 0 {
		if err := config.Validate(config.KeyHTTPSPort, strconv.Itoa(s.opts.Port)); err != nil {
			return cs, fmt.Errorf("--port: %w", err)
		}
		port := s.opts.Port
		cs.HTTPSPort = &port
	}
	return cs, nil
}

// connect (re)creates the client from the current settings.
func (s *session) connect() error {
	cs, err := s.settings()
	if err != nil {
		return err
	}
	c, err := s.env.ClientFactory.NewClient(cs)
	if err != nil {
		return err
	}
	s.client = c
	s.logger.Debug("connected", "url", c.BaseURL(), "auth", !cs.Credentials.IsZero())
	return nil
}

// interactive reports whether recovery prompts may be shown.
func (s *session) interactive() bool {
	return !s.opts.NoPrompt && s.env.IsTerminal()
}

// run calls fn with the session client. Each failure is classified and
// presented as one recovery prompt; submitted credentials are saved and fn is
// retried, at most maxCredentialAttempts times. Any other choice returns the
// failure unchanged.
func (s *session) run(ctx context.Context, fn func(ctx context.Context, c Client) error) error {
	for rounds := 0; ; rounds++ {
		err := fn(ctx, s.client)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return err
		}

		intent := recovery.Classify(err)
		s.logger.Debug("request failed", "error", err, "intent", fmt.Sprintf("%T", intent))

		if !s.interactive() {
			title, message := recovery.Text(intent)
			fmt.Fprintf(s.env.Stderr, "%s: %s\n", title, message)
			return err
		}
		if _, ok := intent.(recovery.RequireCredentials); ok && rounds >= maxCredentialAttempts {
			return fmt.Errorf("giving up after %d credential attempts: %w", rounds, err)
		}

		res, perr := s.prompt(ctx, intent)
		if perr != nil {
			return perr
		}
		if res.Outcome != recovery.Submitted {
			return err
		}
		if err := s.saveCredentials(res); err != nil {
			return err
		}
	}
}

// prompt shows intent on a fresh host and waits for the user's choice.
func (s *session) prompt(ctx context.Context, intent recovery.Intent) (recovery.Result, error) {
	var result recovery.Result
	ctrl := recovery.NewController(recovery.WithLogger(s.logger))
	host := s.env.HostFactory.NewHost(s.opts.Plain)

	p, err := ctrl.Present(ctx, intent, host, func(r recovery.Result) {
		result = r
	})
	if err != nil {
		return result, err
	}
	if _, ok := p.Outcome(); !ok {
		return result, fmt.Errorf("%w: prompt closed without a choice", recovery.ErrPresentation)
	}
	return result, nil
}

// saveCredentials persists submitted credentials and reconnects with them.
func (s *session) saveCredentials(res recovery.Result) error {
	username := res.Value(recovery.FieldUsername)
	token := res.Value(recovery.FieldPassword)

	if err := s.env.ConfigStore.SaveAll(map[string]string{
		config.KeyUsername: username,
		config.KeyToken:    token,
	}); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	s.cfg.Username = username
	s.cfg.Token = token
	fmt.Fprintln(s.env.Stderr, "Credentials saved.")

	return s.connect()
}
