package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-jenkins/internal/format"
	"github.com/alnah/go-jenkins/internal/jenkins"
)

const defaultInterval = 10 * time.Second

// WatchCmd creates the watch command.
// The env parameter provides injectable dependencies for testing.
func WatchCmd(env *Env, opts *Options) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch <job>",
		Short: "Follow the last build until it finishes",
		Long: `Poll the last build of a job until it finishes, printing progress.

Exits non-zero if the build does not succeed. Press Ctrl+C to stop watching;
the build keeps running on the server.`,
		Example: `  jenkins watch api
  jenkins watch team/api --interval 30s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return fmt.Errorf("--interval %s: %w", interval, ErrInvalidInterval)
			}
			return runWatch(cmd.Context(), env, opts, args[0], interval)
		},
	}

	cmd.Flags().DurationVarP(&interval, "interval", "i", defaultInterval, "Polling interval")

	return cmd
}

func runWatch(ctx context.Context, env *Env, opts *Options, job string, interval time.Duration) error {
	s, err := newSession(env, opts)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		var b jenkins.Build
		err := s.run(ctx, func(ctx context.Context, c Client) error {
			var err error
			b, err = c.Build(ctx, job, 0)
			return err
		})
		if err != nil {
			return err
		}

		if !b.Building {
			return finishWatch(env, b)
		}

		fmt.Fprintf(env.Stderr, "#%d running %s", b.Number, format.Duration(b.Elapsed(env.Now())))
		if est := format.BuildDuration(b.EstimatedDuration); est != "" {
			fmt.Fprintf(env.Stderr, " (estimated %s)", est)
		}
		fmt.Fprintln(env.Stderr)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// finishWatch prints the final state of b and reports whether it succeeded.
func finishWatch(env *Env, b jenkins.Build) error {
	result := format.Optional(b.Result)
	fmt.Fprintf(env.Stdout, "%s #%d finished: %s", b.Job, b.Number, result)
	if d := format.BuildDuration(b.Duration); d != "" {
		fmt.Fprintf(env.Stdout, " in %s", d)
	}
	fmt.Fprintln(env.Stdout)

	if b.Result == nil || *b.Result != resultSuccess {
		return fmt.Errorf("%s #%d: %s: %w", b.Job, b.Number, result, ErrBuildFailed)
	}
	return nil
}
