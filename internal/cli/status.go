package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alnah/go-jenkins/internal/format"
	"github.com/alnah/go-jenkins/internal/jenkins"
)

const defaultParallel = 4

// StatusCmd creates the status command.
// The env parameter provides injectable dependencies for testing.
func StatusCmd(env *Env, opts *Options) *cobra.Command {
	var parallel int

	cmd := &cobra.Command{
		Use:   "status <job>...",
		Short: "Show the last build of several jobs",
		Long: `Show the last build of each job, fetched concurrently.

Rows are printed in the order the jobs were given.`,
		Example: `  jenkins status api web worker
  jenkins status api web --parallel 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if parallel < 1 {
				return fmt.Errorf("--parallel %d: %w", parallel, ErrInvalidParallel)
			}
			return runStatus(cmd.Context(), env, opts, args, parallel)
		},
	}

	cmd.Flags().IntVarP(&parallel, "parallel", "p", defaultParallel, "Maximum concurrent requests")

	return cmd
}

func runStatus(ctx context.Context, env *Env, opts *Options, jobs []string, parallel int) error {
	s, err := newSession(env, opts)
	if err != nil {
		return err
	}

	var builds []jenkins.Build
	err = s.run(ctx, func(ctx context.Context, c Client) error {
		var err error
		builds, err = c.LastBuilds(ctx, jobs, parallel)
		return err
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(env.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JOB\tBUILD\tRESULT\tDURATION")
	for _, b := range builds {
		result := format.Optional(b.Result)
		duration := format.BuildDuration(b.Duration)
		if b.Building {
			result = "BUILDING"
			duration = format.BuildDuration(b.Elapsed(env.Now()).Milliseconds())
		}
		fmt.Fprintf(w, "%s\t#%d\t%s\t%s\n", b.Job, b.Number, result, orDash(duration))
	}
	return w.Flush()
}
