package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alnah/go-jenkins/internal/jenkins"
)

// JobsCmd creates the jobs command.
// The env parameter provides injectable dependencies for testing.
func JobsCmd(env *Env, opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List jobs on the server",
		Long: `List the jobs at the top level of the Jenkins server with their status.

Status is derived from the job's ball color: success, failed, unstable,
aborted, disabled, not built or building.`,
		Example: `  jenkins jobs
  jenkins jobs --url https://ci.example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobs(cmd.Context(), env, opts)
		},
	}
}

func runJobs(ctx context.Context, env *Env, opts *Options) error {
	s, err := newSession(env, opts)
	if err != nil {
		return err
	}

	var jobs []jenkins.Job
	err = s.run(ctx, func(ctx context.Context, c Client) error {
		var err error
		jobs, err = c.Jobs(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if len(jobs) == 0 {
		fmt.Fprintln(env.Stdout, "No jobs.")
		return nil
	}

	w := tabwriter.NewWriter(env.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATUS")
	for _, j := range jobs {
		fmt.Fprintf(w, "%s\t%s\n", j.Name, j.Status())
	}
	return w.Flush()
}
