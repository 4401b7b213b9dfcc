package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-jenkins/internal/format"
	"github.com/alnah/go-jenkins/internal/jenkins"
)

// resultSuccess is the Jenkins result of a passing build.
const resultSuccess = "SUCCESS"

// BuildCmd creates the build command.
// The env parameter provides injectable dependencies for testing.
func BuildCmd(env *Env, opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "build <job> [number]",
		Short: "Show details of a build",
		Long: `Show details of a build. Without a number, the last build is shown.

Jobs inside folders are addressed with slashes: folder/job.`,
		Example: `  jenkins build api
  jenkins build api 42
  jenkins build team/api`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number := 0
			if len(args) == 2 {
				n, err := parseBuildNumber(args[1])
				if err != nil {
					return err
				}
				number = n
			}
			return runBuild(cmd.Context(), env, opts, args[0], number)
		},
	}
}

// parseBuildNumber parses a positive build number.
func parseBuildNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidBuildNumber)
	}
	return n, nil
}

func runBuild(ctx context.Context, env *Env, opts *Options, job string, number int) error {
	s, err := newSession(env, opts)
	if err != nil {
		return err
	}

	var b jenkins.Build
	err = s.run(ctx, func(ctx context.Context, c Client) error {
		var err error
		b, err = c.Build(ctx, job, number)
		return err
	})
	if err != nil {
		return err
	}

	writeBuild(env, b)
	return nil
}

// writeBuild prints the details of b to stdout.
func writeBuild(env *Env, b jenkins.Build) {
	out := env.Stdout
	fmt.Fprintf(out, "Job:         %s\n", b.Job)
	fmt.Fprintf(out, "Build:       #%d\n", b.Number)
	if b.DisplayName != "" && b.DisplayName != fmt.Sprintf("#%d", b.Number) {
		fmt.Fprintf(out, "Name:        %s\n", b.DisplayName)
	}
	fmt.Fprintf(out, "Result:      %s\n", format.Optional(b.Result))
	if b.Building {
		fmt.Fprintf(out, "Running:     %s\n", orDash(format.BuildDuration(b.Elapsed(env.Now()).Milliseconds())))
	} else {
		fmt.Fprintf(out, "Duration:    %s\n", orDash(format.BuildDuration(b.Duration)))
	}
	fmt.Fprintf(out, "Estimated:   %s\n", orDash(format.BuildDuration(b.EstimatedDuration)))
	if !b.Timestamp.IsZero() {
		fmt.Fprintf(out, "Started:     %s\n", b.Timestamp.Local().Format(time.DateTime))
	}
	if b.URL != "" {
		fmt.Fprintf(out, "URL:         %s\n", b.URL)
	}
	fmt.Fprintf(out, "Description: %s\n", format.Optional(b.Description))
}

// orDash returns "-" for an empty duration.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
