package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alnah/go-jenkins/internal/apierr"
	"github.com/alnah/go-jenkins/internal/cli"
	"github.com/alnah/go-jenkins/internal/config"
	"github.com/alnah/go-jenkins/internal/endpoint"
	"github.com/alnah/go-jenkins/internal/jenkins"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitGeneral     = 1
	ExitUsage       = 2
	ExitSetup       = 3
	ExitAuth        = 4
	ExitServer      = 5
	ExitBuildFailed = 6
	ExitInterrupt   = 130
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// Context with signal cancellation.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Create the CLI environment with production defaults.
	env := cli.DefaultEnv()

	// Root command.
	rootCmd := &cobra.Command{
		Use:     "jenkins",
		Short:   "Browse jobs and follow builds on a Jenkins server",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	opts := cli.GlobalFlags(rootCmd)

	// Subcommands.
	rootCmd.AddCommand(cli.JobsCmd(env, opts))
	rootCmd.AddCommand(cli.BuildCmd(env, opts))
	rootCmd.AddCommand(cli.StatusCmd(env, opts))
	rootCmd.AddCommand(cli.WatchCmd(env, opts))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Check for context cancellation (interrupt).
	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Usage errors (ExitUsage = 2): Cobra flag/arg parsing errors and bad arguments.
	if isCobraUsageError(err) || errors.Is(err, cli.ErrInvalidBuildNumber) ||
		errors.Is(err, cli.ErrInvalidInterval) || errors.Is(err, cli.ErrInvalidParallel) {
		return ExitUsage
	}

	// Setup errors (ExitSetup = 3).
	if errors.Is(err, jenkins.ErrMissingURL) || errors.Is(err, endpoint.ErrMalformedURL) ||
		errors.Is(err, config.ErrInvalidKey) || errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrInvalidSyntax) {
		return ExitSetup
	}

	// Authentication errors (ExitAuth = 4).
	if errors.Is(err, apierr.ErrAuthFailed) {
		return ExitAuth
	}

	// Server and network errors (ExitServer = 5).
	var transportErr *apierr.TransportError
	if errors.Is(err, apierr.ErrServer) || errors.Is(err, apierr.ErrTimeout) ||
		errors.Is(err, apierr.ErrRateLimit) || errors.As(err, &transportErr) {
		return ExitServer
	}

	// Build result (ExitBuildFailed = 6).
	if errors.Is(err, cli.ErrBuildFailed) {
		return ExitBuildFailed
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// Cobra doesn't expose typed errors, so string matching is the only reliable approach.
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"unknown command",           // Subcommand doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag value type
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
