package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrBuildFailed indicates a watched or inspected build did not succeed.
	ErrBuildFailed = errors.New("build did not succeed")

	// ErrInvalidBuildNumber indicates a build number argument is not a positive integer.
	ErrInvalidBuildNumber = errors.New("invalid build number")

	// ErrInvalidInterval indicates a non-positive polling interval.
	ErrInvalidInterval = errors.New("invalid polling interval")

	// ErrInvalidParallel indicates a non-positive parallelism value.
	ErrInvalidParallel = errors.New("invalid parallel value")
)
