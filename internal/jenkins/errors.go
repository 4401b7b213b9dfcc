package jenkins

import "errors"

var (
	// ErrInvalidResponse indicates a response body was not the expected JSON.
	ErrInvalidResponse = errors.New("invalid response from Jenkins")

	// ErrMissingURL indicates no Jenkins base URL was configured.
	ErrMissingURL = errors.New("jenkins URL not set (use --url, config url or JENKINS_URL)")
)
