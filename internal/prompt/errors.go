package prompt

import "errors"

var (
	// ErrAlreadyShown indicates Show was called twice on the same host.
	ErrAlreadyShown = errors.New("prompt already shown")

	// ErrNoActions indicates Show was called before any action was registered.
	ErrNoActions = errors.New("prompt has no actions")
)
