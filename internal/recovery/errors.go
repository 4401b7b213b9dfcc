package recovery

import "errors"

// ErrPresentation indicates a prompt could not be presented: the host refused
// to show it (e.g. another modal is active) or Present was misused.
// This is a sequencing bug in the caller and must not be retried.
var ErrPresentation = errors.New("cannot present recovery prompt")
