// Package format renders build data for human display.
package format

import (
	"fmt"
	"strings"
	"time"
)

// unknown is the description of an absent value.
const unknown = "Unknown"

// BuildDuration formats a duration given in milliseconds, as reported by
// Jenkins, in the form "1 hours 2 minutes 3 seconds".
// Units whose integer value is zero are omitted. Hours do not wrap at 24.
// Zero and negative durations yield an empty string.
func BuildDuration(ms int64) string {
	hours := ms / 3_600_000
	minutes := (ms / 60_000) % 60
	seconds := (ms / 1_000) % 60

	parts := make([]string, 0, 3)
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d hours", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d minutes", minutes))
	}
	if seconds > 0 {
		parts = append(parts, fmt.Sprintf("%d seconds", seconds))
	}
	return strings.Join(parts, " ")
}

// Optional describes a possibly absent value.
// Returns "Unknown" for nil, the String() form for fmt.Stringer values,
// and the %v form otherwise.
func Optional[T any](v *T) string {
	if v == nil {
		return unknown
	}
	if s, ok := any(*v).(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", *v)
}

// Duration formats a duration as HH:MM:SS or MM:SS.
func Duration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
