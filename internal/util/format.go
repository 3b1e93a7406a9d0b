package util //nolint:revive // package name util hosts shared formatting helpers used across CLI output

import "time"

// FormatElapsed renders a duration for CLI summaries. Zero and negative
// values print as an em dash; anything over a millisecond is truncated to
// millisecond precision so summaries stay readable.
func FormatElapsed(d time.Duration) string {
	if d <= 0 {
		return "—"
	}
	if d < time.Millisecond {
		return d.String()
	}
	return d.Truncate(time.Millisecond).String()
}
