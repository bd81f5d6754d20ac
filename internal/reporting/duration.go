package reporting

import (
	"fmt"
	"strings"
)

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour
)

// FormatLoggedTime renders a minute count as "D day(s) H hour(s) M min",
// omitting zero components. Zero and negative input render as "0 min".
func FormatLoggedTime(minutes int) string {
	if minutes <= 0 {
		return "0 min"
	}
	if minutes < minutesPerHour {
		return fmt.Sprintf("%d min", minutes)
	}

	days := minutes / minutesPerDay
	rem := minutes % minutesPerDay
	hours := rem / minutesPerHour
	mins := rem % minutesPerHour

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", days, plural(days, "day")))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", hours, plural(hours, "hour")))
	}
	if mins > 0 {
		parts = append(parts, fmt.Sprintf("%d min", mins))
	}
	return strings.Join(parts, " ")
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
