package overtime

import "fmt"

// FormatClock renders a second of the day as HH:MM:SS. The day-boundary value
// renders as 24:00:00.
func FormatClock(secondOfDay int64) string {
	if secondOfDay < 0 {
		secondOfDay = 0
	}
	if secondOfDay >= 24*3600 {
		return "24:00:00"
	}
	hours := secondOfDay / 3600
	minutes := (secondOfDay % 3600) / 60
	seconds := secondOfDay % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// FormatDuration renders a duration as H:MM:SS without a sign.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = -seconds
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds%60)
}

// FormatSignedDuration renders a duration with an explicit sign for non-zero
// values.
func FormatSignedDuration(seconds int64) string {
	switch {
	case seconds < 0:
		return "-" + FormatDuration(seconds)
	case seconds > 0:
		return "+" + FormatDuration(seconds)
	default:
		return FormatDuration(seconds)
	}
}
