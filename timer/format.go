package timer

import (
	"fmt"
	"time"
)

// FormatElapsed renders d as "Xh Ymin" or "N min".
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d / time.Minute)
	hours := minutes / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dmin", hours, minutes%60)
	}
	return fmt.Sprintf("%d min", minutes)
}

// FormatClock renders a countdown in seconds as MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
