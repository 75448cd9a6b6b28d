package videos

import "fmt"

// FormatDuration renders seconds as "m:ss". Minutes are not rolled over into
// hours, so an hour-long video renders as "60:00". Negative input is treated as zero.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
