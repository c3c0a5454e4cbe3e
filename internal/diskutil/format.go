package diskutil

import "fmt"

var byteUnits = [...]string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders a byte count as a human-readable string with exactly
// one decimal place, e.g. "1.5 KB". The unit steps up by 1024 from B while
// the value is at least 1024, capped at TB. Negative input is clamped to 0.
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}

	value := float64(bytes)
	unit := 0
	for value >= 1024 && unit < len(byteUnits)-1 {
		value /= 1024
		unit++
	}

	return fmt.Sprintf("%.1f %s", value, byteUnits[unit])
}
