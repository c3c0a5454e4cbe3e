package diskutil

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var sizePattern = regexp.MustCompile(`^(?i)(\d+(?:\.\d+)?)\s*(b|kb|mb|gb)$`)

// ParseSize converts a human-readable size string like "1.5 GB" or "500kb"
// into a byte count. The units b, kb, mb and gb are recognized, matched
// case-insensitively, with optional whitespace between number and unit.
// Input that does not match (empty string, unknown unit, malformed number,
// trailing garbage) logs a warning and yields 0.
func ParseSize(s string) int64 {
	m := sizePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		log.Warn("unparseable size string", zap.String("input", s))
		return 0
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		log.Warn("unparseable size value",
			zap.String("input", s),
			zap.Error(err))
		return 0
	}

	var multiplier float64
	switch strings.ToLower(m[2]) {
	case "b":
		multiplier = 1
	case "kb":
		multiplier = 1 << 10
	case "mb":
		multiplier = 1 << 20
	case "gb":
		multiplier = 1 << 30
	}

	bytes := math.Round(value * multiplier)
	if bytes >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(bytes)
}
