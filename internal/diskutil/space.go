package diskutil

import (
	"math"

	"go.uber.org/zap"
)

// SpaceUnknown is returned by AvailableSpace when the free space of a path
// cannot be determined.
const SpaceUnknown int64 = -1

// DiskUsage represents disk usage statistics
type DiskUsage struct {
	Total   uint64  // Total disk space in bytes
	Used    uint64  // Used disk space in bytes
	Free    uint64  // Free disk space in bytes
	UsedPct float64 // Used percentage (0-100)
}

// Usage returns disk usage for the filesystem containing path
// Platform-specific implementation in space_unix.go and space_windows.go

// AvailableSpace returns the number of free bytes on the filesystem
// containing path. It never fails: when the underlying query errors, the
// failure is logged and SpaceUnknown is returned.
func AvailableSpace(path string) int64 {
	usage, err := Usage(path)
	if err != nil {
		log.Warn("failed to determine available disk space",
			zap.String("path", path),
			zap.Error(err))
		return SpaceUnknown
	}

	if usage.Free > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(usage.Free)
}
