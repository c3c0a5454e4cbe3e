package domain

// SpaceCheckResult contains detailed space availability information for a
// prospective file in a tracked path.
type SpaceCheckResult struct {
	HasSpace           bool
	FileSizeBytes      int64
	DirSizeBytes       int64
	AvailableBytes     int64
	MaxSizeBytes       int64
	DiskUsedPct        float64
	MaxDiskUsagePct    float64
	LimitedByBudget    bool
	LimitedByDiskUsage bool
}
