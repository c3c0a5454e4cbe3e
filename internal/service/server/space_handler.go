package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/vertextoedge/diskwatch/internal/diskutil"
	"github.com/vertextoedge/diskwatch/internal/domain"
	"github.com/vertextoedge/diskwatch/internal/port"
)

// SpaceHandler handles advisory space check requests
type SpaceHandler struct {
	checker port.SpaceChecker
	logger  *zap.Logger
}

// NewSpaceHandler creates a new SpaceHandler
func NewSpaceHandler(checker port.SpaceChecker, logger *zap.Logger) *SpaceHandler {
	return &SpaceHandler{
		checker: checker,
		logger:  logger,
	}
}

// spaceCheckResponse is the wire form of a space check result
type spaceCheckResponse struct {
	Name               string  `json:"name"`
	HasSpace           bool    `json:"has_space"`
	FileSizeBytes      int64   `json:"file_size_bytes"`
	FileSizeHuman      string  `json:"file_size_human"`
	DirSizeBytes       int64   `json:"dir_size_bytes"`
	AvailableBytes     int64   `json:"available_bytes"`
	MaxSizeBytes       int64   `json:"max_size_bytes,omitempty"`
	DiskUsedPct        float64 `json:"disk_used_percent"`
	MaxDiskUsagePct    float64 `json:"max_disk_usage_percent"`
	LimitedByBudget    bool    `json:"limited_by_budget"`
	LimitedByDiskUsage bool    `json:"limited_by_disk_usage"`
}

// HandleSpaceCheck handles space check requests:
// /v1/space-check?name=downloads&size=1.5 GB
//
// The size parameter accepts a plain byte count or a human readable
// size string.
func (h *SpaceHandler) HandleSpaceCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "Query parameter name required", http.StatusBadRequest)
		return
	}

	rawSize := r.URL.Query().Get("size")
	if rawSize == "" {
		http.Error(w, "Query parameter size required", http.StatusBadRequest)
		return
	}

	fileSize, err := strconv.ParseInt(rawSize, 10, 64)
	if err != nil || fileSize < 0 {
		fileSize = diskutil.ParseSize(rawSize)
		if fileSize == 0 {
			http.Error(w, "Invalid size", http.StatusBadRequest)
			return
		}
	}

	result, err := h.checker.CheckSpace(name, fileSize)
	if errors.Is(err, domain.ErrUnknownPath) {
		http.Error(w, "Unknown path name", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("space check failed",
			zap.String("name", name),
			zap.Error(err))
		http.Error(w, "Space check failed", http.StatusInternalServerError)
		return
	}

	response := spaceCheckResponse{
		Name:               name,
		HasSpace:           result.HasSpace,
		FileSizeBytes:      result.FileSizeBytes,
		FileSizeHuman:      diskutil.FormatBytes(result.FileSizeBytes),
		DirSizeBytes:       result.DirSizeBytes,
		AvailableBytes:     result.AvailableBytes,
		MaxSizeBytes:       result.MaxSizeBytes,
		DiskUsedPct:        result.DiskUsedPct,
		MaxDiskUsagePct:    result.MaxDiskUsagePct,
		LimitedByBudget:    result.LimitedByBudget,
		LimitedByDiskUsage: result.LimitedByDiskUsage,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
