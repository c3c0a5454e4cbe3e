package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/diskwatch/internal/diskutil"
	"github.com/vertextoedge/diskwatch/internal/domain"
	"github.com/vertextoedge/diskwatch/internal/port"
	"github.com/vertextoedge/diskwatch/internal/sysinfo"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

// StatusHandler handles status and history requests
type StatusHandler struct {
	store   port.Store
	tracked map[string]bool
	logger  *zap.Logger
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(store port.Store, tracked []string, logger *zap.Logger) *StatusHandler {
	set := make(map[string]bool, len(tracked))
	for _, name := range tracked {
		set[name] = true
	}
	return &StatusHandler{
		store:   store,
		tracked: set,
		logger:  logger,
	}
}

// pathStatus is the wire form of a snapshot. AvailableHuman is omitted
// when the space query failed at sampling time.
type pathStatus struct {
	Name           string    `json:"name"`
	Path           string    `json:"path"`
	AvailableBytes int64     `json:"available_bytes"`
	AvailableHuman string    `json:"available_human,omitempty"`
	DirSizeBytes   int64     `json:"dir_size_bytes"`
	DirSizeHuman   string    `json:"dir_size_human"`
	SampledAt      time.Time `json:"sampled_at"`
}

func toPathStatus(snap *domain.Snapshot) pathStatus {
	st := pathStatus{
		Name:           snap.Name,
		Path:           snap.Path,
		AvailableBytes: snap.AvailableBytes,
		DirSizeBytes:   snap.DirSizeBytes,
		DirSizeHuman:   diskutil.FormatBytes(snap.DirSizeBytes),
		SampledAt:      snap.SampledAt,
	}
	if snap.SpaceKnown() {
		st.AvailableHuman = diskutil.FormatBytes(snap.AvailableBytes)
	}
	return st
}

// HandleStatus handles status overview requests
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snaps, err := h.store.LatestSnapshots()
	if err != nil {
		h.logger.Error("failed to load latest snapshots", zap.Error(err))
		http.Error(w, "Failed to load snapshots", http.StatusInternalServerError)
		return
	}

	paths := make([]pathStatus, 0, len(snaps))
	for _, snap := range snaps {
		paths = append(paths, toPathStatus(snap))
	}

	partitions, err := sysinfo.Partitions(r.Context())
	if err != nil {
		h.logger.Warn("failed to read partition table", zap.Error(err))
		partitions = []sysinfo.PartitionInfo{}
	}

	response := map[string]interface{}{
		"paths":      paths,
		"partitions": partitions,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleHistory handles snapshot history requests: /v1/history?name=X&limit=N
func (h *StatusHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "Query parameter name required", http.StatusBadRequest)
		return
	}
	if !h.tracked[name] {
		http.Error(w, "Unknown path name", http.StatusNotFound)
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	snaps, err := h.store.History(name, limit)
	if err != nil {
		h.logger.Error("failed to load snapshot history",
			zap.String("name", name),
			zap.Error(err))
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	entries := make([]pathStatus, 0, len(snaps))
	for _, snap := range snaps {
		entries = append(entries, toPathStatus(snap))
	}

	response := map[string]interface{}{
		"name":      name,
		"snapshots": entries,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
