package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	AvailableBytes = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "diskwatch",
		Name:      "available_bytes",
		Help:      "Free disk space on the filesystem holding the tracked path, in bytes.",
	}, []string{"name"})

	DirectorySizeBytes = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "diskwatch",
		Name:      "directory_size_bytes",
		Help:      "Total size of the tracked directory tree in bytes.",
	}, []string{"name"})

	SamplesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "diskwatch",
		Name:      "samples_total",
		Help:      "Total number of path measurements taken.",
	})

	SampleErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "diskwatch",
		Name:      "sample_errors_total",
		Help:      "Total number of samples whose disk space query failed.",
	}, []string{"name"})

	SnapshotsPrunedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "diskwatch",
		Name:      "snapshots_pruned_total",
		Help:      "Total number of history snapshots removed by retention pruning.",
	})

	StaleFilesRemovedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "diskwatch",
		Name:      "stale_files_removed_total",
		Help:      "Total number of stale partial files removed by cleanup.",
	}, []string{"name"})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		AvailableBytes,
		DirectorySizeBytes,
		SamplesTotal,
		SampleErrorsTotal,
		SnapshotsPrunedTotal,
		StaleFilesRemovedTotal,
	)
}
