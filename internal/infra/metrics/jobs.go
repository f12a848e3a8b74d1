package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(analysisJobsCreatedTotal, analysisFilesTotal)
}

var analysisJobsCreatedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "analysis_jobs_created_total",
		Help: "Total number of analysis jobs created, labeled by kind.",
	},
	[]string{"kind"}, // 'folder', 'file'
)

var analysisFilesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "analysis_files_total",
		Help: "Per-file terminal analysis outcomes.",
	},
	[]string{"status"}, // 'analyzed', 'error', 'not_found'
)

func IncJobCreated(kind string) {
	analysisJobsCreatedTotal.WithLabelValues(norm(kind)).Inc()
}

func IncFileOutcome(status string) {
	analysisFilesTotal.WithLabelValues(norm(status)).Inc()
}
