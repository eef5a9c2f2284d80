package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dtnitsch/kwscan/models"
	"github.com/dtnitsch/kwscan/pkg/scanner"
)

const namespace = "kwscan"

// Registry holds every kwscan collector once Register has run.
var Registry = prometheus.NewRegistry()

var (
	filesScanned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_scanned_total",
			Help:      "Count of files scanned, failed or not.",
		},
		[]string{"branch"},
	)
	fileFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_failures_total",
			Help:      "Count of file scans that ended with an error.",
		},
		[]string{"branch", "error_type"},
	)
	linesScanned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_scanned_total",
			Help:      "Count of lines read.",
		},
		[]string{"branch"},
	)
	keywordLines = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keyword_lines_total",
			Help:      "Count of lines containing a keyword, once per line and keyword.",
		},
		[]string{"branch", "keyword"},
	)
	branchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "branch_duration_seconds",
			Help:      "Wall-clock duration of a scan branch.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"branch"},
	)
	poolWorkers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_workers",
			Help:      "Number of workers started by the last parallel branch.",
		},
	)
	shutdownTimeouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_shutdown_timeouts_total",
			Help:      "Count of pools force-stopped after the shutdown bound.",
		},
	)
)

var registerMetrics sync.Once

// Register all metrics.
func Register() {
	registerMetrics.Do(func() {
		Registry.MustRegister(filesScanned)
		Registry.MustRegister(fileFailures)
		Registry.MustRegister(linesScanned)
		Registry.MustRegister(keywordLines)
		Registry.MustRegister(branchDuration)
		Registry.MustRegister(poolWorkers)
		Registry.MustRegister(shutdownTimeouts)
	})
}

// RecordFile records the outcome of one file scan.
func RecordFile(branch models.Branch, r scanner.Result) {
	filesScanned.WithLabelValues(string(branch)).Inc()
	linesScanned.WithLabelValues(string(branch)).Add(float64(r.Lines))
	if r.Failed() {
		fileFailures.WithLabelValues(string(branch), r.ErrorType).Inc()
	}
}

// RecordBranch records the duration and totals of a finished branch.
func RecordBranch(branch models.Branch, elapsed time.Duration, totals models.KeywordCounts) {
	branchDuration.WithLabelValues(string(branch)).Observe(elapsed.Seconds())
	for keyword, count := range totals {
		keywordLines.WithLabelValues(string(branch), keyword).Add(float64(count))
	}
}

func SetPoolWorkers(n int) {
	poolWorkers.Set(float64(n))
}

func RecordShutdownTimeout() {
	shutdownTimeouts.Inc()
}

// WriteTextfile writes the registry in the node exporter textfile format.
func WriteTextfile(path string) error {
	Register()
	return prometheus.WriteToTextfile(path, Registry)
}
