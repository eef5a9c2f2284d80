package models

import "time"

// Branch names one of the two execution strategies of a run.
type Branch string

const (
	BranchParallel   Branch = "parallel"
	BranchSequential Branch = "sequential"
)

// RunMetrics holds wall-clock boundaries of both branches.
type RunMetrics struct {
	ParallelStart   time.Time `yaml:"parallel_start" json:"parallel_start"`
	ParallelEnd     time.Time `yaml:"parallel_end" json:"parallel_end"`
	SequentialStart time.Time `yaml:"sequential_start" json:"sequential_start"`
	SequentialEnd   time.Time `yaml:"sequential_end" json:"sequential_end"`
}

func (m RunMetrics) ParallelElapsed() time.Duration {
	return m.ParallelEnd.Sub(m.ParallelStart)
}

func (m RunMetrics) SequentialElapsed() time.Duration {
	return m.SequentialEnd.Sub(m.SequentialStart)
}

// Speedup is sequential time over parallel time, 0 when the parallel branch
// took no measurable time.
func (m RunMetrics) Speedup() float64 {
	p := m.ParallelElapsed()
	if p <= 0 {
		return 0
	}
	return float64(m.SequentialElapsed()) / float64(p)
}

// FileReport describes the scan of one file in the parallel branch.
type FileReport struct {
	Path         string `yaml:"path" json:"path"`
	Lines        int64  `yaml:"lines" json:"lines"`
	ErrorType    string `yaml:"error_type,omitempty" json:"error_type,omitempty"`
	ErrorMessage string `yaml:"error,omitempty" json:"error,omitempty"`
}

// Failed reports whether the scan of the file ended with an error.
func (f FileReport) Failed() bool {
	return f.ErrorType != ""
}

// Report is the outcome of one comparative run.
type Report struct {
	RunID           string
	Keywords        KeywordSet
	Files           []FileReport
	WorkerCount     int
	ParallelTotal   KeywordCounts
	SequentialTotal KeywordCounts
	Metrics         RunMetrics
	MostFrequent    string
	Warnings        []string
}

// TotalsMatch reports whether both branches produced the same totals.
func (r *Report) TotalsMatch() bool {
	return r.ParallelTotal.Equal(r.SequentialTotal)
}

// FailedFiles returns the files whose scan ended with an error.
func (r *Report) FailedFiles() []FileReport {
	var failed []FileReport
	for _, f := range r.Files {
		if f.Failed() {
			failed = append(failed, f)
		}
	}
	return failed
}
