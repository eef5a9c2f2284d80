// Package runner scans the same files twice, once through the worker pool
// and once sequentially, and reports totals and timings for both.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dtnitsch/kwscan/models"
	"github.com/dtnitsch/kwscan/pkg/mapreduce"
	"github.com/dtnitsch/kwscan/pkg/metrics"
	"github.com/dtnitsch/kwscan/pkg/pool"
	"github.com/dtnitsch/kwscan/pkg/scanner"
)

// ErrNoKeywords is returned when a run is started without keywords.
var ErrNoKeywords = errors.New("no keywords to scan for")

// Config controls a Runner.
type Config struct {
	MaxWorkers      int
	ShutdownTimeout time.Duration
	// Scan replaces scanner.Scan in both branches.
	Scan pool.ScanFunc
}

// Runner executes comparative runs.
type Runner struct {
	logger *slog.Logger
	pool   *pool.Pool
	scan   pool.ScanFunc
	now    func() time.Time
}

func New(logger *slog.Logger, cfg Config) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	scan := cfg.Scan
	if scan == nil {
		scan = scanner.Scan
	}
	return &Runner{
		logger: logger,
		pool:   pool.New(logger, cfg.MaxWorkers, cfg.ShutdownTimeout, pool.WithScanFunc(scan)),
		scan:   scan,
		now:    time.Now,
	}
}

// Run scans files through the pool, then again one after another on the
// calling goroutine. Each branch has its own total. Per-file failures end up
// in the report; only cancellation of ctx or an empty keyword set returns an
// error.
func (r *Runner) Run(ctx context.Context, files []string, keywords models.KeywordSet) (*models.Report, error) {
	if len(keywords) == 0 {
		return nil, ErrNoKeywords
	}

	report := &models.Report{
		RunID:       uuid.NewString(),
		Keywords:    keywords,
		WorkerCount: r.pool.Workers(len(files)),
	}
	r.logger.Info("Starting run", "run_id", report.RunID, "files", len(files), "workers", report.WorkerCount, "keywords", []string(keywords))

	r.runParallel(ctx, files, report)
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run cancelled after parallel branch: %w", err)
	}

	r.runSequential(ctx, files, report)
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run cancelled during sequential branch: %w", err)
	}

	report.MostFrequent, _ = mapreduce.MostFrequent(report.ParallelTotal, keywords)
	if !report.TotalsMatch() {
		r.logger.Warn("Parallel and sequential totals differ", "run_id", report.RunID,
			"parallel", report.ParallelTotal, "sequential", report.SequentialTotal)
		report.Warnings = append(report.Warnings, "parallel and sequential totals differ")
	}

	r.logger.Info("Run finished", "run_id", report.RunID,
		"parallel_ms", report.Metrics.ParallelElapsed().Milliseconds(),
		"sequential_ms", report.Metrics.SequentialElapsed().Milliseconds(),
		"most_frequent", report.MostFrequent,
		"top_keywords", mapreduce.TopKeywords(report.ParallelTotal, keywords, 3))
	return report, nil
}

func (r *Runner) runParallel(ctx context.Context, files []string, report *models.Report) {
	tasks := make([]pool.Task, len(files))
	for i, path := range files {
		tasks[i] = pool.Task{Path: path, Keywords: report.Keywords}
	}

	report.Metrics.ParallelStart = r.now()
	results := r.pool.RunAll(ctx, tasks)
	partials := make([]models.KeywordCounts, 0, len(results))
	for _, res := range results {
		partials = append(partials, res.Counts)
	}
	report.ParallelTotal = mapreduce.Reduce(report.Keywords, partials)
	report.Metrics.ParallelEnd = r.now()

	report.Files = make([]models.FileReport, 0, len(results))
	for _, res := range results {
		metrics.RecordFile(models.BranchParallel, res)
		report.Files = append(report.Files, res.Report())
		if res.Failed() {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", res.ErrorType, res.Err))
		}
	}
	metrics.RecordBranch(models.BranchParallel, report.Metrics.ParallelElapsed(), report.ParallelTotal)
}

func (r *Runner) runSequential(ctx context.Context, files []string, report *models.Report) {
	total := models.NewKeywordCounts(report.Keywords)

	report.Metrics.SequentialStart = r.now()
	for _, path := range files {
		if ctx.Err() != nil {
			break
		}
		res := r.scanOne(ctx, path, report.Keywords)
		mapreduce.Merge(total, res.Counts)

		metrics.RecordFile(models.BranchSequential, res)
		if res.Failed() {
			r.logger.Warn("Sequential read error", "path", path, "error_type", res.ErrorType, "error", res.Err)
			report.Warnings = append(report.Warnings, fmt.Sprintf("sequential %s: %v", res.ErrorType, res.Err))
		}
	}
	report.Metrics.SequentialEnd = r.now()
	report.SequentialTotal = total

	metrics.RecordBranch(models.BranchSequential, report.Metrics.SequentialElapsed(), total)
}

// scanOne guards the sequential branch the same way the pool guards its
// workers.
func (r *Runner) scanOne(ctx context.Context, path string, keywords models.KeywordSet) (result scanner.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			result = scanner.Result{
				Path:      path,
				Counts:    models.NewKeywordCounts(keywords),
				Err:       fmt.Errorf("%w: %s: %v", pool.ErrWorkerTaskFailed, path, rec),
				ErrorType: pool.ErrorTypeTaskFailed,
			}
		}
	}()

	result = r.scan(ctx, path, keywords)
	if result.Counts == nil {
		result.Counts = models.NewKeywordCounts(keywords)
	}
	return result
}
