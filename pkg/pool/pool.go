// Package pool runs file scans across a bounded set of worker goroutines.
package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dtnitsch/kwscan/models"
	"github.com/dtnitsch/kwscan/pkg/metrics"
	"github.com/dtnitsch/kwscan/pkg/scanner"
)

const (
	ErrorTypeTaskFailed      = "worker_task_failed"
	ErrorTypeShutdownTimeout = "shutdown_timeout"
)

var (
	// ErrWorkerTaskFailed marks a task that panicked inside a worker.
	ErrWorkerTaskFailed = errors.New("worker task failed")
	// ErrPoolShutdownTimeout marks a pool whose workers did not finish
	// within the shutdown bound.
	ErrPoolShutdownTimeout = errors.New("pool shutdown timed out")
)

// Task identifies one file to scan.
type Task struct {
	Path     string
	Keywords models.KeywordSet
}

// ScanFunc scans one file. scanner.Scan is the default.
type ScanFunc func(ctx context.Context, path string, keywords models.KeywordSet) scanner.Result

type job struct {
	index int
	task  Task
}

type indexedResult struct {
	index  int
	result scanner.Result
}

// Pool dispatches scan tasks to at most maxWorkers goroutines.
type Pool struct {
	logger          *slog.Logger
	maxWorkers      int
	shutdownTimeout time.Duration
	scan            ScanFunc
}

// Option configures a Pool.
type Option func(*Pool)

// WithScanFunc replaces the function run for every task.
func WithScanFunc(fn ScanFunc) Option {
	return func(p *Pool) {
		p.scan = fn
	}
}

// New creates a pool. maxWorkers <= 0 means one worker per CPU;
// shutdownTimeout <= 0 waits for workers without bound.
func New(logger *slog.Logger, maxWorkers int, shutdownTimeout time.Duration, opts ...Option) *Pool {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	p := &Pool{
		logger:          logger,
		maxWorkers:      maxWorkers,
		shutdownTimeout: shutdownTimeout,
		scan:            scanner.Scan,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Size returns how many workers serve taskCount tasks: never more than
// either bound, and at least one when there is work.
func Size(maxWorkers, taskCount int) int {
	if taskCount <= 0 {
		return 0
	}
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	return max(1, min(maxWorkers, taskCount))
}

// Workers returns the pool size used for taskCount tasks.
func (p *Pool) Workers(taskCount int) int {
	return Size(p.maxWorkers, taskCount)
}

// RunAll scans every task and returns one result per task, in task order.
// Failures are carried on the results; RunAll itself never fails.
func (p *Pool) RunAll(ctx context.Context, tasks []Task) []scanner.Result {
	if len(tasks) == 0 {
		return nil
	}

	workers := p.Workers(len(tasks))
	metrics.SetPoolWorkers(workers)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// jobs is unbuffered so dispatch ends once the last task is picked up.
	jobs := make(chan job)
	results := make(chan indexedResult, len(tasks))

	var g errgroup.Group
	for w := 1; w <= workers; w++ {
		id := w
		g.Go(func() error {
			p.worker(runCtx, id, jobs, results)
			return nil
		})
	}

	p.logger.Info("Starting worker pool", "tasks", len(tasks), "workers", workers)

	// A dispatch that stalls for the shutdown bound, because every worker
	// is stuck, counts as a timeout too.
	var stall *time.Timer
	var stalled <-chan time.Time
	if p.shutdownTimeout > 0 {
		stall = time.NewTimer(p.shutdownTimeout)
		defer stall.Stop()
		stalled = stall.C
	}

	var timedOut bool
dispatch:
	for i, task := range tasks {
		select {
		case jobs <- job{index: i, task: task}:
			if stall != nil {
				stall.Reset(p.shutdownTimeout)
			}
		case <-ctx.Done():
			p.logger.Warn("Dispatch cancelled", "dispatched", i, "tasks", len(tasks), "error", ctx.Err())
			break dispatch
		case <-stalled:
			p.logger.Warn("No worker free within shutdown bound, stopping dispatch",
				"dispatched", i, "tasks", len(tasks), "timeout", p.shutdownTimeout)
			timedOut = true
			break dispatch
		}
	}
	close(jobs)

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	if !timedOut {
		timedOut = !p.awaitWorkers(done)
	}
	if timedOut {
		p.logger.Warn("Workers still running after shutdown bound, stopping them",
			"timeout", p.shutdownTimeout, "error", ErrPoolShutdownTimeout)
		metrics.RecordShutdownTimeout()
		cancel()
	}

	collected := make([]scanner.Result, len(tasks))
	have := make([]bool, len(tasks))
drain:
	for {
		select {
		case r := <-results:
			collected[r.index] = r.result
			have[r.index] = true
		default:
			break drain
		}
	}

	for i, task := range tasks {
		if have[i] {
			continue
		}
		collected[i] = p.missingResult(ctx, task, timedOut)
		p.logger.Warn("No result collected for file", "path", task.Path, "error_type", collected[i].ErrorType)
	}

	return collected
}

// awaitWorkers waits for done, bounded by the shutdown timeout. It reports
// whether the workers finished in time.
func (p *Pool) awaitWorkers(done <-chan struct{}) bool {
	if p.shutdownTimeout <= 0 {
		<-done
		return true
	}

	timer := time.NewTimer(p.shutdownTimeout)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

func (p *Pool) missingResult(ctx context.Context, task Task, timedOut bool) scanner.Result {
	result := scanner.Result{
		Path:   task.Path,
		Counts: models.NewKeywordCounts(task.Keywords),
	}
	if timedOut {
		result.Err = fmt.Errorf("%w: %s not finished after %s", ErrPoolShutdownTimeout, task.Path, p.shutdownTimeout)
		result.ErrorType = ErrorTypeShutdownTimeout
		return result
	}
	result.Err = fmt.Errorf("%s not scanned: %w", task.Path, context.Cause(ctx))
	result.ErrorType = scanner.ErrorTypeCancelled
	return result
}

// worker pulls tasks until the jobs channel is closed.
func (p *Pool) worker(ctx context.Context, id int, jobs <-chan job, results chan<- indexedResult) {
	for j := range jobs {
		p.logger.Debug("Worker started task", "worker_id", id, "path", j.task.Path)
		result := p.runTask(ctx, id, j.task)
		results <- indexedResult{index: j.index, result: result}
		p.logger.Info("Worker processed file", "worker_id", id, "path", result.Path, "lines", result.Lines)
	}
}

// runTask scans one file, turning a panic into a failed result.
func (p *Pool) runTask(ctx context.Context, id int, task Task) (result scanner.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			p.logger.Warn("Worker task failed", "worker_id", id, "path", task.Path, "panic", fmt.Sprint(rec))
			result = scanner.Result{
				Path:      task.Path,
				Counts:    models.NewKeywordCounts(task.Keywords),
				Err:       fmt.Errorf("%w: %s: %v", ErrWorkerTaskFailed, task.Path, rec),
				ErrorType: ErrorTypeTaskFailed,
			}
		}
	}()

	result = p.scan(ctx, task.Path, task.Keywords)
	if result.Path == "" {
		result.Path = task.Path
	}
	if result.Counts == nil {
		result.Counts = models.NewKeywordCounts(task.Keywords)
	}
	if result.Failed() {
		p.logger.Warn("Error reading file", "worker_id", id, "path", task.Path, "error_type", result.ErrorType, "error", result.Err)
	}
	return result
}
