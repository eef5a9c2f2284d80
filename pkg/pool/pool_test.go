package pool

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/kwscan/models"
	"github.com/dtnitsch/kwscan/pkg/scanner"
)

var testKeywords = models.KeywordSet{"error", "warning", "failed", "success"}

func tasksFor(paths ...string) []Task {
	tasks := make([]Task, len(paths))
	for i, p := range paths {
		tasks[i] = Task{Path: p, Keywords: testKeywords}
	}
	return tasks
}

func TestSize(t *testing.T) {
	tests := []struct {
		name       string
		maxWorkers int
		tasks      int
		want       int
	}{
		{"no tasks", 8, 0, 0},
		{"fewer tasks than workers", 8, 3, 3},
		{"more tasks than workers", 2, 10, 2},
		{"equal", 4, 4, 4},
		{"non-positive bound uses cpu count", 0, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Size(tt.maxWorkers, tt.tasks))
		})
	}

	assert.Equal(t, min(runtime.NumCPU(), 1000), Size(0, 1000))
}

func TestRunAll_ScansEveryFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.log")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("an error occurred\nwarning: low disk\nERROR again\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("all good\nfailed to connect\n"), 0644))

	p := New(nil, 4, time.Minute)
	results := p.RunAll(context.Background(), tasksFor(a, b))

	require.Len(t, results, 2)
	assert.Equal(t, a, results[0].Path)
	assert.Equal(t, int64(3), results[0].Lines)
	assert.Equal(t, models.KeywordCounts{"error": 2, "warning": 1, "failed": 0, "success": 0}, results[0].Counts)
	assert.Equal(t, int64(2), results[1].Lines)
	assert.Equal(t, models.KeywordCounts{"error": 0, "warning": 0, "failed": 1, "success": 0}, results[1].Counts)
	for _, r := range results {
		assert.NoError(t, r.Err)
	}
}

func TestRunAll_NoTasks(t *testing.T) {
	var calls atomic.Int32
	p := New(nil, 4, time.Minute, WithScanFunc(func(ctx context.Context, path string, ks models.KeywordSet) scanner.Result {
		calls.Add(1)
		return scanner.Result{}
	}))

	assert.Empty(t, p.RunAll(context.Background(), nil))
	assert.Zero(t, calls.Load())
	assert.Zero(t, p.Workers(0))
}

func TestRunAll_RecoversPanickingTask(t *testing.T) {
	p := New(nil, 2, time.Minute, WithScanFunc(func(ctx context.Context, path string, ks models.KeywordSet) scanner.Result {
		if path == "bad.log" {
			panic("corrupt state")
		}
		counts := models.NewKeywordCounts(ks)
		counts["error"] = 1
		return scanner.Result{Path: path, Counts: counts, Lines: 1}
	}))

	results := p.RunAll(context.Background(), tasksFor("one.log", "bad.log", "two.log"))
	require.Len(t, results, 3)

	bad := results[1]
	assert.ErrorIs(t, bad.Err, ErrWorkerTaskFailed)
	assert.Equal(t, ErrorTypeTaskFailed, bad.ErrorType)
	assert.Equal(t, models.NewKeywordCounts(testKeywords), bad.Counts)

	for _, i := range []int{0, 2} {
		assert.NoError(t, results[i].Err)
		assert.Equal(t, 1, results[i].Counts["error"])
	}
}

func TestRunAll_KeepsFileErrors(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.log")
	require.NoError(t, os.WriteFile(good, []byte("success\n"), 0644))
	missing := filepath.Join(dir, "missing.log")

	results := New(nil, 2, time.Minute).RunAll(context.Background(), tasksFor(good, missing))
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, 1, results[0].Counts["success"])
	assert.ErrorIs(t, results[1].Err, scanner.ErrFileUnreadable)
}

func TestRunAll_NeverExceedsWorkerBound(t *testing.T) {
	const maxWorkers = 3
	var running, peak atomic.Int32

	p := New(nil, maxWorkers, time.Minute, WithScanFunc(func(ctx context.Context, path string, ks models.KeywordSet) scanner.Result {
		n := running.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		return scanner.Result{Path: path, Counts: models.NewKeywordCounts(ks)}
	}))

	paths := make([]string, 20)
	for i := range paths {
		paths[i] = fmt.Sprintf("file-%02d.log", i)
	}
	results := p.RunAll(context.Background(), tasksFor(paths...))

	require.Len(t, results, len(paths))
	assert.LessOrEqual(t, peak.Load(), int32(maxWorkers))
	assert.GreaterOrEqual(t, peak.Load(), int32(1))
}

func TestRunAll_ShutdownTimeoutStopsStragglers(t *testing.T) {
	release := make(chan struct{})
	var once sync.Once
	t.Cleanup(func() { once.Do(func() { close(release) }) })

	p := New(nil, 2, 50*time.Millisecond, WithScanFunc(func(ctx context.Context, path string, ks models.KeywordSet) scanner.Result {
		counts := models.NewKeywordCounts(ks)
		if path == "stuck.log" {
			<-release
		}
		counts["warning"] = 2
		return scanner.Result{Path: path, Counts: counts, Lines: 2}
	}))

	start := time.Now()
	results := p.RunAll(context.Background(), tasksFor("fast.log", "stuck.log"))
	assert.Less(t, time.Since(start), 5*time.Second)

	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, 2, results[0].Counts["warning"])

	stuck := results[1]
	assert.True(t, errors.Is(stuck.Err, ErrPoolShutdownTimeout), "got %v", stuck.Err)
	assert.Equal(t, ErrorTypeShutdownTimeout, stuck.ErrorType)
	assert.Equal(t, models.NewKeywordCounts(testKeywords), stuck.Counts)
}

func TestRunAll_ShutdownBoundCoversStalledDispatch(t *testing.T) {
	release := make(chan struct{})
	var once sync.Once
	t.Cleanup(func() { once.Do(func() { close(release) }) })

	p := New(nil, 1, 50*time.Millisecond, WithScanFunc(func(ctx context.Context, path string, ks models.KeywordSet) scanner.Result {
		if path == "stuck.log" {
			<-release
		}
		return scanner.Result{Path: path, Counts: models.NewKeywordCounts(ks), Lines: 1}
	}))

	start := time.Now()
	results := p.RunAll(context.Background(), tasksFor("stuck.log", "next.log"))
	assert.Less(t, time.Since(start), 2*time.Second)

	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, errors.Is(r.Err, ErrPoolShutdownTimeout), "%s: got %v", r.Path, r.Err)
		assert.Equal(t, ErrorTypeShutdownTimeout, r.ErrorType)
	}
	assert.Equal(t, "next.log", results[1].Path)
}

func TestRunAll_ZeroBoundWaitsForSlowWorkers(t *testing.T) {
	p := New(nil, 1, 0, WithScanFunc(func(ctx context.Context, path string, ks models.KeywordSet) scanner.Result {
		time.Sleep(20 * time.Millisecond)
		return scanner.Result{Path: path, Counts: models.NewKeywordCounts(ks), Lines: 1}
	}))

	results := p.RunAll(context.Background(), tasksFor("a.log", "b.log", "c.log"))
	require.Len(t, results, 3)
	for _, r := range results {
		assert.NoError(t, r.Err)
	}
}
