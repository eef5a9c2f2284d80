package report

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/kwscan/models"
	"github.com/dtnitsch/kwscan/pkg/storage"
)

func sampleReport() *models.Report {
	start := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	totals := models.KeywordCounts{"error": 2, "warning": 1, "failed": 1, "success": 0}
	return &models.Report{
		RunID:    "run-1",
		Keywords: models.KeywordSet{"error", "warning", "failed", "success"},
		Files: []models.FileReport{
			{Path: "logs/a.log", Lines: 3},
			{Path: "logs/b.txt", Lines: 2},
			{Path: "logs/c.log", Lines: 0, ErrorType: "file_unreadable", ErrorMessage: "file unreadable: logs/c.log"},
		},
		WorkerCount:     3,
		ParallelTotal:   totals,
		SequentialTotal: models.KeywordCounts{"error": 2, "warning": 1, "failed": 1, "success": 0},
		Metrics: models.RunMetrics{
			ParallelStart:   start,
			ParallelEnd:     start.Add(10 * time.Millisecond),
			SequentialStart: start.Add(20 * time.Millisecond),
			SequentialEnd:   start.Add(50 * time.Millisecond),
		},
		MostFrequent: "error",
	}
}

func TestFormatText(t *testing.T) {
	want := "=== Log Keyword Summary ===\nerror = 2\nwarning = 1\nfailed = 1\nsuccess = 0\n"
	if diff := cmp.Diff(want, FormatText(sampleReport())); diff != "" {
		t.Errorf("FormatText() mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteSummary(t *testing.T) {
	s := &storage.Storage{}
	path := filepath.Join(t.TempDir(), "output", "log_result.txt")

	if err := WriteSummary(path, sampleReport(), s); err != nil {
		t.Fatalf("WriteSummary() error = %v", err)
	}
	data, err := s.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "=== Log Keyword Summary ===") {
		t.Errorf("summary file = %q", data)
	}
}

func TestWriteYAML(t *testing.T) {
	s := &storage.Storage{}
	path := filepath.Join(t.TempDir(), "summary.yaml")

	if err := WriteYAML(path, sampleReport(), s); err != nil {
		t.Fatalf("WriteYAML() error = %v", err)
	}
	data, err := s.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	var got Summary
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if got.RunID != "run-1" || got.MostFrequent != "error" {
		t.Errorf("summary = %+v", got)
	}
	if got.TotalLines != 5 || got.FailedFiles != 1 || got.FileCount != 3 {
		t.Errorf("TotalLines/FailedFiles/FileCount = %d/%d/%d, want 5/1/3", got.TotalLines, got.FailedFiles, got.FileCount)
	}
	if got.ParallelMS != 10 || got.SequentialMS != 30 || !got.TotalsMatch {
		t.Errorf("timings = %d/%d match=%v", got.ParallelMS, got.SequentialMS, got.TotalsMatch)
	}
	if len(got.Totals) != 4 || got.Totals[0].Keyword != "error" || got.Totals[0].Count != 2 {
		t.Errorf("Totals = %+v", got.Totals)
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, sampleReport())
	out := buf.String()

	for _, want := range []string{
		"===== FINAL SUMMARY =====",
		"ERROR = 2",
		"SUCCESS = 0",
		"MOST FREQUENT KEYWORD: ERROR",
		"Parallel time:   10 ms (3 workers)",
		"Sequential time: 30 ms",
		"Speedup:         3.00x",
		"[file_unreadable] logs/c.log",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Print() output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "totals differ") {
		t.Errorf("Print() reported differing totals:\n%s", out)
	}
}

func TestSummaryChanged(t *testing.T) {
	s := &storage.Storage{}
	path := filepath.Join(t.TempDir(), "log_result.txt")
	r := sampleReport()

	if !SummaryChanged(path, r, s) {
		t.Errorf("SummaryChanged() = false with no previous summary")
	}
	if err := WriteSummary(path, r, s); err != nil {
		t.Fatalf("WriteSummary() error = %v", err)
	}
	if SummaryChanged(path, r, s) {
		t.Errorf("SummaryChanged() = true for identical summary")
	}

	r.ParallelTotal["error"] = 7
	if !SummaryChanged(path, r, s) {
		t.Errorf("SummaryChanged() = false after totals changed")
	}
}
