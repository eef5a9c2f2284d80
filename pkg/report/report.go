// Package report renders run reports for people and machines.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/kwscan/models"
	"github.com/dtnitsch/kwscan/pkg/mapreduce"
	"github.com/dtnitsch/kwscan/pkg/storage"
)

// Summary is the YAML form of a run.
type Summary struct {
	RunID        string                   `yaml:"run_id"`
	GeneratedAt  string                   `yaml:"generated_at"`
	Keywords     []string                 `yaml:"keywords"`
	Totals       []mapreduce.KeywordCount `yaml:"totals"`
	MostFrequent string                   `yaml:"most_frequent"`
	TotalsMatch  bool                     `yaml:"totals_match"`
	Workers      int                      `yaml:"workers"`
	ParallelMS   int64                    `yaml:"parallel_ms"`
	SequentialMS int64                    `yaml:"sequential_ms"`
	Speedup      float64                  `yaml:"speedup"`
	FileCount    int                      `yaml:"file_count"`
	TotalLines   int64                    `yaml:"total_lines"`
	FailedFiles  int                      `yaml:"failed_files"`
	Files        []models.FileReport      `yaml:"files"`
	Warnings     []string                 `yaml:"warnings,omitempty"`
}

// BuildSummary flattens a report. Totals are the parallel branch's, in
// keyword-set order.
func BuildSummary(r *models.Report, now time.Time) Summary {
	s := Summary{
		RunID:        r.RunID,
		GeneratedAt:  now.Format(time.RFC3339),
		Keywords:     []string(r.Keywords),
		MostFrequent: r.MostFrequent,
		TotalsMatch:  r.TotalsMatch(),
		Workers:      r.WorkerCount,
		ParallelMS:   r.Metrics.ParallelElapsed().Milliseconds(),
		SequentialMS: r.Metrics.SequentialElapsed().Milliseconds(),
		Speedup:      r.Metrics.Speedup(),
		FileCount:    len(r.Files),
		Files:        r.Files,
		Warnings:     r.Warnings,
	}

	for _, k := range r.Keywords {
		s.Totals = append(s.Totals, mapreduce.KeywordCount{Keyword: k, Count: r.ParallelTotal[k]})
	}
	for _, f := range r.Files {
		s.TotalLines += f.Lines
		if f.Failed() {
			s.FailedFiles++
		}
	}
	return s
}

// FormatText renders the plain-text keyword summary file.
func FormatText(r *models.Report) string {
	var sb strings.Builder
	sb.WriteString("=== Log Keyword Summary ===\n")
	for _, k := range r.Keywords {
		fmt.Fprintf(&sb, "%s = %d\n", k, r.ParallelTotal[k])
	}
	return sb.String()
}

// WriteSummary saves the plain-text summary at path.
func WriteSummary(path string, r *models.Report, s *storage.Storage) error {
	if err := s.SaveFile(path, []byte(FormatText(r))); err != nil {
		return fmt.Errorf("error writing summary: %w", err)
	}
	return nil
}

// SummaryChanged reports whether the text summary at path differs from the
// one r would produce. A missing or unreadable file counts as changed.
func SummaryChanged(path string, r *models.Report, s *storage.Storage) bool {
	prev, err := s.ReadFile(path)
	if err != nil {
		return true
	}
	return string(prev) != FormatText(r)
}

// WriteYAML saves the YAML summary at path.
func WriteYAML(path string, r *models.Report, s *storage.Storage) error {
	data, err := yaml.Marshal(BuildSummary(r, time.Now()))
	if err != nil {
		return fmt.Errorf("error marshalling summary: %w", err)
	}
	if err := s.SaveFile(path, data); err != nil {
		return fmt.Errorf("error writing summary: %w", err)
	}
	return nil
}

// Print writes the console summary.
func Print(w io.Writer, r *models.Report) {
	fmt.Fprintln(w, "\n===== FINAL SUMMARY =====")
	for _, k := range r.Keywords {
		fmt.Fprintf(w, "%s = %d\n", strings.ToUpper(k), r.ParallelTotal[k])
	}

	fmt.Fprintf(w, "\nMOST FREQUENT KEYWORD: %s\n", strings.ToUpper(r.MostFrequent))

	fmt.Fprintf(w, "\nParallel time:   %d ms (%d workers)\n", r.Metrics.ParallelElapsed().Milliseconds(), r.WorkerCount)
	fmt.Fprintf(w, "Sequential time: %d ms\n", r.Metrics.SequentialElapsed().Milliseconds())
	if speedup := r.Metrics.Speedup(); speedup > 0 {
		fmt.Fprintf(w, "Speedup:         %.2fx\n", speedup)
	}
	if !r.TotalsMatch() {
		fmt.Fprintln(w, "Note: parallel and sequential totals differ")
	}

	if failed := r.FailedFiles(); len(failed) > 0 {
		fmt.Fprintf(w, "\n%d file(s) could not be fully scanned:\n", len(failed))
		for _, f := range failed {
			fmt.Fprintf(w, "  - [%s] %s (%d lines read)\n", f.ErrorType, f.Path, f.Lines)
		}
	}
}
