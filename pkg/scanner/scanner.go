// Package scanner counts keyword lines in a single file.
package scanner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dtnitsch/kwscan/models"
	"github.com/dtnitsch/kwscan/pkg/analytics"
)

const (
	ErrorTypeUnreadable = "file_unreadable"
	ErrorTypeCancelled  = "scan_cancelled"

	maxLineBytes = 1024 * 1024
	// lines between context checks
	cancelCheckInterval = 1024
)

// ErrFileUnreadable wraps any failure opening or reading a file.
var ErrFileUnreadable = errors.New("file unreadable")

// Result holds the outcome of scanning one file. Counts and Lines reflect
// everything read before a failure, so a failed scan still carries data.
type Result struct {
	Path      string
	Counts    models.KeywordCounts
	Lines     int64
	Matches   int64
	Err       error
	ErrorType string
}

// Failed reports whether the scan ended early.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Report converts the result into its reportable form.
func (r Result) Report() models.FileReport {
	report := models.FileReport{Path: r.Path, Lines: r.Lines, ErrorType: r.ErrorType}
	if r.Err != nil {
		report.ErrorMessage = r.Err.Error()
	}
	return report
}

// Scan streams path line by line and counts, per keyword, the lines that
// contain it. Errors are recorded on the result, never returned.
func Scan(ctx context.Context, path string, keywords models.KeywordSet) Result {
	f, err := os.Open(path)
	if err != nil {
		return Result{
			Path:      path,
			Counts:    models.NewKeywordCounts(keywords),
			Err:       fmt.Errorf("%w: %s: %v", ErrFileUnreadable, path, err),
			ErrorType: ErrorTypeUnreadable,
		}
	}
	defer f.Close()

	return ScanReader(ctx, path, f, keywords)
}

// ScanReader is Scan over an already opened reader. name only labels the
// result.
func ScanReader(ctx context.Context, name string, r io.Reader, keywords models.KeywordSet) Result {
	result := Result{
		Path:   name,
		Counts: models.NewKeywordCounts(keywords),
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		result.Lines++
		result.Matches += int64(analytics.CountLine(sc.Text(), keywords, result.Counts))

		if result.Lines%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				result.Err = fmt.Errorf("scan of %s stopped after %d lines: %w", name, result.Lines, err)
				result.ErrorType = ErrorTypeCancelled
				return result
			}
		}
	}

	if err := sc.Err(); err != nil {
		result.Err = fmt.Errorf("%w: %s: %v", ErrFileUnreadable, name, err)
		result.ErrorType = ErrorTypeUnreadable
	}
	return result
}
