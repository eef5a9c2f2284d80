package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dtnitsch/kwscan/models"
)

// Run is a stored comparative run.
type Run struct {
	RunID        int64
	RunUUID      string
	Directory    string
	FileCount    int
	FailedCount  int
	TotalLines   int64
	WorkerCount  int
	ParallelMS   int64
	SequentialMS int64
	MostFrequent string
	TotalsMatch  bool
	CreatedAt    time.Time
}

// KeywordTotal is one keyword's totals in a stored run.
type KeywordTotal struct {
	Keyword         string
	ParallelCount   int
	SequentialCount int
}

// InsertRun stores a report with its keyword totals and per-file outcomes,
// returning the run_id.
func (db *DB) InsertRun(directory string, r *models.Report) (int64, error) {
	var totalLines int64
	for _, f := range r.Files {
		totalLines += f.Lines
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	result, err := tx.Exec(`
		INSERT INTO runs (run_uuid, directory, file_count, failed_count, total_lines, worker_count,
		                  parallel_ms, sequential_ms, most_frequent, totals_match)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.RunID, directory, len(r.Files), len(r.FailedFiles()), totalLines, r.WorkerCount,
		r.Metrics.ParallelElapsed().Milliseconds(), r.Metrics.SequentialElapsed().Milliseconds(),
		r.MostFrequent, r.TotalsMatch())
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}

	for i, keyword := range r.Keywords {
		_, err = tx.Exec(`
			INSERT INTO run_keyword_counts (run_id, keyword, position, parallel_count, sequential_count)
			VALUES (?, ?, ?, ?, ?)
		`, runID, keyword, i, r.ParallelTotal[keyword], r.SequentialTotal[keyword])
		if err != nil {
			return 0, fmt.Errorf("failed to insert keyword count: %w", err)
		}
	}

	for _, f := range r.Files {
		_, err = tx.Exec(`
			INSERT INTO run_files (run_id, path, line_count, error_type, error_message)
			VALUES (?, ?, ?, ?, ?)
		`, runID, f.Path, f.Lines, NewNullString(f.ErrorType), NewNullString(f.ErrorMessage))
		if err != nil {
			return 0, fmt.Errorf("failed to insert run file: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

const runColumns = `run_id, run_uuid, directory, file_count, failed_count, total_lines, worker_count,
	parallel_ms, sequential_ms, most_frequent, totals_match, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var r Run
	err := row.Scan(&r.RunID, &r.RunUUID, &r.Directory, &r.FileCount, &r.FailedCount, &r.TotalLines,
		&r.WorkerCount, &r.ParallelMS, &r.SequentialMS, &r.MostFrequent, &r.TotalsMatch, &r.CreatedAt)
	return r, err
}

// GetRunByID retrieves a run by its ID
func (db *DB) GetRunByID(runID int64) (*Run, error) {
	r, err := scanRun(db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &r, nil
}

// ListRuns retrieves runs ordered by most recent first
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, run_id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRunKeywordCounts returns a run's totals in keyword-set order.
func (db *DB) GetRunKeywordCounts(runID int64) ([]KeywordTotal, error) {
	rows, err := db.Query(`
		SELECT keyword, parallel_count, sequential_count
		FROM run_keyword_counts
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get keyword counts: %w", err)
	}
	defer rows.Close()

	var totals []KeywordTotal
	for rows.Next() {
		var k KeywordTotal
		if err := rows.Scan(&k.Keyword, &k.ParallelCount, &k.SequentialCount); err != nil {
			return nil, fmt.Errorf("failed to scan keyword count: %w", err)
		}
		totals = append(totals, k)
	}
	return totals, rows.Err()
}

// GetRunFiles returns the per-file outcomes of a run.
func (db *DB) GetRunFiles(runID int64) ([]models.FileReport, error) {
	rows, err := db.Query(`
		SELECT path, line_count, error_type, error_message
		FROM run_files
		WHERE run_id = ?
		ORDER BY file_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run files: %w", err)
	}
	defer rows.Close()

	var files []models.FileReport
	for rows.Next() {
		var f models.FileReport
		var errorType, errorMessage sql.NullString
		if err := rows.Scan(&f.Path, &f.Lines, &errorType, &errorMessage); err != nil {
			return nil, fmt.Errorf("failed to scan run file: %w", err)
		}
		f.ErrorType = errorType.String
		f.ErrorMessage = errorMessage.String
		files = append(files, f)
	}
	return files, rows.Err()
}

// DeleteRun removes a run and, through cascades, its counts and files.
func (db *DB) DeleteRun(runID int64) error {
	result, err := db.Exec("DELETE FROM runs WHERE run_id = ?", runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %d not found", runID)
	}
	return nil
}

// NewNullString creates a sql.NullString from a string value.
func NewNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
