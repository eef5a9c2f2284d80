package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- One row per comparative run
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_uuid TEXT NOT NULL UNIQUE,
    directory TEXT NOT NULL,
    file_count INTEGER NOT NULL DEFAULT 0,
    failed_count INTEGER NOT NULL DEFAULT 0,
    total_lines INTEGER NOT NULL DEFAULT 0,
    worker_count INTEGER NOT NULL DEFAULT 0,
    parallel_ms INTEGER NOT NULL DEFAULT 0,
    sequential_ms INTEGER NOT NULL DEFAULT 0,
    most_frequent TEXT NOT NULL,
    totals_match BOOLEAN NOT NULL DEFAULT 1,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_runs_directory ON runs(directory);

-- Totals per keyword; position keeps keyword-set order
CREATE TABLE IF NOT EXISTS run_keyword_counts (
    run_id INTEGER NOT NULL,
    keyword TEXT NOT NULL,
    position INTEGER NOT NULL,
    parallel_count INTEGER NOT NULL DEFAULT 0,
    sequential_count INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (run_id, keyword),
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

-- Per-file outcome of the parallel branch
CREATE TABLE IF NOT EXISTS run_files (
    file_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    path TEXT NOT NULL,
    line_count INTEGER NOT NULL DEFAULT 0,
    error_type TEXT,
    error_message TEXT,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_run_files_run ON run_files(run_id);
CREATE INDEX IF NOT EXISTS idx_run_files_failed ON run_files(run_id) WHERE error_type IS NOT NULL;
`
