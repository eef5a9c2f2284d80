package scan

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/kwscan/models"
	"github.com/dtnitsch/kwscan/pkg/db"
	"github.com/dtnitsch/kwscan/pkg/discovery"
	"github.com/dtnitsch/kwscan/pkg/metrics"
	"github.com/dtnitsch/kwscan/pkg/report"
	"github.com/dtnitsch/kwscan/pkg/runner"
	"github.com/dtnitsch/kwscan/pkg/storage"
)

// errNothingToScan signals a valid directory without matching files.
var errNothingToScan = errors.New("nothing to scan")

func ScanAction(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg, err := configFromContext(c)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	if cfg.Dir == "" {
		cfg.Dir, err = promptDir(c.App.Reader, c.App.Writer)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	rep, err := run(c.Context, logger, cfg, c.App.Writer)
	switch {
	case errors.Is(err, errNothingToScan):
		return nil
	case errors.Is(err, discovery.ErrInvalidDirectory):
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	case err != nil:
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	failed := len(rep.FailedFiles())
	if failed > 0 && failed == len(rep.Files) {
		return cli.Exit("", 2)
	}
	if failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

// run discovers files, runs both branches, then writes every requested
// artifact. Writing artifacts is best effort.
func run(ctx context.Context, logger *slog.Logger, cfg *models.ScanConfig, out io.Writer) (*models.Report, error) {
	files, err := discovery.Discover(cfg.Dir, cfg.Extensions, cfg.Recursive)
	if errors.Is(err, discovery.ErrNoFiles) {
		fmt.Fprintf(out, "No log files found (%s) in %s\n", strings.Join(cfg.Extensions, " / "), cfg.Dir)
		return nil, errNothingToScan
	}
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(out, "\nFound %d log files.\nProcessing...\n", len(files))

	metrics.Register()
	keywords := models.NewKeywordSet(cfg.Keywords)
	r := runner.New(logger, runner.Config{
		MaxWorkers:      cfg.WorkerCount,
		ShutdownTimeout: cfg.Timeout(),
	})

	rep, err := r.Run(ctx, files, keywords)
	if err != nil {
		return rep, fmt.Errorf("scan failed: %w", err)
	}

	report.Print(out, rep)

	s := &storage.Storage{}
	if s.HasFile(cfg.OutputPath) {
		logger.Info("Overwriting previous summary", "path", cfg.OutputPath,
			"changed", report.SummaryChanged(cfg.OutputPath, rep, s))
	}
	if err := report.WriteSummary(cfg.OutputPath, rep, s); err != nil {
		logger.Error("Failed to write summary file", "path", cfg.OutputPath, "error", err)
	} else {
		fmt.Fprintf(out, "\nResults saved to %s\n", cfg.OutputPath)
	}

	if cfg.SummaryYAMLPath != "" {
		if err := report.WriteYAML(cfg.SummaryYAMLPath, rep, s); err != nil {
			logger.Error("Failed to write YAML summary", "path", cfg.SummaryYAMLPath, "error", err)
		} else if stats, err := s.GetFileStats(cfg.SummaryYAMLPath); err == nil {
			logger.Info("YAML summary written", "path", cfg.SummaryYAMLPath, "size_bytes", stats.SizeBytes)
		}
	}

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Error("Failed to write metrics file", "path", cfg.MetricsFile, "error", err)
		}
	}

	if !cfg.NoHistory {
		recordHistory(logger, cfg, rep, out)
	}

	return rep, nil
}

func recordHistory(logger *slog.Logger, cfg *models.ScanConfig, rep *models.Report, out io.Writer) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("Failed to open history database", "error", err)
		return
	}
	defer database.Close()

	runID, err := database.InsertRun(cfg.Dir, rep)
	if err != nil {
		logger.Warn("Failed to record run", "run_id", rep.RunID, "error", err)
		return
	}
	logger.Info("Run recorded", "run_id", runID, "db", database.Path())
	fmt.Fprintf(out, "Run recorded as #%d (kwscan history show %d)\n", runID, runID)
}

// promptDir asks for the log directory on the command line.
func promptDir(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter log folder path: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read folder path: %w", err)
	}
	dir := strings.TrimSpace(line)
	if dir == "" {
		return "", fmt.Errorf("no folder path given")
	}
	return dir, nil
}

// configFromContext loads --config when given and lets explicitly set flags
// override it.
func configFromContext(c *cli.Context) (*models.ScanConfig, error) {
	cfg := &models.ScanConfig{}
	if path := c.String("config"); path != "" {
		loaded, err := models.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.NArg() > 0 {
		cfg.Dir = c.Args().First()
	}
	if c.IsSet("dir") {
		cfg.Dir = c.String("dir")
	}
	if c.IsSet("keywords") {
		cfg.Keywords = splitList(c.String("keywords"))
	}
	if c.IsSet("extensions") {
		cfg.Extensions = splitList(c.String("extensions"))
	}
	if c.IsSet("recursive") {
		cfg.Recursive = c.Bool("recursive")
	}
	if c.IsSet("workers") {
		cfg.WorkerCount = c.Int("workers")
	}
	if c.IsSet("shutdown-timeout") {
		timeout := c.Duration("shutdown-timeout")
		cfg.ShutdownTimeout = &timeout
	}
	if c.IsSet("output") {
		cfg.OutputPath = c.String("output")
	}
	if c.IsSet("summary-yaml") {
		cfg.SummaryYAMLPath = c.String("summary-yaml")
	}
	if c.IsSet("metrics-file") {
		cfg.MetricsFile = c.String("metrics-file")
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("no-history") {
		cfg.NoHistory = c.Bool("no-history")
	}
	return cfg, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
