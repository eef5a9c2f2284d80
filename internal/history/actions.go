package history

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	dbpkg "github.com/dtnitsch/kwscan/pkg/db"
)

var Flags = []cli.Flag{
	&cli.StringFlag{
		Name:    "db",
		Usage:   "run history database (default: kwscan.db next to the binary)",
		EnvVars: []string{"KWSCAN_DB"},
	},
}

// RunsAction lists recorded runs, newest first.
func RunsAction(c *cli.Context) error {
	database, err := dbpkg.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	out := c.App.Writer
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}

	fmt.Fprintf(out, "%-6s %-20s %-7s %-7s %-9s %-11s %-12s %-14s %s\n",
		"ID", "Created", "Files", "Failed", "Workers", "Parallel", "Sequential", "Most Frequent", "Directory")
	fmt.Fprintln(out, strings.Repeat("-", 120))

	for _, r := range runs {
		fmt.Fprintf(out, "%-6d %-20s %-7d %-7d %-9d %-11s %-12s %-14s %s\n",
			r.RunID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.FileCount,
			r.FailedCount,
			r.WorkerCount,
			fmt.Sprintf("%dms", r.ParallelMS),
			fmt.Sprintf("%dms", r.SequentialMS),
			r.MostFrequent,
			r.Directory,
		)
	}

	fmt.Fprintf(out, "\nTotal: %d runs\n", len(runs))
	fmt.Fprintf(out, "\nTip: Use 'kwscan history show <id>' to see details\n")
	return nil
}

// ShowAction prints the totals and file outcomes of one run, the latest
// when no ID is given.
func ShowAction(c *cli.Context) error {
	database, err := dbpkg.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runID, err := runIDOrLatest(c, database)
	if err != nil {
		return err
	}

	run, err := database.GetRunByID(runID)
	if err != nil {
		return err
	}
	totals, err := database.GetRunKeywordCounts(runID)
	if err != nil {
		return err
	}
	files, err := database.GetRunFiles(runID)
	if err != nil {
		return err
	}

	out := c.App.Writer
	fmt.Fprintf(out, "Run %d (%s)\n", run.RunID, run.RunUUID)
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintf(out, "Created:     %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Directory:   %s\n", run.Directory)
	fmt.Fprintf(out, "Files:       %d total (%d failed), %d lines\n", run.FileCount, run.FailedCount, run.TotalLines)
	fmt.Fprintf(out, "Workers:     %d\n", run.WorkerCount)
	fmt.Fprintf(out, "Parallel:    %d ms\n", run.ParallelMS)
	fmt.Fprintf(out, "Sequential:  %d ms\n", run.SequentialMS)
	fmt.Fprintf(out, "Most frequent: %s\n", run.MostFrequent)
	if !run.TotalsMatch {
		fmt.Fprintln(out, "Note: parallel and sequential totals differed")
	}

	fmt.Fprintf(out, "\nKeywords (%d):\n", len(totals))
	fmt.Fprintln(out, strings.Repeat("-", 60))
	for _, k := range totals {
		if k.ParallelCount == k.SequentialCount {
			fmt.Fprintf(out, "  %-20s %d\n", k.Keyword, k.ParallelCount)
		} else {
			fmt.Fprintf(out, "  %-20s %d (sequential %d)\n", k.Keyword, k.ParallelCount, k.SequentialCount)
		}
	}

	var failed int
	for _, f := range files {
		if f.Failed() {
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(out, "\nFailed files (%d):\n", failed)
		fmt.Fprintln(out, strings.Repeat("-", 60))
		for _, f := range files {
			if f.Failed() {
				fmt.Fprintf(out, "  [%s] %s\n", f.ErrorType, f.Path)
				fmt.Fprintf(out, "    %s\n", f.ErrorMessage)
			}
		}
	}
	return nil
}

// DeleteAction removes one run with its keyword totals and file outcomes.
func DeleteAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("run ID required")
	}
	runID, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run ID: %s", c.Args().First())
	}

	database, err := dbpkg.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := database.DeleteRun(runID); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Deleted run %d\n", runID)
	return nil
}

// runIDOrLatest returns the run ID from args, or the latest run if not provided
func runIDOrLatest(c *cli.Context, database *dbpkg.DB) (int64, error) {
	if c.NArg() == 0 {
		runs, err := database.ListRuns(1)
		if err != nil {
			return 0, fmt.Errorf("failed to get latest run: %w", err)
		}
		if len(runs) == 0 {
			return 0, fmt.Errorf("no runs found. Run 'kwscan scan <dir>' first")
		}
		return runs[0].RunID, nil
	}

	runID, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid run ID: %s", c.Args().First())
	}
	return runID, nil
}
