package scan

import (
	"runtime"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/kwscan/models"
)

// Flags are the options of the scan command.
var Flags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "YAML config file; flags override its values",
		EnvVars: []string{"KWSCAN_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "dir",
		Aliases: []string{"d"},
		Usage:   "directory holding the log files (or pass it as argument)",
	},
	&cli.StringFlag{
		Name:    "keywords",
		Aliases: []string{"k"},
		Usage:   "comma-separated keywords, matched case-insensitively",
		Value:   strings.Join(models.DefaultKeywords, ","),
		EnvVars: []string{"KWSCAN_KEYWORDS"},
	},
	&cli.StringFlag{
		Name:  "extensions",
		Usage: "comma-separated file extensions to scan",
		Value: strings.Join(models.DefaultExtensions, ","),
	},
	&cli.BoolFlag{
		Name:  "recursive",
		Usage: "descend into subdirectories",
	},
	&cli.IntFlag{
		Name:    "workers",
		Aliases: []string{"w"},
		Usage:   "maximum parallel workers",
		Value:   runtime.NumCPU(),
		EnvVars: []string{"KWSCAN_WORKERS"},
	},
	&cli.DurationFlag{
		Name:  "shutdown-timeout",
		Usage: "how long to wait for running workers before stopping them (0 waits forever)",
		Value: models.DefaultShutdownTimeout,
	},
	&cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "plain-text summary file",
		Value:   models.DefaultOutputPath,
	},
	&cli.StringFlag{
		Name:  "summary-yaml",
		Usage: "also write a YAML summary to this path",
	},
	&cli.StringFlag{
		Name:    "metrics-file",
		Usage:   "write Prometheus metrics in textfile format to this path",
		EnvVars: []string{"KWSCAN_METRICS_FILE"},
	},
	&cli.StringFlag{
		Name:    "db",
		Usage:   "run history database (default: kwscan.db next to the binary)",
		EnvVars: []string{"KWSCAN_DB"},
	},
	&cli.BoolFlag{
		Name:  "no-history",
		Usage: "do not record the run in the history database",
	},
	&cli.BoolFlag{
		Name:    "quiet",
		Aliases: []string{"q"},
		Usage:   "only log errors",
	},
}
