package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/kwscan/internal/history"
	"github.com/dtnitsch/kwscan/internal/scan"
	"github.com/dtnitsch/kwscan/pkg/help"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "kwscan",
		Usage: "Count keyword lines across a folder of log files, in parallel and sequentially",
		Commands: []*cli.Command{
			{
				Name:      "scan",
				Usage:     "Scan a directory and compare parallel against sequential throughput",
				ArgsUsage: "[DIR]",
				Flags:     scan.Flags,
				Action:    scan.ScanAction,
			},
			{
				Name:  "history",
				Usage: "List recorded runs",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
						Usage: "Maximum number of runs to show (0 for all)",
					},
				}, history.Flags...),
				Action: history.RunsAction,
				Subcommands: []*cli.Command{
					{
						Name:      "show",
						Usage:     "Show totals and failed files of a run (latest when no ID)",
						ArgsUsage: "[ID]",
						Flags:     history.Flags,
						Action:    history.ShowAction,
					},
					{
						Name:      "delete",
						Usage:     "Remove a run from the history",
						ArgsUsage: "ID",
						Flags:     history.Flags,
						Action:    history.DeleteAction,
					},
				},
			},
			{
				Name:  "quickstart",
				Usage: "Print a YAML cheat sheet of commands and config keys",
				Action: func(c *cli.Context) error {
					fmt.Fprint(c.App.Writer, help.QuickstartYAML)
					return nil
				},
			},
		},
	}
}
