package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/carlmjohnson/versioninfo"
	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signalContext()
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fatal(err)
	}
}

type globalOptions struct {
	configPath string
	logLevel   string
	logFile    string
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "manetperf",
		Short: "MANET routing experiment driver",
		Long: `manetperf runs mobile ad-hoc network experiments (random waypoint mobility,
constant bit rate UDP traffic) and appends throughput, delivery ratio, drop
ratio and end-to-end delay to a CSV result file.`,
		Version:       versioninfo.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML or TOML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "logging level (DEBUG, INFO, NOTICE, WARNING, ERROR, CRITICAL)")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")

	cmd.AddCommand(
		newRunCommand(opts),
		newSweepCommand(opts),
		newAggregateCommand(opts),
		newStatsCommand(opts),
		newHistoryCommand(opts),
		newConfigCommand(),
	)
	return cmd
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func fatal(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
