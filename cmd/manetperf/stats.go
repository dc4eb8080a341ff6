package main

import (
	stdlog "log"
	"os"

	"github.com/spf13/cobra"

	"manetperf/internal/experiment"
	"manetperf/internal/metrics"
	"manetperf/internal/model"
	"manetperf/internal/store"
)

func newStatsCommand(opts *globalOptions) *cobra.Command {
	var (
		path        string
		fromHistory string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize recorded results per parameter point",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if path == "" {
				path = cfg.Output.ResultPath
			}

			var rows []model.ResultRow
			if fromHistory != "" {
				h, err := store.Open(fromHistory)
				if err != nil {
					return err
				}
				defer h.Close()
				if rows, err = h.Rows(); err != nil {
					return err
				}
			} else if rows, err = metrics.ReadCSV(path); err != nil {
				return err
			}

			experiment.PrintSummaries(stdlog.New(os.Stdout, "", 0), metrics.Summarize(rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "csv", "", "result CSV file (default from config)")
	cmd.Flags().StringVar(&fromHistory, "from-history", "", "read rows from this run history database instead")
	return cmd
}
