package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"manetperf/internal/metrics"
	"manetperf/internal/store"
)

func newHistoryCommand(opts *globalOptions) *cobra.Command {
	var (
		path  string
		asCSV bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List runs stored in the run history database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if path == "" {
				path = cfg.Output.HistoryPath
			}
			if path == "" {
				return errors.New("history path required (--path or output.history_path)")
			}

			h, err := store.Open(path)
			if err != nil {
				return err
			}
			defer h.Close()

			runs, err := h.List()
			if err != nil {
				return err
			}

			if asCSV {
				rows, err := h.Rows()
				if err != nil {
					return err
				}
				return metrics.WriteCSV(os.Stdout, rows)
			}

			for _, r := range runs {
				fmt.Fprintf(os.Stdout, "#%d %s backend=%s seed=%d duration=%s nodes=%d rate=%d speed=%g pdr=%.4f delay=%.3fms\n",
					r.Seq, r.RecordedAt.Format(time.RFC3339), r.Backend, r.Seed, r.Duration,
					r.Row.Nodes, r.Row.PacketRate, r.Row.NodeSpeed, r.Row.DeliveryRatio, r.Row.AvgDelay)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "run history database (default from config)")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "print the stored rows as CSV")
	return cmd
}
