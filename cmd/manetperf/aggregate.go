package main

import (
	"github.com/spf13/cobra"

	"manetperf/internal/flowstats"
)

func newAggregateCommand(opts *globalOptions) *cobra.Command {
	flags := &experimentFlags{}

	cmd := &cobra.Command{
		Use:   "aggregate <flowmon.xml>",
		Short: "Aggregate an existing FlowMonitor dump and append the result",
		Long: `aggregate reads an ns-3 FlowMonitor XML file produced elsewhere and records it
as if it had been run here. The experiment flags describe the run that
produced the file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(opts, cmd.Flags(), flags)
			if err != nil {
				return err
			}
			s, err := newSession(cfg, false)
			if err != nil {
				return err
			}
			defer s.Close()

			flows, err := flowstats.ReadFlowMonitorFile(args[0])
			if err != nil {
				return err
			}
			_, err = s.runner.Record(cfg.ExperimentParams(), "flowmon", flows)
			return err
		},
	}
	flags.register(cmd.Flags())
	return cmd
}
