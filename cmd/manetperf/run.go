package main

import (
	"github.com/spf13/cobra"
)

func newRunCommand(opts *globalOptions) *cobra.Command {
	flags := &experimentFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one experiment and append its result",
		Example: `  # 20 nodes, 100 pkt/s, 5 m/s
  manetperf run

  # Stationary nodes, result in a custom file
  manetperf run --nodes 50 --node-speed 0 --csv speed0.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(opts, cmd.Flags(), flags)
			if err != nil {
				return err
			}
			s, err := newSession(cfg, true)
			if err != nil {
				return err
			}
			defer s.Close()

			_, err = s.runner.Run(cmd.Context(), cfg.ExperimentParams())
			return err
		},
	}
	flags.register(cmd.Flags())
	return cmd
}
