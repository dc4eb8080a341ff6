package main

import (
	"math"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"manetperf/internal/experiment"
)

func newSweepCommand(opts *globalOptions) *cobra.Command {
	flags := &experimentFlags{}
	var (
		nodes  []uint
		rates  []uint
		speeds []float64
		repeat int
	)

	cmd := &cobra.Command{
		Use:     "sweep",
		Short:   "Run every combination of the listed parameters",
		Example: `  manetperf sweep --nodes-list 10,20,50 --speeds 0,5,10 --repeat 3`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(opts, cmd.Flags(), flags)
			if err != nil {
				return err
			}
			nodeCounts, err := toUint32("nodes-list", nodes)
			if err != nil {
				return err
			}
			packetRates, err := toUint32("packet-rates", rates)
			if err != nil {
				return err
			}
			plan := experiment.Plan{
				Nodes:       nodeCounts,
				PacketRates: packetRates,
				Speeds:      speeds,
				Repeat:      repeat,
			}
			if err := plan.Validate(); err != nil {
				return err
			}

			s, err := newSession(cfg, true)
			if err != nil {
				return err
			}
			defer s.Close()
			rows, err := s.runner.Sweep(cmd.Context(), cfg.ExperimentParams(), plan)
			s.logs.GetLogger("sweep").Noticef("%d runs recorded in %s", len(rows), cfg.Output.ResultPath)
			return err
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().UintSliceVar(&nodes, "nodes-list", nil, "node counts to sweep")
	cmd.Flags().UintSliceVar(&rates, "packet-rates", nil, "packet rates to sweep")
	cmd.Flags().Float64SliceVar(&speeds, "speeds", nil, "node speeds to sweep")
	cmd.Flags().IntVar(&repeat, "repeat", 1, "runs per parameter point, with consecutive seeds")
	return cmd
}

func toUint32(flag string, values []uint) ([]uint32, error) {
	out := make([]uint32, 0, len(values))
	for _, v := range values {
		if uint64(v) > math.MaxUint32 {
			return nil, errors.Errorf("--%s: %d is out of range", flag, v)
		}
		out = append(out, uint32(v))
	}
	return out, nil
}
