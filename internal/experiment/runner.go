// Package experiment drives one or many simulation runs and records their
// aggregated results.
package experiment

import (
	"context"
	"log"

	"github.com/pkg/errors"
	"gopkg.in/op/go-logging.v1"

	"manetperf/internal/flowstats"
	"manetperf/internal/instrument"
	"manetperf/internal/metrics"
	"manetperf/internal/model"
	"manetperf/internal/store"
)

// Runner executes experiments on a Backend and records each result row.
// History and Metrics are optional.
type Runner struct {
	Backend         Backend
	ResultPath      string
	History         *store.History
	Metrics         *instrument.Metrics
	MetricsTextfile string
	Printer         *log.Logger
	Log             *logging.Logger
}

// Run executes one experiment and records its result.
func (r *Runner) Run(ctx context.Context, params model.ExperimentConfig) (model.ResultRow, error) {
	r.Log.Noticef("running %d nodes, %d pkt/s, %g m/s on %s", params.Nodes, params.PacketRate, params.NodeSpeed, r.Backend.Name())

	flows, err := r.Backend.Execute(ctx, params)
	if err != nil {
		return model.ResultRow{}, errors.Wrapf(err, "%s backend", r.Backend.Name())
	}
	return r.Record(params, r.Backend.Name(), flows)
}

// Record aggregates flows, prints the summary and appends the row to every
// configured sink. The summary is printed even if persisting fails.
func (r *Runner) Record(params model.ExperimentConfig, source string, flows map[model.FlowID]model.FlowRecord) (model.ResultRow, error) {
	m := flowstats.Aggregate(flowstats.Snapshot(flows), params.Duration)
	row := model.NewResultRow(params, m)
	r.Log.Debugf("%d flows, %d sent, %d received, %d dropped", len(flows), m.SentPackets, m.ReceivedPackets, m.DroppedPackets)

	if r.Printer != nil {
		printResult(r.Printer, row)
	}

	if err := metrics.AppendRow(r.ResultPath, row); err != nil {
		return row, err
	}
	r.Log.Infof("appended result to %s", r.ResultPath)

	if r.History != nil {
		run, err := r.History.Put(store.Run{
			Backend:  source,
			Seed:     params.Seed,
			Duration: params.Duration,
			Row:      row,
		})
		if err != nil {
			return row, err
		}
		r.Log.Debugf("stored run #%d", run.Seq)
	}

	if r.Metrics != nil {
		r.Metrics.Observe(row)
		if r.MetricsTextfile != "" {
			if err := r.Metrics.WriteTextfile(r.MetricsTextfile); err != nil {
				return row, err
			}
		}
	}

	return row, nil
}
