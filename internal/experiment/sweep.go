package experiment

import (
	"context"
	"math"

	"github.com/pkg/errors"

	cartesian "github.com/schwarmco/go-cartesian-product"

	"manetperf/internal/model"
)

// Plan lists the parameter values of a sweep. An empty list keeps the base
// value. Repeat runs every point that many times with consecutive seeds.
type Plan struct {
	Nodes       []uint32
	PacketRates []uint32
	Speeds      []float64
	Repeat      int
}

// Validate rejects speeds no run could use and a negative repeat count.
func (p Plan) Validate() error {
	for _, s := range p.Speeds {
		if s < 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return errors.Errorf("invalid node speed %g in sweep", s)
		}
	}
	if p.Repeat < 0 {
		return errors.Errorf("invalid repeat count %d", p.Repeat)
	}
	return nil
}

// Points expands the plan over base in nodes, packet rate, speed, repeat
// order.
func (p Plan) Points(base model.ExperimentConfig) []model.ExperimentConfig {
	nodes := []interface{}{}
	for _, n := range p.Nodes {
		nodes = append(nodes, n)
	}
	if len(nodes) == 0 {
		nodes = append(nodes, base.Nodes)
	}

	rates := []interface{}{}
	for _, r := range p.PacketRates {
		rates = append(rates, r)
	}
	if len(rates) == 0 {
		rates = append(rates, base.PacketRate)
	}

	speeds := []interface{}{}
	for _, s := range p.Speeds {
		speeds = append(speeds, s)
	}
	if len(speeds) == 0 {
		speeds = append(speeds, base.NodeSpeed)
	}

	repeat := p.Repeat
	if repeat < 1 {
		repeat = 1
	}
	reps := make([]interface{}, repeat)
	for i := range reps {
		reps[i] = i
	}

	var points []model.ExperimentConfig
	for product := range cartesian.Iter(nodes, rates, speeds, reps) {
		cfg := base
		cfg.Nodes = product[0].(uint32)
		cfg.PacketRate = product[1].(uint32)
		cfg.NodeSpeed = product[2].(float64)
		cfg.Seed = base.Seed + int64(product[3].(int))
		points = append(points, cfg)
	}
	return points
}

// Sweep runs every point of plan in order. It stops at the first failure and
// returns the rows recorded so far.
func (r *Runner) Sweep(ctx context.Context, base model.ExperimentConfig, plan Plan) ([]model.ResultRow, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	points := plan.Points(base)
	r.Log.Noticef("sweeping %d runs", len(points))

	rows := make([]model.ResultRow, 0, len(points))
	for i, params := range points {
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		r.Log.Infof("run %d/%d", i+1, len(points))
		row, err := r.Run(ctx, params)
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
