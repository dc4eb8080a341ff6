package metrics

import (
	"math"
	"sort"

	"manetperf/internal/model"
)

// GroupKey identifies the parameter point a row was produced at.
type GroupKey struct {
	Nodes      uint32
	PacketRate uint32
	NodeSpeed  float64
}

// Summary aggregates repeated runs at one parameter point.
type Summary struct {
	GroupKey
	Runs             int
	AvgThroughput    float64
	MinThroughput    float64
	MaxThroughput    float64
	AvgDeliveryRatio float64
	AvgDropRatio     float64
	AvgDelay         float64
	P95Delay         float64
	TotalSent        uint64
}

// Summarize groups rows by (Nodes, PacketRate, NodeSpeed) and averages each
// metric. Groups are returned in ascending key order.
func Summarize(rows []model.ResultRow) []Summary {
	groups := make(map[GroupKey][]model.ResultRow)
	for _, r := range rows {
		k := GroupKey{Nodes: r.Nodes, PacketRate: r.PacketRate, NodeSpeed: r.NodeSpeed}
		groups[k] = append(groups[k], r)
	}

	out := make([]Summary, 0, len(groups))
	for k, items := range groups {
		out = append(out, summarizeGroup(k, items))
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].GroupKey, out[j].GroupKey
		if a.Nodes != b.Nodes {
			return a.Nodes < b.Nodes
		}
		if a.PacketRate != b.PacketRate {
			return a.PacketRate < b.PacketRate
		}
		return a.NodeSpeed < b.NodeSpeed
	})
	return out
}

func summarizeGroup(k GroupKey, items []model.ResultRow) Summary {
	delays := make([]float64, 0, len(items))
	var sumThroughput, sumDelivery, sumDrop, sumDelay float64
	var sent uint64
	minT := math.MaxFloat64
	maxT := 0.0

	for _, r := range items {
		delays = append(delays, r.AvgDelay)
		sumThroughput += r.Throughput
		sumDelivery += r.DeliveryRatio
		sumDrop += r.DropRatio
		sumDelay += r.AvgDelay
		sent += r.SentPackets
		if r.Throughput < minT {
			minT = r.Throughput
		}
		if r.Throughput > maxT {
			maxT = r.Throughput
		}
	}

	sort.Float64s(delays)
	count := float64(len(items))

	return Summary{
		GroupKey:         k,
		Runs:             len(items),
		AvgThroughput:    sumThroughput / count,
		MinThroughput:    minT,
		MaxThroughput:    maxT,
		AvgDeliveryRatio: sumDelivery / count,
		AvgDropRatio:     sumDrop / count,
		AvgDelay:         sumDelay / count,
		P95Delay:         percentile(delays, 0.95),
		TotalSent:        sent,
	}
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if p <= 0 {
		return values[0]
	}
	if p >= 1 {
		return values[len(values)-1]
	}
	idx := int(math.Ceil(p*float64(len(values)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(values) {
		idx = len(values) - 1
	}
	return values[idx]
}
