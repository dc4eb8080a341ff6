package metrics

import (
	"testing"

	"manetperf/internal/model"
)

func TestSummarize_GroupsByParameters(t *testing.T) {
	t.Parallel()

	rows := []model.ResultRow{
		{Nodes: 20, PacketRate: 100, NodeSpeed: 5, SentPackets: 100, Throughput: 10, DeliveryRatio: 0.5, DropRatio: 0.5, AvgDelay: 20},
		{Nodes: 10, PacketRate: 100, NodeSpeed: 5, SentPackets: 50, Throughput: 4, DeliveryRatio: 1, DropRatio: 0, AvgDelay: 2},
		{Nodes: 20, PacketRate: 100, NodeSpeed: 5, SentPackets: 100, Throughput: 30, DeliveryRatio: 1, DropRatio: 0, AvgDelay: 10},
	}

	s := Summarize(rows)
	if len(s) != 2 {
		t.Fatalf("groups=%d", len(s))
	}
	if s[0].Nodes != 10 || s[1].Nodes != 20 {
		t.Fatalf("order=%d,%d", s[0].Nodes, s[1].Nodes)
	}

	g := s[1]
	if g.Runs != 2 || g.TotalSent != 200 {
		t.Fatalf("runs=%d sent=%d", g.Runs, g.TotalSent)
	}
	if g.AvgThroughput != 20 || g.MinThroughput != 10 || g.MaxThroughput != 30 {
		t.Fatalf("throughput avg/min/max=%.2f/%.2f/%.2f", g.AvgThroughput, g.MinThroughput, g.MaxThroughput)
	}
	if g.AvgDeliveryRatio != 0.75 || g.AvgDropRatio != 0.25 {
		t.Fatalf("ratios=%.2f/%.2f", g.AvgDeliveryRatio, g.AvgDropRatio)
	}
	if g.AvgDelay != 15 || g.P95Delay != 20 {
		t.Fatalf("delay avg/p95=%.2f/%.2f", g.AvgDelay, g.P95Delay)
	}
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	if s := Summarize(nil); len(s) != 0 {
		t.Fatalf("groups=%d", len(s))
	}
}

func TestPercentile_Edges(t *testing.T) {
	t.Parallel()

	values := []float64{1, 2, 3, 4}
	if got := percentile(values, 0); got != 1 {
		t.Fatalf("p0=%v", got)
	}
	if got := percentile(values, 1); got != 4 {
		t.Fatalf("p100=%v", got)
	}
	if got := percentile(nil, 0.5); got != 0 {
		t.Fatalf("empty=%v", got)
	}
}
