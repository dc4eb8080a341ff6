package flowstats

import (
	"math"
	"testing"
	"time"

	"gotest.tools/v3/assert"

	"manetperf/internal/model"
)

const testDuration = 20 * time.Second

func TestAggregate_AllDelivered(t *testing.T) {
	flows := map[model.FlowID]model.FlowRecord{
		1: {TxPackets: 10, RxPackets: 10, RxBytes: 640, DelaySum: time.Second},
	}

	m := Aggregate(flows, testDuration)

	assert.Equal(t, m.SentPackets, uint64(10))
	assert.Equal(t, m.ReceivedPackets, uint64(10))
	assert.Equal(t, m.DroppedPackets, int64(0))
	assert.Equal(t, m.DeliveryRatio, 1.0)
	assert.Equal(t, m.DropRatio, 0.0)
	assert.Assert(t, math.Abs(m.ThroughputKbps-0.256) < 1e-12, "throughput=%v", m.ThroughputKbps)
	assert.Assert(t, math.Abs(m.AvgDelayMs-100) < 1e-9, "delay=%v", m.AvgDelayMs)
}

func TestAggregate_NothingReceived(t *testing.T) {
	flows := map[model.FlowID]model.FlowRecord{
		1: {TxPackets: 10},
	}

	m := Aggregate(flows, testDuration)

	assert.Equal(t, m.DeliveryRatio, 0.0)
	assert.Equal(t, m.DropRatio, 1.0)
	assert.Equal(t, m.ThroughputKbps, 0.0)
	assert.Equal(t, m.AvgDelayMs, 0.0)
	assert.Equal(t, m.DroppedPackets, int64(10))
}

func TestAggregate_Empty(t *testing.T) {
	for _, flows := range []map[model.FlowID]model.FlowRecord{nil, {}} {
		m := Aggregate(flows, testDuration)
		assert.DeepEqual(t, m, model.ExperimentMetrics{})
	}
}

func TestAggregate_ZeroDurationIsGuarded(t *testing.T) {
	flows := map[model.FlowID]model.FlowRecord{
		1: {TxPackets: 4, RxPackets: 4, RxBytes: 368, DelaySum: 4 * time.Millisecond},
	}

	m := Aggregate(flows, 0)

	assert.Equal(t, m.ThroughputKbps, 0.0)
	assert.Equal(t, m.DeliveryRatio, 1.0)
	assert.Assert(t, math.Abs(m.AvgDelayMs-1) < 1e-9)
}

func TestAggregate_ReceivedWithoutSent(t *testing.T) {
	// Inconsistent input: only the byte-based throughput may be non-zero.
	flows := map[model.FlowID]model.FlowRecord{
		7: {RxPackets: 3, RxBytes: 300, DelaySum: 30 * time.Millisecond},
	}

	m := Aggregate(flows, testDuration)

	assert.Equal(t, m.DeliveryRatio, 0.0)
	assert.Equal(t, m.DropRatio, 0.0)
	assert.Assert(t, m.ThroughputKbps > 0)
	assert.Assert(t, !math.IsNaN(m.AvgDelayMs) && !math.IsInf(m.AvgDelayMs, 0))
}

func TestAggregate_DelayIgnoresFlowsWithoutReceptions(t *testing.T) {
	flows := map[model.FlowID]model.FlowRecord{
		1: {TxPackets: 5, RxPackets: 5, RxBytes: 460, DelaySum: 50 * time.Millisecond},
		// A delay sum without receptions must not contribute.
		2: {TxPackets: 5, RxPackets: 0, DelaySum: time.Hour},
	}

	m := Aggregate(flows, testDuration)

	assert.Assert(t, math.Abs(m.AvgDelayMs-10) < 1e-9, "delay=%v", m.AvgDelayMs)
	assert.Equal(t, m.DeliveryRatio, 0.5)
	assert.Equal(t, m.DropRatio, 0.5)
}

func TestAggregate_RatiosSumToOne(t *testing.T) {
	cases := []map[model.FlowID]model.FlowRecord{
		{1: {TxPackets: 1, RxPackets: 0}},
		{1: {TxPackets: 3, RxPackets: 1}, 2: {TxPackets: 7, RxPackets: 7}},
		{1: {TxPackets: 1899, RxPackets: 1203}, 2: {TxPackets: 1899, RxPackets: 17}, 3: {TxPackets: 1899, RxPackets: 1899}},
		// rx > tx on one flow is still summed per flow.
		{1: {TxPackets: 2, RxPackets: 5}, 2: {TxPackets: 10, RxPackets: 1}},
	}

	for i, flows := range cases {
		m := Aggregate(flows, testDuration)
		assert.Assert(t, m.SentPackets > 0)
		sum := m.DeliveryRatio + m.DropRatio
		assert.Assert(t, math.Abs(sum-1) < 1e-12, "case %d: sum=%v", i, sum)
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	flows := map[model.FlowID]model.FlowRecord{
		1: {TxPackets: 100, RxPackets: 91, RxBytes: 8372, DelaySum: 912 * time.Millisecond},
		2: {TxPackets: 100, RxPackets: 12, RxBytes: 1104, DelaySum: 3 * time.Second},
		3: {TxPackets: 100},
	}

	first := Aggregate(flows, testDuration)
	second := Aggregate(flows, testDuration)

	assert.DeepEqual(t, first, second)
}

func TestAggregate_PerFlowThroughputSum(t *testing.T) {
	flows := map[model.FlowID]model.FlowRecord{
		1: {TxPackets: 10, RxPackets: 10, RxBytes: 1000},
		2: {TxPackets: 10, RxPackets: 10, RxBytes: 3000},
	}

	m := Aggregate(flows, 10*time.Second)

	// (1000*8)/(10*1000) + (3000*8)/(10*1000)
	assert.Assert(t, math.Abs(m.ThroughputKbps-3.2) < 1e-12, "throughput=%v", m.ThroughputKbps)
}

func TestSnapshot_IsIndependent(t *testing.T) {
	flows := map[model.FlowID]model.FlowRecord{1: {TxPackets: 1}}

	snap := Snapshot(flows)
	flows[1] = model.FlowRecord{TxPackets: 99}
	flows[2] = model.FlowRecord{TxPackets: 1}

	assert.Equal(t, len(snap), 1)
	assert.Equal(t, snap[1].TxPackets, uint64(1))
}
