// Package flowstats reduces per-flow counters into experiment metrics.
package flowstats

import (
	"time"

	"manetperf/internal/model"
)

// Snapshot copies flows so later mutation by an engine cannot leak into a
// reduction already in progress.
func Snapshot(flows map[model.FlowID]model.FlowRecord) map[model.FlowID]model.FlowRecord {
	out := make(map[model.FlowID]model.FlowRecord, len(flows))
	for id, rec := range flows {
		out[id] = rec
	}
	return out
}

// Aggregate computes throughput, delivery ratio, drop ratio and average delay
// over every flow. Each ratio is zero when its denominator is zero, so the
// result never contains NaN or Inf.
func Aggregate(flows map[model.FlowID]model.FlowRecord, duration time.Duration) model.ExperimentMetrics {
	var (
		sent, received uint64
		dropped        int64
		throughput     float64
		totalDelay     float64
		delaySamples   uint64
	)

	seconds := duration.Seconds()
	for _, flow := range flows {
		sent += flow.TxPackets
		received += flow.RxPackets
		dropped += int64(flow.TxPackets) - int64(flow.RxPackets)

		if seconds > 0 {
			throughput += float64(flow.RxBytes) * 8 / (seconds * 1e3)
		}
		if flow.RxPackets > 0 {
			totalDelay += flow.DelaySum.Seconds()
			delaySamples += flow.RxPackets
		}
	}

	m := model.ExperimentMetrics{
		SentPackets:     sent,
		ReceivedPackets: received,
		DroppedPackets:  dropped,
		ThroughputKbps:  throughput,
	}
	if delaySamples > 0 {
		m.AvgDelayMs = totalDelay / float64(delaySamples) * 1e3
	}
	if sent > 0 {
		m.DeliveryRatio = float64(received) / float64(sent)
		m.DropRatio = float64(dropped) / float64(sent)
	}
	return m
}
