package model

import (
	"fmt"
	"net/netip"
	"time"
)

// ExperimentConfig is the variable part of one simulation run.
type ExperimentConfig struct {
	Nodes      uint32
	PacketRate uint32 // packets per second per sender
	NodeSpeed  float64
	Duration   time.Duration
	Seed       int64
}

// FlowID identifies a flow within one run.
type FlowID uint32

// FlowKey is the 5-tuple a flow was classified by.
type FlowKey struct {
	Src      netip.Addr
	Dst      netip.Addr
	SrcPort  uint16
	DstPort  uint16
	Protocol uint8
}

func (k FlowKey) String() string {
	return fmt.Sprintf("%s:%d -> %s:%d/%d", k.Src, k.SrcPort, k.Dst, k.DstPort, k.Protocol)
}

// FlowRecord holds the counters observed for one flow over a run.
type FlowRecord struct {
	Key         FlowKey
	TxPackets   uint64
	RxPackets   uint64
	LostPackets uint64
	TxBytes     uint64
	RxBytes     uint64
	DelaySum    time.Duration // sum of end-to-end delays of received packets
}

// ExperimentMetrics is the experiment-level reduction of all flows.
type ExperimentMetrics struct {
	SentPackets     uint64
	ReceivedPackets uint64
	DroppedPackets  int64
	ThroughputKbps  float64
	DeliveryRatio   float64
	DropRatio       float64
	AvgDelayMs      float64
}

// ResultRow is one persisted line of the result file.
type ResultRow struct {
	Nodes         uint32  `cbor:"1,keyasint"`
	PacketRate    uint32  `cbor:"2,keyasint"`
	NodeSpeed     float64 `cbor:"3,keyasint"`
	SentPackets   uint64  `cbor:"4,keyasint"`
	Throughput    float64 `cbor:"5,keyasint"`
	DeliveryRatio float64 `cbor:"6,keyasint"`
	DropRatio     float64 `cbor:"7,keyasint"`
	AvgDelay      float64 `cbor:"8,keyasint"`
}

// NewResultRow joins the run parameters with the computed metrics.
func NewResultRow(cfg ExperimentConfig, m ExperimentMetrics) ResultRow {
	return ResultRow{
		Nodes:         cfg.Nodes,
		PacketRate:    cfg.PacketRate,
		NodeSpeed:     cfg.NodeSpeed,
		SentPackets:   m.SentPackets,
		Throughput:    m.ThroughputKbps,
		DeliveryRatio: m.DeliveryRatio,
		DropRatio:     m.DropRatio,
		AvgDelay:      m.AvgDelayMs,
	}
}
