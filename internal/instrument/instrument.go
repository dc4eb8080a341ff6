// Package instrument exports run results as Prometheus metrics.
package instrument

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"manetperf/internal/model"
)

var labels = []string{"nodes", "packet_rate", "node_speed"}

// Metrics holds one gauge per result column on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	throughput *prometheus.GaugeVec
	delivery   *prometheus.GaugeVec
	drop       *prometheus.GaugeVec
	delay      *prometheus.GaugeVec
	sent       *prometheus.GaugeVec
	runs       prometheus.Counter
}

// New registers the manetperf collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		throughput: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "manetperf_throughput_kbps",
				Help: "Aggregate received throughput of the last run",
			},
			labels,
		),
		delivery: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "manetperf_delivery_ratio",
				Help: "Packet delivery ratio of the last run",
			},
			labels,
		),
		drop: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "manetperf_drop_ratio",
				Help: "Packet drop ratio of the last run",
			},
			labels,
		),
		delay: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "manetperf_avg_delay_ms",
				Help: "Average end-to-end delay of the last run",
			},
			labels,
		),
		sent: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "manetperf_sent_packets",
				Help: "Packets sent in the last run",
			},
			labels,
		),
		runs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "manetperf_runs_total",
				Help: "Number of recorded runs",
			},
		),
	}
	m.registry.MustRegister(m.throughput, m.delivery, m.drop, m.delay, m.sent, m.runs)
	return m
}

// Observe records a result row.
func (m *Metrics) Observe(row model.ResultRow) {
	lv := []string{
		strconv.FormatUint(uint64(row.Nodes), 10),
		strconv.FormatUint(uint64(row.PacketRate), 10),
		strconv.FormatFloat(row.NodeSpeed, 'g', -1, 64),
	}
	m.throughput.WithLabelValues(lv...).Set(row.Throughput)
	m.delivery.WithLabelValues(lv...).Set(row.DeliveryRatio)
	m.drop.WithLabelValues(lv...).Set(row.DropRatio)
	m.delay.WithLabelValues(lv...).Set(row.AvgDelay)
	m.sent.WithLabelValues(lv...).Set(float64(row.SentPackets))
	m.runs.Inc()
}

// Gatherer exposes the registry, e.g. for promhttp.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.registry }

// WriteTextfile writes the current values in the text exposition format,
// suitable for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrap(err, "could not write metrics textfile")
	}
	return nil
}
