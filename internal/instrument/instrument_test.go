package instrument

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"manetperf/internal/model"
)

func TestObserve_WriteTextfile(t *testing.T) {
	t.Parallel()

	m := New()
	m.Observe(model.ResultRow{Nodes: 20, PacketRate: 100, NodeSpeed: 5, SentPackets: 37980, Throughput: 41.5, DeliveryRatio: 0.75, DropRatio: 0.25, AvgDelay: 2.5})
	m.Observe(model.ResultRow{Nodes: 30, PacketRate: 100, NodeSpeed: 2.5, SentPackets: 10})

	path := filepath.Join(t.TempDir(), "manetperf.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	require.True(t, strings.Contains(text, `manetperf_throughput_kbps{node_speed="5",nodes="20",packet_rate="100"} 41.5`), text)
	require.True(t, strings.Contains(text, `manetperf_delivery_ratio{node_speed="2.5",nodes="30",packet_rate="100"} 0`), text)
	require.True(t, strings.Contains(text, "manetperf_runs_total 2"), text)

	families, err := m.Gatherer().Gather()
	require.NoError(t, err)
	require.Len(t, families, 6)
}
