package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"manetperf/internal/model"
)

func TestHistory_PutList(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "runs.db")
	h, err := Open(path)
	require.NoError(t, err)

	rows := []model.ResultRow{
		{Nodes: 20, PacketRate: 100, NodeSpeed: 5, SentPackets: 37980, Throughput: 41.2, DeliveryRatio: 0.7, DropRatio: 0.3, AvgDelay: 3.1},
		{Nodes: 30, PacketRate: 50, NodeSpeed: 0, SentPackets: 28485},
	}
	for i, r := range rows {
		run, err := h.Put(Run{Backend: "builtin", Seed: int64(i + 1), Duration: 20 * time.Second, Row: r})
		require.NoError(t, err)
		require.Equal(t, uint64(i+1), run.Seq)
		require.False(t, run.RecordedAt.IsZero())
	}
	require.NoError(t, h.Close())

	// Reopen to make sure the data is on disk.
	h, err = Open(path)
	require.NoError(t, err)
	defer h.Close()

	runs, err := h.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for i, run := range runs {
		require.Equal(t, uint64(i+1), run.Seq)
		require.Equal(t, rows[i], run.Row)
		require.Equal(t, int64(i+1), run.Seed)
		require.Equal(t, 20*time.Second, run.Duration)
		require.Equal(t, "builtin", run.Backend)
	}

	got, err := h.Rows()
	require.NoError(t, err)
	require.Equal(t, rows, got)
}

func TestHistory_Empty(t *testing.T) {
	t.Parallel()

	h, err := Open(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	defer h.Close()

	runs, err := h.List()
	require.NoError(t, err)
	require.Empty(t, runs)
}

func TestOpen_BadPath(t *testing.T) {
	t.Parallel()

	_, err := Open(filepath.Join(t.TempDir(), "missing", "runs.db"))
	require.Error(t, err)
}
