package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSimulator_RunsInTimeThenInsertionOrder(t *testing.T) {
	t.Parallel()

	s := New(1)
	var order []string
	s.ScheduleAt(2*time.Second, func() { order = append(order, "c") })
	s.ScheduleAt(time.Second, func() { order = append(order, "a") })
	s.ScheduleAt(time.Second, func() { order = append(order, "b") })
	s.Schedule(0, func() { order = append(order, "now") })

	require.NoError(t, s.Run(context.Background(), 10*time.Second))
	require.Equal(t, []string{"now", "a", "b", "c"}, order)
	require.Equal(t, 10*time.Second, s.Now())
	require.Equal(t, uint64(4), s.Executed())
}

func TestSimulator_StopIsHardBound(t *testing.T) {
	t.Parallel()

	s := New(1)
	var fired []time.Duration
	var tick func()
	tick = func() {
		fired = append(fired, s.Now())
		s.Schedule(time.Second, tick)
	}
	s.ScheduleAt(0, tick)

	require.NoError(t, s.Run(context.Background(), 3*time.Second))
	require.Equal(t, []time.Duration{0, time.Second, 2 * time.Second, 3 * time.Second}, fired)
	require.Equal(t, 1, s.Pending())
}

func TestSimulator_NegativeDelayClamped(t *testing.T) {
	t.Parallel()

	s := New(1)
	var at time.Duration = -1
	s.ScheduleAt(time.Second, func() {
		s.Schedule(-time.Hour, func() { at = s.Now() })
	})
	require.NoError(t, s.Run(context.Background(), 2*time.Second))
	require.Equal(t, time.Second, at)
}

func TestSimulator_Cancelled(t *testing.T) {
	t.Parallel()

	s := New(1)
	s.ScheduleAt(time.Second, func() {})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, s.Run(ctx, 5*time.Second), context.Canceled)
}

func TestVector_Distance(t *testing.T) {
	t.Parallel()

	require.Equal(t, 5.0, Vector{0, 0}.Distance(Vector{3, 4}))
}
