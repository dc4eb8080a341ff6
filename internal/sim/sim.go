// Package sim provides the discrete-event clock that mobility and traffic
// configurators schedule their behaviour on, plus a small built-in network
// engine that produces per-flow counters.
package sim

import (
	"context"
	"math"
	"math/rand"
	"net/netip"
	"time"
)

// ctxCheckInterval is how many events run between cancellation checks.
const ctxCheckInterval = 1024

// Context is the handle configurators use to reach the simulated timeline.
type Context interface {
	Now() time.Duration
	Schedule(delay time.Duration, fn func())
	Rand() *rand.Rand
}

// Vector is a position in the simulation plane.
type Vector struct {
	X float64
	Y float64
}

// Distance returns the Euclidean distance between v and o.
func (v Vector) Distance(o Vector) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// PositionModel reports where a node is at a given simulation time.
type PositionModel interface {
	Position(now time.Duration) Vector
}

// Node is a simulated endpoint.
type Node struct {
	ID       int
	Addr     netip.Addr
	Mobility PositionModel
}

// Position returns the node position, or the origin when it has no mobility model.
func (n *Node) Position(now time.Duration) Vector {
	if n.Mobility == nil {
		return Vector{}
	}
	return n.Mobility.Position(now)
}

// Simulator is a single-threaded discrete-event scheduler.
type Simulator struct {
	now      time.Duration
	seq      uint64
	events   eventQueue
	rng      *rand.Rand
	executed uint64
}

// New returns a simulator whose random stream is derived from seed.
func New(seed int64) *Simulator {
	return &Simulator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (s *Simulator) Now() time.Duration { return s.now }

func (s *Simulator) Rand() *rand.Rand { return s.rng }

// Schedule runs fn after delay. Negative delays are treated as zero.
func (s *Simulator) Schedule(delay time.Duration, fn func()) {
	if delay < 0 {
		delay = 0
	}
	s.ScheduleAt(s.now+delay, fn)
}

// ScheduleAt runs fn at an absolute time, never earlier than now.
func (s *Simulator) ScheduleAt(at time.Duration, fn func()) {
	if at < s.now {
		at = s.now
	}
	s.seq++
	s.events.enqueue(&event{at: at, seq: s.seq, fn: fn})
}

// Pending returns the number of queued events.
func (s *Simulator) Pending() int { return s.events.Len() }

// Executed returns the number of events run so far.
func (s *Simulator) Executed() uint64 { return s.executed }

// Run executes events in time order until none remain at or before stop.
// Later events are left unexecuted. The clock ends at stop.
func (s *Simulator) Run(ctx context.Context, stop time.Duration) error {
	for {
		next := s.events.peek()
		if next == nil || next.at > stop {
			break
		}
		if s.executed%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		e := s.events.dequeue()
		s.now = e.at
		s.executed++
		e.fn()
	}

	if s.now < stop {
		s.now = stop
	}
	return nil
}
