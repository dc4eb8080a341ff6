// Package mobility places nodes in a rectangle and moves them along random
// waypoints at a constant speed.
package mobility

import (
	"math"
	"math/rand"
	"time"

	"manetperf/internal/sim"
)

// Config parameterizes random-waypoint motion.
type Config struct {
	Width  float64
	Height float64
	Speed  float64 // distance units per second
	Pause  time.Duration
}

// maxLeg bounds a leg's travel time in nanoseconds so that the clock
// arithmetic around it cannot overflow.
const maxLeg = float64(math.MaxInt64 / 4)

// DefaultConfig is a 100x100 area with 5 units/s and no pause.
var DefaultConfig = Config{Width: 100, Height: 100, Speed: 5}

// RandomWaypoint moves between uniformly drawn destinations. Position is
// linear interpolation along the current leg.
type RandomWaypoint struct {
	ctx sim.Context
	cfg Config

	from     sim.Vector
	to       sim.Vector
	departAt time.Duration
	arriveAt time.Duration
	legs     int
}

// Install draws an initial position for every node and starts its motion.
// Zero speed leaves nodes stationary and schedules nothing.
func Install(ctx sim.Context, nodes []*sim.Node, cfg Config) []*RandomWaypoint {
	models := make([]*RandomWaypoint, 0, len(nodes))
	for _, node := range nodes {
		start := randomPoint(ctx.Rand(), cfg)
		m := &RandomWaypoint{
			ctx:      ctx,
			cfg:      cfg,
			from:     start,
			to:       start,
			departAt: ctx.Now(),
			arriveAt: ctx.Now(),
		}
		node.Mobility = m
		models = append(models, m)

		if cfg.Speed > 0 {
			m.beginLeg()
		}
	}
	return models
}

// Position implements sim.PositionModel.
func (m *RandomWaypoint) Position(now time.Duration) sim.Vector {
	if now >= m.arriveAt || m.arriveAt == m.departAt {
		return m.to
	}
	if now <= m.departAt {
		return m.from
	}
	frac := float64(now-m.departAt) / float64(m.arriveAt-m.departAt)
	return sim.Vector{
		X: m.from.X + (m.to.X-m.from.X)*frac,
		Y: m.from.Y + (m.to.Y-m.from.Y)*frac,
	}
}

// Legs returns the number of waypoints picked so far.
func (m *RandomWaypoint) Legs() int { return m.legs }

func (m *RandomWaypoint) beginLeg() {
	now := m.ctx.Now()
	m.from = m.Position(now)
	m.to = randomPoint(m.ctx.Rand(), m.cfg)
	m.legs++

	m.departAt = now

	// A leg too long to represent never ends; the node crawls towards its
	// waypoint for the rest of the run and picks no further legs.
	travel := m.from.Distance(m.to) / m.cfg.Speed * float64(time.Second)
	if math.IsNaN(travel) || travel >= maxLeg {
		m.arriveAt = math.MaxInt64
		return
	}
	m.arriveAt = now + time.Duration(travel)

	m.ctx.Schedule(time.Duration(travel)+m.cfg.Pause, m.beginLeg)
}

func randomPoint(r *rand.Rand, cfg Config) sim.Vector {
	return sim.Vector{X: r.Float64() * cfg.Width, Y: r.Float64() * cfg.Height}
}
