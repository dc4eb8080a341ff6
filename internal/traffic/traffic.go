// Package traffic installs constant-bit-rate UDP sources on nodes.
package traffic

import (
	"net/netip"
	"time"

	"manetperf/internal/sim"
)

// Sender is the simulation handle a CBR source transmits through.
type Sender interface {
	sim.Context
	Send(src *sim.Node, dst netip.Addr, srcPort, dstPort uint16, payload int)
}

// Config describes the CBR application installed on every node.
type Config struct {
	PacketRate uint32 // packets per second
	PacketSize int    // bytes
	Port       uint16
	SrcPort    uint16
	DestOffset uint32
	Start      time.Duration
	Stop       time.Duration
}

// DefaultConfig mirrors the classic OnOff setup: 64-byte packets to port 9
// from t=1s, peer five positions ahead.
var DefaultConfig = Config{
	PacketRate: 100,
	PacketSize: 64,
	Port:       9,
	SrcPort:    49153,
	DestOffset: 5,
	Start:      time.Second,
	Stop:       20 * time.Second,
}

// DataRate returns the configured bit rate in bits per second.
func (c Config) DataRate() uint64 {
	return uint64(c.PacketRate) * uint64(c.PacketSize) * 8
}

// Interval is the spacing between packets, or zero when nothing is sent.
func (c Config) Interval() time.Duration {
	if c.PacketRate == 0 || c.PacketSize <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.PacketRate)
}

// Destination returns the peer index for node i among n nodes.
func Destination(i, n int, offset uint32) int {
	if n <= 0 {
		return 0
	}
	return (i + int(offset)) % n
}

// Source is one installed CBR generator.
type Source struct {
	ctx  Sender
	cfg  Config
	node *sim.Node
	dst  netip.Addr
	sent uint64
}

// Install attaches a source to every node. With a zero rate nothing is
// scheduled. A node may end up sending to itself when n divides the offset.
func Install(ctx Sender, nodes []*sim.Node, cfg Config) []*Source {
	interval := cfg.Interval()
	sources := make([]*Source, 0, len(nodes))
	for i, node := range nodes {
		s := &Source{
			ctx:  ctx,
			cfg:  cfg,
			node: node,
			dst:  nodes[Destination(i, len(nodes), cfg.DestOffset)].Addr,
		}
		sources = append(sources, s)

		if interval <= 0 {
			continue
		}
		first := cfg.Start + interval - ctx.Now()
		ctx.Schedule(first, s.transmit)
	}
	return sources
}

// Sent returns how many packets the source has handed to the network.
func (s *Source) Sent() uint64 { return s.sent }

// Destination returns the address the source sends to.
func (s *Source) Destination() netip.Addr { return s.dst }

func (s *Source) transmit() {
	if s.ctx.Now() >= s.cfg.Stop {
		return
	}
	s.ctx.Send(s.node, s.dst, s.cfg.SrcPort, s.cfg.Port, s.cfg.PacketSize)
	s.sent++
	s.ctx.Schedule(s.cfg.Interval(), s.transmit)
}
