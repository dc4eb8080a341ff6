package sim

import (
	"math/rand"
	"net/netip"
	"time"

	"gopkg.in/op/go-logging.v1"

	"manetperf/internal/model"
)

const (
	udpHeaderSize  = 8
	ipv4HeaderSize = 20
	macOverhead    = 36 // 802.11 data header, LLC/SNAP and FCS
	protocolUDP    = 17
)

// RadioConfig parameterizes the built-in channel.
type RadioConfig struct {
	// Range is the unit-disk reception radius in distance units.
	Range float64
	// DataRate is the PHY rate in bits per second.
	DataRate float64
	// HopOverhead is added to the airtime of every hop.
	HopOverhead time.Duration
}

// DefaultRadio roughly matches an ns-3 ad-hoc 802.11a channel at 6 Mbps.
var DefaultRadio = RadioConfig{
	Range:       120,
	DataRate:    6e6,
	HopOverhead: 100 * time.Microsecond,
}

// Network is the built-in engine. Connectivity is a unit disk graph over the
// current node positions; a packet follows the fewest-hop path that exists at
// send time and is lost when there is none. It records per-flow counters the
// way a flow monitor would, counting IP-level bytes.
type Network struct {
	sim   *Simulator
	radio RadioConfig
	log   *logging.Logger

	nodes  []*Node
	index  map[*Node]int
	byAddr map[netip.Addr]*Node

	flowIDs  map[model.FlowKey]model.FlowID
	flows    map[model.FlowID]*model.FlowRecord
	nextFlow model.FlowID

	adjAt time.Duration
	adj   [][]int
}

// NewNetwork creates an engine that schedules its deliveries on s.
func NewNetwork(s *Simulator, radio RadioConfig, log *logging.Logger) *Network {
	return &Network{
		sim:     s,
		radio:   radio,
		log:     log,
		index:   make(map[*Node]int),
		byAddr:  make(map[netip.Addr]*Node),
		flowIDs: make(map[model.FlowKey]model.FlowID),
		flows:   make(map[model.FlowID]*model.FlowRecord),
		adjAt:   -1,
	}
}

func (n *Network) Now() time.Duration { return n.sim.Now() }

func (n *Network) Schedule(delay time.Duration, fn func()) { n.sim.Schedule(delay, fn) }

func (n *Network) Rand() *rand.Rand { return n.sim.Rand() }

// Attach registers nodes with the channel.
func (n *Network) Attach(nodes ...*Node) {
	for _, node := range nodes {
		n.index[node] = len(n.nodes)
		n.nodes = append(n.nodes, node)
		n.byAddr[node.Addr] = node
	}
	n.adjAt = -1
}

// Nodes returns the attached nodes.
func (n *Network) Nodes() []*Node { return n.nodes }

// Send transmits one UDP datagram of payload bytes from src to dst.
func (n *Network) Send(src *Node, dst netip.Addr, srcPort, dstPort uint16, payload int) {
	key := model.FlowKey{
		Src:      src.Addr,
		Dst:      dst,
		SrcPort:  srcPort,
		DstPort:  dstPort,
		Protocol: protocolUDP,
	}
	rec := n.flow(key)
	size := uint64(payload + udpHeaderSize + ipv4HeaderSize)
	rec.TxPackets++
	rec.TxBytes += size

	target, ok := n.byAddr[dst]
	if !ok {
		rec.LostPackets++
		n.log.Debugf("%s: no such destination", key)
		return
	}

	hops := n.hops(src, target)
	if hops < 0 {
		rec.LostPackets++
		n.log.Debugf("%s: no route at %v", key, n.sim.Now())
		return
	}

	delay := time.Duration(hops) * n.hopDelay(payload)
	n.sim.Schedule(delay, func() {
		rec.RxPackets++
		rec.RxBytes += size
		rec.DelaySum += delay
	})
}

// FlowStats returns a copy of the per-flow counters collected so far.
func (n *Network) FlowStats() map[model.FlowID]model.FlowRecord {
	out := make(map[model.FlowID]model.FlowRecord, len(n.flows))
	for id, rec := range n.flows {
		out[id] = *rec
	}
	return out
}

func (n *Network) flow(key model.FlowKey) *model.FlowRecord {
	id, ok := n.flowIDs[key]
	if !ok {
		n.nextFlow++
		id = n.nextFlow
		n.flowIDs[key] = id
		n.flows[id] = &model.FlowRecord{Key: key}
	}
	return n.flows[id]
}

func (n *Network) hopDelay(payload int) time.Duration {
	d := n.radio.HopOverhead
	if n.radio.DataRate > 0 {
		bits := float64(8 * (payload + udpHeaderSize + ipv4HeaderSize + macOverhead))
		d += time.Duration(bits / n.radio.DataRate * float64(time.Second))
	}
	return d
}

// hops returns the fewest-hop distance from src to dst, or -1.
func (n *Network) hops(src, dst *Node) int {
	if src == dst {
		return 0
	}
	from, ok := n.index[src]
	if !ok {
		return -1
	}
	to, ok := n.index[dst]
	if !ok {
		return -1
	}
	adj := n.adjacency()

	dist := make([]int, len(n.nodes))
	for i := range dist {
		dist[i] = -1
	}
	dist[from] = 0
	queue := []int{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if dist[next] >= 0 {
				continue
			}
			dist[next] = dist[cur] + 1
			if next == to {
				return dist[next]
			}
			queue = append(queue, next)
		}
	}
	return -1
}

// adjacency is rebuilt at most once per distinct simulation time.
func (n *Network) adjacency() [][]int {
	now := n.sim.Now()
	if n.adjAt == now && n.adj != nil {
		return n.adj
	}

	positions := make([]Vector, len(n.nodes))
	for i, node := range n.nodes {
		positions[i] = node.Position(now)
	}

	adj := make([][]int, len(n.nodes))
	for i := range n.nodes {
		for j := i + 1; j < len(n.nodes); j++ {
			if positions[i].Distance(positions[j]) <= n.radio.Range {
				adj[i] = append(adj[i], j)
				adj[j] = append(adj[j], i)
			}
		}
	}

	n.adj = adj
	n.adjAt = now
	return adj
}
