// Package topology creates the set of simulated endpoints for a run.
package topology

import (
	"net/netip"

	"github.com/pkg/errors"

	"manetperf/internal/addrutil"
	"manetperf/internal/sim"
)

// DefaultSubnet is the block node addresses are drawn from.
var DefaultSubnet = netip.MustParsePrefix("10.1.1.0/24")

// Host receives the nodes a topology creates.
type Host interface {
	Attach(nodes ...*sim.Node)
}

// Build creates n nodes with sequential addresses from subnet and attaches
// them to host. n == 0 yields an empty topology.
func Build(host Host, n uint32, subnet netip.Prefix) ([]*sim.Node, error) {
	if n == 0 {
		return []*sim.Node{}, nil
	}

	alloc, err := addrutil.NewAllocator(subnet)
	if err != nil {
		return nil, err
	}

	nodes := make([]*sim.Node, 0, n)
	for i := 0; i < int(n); i++ {
		addr, err := alloc.Next()
		if err != nil {
			return nil, errors.Wrapf(err, "node %d", i)
		}
		nodes = append(nodes, &sim.Node{ID: i, Addr: addr})
	}

	host.Attach(nodes...)
	return nodes, nil
}
