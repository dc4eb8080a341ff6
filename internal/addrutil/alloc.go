package addrutil

import (
	"net/netip"
	"strings"

	"github.com/pkg/errors"
)

// Allocator hands out host addresses of one prefix in ascending order,
// starting after the network address, the way ns-3's Ipv4AddressHelper does.
type Allocator struct {
	prefix netip.Prefix
	next   netip.Addr
}

// NewAllocator returns an allocator for an IPv4 prefix such as 10.1.1.0/24.
func NewAllocator(prefix netip.Prefix) (*Allocator, error) {
	if !prefix.IsValid() || !prefix.Addr().Is4() {
		return nil, errors.Errorf("unsupported subnet %q", prefix)
	}
	if prefix.Bits() > 30 {
		return nil, errors.Errorf("subnet %s has no usable hosts", prefix)
	}
	prefix = prefix.Masked()
	return &Allocator{prefix: prefix, next: prefix.Addr().Next()}, nil
}

// Next returns the next free host address.
func (a *Allocator) Next() (netip.Addr, error) {
	addr := a.next
	// The broadcast address is reserved.
	if !a.prefix.Contains(addr) || !a.prefix.Contains(addr.Next()) {
		return netip.Addr{}, errors.Errorf("subnet %s exhausted", a.prefix)
	}
	a.next = addr.Next()
	return addr, nil
}

// ParseSubnet accepts either CIDR ("10.1.1.0/24") or a base plus dotted mask
// ("10.1.1.0/255.255.255.0").
func ParseSubnet(value string) (netip.Prefix, error) {
	if p, err := netip.ParsePrefix(value); err == nil {
		return p, nil
	}
	base, mask, ok := strings.Cut(value, "/")
	if !ok {
		return netip.Prefix{}, errors.Errorf("invalid subnet %q", value)
	}
	addr, err := netip.ParseAddr(base)
	if err != nil {
		return netip.Prefix{}, errors.Wrapf(err, "invalid subnet %q", value)
	}
	m, err := netip.ParseAddr(mask)
	if err != nil || !m.Is4() {
		return netip.Prefix{}, errors.Errorf("invalid mask in subnet %q", value)
	}
	bits, ok := maskBits(m.As4())
	if !ok {
		return netip.Prefix{}, errors.Errorf("non-contiguous mask in subnet %q", value)
	}
	return addr.Prefix(bits)
}

func maskBits(m [4]byte) (int, bool) {
	v := uint32(m[0])<<24 | uint32(m[1])<<16 | uint32(m[2])<<8 | uint32(m[3])
	bits := 0
	for v&0x80000000 != 0 {
		bits++
		v <<= 1
	}
	return bits, v == 0
}
