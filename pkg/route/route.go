package route

import (
	"errors"
	"net"
	"net/netip"
)

var ErrUnsupported = errors.New("kernel route lookup is not supported on this platform")

// Route is the kernel's choice of route for a destination
type Route struct {
	Destination netip.Addr
	Gateway     netip.Addr
	Source      netip.Addr
	Interface   *net.Interface
}

// InterfaceIndex returns the egress interface index, or 0 when unknown.
func (r Route) InterfaceIndex() int {
	if r.Interface == nil {
		return 0
	}
	return r.Interface.Index
}

// InterfaceName returns the egress interface name, or "" when unknown.
func (r Route) InterfaceName() string {
	if r.Interface == nil {
		return ""
	}
	return r.Interface.Name
}

// Get asks the operating system which route it would use for the IPv4 address
// ip. It is used to cross-check a lookup against the host's own forwarding table.
func Get(ip netip.Addr) (Route, error) {
	ip = ip.Unmap()
	if !ip.Is4() {
		return Route{}, errors.New("kernel route lookup requires an IPv4 address")
	}
	// Use platform-specific implementation to fetch the route
	return get(ip)
}
