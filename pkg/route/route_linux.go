//go:build linux

package route

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/jsimonetti/rtnetlink"
	"golang.org/x/sys/unix"
)

// fetchRIBMessagesForIP sends RTM_GETROUTE for ip.
// Variable for mocking in tests.
var fetchRIBMessagesForIP = func(ip netip.Addr) ([]rtnetlink.RouteMessage, error) {
	c, err := rtnetlink.Dial(nil)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	tx := &rtnetlink.RouteMessage{
		Family:    unix.AF_INET,
		DstLength: 32,
		Table:     unix.RT_TABLE_MAIN,
		Attributes: rtnetlink.RouteAttributes{
			Dst: ip.AsSlice(),
		},
	}

	return c.Route.Get(tx)
}

// interfaceByIndex is swapped in tests
var interfaceByIndex = net.InterfaceByIndex

// routeFromMessages converts the kernel reply into a Route.
func routeFromMessages(ip netip.Addr, msgs []rtnetlink.RouteMessage) (Route, error) {
	// RTM_GETROUTE answers with exactly the route the kernel would use
	switch {
	case len(msgs) == 0:
		return Route{}, fmt.Errorf("no route found for %s", ip)
	case len(msgs) > 1:
		return Route{}, fmt.Errorf("multiple routes found for %s", ip)
	}
	m := msgs[0]

	dst, ok := netip.AddrFromSlice(m.Attributes.Dst)
	if !ok {
		return Route{}, fmt.Errorf("failed to parse destination address: %v", m.Attributes.Dst)
	}
	if dst.Unmap() != ip {
		return Route{}, fmt.Errorf("kernel answered for %s, asked for %s", dst, ip)
	}

	var gw netip.Addr
	if a, ok := netip.AddrFromSlice(m.Attributes.Gateway); ok {
		gw = a.Unmap()
	}
	var src netip.Addr
	if a, ok := netip.AddrFromSlice(m.Attributes.Src); ok {
		src = a.Unmap()
	}

	intf, err := interfaceByIndex(int(m.Attributes.OutIface))
	if err != nil {
		return Route{}, fmt.Errorf("failed to get interface by index %d: %w", m.Attributes.OutIface, err)
	}

	return Route{
		Destination: dst.Unmap(),
		Gateway:     gw,
		Source:      src,
		Interface:   intf,
	}, nil
}

func get(ip netip.Addr) (Route, error) {
	msgs, err := fetchRIBMessagesForIP(ip)
	if err != nil {
		return Route{}, fmt.Errorf("failed to query kernel route: %w", err)
	}
	return routeFromMessages(ip, msgs)
}
