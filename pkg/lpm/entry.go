package lpm

import (
	"fmt"
	"net/netip"
)

// RouteEntry is a single forwarding table entry.
//
// Network is expected to have its host bits cleared; NewRouteEntry does not
// enforce this, callers normalize when they parse input.
type RouteEntry struct {
	Network   uint32
	PrefixLen int
	Interface int
}

// NewRouteEntry validates prefixLen and iface and returns the entry.
// An entry that fails validation can never be placed in a table.
func NewRouteEntry(network uint32, prefixLen int, iface int) (RouteEntry, error) {
	e := RouteEntry{Network: network, PrefixLen: prefixLen, Interface: iface}
	if err := e.validate(); err != nil {
		return RouteEntry{}, err
	}
	return e, nil
}

func (e RouteEntry) validate() error {
	if _, err := MaskFor(e.PrefixLen); err != nil {
		return err
	}
	if e.Interface < 0 {
		return fmt.Errorf("interface %d is negative: %w", e.Interface, ErrInvalidArgument)
	}
	return nil
}

// validateEntries rejects entries that were not built through NewRouteEntry and
// carry an out-of-range prefix length or a negative interface.
func validateEntries(entries []RouteEntry) error {
	for i, e := range entries {
		if err := e.validate(); err != nil {
			return fmt.Errorf("entry %d (%s/%d): %w", i, Uint32ToAddr(e.Network), e.PrefixLen, err)
		}
	}
	return nil
}

// EntryFromPrefix builds an entry from an IPv4 prefix. The network is taken as
// given; use pfx.Masked() first to clear host bits.
func EntryFromPrefix(pfx netip.Prefix, iface int) (RouteEntry, error) {
	if !pfx.IsValid() {
		return RouteEntry{}, fmt.Errorf("prefix %v: %w", pfx, ErrInvalidArgument)
	}
	network, err := AddrToUint32(pfx.Addr())
	if err != nil {
		return RouteEntry{}, err
	}
	return NewRouteEntry(network, pfx.Bits(), iface)
}

// Prefix returns the entry as a netip.Prefix.
func (e RouteEntry) Prefix() netip.Prefix {
	return netip.PrefixFrom(Uint32ToAddr(e.Network), e.PrefixLen)
}

// Contains reports whether dst falls within the entry's network.
func (e RouteEntry) Contains(dst uint32) bool {
	mask := mustMask(e.PrefixLen)
	return ApplyMask(dst, mask) == ApplyMask(e.Network, mask)
}

func (e RouteEntry) String() string {
	return fmt.Sprintf("%s,%d", e.Prefix(), e.Interface)
}
