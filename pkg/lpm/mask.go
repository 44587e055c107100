package lpm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"
)

// MaxPrefixLen is the number of bits in an IPv4 address.
const MaxPrefixLen = 32

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotIPv4         = errors.New("not an IPv4 address")
)

// MaskFor returns the network mask for the given prefix length: the top prefixLen
// bits set and the remaining bits cleared. Addresses and masks are numeric values
// in network (big-endian) bit order, so bit 31 is the first bit on the wire.
func MaskFor(prefixLen int) (uint32, error) {
	if prefixLen < 0 || prefixLen > MaxPrefixLen {
		return 0, fmt.Errorf("prefix length %d out of range [0,%d]: %w", prefixLen, MaxPrefixLen, ErrInvalidArgument)
	}
	// a shift by 32 is defined in Go and yields 0
	return ^uint32(0) << (MaxPrefixLen - prefixLen), nil
}

// ApplyMask returns addr with every bit outside mask cleared.
func ApplyMask(addr, mask uint32) uint32 {
	return addr & mask
}

// mustMask is MaskFor for prefix lengths already validated by NewRouteEntry or Build.
func mustMask(prefixLen int) uint32 {
	m, err := MaskFor(prefixLen)
	if err != nil {
		panic(err)
	}
	return m
}

// AddrToUint32 converts an IPv4 address (or an IPv4-mapped IPv6 address) to its
// numeric form.
func AddrToUint32(addr netip.Addr) (uint32, error) {
	addr = addr.Unmap()
	if !addr.Is4() {
		return 0, fmt.Errorf("%v: %w", addr, ErrNotIPv4)
	}
	b := addr.As4()
	return binary.BigEndian.Uint32(b[:]), nil
}

// Uint32ToAddr converts a numeric IPv4 address back to a netip.Addr.
func Uint32ToAddr(v uint32) netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return netip.AddrFrom4(b)
}
