package lpm

import (
	"errors"
	"fmt"
	"slices"
)

// DefaultInterface is the interface reported when no entry matches.
const DefaultInterface = 0

var ErrUnknownEngine = errors.New("unknown lookup engine")

// LookupResult is the outcome of a lookup. When Matched is false no entry covered
// the destination and Network and PrefixLen are zero.
type LookupResult struct {
	Network   uint32
	PrefixLen int
	Interface int
	Matched   bool
}

// Engine is a read-only forwarding table that answers longest-prefix-match
// queries. Implementations are safe for concurrent lookups.
type Engine interface {
	Lookup(dst uint32) LookupResult
	Len() int
	Entries() []RouteEntry
}

type options struct {
	defaultIface int
}

type Option func(*options)

// WithDefaultInterface sets the interface returned when nothing matches.
func WithDefaultInterface(iface int) Option {
	return func(o *options) {
		o.defaultIface = iface
	}
}

func buildOptions(opts []Option) options {
	o := options{defaultIface: DefaultInterface}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Table is a forwarding table searched by linear scan. It is the reference
// implementation of the matching rules; TrieTable must agree with it.
type Table struct {
	entries      []RouteEntry
	defaultIface int
}

// Build creates a table from entries in the given order. Entries are neither
// sorted nor deduplicated and an empty slice is allowed. An entry with a prefix
// length outside [0,32] or a negative interface fails with ErrInvalidArgument.
func Build(entries []RouteEntry, opts ...Option) (*Table, error) {
	if err := validateEntries(entries); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &Table{
		entries:      slices.Clone(entries),
		defaultIface: o.defaultIface,
	}, nil
}

// Lookup returns the entry with the longest prefix covering dst. Among entries
// with the same prefix length the one that comes first in the table wins.
func (t *Table) Lookup(dst uint32) LookupResult {
	best := -1
	var winner RouteEntry
	for _, e := range t.entries {
		// strictly greater, so the first of equal-length candidates is kept
		if e.PrefixLen > best && e.Contains(dst) {
			best = e.PrefixLen
			winner = e
		}
	}
	if best < 0 {
		return noMatch(t.defaultIface)
	}
	return LookupResult{
		Network:   winner.Network,
		PrefixLen: winner.PrefixLen,
		Interface: winner.Interface,
		Matched:   true,
	}
}

func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the table's entries in insertion order.
func (t *Table) Entries() []RouteEntry {
	return slices.Clone(t.entries)
}

func noMatch(defaultIface int) LookupResult {
	return LookupResult{Interface: defaultIface}
}

const (
	EngineLinear = "linear"
	EngineTrie   = "trie"
)

// NewEngine builds a table using the named engine.
func NewEngine(kind string, entries []RouteEntry, opts ...Option) (Engine, error) {
	switch kind {
	case EngineLinear:
		return Build(entries, opts...)
	case EngineTrie:
		return BuildTrie(entries, opts...)
	default:
		return nil, fmt.Errorf("%q: %w", kind, ErrUnknownEngine)
	}
}
