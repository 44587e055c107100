package lpm

import (
	"slices"

	"github.com/gaissmai/bart"
)

// TrieTable is a forwarding table backed by a multibit radix trie. Lookups cost
// at most one step per address octet regardless of the number of routes.
//
// Results are identical to Table: entries that share a masked prefix collapse to
// the first one inserted, which is the entry the linear scan would pick.
type TrieTable struct {
	routes       *bart.Table[RouteEntry]
	entries      []RouteEntry
	defaultIface int
}

// BuildTrie creates a trie-backed table from entries. Invalid entries are
// rejected the same way as by Build.
func BuildTrie(entries []RouteEntry, opts ...Option) (*TrieTable, error) {
	if err := validateEntries(entries); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	t := &TrieTable{
		routes:       new(bart.Table[RouteEntry]),
		entries:      slices.Clone(entries),
		defaultIface: o.defaultIface,
	}
	for _, e := range t.entries {
		pfx := e.Prefix().Masked()
		if _, exists := t.routes.Get(pfx); exists {
			continue
		}
		t.routes.Insert(pfx, e)
	}
	return t, nil
}

func (t *TrieTable) Lookup(dst uint32) LookupResult {
	e, ok := t.routes.Lookup(Uint32ToAddr(dst))
	if !ok {
		return noMatch(t.defaultIface)
	}
	return LookupResult{
		Network:   e.Network,
		PrefixLen: e.PrefixLen,
		Interface: e.Interface,
		Matched:   true,
	}
}

func (t *TrieTable) Len() int {
	return len(t.entries)
}

// Prefixes returns the number of distinct prefixes held in the trie.
func (t *TrieTable) Prefixes() int {
	return t.routes.Size()
}

func (t *TrieTable) Entries() []RouteEntry {
	return slices.Clone(t.entries)
}
