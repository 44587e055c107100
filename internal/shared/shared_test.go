package shared

import (
	"net/netip"
	"testing"

	"github.com/tkjaer/rtlookup/pkg/lpm"
)

func entry(t *testing.T, cidr string, iface int) lpm.RouteEntry {
	t.Helper()
	e, err := lpm.EntryFromPrefix(netip.MustParsePrefix(cidr), iface)
	if err != nil {
		t.Fatalf("EntryFromPrefix(%q) unexpected error: %v", cidr, err)
	}
	return e
}

func Test_calculateHash(t *testing.T) {
	tests := []struct {
		name      string
		lines     []string
		algorithm string
		want      string
	}{
		{
			name:      "empty sha256",
			lines:     []string{},
			algorithm: "sha256",
			want:      "0000000000000000000000000000000000000000000000000000000000000000",
		},
		{
			name:      "empty crc32",
			lines:     nil,
			algorithm: "crc32",
			want:      "00000000",
		},
		{
			name:      "single line crc32",
			lines:     []string{"10.0.0.0/8,1"},
			algorithm: "crc32",
			want:      "f11ac05f",
		},
		{
			name:      "single line sha256",
			lines:     []string{"10.0.0.0/8,1"},
			algorithm: "sha256",
			want:      "0d9f8cff5de694a06b417752b551e7f6f86a9cf7ba5055ae07c0da3704d75733",
		},
		{
			name:      "unknown algorithm defaults to crc32",
			lines:     []string{"10.0.0.0/8,1"},
			algorithm: "md5",
			want:      "f11ac05f",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calculateHash(tt.lines, tt.algorithm); got != tt.want {
				t.Errorf("calculateHash() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTableHash(t *testing.T) {
	a := entry(t, "10.0.0.0/8", 1)
	b := entry(t, "10.1.0.0/16", 2)

	tests := []struct {
		name      string
		entries   []lpm.RouteEntry
		algorithm string
		want      string
	}{
		{"nil table", nil, "crc32", "00000000"},
		{"two entries crc32", []lpm.RouteEntry{a, b}, "crc32", "3bb0aa3b"},
		{"two entries sha256", []lpm.RouteEntry{a, b}, "sha256", "9364761f276f9b33b84b8b0450d9a240f038f51bb0c2303b8645d8375e6451b0"},
		{"order matters", []lpm.RouteEntry{b, a}, "crc32", "b9eb8fb5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TableHash(tt.entries, tt.algorithm); got != tt.want {
				t.Errorf("TableHash() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewLookupRecord(t *testing.T) {
	res := lpm.LookupResult{Network: 0x0a010000, PrefixLen: 16, Interface: 2, Matched: true}
	r := NewLookupRecord("gw.example", "10.1.2.3", res)

	if r.MatchedNetwork != "10.1.0.0" {
		t.Errorf("MatchedNetwork = %s, want 10.1.0.0", r.MatchedNetwork)
	}
	if r.MatchedPrefix() != "10.1.0.0/16" {
		t.Errorf("MatchedPrefix() = %s, want 10.1.0.0/16", r.MatchedPrefix())
	}
	if r.Interface != 2 || !r.Matched {
		t.Errorf("Interface/Matched = %d/%v, want 2/true", r.Interface, r.Matched)
	}
	if r.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}

	fallback := NewLookupRecord("192.168.1.1", "192.168.1.1", lpm.LookupResult{})
	if fallback.MatchedPrefix() != "0.0.0.0/0" {
		t.Errorf("fallback MatchedPrefix() = %s, want 0.0.0.0/0", fallback.MatchedPrefix())
	}
}
