package shared

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/crc32"
	"strings"
	"time"

	"github.com/tkjaer/rtlookup/pkg/lpm"
)

// LookupRecord is the result of one destination lookup as handed to outputs
type LookupRecord struct {
	Destination     string    `json:"destination"`     // Destination as given by the user
	DestinationIP   string    `json:"destination_ip"`  // Resolved IPv4 address
	MatchedNetwork  string    `json:"matched_network"` // Network of the winning entry, 0.0.0.0 if none
	PrefixLen       int       `json:"prefix_len"`      // Prefix length of the winning entry, 0 if none
	Interface       int       `json:"interface"`       // Egress interface
	Matched         bool      `json:"matched"`         // False when no entry covered the destination
	Engine          string    `json:"engine"`          // Lookup engine (linear/trie)
	TableHash       string    `json:"table_hash"`      // Fingerprint of the loaded table
	TableEntries    int       `json:"table_entries"`   // Number of entries in the table
	KernelInterface string    `json:"kernel_interface,omitempty"`
	KernelIfIndex   int       `json:"kernel_ifindex,omitempty"`
	KernelMismatch  bool      `json:"kernel_mismatch,omitempty"` // Kernel chose a different interface index
	Timestamp       time.Time `json:"timestamp"`
}

// NewLookupRecord fills a record from a lookup result
func NewLookupRecord(destination, destinationIP string, res lpm.LookupResult) *LookupRecord {
	return &LookupRecord{
		Destination:    destination,
		DestinationIP:  destinationIP,
		MatchedNetwork: lpm.Uint32ToAddr(res.Network).String(),
		PrefixLen:      res.PrefixLen,
		Interface:      res.Interface,
		Matched:        res.Matched,
		Timestamp:      time.Now(),
	}
}

// MatchedPrefix returns the matched network in CIDR notation
func (r *LookupRecord) MatchedPrefix() string {
	return fmt.Sprintf("%s/%d", r.MatchedNetwork, r.PrefixLen)
}

// calculateHash hashes the given lines using the specified algorithm
func calculateHash(lines []string, algorithm string) string {
	if len(lines) == 0 {
		switch algorithm {
		case "sha256":
			return "0000000000000000000000000000000000000000000000000000000000000000"
		default:
			return "00000000"
		}
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("|")
	}
	data := []byte(b.String())

	switch algorithm {
	case "sha256":
		hash := sha256.Sum256(data)
		return hex.EncodeToString(hash[:])
	default:
		// Default to CRC32
		return fmt.Sprintf("%08x", crc32.ChecksumIEEE(data))
	}
}

// TableHash fingerprints a route table. Entry order matters since it decides
// ties between equal-length prefixes.
func TableHash(entries []lpm.RouteEntry, algorithm string) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.String())
	}
	return calculateHash(lines, algorithm)
}
