// Package tableio reads forwarding tables from text files.
//
// Each line has the form
//
//	<network-address>/<prefix-length>,<interface>
//
// Blank lines and lines starting with '#' are ignored. Lines that fail to parse
// are reported and skipped; they never reach the route table.
package tableio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/netip"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/tkjaer/rtlookup/pkg/lpm"
)

var (
	ErrEmptyTable    = errors.New("route table is empty")
	ErrMissingComma  = errors.New("missing ',' between prefix and interface")
	ErrBadInterface  = errors.New("interface must be a non-negative integer")
	ErrUnknownPolicy = errors.New("unknown empty-table policy")
)

// LineError describes a rejected table line
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Result holds the parsed table
type Result struct {
	Source   string
	Entries  []lpm.RouteEntry
	Rejected []*LineError
	Lines    int
}

// stdin is swapped in tests
var stdin io.Reader = os.Stdin

// Load reads a table from path. "-" reads standard input and paths ending in
// ".gz" are decompressed.
func Load(path string) (Result, error) {
	if path == "-" {
		return Parse(stdin, "stdin")
	}

	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open route table: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return Result{}, fmt.Errorf("failed to decompress %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}
	return Parse(r, path)
}

// Parse reads table lines from r. Only read errors are returned; malformed lines
// end up in Result.Rejected.
func Parse(r io.Reader, source string) (Result, error) {
	res := Result{Source: source}

	br := bufio.NewReader(r)
	for {
		// ReadString has no line length limit, unlike bufio.Scanner
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			res.Lines++
			res.parseLine(res.Lines, line)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("failed to read %s: %w", source, err)
		}
	}

	slog.Debug("Loaded route table",
		"source", source,
		"lines", res.Lines,
		"entries", len(res.Entries),
		"rejected", len(res.Rejected),
	)
	return res, nil
}

func (res *Result) parseLine(n int, raw string) {
	text := strings.TrimSpace(raw)
	if text == "" || strings.HasPrefix(text, "#") {
		return
	}

	e, err := ParseEntry(text)
	if err != nil {
		le := &LineError{Line: n, Text: text, Err: err}
		res.Rejected = append(res.Rejected, le)
		slog.Warn("Skipping invalid route table line",
			"source", res.Source,
			"line", n,
			"text", text,
			"error", err,
		)
		return
	}
	res.Entries = append(res.Entries, e)
}

// ParseEntry parses a single "<prefix>,<interface>" line. Host bits set in the
// network address are cleared.
func ParseEntry(text string) (lpm.RouteEntry, error) {
	prefixText, ifaceText, ok := strings.Cut(text, ",")
	if !ok {
		return lpm.RouteEntry{}, ErrMissingComma
	}

	pfx, err := netip.ParsePrefix(strings.TrimSpace(prefixText))
	if err != nil {
		return lpm.RouteEntry{}, err
	}
	if !pfx.Addr().Is4() {
		return lpm.RouteEntry{}, fmt.Errorf("%s: %w", pfx, lpm.ErrNotIPv4)
	}

	iface, err := strconv.Atoi(strings.TrimSpace(ifaceText))
	if err != nil || iface < 0 {
		return lpm.RouteEntry{}, fmt.Errorf("%q: %w", strings.TrimSpace(ifaceText), ErrBadInterface)
	}

	if masked := pfx.Masked(); masked != pfx {
		slog.Debug("Clearing host bits in route table prefix", "prefix", pfx, "network", masked)
		pfx = masked
	}
	return lpm.EntryFromPrefix(pfx, iface)
}

const (
	PolicyFail    = "fail"
	PolicyDefault = "default"
)

// ApplyEmptyPolicy decides what happens to a table without entries. With
// PolicyFail an empty table is an error; with PolicyDefault a 0.0.0.0/0 route to
// interface 0 is synthesized. Non-empty tables are returned unchanged.
func ApplyEmptyPolicy(entries []lpm.RouteEntry, policy string) ([]lpm.RouteEntry, error) {
	switch policy {
	case PolicyFail, PolicyDefault:
	default:
		return nil, fmt.Errorf("%q: %w", policy, ErrUnknownPolicy)
	}

	if len(entries) > 0 {
		return entries, nil
	}
	if policy == PolicyFail {
		return nil, ErrEmptyTable
	}

	def, err := lpm.NewRouteEntry(0, 0, lpm.DefaultInterface)
	if err != nil {
		return nil, err
	}
	slog.Warn("Route table is empty, using default route", "route", def.String())
	return []lpm.RouteEntry{def}, nil
}
