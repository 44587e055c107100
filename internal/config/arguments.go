package config

import (
	"errors"
	"net/netip"

	flag "github.com/spf13/pflag"
	"github.com/tkjaer/rtlookup/internal/tableio"
	"github.com/tkjaer/rtlookup/pkg/lpm"
)

type Args struct {
	TableFile    string
	Destinations []string

	// Lookup
	Engine           string // linear or trie
	EmptyTable       string // fail or default
	DefaultInterface int    // interface reported when nothing matches
	NoResolve        bool
	CompareKernel    bool

	// Output
	Json          bool   // output json to stdout
	JsonFile      string // output json to file while printing text
	ShowTable     bool   // print the loaded table before the results
	HashAlgorithm string // table fingerprint: crc32, sha256
	MetricsFile   string // prometheus textfile output

	// Config file with defaults for flags not given on the command line
	ConfigFile string

	// Logging
	Log      string // log file path, empty means stderr only
	LogLevel string // log level: debug, info, warn, error

	ShowVersion bool
}

func ParseArgs() (Args, error) {
	var args Args

	// Set custom usage message
	flag.Usage = func() {
		println("rtlookup - IPv4 longest prefix match lookup")
		println()
		println("Looks up destinations in a forwarding table and reports the matched")
		println("network, prefix length and egress interface.")
		println()
		println("Usage:")
		println("  rtlookup [OPTIONS] TABLE DESTINATION...")
		println("  rtlookup [OPTIONS] --table TABLE DESTINATION...")
		println()
		println("TABLE holds one '<network>/<prefix>,<interface>' route per line ('-' for stdin,")
		println("'.gz' files are decompressed). DESTINATION is an IPv4 address or hostname;")
		println("a single '-' reads one destination per line from stdin.")
		println()
		println("Examples:")
		println("  rtlookup table.txt 10.1.2.3            # Single lookup")
		println("  rtlookup -J table.txt 10.1.2.3 8.8.8.8 # JSON, one object per lookup")
		println("  rtlookup --show-table table.txt 1.1.1.1")
		println()
		println("Options:")
		flag.PrintDefaults()
	}

	flag.BoolVarP(&args.ShowVersion, "version", "v", false, "Show version information")
	flag.StringVarP(&args.TableFile, "table", "T", "", "Route table file (instead of the TABLE argument)")
	flag.StringVarP(&args.Engine, "engine", "e", lpm.EngineTrie, "Lookup engine: linear or trie")
	flag.StringVar(&args.EmptyTable, "empty-table", tableio.PolicyFail, "Empty table policy: fail, or default (use 0.0.0.0/0 via interface 0)")
	flag.IntVar(&args.DefaultInterface, "default-interface", lpm.DefaultInterface, "Interface reported when no route matches")
	flag.BoolVarP(&args.NoResolve, "no-resolve", "n", false, "Do not resolve hostnames, accept IPv4 addresses only")
	flag.BoolVarP(&args.CompareKernel, "compare-kernel", "k", false, "Also ask the kernel for its route to each destination (Linux); table interfaces must be kernel ifindexes for the mismatch check to be meaningful")
	flag.StringVarP(&args.JsonFile, "json-file", "j", "", "Write JSON output to file (keeps text output)")
	flag.BoolVarP(&args.Json, "json", "J", false, "Write JSON output to stdout (disables text output)")
	flag.BoolVarP(&args.ShowTable, "show-table", "t", false, "Print the loaded route table")
	flag.StringVar(&args.HashAlgorithm, "hash-algorithm", "crc32", "Table fingerprint hash: crc32 or sha256")
	flag.StringVar(&args.MetricsFile, "metrics-file", "", "Write Prometheus metrics to file (textfile collector format)")
	flag.StringVarP(&args.ConfigFile, "config", "c", "", "YAML file with option defaults")
	flag.StringVarP(&args.Log, "log", "l", "", "Diagnostic log file (empty = stderr)")
	flag.StringVar(&args.LogLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	flag.Parse()

	if args.ShowVersion {
		return args, nil
	}

	if args.ConfigFile != "" {
		fc, err := LoadFile(args.ConfigFile)
		if err != nil {
			return args, err
		}
		fc.apply(&args, flag.CommandLine)
	}

	args.TableFile, args.Destinations = splitPositional(args.TableFile, flag.CommandLine.Changed("table"), flag.Args())

	switch {
	case args.TableFile == "":
		return args, errors.New("route table is required")
	case len(args.Destinations) == 0:
		return args, errors.New("destination is required")
	case args.TableFile == "-" && len(args.Destinations) == 1 && args.Destinations[0] == "-":
		return args, errors.New("cannot read both table and destinations from stdin")
	case args.Json && args.JsonFile != "":
		return args, errors.New("cannot use both --json and --json-file")
	case args.HashAlgorithm != "crc32" && args.HashAlgorithm != "sha256":
		return args, errors.New("hash algorithm must be either 'crc32' or 'sha256'")
	case args.Engine != lpm.EngineLinear && args.Engine != lpm.EngineTrie:
		return args, errors.New("engine must be either 'linear' or 'trie'")
	case args.EmptyTable != tableio.PolicyFail && args.EmptyTable != tableio.PolicyDefault:
		return args, errors.New("empty table policy must be either 'fail' or 'default'")
	case args.DefaultInterface < 0:
		return args, errors.New("default interface must not be negative")
	}

	return args, nil
}

// StdinDestinations reports whether destinations are read from stdin
func (a Args) StdinDestinations() bool {
	return len(a.Destinations) == 1 && a.Destinations[0] == "-"
}

// splitPositional separates an optional positional TABLE from the destinations.
// With --table every argument is a destination. A table from the config file is
// only a default: it is replaced by the first argument when at least two are
// given and the first is not an IPv4 address.
func splitPositional(table string, tableFlag bool, pos []string) (string, []string) {
	switch {
	case tableFlag:
		return table, pos
	case table == "":
		if len(pos) == 0 {
			return "", nil
		}
		return pos[0], pos[1:]
	case len(pos) >= 2 && !isIPv4Literal(pos[0]):
		return pos[0], pos[1:]
	default:
		return table, pos
	}
}

func isIPv4Literal(s string) bool {
	ip, err := netip.ParseAddr(s)
	return err == nil && ip.Unmap().Is4()
}
