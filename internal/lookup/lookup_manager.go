package lookup

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/netip"
	"os"
	"strings"

	"github.com/tkjaer/rtlookup/internal/config"
	"github.com/tkjaer/rtlookup/internal/metrics"
	"github.com/tkjaer/rtlookup/internal/output"
	"github.com/tkjaer/rtlookup/internal/shared"
	"github.com/tkjaer/rtlookup/internal/tableio"
	"github.com/tkjaer/rtlookup/internal/version"
	"github.com/tkjaer/rtlookup/pkg/lpm"
	"github.com/tkjaer/rtlookup/pkg/resolve"
	"github.com/tkjaer/rtlookup/pkg/route"
)

// ErrLookupFailed is returned by Run when at least one destination could not be
// looked up. The remaining destinations are still processed.
var ErrLookupFailed = errors.New("one or more lookups failed")

var (
	// Variables for mocking in tests
	kernelRoute           = route.Get
	stdout      io.Writer = os.Stdout
	stdin       io.Reader = os.Stdin
)

type resolver interface {
	Resolve(ctx context.Context, destination string) (netip.Addr, error)
}

// LookupManager owns the route table for one run and answers lookups for every
// requested destination
type LookupManager struct {
	engine     lpm.Engine
	engineName string
	tableHash  string

	destinations  []string
	fromStdin     bool
	showTable     bool
	compareKernel bool
	metricsFile   string

	resolver resolver
	outputs  *output.OutputManager
	metrics  *metrics.Metrics

	ctx    context.Context
	cancel context.CancelFunc
}

// NewLookupManager loads the route table and prepares outputs
func NewLookupManager(a config.Args) (*LookupManager, error) {
	m := metrics.New()
	m.BuildInfo.WithLabelValues(version.Version, version.GitCommit, version.BuildDate).Set(1)

	res, err := tableio.Load(a.TableFile)
	if err != nil {
		return nil, err
	}
	m.RejectedLines.Add(float64(len(res.Rejected)))

	entries, err := tableio.ApplyEmptyPolicy(res.Entries, a.EmptyTable)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", res.Source, err)
	}

	engine, err := lpm.NewEngine(a.Engine, entries, lpm.WithDefaultInterface(a.DefaultInterface))
	if err != nil {
		return nil, err
	}
	m.TableEntries.Set(float64(engine.Len()))

	lm := &LookupManager{
		engine:        engine,
		engineName:    a.Engine,
		tableHash:     shared.TableHash(entries, a.HashAlgorithm),
		destinations:  a.Destinations,
		fromStdin:     a.StdinDestinations(),
		showTable:     a.ShowTable,
		compareKernel: a.CompareKernel,
		metricsFile:   a.MetricsFile,
		resolver:      resolve.NewResolver(a.NoResolve),
		metrics:       m,
	}
	lm.ctx, lm.cancel = context.WithCancel(context.Background())
	if lm.outputs, err = newOutputs(a); err != nil {
		return nil, err
	}

	slog.Info("Route table ready",
		"source", res.Source,
		"entries", engine.Len(),
		"rejected", len(res.Rejected),
		"engine", a.Engine,
		"table_hash", lm.tableHash,
	)
	return lm, nil
}

func newOutputs(a config.Args) (*output.OutputManager, error) {
	om := &output.OutputManager{}
	switch {
	case a.Json:
		o, err := output.NewJSONOutput("")
		if err != nil {
			return nil, err
		}
		om.Register(o)
	case a.JsonFile != "":
		o, err := output.NewJSONOutput(a.JsonFile)
		if err != nil {
			return nil, err
		}
		om.Register(o)
		om.Register(output.NewTextOutput(stdout))
	default:
		om.Register(output.NewTextOutput(stdout))
	}
	return om, nil
}

// Run looks up every destination. It returns early once Stop is called.
func (lm *LookupManager) Run() (err error) {
	ctx := lm.ctx
	defer func() {
		if cerr := lm.outputs.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output: %w", cerr)
		}
		if lm.metricsFile != "" {
			if merr := lm.metrics.WriteFile(lm.metricsFile); merr != nil && err == nil {
				err = fmt.Errorf("failed to write metrics: %w", merr)
			}
		}
	}()

	if lm.showTable {
		output.RenderTable(stdout, lm.engine.Entries())
	}

	failed := 0
	process := func(dest string) {
		rec, err := lm.lookup(ctx, dest)
		if err != nil {
			failed++
			lm.metrics.LookupErrors.Inc()
			slog.Error("Lookup failed", "destination", dest, "error", err)
			return
		}
		lm.outputs.CompleteLookup(rec)
	}

	if lm.fromStdin {
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if dest := strings.TrimSpace(scanner.Text()); dest != "" && !strings.HasPrefix(dest, "#") {
				process(dest)
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read destinations: %w", err)
		}
	} else {
		for _, dest := range lm.destinations {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			process(dest)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of the destinations: %w", failed, ErrLookupFailed)
	}
	return nil
}

// lookup resolves dest and runs it through the engine
func (lm *LookupManager) lookup(ctx context.Context, dest string) (*shared.LookupRecord, error) {
	ip, err := lm.resolver.Resolve(ctx, dest)
	if err != nil {
		return nil, err
	}
	dst, err := lpm.AddrToUint32(ip)
	if err != nil {
		return nil, err
	}

	res := lm.engine.Lookup(dst)
	lm.metrics.ObserveLookup(lm.engineName, res.Matched)

	rec := shared.NewLookupRecord(dest, ip.String(), res)
	rec.Engine = lm.engineName
	rec.TableHash = lm.tableHash
	rec.TableEntries = lm.engine.Len()

	slog.Debug("Lookup complete",
		"destination", dest,
		"ip", ip,
		"network", rec.MatchedPrefix(),
		"interface", res.Interface,
		"matched", res.Matched,
	)

	if lm.compareKernel {
		lm.annotateKernelRoute(ip, rec)
	}
	return rec, nil
}

// annotateKernelRoute adds the kernel's choice of egress interface. Failures are
// logged and never fail the lookup itself. The table's interface numbers are
// compared with kernel ifindexes, so a mismatch only means something for tables
// written with ifindexes.
func (lm *LookupManager) annotateKernelRoute(ip netip.Addr, rec *shared.LookupRecord) {
	kr, err := kernelRoute(ip)
	if err != nil {
		slog.Warn("Kernel route lookup failed", "destination", ip, "error", err)
		return
	}
	rec.KernelInterface = kr.InterfaceName()
	rec.KernelIfIndex = kr.InterfaceIndex()

	if rec.KernelIfIndex != rec.Interface {
		rec.KernelMismatch = true
		lm.metrics.KernelMismatch.Inc()
		slog.Warn("Kernel uses a different egress interface",
			"destination", ip,
			"interface", rec.Interface,
			"kernel_interface", rec.KernelInterface,
			"kernel_ifindex", rec.KernelIfIndex,
		)
	}
}

// Stop cancels a running batch. Outputs are still flushed by Run.
func (lm *LookupManager) Stop() {
	lm.cancel()
}
