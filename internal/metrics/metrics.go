package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects per-run counters for a lookup session. Each run uses its own
// registry so the result can be written out as a textfile-collector file.
type Metrics struct {
	Registry *prometheus.Registry

	Lookups        *prometheus.CounterVec
	LookupErrors   prometheus.Counter
	TableEntries   prometheus.Gauge
	RejectedLines  prometheus.Counter
	KernelMismatch prometheus.Counter
	BuildInfo      *prometheus.GaugeVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		Lookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rtlookup_lookups_total",
			Help: "Total number of route lookups by result (matched or fallback).",
		}, []string{"engine", "result"}),
		LookupErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "rtlookup_lookup_errors_total",
			Help: "Destinations that could not be parsed or resolved.",
		}),
		TableEntries: f.NewGauge(prometheus.GaugeOpts{
			Name: "rtlookup_table_entries",
			Help: "Number of entries in the loaded route table.",
		}),
		RejectedLines: f.NewCounter(prometheus.CounterOpts{
			Name: "rtlookup_table_rejected_lines_total",
			Help: "Route table lines skipped because they failed to parse.",
		}),
		KernelMismatch: f.NewCounter(prometheus.CounterOpts{
			Name: "rtlookup_kernel_mismatch_total",
			Help: "Lookups where the kernel chose a different egress interface.",
		}),
		BuildInfo: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rtlookup_build_info",
			Help: "Build information of rtlookup.",
		}, []string{"version", "commit", "date"}),
	}
}

// ObserveLookup counts one lookup
func (m *Metrics) ObserveLookup(engine string, matched bool) {
	result := "fallback"
	if matched {
		result = "matched"
	}
	m.Lookups.WithLabelValues(engine, result).Inc()
}

// WriteFile writes all metrics in the Prometheus text format. The file is
// written atomically so a node_exporter textfile collector never sees a
// partial file.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
