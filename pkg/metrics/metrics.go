// Package metrics records codec throughput with Prometheus collectors. A
// command-line run has no scrape endpoint, so the registry is written out in
// the text exposition format (suitable for node_exporter's textfile collector).
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation labels.
const (
	OpCompress   = "compress"
	OpDecompress = "decompress"
)

// Recorder holds all tz metrics. A nil *Recorder discards everything.
type Recorder struct {
	reg *prometheus.Registry

	bytesIn           *prometheus.CounterVec
	bytesOut          *prometheus.CounterVec
	chunksTotal       *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	archiveEntries    *prometheus.CounterVec
	operationErrors   *prometheus.CounterVec
}

// New creates a Recorder backed by its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		reg: reg,
		bytesIn: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tz_bytes_in_total",
				Help: "Bytes read by codec operations",
			},
			[]string{"op"},
		),
		bytesOut: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tz_bytes_out_total",
				Help: "Bytes produced by codec operations",
			},
			[]string{"op"},
		),
		chunksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tz_chunks_total",
				Help: "Chunks processed, by execution path",
			},
			[]string{"op", "path"},
		),
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tz_operation_duration_seconds",
				Help:    "Duration of whole compress or decompress operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		archiveEntries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tz_archive_entries_total",
				Help: "Directory archive entries written or restored",
			},
			[]string{"kind"},
		),
		operationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tz_operation_errors_total",
				Help: "Failed compress or decompress operations",
			},
			[]string{"op"},
		),
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// ObserveOperation records one finished operation.
func (r *Recorder) ObserveOperation(op string, in, out int, d time.Duration) {
	if r == nil {
		return
	}
	r.bytesIn.WithLabelValues(op).Add(float64(in))
	r.bytesOut.WithLabelValues(op).Add(float64(out))
	r.operationDuration.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveChunks records how many chunks an operation was split into. path is
// "sequential" or "parallel".
func (r *Recorder) ObserveChunks(op, path string, n int) {
	if r == nil {
		return
	}
	r.chunksTotal.WithLabelValues(op, path).Add(float64(n))
}

// ObserveEntries records archive entries of the given kind ("dir" or "file").
func (r *Recorder) ObserveEntries(kind string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.archiveEntries.WithLabelValues(kind).Add(float64(n))
}

// ObserveError records a failed operation.
func (r *Recorder) ObserveError(op string) {
	if r == nil {
		return
	}
	r.operationErrors.WithLabelValues(op).Inc()
}

// WriteFile writes all metrics to path in the Prometheus text format.
func (r *Recorder) WriteFile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
