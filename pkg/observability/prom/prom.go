// Package prom implements the observability hooks with Prometheus metrics.
//
// Metrics live in a private registry. A CLI process is short-lived, so
// instead of serving /metrics the collector writes the registry to a file in
// the node_exporter textfile format with [Collector.WriteTextfile].
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/blockstack/pkg/observability"
)

const namespace = "blockstack"

// Collector records project and store events.
type Collector struct {
	reg *prometheus.Registry

	generateTotal    *prometheus.CounterVec
	generateDuration *prometheus.HistogramVec
	generateBytes    *prometheus.CounterVec
	snapshotTotal    *prometheus.CounterVec
	snapshotDuration *prometheus.HistogramVec
	snapshotBlocks   *prometheus.GaugeVec
	dropsTotal       *prometheus.CounterVec
	storeTotal       *prometheus.CounterVec
	storeBytes       *prometheus.CounterVec
	storeDuration    *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Collector{
		reg: reg,
		generateTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generate_total",
			Help:      "Code generation runs by language and result.",
		}, []string{"language", "result"}),
		generateDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generate_duration_seconds",
			Help:      "Code generation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"language"}),
		generateBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generate_bytes_total",
			Help:      "Bytes of generated code.",
		}, []string{"language"}),
		snapshotTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_total",
			Help:      "Snapshot operations by kind and result.",
		}, []string{"op", "result"}),
		snapshotDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_duration_seconds",
			Help:      "Snapshot operation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"op"}),
		snapshotBlocks: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_blocks",
			Help:      "Blocks in the most recent snapshot operation.",
		}, []string{"op"}),
		dropsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drops_total",
			Help:      "Finished drag sessions by final state and snap target.",
		}, []string{"state", "target"}),
		storeTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Store reads and writes by backend and result.",
		}, []string{"backend", "op", "result"}),
		storeBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_bytes_total",
			Help:      "Bytes moved to and from the store.",
		}, []string{"backend", "op"}),
		storeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_duration_seconds",
			Help:      "Store operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "op"}),
	}
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// WriteTextfile writes every metric to path in the text exposition format.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.reg)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (c *Collector) OnGenerateStart(context.Context, string, int) {}

func (c *Collector) OnGenerateComplete(_ context.Context, lang string, size int, d time.Duration, err error) {
	c.generateTotal.WithLabelValues(lang, result(err)).Inc()
	c.generateDuration.WithLabelValues(lang).Observe(d.Seconds())
	c.generateBytes.WithLabelValues(lang).Add(float64(size))
}

func (c *Collector) OnSnapshotStart(context.Context, string) {}

func (c *Collector) OnSnapshotComplete(_ context.Context, op string, blocks int, d time.Duration, err error) {
	c.snapshotTotal.WithLabelValues(op, result(err)).Inc()
	c.snapshotDuration.WithLabelValues(op).Observe(d.Seconds())
	if err == nil {
		c.snapshotBlocks.WithLabelValues(op).Set(float64(blocks))
	}
}

func (c *Collector) OnDrop(_ context.Context, state, target string) {
	c.dropsTotal.WithLabelValues(state, target).Inc()
}

func (c *Collector) OnStoreRead(_ context.Context, backend string, size int, found bool, d time.Duration, err error) {
	res := result(err)
	if err == nil && !found {
		res = "miss"
	}
	c.storeTotal.WithLabelValues(backend, "read", res).Inc()
	c.storeBytes.WithLabelValues(backend, "read").Add(float64(size))
	c.storeDuration.WithLabelValues(backend, "read").Observe(d.Seconds())
}

func (c *Collector) OnStoreWrite(_ context.Context, backend string, size int, d time.Duration, err error) {
	c.storeTotal.WithLabelValues(backend, "write", result(err)).Inc()
	c.storeBytes.WithLabelValues(backend, "write").Add(float64(size))
	c.storeDuration.WithLabelValues(backend, "write").Observe(d.Seconds())
}

var (
	_ observability.ProjectHooks = (*Collector)(nil)
	_ observability.StoreHooks   = (*Collector)(nil)
)
