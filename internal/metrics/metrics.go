// Package metrics collects Prometheus metrics for the paging engine and
// exports them as a node_exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/asteroid-belt/pantry/internal/paging"
)

// Collector records engine and cache metrics.
// It implements paging.Observer and cleanup.Recorder.
type Collector struct {
	pagesLoaded    *prometheus.CounterVec
	pageFailures   *prometheus.CounterVec
	recordsServed  *prometheus.CounterVec
	pageLatency    *prometheus.HistogramVec
	recipesEvicted prometheus.Counter
	online         prometheus.Gauge
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		pagesLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pantry_pages_loaded_total",
			Help: "Pages served, by feed and source.",
		}, []string{"load_type", "source"}),
		pageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pantry_page_failures_total",
			Help: "Failed page loads, by feed and error kind.",
		}, []string{"load_type", "kind"}),
		recordsServed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pantry_records_served_total",
			Help: "Recipes returned in pages, by source.",
		}, []string{"source"}),
		pageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pantry_page_latency_seconds",
			Help:    "Page load latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		recipesEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pantry_recipes_evicted_total",
			Help: "Cached recipes removed by eviction.",
		}),
		online: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pantry_online",
			Help: "1 when the network is considered reachable.",
		}),
	}

	reg.MustRegister(
		c.pagesLoaded,
		c.pageFailures,
		c.recordsServed,
		c.pageLatency,
		c.recipesEvicted,
		c.online,
	)

	return c
}

// PageLoaded records a served page.
func (c *Collector) PageLoaded(loadType paging.Variant, source paging.Source, records int, d time.Duration) {
	c.pagesLoaded.WithLabelValues(loadType.String(), string(source)).Inc()
	c.recordsServed.WithLabelValues(string(source)).Add(float64(records))
	c.pageLatency.WithLabelValues(string(source)).Observe(d.Seconds())
}

// PageFailed records a failed page load.
func (c *Collector) PageFailed(loadType paging.Variant, kind paging.Kind) {
	c.pageFailures.WithLabelValues(loadType.String(), kind.String()).Inc()
}

// RecordEvicted records evicted cache rows.
func (c *Collector) RecordEvicted(count int64) {
	c.recipesEvicted.Add(float64(count))
}

// SetOnline records the connectivity state.
func (c *Collector) SetOnline(online bool) {
	if online {
		c.online.Set(1)
		return
	}
	c.online.Set(0)
}

// WriteTextfile writes every metric gathered from g to path in the text
// exposition format. The write is atomic.
func WriteTextfile(g prometheus.Gatherer, path string) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
