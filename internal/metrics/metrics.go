// Package metrics collects Prometheus metrics for mining runs.
//
// A run is a short-lived batch process, so metrics are written to a
// node-exporter textfile at the end of the run instead of being scraped.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "goapriori"

// Collector owns a private registry and the mining metrics registered on it.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	oracleQueries  *prometheus.CounterVec
	oracleDuration prometheus.Histogram
	cacheLookups   *prometheus.CounterVec
	candidates     *prometheus.CounterVec
	frequent       *prometheus.CounterVec
	rules          prometheus.Counter
	runDuration    prometheus.Gauge
	totalRows      prometheus.Gauge
}

// NewCollector creates a collector with all metrics registered.
func NewCollector(job string) *Collector {
	labels := prometheus.Labels{"job_name": job}

	c := &Collector{
		registry: prometheus.NewRegistry(),
		oracleQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "oracle_queries_total",
			Help:        "Support count queries sent to the dataset store.",
			ConstLabels: labels,
		}, []string{"status"}),
		oracleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "oracle_query_duration_seconds",
			Help:        "Latency of support count queries.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "oracle_cache_lookups_total",
			Help:        "Support count cache lookups by result.",
			ConstLabels: labels,
		}, []string{"result"}),
		candidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "candidates_total",
			Help:        "Candidate itemsets evaluated per lattice level.",
			ConstLabels: labels,
		}, []string{"level"}),
		frequent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "frequent_itemsets_total",
			Help:        "Itemsets meeting the support threshold per lattice level.",
			ConstLabels: labels,
		}, []string{"level"}),
		rules: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "rules_total",
			Help:        "Association rules meeting the confidence threshold.",
			ConstLabels: labels,
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "run_duration_seconds",
			Help:        "Wall time of the last mining run.",
			ConstLabels: labels,
		}),
		totalRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "dataset_rows",
			Help:        "Rows in the dataset snapshot of the last run.",
			ConstLabels: labels,
		}),
	}

	c.registry.MustRegister(
		c.oracleQueries,
		c.oracleDuration,
		c.cacheLookups,
		c.candidates,
		c.frequent,
		c.rules,
		c.runDuration,
		c.totalRows,
	)
	return c
}

// Registry exposes the underlying registry as a Gatherer.
func (c *Collector) Registry() prometheus.Gatherer {
	return c.registry
}

// QueryObserved records one oracle query.
func (c *Collector) QueryObserved(d time.Duration, err error) {
	if c == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.oracleQueries.WithLabelValues(status).Inc()
	c.oracleDuration.Observe(d.Seconds())
}

// CacheLookup records a cache hit or miss.
func (c *Collector) CacheLookup(hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(result).Inc()
}

// LevelObserved records the candidate and frequent counts of one level.
func (c *Collector) LevelObserved(level, candidates, frequent int) {
	if c == nil {
		return
	}
	l := strconv.Itoa(level)
	c.candidates.WithLabelValues(l).Add(float64(candidates))
	c.frequent.WithLabelValues(l).Add(float64(frequent))
}

// RulesObserved records the number of emitted rules.
func (c *Collector) RulesObserved(n int) {
	if c == nil {
		return
	}
	c.rules.Add(float64(n))
}

// RunObserved records run-level gauges.
func (c *Collector) RunObserved(totalRows int64, d time.Duration) {
	if c == nil {
		return
	}
	c.totalRows.Set(float64(totalRows))
	c.runDuration.Set(d.Seconds())
}

// WriteTextfile writes the current metric values in the Prometheus text
// format. The write is atomic (temp file + rename).
func (c *Collector) WriteTextfile(path string) error {
	if c == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, c.registry)
}
