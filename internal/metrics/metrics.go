// Package metrics exposes sync and cache behavior as Prometheus metrics.
//
// Exposed series:
//
//	talentsync_sync_attempts_total{outcome}       sync attempts by outcome
//	talentsync_sync_duration_seconds{outcome}     provider round trip of one attempt
//	talentsync_background_tasks_in_flight         dispatcher tasks currently running
//	talentsync_background_tasks_total{task,result} finished dispatcher tasks
//	talentsync_cache_requests_total{prefix,result} cache lookups by key namespace
package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/honeycarbs/talentsync/internal/cache"
	tsync "github.com/honeycarbs/talentsync/internal/sync"
)

const namespace = "talentsync"

var (
	_ cache.Recorder = (*Collector)(nil)
	_ tsync.Recorder = (*Collector)(nil)
)

// Collector records sync, dispatcher and cache metrics
type Collector struct {
	syncAttempts  *prometheus.CounterVec
	syncDuration  *prometheus.HistogramVec
	tasksInFlight prometheus.Gauge
	tasks         *prometheus.CounterVec
	cacheRequests *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewCollector creates a Collector registered with reg. A nil reg uses a fresh registry.
func NewCollector(reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	c := &Collector{
		syncAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_attempts_total",
			Help:      "Talent sync attempts by outcome",
		}, []string{"outcome"}),
		syncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of one talent sync attempt in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		tasksInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "background_tasks_in_flight",
			Help:      "Background tasks currently running",
		}),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "background_tasks_total",
			Help:      "Finished background tasks by task name and result",
		}, []string{"task", "result"}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by key prefix and result",
		}, []string{"prefix", "result"}),
		gatherer: reg,
	}

	reg.MustRegister(
		c.syncAttempts,
		c.syncDuration,
		c.tasksInFlight,
		c.tasks,
		c.cacheRequests,
	)
	return c
}

func (c *Collector) SyncCompleted(outcome tsync.Outcome, elapsed time.Duration) {
	c.syncAttempts.WithLabelValues(string(outcome)).Inc()
	c.syncDuration.WithLabelValues(string(outcome)).Observe(elapsed.Seconds())
}

func (c *Collector) TaskStarted(string) {
	c.tasksInFlight.Inc()
}

func (c *Collector) TaskFinished(name string, err error, panicked bool) {
	c.tasksInFlight.Dec()

	result := "ok"
	switch {
	case panicked:
		result = "panic"
	case err != nil:
		result = "error"
	}
	c.tasks.WithLabelValues(name, result).Inc()
}

func (c *Collector) CacheHit(prefix string) {
	c.cacheRequests.WithLabelValues(label(prefix), "hit").Inc()
}

func (c *Collector) CacheMiss(prefix string) {
	c.cacheRequests.WithLabelValues(label(prefix), "miss").Inc()
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// label drops the trailing separator so "talents:" reads as "talents"
func label(prefix string) string {
	p := strings.TrimSuffix(prefix, ":")
	if p == "" {
		return "other"
	}
	return p
}
