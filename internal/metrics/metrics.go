package metrics

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericogr/gamedash/internal/game"
	"github.com/ericogr/gamedash/internal/logging"
)

// StatsSource reports entity counts.
type StatsSource interface {
	Stats() (game.Stats, error)
}

// Metrics holds the Prometheus collectors of the dashboard server.
type Metrics struct {
	// Subscribers, when set, is read on every scrape.
	Subscribers func() int

	src       StatsSource
	startTime time.Time
	registry  *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	entities        *prometheus.GaugeVec
	exportsTotal    *prometheus.CounterVec
	eventSubs       prometheus.Gauge
	uptimeSeconds   prometheus.Gauge
	goroutines      prometheus.Gauge
}

// New creates the collectors on a private registry.
func New(src StatsSource) *Metrics {
	m := &Metrics{
		src:       src,
		startTime: time.Now(),
		registry:  prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gamedash_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gamedash_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		entities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gamedash_entities",
			Help: "Stored records by kind.",
		}, []string{"kind"}),
		exportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gamedash_exports_total",
			Help: "Game exports by result.",
		}, []string{"result"}),
		eventSubs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gamedash_event_subscribers",
			Help: "Connected event stream subscribers.",
		}),
		uptimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gamedash_uptime_seconds",
			Help: "Server uptime in seconds.",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gamedash_goroutines",
			Help: "Number of active goroutines.",
		}),
	}
	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.entities,
		m.exportsTotal,
		m.eventSubs,
		m.uptimeSeconds,
		m.goroutines,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Middleware records request count and latency. Unmatched routes are
// labelled "unmatched" to keep cardinality bounded.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveExport counts a finished export.
func (m *Metrics) ObserveExport(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.exportsTotal.WithLabelValues(result).Inc()
}

// SetSubscribers records the number of event stream listeners.
func (m *Metrics) SetSubscribers(n int) {
	m.eventSubs.Set(float64(n))
}

// Update refreshes the gauges from current state.
func (m *Metrics) Update() {
	if m.src != nil {
		st, err := m.src.Stats()
		if err != nil {
			logging.Error("failed to read stats", err, nil)
		} else {
			m.entities.WithLabelValues("games").Set(float64(st.Games))
			m.entities.WithLabelValues("assets").Set(float64(st.Assets))
			m.entities.WithLabelValues("npcs").Set(float64(st.NPCs))
			m.entities.WithLabelValues("players").Set(float64(st.Players))
		}
	}
	if m.Subscribers != nil {
		m.SetSubscribers(m.Subscribers())
	}
	m.uptimeSeconds.Set(time.Since(m.startTime).Seconds())
	m.goroutines.Set(float64(runtime.NumGoroutine()))
}

// Handler returns an http.Handler that updates metrics before serving them.
func (m *Metrics) Handler() http.Handler {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.Update()
		h.ServeHTTP(w, r)
	})
}
