// Package metrics exposes Prometheus collectors for the storefront server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"storefront/db"
	"storefront/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Collector records HTTP traffic and catalog events. A nil *Collector is
// valid and records nothing.
type Collector struct {
	gatherer prometheus.Gatherer
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	events   *prometheus.CounterVec
}

// New registers the storefront collectors on reg. connectedClients, when
// non-nil, backs a gauge of open real-time connections.
func New(reg *prometheus.Registry, connectedClients func() int) *Collector {
	c := &Collector{
		gatherer: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_events_total",
			Help:      "Catalog events published to real-time clients.",
		}, []string{"event"}),
	}
	reg.MustRegister(c.requests, c.duration, c.events)

	if connectedClients != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "realtime_clients",
			Help:      "Open real-time connections.",
		}, func() float64 { return float64(connectedClients()) }))
	}
	return c
}

// ObserveRequest counts one finished request.
func (c *Collector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// IncEvent counts one published catalog event.
func (c *Collector) IncEvent(name string) {
	if c == nil {
		return
	}
	c.events.WithLabelValues(name).Inc()
}

// Middleware records every request under its route template, so
// /api/products/1 and /api/products/2 share a series.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		c.ObserveRequest(ctx.Request.Method, ctx.FullPath(), ctx.Writer.Status(), time.Since(start))
	}
}

// CountEvents wraps next so every event passing through is counted.
func (c *Collector) CountEvents(next db.Notifier) db.Notifier {
	return db.NotifierFunc(func(event models.Event) {
		c.IncEvent(event.Name)
		if next != nil {
			next.Notify(event)
		}
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
