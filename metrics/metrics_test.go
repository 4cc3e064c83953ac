package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/db"
	"storefront/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric %q not found", name)
	return nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, l := range m.GetLabel() {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}

func TestCollector_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg, nil)

	c.ObserveRequest(http.MethodGet, "/api/products", http.StatusOK, 20*time.Millisecond)
	c.ObserveRequest(http.MethodGet, "/api/products", http.StatusOK, 10*time.Millisecond)
	c.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	requests := gather(t, reg, "storefront_http_requests_total")
	require.Len(t, requests.GetMetric(), 2)
	for _, m := range requests.GetMetric() {
		switch labelValue(m, "route") {
		case "/api/products":
			assert.Equal(t, "200", labelValue(m, "status"))
			assert.Equal(t, 2.0, m.GetCounter().GetValue())
		case "unmatched":
			assert.Equal(t, "404", labelValue(m, "status"))
			assert.Equal(t, 1.0, m.GetCounter().GetValue())
		default:
			t.Errorf("unexpected route label %q", labelValue(m, "route"))
		}
	}

	duration := gather(t, reg, "storefront_http_request_duration_seconds")
	for _, m := range duration.GetMetric() {
		if labelValue(m, "route") == "/api/products" {
			assert.Equal(t, uint64(2), m.GetHistogram().GetSampleCount())
			assert.InDelta(t, 0.03, m.GetHistogram().GetSampleSum(), 0.0001)
		}
	}
}

func TestCollector_CountEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg, nil)

	var delivered []string
	notifier := c.CountEvents(db.NotifierFunc(func(e models.Event) { delivered = append(delivered, e.Name) }))
	notifier.Notify(models.ProductDeleted(1))
	notifier.Notify(models.ProductDeleted(2))
	notifier.Notify(models.ProductsUpdated(nil))

	assert.Equal(t, []string{models.EventProductDeleted, models.EventProductDeleted, models.EventProductsUpdated}, delivered)

	events := gather(t, reg, "storefront_catalog_events_total")
	counts := map[string]float64{}
	for _, m := range events.GetMetric() {
		counts[labelValue(m, "event")] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{
		models.EventProductDeleted:  2,
		models.EventProductsUpdated: 1,
	}, counts)

	// A nil downstream notifier only counts.
	c.CountEvents(nil).Notify(models.ProductDeleted(3))
}

func TestCollector_ClientGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	clients := 3
	New(reg, func() int { return clients })

	gauge := gather(t, reg, "storefront_realtime_clients")
	assert.Equal(t, 3.0, gauge.GetMetric()[0].GetGauge().GetValue())

	clients = 1
	gauge = gather(t, reg, "storefront_realtime_clients")
	assert.Equal(t, 1.0, gauge.GetMetric()[0].GetGauge().GetValue())
}

func TestCollector_NilIsSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		c.IncEvent(models.EventProductAdded)
		c.CountEvents(nil).Notify(models.ProductDeleted(1))
	})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCollector_MiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	c := New(reg, nil)

	router := gin.New()
	router.Use(c.Middleware())
	router.GET("/api/products/:id", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(c.Handler()))

	for _, path := range []string{"/api/products/1", "/api/products/2", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)

	assert.Contains(t, text, `storefront_http_requests_total{method="GET",route="/api/products/:id",status="200"} 2`)
	assert.Contains(t, text, `storefront_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	assert.False(t, strings.Contains(text, "/api/products/1"), "concrete paths must not become labels")
}
