// Package metrics exposes prometheus instrumentation for the HTTP surface
// and the domain counters the operations team watches (units registered,
// transfers, request status transitions).
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	UnitsRegistered    prometheus.Counter
	UnitTransfers      *prometheus.CounterVec
	UnitStatusChanges  *prometheus.CounterVec
	RequestTransitions *prometheus.CounterVec
	InventoryRebuilds  prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lifelink_http_requests_total",
			Help: "HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lifelink_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		UnitsRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lifelink_blood_units_registered_total",
			Help: "Blood units registered.",
		}),
		UnitTransfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lifelink_blood_unit_transfers_total",
			Help: "Blood unit transfers by destination kind.",
		}, []string{"to_kind"}),
		UnitStatusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lifelink_blood_unit_status_changes_total",
			Help: "Blood unit status changes by new status.",
		}, []string{"status"}),
		RequestTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lifelink_blood_request_transitions_total",
			Help: "Blood request status transitions by new status.",
		}, []string{"status"}),
		InventoryRebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lifelink_inventory_rebuilds_total",
			Help: "Center inventory recomputations.",
		}),
	}

	reg.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.UnitsRegistered,
		m.UnitTransfers,
		m.UnitStatusChanges,
		m.RequestTransitions,
		m.InventoryRebuilds,
	)

	return m
}

// Middleware records per-request counters and latency, labeled by the echo
// route pattern so path params do not blow up cardinality.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			method := c.Request().Method
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
			m.requestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// Handler serves the /metrics endpoint for this registry.
func (m *Metrics) Handler() echo.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return echo.WrapHandler(h)
}
