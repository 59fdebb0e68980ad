package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_CountsRequests(t *testing.T) {
	m := New()
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/blood-units", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/blood-units")

	h := m.Middleware()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/api/v1/blood-units", "200"))
	if got != 1 {
		t.Errorf("expected 1 request counted, got %v", got)
	}
}

func TestMiddleware_ErrorStatus(t *testing.T) {
	m := New()
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/blood-requests", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/blood-requests")

	h := m.Middleware()(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "bad")
	})
	_ = h(c)

	got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("POST", "/api/v1/blood-requests", "400"))
	if got != 1 {
		t.Errorf("expected 400 counted, got %v", got)
	}
}

func TestDomainCounters(t *testing.T) {
	m := New()
	m.UnitsRegistered.Inc()
	m.UnitTransfers.WithLabelValues("hospital").Inc()
	m.RequestTransitions.WithLabelValues("completed").Inc()

	if got := testutil.ToFloat64(m.UnitsRegistered); got != 1 {
		t.Errorf("expected 1 unit registered, got %v", got)
	}
	if got := testutil.ToFloat64(m.UnitTransfers.WithLabelValues("hospital")); got != 1 {
		t.Errorf("expected 1 hospital transfer, got %v", got)
	}
}
