package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lifelink/lifelink/internal/platform/apperr"
)

func newCtx() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestOK_Envelope(t *testing.T) {
	c, rec := newCtx()
	if err := OK(c, "blood unit retrieved", map[string]string{"id": "u1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var env Envelope
	json.Unmarshal(rec.Body.Bytes(), &env)
	if env.Status != "success" {
		t.Errorf("expected success, got %s", env.Status)
	}
	if env.Message != "blood unit retrieved" {
		t.Errorf("unexpected message: %s", env.Message)
	}
}

func TestError_MapsKind(t *testing.T) {
	c, rec := newCtx()
	if err := Error(c, apperr.NotFound("blood unit not found")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	var env Envelope
	json.Unmarshal(rec.Body.Bytes(), &env)
	if env.Status != "error" {
		t.Errorf("expected error status, got %s", env.Status)
	}
	if env.Message != "blood unit not found" {
		t.Errorf("unexpected message: %s", env.Message)
	}
}

func TestHTTPErrorHandler_HidesInternalDetail(t *testing.T) {
	c, rec := newCtx()
	h := HTTPErrorHandler(zerolog.Nop())

	h(apperr.Internal(errors.New("pg: connection refused")), c)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	var env Envelope
	json.Unmarshal(rec.Body.Bytes(), &env)
	if env.Message != "internal server error" {
		t.Errorf("internal detail leaked: %q", env.Message)
	}
}

func TestHTTPErrorHandler_EchoHTTPError(t *testing.T) {
	c, rec := newCtx()
	h := HTTPErrorHandler(zerolog.Nop())

	h(echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded"), c)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec.Code)
	}
	var env Envelope
	json.Unmarshal(rec.Body.Bytes(), &env)
	if env.Message != "rate limit exceeded" {
		t.Errorf("unexpected message: %s", env.Message)
	}
}
