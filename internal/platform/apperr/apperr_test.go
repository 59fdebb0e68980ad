package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("missing blood group"), http.StatusBadRequest},
		{InvalidState("cannot transfer a unit that is not available"), http.StatusBadRequest},
		{Auth("missing authorization header"), http.StatusUnauthorized},
		{Forbidden("ngo role required"), http.StatusForbidden},
		{NotFound("blood unit not found"), http.StatusNotFound},
		{Conflict("blood unit was modified concurrently"), http.StatusConflict},
		{Internal(errors.New("pg down")), http.StatusInternalServerError},
		{errors.New("plain error"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestMessageOf_HidesInternalDetail(t *testing.T) {
	err := Internal(errors.New("connection refused to 10.0.0.5:5432"))
	if msg := MessageOf(err); msg != "internal server error" {
		t.Errorf("expected generic message, got %q", msg)
	}
}

func TestMessageOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("advance status: %w", NotFound("blood request not found"))
	if msg := MessageOf(err); msg != "blood request not found" {
		t.Errorf("expected wrapped message to surface, got %q", msg)
	}
	if !IsKind(err, KindNotFound) {
		t.Error("expected wrapped error to keep its kind")
	}
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := Internal(inner)
	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to reach wrapped error")
	}
}
