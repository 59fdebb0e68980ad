package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lifelink/lifelink/internal/platform/auth"
)

// AuditEntry captures who acted on which resource. Blood unit custody and
// request fulfillment are regulated records, so every mutating access is
// logged with the acting principal.
type AuditEntry struct {
	ActorID      string
	ActorKind    string
	ResourceType string
	ResourceID   string
	Action       string // read, create, update, delete
	Path         string
	Method       string
	IPAddress    string
	RequestID    string
	StatusCode   int
	Timestamp    time.Time
}

// AuditRecorder persists audit entries. Decoupled from the middleware so
// tests can provide a mock implementation.
type AuditRecorder interface {
	RecordAccess(entry AuditEntry) error
}

// AuditRecorderFunc is a function adapter for AuditRecorder.
type AuditRecorderFunc func(entry AuditEntry) error

func (f AuditRecorderFunc) RecordAccess(entry AuditEntry) error {
	return f(entry)
}

// Audit intercepts requests under /api/v1/, extracts the authenticated
// principal, and emits a structured access log. If no AuditRecorder is
// provided it falls back to zerolog only.
func Audit(logger zerolog.Logger, recorders ...AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path

			if !strings.HasPrefix(path, "/api/v1/") {
				return next(c)
			}

			// Run the handler first so the response status is known
			err := next(c)

			entry := AuditEntry{
				Timestamp:  time.Now().UTC(),
				Path:       path,
				Method:     req.Method,
				IPAddress:  c.RealIP(),
				StatusCode: c.Response().Status,
				Action:     httpMethodToAction(req.Method),
			}

			if p, ok := auth.PrincipalFromContext(req.Context()); ok {
				entry.ActorID = p.ID.String()
				entry.ActorKind = string(p.Kind)
			}
			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}
			entry.ResourceType, entry.ResourceID = splitResourcePath(path)

			if len(recorders) > 0 && recorders[0] != nil {
				if recErr := recorders[0].RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			logger.Info().
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Str("actor_id", entry.ActorID).
				Str("actor_kind", entry.ActorKind).
				Str("resource_type", entry.ResourceType).
				Str("resource_id", entry.ResourceID).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("resource_access")

			return err
		}
	}
}

func httpMethodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return "read"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// splitResourcePath parses "/api/v1/blood-units/<id>/transfer" into
// ("blood-units", "<id>").
func splitResourcePath(path string) (string, string) {
	segments := strings.Split(strings.TrimPrefix(path, "/api/v1/"), "/")
	resourceType := "unknown"
	resourceID := ""
	if len(segments) > 0 && segments[0] != "" {
		resourceType = segments[0]
	}
	if len(segments) > 1 && segments[1] != "" {
		resourceID = segments[1]
	}
	return resourceType, resourceID
}
