package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/soudan/casebook/internal/platform/apperr"
	"github.com/soudan/casebook/internal/platform/auth"
)

// AuditEntry records who changed or exported which record.
type AuditEntry struct {
	StaffID    int64
	Username   string
	Resource   string
	ResourceID int64
	Action     string // create, update, delete, export
	Path       string
	Method     string
	IPAddress  string
	RequestID  string
	StatusCode int
	Timestamp  time.Time
}

// Audit emits one structured log line per mutating or exporting request
// under /api/v1. Plain reads are not audited.
func Audit(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			action := auditAction(req.Method, req.URL.Path)
			if action == "" || !strings.HasPrefix(req.URL.Path, "/api/v1/") {
				return next(c)
			}

			err := next(c)

			entry := BuildAuditEntry(c, action)
			if err != nil {
				entry.StatusCode = apperr.HTTPStatus(err)
			}
			evt := logger.Info()
			if err != nil || entry.StatusCode >= http.StatusBadRequest {
				evt = logger.Warn()
			}
			evt.
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Int64("staff_id", entry.StaffID).
				Str("username", entry.Username).
				Str("resource", entry.Resource).
				Int64("resource_id", entry.ResourceID).
				Str("action", entry.Action).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("record_access")

			return err
		}
	}
}

// BuildAuditEntry extracts the audit fields from a finished request.
func BuildAuditEntry(c echo.Context, action string) AuditEntry {
	req := c.Request()
	ctx := req.Context()
	rid, _ := c.Get("request_id").(string)
	resource, id := resourceFromPath(req.URL.Path)
	return AuditEntry{
		StaffID:    auth.StaffIDFromContext(ctx),
		Username:   auth.UsernameFromContext(ctx),
		Resource:   resource,
		ResourceID: id,
		Action:     action,
		Path:       req.URL.Path,
		Method:     req.Method,
		IPAddress:  c.RealIP(),
		RequestID:  rid,
		StatusCode: c.Response().Status,
		Timestamp:  time.Now().UTC(),
	}
}

func auditAction(method, path string) string {
	export := strings.HasSuffix(path, "/pdf") || strings.HasSuffix(path, "/xlsx")
	switch method {
	case http.MethodPost:
		if export {
			return "export"
		}
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	case http.MethodGet:
		if export {
			return "export"
		}
	}
	return ""
}

// resourceFromPath returns the first segment after /api/v1/ and the id that
// follows it, if numeric.
//
//	/api/v1/plans/12/approve -> plans, 12
//	/api/v1/users            -> users, 0
func resourceFromPath(path string) (string, int64) {
	segments := strings.Split(strings.TrimPrefix(path, "/api/v1/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return "unknown", 0
	}
	var id int64
	if len(segments) > 1 {
		id, _ = strconv.ParseInt(segments[1], 10, 64)
	}
	return segments[0], id
}
