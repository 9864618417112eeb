package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cityshops/internal/common"

	"github.com/labstack/echo/v4"
)

// AuditMiddleware writes one structured log record per state-changing or
// failed request, tagged with the caller when known.
type AuditMiddleware struct {
	logger *slog.Logger
}

func NewAuditMiddleware(logger *slog.Logger) *AuditMiddleware {
	return &AuditMiddleware{logger: logger.With("component", "audit")}
}

// AuditRequest audits HTTP requests. With detailed set, query parameters
// and sanitized headers are included.
func (m *AuditMiddleware) AuditRequest(detailed bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			req := c.Request()
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			if !m.shouldLog(req.Method, c.Path(), status) {
				return err
			}

			attrs := []any{
				"method", req.Method,
				"path", c.Path(),
				"status", status,
				"ip", c.RealIP(),
				"user_agent", req.UserAgent(),
				"latency_ms", time.Since(start).Milliseconds(),
			}
			if principal, ok := common.GetPrincipalFromContext(req.Context()); ok {
				attrs = append(attrs, "user_id", principal.UserID, "role", principal.Role)
			}
			if detailed {
				attrs = append(attrs, "query_params", c.QueryParams(), "headers", sanitizeHeaders(req.Header))
			}
			if err != nil {
				attrs = append(attrs, "error", err.Error())
			}

			m.logger.InfoContext(req.Context(), "http request", attrs...)
			return err
		}
	}
}

// shouldLog keeps writes and failures; reads that succeeded and health
// probes are skipped.
func (m *AuditMiddleware) shouldLog(method, path string, status int) bool {
	if strings.HasPrefix(path, "/health") {
		return false
	}
	if status >= http.StatusBadRequest {
		return true
	}
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// sanitizeHeaders removes sensitive headers before logging
func sanitizeHeaders(headers http.Header) map[string]any {
	sanitized := make(map[string]any, len(headers))
	for key, values := range headers {
		if isSensitiveHeader(key) {
			sanitized[key] = "[REDACTED]"
			continue
		}
		sanitized[key] = values
	}
	return sanitized
}

func isSensitiveHeader(header string) bool {
	switch strings.ToLower(header) {
	case "authorization", "cookie", "x-api-key", "x-auth-token", "proxy-authorization":
		return true
	}
	return false
}
