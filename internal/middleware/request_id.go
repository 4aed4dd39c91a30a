package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// TraceIDHeader carries the trace ID; an inbound value is propagated so
	// callers can correlate across the marketplace services
	TraceIDHeader = "X-Trace-ID"
	// TraceIDContextKey is the context key the trace ID is stored under
	TraceIDContextKey = "trace_id"
)

// RequestID assigns every request a trace ID, reusing the caller's when one
// arrives in the header, and echoes it back in the response
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()

			traceID := req.Header.Get(TraceIDHeader)
			if traceID == "" {
				traceID = uuid.New().String()
			}

			c.Set(TraceIDContextKey, traceID)
			res.Header().Set(TraceIDHeader, traceID)
			return next(c)
		}
	}
}

// GetTraceID reads the trace ID set by RequestID, or "" when the middleware
// did not run
func GetTraceID(c echo.Context) string {
	traceID, ok := c.Get(TraceIDContextKey).(string)
	if !ok {
		return ""
	}
	return traceID
}
