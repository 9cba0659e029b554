package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Context keys shared between handlers and the logging middleware
const (
	RequestIDKey     = "request_id"
	CorrelationIDKey = "correlation_id"

	// Set by document handlers so request and audit logs can name the
	// document and the outcome of an export
	DocumentIDKey     = "document_id"
	ExportStatusKey   = "export_status"
	ExportStrategyKey = "export_strategy"
	ExportDegradedKey = "export_degraded"
)

// auditOperations maps routes to the operation recorded in the audit log.
// Routes that are not listed are not audited.
var auditOperations = map[string]string{
	"/api/v1/documents":            "NEW",
	"/api/v1/documents/totals":     "COMPUTE",
	"/api/v1/documents/render":     "RENDER",
	"/api/v1/documents/summary":    "SUMMARIZE",
	"/api/v1/documents/compliance": "CHECK_COMPLIANCE",
	"/api/v1/documents/export":     "EXPORT",
	"/api/v1/files/:key":           "FETCH_ARTIFACT",
	"/print/:key":                  "OPEN_PRINT_SURFACE",
}

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return headerID("X-Request-ID", RequestIDKey)
}

// CorrelationID middleware propagates the caller's correlation ID, or starts one
func CorrelationID() gin.HandlerFunc {
	return headerID("X-Correlation-ID", CorrelationIDKey)
}

func headerID(header, key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(header)
		if id == "" {
			id = uuid.New().String()
		}

		c.Set(key, id)
		c.Header(header, id)
		c.Next()
	}
}

// StructuredLogger logs one line per request. Bodies are never logged since
// documents carry customer names and phone numbers.
func StructuredLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := requestFields(c)
		fields["status_code"] = status
		fields["latency_ms"] = milliseconds(time.Since(start))
		fields["client_ip"] = c.ClientIP()
		fields["user_agent"] = c.Request.UserAgent()
		fields["response_size"] = c.Writer.Size()
		if raw := c.Request.URL.RawQuery; raw != "" {
			fields["query"] = raw
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		entry := logrus.WithFields(fields)
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("Server error")
		case status >= http.StatusBadRequest:
			entry.Warn("Client error")
		default:
			entry.Info("Request completed")
		}
	}
}

// AuditLogger records document operations and artifact access
func AuditLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		operation, ok := auditOperations[c.FullPath()]
		if !ok || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		fields := requestFields(c)
		fields["audit"] = true
		fields["operation"] = operation
		fields["status_code"] = c.Writer.Status()
		fields["client_ip"] = c.ClientIP()
		fields["operation_time"] = time.Since(start).Milliseconds()
		if key := c.Param("key"); key != "" {
			fields["artifact_key"] = key
		}

		logrus.WithFields(fields).Info("Audit log")
	}
}

// PerformanceMonitor warns about requests slower than slowThreshold. PDF
// rendering is the usual culprit, so exports name the strategy that ran.
func PerformanceMonitor(slowThreshold time.Duration) gin.HandlerFunc {
	if slowThreshold <= 0 {
		slowThreshold = time.Second
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)
		if latency <= slowThreshold {
			return
		}

		fields := requestFields(c)
		fields["performance_alert"] = true
		fields["latency_ms"] = milliseconds(latency)
		fields["threshold_ms"] = milliseconds(slowThreshold)
		fields["status_code"] = c.Writer.Status()
		logrus.WithFields(fields).Warn("Slow request detected")
	}
}

// requestFields collects the identifiers every request log line carries,
// plus the document and export details set by handlers
func requestFields(c *gin.Context) logrus.Fields {
	fields := logrus.Fields{
		"request_id":     c.GetString(RequestIDKey),
		"correlation_id": c.GetString(CorrelationIDKey),
		"method":         c.Request.Method,
		"path":           c.Request.URL.Path,
	}
	if route := c.FullPath(); route != "" {
		fields["route"] = route
	}

	for _, key := range []string{DocumentIDKey, ExportStatusKey, ExportStrategyKey} {
		if v := c.GetString(key); v != "" {
			fields[key] = v
		}
	}
	if degraded, ok := c.Get(ExportDegradedKey); ok {
		fields[ExportDegradedKey] = degraded
	}
	return fields
}

func milliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / float64(time.Millisecond)
}
