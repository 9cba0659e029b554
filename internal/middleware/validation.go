package middleware

import (
	"errors"
	"fmt"
	"math"
	"mime"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"salesdoc/internal/models"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error            string                   `json:"error"`
	Message          string                   `json:"message"`
	ValidationErrors []models.ValidationError `json:"validation_errors,omitempty"`
	RequestID        string                   `json:"request_id,omitempty"`
	Timestamp        string                   `json:"timestamp"`
}

var (
	templateParamPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

	// Stored artifact keys are a UUID plus the artifact extension
	artifactKeyPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.(pdf|html)$`)

	boolQueryParams = []string{"download", "inline"}
)

// abortWith writes an ErrorResponse and stops the chain
func abortWith(c *gin.Context, status int, title, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     title,
		Message:   message,
		RequestID: c.GetString(RequestIDKey),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// RequestValidation rejects malformed template identifiers, artifact keys
// and boolean flags before they reach a handler
func RequestValidation() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := validateQueryParams(c); err != nil {
			abortWith(c, http.StatusBadRequest, "Invalid query parameters", err.Error())
			return
		}
		if err := validatePathParams(c); err != nil {
			abortWith(c, http.StatusBadRequest, "Invalid path parameters", err.Error())
			return
		}
		c.Next()
	}
}

func validateQueryParams(c *gin.Context) error {
	if tpl := c.Query("template"); tpl != "" && !templateParamPattern.MatchString(strings.ToLower(tpl)) {
		return errors.New("invalid template parameter: must be a template identifier")
	}

	for _, param := range boolQueryParams {
		value := c.Query(param)
		if value == "" {
			continue
		}
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("invalid %s parameter: must be a boolean (true/false)", param)
		}
	}
	return nil
}

func validatePathParams(c *gin.Context) error {
	if key := c.Param("key"); key != "" && !artifactKeyPattern.MatchString(key) {
		return errors.New("invalid key parameter: must be an artifact key")
	}
	return nil
}

// EnhancedErrorHandler renders errors that handlers attached with c.Error
// instead of writing a response themselves
func EnhancedErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last()
		logrus.WithFields(logrus.Fields{
			"request_id": c.GetString(RequestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"error":      err.Error(),
			"error_type": fmt.Sprintf("%d", err.Type),
		}).Error("Request error")

		status, response := errorResponse(err)
		response.RequestID = c.GetString(RequestIDKey)
		response.Timestamp = time.Now().Format(time.RFC3339)
		c.JSON(status, response)
	}
}

// errorResponse maps a gin error to a status and body. Internal errors never
// expose their message.
func errorResponse(err *gin.Error) (int, ErrorResponse) {
	switch err.Type {
	case gin.ErrorTypeBind:
		var (
			fieldErrs validator.ValidationErrors
			docErrs   models.ValidationErrors
			docErr    *models.ValidationError
		)
		switch {
		case errors.As(err.Err, &fieldErrs):
			return http.StatusBadRequest, ErrorResponse{
				Error:            "Validation failed",
				Message:          "Request validation failed",
				ValidationErrors: models.FormatValidationErrors(fieldErrs),
			}
		case errors.As(err.Err, &docErrs):
			return http.StatusBadRequest, ErrorResponse{
				Error:            "Validation failed",
				Message:          "Document validation failed",
				ValidationErrors: docErrs,
			}
		case errors.As(err.Err, &docErr):
			return http.StatusBadRequest, ErrorResponse{
				Error:            "Validation failed",
				Message:          docErr.Message,
				ValidationErrors: []models.ValidationError{*docErr},
			}
		default:
			return http.StatusBadRequest, ErrorResponse{Error: "Invalid request format", Message: err.Error()}
		}

	case gin.ErrorTypePublic:
		return http.StatusBadRequest, ErrorResponse{Error: "Request failed", Message: err.Error()}

	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error:   "Internal server error",
			Message: "An internal error occurred",
		}
	}
}

// RateLimiter limits each client IP to requestsPerSecond with the given burst
func RateLimiter(requestsPerSecond float64, burstSize int) gin.HandlerFunc {
	var clients sync.Map // client IP -> *rate.Limiter

	limiterFor := func(ip string) *rate.Limiter {
		if l, ok := clients.Load(ip); ok {
			return l.(*rate.Limiter)
		}
		l, _ := clients.LoadOrStore(ip, rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize))
		return l.(*rate.Limiter)
	}

	retryAfter := strconv.Itoa(int(math.Ceil(1 / math.Max(requestsPerSecond, 0.001))))

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if limiterFor(ip).Allow() {
			c.Next()
			return
		}

		logrus.WithFields(logrus.Fields{
			"client_ip":  ip,
			"path":       c.Request.URL.Path,
			"user_agent": c.Request.UserAgent(),
		}).Warn("Rate limit exceeded")

		c.Header("Retry-After", retryAfter)
		abortWith(c, http.StatusTooManyRequests, "Rate limit exceeded",
			fmt.Sprintf("Too many requests. Limit: %.1f requests per second", requestsPerSecond))
	}
}

var securityHeaders = map[string]string{
	"X-Content-Type-Options":  "nosniff",
	"X-Frame-Options":         "DENY",
	"X-XSS-Protection":        "1; mode=block",
	"Referrer-Policy":         "strict-origin-when-cross-origin",
	"Content-Security-Policy": "default-src 'self'",
}

// SecurityHeaders adds security headers to responses. Handlers serving print
// surfaces relax the frame and content policies for their own response.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		for name, value := range securityHeaders {
			c.Header(name, value)
		}
		c.Header("Server", "")
		c.Next()
	}
}

// ContentTypeValidation requires one of allowedTypes on requests that carry a body
func ContentTypeValidation(allowedTypes ...string) gin.HandlerFunc {
	if len(allowedTypes) == 0 {
		allowedTypes = []string{"application/json"}
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		header := c.GetHeader("Content-Type")
		if header == "" {
			abortWith(c, http.StatusBadRequest, "Missing Content-Type header", "Content-Type header is required")
			return
		}

		mediaType, _, err := mime.ParseMediaType(header)
		if err != nil {
			abortWith(c, http.StatusBadRequest, "Invalid Content-Type header", err.Error())
			return
		}

		for _, allowed := range allowedTypes {
			if mediaType == allowed {
				c.Next()
				return
			}
		}

		abortWith(c, http.StatusUnsupportedMediaType, "Unsupported Content-Type",
			fmt.Sprintf("Content-Type '%s' is not supported. Allowed types: %v", mediaType, allowedTypes))
	}
}

// RequestSizeLimit limits the size of request bodies
func RequestSizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			abortWith(c, http.StatusRequestEntityTooLarge, "Request too large",
				fmt.Sprintf("Request body size (%d bytes) exceeds maximum allowed size (%d bytes)", c.Request.ContentLength, maxSize))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
