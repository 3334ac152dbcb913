package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/LavaJover/festival-order-service/internal/logging"
)

const (
	RequestIDHeader = "X-Request-Id"
	reqBodyLimit    = 8 * 1024
)

var redactedKeys = map[string]bool{
	"password":      true,
	"authorization": true,
	"token":         true,
	"secret":        true,
}

func redactJSON(raw []byte) []byte {
	if len(raw) == 0 {
		return raw
	}
	var m any
	if err := json.Unmarshal(raw, &m); err != nil {
		return raw
	}
	var scrub func(any) any
	scrub = func(x any) any {
		switch v := x.(type) {
		case map[string]any:
			for k, val := range v {
				if redactedKeys[strings.ToLower(k)] {
					v[k] = "***redacted***"
					continue
				}
				v[k] = scrub(val)
			}
			return v
		case []any:
			for i := range v {
				v[i] = scrub(v[i])
			}
			return v
		default:
			return v
		}
	}
	b, err := json.Marshal(scrub(m))
	if err != nil {
		return raw
	}
	return b
}

// Logging attaches a request-scoped logger to the request context and writes
// one access line per request. Request bodies are logged redacted; the
// original bytes are restored for the handlers.
func Logging(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(RequestIDHeader, reqID)

		l := base.With(
			"req_id", reqID,
			"method", c.Request.Method,
			"route", c.FullPath(),
			"remote", c.ClientIP(),
		)
		c.Request = c.Request.WithContext(logging.WithCtx(c.Request.Context(), l))

		var reqBody string
		if strings.Contains(c.GetHeader("Content-Type"), "application/json") && c.Request.Body != nil {
			raw, _ := io.ReadAll(io.LimitReader(c.Request.Body, reqBodyLimit+1))
			_ = c.Request.Body.Close()
			c.Request.Body = io.NopCloser(bytes.NewReader(raw))
			if len(raw) > reqBodyLimit {
				reqBody = string(redactJSON(raw[:reqBodyLimit])) + "...truncated..."
			} else {
				reqBody = string(redactJSON(raw))
			}
		}

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"status", status,
			"dur_ms", time.Since(start).Milliseconds(),
			"resp_bytes", c.Writer.Size(),
		}
		if reqBody != "" {
			attrs = append(attrs, "req_body", reqBody)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			l.Error("http_request", attrs...)
		case status >= http.StatusBadRequest:
			l.Warn("http_request", attrs...)
		default:
			l.Info("http_request", attrs...)
		}
	}
}
