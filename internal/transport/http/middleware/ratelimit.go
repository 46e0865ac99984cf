package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kipusaplus/kipus-api/internal/infrastructure/redis"
	"github.com/kipusaplus/kipus-api/internal/metrics"
)

const errTooManyRequests = "Demasiados intentos. Intenta nuevamente más tarde"

type Allower interface {
	Allow(ctx context.Context, scope, subject string) (redis.Decision, error)
}

// RateLimit counts requests per client IP under scope. When the limiter
// itself fails the request goes through.
//
// The IP comes from c.ClientIP, so forwarded headers only count when the
// engine trusts the proxy that set them.
func RateLimit(l Allower, scope string, logger *slog.Logger) gin.HandlerFunc {
	return RateLimitBy(l, scope, (*gin.Context).ClientIP, logger)
}

// RateLimitBy counts requests under scope for the subject picked from the
// request. An empty subject is not counted.
func RateLimitBy(l Allower, scope string, subject func(*gin.Context) string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := subject(c)
		if key == "" {
			c.Next()
			return
		}
		d, err := l.Allow(c.Request.Context(), scope, key)
		if err != nil {
			logger.WarnContext(c.Request.Context(), "rate limiter unavailable, allowing request",
				"scope", scope, "error", err)
			c.Next()
			return
		}
		if !d.Allowed {
			metrics.RateLimitedTotal.WithLabelValues(scope).Inc()
			secs := int(math.Ceil(d.RetryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			abort(c, http.StatusTooManyRequests, errTooManyRequests)
			return
		}
		c.Next()
	}
}

// maxPeekBody caps how much of a body BodyEmail reads.
const maxPeekBody = 64 << 10

// BodyEmail returns the normalized "email" field of a JSON body and puts the
// body back for the handler. It returns "" when there is no such field.
func BodyEmail(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPeekBody))
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(raw), c.Request.Body))

	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Email))
}
