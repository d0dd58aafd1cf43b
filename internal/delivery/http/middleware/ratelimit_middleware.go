package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"peppers/config"
	"peppers/internal/delivery/http/response"
	"peppers/internal/domain/entity"
	"peppers/internal/ratelimit"

	"github.com/labstack/echo/v4"
)

// maxPeekBody bounds how much of a request body the composite key reads.
const maxPeekBody = 4096

// RateLimitMiddleware throttles credential endpoints with the sliding
// window limiter.
type RateLimitMiddleware struct {
	limiter *ratelimit.Limiter
	cfg     *config.RateLimitConfig
}

// NewRateLimitMiddleware is the constructor for RateLimitMiddleware.
func NewRateLimitMiddleware(limiter *ratelimit.Limiter, cfg *config.Config) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter, cfg: cfg.RateLimit}
}

// PerIP limits by client address. The scope keeps distinct endpoints from
// sharing a window.
func (m *RateLimitMiddleware) PerIP(scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !m.limiter.Admit(scope+"|ip:"+c.RealIP(), m.cfg.Limit, m.cfg.Window) {
				return tooManyRequests(c)
			}

			return next(c)
		}
	}
}

// PerIPAndPhone limits on two independent axes: the client address and the
// normalized phone field of the JSON body. One address cannot spray attempts
// across many accounts, and one account cannot be brute-forced from many
// addresses or by varying the phone formatting. A request is admitted only
// when both windows have room.
func (m *RateLimitMiddleware) PerIPAndPhone(scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !m.limiter.Admit(scope+"|ip:"+c.RealIP(), m.cfg.Limit, m.cfg.Window) {
				return tooManyRequests(c)
			}

			if phone := entity.NormalizePhone(peekPhone(c)); phone != "" {
				if !m.limiter.Admit(scope+"|phone:"+phone, m.cfg.Limit, m.cfg.Window) {
					return tooManyRequests(c)
				}
			}

			return next(c)
		}
	}
}

// peekPhone reads the phone field out of the JSON body without consuming
// it: the body is restored for the handler's bind.
func peekPhone(c echo.Context) string {
	req := c.Request()
	if req.Body == nil {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxPeekBody))
	req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var probe struct {
		Phone string `json:"phone"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return ""
	}

	return probe.Phone
}

func tooManyRequests(c echo.Context) error {
	return response.Error(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, try again later", "")
}
