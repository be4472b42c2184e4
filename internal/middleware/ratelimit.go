package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/cinevault/cinevault/internal/apperror"
	"github.com/cinevault/cinevault/internal/ratelimit"
)

// RateLimit returns middleware that admits or denies the request against
// the shared limiter for the given route class. Keyed by client IP, so
// TrustedProxies must be configured when running behind a reverse proxy.
//
// This runs before CORS and any credential work -- quota exhaustion is
// the cheapest possible denial.
func RateLimit(limiter *ratelimit.Limiter, class ratelimit.Class) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.Admit(c.RealIP(), class) {
				return apperror.NewTooManyRequests()
			}
			return next(c)
		}
	}
}
