package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinevault/cinevault/internal/apperror"
	"github.com/cinevault/cinevault/internal/config"
	"github.com/cinevault/cinevault/internal/ratelimit"
)

func TestRateLimit_DeniesOverQuota(t *testing.T) {
	limiter := ratelimit.New(config.RateLimitConfig{
		Auth: config.ClassQuota{Max: 2, Window: time.Minute},
	})

	e := echo.New()
	handler := RateLimit(limiter, ratelimit.ClassAuth)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	call := func(ip string) error {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":12345"
		return handler(e.NewContext(req, httptest.NewRecorder()))
	}

	if err := call("203.0.113.1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := call("203.0.113.1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := call("203.0.113.1")
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 AppError, got %v", err)
	}

	// A different client IP still has its own quota.
	if err := call("203.0.113.2"); err != nil {
		t.Errorf("expected different client to be admitted, got %v", err)
	}
}
