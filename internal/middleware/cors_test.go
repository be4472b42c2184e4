package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/cinevault/cinevault/internal/apperror"
)

func callCORS(t *testing.T, cfg CORSConfig, method, origin string) (reached bool, rec *httptest.ResponseRecorder, err error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, "/movies", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := CORS(cfg)(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	err = handler(c)
	return reached, rec, err
}

func TestCORS_SameOriginPassesThrough(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{"https://app.example.com"}}

	reached, rec, err := callCORS(t, cfg, http.MethodGet, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reached {
		t.Error("expected same-origin request to reach the handler")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("expected no CORS headers on a same-origin request")
	}
}

func TestCORS_AllowedOrigin(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{"https://app.example.com"}}

	reached, rec, err := callCORS(t, cfg, http.MethodGet, "https://app.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reached {
		t.Error("expected allowed origin to reach the handler")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("expected allow-origin header echoed, got %q", got)
	}
}

// Unlisted origins are denied outright, not silently stripped of headers.
func TestCORS_UnlistedOriginDenied(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{"https://app.example.com"}}

	reached, _, err := callCORS(t, cfg, http.MethodGet, "https://evil.example.com")
	if reached {
		t.Error("expected unlisted origin to be blocked before the handler")
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != http.StatusForbidden {
		t.Errorf("expected 403 AppError, got %v", err)
	}
}

func TestCORS_Preflight(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{"https://app.example.com"}}

	reached, rec, err := callCORS(t, cfg, http.MethodOptions, "https://app.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reached {
		t.Error("expected preflight to be answered without reaching the handler")
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("expected allow-methods header on preflight")
	}
}

func TestCORS_PreflightFromUnlistedOrigin(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{"https://app.example.com"}}

	_, _, err := callCORS(t, cfg, http.MethodOptions, "https://evil.example.com")
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != http.StatusForbidden {
		t.Errorf("expected 403 AppError, got %v", err)
	}
}

func TestCORS_Wildcard(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{"*"}}

	reached, _, err := callCORS(t, cfg, http.MethodGet, "https://anywhere.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reached {
		t.Error("expected wildcard config to admit any origin")
	}
}
