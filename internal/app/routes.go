package app

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinevault/cinevault/internal/plugins/auth"
	"github.com/cinevault/cinevault/internal/plugins/movies"
)

// RegisterRoutes sets up all application routes. It constructs each
// plugin's repository/service/handler stack and delegates to the plugin's
// route registration function.
//
// This is the single place where all routes are aggregated.
func (a *App) RegisterRoutes() {
	e := a.Echo

	// --- Public Routes (no auth required) ---

	// Landing route.
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"message": "Welcome to the CineVault historic movies API",
		})
	})

	// Health check endpoint for Docker health monitoring.
	e.GET("/healthz", func(c echo.Context) error {
		if err := a.DB.PingContext(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// --- Auth Plugin ---
	// Public login/registration plus the authenticated profile routes.
	userRepo := auth.NewUserRepository(a.DB)
	tokens := auth.NewTokenManager(
		a.Config.Auth.SecretKey,
		a.Config.Auth.TokenTTL,
		a.Config.Auth.MaxTokenLength,
	)
	authService := auth.NewAuthService(userRepo, tokens)
	auth.RegisterRoutes(e, auth.NewHandler(authService), a.Limiter, authService)

	// --- Movies Plugin ---
	// The entire catalog requires a verified bearer identity.
	movieRepo := movies.NewMovieRepository(a.DB)
	movieService := movies.NewMovieService(movieRepo, movies.NewListingCache(a.Redis))
	authed := e.Group("", auth.RequireAuth(authService))
	movies.RegisterRoutes(authed, movies.NewHandler(movieService), a.Limiter)
}
