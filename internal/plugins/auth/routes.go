package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/cinevault/cinevault/internal/middleware"
	"github.com/cinevault/cinevault/internal/ratelimit"
)

// RegisterRoutes sets up all account and authentication routes.
//
// Login and registration carry the narrow auth-class rate limit: these are
// the highest-value targets for credential stuffing. Profile and favorite
// routes sit behind RequireAuth and the general limit applied globally.
func RegisterRoutes(e *echo.Echo, h *Handler, limiter *ratelimit.Limiter, service AuthService) {
	authLimit := middleware.RateLimit(limiter, ratelimit.ClassAuth)

	// Public routes.
	e.POST("/login", h.Login, authLimit)
	e.POST("/users", h.Register, authLimit)

	// Authenticated profile routes.
	me := e.Group("/users/me", RequireAuth(service))
	me.GET("", h.Me)
	me.PUT("", h.Update)
	me.DELETE("", h.Delete)
	me.POST("/favorites/:movieID", h.AddFavorite)
	me.DELETE("/favorites/:movieID", h.RemoveFavorite)
}
