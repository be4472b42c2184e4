package movies

import (
	"github.com/labstack/echo/v4"

	"github.com/cinevault/cinevault/internal/middleware"
	"github.com/cinevault/cinevault/internal/ratelimit"
)

// RegisterRoutes sets up the catalog routes. Every route requires a
// verified bearer identity (applied by the caller via the authed group);
// the listing endpoints additionally carry the catalog-class rate limit,
// tuned for read-heavy legitimate traffic.
func RegisterRoutes(authed *echo.Group, h *Handler, limiter *ratelimit.Limiter) {
	catalogLimit := middleware.RateLimit(limiter, ratelimit.ClassCatalog)

	authed.GET("/movies", h.List, catalogLimit)
	authed.GET("/movies/title/:title", h.GetByTitle, catalogLimit)
	authed.GET("/movies/:id", h.Get)
	authed.GET("/directors/:name", h.ByDirector, catalogLimit)
	authed.GET("/genres/:name", h.ByGenre, catalogLimit)

	// Catalog mutations. Any verified identity may curate the catalog;
	// there is no admin role.
	authed.POST("/movies", h.Create)
	authed.PUT("/movies/:id", h.Update)
	authed.DELETE("/movies/:id", h.Delete)
}
