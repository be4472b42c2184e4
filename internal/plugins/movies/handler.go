package movies

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cinevault/cinevault/internal/apperror"
)

// Handler handles HTTP requests for the movie catalog. Handlers are thin:
// they bind the request, call the service, and write the response.
type Handler struct {
	service MovieService
}

// NewHandler creates a new movies handler with the given service.
func NewHandler(service MovieService) *Handler {
	return &Handler{service: service}
}

// List returns catalog entries (GET /movies). Supports ?genre=, ?director=,
// ?featured=, ?limit= and ?offset= query filters.
func (h *Handler) List(c echo.Context) error {
	filter := ListFilter{
		Genre:    c.QueryParam("genre"),
		Director: c.QueryParam("director"),
	}

	if raw := c.QueryParam("featured"); raw != "" {
		if featured, err := strconv.ParseBool(raw); err == nil {
			filter.Featured = &featured
		}
	}
	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			filter.Limit = limit
		}
	}
	if raw := c.QueryParam("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil {
			filter.Offset = offset
		}
	}

	result, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	// An empty catalog serializes as [] rather than null.
	if result == nil {
		result = []Movie{}
	}
	return c.JSON(http.StatusOK, result)
}

// Get returns one catalog entry by ID (GET /movies/:id).
func (h *Handler) Get(c echo.Context) error {
	movie, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, movie)
}

// GetByTitle returns one catalog entry by exact title
// (GET /movies/title/:title).
func (h *Handler) GetByTitle(c echo.Context) error {
	movie, err := h.service.GetByTitle(c.Request().Context(), c.Param("title"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, movie)
}

// Create adds a catalog entry (POST /movies).
func (h *Handler) Create(c echo.Context) error {
	var req MovieRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return apperror.NewValidation(err.Error())
	}

	movie, err := h.service.Create(c.Request().Context(), req.toMovie())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, movie)
}

// Update replaces a catalog entry (PUT /movies/:id).
func (h *Handler) Update(c echo.Context) error {
	var req MovieRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return apperror.NewValidation(err.Error())
	}

	movie, err := h.service.Update(c.Request().Context(), c.Param("id"), req.toMovie())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, movie)
}

// Delete removes a catalog entry (DELETE /movies/:id).
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ByDirector returns all catalog entries by a director
// (GET /directors/:name).
func (h *Handler) ByDirector(c echo.Context) error {
	result, err := h.service.List(c.Request().Context(), ListFilter{
		Director: c.Param("name"),
	})
	if err != nil {
		return err
	}
	if result == nil {
		result = []Movie{}
	}
	return c.JSON(http.StatusOK, result)
}

// ByGenre returns all catalog entries carrying a genre (GET /genres/:name).
func (h *Handler) ByGenre(c echo.Context) error {
	result, err := h.service.List(c.Request().Context(), ListFilter{
		Genre: c.Param("name"),
	})
	if err != nil {
		return err
	}
	if result == nil {
		result = []Movie{}
	}
	return c.JSON(http.StatusOK, result)
}
