package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinevault/cinevault/internal/apperror"
)

// Handler handles HTTP requests for accounts and authentication.
// Handlers are thin: they bind the request, call the service, and write
// the response. No business logic lives here.
type Handler struct {
	service AuthService
}

// NewHandler creates a new auth handler with the given service.
func NewHandler(service AuthService) *Handler {
	return &Handler{service: service}
}

// Login processes a credential pair (POST /login) and responds with the
// user and a signed access token.
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	if err := c.Validate(&req); err != nil {
		// Empty or missing fields get the same uniform credential error
		// as a wrong password -- the shape of the input is not a hint.
		return errInvalidCredentials()
	}

	token, user, err := h.service.Login(c.Request().Context(), LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// Register creates a new account (POST /users).
func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return apperror.NewValidation(err.Error())
	}

	user, err := h.service.Register(c.Request().Context(), RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Birthday: req.Birthday,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"user": user,
	})
}

// Me returns the authenticated user's profile with favorites (GET /users/me).
func (h *Handler) Me(c echo.Context) error {
	user, err := h.service.Profile(c.Request().Context(), GetUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Update modifies the authenticated user's profile (PUT /users/me).
func (h *Handler) Update(c echo.Context) error {
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	if err := c.Validate(&req); err != nil {
		return apperror.NewValidation(err.Error())
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), GetUserID(c), UpdateInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Birthday: req.Birthday,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// Delete removes the authenticated user's account (DELETE /users/me).
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.DeleteAccount(c.Request().Context(), GetUserID(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AddFavorite links a movie to the authenticated user's favorites
// (POST /users/me/favorites/:movieID).
func (h *Handler) AddFavorite(c echo.Context) error {
	movieID := c.Param("movieID")
	if err := h.service.AddFavorite(c.Request().Context(), GetUserID(c), movieID); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"message": "movie added to favorites",
	})
}

// RemoveFavorite unlinks a movie from the authenticated user's favorites
// (DELETE /users/me/favorites/:movieID).
func (h *Handler) RemoveFavorite(c echo.Context) error {
	movieID := c.Param("movieID")
	if err := h.service.RemoveFavorite(c.Request().Context(), GetUserID(c), movieID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
