package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinevault/cinevault/internal/apperror"
)

// BodyLimit returns middleware that caps the request body at maxBytes
// before any handler parses it. A declared oversized Content-Length is
// rejected up front; chunked bodies are capped by http.MaxBytesReader so
// a lying client can't stream past the limit either.
func BodyLimit(maxBytes int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			if req.ContentLength > maxBytes {
				return &apperror.AppError{
					Code:    http.StatusRequestEntityTooLarge,
					Type:    "body_too_large",
					Message: "request body too large",
				}
			}

			req.Body = http.MaxBytesReader(c.Response(), req.Body, maxBytes)
			return next(c)
		}
	}
}
