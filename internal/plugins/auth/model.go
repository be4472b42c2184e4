// Package auth handles user accounts and stateless authentication for
// CineVault: registration, login, signed access tokens, and the bearer
// middleware protecting the rest of the API. The server holds no session
// state -- a token's validity is entirely a function of its signature
// and expiry.
package auth

import (
	"time"
)

// User represents a registered CineVault user. This is the domain model used
// throughout the application. Database scanning and JSON marshaling use this
// struct directly.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never expose in JSON responses.
	Birthday     *time.Time `json:"birthday,omitempty"`
	// FavoriteMovies holds the IDs of the user's favorited catalog entries.
	// Populated only by profile reads; empty on auth paths.
	FavoriteMovies []string   `json:"favorite_movies,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
}

// --- Request DTOs (bound from HTTP requests) ---

// RegisterRequest holds the data submitted to POST /users.
type RegisterRequest struct {
	Username string     `json:"username" validate:"required,min=3,max=50,alphanum"`
	Password string     `json:"password" validate:"required,min=8,max=128"`
	Email    string     `json:"email" validate:"required,email,max=255"`
	Birthday *time.Time `json:"birthday,omitempty"`
}

// LoginRequest holds the credential pair submitted to POST /login.
// The plaintext password exists only for the duration of the verify call
// and is never persisted or logged.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateRequest holds the data submitted to PUT /users/me. All fields are
// optional; only supplied fields are changed.
type UpdateRequest struct {
	Username *string    `json:"username,omitempty" validate:"omitempty,min=3,max=50,alphanum"`
	Password *string    `json:"password,omitempty" validate:"omitempty,min=8,max=128"`
	Email    *string    `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Birthday *time.Time `json:"birthday,omitempty"`
}

// --- Service Input DTOs (passed from handler to service) ---

// RegisterInput is the validated input for creating a new user.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	Birthday *time.Time
}

// LoginInput is the validated input for authenticating a user.
type LoginInput struct {
	Username string
	Password string
}

// UpdateInput is the validated input for a profile update. Nil fields are
// left unchanged.
type UpdateInput struct {
	Username *string
	Password *string
	Email    *string
	Birthday *time.Time
}
