package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cinevault/cinevault/internal/apperror"
)

// AuthService defines the business logic contract for accounts and
// authentication. Handlers call these methods -- they never touch the
// repository directly.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Login(ctx context.Context, input LoginInput) (token string, user *User, err error)

	// Authenticate verifies a raw bearer token and resolves it to the
	// current user record. Used by the RequireAuth middleware.
	Authenticate(ctx context.Context, rawToken string) (*User, error)

	Profile(ctx context.Context, userID string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, input UpdateInput) (*User, error)
	DeleteAccount(ctx context.Context, userID string) error

	AddFavorite(ctx context.Context, userID, movieID string) error
	RemoveFavorite(ctx context.Context, userID, movieID string) error
}

// authService implements AuthService with argon2id hashing and signed
// stateless tokens.
type authService struct {
	repo   UserRepository
	tokens *TokenManager
}

// NewAuthService creates a new auth service with the given dependencies.
func NewAuthService(repo UserRepository, tokens *TokenManager) AuthService {
	return &authService{
		repo:   repo,
		tokens: tokens,
	}
}

// Register creates a new user account. It validates uniqueness, hashes the
// password with argon2id, generates a UUID, and persists the user.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*User, error) {
	username := strings.TrimSpace(input.Username)

	// Check if the username is already taken before doing expensive hashing.
	exists, err := s.repo.UsernameExists(ctx, username)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking username: %w", err))
	}
	if exists {
		return nil, apperror.NewConflict("username already exists")
	}

	// Hash the password with argon2id (memory-hard, GPU-resistant).
	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: hash,
		Birthday:     input.Birthday,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.NewInternal(fmt.Errorf("creating user: %w", err))
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login authenticates a user by username and password. On success it issues
// a signed access token.
//
// Unknown username and wrong password deliberately produce the identical
// external error so responses can't be used for username enumeration; the
// two cases are distinguished only in internal logs.
func (s *authService) Login(ctx context.Context, input LoginInput) (string, *User, error) {
	user, err := s.repo.FindByUsername(ctx, input.Username)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == 404 {
			slog.Debug("login failed: unknown username")
			return "", nil, errInvalidCredentials()
		}
		// Infrastructure failure looking up the store: retryable, unlike
		// a wrong password. Full detail stays in the logs.
		slog.Error("login failed: user lookup", slog.Any("error", err))
		return "", nil, storeError(err)
	}

	// Verify the password against the stored argon2id hash.
	if !verifyPassword(input.Password, user.PasswordHash) {
		slog.Debug("login failed: password mismatch", slog.String("user_id", user.ID))
		return "", nil, errInvalidCredentials()
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, apperror.NewInternal(fmt.Errorf("issuing token: %w", err))
	}

	// Update the user's last login timestamp (fire-and-forget, non-critical).
	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("failed to update last login",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return token, user, nil
}

// Authenticate verifies a raw token and re-fetches the current user record
// by the subject ID embedded in it. Claims like the username may be stale
// (the account could have been renamed since issuance), so downstream code
// only ever sees the current record. A token whose subject no longer
// exists is rejected.
func (s *authService) Authenticate(ctx context.Context, rawToken string) (*User, error) {
	claims, err := s.tokens.Verify(rawToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == 404 {
			slog.Debug("token subject no longer exists", slog.String("subject", claims.Subject))
			return nil, errIdentityGone()
		}
		slog.Error("token verification: user lookup", slog.Any("error", err))
		return nil, storeError(err)
	}

	return user, nil
}

// Profile returns the user's current record with favorites populated.
func (s *authService) Profile(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, asAppError(err, "loading profile")
	}

	favorites, err := s.repo.ListFavoriteIDs(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("loading favorites: %w", err))
	}
	user.FavoriteMovies = favorites

	return user, nil
}

// UpdateProfile applies the supplied changes to the user's record. A nil
// field leaves the corresponding column untouched; a new password is
// re-hashed before storage.
func (s *authService) UpdateProfile(ctx context.Context, userID string, input UpdateInput) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, asAppError(err, "loading user for update")
	}

	if input.Username != nil {
		user.Username = strings.TrimSpace(*input.Username)
	}
	if input.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Birthday != nil {
		user.Birthday = input.Birthday
	}
	if input.Password != nil {
		hash, err := hashPassword(*input.Password)
		if err != nil {
			return nil, apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, asAppError(err, "updating user")
	}

	slog.Info("user updated", slog.String("user_id", user.ID))

	return user, nil
}

// DeleteAccount removes the user and their favorites.
func (s *authService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return asAppError(err, "deleting user")
	}

	slog.Info("user deleted", slog.String("user_id", userID))
	return nil
}

// AddFavorite links a catalog movie to the user's favorites.
func (s *authService) AddFavorite(ctx context.Context, userID, movieID string) error {
	if err := s.repo.AddFavorite(ctx, userID, movieID); err != nil {
		return asAppError(err, "adding favorite")
	}
	return nil
}

// RemoveFavorite unlinks a catalog movie from the user's favorites.
func (s *authService) RemoveFavorite(ctx context.Context, userID, movieID string) error {
	if err := s.repo.RemoveFavorite(ctx, userID, movieID); err != nil {
		return asAppError(err, "removing favorite")
	}
	return nil
}

// --- Error helpers ---

// errInvalidCredentials is the single external error for every credential
// failure cause. 401, not retryable.
func errInvalidCredentials() *apperror.AppError {
	return apperror.NewUnauthorized("invalid username or password")
}

// storeError classifies an infrastructural store failure into a retryable
// client-facing error: timeouts and cancellations map to 504, everything
// else to 503. The underlying error is carried internally for logging and
// never surfaces in the response body.
func storeError(err error) *apperror.AppError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperror.NewTimeout(err)
	}
	return apperror.NewUnavailable(err)
}

// asAppError passes through AppErrors from the repository (404s, 409s)
// and wraps anything else as a 500.
func asAppError(err error, op string) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.NewInternal(fmt.Errorf("%s: %w", op, err))
}
