package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/cinevault/cinevault/internal/apperror"
)

// UserRepository defines the data access contract for user operations.
// All SQL lives in the concrete implementation -- no SQL leaks out.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
	UpdateLastLogin(ctx context.Context, id string) error

	// Favorite movies.
	AddFavorite(ctx context.Context, userID, movieID string) error
	RemoveFavorite(ctx context.Context, userID, movieID string) error
	ListFavoriteIDs(ctx context.Context, userID string) ([]string, error)
}

// userRepository implements UserRepository with hand-written MariaDB queries.
// Username matching is case-sensitive: the username column carries a binary
// collation (see db/migrations).
type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository backed by the given DB pool.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user row into the users table.
func (r *userRepository) Create(ctx context.Context, user *User) error {
	query := `INSERT INTO users (id, username, email, password_hash, birthday, created_at)
	          VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Birthday,
		user.CreatedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return apperror.NewConflict("username already exists")
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

// FindByID retrieves a user by their UUID.
// Returns apperror.NotFound if no user exists with this ID.
func (r *userRepository) FindByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT id, username, email, password_hash, birthday, created_at, last_login_at
	          FROM users WHERE id = ?`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// FindByUsername retrieves a user by their exact username.
// Returns apperror.NotFound if no user exists with this username.
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT id, username, email, password_hash, birthday, created_at, last_login_at
	          FROM users WHERE username = ?`

	return r.scanOne(r.db.QueryRowContext(ctx, query, username))
}

// scanOne scans a single user row, mapping sql.ErrNoRows to NotFound.
func (r *userRepository) scanOne(row *sql.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Birthday,
		&user.CreatedAt,
		&user.LastLoginAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	return user, nil
}

// UsernameExists returns true if a user with the given username already
// exists. Used during registration to check for duplicates before hashing
// the password.
func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking username existence: %w", err)
	}

	return exists, nil
}

// Update rewrites the mutable profile columns for the given user.
func (r *userRepository) Update(ctx context.Context, user *User) error {
	query := `UPDATE users SET username = ?, email = ?, password_hash = ?, birthday = ?
	          WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Birthday,
		user.ID,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return apperror.NewConflict("username already exists")
		}
		return fmt.Errorf("updating user: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return apperror.NewNotFound("user not found")
	}

	return nil
}

// Delete removes a user. Favorite rows cascade via the FK constraint.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return apperror.NewNotFound("user not found")
	}

	return nil
}

// UpdateLastLogin sets the last_login_at timestamp to now for the given user.
func (r *userRepository) UpdateLastLogin(ctx context.Context, id string) error {
	query := `UPDATE users SET last_login_at = NOW() WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}

	return nil
}

// --- Favorite Movies ---

// AddFavorite links a movie to the user's favorites. Adding a movie that
// is already a favorite is a no-op; adding one that doesn't exist in the
// catalog is a 404.
func (r *userRepository) AddFavorite(ctx context.Context, userID, movieID string) error {
	// ON DUPLICATE KEY no-ops re-favoriting, while a missing movie still
	// trips the FK constraint (INSERT IGNORE would swallow that too).
	query := `INSERT INTO favorite_movies (user_id, movie_id) VALUES (?, ?)
	          ON DUPLICATE KEY UPDATE user_id = user_id`

	_, err := r.db.ExecContext(ctx, query, userID, movieID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NewNotFound("movie not found")
		}
		return fmt.Errorf("adding favorite: %w", err)
	}

	return nil
}

// RemoveFavorite unlinks a movie from the user's favorites.
func (r *userRepository) RemoveFavorite(ctx context.Context, userID, movieID string) error {
	query := `DELETE FROM favorite_movies WHERE user_id = ? AND movie_id = ?`

	result, err := r.db.ExecContext(ctx, query, userID, movieID)
	if err != nil {
		return fmt.Errorf("removing favorite: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return apperror.NewNotFound("movie is not in favorites")
	}

	return nil
}

// ListFavoriteIDs returns the IDs of all movies the user has favorited.
func (r *userRepository) ListFavoriteIDs(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT movie_id FROM favorite_movies WHERE user_id = ? ORDER BY added_at`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning favorite row: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// --- MySQL error classification ---

// isDuplicateKey reports whether err is a unique-constraint violation
// (MySQL error 1062).
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// isForeignKeyViolation reports whether err is a foreign-key failure
// (MySQL error 1452), i.e. the referenced row does not exist.
func isForeignKeyViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1452
}
