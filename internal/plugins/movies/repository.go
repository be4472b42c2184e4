package movies

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cinevault/cinevault/internal/apperror"
)

// defaultPageSize caps listings when the caller doesn't request a limit.
const defaultPageSize = 50

// maxPageSize is the hard ceiling on a single listing query.
const maxPageSize = 200

// MovieRepository defines the data access contract for catalog operations.
// All SQL lives in the concrete implementation -- no SQL leaks out.
type MovieRepository interface {
	List(ctx context.Context, filter ListFilter) ([]Movie, error)
	FindByID(ctx context.Context, id string) (*Movie, error)
	FindByTitle(ctx context.Context, title string) (*Movie, error)
	Create(ctx context.Context, movie *Movie) error
	Update(ctx context.Context, movie *Movie) error
	Delete(ctx context.Context, id string) error

	// UpsertByTmdbID inserts the movie or refreshes the existing row
	// carrying the same TMDB reference. Used by the seeding utility.
	UpsertByTmdbID(ctx context.Context, movie *Movie) error
}

// movieRepository implements MovieRepository with hand-written MariaDB
// queries. Genres, writers, actors, and images are JSON columns.
type movieRepository struct {
	db *sql.DB
}

// NewMovieRepository creates a new movie repository backed by the given DB pool.
func NewMovieRepository(db *sql.DB) MovieRepository {
	return &movieRepository{db: db}
}

const movieColumns = `id, title, description, genres, release_date, rating, vote_count,
	runtime, images, director, writers, actors, featured, tmdb_id, imdb_id,
	popularity, created_at, updated_at`

// List returns catalog entries matching the filter, newest releases first.
func (r *movieRepository) List(ctx context.Context, filter ListFilter) ([]Movie, error) {
	var conditions []string
	var args []interface{}

	if filter.Genre != "" {
		// JSON_SEARCH is case-insensitive for the default collation, which
		// matches how clients type genre names.
		conditions = append(conditions, `JSON_SEARCH(genres, 'one', ?) IS NOT NULL`)
		args = append(args, filter.Genre)
	}
	if filter.Director != "" {
		conditions = append(conditions, `director = ?`)
		args = append(args, filter.Director)
	}
	if filter.Featured != nil {
		conditions = append(conditions, `featured = ?`)
		args = append(args, *filter.Featured)
	}

	query := `SELECT ` + movieColumns + ` FROM movies`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY release_date DESC LIMIT ? OFFSET ?`

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	args = append(args, limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing movies: %w", err)
	}
	defer rows.Close()

	var result []Movie
	for rows.Next() {
		movie, err := scanMovie(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *movie)
	}

	return result, rows.Err()
}

// FindByID retrieves a movie by its UUID.
// Returns apperror.NotFound if no movie exists with this ID.
func (r *movieRepository) FindByID(ctx context.Context, id string) (*Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE id = ?`
	return r.findOne(ctx, query, id)
}

// FindByTitle retrieves a movie by exact title.
// Returns apperror.NotFound if no movie exists with this title.
func (r *movieRepository) FindByTitle(ctx context.Context, title string) (*Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE title = ?`
	return r.findOne(ctx, query, title)
}

func (r *movieRepository) findOne(ctx context.Context, query string, arg interface{}) (*Movie, error) {
	row := r.db.QueryRowContext(ctx, query, arg)
	movie, err := scanMovie(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("movie not found")
	}
	if err != nil {
		return nil, err
	}
	return movie, nil
}

// Create inserts a new movie row.
func (r *movieRepository) Create(ctx context.Context, movie *Movie) error {
	query := `INSERT INTO movies (` + movieColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	args, err := movieArgs(movie)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting movie: %w", err)
	}

	return nil
}

// Update rewrites all mutable columns for the given movie.
func (r *movieRepository) Update(ctx context.Context, movie *Movie) error {
	query := `UPDATE movies SET title = ?, description = ?, genres = ?, release_date = ?,
	          rating = ?, vote_count = ?, runtime = ?, images = ?, director = ?,
	          writers = ?, actors = ?, featured = ?, tmdb_id = ?, imdb_id = ?,
	          popularity = ?, updated_at = ?
	          WHERE id = ?`

	genres, writers, actors, images, err := encodeJSONColumns(movie)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query,
		movie.Title, movie.Description, genres, movie.ReleaseDate,
		movie.Rating, movie.VoteCount, movie.Runtime, images, movie.Director,
		writers, actors, movie.Featured, movie.TmdbID, movie.ImdbID,
		movie.Popularity, movie.UpdatedAt,
		movie.ID,
	)
	if err != nil {
		return fmt.Errorf("updating movie: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return apperror.NewNotFound("movie not found")
	}

	return nil
}

// Delete removes a movie. Favorite rows cascade via the FK constraint.
func (r *movieRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting movie: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return apperror.NewNotFound("movie not found")
	}

	return nil
}

// UpsertByTmdbID inserts or refreshes the row keyed by tmdb_id. The
// movie's ID is only used on insert; an existing row keeps its ID so
// favorites pointing at it stay intact across re-seeds.
func (r *movieRepository) UpsertByTmdbID(ctx context.Context, movie *Movie) error {
	query := `INSERT INTO movies (` + movieColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	          ON DUPLICATE KEY UPDATE
	            title = VALUES(title), description = VALUES(description),
	            genres = VALUES(genres), release_date = VALUES(release_date),
	            rating = VALUES(rating), vote_count = VALUES(vote_count),
	            runtime = VALUES(runtime), images = VALUES(images),
	            director = VALUES(director), writers = VALUES(writers),
	            actors = VALUES(actors), popularity = VALUES(popularity),
	            updated_at = VALUES(updated_at)`

	args, err := movieArgs(movie)
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upserting movie: %w", err)
	}

	return nil
}

// --- Scanning helpers ---

// scanMovie scans one movie row through the given Scan function,
// decoding the JSON columns.
func scanMovie(scan func(dest ...interface{}) error) (*Movie, error) {
	var movie Movie
	var genres, writers, actors, images []byte

	err := scan(
		&movie.ID, &movie.Title, &movie.Description, &genres, &movie.ReleaseDate,
		&movie.Rating, &movie.VoteCount, &movie.Runtime, &images, &movie.Director,
		&writers, &actors, &movie.Featured, &movie.TmdbID, &movie.ImdbID,
		&movie.Popularity, &movie.CreatedAt, &movie.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning movie row: %w", err)
	}

	for _, col := range []struct {
		raw  []byte
		dest interface{}
	}{
		{genres, &movie.Genres},
		{writers, &movie.Writers},
		{actors, &movie.Actors},
		{images, &movie.Images},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dest); err != nil {
			return nil, fmt.Errorf("decoding movie JSON column: %w", err)
		}
	}

	return &movie, nil
}

// movieArgs builds the full column value list for insert/upsert.
func movieArgs(movie *Movie) ([]interface{}, error) {
	genres, writers, actors, images, err := encodeJSONColumns(movie)
	if err != nil {
		return nil, err
	}

	return []interface{}{
		movie.ID, movie.Title, movie.Description, genres, movie.ReleaseDate,
		movie.Rating, movie.VoteCount, movie.Runtime, images, movie.Director,
		writers, actors, movie.Featured, movie.TmdbID, movie.ImdbID,
		movie.Popularity, movie.CreatedAt, movie.UpdatedAt,
	}, nil
}

// encodeJSONColumns marshals the list-valued fields for storage.
func encodeJSONColumns(movie *Movie) (genres, writers, actors, images []byte, err error) {
	if genres, err = json.Marshal(movie.Genres); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encoding genres: %w", err)
	}
	if writers, err = json.Marshal(movie.Writers); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encoding writers: %w", err)
	}
	if actors, err = json.Marshal(movie.Actors); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encoding actors: %w", err)
	}
	if images, err = json.Marshal(movie.Images); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encoding images: %w", err)
	}
	return genres, writers, actors, images, nil
}
