package movies

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cinevault/cinevault/internal/apperror"
)

// MovieService defines the business logic contract for the catalog.
// Handlers call these methods -- they never touch the repository directly.
type MovieService interface {
	List(ctx context.Context, filter ListFilter) ([]Movie, error)
	GetByID(ctx context.Context, id string) (*Movie, error)
	GetByTitle(ctx context.Context, title string) (*Movie, error)

	Create(ctx context.Context, movie *Movie) (*Movie, error)
	Update(ctx context.Context, id string, movie *Movie) (*Movie, error)
	Delete(ctx context.Context, id string) error

	// Seed inserts or refreshes a catalog entry and invalidates the
	// listing cache. Used by the seeding utility.
	Seed(ctx context.Context, movie *Movie) error
}

// movieService implements MovieService with a read-through listing cache.
type movieService struct {
	repo  MovieRepository
	cache *ListingCache
}

// NewMovieService creates a new movie service. cache may be nil, in which
// case every listing hits the database.
func NewMovieService(repo MovieRepository, cache *ListingCache) MovieService {
	return &movieService{
		repo:  repo,
		cache: cache,
	}
}

// List returns catalog entries matching the filter, read through the
// listing cache when one is configured.
func (s *movieService) List(ctx context.Context, filter ListFilter) ([]Movie, error) {
	if s.cache != nil {
		if result, ok := s.cache.Get(ctx, filter); ok {
			return result, nil
		}
	}

	result, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing movies: %w", err))
	}

	if s.cache != nil {
		s.cache.Set(ctx, filter, result)
	}

	return result, nil
}

// GetByID returns a single catalog entry.
func (s *movieService) GetByID(ctx context.Context, id string) (*Movie, error) {
	movie, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, passThrough(err, "finding movie by id")
	}
	return movie, nil
}

// GetByTitle returns a single catalog entry by exact title.
func (s *movieService) GetByTitle(ctx context.Context, title string) (*Movie, error) {
	movie, err := s.repo.FindByTitle(ctx, title)
	if err != nil {
		return nil, passThrough(err, "finding movie by title")
	}
	return movie, nil
}

// Create inserts a new catalog entry and drops the listing cache.
func (s *movieService) Create(ctx context.Context, movie *Movie) (*Movie, error) {
	now := time.Now().UTC()
	movie.ID = uuid.NewString()
	movie.CreatedAt = now
	movie.UpdatedAt = now

	if err := s.repo.Create(ctx, movie); err != nil {
		return nil, passThrough(err, "creating movie")
	}
	s.invalidate(ctx)

	slog.Info("movie created", slog.String("movie_id", movie.ID), slog.String("title", movie.Title))
	return movie, nil
}

// Update replaces the mutable fields of a catalog entry and drops the
// listing cache.
func (s *movieService) Update(ctx context.Context, id string, movie *Movie) (*Movie, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, passThrough(err, "loading movie for update")
	}

	movie.ID = existing.ID
	movie.TmdbID = existing.TmdbID
	movie.ImdbID = existing.ImdbID
	movie.Popularity = existing.Popularity
	movie.CreatedAt = existing.CreatedAt
	movie.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, movie); err != nil {
		return nil, passThrough(err, "updating movie")
	}
	s.invalidate(ctx)

	slog.Info("movie updated", slog.String("movie_id", movie.ID))
	return movie, nil
}

// Delete removes a catalog entry. Favorites referencing it cascade away.
func (s *movieService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return passThrough(err, "deleting movie")
	}
	s.invalidate(ctx)

	slog.Info("movie deleted", slog.String("movie_id", id))
	return nil
}

// Seed upserts a catalog entry keyed by its TMDB reference and drops the
// listing cache.
func (s *movieService) Seed(ctx context.Context, movie *Movie) error {
	now := time.Now().UTC()
	if movie.ID == "" {
		movie.ID = uuid.NewString()
	}
	if movie.CreatedAt.IsZero() {
		movie.CreatedAt = now
	}
	movie.UpdatedAt = now

	if err := s.repo.UpsertByTmdbID(ctx, movie); err != nil {
		return apperror.NewInternal(fmt.Errorf("seeding movie: %w", err))
	}
	s.invalidate(ctx)

	slog.Debug("movie seeded", slog.String("title", movie.Title))
	return nil
}

// invalidate drops the listing cache after a catalog write.
func (s *movieService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

// passThrough forwards repository AppErrors (404s) and wraps anything
// else as a 500.
func passThrough(err error, op string) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.NewInternal(fmt.Errorf("%s: %w", op, err))
}
