package movies

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cinevault/cinevault/internal/apperror"
)

// --- Mock Repository ---

// mockMovieRepo implements MovieRepository for testing.
type mockMovieRepo struct {
	listFn           func(ctx context.Context, filter ListFilter) ([]Movie, error)
	findByIDFn       func(ctx context.Context, id string) (*Movie, error)
	findByTitleFn    func(ctx context.Context, title string) (*Movie, error)
	createFn         func(ctx context.Context, movie *Movie) error
	updateFn         func(ctx context.Context, movie *Movie) error
	deleteFn         func(ctx context.Context, id string) error
	upsertByTmdbIDFn func(ctx context.Context, movie *Movie) error

	listCalls int
}

func (m *mockMovieRepo) List(ctx context.Context, filter ListFilter) ([]Movie, error) {
	m.listCalls++
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockMovieRepo) FindByID(ctx context.Context, id string) (*Movie, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, apperror.NewNotFound("movie not found")
}

func (m *mockMovieRepo) FindByTitle(ctx context.Context, title string) (*Movie, error) {
	if m.findByTitleFn != nil {
		return m.findByTitleFn(ctx, title)
	}
	return nil, apperror.NewNotFound("movie not found")
}

func (m *mockMovieRepo) Create(ctx context.Context, movie *Movie) error {
	if m.createFn != nil {
		return m.createFn(ctx, movie)
	}
	return nil
}

func (m *mockMovieRepo) Update(ctx context.Context, movie *Movie) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, movie)
	}
	return nil
}

func (m *mockMovieRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockMovieRepo) UpsertByTmdbID(ctx context.Context, movie *Movie) error {
	if m.upsertByTmdbIDFn != nil {
		return m.upsertByTmdbIDFn(ctx, movie)
	}
	return nil
}

func sampleMovie(id, title string) Movie {
	return Movie{
		ID:          id,
		Title:       title,
		Genres:      []string{"Drama", "History"},
		ReleaseDate: time.Date(1962, 12, 10, 0, 0, 0, 0, time.UTC),
		Director:    "David Lean",
	}
}

// --- List Tests ---

func TestList_NoCache(t *testing.T) {
	repo := &mockMovieRepo{
		listFn: func(ctx context.Context, filter ListFilter) ([]Movie, error) {
			if filter.Genre != "History" {
				t.Errorf("expected genre filter History, got %q", filter.Genre)
			}
			return []Movie{sampleMovie("movie-1", "Lawrence of Arabia")}, nil
		},
	}

	svc := NewMovieService(repo, nil)
	result, err := svc.List(context.Background(), ListFilter{Genre: "History"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 1 || result[0].Title != "Lawrence of Arabia" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestList_RepoFailure(t *testing.T) {
	repo := &mockMovieRepo{
		listFn: func(ctx context.Context, filter ListFilter) ([]Movie, error) {
			return nil, errors.New("query failed")
		},
	}

	_, err := NewMovieService(repo, nil).List(context.Background(), ListFilter{})
	if err == nil {
		t.Fatal("expected error")
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != 500 {
		t.Errorf("expected 500 AppError, got %v", err)
	}
}

// --- Get Tests ---

func TestGetByID_NotFound(t *testing.T) {
	svc := NewMovieService(&mockMovieRepo{}, nil)
	_, err := svc.GetByID(context.Background(), "no-such-id")

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != 404 {
		t.Errorf("expected 404 AppError, got %v", err)
	}
}

func TestGetByTitle_Found(t *testing.T) {
	movie := sampleMovie("movie-1", "Lawrence of Arabia")
	repo := &mockMovieRepo{
		findByTitleFn: func(ctx context.Context, title string) (*Movie, error) {
			if title != "Lawrence of Arabia" {
				t.Errorf("unexpected title lookup %q", title)
			}
			return &movie, nil
		},
	}

	got, err := NewMovieService(repo, nil).GetByTitle(context.Background(), "Lawrence of Arabia")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "movie-1" {
		t.Errorf("expected movie-1, got %s", got.ID)
	}
}

// --- Mutation Tests ---

func TestCreate_AssignsIdentity(t *testing.T) {
	var saved *Movie
	repo := &mockMovieRepo{
		createFn: func(ctx context.Context, movie *Movie) error {
			saved = movie
			return nil
		},
	}

	movie := sampleMovie("", "Paths of Glory")
	got, err := NewMovieService(repo, nil).Create(context.Background(), &movie)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil {
		t.Fatal("expected insert to be called")
	}
	if got.ID == "" {
		t.Error("expected ID to be generated")
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestUpdate_PreservesImmutableFields(t *testing.T) {
	existing := sampleMovie("movie-1", "Lawrence of Arabia")
	tmdbID := int64(947)
	existing.TmdbID = &tmdbID
	existing.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var saved *Movie
	repo := &mockMovieRepo{
		findByIDFn: func(ctx context.Context, id string) (*Movie, error) {
			return &existing, nil
		},
		updateFn: func(ctx context.Context, movie *Movie) error {
			saved = movie
			return nil
		},
	}

	replacement := sampleMovie("", "Lawrence of Arabia (Restored)")
	got, err := NewMovieService(repo, nil).Update(context.Background(), "movie-1", &replacement)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil {
		t.Fatal("expected update to be persisted")
	}
	if got.ID != "movie-1" {
		t.Errorf("expected existing ID, got %s", got.ID)
	}
	if got.TmdbID == nil || *got.TmdbID != 947 {
		t.Error("expected TMDB reference to be preserved")
	}
	if !got.CreatedAt.Equal(existing.CreatedAt) {
		t.Error("expected creation timestamp to be preserved")
	}
	if got.Title != "Lawrence of Arabia (Restored)" {
		t.Errorf("expected replaced title, got %s", got.Title)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc := NewMovieService(&mockMovieRepo{}, nil)
	movie := sampleMovie("", "Nothing")
	_, err := svc.Update(context.Background(), "no-such-id", &movie)

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != 404 {
		t.Errorf("expected 404 AppError, got %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo := &mockMovieRepo{
		deleteFn: func(ctx context.Context, id string) error {
			return apperror.NewNotFound("movie not found")
		},
	}
	err := NewMovieService(repo, nil).Delete(context.Background(), "no-such-id")

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != 404 {
		t.Errorf("expected 404 AppError, got %v", err)
	}
}

// --- Seed Tests ---

func TestSeed_AssignsIdentityAndTimestamps(t *testing.T) {
	var saved *Movie
	repo := &mockMovieRepo{
		upsertByTmdbIDFn: func(ctx context.Context, movie *Movie) error {
			saved = movie
			return nil
		},
	}

	movie := sampleMovie("", "Lawrence of Arabia")
	tmdbID := int64(947)
	movie.TmdbID = &tmdbID

	if err := NewMovieService(repo, nil).Seed(context.Background(), &movie); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved == nil {
		t.Fatal("expected upsert to be called")
	}
	if saved.ID == "" {
		t.Error("expected ID to be generated")
	}
	if saved.CreatedAt.IsZero() || saved.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestSeed_KeepsExistingID(t *testing.T) {
	var saved *Movie
	repo := &mockMovieRepo{
		upsertByTmdbIDFn: func(ctx context.Context, movie *Movie) error {
			saved = movie
			return nil
		},
	}

	movie := sampleMovie("existing-id", "Lawrence of Arabia")
	if err := NewMovieService(repo, nil).Seed(context.Background(), &movie); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.ID != "existing-id" {
		t.Errorf("expected existing ID to be kept, got %s", saved.ID)
	}
}
