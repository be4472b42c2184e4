// Package main is the catalog seeding utility. It discovers historic
// movies (history, war, and period drama) on TMDB, fetches full details
// with credits, and upserts them into the CineVault catalog.
//
// Usage:
//
//	TMDB_API_KEY=... go run ./cmd/seed -pages 5
//
// Re-running is safe: rows are keyed by TMDB ID and refreshed in place,
// so favorites pointing at existing entries survive a re-seed.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/cinevault/cinevault/internal/config"
	"github.com/cinevault/cinevault/internal/database"
	"github.com/cinevault/cinevault/internal/plugins/movies"
	"github.com/cinevault/cinevault/internal/tmdb"
)

// imageBaseURL is the TMDB image CDN root. Size variants are path segments.
const imageBaseURL = "https://image.tmdb.org/t/p"

// strategy is one discovery pass over the TMDB catalog.
type strategy struct {
	name  string
	query tmdb.DiscoverQuery
}

func main() {
	pages := flag.Int("pages", 5, "discovery pages to fetch per strategy")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.TMDB.APIKey == "" {
		slog.Error("TMDB_API_KEY is required for seeding")
		os.Exit(1)
	}

	db, err := database.NewMariaDB(cfg.Database)
	if err != nil {
		slog.Error("failed to connect to MariaDB", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(db, "db/migrations"); err != nil {
		slog.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		slog.Error("failed to connect to Redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer rdb.Close()

	service := movies.NewMovieService(
		movies.NewMovieRepository(db),
		movies.NewListingCache(rdb),
	)
	client := tmdb.NewClient(cfg.TMDB.APIKey, cfg.TMDB.BaseURL)

	strategies := []strategy{
		{
			name: "popular historic drama",
			query: tmdb.DiscoverQuery{
				GenreIDs:       []int{tmdb.GenreDrama, tmdb.GenreHistory, tmdb.GenreWar},
				Language:       "en",
				SortBy:         "popularity.desc",
				MinVoteAverage: 6.0,
			},
		},
		{
			name: "top rated history and war",
			query: tmdb.DiscoverQuery{
				GenreIDs:       []int{tmdb.GenreHistory, tmdb.GenreWar},
				Language:       "en",
				SortBy:         "vote_average.desc",
				MinVoteAverage: 7.0,
			},
		},
	}

	ctx := context.Background()
	seeded := 0
	seen := make(map[int64]bool)

	for _, s := range strategies {
		slog.Info("running discovery strategy", slog.String("strategy", s.name))

		for page := 1; page <= *pages; page++ {
			query := s.query
			query.Page = page

			result, err := client.Discover(ctx, query)
			if err != nil {
				slog.Error("discovery failed",
					slog.String("strategy", s.name),
					slog.Int("page", page),
					slog.Any("error", err),
				)
				break
			}

			for _, summary := range result.Results {
				if seen[summary.ID] || summary.Adult {
					continue
				}
				seen[summary.ID] = true

				if err := seedOne(ctx, client, service, summary.ID); err != nil {
					slog.Warn("skipping movie",
						slog.Int64("tmdb_id", summary.ID),
						slog.Any("error", err),
					)
					continue
				}
				seeded++
			}

			if page >= result.TotalPages {
				break
			}
		}
	}

	slog.Info("seeding complete", slog.Int("seeded", seeded))
}

// seedOne fetches full details for a TMDB movie and upserts it.
func seedOne(ctx context.Context, client *tmdb.Client, service movies.MovieService, tmdbID int64) error {
	details, err := client.Details(ctx, tmdbID)
	if err != nil {
		return err
	}

	movie, err := toMovie(details)
	if err != nil {
		return err
	}

	return service.Seed(ctx, movie)
}

// toMovie maps TMDB details onto the catalog model.
func toMovie(d *tmdb.MovieDetails) (*movies.Movie, error) {
	releaseDate, err := time.Parse("2006-01-02", d.ReleaseDate)
	if err != nil {
		return nil, err
	}

	genres := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		genres = append(genres, g.Name)
	}

	var director string
	var writers []string
	for _, crew := range d.Credits.Crew {
		switch crew.Job {
		case "Director":
			if director == "" {
				director = crew.Name
			}
		case "Screenplay", "Writer":
			writers = append(writers, crew.Name)
		}
	}

	// Top-billed cast only; full cast lists run into the hundreds.
	var actors []string
	for _, cast := range d.Credits.Cast {
		if cast.Order < 10 {
			actors = append(actors, cast.Name)
		}
	}

	movie := &movies.Movie{
		Title:       d.Title,
		Description: d.Overview,
		Genres:      genres,
		ReleaseDate: releaseDate,
		Rating:      d.VoteAverage,
		VoteCount:   d.VoteCount,
		Runtime:     d.Runtime,
		Images: movies.MovieImages{
			Thumbnail: imageURL("w300", d.PosterPath),
			Poster:    imageURL("w780", d.PosterPath),
			Backdrop:  imageURL("w1280", d.Backdrop),
			Original:  imageURL("original", d.PosterPath),
		},
		Director:   director,
		Writers:    writers,
		Actors:     actors,
		Popularity: d.Popularity,
	}
	movie.TmdbID = &d.ID
	if d.ImdbID != "" {
		movie.ImdbID = &d.ImdbID
	}

	return movie, nil
}

// imageURL builds a sized TMDB CDN URL, or empty when there is no image.
func imageURL(size, path string) string {
	if path == "" {
		return ""
	}
	return imageBaseURL + "/" + size + path
}
