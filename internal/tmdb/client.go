// Package tmdb is a minimal client for The Movie Database API, used by
// the catalog seeding utility. It covers exactly the two calls seeding
// needs: genre-filtered discovery and per-movie details.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Genre IDs from the TMDB catalog used by the discovery queries.
const (
	GenreDrama   = 18
	GenreHistory = 36
	GenreWar     = 10752
)

// Client talks to the TMDB v3 API. Requests retry transient failures and
// 429s with backoff via retryablehttp; TMDB throttles aggressively.
type Client struct {
	apiKey  string
	baseURL string
	http    *retryablehttp.Client
}

// NewClient creates a TMDB client with the given API key and base URL
// (e.g. "https://api.themoviedb.org/3").
func NewClient(apiKey, baseURL string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 4
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 10 * time.Second
	// retryablehttp's default logger is chatty; route through slog instead.
	rc.Logger = nil
	rc.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			slog.Debug("retrying TMDB request",
				slog.String("path", req.URL.Path),
				slog.Int("attempt", attempt),
			)
		}
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    rc,
	}
}

// DiscoverPage is one page of discovery results.
type DiscoverPage struct {
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
	Results      []MovieSummary `json:"results"`
}

// MovieSummary is the discovery-level view of a movie.
type MovieSummary struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Overview     string   `json:"overview"`
	ReleaseDate  string   `json:"release_date"`
	GenreIDs     []int    `json:"genre_ids"`
	VoteAverage  float64  `json:"vote_average"`
	VoteCount    int      `json:"vote_count"`
	Popularity   float64  `json:"popularity"`
	PosterPath   string   `json:"poster_path"`
	BackdropPath string   `json:"backdrop_path"`
	Language     string   `json:"original_language"`
	Adult        bool     `json:"adult"`
	Origin       []string `json:"origin_country"`
}

// MovieDetails is the per-movie details view, including credits.
type MovieDetails struct {
	ID          int64   `json:"id"`
	ImdbID      string  `json:"imdb_id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	Runtime     int     `json:"runtime"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	Popularity  float64 `json:"popularity"`
	PosterPath  string  `json:"poster_path"`
	Backdrop    string  `json:"backdrop_path"`

	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`

	Credits struct {
		Cast []struct {
			Name  string `json:"name"`
			Order int    `json:"order"`
		} `json:"cast"`
		Crew []struct {
			Name string `json:"name"`
			Job  string `json:"job"`
		} `json:"crew"`
	} `json:"credits"`
}

// DiscoverQuery parameterizes a discovery request.
type DiscoverQuery struct {
	// GenreIDs restricts results to movies carrying any of these genres.
	GenreIDs []int

	// Language restricts by original language (e.g. "en").
	Language string

	// SortBy is the TMDB sort expression (e.g. "popularity.desc").
	SortBy string

	// MinVoteAverage drops poorly rated titles.
	MinVoteAverage float64

	// Page selects the result page (1-based).
	Page int
}

// Discover runs a discovery query and returns one page of results.
func (c *Client) Discover(ctx context.Context, query DiscoverQuery) (*DiscoverPage, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("include_adult", "false")
	params.Set("page", strconv.Itoa(query.Page))
	if len(query.GenreIDs) > 0 {
		ids := make([]string, len(query.GenreIDs))
		for i, id := range query.GenreIDs {
			ids[i] = strconv.Itoa(id)
		}
		params.Set("with_genres", strings.Join(ids, ","))
	}
	if query.Language != "" {
		params.Set("with_original_language", query.Language)
	}
	if query.SortBy != "" {
		params.Set("sort_by", query.SortBy)
	}
	if query.MinVoteAverage > 0 {
		params.Set("vote_average.gte", strconv.FormatFloat(query.MinVoteAverage, 'f', 1, 64))
	}

	var page DiscoverPage
	if err := c.get(ctx, "/discover/movie", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Details fetches the full record for one movie, credits included.
func (c *Client) Details(ctx context.Context, movieID int64) (*MovieDetails, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("append_to_response", "credits")

	var details MovieDetails
	path := fmt.Sprintf("/movie/%d", movieID)
	if err := c.get(ctx, path, params, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// get performs a GET request against the API and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("building TMDB request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("TMDB %s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}

	return nil
}
