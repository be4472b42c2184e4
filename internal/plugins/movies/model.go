// Package movies is the historic-movies catalog plugin: the resource API
// the authentication layer fronts. All endpoints require a verified
// bearer identity; listing traffic is additionally rate-limited under the
// catalog route class and served from a Redis cache.
package movies

import (
	"time"
)

// Movie represents one catalog entry. Database scanning and JSON
// marshaling use this struct directly; list-valued fields are stored as
// JSON columns.
type Movie struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Genres      []string  `json:"genres"`
	ReleaseDate time.Time `json:"release_date"`
	Rating      float64   `json:"rating"`
	VoteCount   int       `json:"vote_count"`
	Runtime     int       `json:"runtime"`

	Images MovieImages `json:"images"`

	Director string   `json:"director"`
	Writers  []string `json:"writers,omitempty"`
	Actors   []string `json:"actors,omitempty"`
	Featured bool     `json:"featured"`

	// TMDB references, set by the seeding utility.
	TmdbID     *int64  `json:"tmdb_id,omitempty"`
	ImdbID     *string `json:"imdb_id,omitempty"`
	Popularity float64 `json:"popularity,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MovieImages holds the image variants for a catalog entry.
type MovieImages struct {
	// Thumbnail is sized for movie cards (300x450).
	Thumbnail string `json:"thumbnail"`

	// Poster is sized for detailed views and featured cards (780x1170).
	Poster string `json:"poster"`

	// Backdrop is sized for hero sections and backgrounds (1280x720).
	Backdrop string `json:"backdrop,omitempty"`

	// Original is the high-res source image.
	Original string `json:"original,omitempty"`
}

// MovieRequest holds the data submitted to create or replace a catalog
// entry (POST /movies, PUT /movies/:id).
type MovieRequest struct {
	Title       string      `json:"title" validate:"required,max=255"`
	Description string      `json:"description"`
	Genres      []string    `json:"genres" validate:"required,min=1,dive,required"`
	ReleaseDate time.Time   `json:"release_date" validate:"required"`
	Rating      float64     `json:"rating" validate:"gte=0,lte=10"`
	VoteCount   int         `json:"vote_count" validate:"gte=0"`
	Runtime     int         `json:"runtime" validate:"gte=0"`
	Images      MovieImages `json:"images"`
	Director    string      `json:"director" validate:"max=255"`
	Writers     []string    `json:"writers"`
	Actors      []string    `json:"actors"`
	Featured    bool        `json:"featured"`
}

// toMovie maps the request onto a catalog entry.
func (r MovieRequest) toMovie() *Movie {
	return &Movie{
		Title:       r.Title,
		Description: r.Description,
		Genres:      r.Genres,
		ReleaseDate: r.ReleaseDate,
		Rating:      r.Rating,
		VoteCount:   r.VoteCount,
		Runtime:     r.Runtime,
		Images:      r.Images,
		Director:    r.Director,
		Writers:     r.Writers,
		Actors:      r.Actors,
		Featured:    r.Featured,
	}
}

// ListFilter narrows a catalog listing. Zero values mean "no constraint".
type ListFilter struct {
	// Genre matches movies carrying the genre (case-insensitive).
	Genre string

	// Director matches movies by exact director name.
	Director string

	// Featured, when non-nil, filters on the featured flag.
	Featured *bool

	// Limit caps the result size; 0 means the default page size.
	Limit int

	// Offset skips the first N results for pagination.
	Offset int
}
