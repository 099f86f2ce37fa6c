package provider

import (
	"context"
	"time"
)

// Catalog is a text-search metadata provider. Search returns at most one
// candidate for the query.
//
// Implementations should be safe for concurrent use by multiple goroutines.
type Catalog interface {
	// Name returns the provider identifier (e.g., "itunes", "deezer").
	Name() string

	// Search looks up the query and returns the best candidate.
	// Returns ErrNotFound when the provider has no result.
	Search(ctx context.Context, query string) (*Candidate, error)
}

// TrackDetailer is implemented by catalogs that expose a secondary per-track
// detail endpoint used to backfill track/disc/year fields.
type TrackDetailer interface {
	TrackDetail(ctx context.Context, trackID string) (*Candidate, error)
}

// AlbumDetailer is implemented by catalogs that expose a per-album detail
// endpoint used to backfill disc counts and release years.
type AlbumDetailer interface {
	AlbumDetail(ctx context.Context, albumID string) (*Candidate, error)
}

// LyricsSource fetches lyrics by exact track metadata, falling back to a
// loose text search internally when the exact lookup misses.
type LyricsSource interface {
	Name() string

	// Lyrics returns the lyrics text, or ErrNotFound when neither the exact
	// nor the loose lookup produced anything.
	Lyrics(ctx context.Context, title, artist, album string, duration time.Duration) (string, error)
}

// Recognizer identifies a track purely from audio content, independent of
// file-name noise. It is an optional dependency: resolution degrades to
// catalog-only lookups when no Recognizer is configured.
type Recognizer interface {
	Name() string

	// Recognize fingerprints the local audio file and returns the matched
	// candidate. Returns ErrNotFound when the audio is not recognized.
	Recognize(ctx context.Context, filePath string) (*Candidate, error)
}
