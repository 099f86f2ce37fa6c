package engine

import "time"

// Placeholder values used when no provider match was accepted.
const (
	UnknownArtist = "Unknown"
	UnknownGenre  = "Unknown"
	SingleAlbum   = "Single"
)

// ProgressFunc receives an overall completion percentage in [0,100].
type ProgressFunc func(percent float64)

// StatusFunc receives a short human-readable status line.
type StatusFunc func(message string)

// MediaInfo is the loosely-structured record an extractor returns for a URL.
type MediaInfo struct {
	Title    string
	Uploader string
	Duration time.Duration

	// Entries is non-empty when the URL points at a playlist.
	Entries []PlaylistEntry
}

// PlaylistEntry is one item of an inspected playlist.
type PlaylistEntry struct {
	Title    string
	URL      string
	Uploader string
	Duration time.Duration
}

// TrackTags is the final metadata record handed to a TagWriter.
// Zero values mean the field was never resolved.
type TrackTags struct {
	Title       string
	Artist      string
	Album       string
	Genre       string
	TrackNumber int
	DiscNumber  int
	DiscCount   int
	Year        int
	Lyrics      string
	Cover       []byte

	// SourceFound reports whether any provider match was accepted.
	// Files without a source keep placeholder tags and are never renamed.
	SourceFound bool
}

// TaggingResult is what the batch layer keeps per successfully tagged item.
type TaggingResult struct {
	Artist   string
	Album    string
	Title    string
	FilePath string

	// OriginalEntry back-references the playlist entry whose title/uploader
	// seeded resolution, so the consensus pass can re-resolve from the raw
	// source title.
	OriginalEntry PlaylistEntry
}

// ConsensusReport describes the dominant artist of a finished batch.
type ConsensusReport struct {
	DominantArtist string
	Count          int
	Total          int
}
