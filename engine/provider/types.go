package provider

import "time"

// Candidate is the normalized result of one provider lookup. Every provider
// adapter maps its own response shape into this struct at the boundary; no
// provider-specific type leaks past this package.
//
// Zero values mean the provider did not supply the field, which is distinct
// from an explicitly empty tag downstream.
type Candidate struct {
	// Provider is the name of the provider that produced this candidate.
	Provider string

	// TrackID and AlbumID are provider-specific identifiers, kept so the
	// resolver can issue detail lookups against the same provider.
	TrackID string
	AlbumID string

	Title       string
	Artist      string
	Album       string
	Genre       string
	TrackNumber int
	DiscNumber  int
	DiscCount   int
	Year        int
	Duration    time.Duration
	CoverURL    string
	Lyrics      string
}

// Merge fills c's still-zero fields from other and reports whether anything
// changed. Already-set fields are never overwritten; enrichment is strictly
// first-writer-wins.
func (c *Candidate) Merge(other *Candidate) bool {
	if other == nil {
		return false
	}

	changed := false
	if c.Album == "" && other.Album != "" {
		c.Album = other.Album
		changed = true
	}
	if c.Genre == "" && other.Genre != "" {
		c.Genre = other.Genre
		changed = true
	}
	if c.TrackNumber == 0 && other.TrackNumber != 0 {
		c.TrackNumber = other.TrackNumber
		changed = true
	}
	if c.DiscNumber == 0 && other.DiscNumber != 0 {
		c.DiscNumber = other.DiscNumber
		changed = true
	}
	if c.DiscCount == 0 && other.DiscCount != 0 {
		c.DiscCount = other.DiscCount
		changed = true
	}
	if c.Year == 0 && other.Year != 0 {
		c.Year = other.Year
		changed = true
	}
	if c.Duration == 0 && other.Duration != 0 {
		c.Duration = other.Duration
		changed = true
	}
	if c.CoverURL == "" && other.CoverURL != "" {
		c.CoverURL = other.CoverURL
		changed = true
	}
	if c.Lyrics == "" && other.Lyrics != "" {
		c.Lyrics = other.Lyrics
		changed = true
	}
	return changed
}

// NeedsDetail reports whether the candidate is missing fields a detail
// lookup against the originating provider could backfill.
func (c *Candidate) NeedsDetail() bool {
	return c.TrackNumber == 0 || c.DiscNumber == 0 || c.Year == 0
}
