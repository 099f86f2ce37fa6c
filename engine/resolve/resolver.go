package resolve

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/dvalderas/playtag/engine"
	"github.com/dvalderas/playtag/engine/provider"
)

// CoverFetcher downloads and prepares cover art for embedding.
type CoverFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Request describes one resolution job. ExplicitTitle overrides the title
// derived from the file name; Strict switches artist validation from
// plausibility checks to hint matching and is used by consensus
// re-resolution.
type Request struct {
	FilePath      string
	ArtistHint    string
	ExplicitTitle string
	Strict        bool
	Status        engine.StatusFunc
}

// Resolver runs the cascading lookup pipeline: fingerprint first when
// available, then catalog search over query strategies, detail backfill,
// lyrics, cover art, and finally the tag write. Resolve never fails: any
// provider error downgrades to "no candidate" and unresolved fields fall
// back to placeholders.
type Resolver struct {
	Registry  *provider.Registry
	Validator Validator
	Covers    CoverFetcher
	Tagger    engine.TagWriter
	Logger    engine.Logger
	Lyrics    bool
}

// Resolve identifies the track behind req.FilePath and writes the outcome
// into the file's tags. The returned result always carries a usable title
// and artist, real or placeholder, plus the file's final path.
func (r *Resolver) Resolve(ctx context.Context, req Request) *engine.TaggingResult {
	rawTitle := req.ExplicitTitle
	if rawTitle == "" {
		base := filepath.Base(req.FilePath)
		rawTitle = strings.TrimSuffix(base, filepath.Ext(base))
	}
	clean := CleanTitle(rawTitle)
	queries := BuildQueries(rawTitle, req.ArtistHint, req.Strict)

	status := req.Status
	if status == nil {
		status = func(string) {}
	}

	acc := &provider.Candidate{}
	found := false

	if seed := r.fingerprint(ctx, req); seed != nil {
		acc = seed
		found = true
		// The recognized identity replaces the noisy name-derived
		// queries; the catalogs now only enrich it.
		queries = []Query{{Text: seed.Title + " " + seed.Artist, HasArtist: true}}
		clean = seed.Title
		status("Recognized by fingerprint: " + seed.Artist + " - " + seed.Title)
	}

	var source provider.Catalog
	for _, query := range queries {
		if found && !acc.NeedsDetail() {
			break
		}
		for _, catalog := range r.Registry.Catalogs() {
			if found && !acc.NeedsDetail() {
				break
			}
			cand, err := catalog.Search(ctx, query.Text)
			if err != nil {
				if !errors.Is(err, provider.ErrNotFound) {
					r.Logger.Warn("catalog search failed",
						"provider", catalog.Name(), "query", query.Text, "error", err)
				}
				continue
			}
			if found {
				// Identity is settled; later hits may only fill gaps,
				// and only when they describe the same track.
				if r.Validator.TitleMatches(clean, cand.Title) {
					acc.Merge(cand)
				}
				continue
			}
			if !r.accept(query, clean, cand, req) {
				r.Logger.Debug("candidate rejected",
					"provider", catalog.Name(), "query", query.Text,
					"title", cand.Title, "artist", cand.Artist)
				continue
			}
			acc = cand
			acc.Artist = NormalizeArtist(acc.Artist)
			found = true
			source = catalog
			status("Matched on " + catalog.Name() + ": " + acc.Artist + " - " + acc.Title)
		}
	}

	if found && acc.NeedsDetail() && source != nil {
		r.backfill(ctx, source, acc)
	}

	if found && r.Lyrics && acc.Lyrics == "" {
		r.fetchLyrics(ctx, acc)
	}

	tags := r.finalTags(acc, found, rawTitle, req)

	if found && acc.CoverURL != "" && r.Covers != nil {
		cover, err := r.Covers.Fetch(ctx, acc.CoverURL)
		if err != nil {
			r.Logger.Warn("cover download failed", "url", acc.CoverURL, "error", err)
		} else {
			tags.Cover = cover
		}
	}

	finalPath := req.FilePath
	if r.Tagger != nil {
		newPath, err := r.Tagger.Write(req.FilePath, tags)
		if err != nil {
			r.Logger.Error("tag write failed", "path", req.FilePath, "error", err)
		} else {
			finalPath = newPath
		}
	}

	return &engine.TaggingResult{
		Artist:   tags.Artist,
		Album:    tags.Album,
		Title:    tags.Title,
		FilePath: finalPath,
	}
}

func (r *Resolver) accept(query Query, clean string, cand *provider.Candidate, req Request) bool {
	if cand == nil || cand.Title == "" || cand.Artist == "" {
		return false
	}
	if !r.Validator.TitleMatches(clean, cand.Title) {
		return false
	}
	if req.Strict {
		return r.Validator.ArtistMatchesHint(cand.Artist, req.ArtistHint)
	}
	return r.Validator.ArtistPlausible(query.Text, clean, cand.Artist)
}

func (r *Resolver) fingerprint(ctx context.Context, req Request) *provider.Candidate {
	rec := r.Registry.Recognizer()
	if rec == nil {
		return nil
	}
	cand, err := rec.Recognize(ctx, req.FilePath)
	if err != nil {
		if !errors.Is(err, provider.ErrNotFound) && !errors.Is(err, provider.ErrUnsupported) {
			r.Logger.Warn("fingerprint lookup failed", "path", req.FilePath, "error", err)
		}
		return nil
	}
	if cand == nil || cand.Title == "" || cand.Artist == "" {
		return nil
	}
	if req.Strict && !r.Validator.ArtistMatchesHint(cand.Artist, req.ArtistHint) {
		return nil
	}
	cand.Artist = NormalizeArtist(cand.Artist)
	return cand
}

func (r *Resolver) backfill(ctx context.Context, source provider.Catalog, acc *provider.Candidate) {
	if td, ok := source.(provider.TrackDetailer); ok && acc.TrackID != "" {
		if detail, err := td.TrackDetail(ctx, acc.TrackID); err == nil {
			acc.Merge(detail)
		} else if !errors.Is(err, provider.ErrNotFound) {
			r.Logger.Warn("track detail failed", "provider", source.Name(),
				"id", acc.TrackID, "error", err)
		}
	}
	if !acc.NeedsDetail() {
		return
	}
	if ad, ok := source.(provider.AlbumDetailer); ok && acc.AlbumID != "" {
		if detail, err := ad.AlbumDetail(ctx, acc.AlbumID); err == nil {
			acc.Merge(detail)
		} else if !errors.Is(err, provider.ErrNotFound) {
			r.Logger.Warn("album detail failed", "provider", source.Name(),
				"id", acc.AlbumID, "error", err)
		}
	}
}

func (r *Resolver) fetchLyrics(ctx context.Context, acc *provider.Candidate) {
	src := r.Registry.Lyrics()
	if src == nil || acc.Artist == "" || acc.Artist == engine.UnknownArtist {
		return
	}
	text, err := src.Lyrics(ctx, acc.Title, acc.Artist, acc.Album, acc.Duration)
	if err != nil {
		if !errors.Is(err, provider.ErrNotFound) {
			r.Logger.Warn("lyrics lookup failed", "title", acc.Title,
				"artist", acc.Artist, "error", err)
		}
		return
	}
	acc.Lyrics = text
}

func (r *Resolver) finalTags(acc *provider.Candidate, found bool, rawTitle string, req Request) *engine.TrackTags {
	tags := &engine.TrackTags{SourceFound: found}
	if found {
		tags.Title = acc.Title
		tags.Artist = acc.Artist
		tags.Album = acc.Album
		tags.Genre = acc.Genre
		tags.TrackNumber = acc.TrackNumber
		tags.DiscNumber = acc.DiscNumber
		tags.DiscCount = acc.DiscCount
		tags.Year = acc.Year
		tags.Lyrics = acc.Lyrics
	} else {
		tags.Title = rawTitle
		if hint := CleanArtistHint(req.ArtistHint); hint != "" {
			tags.Artist = NormalizeArtist(hint)
		}
	}
	if tags.Artist == "" {
		tags.Artist = engine.UnknownArtist
	}
	if tags.Album == "" {
		tags.Album = engine.SingleAlbum
	}
	if tags.Genre == "" {
		tags.Genre = engine.UnknownGenre
	}
	return tags
}
