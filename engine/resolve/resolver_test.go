package resolve

import (
	"context"
	"testing"
	"time"

	"github.com/dvalderas/playtag/engine"
	"github.com/dvalderas/playtag/engine/logger"
	"github.com/dvalderas/playtag/engine/provider"
)

type fakeCatalog struct {
	name    string
	results map[string]*provider.Candidate
	detail  *provider.Candidate
	queries []string
}

func (f *fakeCatalog) Name() string { return f.name }

func (f *fakeCatalog) Search(_ context.Context, query string) (*provider.Candidate, error) {
	f.queries = append(f.queries, query)
	if cand, ok := f.results[query]; ok {
		copied := *cand
		return &copied, nil
	}
	return nil, provider.ErrNotFound
}

func (f *fakeCatalog) TrackDetail(_ context.Context, trackID string) (*provider.Candidate, error) {
	if f.detail == nil {
		return nil, provider.ErrNotFound
	}
	copied := *f.detail
	return &copied, nil
}

type fakeRecognizer struct {
	cand *provider.Candidate
	err  error
}

func (f *fakeRecognizer) Name() string { return "fakeprint" }

func (f *fakeRecognizer) Recognize(_ context.Context, _ string) (*provider.Candidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	copied := *f.cand
	return &copied, nil
}

type fakeLyrics struct {
	text string
}

func (f *fakeLyrics) Name() string { return "fakelyrics" }

func (f *fakeLyrics) Lyrics(_ context.Context, _, _, _ string, _ time.Duration) (string, error) {
	if f.text == "" {
		return "", provider.ErrNotFound
	}
	return f.text, nil
}

type fakeTagger struct {
	path string
	tags *engine.TrackTags
}

func (f *fakeTagger) Write(path string, tags *engine.TrackTags) (string, error) {
	f.path = path
	f.tags = tags
	return path, nil
}

func newTestResolver(t *testing.T, reg *provider.Registry) *Resolver {
	t.Helper()
	log, err := logger.New("error", "text", "")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return &Resolver{
		Registry:  reg,
		Validator: Validator{Threshold: 0.4},
		Logger:    log,
		Lyrics:    true,
	}
}

func TestResolveAcceptsCatalogMatch(t *testing.T) {
	catalog := &fakeCatalog{
		name: "cat",
		results: map[string]*provider.Candidate{
			"Joji - Demons": {Title: "Demons", Artist: "Joji & 88rising", Album: "Ballads 1"},
		},
	}
	reg := provider.NewRegistry()
	reg.RegisterCatalog(catalog)

	r := newTestResolver(t, reg)
	res := r.Resolve(context.Background(), Request{FilePath: "/music/Joji - Demons.opus"})

	if res.Title != "Demons" {
		t.Errorf("title = %q, want Demons", res.Title)
	}
	if res.Artist != "Joji" {
		t.Errorf("artist = %q, want label-stripped Joji", res.Artist)
	}
	if res.Album != "Ballads 1" {
		t.Errorf("album = %q, want Ballads 1", res.Album)
	}
}

func TestResolvePlaceholdersOnMiss(t *testing.T) {
	reg := provider.NewRegistry()
	reg.RegisterCatalog(&fakeCatalog{name: "cat"})

	r := newTestResolver(t, reg)
	tagger := &fakeTagger{}
	r.Tagger = tagger

	res := r.Resolve(context.Background(), Request{
		FilePath:   "/music/Some Obscure Track.mp3",
		ArtistHint: "ChannelVEVO",
	})

	if res.Title != "Some Obscure Track" {
		t.Errorf("title = %q, want file-derived title", res.Title)
	}
	if res.Artist != "Channel" {
		t.Errorf("artist = %q, want cleaned hint", res.Artist)
	}
	if res.Album != engine.SingleAlbum {
		t.Errorf("album = %q, want %q", res.Album, engine.SingleAlbum)
	}
	if tagger.tags == nil {
		t.Fatal("tag write not attempted")
	}
	if tagger.tags.SourceFound {
		t.Error("SourceFound must be false on a miss")
	}
	if tagger.tags.Genre != engine.UnknownGenre {
		t.Errorf("genre = %q, want %q", tagger.tags.Genre, engine.UnknownGenre)
	}
}

func TestResolveNoHintFallsBackToUnknown(t *testing.T) {
	reg := provider.NewRegistry()
	reg.RegisterCatalog(&fakeCatalog{name: "cat"})

	r := newTestResolver(t, reg)
	res := r.Resolve(context.Background(), Request{FilePath: "/music/track01.mp3"})

	if res.Artist != engine.UnknownArtist {
		t.Errorf("artist = %q, want %q", res.Artist, engine.UnknownArtist)
	}
}

func TestResolveRejectsEmptyArtistCandidate(t *testing.T) {
	catalog := &fakeCatalog{
		name: "cat",
		results: map[string]*provider.Candidate{
			"Demons": {Title: "Demons", Album: "Ballads 1"},
		},
	}
	reg := provider.NewRegistry()
	reg.RegisterCatalog(catalog)

	r := newTestResolver(t, reg)
	tagger := &fakeTagger{}
	r.Tagger = tagger

	res := r.Resolve(context.Background(), Request{FilePath: "/music/Demons.mp3"})

	if res.Artist != engine.UnknownArtist {
		t.Errorf("artist = %q, artist-less candidate must not resolve", res.Artist)
	}
	if tagger.tags == nil {
		t.Fatal("tag write not attempted")
	}
	if tagger.tags.SourceFound {
		t.Error("SourceFound true for a candidate without an artist")
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	hit := &provider.Candidate{
		Title: "Demons", Artist: "Joji", Album: "Ballads 1",
		TrackNumber: 3, DiscNumber: 1, Year: 2018,
	}
	catalog := &fakeCatalog{
		name: "cat",
		results: map[string]*provider.Candidate{
			"Joji - Demons": hit,
			"Demons Joji":   hit,
		},
	}
	reg := provider.NewRegistry()
	reg.RegisterCatalog(catalog)
	r := newTestResolver(t, reg)

	req := Request{FilePath: "/music/Joji - Demons.opus"}
	first := r.Resolve(context.Background(), req)
	second := r.Resolve(context.Background(), req)

	if first.Title != second.Title || first.Artist != second.Artist {
		t.Errorf("repeat run drifted: %q/%q then %q/%q",
			first.Artist, first.Title, second.Artist, second.Title)
	}

	// Re-resolving the already-renamed file, as the consistency pass does,
	// must settle on the same identity.
	third := r.Resolve(context.Background(), Request{
		FilePath:      "/music/Demons.opus",
		ExplicitTitle: "Joji - Demons",
		ArtistHint:    "Joji",
		Strict:        true,
	})
	if third.Title != first.Title || third.Artist != first.Artist {
		t.Errorf("strict re-run drifted: got %q/%q, want %q/%q",
			third.Artist, third.Title, first.Artist, first.Title)
	}
}

func TestResolveCascadesToSecondCatalog(t *testing.T) {
	first := &fakeCatalog{name: "first"}
	second := &fakeCatalog{
		name: "second",
		results: map[string]*provider.Candidate{
			"Demons Joji": {Title: "Demons", Artist: "Joji"},
		},
	}
	reg := provider.NewRegistry()
	reg.RegisterCatalog(first)
	reg.RegisterCatalog(second)

	r := newTestResolver(t, reg)
	res := r.Resolve(context.Background(), Request{
		FilePath:   "/music/Demons.opus",
		ArtistHint: "Joji",
	})

	if res.Artist != "Joji" || res.Title != "Demons" {
		t.Errorf("got %q / %q, want Joji / Demons", res.Artist, res.Title)
	}
	if len(first.queries) == 0 {
		t.Error("first catalog was never consulted")
	}
}

func TestResolveDetailBackfill(t *testing.T) {
	catalog := &fakeCatalog{
		name: "cat",
		results: map[string]*provider.Candidate{
			"Demons": {Title: "Demons", Artist: "Joji", Album: "Ballads 1", TrackID: "42"},
		},
		detail: &provider.Candidate{
			Album:       "Wrong Album",
			TrackNumber: 3,
			DiscNumber:  1,
			DiscCount:   1,
			Year:        2018,
		},
	}
	reg := provider.NewRegistry()
	reg.RegisterCatalog(catalog)

	r := newTestResolver(t, reg)
	tagger := &fakeTagger{}
	r.Tagger = tagger

	r.Resolve(context.Background(), Request{FilePath: "/music/Demons.mp3"})

	if tagger.tags == nil {
		t.Fatal("tag write not attempted")
	}
	if tagger.tags.TrackNumber != 3 || tagger.tags.Year != 2018 {
		t.Errorf("detail not backfilled: %+v", tagger.tags)
	}
	if tagger.tags.Album != "Ballads 1" {
		t.Errorf("album = %q, search result must win over detail", tagger.tags.Album)
	}
}

func TestResolveStrictRejectsWrongArtist(t *testing.T) {
	catalog := &fakeCatalog{
		name: "cat",
		results: map[string]*provider.Candidate{
			"Some Song Drake": {Title: "Some Song", Artist: "Future"},
		},
	}
	reg := provider.NewRegistry()
	reg.RegisterCatalog(catalog)

	r := newTestResolver(t, reg)
	res := r.Resolve(context.Background(), Request{
		FilePath:      "/music/whatever.mp3",
		ExplicitTitle: "Some Song",
		ArtistHint:    "Drake",
		Strict:        true,
	})

	if res.Artist != "Drake" {
		t.Errorf("artist = %q, want hint fallback Drake", res.Artist)
	}
}

func TestResolveFingerprintSeedsIdentity(t *testing.T) {
	catalog := &fakeCatalog{
		name: "cat",
		results: map[string]*provider.Candidate{
			"Demons Joji": {Title: "Demons", Artist: "Joji", Album: "Ballads 1", Year: 2018, TrackNumber: 3, DiscNumber: 1},
		},
	}
	reg := provider.NewRegistry()
	reg.RegisterCatalog(catalog)
	reg.SetRecognizer(&fakeRecognizer{cand: &provider.Candidate{Title: "Demons", Artist: "Joji"}})

	r := newTestResolver(t, reg)
	tagger := &fakeTagger{}
	r.Tagger = tagger

	res := r.Resolve(context.Background(), Request{FilePath: "/music/garbled filename.opus"})

	if res.Artist != "Joji" || res.Title != "Demons" {
		t.Errorf("got %q / %q, want fingerprint identity", res.Artist, res.Title)
	}
	if tagger.tags.Album != "Ballads 1" {
		t.Errorf("album = %q, catalog enrichment missing", tagger.tags.Album)
	}
	if len(catalog.queries) == 0 || catalog.queries[0] != "Demons Joji" {
		t.Errorf("enrichment query = %v, want [\"Demons Joji\"]", catalog.queries)
	}
}

func TestResolveAttachesLyrics(t *testing.T) {
	catalog := &fakeCatalog{
		name: "cat",
		results: map[string]*provider.Candidate{
			"Demons": {Title: "Demons", Artist: "Joji", TrackNumber: 1, DiscNumber: 1, Year: 2018},
		},
	}
	reg := provider.NewRegistry()
	reg.RegisterCatalog(catalog)
	reg.SetLyrics(&fakeLyrics{text: "la la la"})

	r := newTestResolver(t, reg)
	tagger := &fakeTagger{}
	r.Tagger = tagger

	r.Resolve(context.Background(), Request{FilePath: "/music/Demons.opus"})

	if tagger.tags.Lyrics != "la la la" {
		t.Errorf("lyrics = %q, want fetched text", tagger.tags.Lyrics)
	}
}
