package batch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dvalderas/playtag/engine"
	"github.com/dvalderas/playtag/engine/logger"
	"github.com/dvalderas/playtag/engine/provider"
	"github.com/dvalderas/playtag/engine/resolve"
)

type fakeDownloader struct {
	active  atomic.Int32
	peak    atomic.Int32
	failURL string
}

func (f *fakeDownloader) Inspect(_ context.Context, url string) (*engine.MediaInfo, error) {
	return &engine.MediaInfo{Title: url}, nil
}

func (f *fakeDownloader) Download(_ context.Context, url, _, dir string, progress engine.ProgressFunc) (string, *engine.MediaInfo, error) {
	cur := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		peak := f.peak.Load()
		if cur <= peak || f.peak.CompareAndSwap(peak, cur) {
			break
		}
	}

	if progress != nil {
		progress(50)
	}
	time.Sleep(5 * time.Millisecond)
	if url == f.failURL {
		return "", nil, errors.New("network down")
	}
	if progress != nil {
		progress(100)
	}
	return dir + "/" + url + ".opus", &engine.MediaInfo{Title: url, Uploader: "chan"}, nil
}

type mapCatalog struct {
	name    string
	results map[string]*provider.Candidate
}

func (m *mapCatalog) Name() string { return m.name }

func (m *mapCatalog) Search(_ context.Context, query string) (*provider.Candidate, error) {
	if cand, ok := m.results[query]; ok {
		copied := *cand
		return &copied, nil
	}
	return nil, provider.ErrNotFound
}

func testLogger(t *testing.T) engine.Logger {
	t.Helper()
	log, err := logger.New("error", "text", "")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func testResolver(t *testing.T, results map[string]*provider.Candidate) *resolve.Resolver {
	t.Helper()
	reg := provider.NewRegistry()
	reg.RegisterCatalog(&mapCatalog{name: "cat", results: results})
	return &resolve.Resolver{
		Registry:  reg,
		Validator: resolve.Validator{Threshold: 0.4},
		Logger:    testLogger(t),
	}
}

func TestProcessHonorsWorkerCap(t *testing.T) {
	dl := &fakeDownloader{}
	o := &Orchestrator{
		Downloader: dl,
		Resolver:   testResolver(t, nil),
		Logger:     testLogger(t),
		Workers:    2,
	}

	entries := make([]engine.PlaylistEntry, 10)
	for i := range entries {
		entries[i] = engine.PlaylistEntry{Title: fmt.Sprintf("track%02d", i), URL: fmt.Sprintf("u%02d", i)}
	}

	var final float64
	results := o.Process(context.Background(), entries, Options{
		OutputDir: t.TempDir(),
		Progress:  func(p float64) { final = p },
	})

	if len(results) != 10 {
		t.Fatalf("got %d results, want 10", len(results))
	}
	if peak := dl.peak.Load(); peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
	if final != 100 {
		t.Errorf("final progress = %v, want 100", final)
	}
}

func TestProcessDropsFailedItems(t *testing.T) {
	dl := &fakeDownloader{failURL: "u01"}
	o := &Orchestrator{
		Downloader: dl,
		Resolver:   testResolver(t, nil),
		Logger:     testLogger(t),
		Workers:    2,
	}

	entries := []engine.PlaylistEntry{
		{Title: "ok one", URL: "u00"},
		{Title: "broken", URL: "u01"},
		{Title: "ok two", URL: "u02"},
	}

	results := o.Process(context.Background(), entries, Options{OutputDir: "/tmp/x"})
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, res := range results {
		if res.OriginalEntry.URL == "u01" {
			t.Error("failed entry present in results")
		}
	}
	if results[0].OriginalEntry.URL != "u00" || results[1].OriginalEntry.URL != "u02" {
		t.Errorf("results out of input order: %v, %v",
			results[0].OriginalEntry.URL, results[1].OriginalEntry.URL)
	}
}

func TestProcessKeepsEntryMetadata(t *testing.T) {
	catalog := map[string]*provider.Candidate{
		"Demons Joji": {Title: "Demons", Artist: "Joji", Album: "Ballads 1",
			TrackNumber: 3, DiscNumber: 1, Year: 2018},
	}
	o := &Orchestrator{
		Downloader: &fakeDownloader{},
		Resolver:   testResolver(t, catalog),
		Logger:     testLogger(t),
		Workers:    1,
	}

	entries := []engine.PlaylistEntry{{Title: "Demons", URL: "u00", Uploader: "JojiVEVO"}}
	results := o.Process(context.Background(), entries, Options{OutputDir: "/tmp/x"})

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Artist != "Joji" || results[0].Album != "Ballads 1" {
		t.Errorf("resolution not applied: %+v", results[0])
	}
	if results[0].OriginalEntry.Title != "Demons" {
		t.Errorf("original entry lost: %+v", results[0].OriginalEntry)
	}
}

func TestProcessEmptyBatch(t *testing.T) {
	o := &Orchestrator{
		Downloader: &fakeDownloader{},
		Resolver:   testResolver(t, nil),
		Logger:     testLogger(t),
		Workers:    2,
	}
	if results := o.Process(context.Background(), nil, Options{}); results != nil {
		t.Errorf("got %v, want nil", results)
	}
}
