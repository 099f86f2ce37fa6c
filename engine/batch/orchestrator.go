package batch

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/dvalderas/playtag/engine"
	"github.com/dvalderas/playtag/engine/resolve"
)

// Options carries per-batch settings.
type Options struct {
	Format    string
	OutputDir string
	Progress  engine.ProgressFunc
	Status    engine.StatusFunc
}

// Orchestrator downloads and resolves playlist entries with bounded
// concurrency. Failures are per-item: a broken entry is logged and dropped
// while the rest of the batch keeps going.
type Orchestrator struct {
	Downloader engine.Downloader
	Resolver   *resolve.Resolver
	Logger     engine.Logger
	Workers    int64
	Jitter     JitterPolicy
}

// Process works through all entries and returns the results of the items
// that downloaded successfully, in input order. Progress callbacks report
// the mean completion over every entry, failed ones included.
func (o *Orchestrator) Process(ctx context.Context, entries []engine.PlaylistEntry, opts Options) []engine.TaggingResult {
	if len(entries) == 0 {
		return nil
	}
	workers := o.Workers
	if workers < 1 {
		workers = 1
	}

	status := opts.Status
	if status == nil {
		status = func(string) {}
	}

	tracker := NewTracker(len(entries), opts.Progress)
	sem := semaphore.NewWeighted(workers)
	slots := make([]*engine.TaggingResult, len(entries))

	var wg sync.WaitGroup
	for i, entry := range entries {
		if err := sem.Acquire(ctx, 1); err != nil {
			o.Logger.Warn("batch canceled", "remaining", len(entries)-i)
			break
		}
		wg.Add(1)
		go func(idx int, entry engine.PlaylistEntry) {
			defer wg.Done()
			defer sem.Release(1)
			defer tracker.Update(idx, 100)

			o.Jitter.Sleep(ctx)
			if ctx.Err() != nil {
				return
			}
			slots[idx] = o.processOne(ctx, idx, entry, tracker, opts, status)
		}(i, entry)
	}
	wg.Wait()

	results := make([]engine.TaggingResult, 0, len(entries))
	for _, res := range slots {
		if res != nil {
			results = append(results, *res)
		}
	}
	return results
}

func (o *Orchestrator) processOne(ctx context.Context, idx int, entry engine.PlaylistEntry,
	tracker *Tracker, opts Options, status engine.StatusFunc) *engine.TaggingResult {

	status("Downloading: " + entry.Title)
	path, info, err := o.Downloader.Download(ctx, entry.URL, opts.Format, opts.OutputDir,
		func(percent float64) { tracker.Update(idx, percent) })
	if err != nil {
		o.Logger.Error("download failed", "title", entry.Title, "url", entry.URL, "error", err)
		return nil
	}

	hint := entry.Uploader
	if hint == "" && info != nil {
		hint = info.Uploader
	}

	res := o.Resolver.Resolve(ctx, resolve.Request{
		FilePath:      path,
		ArtistHint:    hint,
		ExplicitTitle: entry.Title,
		Status:        status,
	})
	res.OriginalEntry = entry
	return res
}
