package batch

import (
	"context"
	"math"
	"strings"

	"github.com/dvalderas/playtag/engine"
	"github.com/dvalderas/playtag/engine/resolve"
)

// Analyzer checks a finished batch for artist consistency. Playlists are
// usually single-artist; when a clear majority agrees on one artist, the
// outliers are almost always validation false positives and get re-resolved
// with the dominant artist as a trusted hint.
type Analyzer struct {
	Resolver  *resolve.Resolver
	Logger    engine.Logger
	Threshold float64
}

// Consensus tallies artists across results and reports the dominant one.
// Placeholder artists never vote. The boolean is false when no artist
// reaches the threshold share of the whole batch.
func (a *Analyzer) Consensus(results []engine.TaggingResult) (engine.ConsensusReport, bool) {
	report := engine.ConsensusReport{Total: len(results)}
	if len(results) == 0 {
		return report, false
	}

	counts := make(map[string]int)
	for _, res := range results {
		if res.Artist == "" || res.Artist == engine.UnknownArtist {
			continue
		}
		counts[res.Artist]++
	}
	for artist, n := range counts {
		if n > report.Count {
			report.DominantArtist = artist
			report.Count = n
		}
	}

	threshold := a.Threshold
	if threshold <= 0 {
		threshold = 0.6
	}
	need := int(math.Ceil(float64(report.Total) * threshold))
	return report, report.Count >= need && report.DominantArtist != ""
}

// Analyze runs consensus detection and sequentially re-resolves every
// impostor in strict mode, using the dominant artist as the hint and the
// entry's original title instead of whatever the bad match renamed the
// file to.
func (a *Analyzer) Analyze(ctx context.Context, results []engine.TaggingResult, status engine.StatusFunc) []engine.TaggingResult {
	// A batch of one has no peers to disagree with.
	if len(results) < 2 {
		return results
	}
	if status == nil {
		status = func(string) {}
	}

	report, ok := a.Consensus(results)
	if !ok {
		a.Logger.Info("no artist consensus, skipping consistency pass",
			"total", report.Total, "best", report.DominantArtist, "count", report.Count)
		return results
	}
	a.Logger.Info("artist consensus found",
		"artist", report.DominantArtist, "count", report.Count, "total", report.Total)

	for i, res := range results {
		if !a.impostor(res.Artist, report.DominantArtist) {
			continue
		}
		status("Correcting: " + res.Title + " (" + res.Artist + " -> " + report.DominantArtist + ")")
		a.Logger.Warn("artist outlier, re-resolving",
			"title", res.Title, "artist", res.Artist, "dominant", report.DominantArtist)

		fixed := a.Resolver.Resolve(ctx, resolve.Request{
			FilePath:      res.FilePath,
			ArtistHint:    report.DominantArtist,
			ExplicitTitle: res.OriginalEntry.Title,
			Strict:        true,
			Status:        status,
		})
		fixed.OriginalEntry = res.OriginalEntry
		results[i] = *fixed
	}
	return results
}

// impostor reports whether an artist contradicts the dominant one. A
// collaboration credit that contains the dominant artist is not an
// impostor.
func (a *Analyzer) impostor(artist, dominant string) bool {
	if artist == dominant {
		return false
	}
	return !strings.Contains(strings.ToLower(artist), strings.ToLower(dominant))
}
