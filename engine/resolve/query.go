package resolve

import (
	"regexp"
	"strings"
)

// Query is one candidate search string. HasArtist marks queries that embed
// an assumed artist token, which changes how artist plausibility is checked.
type Query struct {
	Text      string
	HasArtist bool
}

var (
	// Bracketed/parenthesized annotations like "(Official Video)" or
	// "[Lyrics]" carry no catalog signal and poison similarity checks.
	annotationPattern = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)

	// Channel branding that uploaders append to their names.
	channelNoisePattern = regexp.MustCompile(`(?i)VEVO|Official|Topic`)
)

// CleanTitle strips bracketed annotations from a raw title. The result is
// the baseline comparison target for all later validation.
func CleanTitle(raw string) string {
	return strings.TrimSpace(annotationPattern.ReplaceAllString(raw, ""))
}

// CleanArtistHint strips channel-branding tokens from an uploader name.
func CleanArtistHint(hint string) string {
	return strings.TrimSpace(channelNoisePattern.ReplaceAllString(hint, ""))
}

// BuildQueries derives the ordered search strategies for a raw title and
// optional artist hint. Ordering is fixed and deterministic:
//
//  1. cleaned title + cleaned hint (hint skipped when already embedded)
//  2. hyphen swap: "Uploader - Song" becomes "Song Uploader", plus
//     "Song <hint>" when a hint exists
//  3. the bare cleaned title, unless strict
//
// Strict mode omits the bare fallback so a consensus correction cannot
// re-accept the same artist-less false positive it is fixing.
func BuildQueries(rawTitle, artistHint string, strict bool) []Query {
	clean := CleanTitle(rawTitle)

	var queries []Query
	add := func(q Query) {
		q.Text = strings.TrimSpace(q.Text)
		if q.Text == "" {
			return
		}
		for _, existing := range queries {
			if strings.EqualFold(existing.Text, q.Text) {
				return
			}
		}
		queries = append(queries, q)
	}

	primary := Query{Text: clean}
	if hint := CleanArtistHint(artistHint); hint != "" {
		if !strings.Contains(strings.ToLower(clean), strings.ToLower(hint)) {
			primary = Query{Text: clean + " " + hint, HasArtist: true}
		}
	}
	add(primary)

	// YouTube channels frequently title uploads "Artist - Song"; swapping
	// the halves improves catalog hit rate.
	if parts := strings.SplitN(clean, " - ", 2); len(parts) == 2 {
		song := strings.TrimSpace(parts[1])
		uploader := strings.TrimSpace(parts[0])
		if song != "" && uploader != "" {
			add(Query{Text: song + " " + uploader, HasArtist: true})
		}
		if hint := strings.TrimSpace(artistHint); hint != "" && song != "" {
			add(Query{Text: song + " " + hint, HasArtist: true})
		}
	}

	if !strict {
		add(Query{Text: clean})
	}

	return queries
}
