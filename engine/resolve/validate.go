package resolve

import (
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Validator decides whether a catalog candidate plausibly describes the
// track a query was built from. Threshold is the minimum normalized
// similarity ratio for non-substring title matches.
type Validator struct {
	Threshold float64
}

var artistTokenPattern = regexp.MustCompile(`[\s,&]+`)

// Similarity returns a normalized ratio in [0,1] between two strings,
// case-insensitive, based on Levenshtein edit distance.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	dist := fuzzy.LevenshteinDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// TitleMatches reports whether a candidate title is plausible for the
// cleaned query title. Substring containment in either direction is an
// unconditional accept; otherwise the similarity ratio must exceed the
// threshold.
func (v Validator) TitleMatches(cleanTitle, candidateTitle string) bool {
	ct := strings.ToLower(strings.TrimSpace(cleanTitle))
	cand := strings.ToLower(strings.TrimSpace(candidateTitle))
	if ct == "" || cand == "" {
		return false
	}
	if strings.Contains(cand, ct) || strings.Contains(ct, cand) {
		return true
	}
	return Similarity(ct, cand) > v.Threshold
}

// ArtistPlausible checks a candidate artist against the query remainder in
// normal mode. The remainder is the query text minus the cleaned title; if
// it is too short to carry artist information the candidate is accepted
// on title evidence alone. Otherwise at least one remainder token must
// appear among the candidate's artist tokens, or vice versa.
func (v Validator) ArtistPlausible(queryText, cleanTitle, candidateArtist string) bool {
	remainder := strings.TrimSpace(strings.Replace(
		strings.ToLower(queryText), strings.ToLower(cleanTitle), "", 1))
	if len(remainder) < 2 {
		return true
	}
	want := artistTokens(remainder)
	got := artistTokens(candidateArtist)
	for token := range want {
		if _, ok := got[token]; ok {
			return true
		}
	}
	for token := range got {
		if strings.Contains(remainder, token) {
			return true
		}
	}
	return false
}

// ArtistMatchesHint is the strict-mode artist check: the candidate artist
// and the trusted hint must share a token or contain one another.
func (v Validator) ArtistMatchesHint(candidateArtist, hint string) bool {
	ca := strings.ToLower(strings.TrimSpace(candidateArtist))
	h := strings.ToLower(strings.TrimSpace(hint))
	if ca == "" || h == "" {
		return false
	}
	if strings.Contains(ca, h) || strings.Contains(h, ca) {
		return true
	}
	want := artistTokens(h)
	for token := range artistTokens(ca) {
		if _, ok := want[token]; ok {
			return true
		}
	}
	return false
}

func artistTokens(s string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, t := range artistTokenPattern.Split(strings.ToLower(s), -1) {
		t = strings.TrimSpace(t)
		if len(t) >= 2 {
			tokens[t] = struct{}{}
		}
	}
	return tokens
}
