package resolve

import (
	"regexp"
	"strings"
)

// Catalogs frequently credit the label alongside the artist
// ("Joji & 88rising", "NIKI, 88rising"). These tokens are removed as
// whole words, case-insensitively.
var labelTokens = []string{"88rising", "Records", "Entertainment", "Inc."}

var (
	labelPattern  *regexp.Regexp
	edgeSeparator = regexp.MustCompile(`^[\s,&]+|[\s,&]+$`)
	innerJoinRuns = regexp.MustCompile(`\s*[,&]\s*[,&][\s,&]*`)
)

func init() {
	escaped := make([]string, len(labelTokens))
	for i, token := range labelTokens {
		escaped[i] = regexp.QuoteMeta(strings.TrimSuffix(token, "."))
	}
	labelPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(escaped, "|") + `)\b\.?`)
}

// NormalizeArtist strips label credits from an artist string and tidies the
// separators left behind. If stripping would empty the string the original
// is returned unchanged.
func NormalizeArtist(artist string) string {
	cleaned := labelPattern.ReplaceAllString(artist, "")
	cleaned = innerJoinRuns.ReplaceAllString(cleaned, " & ")
	cleaned = edgeSeparator.ReplaceAllString(cleaned, "")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		return artist
	}
	return cleaned
}
