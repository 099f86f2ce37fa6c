package ytdlp

import (
	"testing"

	"github.com/dvalderas/playtag/engine"
)

func TestCleanURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{
			"https://www.youtube.com/watch?v=abc123&list=RDabc123&start_radio=1",
			"https://www.youtube.com/watch?v=abc123",
		},
		{
			"https://www.youtube.com/watch?v=abc123&list=RDabc123&index=5",
			"https://www.youtube.com/watch?v=abc123",
		},
		// real playlists keep their list parameter
		{
			"https://www.youtube.com/watch?v=abc123&list=PLxyz",
			"https://www.youtube.com/watch?v=abc123&list=PLxyz",
		},
		{
			"https://www.youtube.com/watch?v=abc123",
			"https://www.youtube.com/watch?v=abc123",
		},
		{"not a url at all", "not a url at all"},
	}
	for _, tt := range tests {
		if got := CleanURL(tt.in); got != tt.want {
			t.Errorf("CleanURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseProgressLine(t *testing.T) {
	tests := []struct {
		line string
		pct  float64
		ok   bool
	}{
		{"[download]  42.3% of 3.52MiB at 1.20MiB/s ETA 00:02", 42.3, true},
		{"[download] 100% of 3.52MiB in 00:03", 100, true},
		{"[download] Destination: /tmp/x.opus", 0, false},
		{"[ExtractAudio] Destination: /tmp/x.opus", 0, false},
	}
	for _, tt := range tests {
		pct, ok := parseProgressLine(tt.line)
		if ok != tt.ok || pct != tt.pct {
			t.Errorf("parseProgressLine(%q) = %v, %v; want %v, %v", tt.line, pct, ok, tt.pct, tt.ok)
		}
	}
}

func TestParseInfoLine(t *testing.T) {
	var info engine.MediaInfo
	parseInfoLine("Demons\tJojiVEVO\t204", &info)
	if info.Title != "Demons" || info.Uploader != "JojiVEVO" {
		t.Errorf("info = %+v", info)
	}
	if info.Duration.Seconds() != 204 {
		t.Errorf("duration = %v, want 204s", info.Duration)
	}

	var sparse engine.MediaInfo
	parseInfoLine("Demons\tNA\tNA", &sparse)
	if sparse.Uploader != "" {
		t.Errorf("uploader = %q, want empty for NA", sparse.Uploader)
	}
}

func TestUploaderOf(t *testing.T) {
	if got := uploaderOf("", "Some Channel"); got != "Some Channel" {
		t.Errorf("got %q", got)
	}
	if got := uploaderOf("NA", "Some Channel"); got != "Some Channel" {
		t.Errorf("got %q", got)
	}
	if got := uploaderOf("Uploader", "Channel"); got != "Uploader" {
		t.Errorf("got %q", got)
	}
}
