package tagfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"

	"github.com/dvalderas/playtag/engine"
	"github.com/dvalderas/playtag/engine/logger"
)

func testWriter(t *testing.T) *Writer {
	t.Helper()
	log, err := logger.New("error", "text", "")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return New(log)
}

func makeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("fake audio payload"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Joji - Demons", "Joji - Demons"},
		{`AC/DC - Back In Black`, "ACDC - Back In Black"},
		{`a<b>c:d"e/f\g|h?i*j`, "abcdefghij"},
		{"  spaced   out  ", "spaced out"},
		{"trailing dots...", "trailing dots"},
	}
	for _, tt := range tests {
		if got := sanitizeFileName(tt.in); got != tt.want {
			t.Errorf("sanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteMP3AndRename(t *testing.T) {
	dir := t.TempDir()
	path := makeFile(t, dir, "dl_aXb29.mp3")

	w := testWriter(t)
	newPath, err := w.Write(path, &engine.TrackTags{
		Title:       "Demons",
		Artist:      "Joji",
		Album:       "Ballads 1",
		Genre:       "R&B",
		TrackNumber: 3,
		Year:        2018,
		Lyrics:      "la la la",
		SourceFound: true,
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	want := filepath.Join(dir, "Demons.mp3")
	if newPath != want {
		t.Fatalf("path = %q, want %q", newPath, want)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("original file still present after rename")
	}

	meta, err := id3v2.Open(newPath, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer meta.Close()
	if meta.Title() != "Demons" || meta.Artist() != "Joji" || meta.Album() != "Ballads 1" {
		t.Errorf("tags = %q / %q / %q", meta.Title(), meta.Artist(), meta.Album())
	}
}

func TestWriteRenamesToTitleOnly(t *testing.T) {
	dir := t.TempDir()
	path := makeFile(t, dir, "dl_x91k2.mp3")

	w := testWriter(t)
	newPath, err := w.Write(path, &engine.TrackTags{
		Title:       `Back In Black / Live`,
		Artist:      "AC/DC",
		SourceFound: true,
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	want := filepath.Join(dir, "Back In Black Live.mp3")
	if newPath != want {
		t.Errorf("path = %q, want sanitized title %q", newPath, want)
	}
}

func TestWriteSkipsRenameWithoutSource(t *testing.T) {
	dir := t.TempDir()
	path := makeFile(t, dir, "Original Name.mp3")

	w := testWriter(t)
	newPath, err := w.Write(path, &engine.TrackTags{
		Title:  "Original Name",
		Artist: engine.UnknownArtist,
		Album:  engine.SingleAlbum,
		Genre:  engine.UnknownGenre,
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if newPath != path {
		t.Errorf("path = %q, placeholder tags must not rename", newPath)
	}
}

func TestWriteOverwritesDuplicate(t *testing.T) {
	dir := t.TempDir()
	existing := makeFile(t, dir, "Demons.mp3")
	path := makeFile(t, dir, "dl_ff91x.mp3")

	w := testWriter(t)
	newPath, err := w.Write(path, &engine.TrackTags{
		Title:       "Demons",
		Artist:      "Joji",
		SourceFound: true,
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if newPath != existing {
		t.Errorf("path = %q, want %q", newPath, existing)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("%d files left in dir, want 1", len(entries))
	}
}

func TestWriteUnsupportedContainer(t *testing.T) {
	dir := t.TempDir()
	path := makeFile(t, dir, "track.wav")

	w := testWriter(t)
	newPath, err := w.Write(path, &engine.TrackTags{Title: "x", SourceFound: true})
	if err == nil {
		t.Fatal("expected error for unsupported container")
	}
	if newPath != path {
		t.Errorf("path = %q, must stay untouched on error", newPath)
	}
}

func TestWriteRenameAlreadyCorrect(t *testing.T) {
	dir := t.TempDir()
	path := makeFile(t, dir, "Demons.mp3")

	w := testWriter(t)
	newPath, err := w.Write(path, &engine.TrackTags{
		Title:       "Demons",
		Artist:      "Joji",
		SourceFound: true,
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if newPath != path {
		t.Errorf("path = %q, want unchanged %q", newPath, path)
	}
}
