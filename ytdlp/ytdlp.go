// Package ytdlp drives the yt-dlp binary for playlist inspection and audio
// extraction.
package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/dvalderas/playtag/engine"
)

type Downloader struct {
	Path   string
	Logger engine.Logger
}

func New(path string, log engine.Logger) *Downloader {
	if path == "" {
		path = "yt-dlp"
	}
	return &Downloader{Path: path, Logger: log}
}

type flatEntry struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Uploader string  `json:"uploader"`
	Channel  string  `json:"channel"`
	Duration float64 `json:"duration"`
}

type flatInfo struct {
	Type     string      `json:"_type"`
	Title    string      `json:"title"`
	Uploader string      `json:"uploader"`
	Channel  string      `json:"channel"`
	Duration float64     `json:"duration"`
	Entries  []flatEntry `json:"entries"`
}

// Inspect fetches metadata for a URL without downloading. Playlist URLs
// yield one entry per item.
func (d *Downloader) Inspect(ctx context.Context, rawURL string) (*engine.MediaInfo, error) {
	rawURL = CleanURL(rawURL)

	cmd := exec.CommandContext(ctx, d.Path, "--flat-playlist", "--no-warnings", "-J", rawURL)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ytdlp: inspect: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var info flatInfo
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return nil, fmt.Errorf("ytdlp: inspect decode: %w", err)
	}

	out := &engine.MediaInfo{
		Title:    info.Title,
		Uploader: uploaderOf(info.Uploader, info.Channel),
		Duration: time.Duration(info.Duration * float64(time.Second)),
	}
	for _, e := range info.Entries {
		entryURL := e.URL
		if entryURL == "" && e.ID != "" {
			entryURL = "https://www.youtube.com/watch?v=" + e.ID
		}
		if entryURL == "" {
			continue
		}
		out.Entries = append(out.Entries, engine.PlaylistEntry{
			Title:    e.Title,
			URL:      entryURL,
			Uploader: uploaderOf(e.Uploader, e.Channel),
			Duration: time.Duration(e.Duration * float64(time.Second)),
		})
	}
	return out, nil
}

// Download extracts audio for one video into dir and reports transfer
// progress. It returns the final file path and the extractor's metadata
// for the video.
func (d *Downloader) Download(ctx context.Context, rawURL, format, dir string, progress engine.ProgressFunc) (string, *engine.MediaInfo, error) {
	rawURL = CleanURL(rawURL)
	if format == "" {
		format = "opus"
	}

	args := []string{
		"--no-playlist",
		"--extract-audio",
		"--audio-format", format,
		"--no-warnings",
		"--newline",
		"--progress",
		"--no-simulate",
		"--print", "pre_process:" + infoPrefix + "%(title)s\t%(uploader)s\t%(duration)s",
		"--print", "after_move:filepath",
		"-o", dir + "/%(title)s [%(id)s].%(ext)s",
		rawURL,
	}
	cmd := exec.CommandContext(ctx, d.Path, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", nil, fmt.Errorf("ytdlp: pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return "", nil, fmt.Errorf("ytdlp: start: %w", err)
	}

	var (
		info     engine.MediaInfo
		filePath string
	)
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, infoPrefix):
			parseInfoLine(strings.TrimPrefix(line, infoPrefix), &info)
		case strings.HasPrefix(line, "[download]"):
			if pct, ok := parseProgressLine(line); ok && progress != nil {
				progress(pct)
			}
		case !strings.HasPrefix(line, "["):
			// The after_move print is the only bare line yt-dlp emits.
			filePath = line
		}
	}

	if err := cmd.Wait(); err != nil {
		return "", nil, fmt.Errorf("ytdlp: download: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if filePath == "" {
		return "", nil, fmt.Errorf("ytdlp: no output file reported")
	}
	if progress != nil {
		progress(100)
	}
	return filePath, &info, nil
}

// infoPrefix marks the metadata print line so it cannot be confused with
// the file path print.
const infoPrefix = "playtag-info\t"

func parseInfoLine(line string, info *engine.MediaInfo) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) > 0 {
		info.Title = parts[0]
	}
	if len(parts) > 1 && parts[1] != "NA" {
		info.Uploader = parts[1]
	}
	if len(parts) > 2 {
		if secs, err := strconv.ParseFloat(parts[2], 64); err == nil {
			info.Duration = time.Duration(secs * float64(time.Second))
		}
	}
}

// parseProgressLine extracts the percentage from a "[download]  42.3% of ..."
// progress line.
func parseProgressLine(line string) (float64, bool) {
	fields := strings.Fields(line)
	for _, field := range fields {
		if strings.HasSuffix(field, "%") {
			pct, err := strconv.ParseFloat(strings.TrimSuffix(field, "%"), 64)
			if err != nil {
				return 0, false
			}
			return pct, true
		}
	}
	return 0, false
}

func uploaderOf(uploader, channel string) string {
	if uploader != "" && uploader != "NA" {
		return uploader
	}
	if channel != "NA" {
		return channel
	}
	return ""
}

// CleanURL strips YouTube Mix/Radio playlist parameters that would make
// yt-dlp treat a single-video link as an endless generated playlist.
func CleanURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	if list := query.Get("list"); strings.HasPrefix(list, "RD") {
		query.Del("list")
		query.Del("start_radio")
		query.Del("index")
		parsed.RawQuery = query.Encode()
		return parsed.String()
	}
	return rawURL
}

var _ engine.Downloader = (*Downloader)(nil)
