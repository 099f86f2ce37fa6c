package engine

import "context"

// Logger is the minimal logging abstraction used across modules.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// Config provides typed access to configuration values.
type Config interface {
	GetString(key string) string
	GetInt(key string) int
	GetFloat64(key string) float64
	GetBool(key string) bool
}

// WorkerPool limits concurrency for background tasks.
type WorkerPool interface {
	Submit(task func()) error
	Shutdown(ctx context.Context) error
	Size() int
}

// Downloader acquires media for a URL and reports what it fetched.
// Implementations wrap an external extraction engine (yt-dlp); the
// resolution core only depends on this contract.
type Downloader interface {
	// Inspect fetches lightweight info about a URL without downloading.
	// For playlists the returned MediaInfo carries one entry per item.
	Inspect(ctx context.Context, url string) (*MediaInfo, error)

	// Download fetches the audio for a single URL into dir and returns the
	// local file path plus the extractor's info record. progress receives
	// values in [0,100] and may be nil.
	Download(ctx context.Context, url, format, dir string, progress ProgressFunc) (string, *MediaInfo, error)
}

// TagWriter persists resolved metadata into an audio file. It may rename
// the file and returns the final path.
type TagWriter interface {
	Write(path string, tags *TrackTags) (string, error)
}
