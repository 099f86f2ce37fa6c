// Package app wires all application dependencies.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dvalderas/playtag/engine"
	"github.com/dvalderas/playtag/engine/artwork"
	"github.com/dvalderas/playtag/engine/batch"
	"github.com/dvalderas/playtag/engine/config"
	"github.com/dvalderas/playtag/engine/logger"
	"github.com/dvalderas/playtag/engine/provider"
	"github.com/dvalderas/playtag/engine/resolve"
	"github.com/dvalderas/playtag/engine/tagfile"
	"github.com/dvalderas/playtag/engine/worker"
	"github.com/dvalderas/playtag/providers/acoustid"
	"github.com/dvalderas/playtag/providers/deezer"
	"github.com/dvalderas/playtag/providers/itunes"
	"github.com/dvalderas/playtag/providers/lrclib"
	"github.com/dvalderas/playtag/ytdlp"
)

// Catalog cascade priority. Config sections can disable a catalog but not
// reorder the cascade.
var defaultCatalogOrder = []string{"itunes", "deezer"}

// App is the dependency container behind the CLI. Config and Pool are held
// behind their engine interfaces; only New needs the concrete types.
type App struct {
	Config       engine.Config
	Logger       *logger.Logger
	Pool         engine.WorkerPool
	Registry     *provider.Registry
	Downloader   engine.Downloader
	Orchestrator *batch.Orchestrator
	Analyzer     *batch.Analyzer
	Build        BuildInfo
}

// BuildInfo provides build-time metadata.
type BuildInfo struct {
	RuntimeVer string
	BinVersion string
	CommitSHA  string
	BuildTime  string
	BuildArch  string
}

// New builds the application container from a config file path.
func New(configPath string, build BuildInfo) (*App, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(conf.GetString("LogLevel"), conf.GetString("LogFormat"), conf.GetString("LogDir"))
	if err != nil {
		return nil, err
	}

	httpOpts := provider.HTTPOptions{
		Timeout:    time.Duration(conf.GetInt("ProviderTimeoutSec")) * time.Second,
		RatePerSec: conf.GetFloat64("ProviderRatePerSecond"),
		RateBurst:  conf.GetInt("ProviderRateBurst"),
	}

	registry := provider.NewRegistry()
	for _, name := range defaultCatalogOrder {
		if !conf.ProviderEnabled(name) {
			log.Info("catalog disabled by config", "provider", name)
			continue
		}
		switch name {
		case "itunes":
			registry.RegisterCatalog(itunes.New(httpOpts))
		case "deezer":
			registry.RegisterCatalog(deezer.New(httpOpts))
		}
	}
	for _, name := range conf.ProviderNames() {
		switch name {
		case "itunes", "deezer", "lrclib", "acoustid":
		default:
			log.Warn("unknown provider section", "provider", name)
		}
	}

	if conf.GetBool("EnableLyrics") && conf.ProviderEnabled("lrclib") {
		registry.SetLyrics(lrclib.New(httpOpts))
	}
	if conf.GetBool("EnableFingerprint") && conf.ProviderEnabled("acoustid") {
		key := conf.GetProviderString("acoustid", "api_key")
		if key == "" {
			key = conf.GetString("AcoustIDKey")
		}
		if key != "" {
			registry.SetRecognizer(acoustid.New(key, conf.GetString("FpcalcPath"), httpOpts))
		} else {
			log.Info("fingerprinting disabled, no AcoustID key configured")
		}
	}

	// Artwork downloads retry; provider lookups deliberately do not.
	coverCaller := provider.NewHTTPCaller("artwork", provider.HTTPOptions{
		Timeout:  time.Duration(conf.GetInt("ProviderTimeoutSec")) * time.Second,
		RetryMax: 2,
	})

	resolver := &resolve.Resolver{
		Registry:  registry,
		Validator: resolve.Validator{Threshold: conf.GetFloat64("SimilarityThreshold")},
		Covers:    artwork.New(coverCaller, conf.GetInt("CoverMaxDimension"), log),
		Tagger:    tagfile.New(log),
		Logger:    log,
		Lyrics:    conf.GetBool("EnableLyrics"),
	}

	downloader := ytdlp.New(conf.GetString("YtdlpPath"), log)

	orchestrator := &batch.Orchestrator{
		Downloader: downloader,
		Resolver:   resolver,
		Logger:     log,
		Workers:    int64(conf.GetInt("BatchWorkers")),
		Jitter: batch.JitterPolicy{
			Min: time.Duration(conf.GetInt("JitterMinMs")) * time.Millisecond,
			Max: time.Duration(conf.GetInt("JitterMaxMs")) * time.Millisecond,
		},
	}

	analyzer := &batch.Analyzer{
		Resolver:  resolver,
		Logger:    log,
		Threshold: conf.GetFloat64("ConsensusThreshold"),
	}

	return &App{
		Config:       conf,
		Logger:       log,
		Pool:         worker.New(conf.GetInt("PlaylistWorkers")),
		Registry:     registry,
		Downloader:   downloader,
		Orchestrator: orchestrator,
		Analyzer:     analyzer,
		Build:        build,
	}, nil
}

// Run processes every URL and blocks until all of them finish. URLs are
// handled as independent jobs on the worker pool, sequentially unless
// PlaylistWorkers raises the pool size.
func (a *App) Run(ctx context.Context, urls []string) error {
	a.Logger.Info("starting",
		"version", a.Build.BinVersion, "runtime", a.Build.RuntimeVer, "urls", len(urls))

	for _, rawURL := range urls {
		rawURL := rawURL
		err := a.Pool.Submit(func() {
			a.runOne(ctx, rawURL)
		})
		if err != nil {
			a.Logger.Error("job submit failed", "url", rawURL, "error", err)
		}
	}
	return a.Pool.Shutdown(ctx)
}

func (a *App) runOne(ctx context.Context, rawURL string) {
	info, err := a.Downloader.Inspect(ctx, rawURL)
	if err != nil {
		a.Logger.Error("inspect failed", "url", rawURL, "error", err)
		return
	}

	entries := info.Entries
	if len(entries) == 0 {
		entries = []engine.PlaylistEntry{{
			Title:    info.Title,
			URL:      rawURL,
			Uploader: info.Uploader,
			Duration: info.Duration,
		}}
	}
	a.Logger.Info("playlist inspected", "url", rawURL, "title", info.Title, "items", len(entries))

	results := a.Orchestrator.Process(ctx, entries, batch.Options{
		Format:    a.Config.GetString("AudioFormat"),
		OutputDir: a.Config.GetString("DownloadDir"),
		Progress: func(pct float64) {
			a.Logger.Debug("batch progress", "percent", fmt.Sprintf("%.1f", pct))
		},
		Status: func(msg string) {
			a.Logger.Info(msg)
		},
	})

	results = a.Analyzer.Analyze(ctx, results, func(msg string) {
		a.Logger.Info(msg)
	})

	a.Logger.Info("batch finished",
		"url", rawURL, "tagged", len(results), "failed", len(entries)-len(results))
}

// Close releases resources held by the container.
func (a *App) Close() error {
	return a.Logger.Close()
}
