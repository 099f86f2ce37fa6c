package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

// ProviderConfig stores provider-specific configuration as key-value pairs.
type ProviderConfig map[string]string

// Config wraps viper and provides typed accessors.
type Config struct {
	v         *viper.Viper
	providers map[string]ProviderConfig
}

// Load reads a config file (INI or anything viper understands) and
// prepares defaults. Environment variables prefixed PLAYTAG override
// file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PLAYTAG")
	v.AutomaticEnv()

	setDefaults(v)

	c := &Config{
		v:         v,
		providers: make(map[string]ProviderConfig),
	}

	if path == "" {
		return c, nil
	}

	if strings.EqualFold(filepath.Ext(path), ".ini") {
		cfg, err := loadINI(v, path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		loadProviderSections(cfg, c)
		return c, nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DownloadDir", "./playlist")
	v.SetDefault("AudioFormat", "mp3")
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFormat", "text")
	v.SetDefault("LogDir", "./log")

	// Resolution engine knobs. The similarity and consensus thresholds are
	// empirical; they are surfaced here instead of hard-coded.
	v.SetDefault("SimilarityThreshold", 0.4)
	v.SetDefault("ConsensusThreshold", 0.6)
	v.SetDefault("BatchWorkers", 2)
	v.SetDefault("PlaylistWorkers", 1)
	v.SetDefault("JitterMinMs", 500)
	v.SetDefault("JitterMaxMs", 2000)
	v.SetDefault("ProviderTimeoutSec", 5)
	v.SetDefault("ProviderRatePerSecond", 2.0)
	v.SetDefault("ProviderRateBurst", 2)
	v.SetDefault("CoverMaxDimension", 600)
	v.SetDefault("EnableFingerprint", true)
	v.SetDefault("EnableLyrics", true)
	v.SetDefault("FpcalcPath", "fpcalc")
	v.SetDefault("AcoustIDKey", "")
	v.SetDefault("YtdlpPath", "yt-dlp")
}

// GetString returns a string value.
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt returns an int value.
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 returns a float64 value.
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool returns a bool value.
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// ProviderNames returns the configured provider section names.
func (c *Config) ProviderNames() []string {
	if len(c.providers) == 0 {
		return nil
	}
	names := make([]string, 0, len(c.providers))
	for name := range c.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetProviderString returns a string value from a provider section.
// Returns empty string if the provider or key is absent.
func (c *Config) GetProviderString(provider, key string) string {
	cfg, ok := c.providers[provider]
	if !ok {
		return ""
	}
	return cfg[key]
}

// ProviderEnabled reports whether a provider section is enabled. Providers
// without a section, or without an "enabled" key, default to enabled.
func (c *Config) ProviderEnabled(provider string) bool {
	cfg, ok := c.providers[provider]
	if !ok {
		return true
	}
	val, ok := cfg["enabled"]
	if !ok {
		return true
	}
	return strings.EqualFold(val, "true") || val == "1"
}

func loadINI(v *viper.Viper, path string) (*ini.File, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}

	for _, key := range cfg.Section("").Keys() {
		v.Set(key.Name(), key.Value())
	}

	return cfg, nil
}

func loadProviderSections(cfg *ini.File, c *Config) {
	const prefix = "providers."

	for _, section := range cfg.Sections() {
		name := section.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}

		providerName := strings.TrimPrefix(name, prefix)
		providerCfg := make(ProviderConfig)
		for _, key := range section.Keys() {
			providerCfg[key.Name()] = key.Value()
		}
		c.providers[providerName] = providerCfg
	}
}
