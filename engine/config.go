package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the engine's tunables. LoadConfig fills a zero-valued
// MaxRedirects, MaxEntityLen or UserAgent with its default, mirroring the
// corpus's own "zero-or-default" convention; the boolean fields are taken as
// given, so an omitted gzipEnabled or keepAliveEnabled reads as false.
type Config struct {
	MaxRedirects     int    `yaml:"maxRedirects"`
	MaxEntityLen     int    `yaml:"maxEntityLen"`
	UserAgent        string `yaml:"userAgent"`
	GzipEnabled      bool   `yaml:"gzipEnabled"`
	KeepAliveEnabled bool   `yaml:"keepAliveEnabled"`
}

const (
	defaultMaxRedirects = 5
	defaultMaxEntityLen = 26
	defaultUserAgent    = "Octo"
)

// DefaultConfig returns the hardcoded defaults named in the configuration
// section: 5 redirects, a 26-byte entity cap, gzip enabled, keep-alive
// enabled, User-Agent "Octo".
func DefaultConfig() Config {
	return Config{
		MaxRedirects:     defaultMaxRedirects,
		MaxEntityLen:     defaultMaxEntityLen,
		UserAgent:        defaultUserAgent,
		GzipEnabled:      true,
		KeepAliveEnabled: true,
	}
}

// LoadConfig reads a YAML file at path and fills any zero-valued
// MaxRedirects, MaxEntityLen or UserAgent with its default. Boolean fields
// are not defaulted.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return withDefaults(cfg), nil
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.MaxRedirects == 0 {
		cfg.MaxRedirects = def.MaxRedirects
	}
	if cfg.MaxEntityLen == 0 {
		cfg.MaxEntityLen = def.MaxEntityLen
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	return cfg
}
