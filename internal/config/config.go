package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultUserAgent is the browser identity sent with every request, on
// both the plain and the browser-driven path.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Config holds all the settings for a single extraction run
type Config struct {
	UserAgent     string
	Timeout       time.Duration
	CountdownWait time.Duration
	BrowserWait   time.Duration
	LinkHost      string
	ArtifactExt   string
	CountdownCues []string
	WindowWidth   int
	WindowHeight  int
	MaxBodySize   int64
	UseBrowser    bool
	Verbose       bool
}

// Default returns the built-in settings. The heuristic values (waits,
// cue words, link pattern) are empirical, so they live here rather than
// as constants scattered through the code.
func Default() Config {
	return Config{
		UserAgent:     DefaultUserAgent,
		Timeout:       15 * time.Second,
		CountdownWait: 12 * time.Second,
		BrowserWait:   15 * time.Second,
		LinkHost:      "mcpedl.org",
		ArtifactExt:   "apk",
		CountdownCues: []string{"timer", "countdown", "please wait", "seconds"},
		WindowWidth:   1920,
		WindowHeight:  1080,
		MaxBodySize:   10 << 20,
	}
}

// fileConfig is the YAML schema for overrides. Pointer fields separate
// "absent" from a zero value, so a file only replaces the keys it names.
type fileConfig struct {
	UserAgent     *string  `yaml:"user_agent"`
	Timeout       *string  `yaml:"timeout"`
	CountdownWait *string  `yaml:"countdown_wait"`
	BrowserWait   *string  `yaml:"browser_wait"`
	LinkHost      *string  `yaml:"link_host"`
	ArtifactExt   *string  `yaml:"artifact_ext"`
	CountdownCues []string `yaml:"countdown_cues"`
	WindowWidth   *int     `yaml:"window_width"`
	WindowHeight  *int     `yaml:"window_height"`
	MaxBodySize   *int64   `yaml:"max_body_size"`
}

// Load overlays the YAML file at path onto cfg. Durations are written in
// Go notation ("15s", "1m30s").
func Load(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.UserAgent != nil {
		cfg.UserAgent = *fc.UserAgent
	}
	if fc.Timeout != nil {
		if cfg.Timeout, err = parseDuration("timeout", *fc.Timeout); err != nil {
			return err
		}
	}
	if fc.CountdownWait != nil {
		if cfg.CountdownWait, err = parseDuration("countdown_wait", *fc.CountdownWait); err != nil {
			return err
		}
	}
	if fc.BrowserWait != nil {
		if cfg.BrowserWait, err = parseDuration("browser_wait", *fc.BrowserWait); err != nil {
			return err
		}
	}
	if fc.LinkHost != nil {
		cfg.LinkHost = *fc.LinkHost
	}
	if fc.ArtifactExt != nil {
		cfg.ArtifactExt = *fc.ArtifactExt
	}
	if fc.CountdownCues != nil {
		cfg.CountdownCues = fc.CountdownCues
	}
	if fc.WindowWidth != nil {
		cfg.WindowWidth = *fc.WindowWidth
	}
	if fc.WindowHeight != nil {
		cfg.WindowHeight = *fc.WindowHeight
	}
	if fc.MaxBodySize != nil {
		cfg.MaxBodySize = *fc.MaxBodySize
	}

	return nil
}

func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

// Validate rejects settings that would make a run misbehave silently.
func (c Config) Validate() error {
	if c.UserAgent == "" {
		return errors.New("user agent must not be empty")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.CountdownWait <= 0 {
		return errors.New("countdown wait must be positive")
	}
	if c.BrowserWait <= 0 {
		return errors.New("browser wait must be positive")
	}
	if c.LinkHost == "" {
		return errors.New("link host must not be empty")
	}
	if c.ArtifactExt == "" {
		return errors.New("artifact extension must not be empty")
	}
	if len(c.CountdownCues) == 0 {
		return errors.New("at least one countdown cue is required")
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return errors.New("window size must be positive")
	}
	if c.MaxBodySize <= 0 {
		return errors.New("max body size must be positive")
	}
	return nil
}

// LinkPattern compiles the artifact-URL expression for the configured
// host and extension.
func (c Config) LinkPattern() (*regexp.Regexp, error) {
	expr := fmt.Sprintf(`https://%s/uploads_files/[^"'\s<>]*\.%s`,
		regexp.QuoteMeta(c.LinkHost), regexp.QuoteMeta(c.ArtifactExt))
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("failed to compile link pattern: %w", err)
	}
	return re, nil
}
