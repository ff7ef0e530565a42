package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, 12*time.Second, cfg.CountdownWait)
	assert.Equal(t, 15*time.Second, cfg.BrowserWait)
	assert.Equal(t, "mcpedl.org", cfg.LinkHost)
	assert.Equal(t, "apk", cfg.ArtifactExt)
	assert.Equal(t, []string{"timer", "countdown", "please wait", "seconds"}, cfg.CountdownCues)
	assert.Equal(t, 1920, cfg.WindowWidth)
	assert.Equal(t, 1080, cfg.WindowHeight)
	assert.NoError(t, cfg.Validate())
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apkgrab.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadOverridesOnlyPresentKeys(t *testing.T) {
	path := writeConfigFile(t, `
timeout: 30s
countdown_wait: 500ms
link_host: example.net
countdown_cues:
  - hold on
`)

	cfg := Default()
	err := Load(path, &cfg)
	assert.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.CountdownWait)
	assert.Equal(t, "example.net", cfg.LinkHost)
	assert.Equal(t, []string{"hold on"}, cfg.CountdownCues)

	// Untouched keys keep their defaults.
	assert.Equal(t, 15*time.Second, cfg.BrowserWait)
	assert.Equal(t, "apk", cfg.ArtifactExt)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr string
	}{
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.yaml") },
			wantErr: "failed to read config file",
		},
		{
			name:    "malformed yaml",
			path:    func(t *testing.T) string { return writeConfigFile(t, "timeout: [") },
			wantErr: "failed to parse config file",
		},
		{
			name:    "bad duration",
			path:    func(t *testing.T) string { return writeConfigFile(t, "timeout: fifteen") },
			wantErr: `invalid timeout "fifteen"`,
		},
		{
			name:    "bad wait duration",
			path:    func(t *testing.T) string { return writeConfigFile(t, "browser_wait: 15") },
			wantErr: `invalid browser_wait "15"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			err := Load(tc.path(t), &cfg)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty user agent", func(c *Config) { c.UserAgent = "" }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"negative countdown wait", func(c *Config) { c.CountdownWait = -time.Second }},
		{"zero browser wait", func(c *Config) { c.BrowserWait = 0 }},
		{"empty link host", func(c *Config) { c.LinkHost = "" }},
		{"empty extension", func(c *Config) { c.ArtifactExt = "" }},
		{"no cues", func(c *Config) { c.CountdownCues = nil }},
		{"zero window width", func(c *Config) { c.WindowWidth = 0 }},
		{"negative body cap", func(c *Config) { c.MaxBodySize = -1 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLinkPattern(t *testing.T) {
	re, err := Default().LinkPattern()
	assert.NoError(t, err)

	assert.Equal(t,
		"https://mcpedl.org/uploads_files/files/game.apk",
		re.FindString(`<a href="https://mcpedl.org/uploads_files/files/game.apk">dl</a>`))

	// The host dot is literal, not a wildcard.
	assert.Empty(t, re.FindString("https://mcpedlXorg/uploads_files/files/game.apk"))
	assert.Empty(t, re.FindString("https://mcpedl.org/other_files/game.apk"))
	assert.Empty(t, re.FindString("https://mcpedl.org/uploads_files/files/game.zip"))
}

func TestLinkPatternCustomHost(t *testing.T) {
	cfg := Default()
	cfg.LinkHost = "files.example.com"
	cfg.ArtifactExt = "xapk"

	re, err := cfg.LinkPattern()
	assert.NoError(t, err)
	assert.Equal(t,
		"https://files.example.com/uploads_files/a/b.xapk",
		re.FindString("get https://files.example.com/uploads_files/a/b.xapk now"))
	assert.Empty(t, re.FindString("https://files.example.com/uploads_files/a/b.apk"))
}
