package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/apkgrab/internal/config"
	"github.com/go-scripts/apkgrab/internal/extract"
	"github.com/go-scripts/apkgrab/internal/fetch"
	"github.com/go-scripts/apkgrab/internal/report"
)

// CLI flags structure
type CLIFlags struct {
	URL         string        `arg:"" optional:"" help:"Download page URL to extract the direct link from"`
	Selenium    bool          `help:"Render the page in a headless browser before scanning" short:"s"`
	ConfigFile  string        `help:"Path to a YAML file overriding the extraction heuristics" name:"config"`
	Timeout     time.Duration `help:"HTTP fetch timeout (default 15s)"`
	Wait        time.Duration `help:"Wait before the single re-fetch when a countdown is detected (default 12s)"`
	BrowserWait time.Duration `help:"Wait after navigation on the browser path (default 15s)"`
	UserAgent   string        `help:"Override the spoofed browser identity"`
	Output      string        `help:"Write a JSON extraction report to this path" short:"o"`
	Verbose     bool          `help:"Enable debug logging"`
}

func main() {
	os.Exit(run())
}

func run() int {
	var flags CLIFlags
	kong.Parse(&flags,
		kong.Name("apkgrab"),
		kong.Description("Extracts the direct APK download link from a download page."))

	log.SetReportTimestamp(false)
	if flags.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	if flags.URL == "" {
		printUsage()
		return 1
	}
	if err := validateTarget(flags.URL); err != nil {
		log.Error("invalid target", "error", err)
		return 1
	}

	cfg, err := buildConfig(flags)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := fetch.NewClient(cfg.UserAgent, cfg.Timeout, cfg.MaxBodySize)

	var renderer extract.Fetcher
	if cfg.UseBrowser {
		browser := fetch.NewBrowser(fetch.BrowserOptions{
			UserAgent:    cfg.UserAgent,
			WindowWidth:  cfg.WindowWidth,
			WindowHeight: cfg.WindowHeight,
			NavTimeout:   cfg.Timeout,
			RenderWait:   cfg.BrowserWait,
		})
		// Runs on every exit path, interrupt included.
		defer browser.Close()
		renderer = browser
	}

	extractor, err := extract.New(cfg, client, renderer)
	if err != nil {
		log.Error("setup failed", "error", err)
		return 1
	}

	res, err := extractor.Extract(ctx, flags.URL)
	switch {
	case errors.Is(err, extract.ErrNoLink):
		log.Error("no download link found", "url", flags.URL)
		return 1
	case errors.Is(err, context.Canceled):
		log.Error("interrupted")
		return 1
	case err != nil:
		log.Error("extraction failed", "error", err)
		return 1
	}

	// The link is the whole stdout contract: one line, no decoration.
	fmt.Println(res.Link)
	log.Info("download link found", "renderer", res.Renderer, "fetches", res.Fetches, "elapsed", res.Elapsed)

	if flags.Output != "" {
		if err := report.New(flags.Output).Write(res); err != nil {
			log.Error("failed to write report", "path", flags.Output, "error", err)
			return 1
		}
		log.Info("report written", "path", flags.Output)
	}

	return 0
}

// buildConfig layers the override sources: defaults first, then the YAML
// file when given, then explicit flags.
func buildConfig(flags CLIFlags) (config.Config, error) {
	cfg := config.Default()

	if flags.ConfigFile != "" {
		if err := config.Load(flags.ConfigFile, &cfg); err != nil {
			return config.Config{}, err
		}
	}

	if flags.Timeout != 0 {
		cfg.Timeout = flags.Timeout
	}
	if flags.Wait != 0 {
		cfg.CountdownWait = flags.Wait
	}
	if flags.BrowserWait != 0 {
		cfg.BrowserWait = flags.BrowserWait
	}
	if flags.UserAgent != "" {
		cfg.UserAgent = flags.UserAgent
	}
	cfg.UseBrowser = flags.Selenium
	cfg.Verbose = flags.Verbose

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// validateTarget enforces the scheme prefix before any network activity.
func validateTarget(target string) error {
	if !strings.HasPrefix(target, "http") {
		return fmt.Errorf("target %q must start with http:// or https://", target)
	}
	return nil
}

// printUsage handles the bare invocation: usage text on standard output,
// the caller turns it into exit code 1.
func printUsage() {
	fmt.Println("Usage: apkgrab <url> [-s|--selenium]")
	fmt.Println()
	fmt.Println("Extracts the direct APK download link from a download page.")
	fmt.Println("Run 'apkgrab --help' for the full flag list.")
}
