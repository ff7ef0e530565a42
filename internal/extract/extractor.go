package extract

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/apkgrab/internal/config"
	"github.com/go-scripts/apkgrab/internal/fetch"
	"github.com/go-scripts/apkgrab/internal/progress"
)

// ErrNoLink reports that the page yielded no download candidate, even
// after the single wait-and-re-fetch cycle.
var ErrNoLink = errors.New("no download link found")

// Renderer values recorded in Result.
const (
	RendererHTTP    = "http"
	RendererBrowser = "browser"
)

// Fetcher retrieves the markup of a page.
type Fetcher interface {
	Fetch(ctx context.Context, targetURL string) (string, error)
}

// Result records one extraction run.
type Result struct {
	TargetURL     string    `json:"target_url"`
	Link          string    `json:"link"`
	Candidates    []string  `json:"candidates,omitempty"`
	Renderer      string    `json:"renderer"`
	Fetches       int       `json:"fetches"`
	WaitedForGate bool      `json:"waited_for_gate"`
	Elapsed       string    `json:"elapsed"`
	CapturedAt    time.Time `json:"captured_at"`
}

// Extractor turns a page URL into zero or one direct download link.
// It is best-effort: one fetch, at most one wait-and-re-fetch when the
// page looks like a countdown gate, nothing beyond that.
type Extractor struct {
	cfg     config.Config
	client  Fetcher
	browser Fetcher
	scanner *Scanner
	spin    *progress.Spinner
}

// New builds an Extractor. browser may be nil when the browser path was
// not requested.
func New(cfg config.Config, client, browser Fetcher) (*Extractor, error) {
	pattern, err := cfg.LinkPattern()
	if err != nil {
		return nil, err
	}
	return &Extractor{
		cfg:     cfg,
		client:  client,
		browser: browser,
		scanner: NewScanner(pattern, cfg.ArtifactExt),
		spin:    progress.New(),
	}, nil
}

// Extract runs the extraction flow against targetURL. The caller has
// already validated the URL scheme.
func (e *Extractor) Extract(ctx context.Context, targetURL string) (*Result, error) {
	base, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse target URL: %w", err)
	}

	started := time.Now()
	res := &Result{TargetURL: targetURL, Renderer: RendererHTTP}

	log.Info("analyzing page", "url", targetURL)

	var link string
	rendered := false
	if e.browser != nil {
		res.Renderer = RendererBrowser
		link, err = e.extractRendered(ctx, targetURL, base, res)
		if err != nil && errors.Is(err, fetch.ErrBrowserUnavailable) {
			log.Warn("browser unavailable, falling back to direct fetch", "error", err)
			res.Renderer = RendererHTTP
		} else {
			rendered = true
		}
	}
	if !rendered {
		link, err = e.extractDirect(ctx, targetURL, base, res)
	}
	if err != nil {
		return nil, err
	}

	res.Link = link
	res.Elapsed = time.Since(started).String()
	res.CapturedAt = time.Now()
	return res, nil
}

// extractDirect is the plain path: fetch, scan, and when the page reads
// like a countdown gate, wait once and re-fetch once.
func (e *Extractor) extractDirect(ctx context.Context, targetURL string, base *url.URL, res *Result) (string, error) {
	e.spin.Start("fetching " + progress.FormatURL(targetURL))
	body, err := e.client.Fetch(ctx, targetURL)
	e.spin.Stop()
	res.Fetches++
	if err != nil {
		log.Error("fetch failed", "url", targetURL, "error", err)
		return "", err
	}

	if links := e.scanner.Scan(body, base); len(links) > 0 {
		res.Candidates = links
		log.Debug("candidates found", "count", len(links))
		return links[0], nil
	}

	if !containsAnyCue(visibleText(body), e.cfg.CountdownCues) {
		return "", ErrNoLink
	}

	res.WaitedForGate = true
	log.Info("countdown gate detected, waiting for reveal", "wait", e.cfg.CountdownWait)
	e.spin.Start(fmt.Sprintf("waiting %s for the countdown", e.cfg.CountdownWait))
	err = sleepContext(ctx, e.cfg.CountdownWait)
	e.spin.Stop()
	if err != nil {
		return "", err
	}

	e.spin.Start("re-fetching " + progress.FormatURL(targetURL))
	body, err = e.client.Fetch(ctx, targetURL)
	e.spin.Stop()
	res.Fetches++
	if err != nil {
		log.Error("re-fetch failed", "url", targetURL, "error", err)
		return "", err
	}

	if links := e.scanner.Scan(body, base); len(links) > 0 {
		res.Candidates = links
		log.Debug("candidates found after wait", "count", len(links))
		return links[0], nil
	}
	return "", ErrNoLink
}

// extractRendered is the browser path: one navigation whose built-in
// render wait already covers timed gates, then one scan. No re-fetch
// cycle here.
func (e *Extractor) extractRendered(ctx context.Context, targetURL string, base *url.URL, res *Result) (string, error) {
	e.spin.Start(fmt.Sprintf("rendering %s (%s wait)", progress.FormatURL(targetURL), e.cfg.BrowserWait))
	markup, err := e.browser.Fetch(ctx, targetURL)
	e.spin.Stop()
	if err != nil {
		if errors.Is(err, fetch.ErrBrowserUnavailable) {
			return "", err
		}
		res.Fetches++
		log.Error("render failed", "url", targetURL, "error", err)
		return "", err
	}
	res.Fetches++

	if links := e.scanner.Scan(markup, base); len(links) > 0 {
		res.Candidates = links
		log.Debug("candidates found in rendered page", "count", len(links))
		return links[0], nil
	}
	return "", ErrNoLink
}

// sleepContext blocks for d or until ctx is cancelled, whichever comes
// first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
