package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"
)

// ErrBrowserUnavailable reports that the headless browser process could
// not be started. Callers treat it as a signal to fall back to the plain
// HTTP path rather than as a fatal failure.
var ErrBrowserUnavailable = errors.New("headless browser unavailable")

// BrowserOptions configure the headless browser process.
type BrowserOptions struct {
	UserAgent    string
	WindowWidth  int
	WindowHeight int
	NavTimeout   time.Duration
	RenderWait   time.Duration
}

// Browser renders pages in headless Chrome so content revealed by page
// scripts shows up in the captured markup. The process starts lazily on
// the first Fetch and must be released through Close.
type Browser struct {
	opts          BrowserOptions
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	started       bool
}

// NewBrowser prepares a browser fetcher without launching anything.
func NewBrowser(opts BrowserOptions) *Browser {
	return &Browser{opts: opts}
}

// start launches the browser process. Parenting the allocator on ctx
// ties the process lifetime to the run context, so cancellation tears it
// down even if Close were skipped.
func (b *Browser) start(ctx context.Context) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(b.opts.WindowWidth, b.opts.WindowHeight),
		chromedp.UserAgent(b.opts.UserAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Run with no actions forces the process to launch now, so a missing
	// Chrome binary surfaces here instead of mid-navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("%w: %v", ErrBrowserUnavailable, err)
	}

	b.browserCtx = browserCtx
	b.browserCancel = browserCancel
	b.allocCancel = allocCancel
	b.started = true

	log.Debug("browser started",
		"window", fmt.Sprintf("%dx%d", b.opts.WindowWidth, b.opts.WindowHeight),
		"render_wait", b.opts.RenderWait)
	return nil
}

// Fetch navigates a fresh tab to targetURL, sits through the fixed
// render wait, and returns the rendered document markup.
func (b *Browser) Fetch(ctx context.Context, targetURL string) (string, error) {
	if !b.started {
		if err := b.start(ctx); err != nil {
			return "", err
		}
	}

	tabCtx, cancel := chromedp.NewContext(b.browserCtx)
	defer cancel()

	// The budget covers navigation plus the unconditional render wait.
	timeoutCtx, timeoutCancel := context.WithTimeout(tabCtx, b.opts.NavTimeout+b.opts.RenderWait)
	defer timeoutCancel()

	var pageHTML string
	tasks := []chromedp.Action{
		chromedp.Navigate(targetURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(b.opts.RenderWait),
		chromedp.OuterHTML("html", &pageHTML),
	}

	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", targetURL, err)
	}
	return pageHTML, nil
}

// Close releases the browser process. Safe to call whether or not the
// browser ever started, and meant to run on every exit path.
func (b *Browser) Close() {
	if b.browserCancel != nil {
		b.browserCancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
	b.started = false
}
