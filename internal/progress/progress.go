package progress

import (
	"net/url"
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner shows what the extractor is currently doing. It writes to the
// error stream only, keeping standard output free for the payload.
type Spinner struct {
	s *spinner.Spinner
}

// New creates a stopped spinner.
func New() *Spinner {
	return &Spinner{
		s: spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(os.Stderr)),
	}
}

// Start begins animating with the given status message.
func (p *Spinner) Start(message string) {
	p.s.Suffix = " " + message
	p.s.Start()
}

// Update swaps the status message without restarting the animation.
func (p *Spinner) Update(message string) {
	p.s.Suffix = " " + message
}

// Stop halts the animation and clears the line. Log lines written after
// a Stop land on a clean line.
func (p *Spinner) Stop() {
	p.s.Stop()
}

// FormatURL truncates long URLs for status messages, keeping the host
// and the tail of the path.
func FormatURL(urlStr string) string {
	maxLen := 40
	if len(urlStr) <= maxLen {
		return urlStr
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return "..." + urlStr[len(urlStr)-maxLen:]
	}

	domain := u.Host
	path := u.Path
	keep := maxLen - len(domain) - 3
	if keep < 0 {
		keep = 0
	}
	if len(path) > keep {
		path = "..." + path[len(path)-keep:]
	}
	return domain + path
}
