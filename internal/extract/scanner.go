package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Scanner finds direct download candidates in page markup. Scanning is
// pure: the same markup and base URL always produce the same list.
type Scanner struct {
	pattern *regexp.Regexp
	suffix  string
}

// NewScanner builds a scanner for the given artifact-URL pattern and
// artifact extension (without the leading dot).
func NewScanner(pattern *regexp.Regexp, ext string) *Scanner {
	return &Scanner{pattern: pattern, suffix: "." + ext}
}

// Scan returns the deduplicated candidate links found in markup, direct
// pattern matches ordered ahead of anchor-derived ones. Anchor hrefs
// are resolved to absolute form against base.
func (s *Scanner) Scan(markup string, base *url.URL) []string {
	var links []string
	seen := make(map[string]bool)

	for _, match := range s.pattern.FindAllString(markup, -1) {
		if !seen[match] {
			seen[match] = true
			links = append(links, match)
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return links
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !strings.HasSuffix(href, s.suffix) {
			return
		}
		resolved := resolveURL(base, href)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	})

	return links
}

// resolveURL resolves href against base, returning "" for hrefs that do
// not parse.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
