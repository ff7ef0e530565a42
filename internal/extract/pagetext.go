package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// nonVisibleSelectors lists elements whose text never renders on the
// page. Cue words inside script bodies must not count as a countdown.
const nonVisibleSelectors = "script, style, noscript"

// visibleText returns the lower-cased rendered text of the page with
// markup stripped.
func visibleText(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return strings.ToLower(markup)
	}
	doc.Find(nonVisibleSelectors).Remove()
	return strings.ToLower(strings.TrimSpace(doc.Text()))
}

// containsAnyCue reports whether text holds at least one of the cues.
func containsAnyCue(text string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(text, cue) {
			return true
		}
	}
	return false
}
