package search

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// stripMarkup turns an HTML fragment like `The <span class="searchmatch">cat</span>`
// into plain text. Entities are decoded.
func stripMarkup(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return collapseSpaces(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		log.Debug().Err(err).Msg("Failed to parse snippet markup, using it verbatim")
		return collapseSpaces(fragment)
	}
	return collapseSpaces(doc.Text())
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
