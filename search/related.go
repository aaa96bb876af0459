package search

import (
	"fmt"
	"strings"
)

const maxRelatedQueries = 8

var relatedQueryTemplates = []string{
	"what is %s",
	"how to %s",
	"%s meaning",
	"%s examples",
	"best %s",
}

// deriveRelatedQueries fills in related queries when the upstream has none.
func deriveRelatedQueries(query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return []string{}
	}
	related := make([]string, 0, len(relatedQueryTemplates))
	for _, tmpl := range relatedQueryTemplates {
		related = append(related, fmt.Sprintf(tmpl, query))
	}
	return related
}

// mergeRelated keeps the order of first appearance, drops blanks and
// case-insensitive duplicates and caps the result.
func mergeRelated(lists ...[]string) []string {
	seen := make(map[string]struct{})
	merged := []string{}
	for _, list := range lists {
		for _, q := range list {
			q = strings.TrimSpace(q)
			if q == "" {
				continue
			}
			key := strings.ToLower(q)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, q)
			if len(merged) == maxRelatedQueries {
				return merged
			}
		}
	}
	return merged
}
