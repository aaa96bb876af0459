package store

import (
	"fmt"
	"strings"

	"github.com/Brawl345/lensbot/model"
	"golang.org/x/exp/slices"
)

const (
	maxRecentSearches  = 5
	maxDefaultSuggest  = 10
	maxFilteredSuggest = 8
)

var suggestionTemplates = []string{
	"%s news",
	"%s near me",
	"how to %s",
	"best %s",
	"%s 2025",
}

// RecentSearches returns the terms of the newest text searches, newest first.
// Repeated searches show up repeatedly; Suggestions dedupes.
func (s *Store) RecentSearches() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recent := make([]string, 0, maxRecentSearches)
	for _, entry := range s.history {
		if entry.Kind != model.HistoryKindText || entry.Term == "" {
			continue
		}
		recent = append(recent, entry.Term)
		if len(recent) == maxRecentSearches {
			break
		}
	}
	return recent
}

func (s *Store) TrendingSearches() []string {
	return append([]string(nil), s.trending...)
}

// Suggestions completes partial from recent and trending searches. Without
// input, recent and trending searches are offered as they are.
func (s *Store) Suggestions(partial string) []string {
	recent := s.RecentSearches()
	trending := s.TrendingSearches()

	partial = strings.TrimSpace(partial)
	if partial == "" {
		return dedupe(append(recent, trending...), maxDefaultSuggest)
	}

	needle := strings.ToLower(partial)
	var candidates []string
	for _, term := range append(recent, trending...) {
		if strings.Contains(strings.ToLower(term), needle) {
			candidates = append(candidates, term)
		}
	}
	for _, tmpl := range suggestionTemplates {
		candidates = append(candidates, fmt.Sprintf(tmpl, partial))
	}

	return dedupe(candidates, maxFilteredSuggest)
}

func dedupe(terms []string, limit int) []string {
	out := make([]string, 0, min(len(terms), limit))
	for _, term := range terms {
		if slices.Contains(out, term) {
			continue
		}
		out = append(out, term)
		if len(out) == limit {
			break
		}
	}
	return out
}
