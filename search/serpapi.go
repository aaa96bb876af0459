package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Brawl345/lensbot/model"
	g "github.com/serpapi/google-search-results-golang"
)

const DemoSerpAPIKey = "demo"

// SerpAPI queries Google through SerpApi. The client library has no context
// support, so a cancelled context only stops waiting for the answer.
type SerpAPI struct {
	apiKey string
	fetch  func(params map[string]string, apiKey string) (map[string]any, error)
}

func NewSerpAPI(apiKey string) *SerpAPI {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		apiKey = DemoSerpAPIKey
	}
	return &SerpAPI{
		apiKey: apiKey,
		fetch:  fetchGoogleJSON,
	}
}

func fetchGoogleJSON(params map[string]string, apiKey string) (map[string]any, error) {
	search := g.NewGoogleSearch(params, apiKey)
	results, err := search.GetJSON()
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *SerpAPI) Name() string {
	return "serpapi"
}

func (s *SerpAPI) Fetch(ctx context.Context, query model.SearchQuery, settings model.Settings) (RawUpstreamPayload, error) {
	params := map[string]string{
		"engine":        "google",
		"q":             query.Text,
		"num":           strconv.Itoa(query.Limit()),
		"hl":            settings.LanguageCode(),
		"gl":            strings.ToLower(settings.Region),
		"google_domain": "google.com",
	}
	if settings.SafeSearch {
		params["safe"] = "active"
	} else {
		params["safe"] = "off"
	}

	type result struct {
		response map[string]any
		err      error
	}
	done := make(chan result, 1)

	go func() {
		response, err := s.fetch(params, s.apiKey)
		done <- result{response, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("serpapi search failed: %w", r.err)
		}
		return SerpPayload{Response: r.response}, nil
	}
}
