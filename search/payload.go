package search

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Brawl345/lensbot/model"
)

const (
	maxImageMatches    = 6
	maxShoppingMatches = 6

	defaultFavicon     = "https://www.google.com/favicon.ico"
	defaultPlaceholder = "https://via.placeholder.com/150"
)

var ErrMalformedPayload = errors.New("malformed upstream payload")

type (
	// RawUpstreamPayload is what an engine hands back before normalization.
	// It is one of WikipediaPayload, SerpPayload or FixturePayload.
	RawUpstreamPayload interface {
		source() string
	}

	WikipediaPayload struct {
		Lang     string
		Response WikipediaResponse
	}

	SerpPayload struct {
		Response SerpResponse
	}

	FixturePayload struct {
		Fixtures *Fixtures
		Kind     model.QueryKind
	}
)

func (WikipediaPayload) source() string { return "wikipedia" }
func (SerpPayload) source() string      { return "serpapi" }
func (FixturePayload) source() string   { return "fixture" }

// Normalize maps any upstream payload into the canonical response for query.
func Normalize(payload RawUpstreamPayload, query model.SearchQuery) (model.SearchResponse, error) {
	var (
		resp model.SearchResponse
		err  error
	)

	switch p := payload.(type) {
	case WikipediaPayload:
		resp, err = mapWikipedia(p, query)
	case *WikipediaPayload:
		resp, err = mapWikipedia(*p, query)
	case SerpPayload:
		resp, err = mapSerp(p, query)
	case *SerpPayload:
		resp, err = mapSerp(*p, query)
	case FixturePayload:
		resp, err = mapFixture(p, query)
	case *FixturePayload:
		resp, err = mapFixture(*p, query)
	case nil:
		err = fmt.Errorf("%w: no payload", ErrMalformedPayload)
	default:
		err = fmt.Errorf("%w: unknown payload %T", ErrMalformedPayload, payload)
	}

	if err != nil {
		return model.SearchResponse{}.Normalize(), err
	}

	resp.Query = query.Text
	return resp.Normalize(), nil
}

func mapWikipedia(p WikipediaPayload, query model.SearchQuery) (model.SearchResponse, error) {
	if p.Response.Error != nil {
		return model.SearchResponse{}, p.Response.Error
	}
	if p.Response.Query == nil {
		return model.SearchResponse{}, fmt.Errorf("%w: wikipedia response without query object", ErrMalformedPayload)
	}

	lang := p.Lang
	if lang == "" {
		lang = "en"
	}
	host := fmt.Sprintf("%s.wikipedia.org", lang)

	hits := p.Response.Query.Search
	if len(hits) > query.Limit() {
		hits = hits[:query.Limit()]
	}

	results := make([]model.SearchResult, 0, len(hits))
	for _, hit := range hits {
		title := strings.TrimSpace(hit.Title)
		if title == "" {
			continue
		}

		description := stripMarkup(hit.Snippet)
		if description == "" {
			description = "No description available"
		} else {
			description += " …"
		}

		results = append(results, model.SearchResult{
			Title:       title,
			Link:        wikipediaArticleURL(host, title),
			Description: description,
			DisplayLink: host,
			Favicon:     fmt.Sprintf("https://%s/static/favicon/wikipedia.ico", host),
			Source:      "Wikipedia",
			Date:        formatDate(hit.Timestamp),
		})
	}

	var suggestion string
	var totalHits int64
	if info := p.Response.Query.SearchInfo; info != nil {
		suggestion = info.Suggestion
		totalHits = info.TotalHits
	}

	return model.SearchResponse{
		Results:        results,
		RelatedQueries: mergeRelated([]string{suggestion}, deriveRelatedQueries(query.Text)),
		TotalHits:      totalHits,
		Origin:         model.OriginLive,
	}, nil
}

func wikipediaArticleURL(host, title string) string {
	return fmt.Sprintf("https://%s/wiki/%s", host, url.PathEscape(strings.ReplaceAll(title, " ", "_")))
}

func formatDate(timestamp string) string {
	if timestamp == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

func mapSerp(p SerpPayload, query model.SearchQuery) (model.SearchResponse, error) {
	if p.Response == nil {
		return model.SearchResponse{}, fmt.Errorf("%w: empty serpapi response", ErrMalformedPayload)
	}
	if msg := stringField(p.Response, "error"); msg != "" {
		return model.SearchResponse{}, fmt.Errorf("serpapi: %s", msg)
	}

	organic := objects(p.Response["organic_results"])
	if len(organic) > query.Limit() {
		organic = organic[:query.Limit()]
	}

	results := make([]model.SearchResult, 0, len(organic))
	for _, item := range organic {
		results = append(results, model.SearchResult{
			Title:       orDefault(stringField(item, "title"), "Search Result"),
			Link:        orDefault(stringField(item, "link"), "https://example.com"),
			Description: orDefault(stripMarkup(stringField(item, "snippet")), "No description available"),
			DisplayLink: orDefault(stringField(item, "displayed_link"), "example.com"),
			Favicon:     orDefault(stringField(item, "favicon"), defaultFavicon),
			Source:      stringField(item, "source"),
			Date:        stringField(item, "date"),
		})
	}

	var related []string
	for _, item := range objects(p.Response["related_searches"]) {
		related = append(related, stringField(item, "query"))
	}
	if len(related) == 0 {
		related = deriveRelatedQueries(query.Text)
	}

	var answer, additionalInfo string
	if box, ok := p.Response["answer_box"].(map[string]any); ok {
		answer = stringField(box, "answer", "snippet")
		additionalInfo = stringField(box, "snippet")
	}

	images := objects(p.Response["images_results"])
	if len(images) > maxImageMatches {
		images = images[:maxImageMatches]
	}
	imageMatches := make([]model.ImageMatch, 0, len(images))
	for _, img := range images {
		imageMatches = append(imageMatches, model.ImageMatch{
			Title:       orDefault(stringField(img, "title"), "Image result"),
			Link:        orDefault(stringField(img, "link", "original"), "#"),
			Source:      orDefault(stringField(img, "source"), "Google Images"),
			ImageURL:    orDefault(stringField(img, "thumbnail", "original"), defaultPlaceholder),
			Description: stringField(img, "snippet"),
		})
	}

	shopping := objects(p.Response["shopping_results"])
	if len(shopping) > maxShoppingMatches {
		shopping = shopping[:maxShoppingMatches]
	}
	shoppingMatches := make([]model.ShoppingMatch, 0, len(shopping))
	for _, item := range shopping {
		shoppingMatches = append(shoppingMatches, model.ShoppingMatch{
			Title:    orDefault(stringField(item, "title"), "Product"),
			Link:     orDefault(stringField(item, "link"), "#"),
			Price:    orDefault(stringField(item, "price"), "N/A"),
			Store:    orDefault(stringField(item, "source"), "Online Store"),
			ImageURL: orDefault(stringField(item, "thumbnail"), defaultPlaceholder),
		})
	}

	var totalHits int64
	if info, ok := p.Response["search_information"].(map[string]any); ok {
		if total, ok := info["total_results"].(float64); ok {
			totalHits = int64(total)
		}
	}

	return model.SearchResponse{
		Results:         results,
		ImageMatches:    imageMatches,
		ShoppingMatches: shoppingMatches,
		RelatedQueries:  mergeRelated(related),
		Answer:          answer,
		AdditionalInfo:  additionalInfo,
		TotalHits:       totalHits,
		Origin:          model.OriginLive,
	}, nil
}

func mapFixture(p FixturePayload, query model.SearchQuery) (model.SearchResponse, error) {
	fixtures := p.Fixtures
	if fixtures == nil {
		fixtures = DefaultFixtures()
	}

	if p.Kind == model.QueryKindImage {
		return model.SearchResponse{
			Results:         append([]model.SearchResult(nil), fixtures.Image.Results...),
			ImageMatches:    append([]model.ImageMatch(nil), fixtures.Image.VisualMatches...),
			ShoppingMatches: append([]model.ShoppingMatch(nil), fixtures.Image.Shopping...),
			RelatedQueries:  mergeRelated(fixtures.Image.RelatedQueries),
			Answer:          fixtures.Image.Answer,
			AdditionalInfo:  fixtures.Image.AdditionalInfo,
			Origin:          model.OriginFixture,
		}, nil
	}

	return model.SearchResponse{
		Results:        append([]model.SearchResult(nil), fixtures.Web.Results...),
		RelatedQueries: mergeRelated(deriveRelatedQueries(query.Text), fixtures.Web.RelatedQueries),
		Origin:         model.OriginFixture,
	}, nil
}

// stringField returns the first non-empty string value among keys.
func stringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// objects returns the JSON objects contained in a JSON array, skipping anything else.
func objects(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
