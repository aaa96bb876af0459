package search

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Brawl345/lensbot/model"
	"github.com/Brawl345/lensbot/utils"
	"github.com/Brawl345/lensbot/utils/httpUtils"
)

type (
	Wikipedia struct {
		endpoint string // overrides https://<lang>.wikipedia.org/w/api.php when set
	}

	WikipediaOption func(*Wikipedia)
)

// WithWikipediaEndpoint pins the API URL, mainly for tests.
func WithWikipediaEndpoint(endpoint string) WikipediaOption {
	return func(w *Wikipedia) {
		w.endpoint = endpoint
	}
}

func NewWikipedia(opts ...WikipediaOption) *Wikipedia {
	w := &Wikipedia{}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Wikipedia) Name() string {
	return "wikipedia"
}

func (w *Wikipedia) Fetch(ctx context.Context, query model.SearchQuery, settings model.Settings) (RawUpstreamPayload, error) {
	lang := settings.LanguageCode()

	requestUrl := url.URL{
		Scheme: "https",
		Host:   fmt.Sprintf("%s.wikipedia.org", lang),
		Path:   "/w/api.php",
	}
	if w.endpoint != "" {
		parsed, err := url.Parse(w.endpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid wikipedia endpoint %q: %w", w.endpoint, err)
		}
		requestUrl = *parsed
	}

	q := requestUrl.Query()
	q.Set("action", "query")
	q.Set("list", "search")
	q.Set("srsearch", query.Text)
	q.Set("srlimit", strconv.Itoa(query.Limit()))
	q.Set("srprop", "snippet|timestamp")
	q.Set("srinfo", "totalhits|suggestion")
	q.Set("format", "json")
	q.Set("formatversion", "2")
	q.Set("utf8", "1")
	requestUrl.RawQuery = q.Encode()

	var response WikipediaResponse
	err := httpUtils.MakeRequest(ctx, httpUtils.RequestOptions{
		Method:   httpUtils.MethodGet,
		URL:      requestUrl.String(),
		Headers:  map[string]string{"User-Agent": utils.BotAgent},
		Response: &response,
	})
	if err != nil {
		return nil, err
	}

	return WikipediaPayload{Lang: lang, Response: response}, nil
}
