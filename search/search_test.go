package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Brawl345/lensbot/model"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu            sync.Mutex
	notifications []model.Notification
}

func (n *recordingNotifier) Notify(notification model.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, notification)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notifications)
}

type failingEngine struct {
	t *testing.T
}

func (e failingEngine) Name() string { return "failing" }

func (e failingEngine) Fetch(context.Context, model.SearchQuery, model.Settings) (RawUpstreamPayload, error) {
	e.t.Fatal("engine must not be called")
	return nil, nil
}

type panickingEngine struct{}

func (panickingEngine) Name() string { return "panicking" }

func (panickingEngine) Fetch(context.Context, model.SearchQuery, model.Settings) (RawUpstreamPayload, error) {
	panic("boom")
}

func newWikipediaAdapter(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Adapter, *recordingNotifier) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	notifier := &recordingNotifier{}
	opts = append([]Option{
		WithEngine(NewWikipedia(WithWikipediaEndpoint(server.URL))),
		WithNotifier(notifier),
	}, opts...)
	return New(opts...), notifier
}

func requireWellFormed(t *testing.T, resp model.SearchResponse) {
	t.Helper()
	require.NotNil(t, resp.Results)
	require.NotNil(t, resp.ImageMatches)
	require.NotNil(t, resp.ShoppingMatches)
	require.NotNil(t, resp.RelatedQueries)
}

func TestFetchTextResultsLive(t *testing.T) {
	adapter, notifier := newWikipediaAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "cats", r.URL.Query().Get("srsearch"))
		require.Equal(t, "3", r.URL.Query().Get("srlimit"))
		require.Equal(t, "search", r.URL.Query().Get("list"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"query": map[string]any{
				"searchinfo": map[string]any{"totalhits": 4200, "suggestion": "cat"},
				"search": []map[string]any{
					{
						"title":     "Cat",
						"pageid":    6678,
						"snippet":   `The <span class="searchmatch">cat</span> (Felis catus) is a &quot;small&quot; mammal`,
						"timestamp": "2024-05-01T12:00:00Z",
					},
					{"title": "Cats (musical)", "snippet": ""},
				},
			},
		})
	})

	resp := adapter.FetchTextResults(context.Background(), model.SearchQuery{Text: " cats ", ResultLimit: 3}, model.DefaultSettings())

	requireWellFormed(t, resp)
	require.Equal(t, model.OriginLive, resp.Origin)
	require.Equal(t, "cats", resp.Query)
	require.Equal(t, int64(4200), resp.TotalHits)
	require.Len(t, resp.Results, 2)

	first := resp.Results[0]
	require.Equal(t, "Cat", first.Title)
	require.Equal(t, "https://en.wikipedia.org/wiki/Cat", first.Link)
	require.Equal(t, `The cat (Felis catus) is a "small" mammal …`, first.Description)
	require.Equal(t, "en.wikipedia.org", first.DisplayLink)
	require.Equal(t, "Wikipedia", first.Source)
	require.Equal(t, "May 1, 2024", first.Date)

	require.Equal(t, "https://en.wikipedia.org/wiki/Cats_%28musical%29", resp.Results[1].Link)
	require.Equal(t, "No description available", resp.Results[1].Description)

	require.Equal(t, "cat", resp.RelatedQueries[0])
	require.Contains(t, resp.RelatedQueries, "how to cats")
	require.Contains(t, resp.RelatedQueries, "what is cats")
	require.Zero(t, notifier.count())
}

func TestFetchTextResultsUsesSettingsLanguageAndLimit(t *testing.T) {
	adapter, _ := newWikipediaAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "25", r.URL.Query().Get("srlimit"))
		_, _ = w.Write([]byte(`{"query":{"search":[{"title":"Chat"}]}}`))
	})

	settings := model.DefaultSettings()
	settings.Language = "fr-FR"
	settings.ResultsPerPage = 25

	resp := adapter.FetchTextResults(context.Background(), model.SearchQuery{Text: "chat"}, settings)
	require.Equal(t, "https://fr.wikipedia.org/wiki/Chat", resp.Results[0].Link)
}

func TestFetchTextResultsFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"query": {"search": [`))
			},
		},
		{
			name: "missing query object",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"batchcomplete": true}`))
			},
		},
		{
			name: "api error object",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"error": {"code": "maxlag", "info": "Waiting for a database server"}}`))
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, notifier := newWikipediaAdapter(t, tt.handler, WithTimeout(100*time.Millisecond))

			resp := adapter.FetchTextResults(context.Background(), model.SearchQuery{Text: "cats"}, model.DefaultSettings())

			requireWellFormed(t, resp)
			require.Equal(t, model.OriginFallback, resp.Origin)
			require.Equal(t, "Google Search - Wikipedia", resp.Results[0].Title)
			require.Len(t, resp.Results, len(DefaultFixtures().Web.Results))
			require.Contains(t, resp.RelatedQueries, "how to cats")
			require.Equal(t, 1, notifier.count())
			require.Equal(t, "Search API Error", notifier.notifications[0].Title)
		})
	}
}

func TestFetchTextResultsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	notifier := &recordingNotifier{}
	adapter := New(WithEngine(NewWikipedia(WithWikipediaEndpoint(endpoint))), WithNotifier(notifier))

	resp := adapter.FetchTextResults(context.Background(), model.SearchQuery{Text: "cats"}, model.DefaultSettings())

	requireWellFormed(t, resp)
	require.Equal(t, model.OriginFallback, resp.Origin)
	require.Equal(t, "Google Search - Wikipedia", resp.Results[0].Title)
	require.Contains(t, resp.RelatedQueries, "how to cats")
	require.Equal(t, 1, notifier.count())
}

func TestFetchTextResultsEnginePanic(t *testing.T) {
	notifier := &recordingNotifier{}
	adapter := New(WithEngine(panickingEngine{}), WithNotifier(notifier))

	resp := adapter.FetchTextResults(context.Background(), model.SearchQuery{Text: "cats"}, model.DefaultSettings())
	requireWellFormed(t, resp)
	require.Equal(t, model.OriginFallback, resp.Origin)
	require.Equal(t, 1, notifier.count())
}

func TestFetchTextResultsFixtureMode(t *testing.T) {
	adapter := New(WithEngine(failingEngine{t: t}), WithMode(ModeFixture))

	resp := adapter.FetchTextResults(context.Background(), model.SearchQuery{Text: "dogs"}, model.DefaultSettings())
	requireWellFormed(t, resp)
	require.Equal(t, model.OriginFixture, resp.Origin)
	require.Equal(t, "Google Search - Wikipedia", resp.Results[0].Title)
	require.Contains(t, resp.RelatedQueries, "how to dogs")
	require.Contains(t, resp.RelatedQueries, "google search api")
}

func TestFetchTextResultsEmptyQuery(t *testing.T) {
	adapter := New(WithEngine(failingEngine{t: t}))

	resp := adapter.FetchTextResults(context.Background(), model.SearchQuery{Text: "   "}, model.DefaultSettings())
	requireWellFormed(t, resp)
	require.Empty(t, resp.Results)
	require.Empty(t, resp.ImageMatches)
	require.Empty(t, resp.ShoppingMatches)
	require.Empty(t, resp.RelatedQueries)
}

func TestFetchImageResults(t *testing.T) {
	notifier := &recordingNotifier{}
	adapter := New(WithImageLatency(20*time.Millisecond), WithNotifier(notifier))

	start := time.Now()
	resp := adapter.FetchImageResults(context.Background(), []byte{0xff, 0xd8})

	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	requireWellFormed(t, resp)
	require.Equal(t, model.OriginFixture, resp.Origin)
	require.Equal(t, "Visual Match 1", resp.ImageMatches[0].Title)
	require.NotEmpty(t, resp.ShoppingMatches)
	require.Equal(t, "Smartphone", resp.Answer)
	require.Contains(t, resp.RelatedQueries, "reverse image search")
	require.Zero(t, notifier.count())
}

func TestFetchImageResultsWithinDefaultLatencyWindow(t *testing.T) {
	adapter := New()

	start := time.Now()
	resp := adapter.FetchImageResults(context.Background(), nil)
	elapsed := time.Since(start)

	require.GreaterOrEqual(t, elapsed, DefaultImageLatency)
	require.Less(t, elapsed, DefaultImageLatency+time.Second)
	require.Equal(t, "Visual Match 1", resp.ImageMatches[0].Title)
}

func TestFetchImageResultsCancelled(t *testing.T) {
	notifier := &recordingNotifier{}
	adapter := New(WithImageLatency(time.Minute), WithNotifier(notifier))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := adapter.FetchImageResults(ctx, []byte("img"))
	requireWellFormed(t, resp)
	require.Equal(t, model.OriginFallback, resp.Origin)
	require.Len(t, resp.ImageMatches, 1)
	require.Equal(t, "Visual Match 1", resp.ImageMatches[0].Title)
	require.Equal(t, 1, notifier.count())
	require.Equal(t, "Image Search Failed", notifier.notifications[0].Title)
}

func TestAdapterWithNotifierCopies(t *testing.T) {
	first := &recordingNotifier{}
	second := &recordingNotifier{}
	adapter := New(WithEngine(panickingEngine{}), WithNotifier(first))
	clone := adapter.WithNotifier(second)

	clone.FetchTextResults(context.Background(), model.SearchQuery{Text: "x"}, model.DefaultSettings())
	require.Zero(t, first.count())
	require.Equal(t, 1, second.count())
}

func TestSerpAPIEngine(t *testing.T) {
	engine := NewSerpAPI("")
	require.Equal(t, DemoSerpAPIKey, engine.apiKey)

	var gotParams map[string]string
	engine.fetch = func(params map[string]string, apiKey string) (map[string]any, error) {
		gotParams = params
		return map[string]any{
			"organic_results": []any{
				map[string]any{"title": "Cat", "link": "https://cats.example", "snippet": "Meow", "displayed_link": "cats.example"},
			},
		}, nil
	}

	settings := model.DefaultSettings()
	settings.Language = "de-DE"
	settings.Region = "DE"
	payload, err := engine.Fetch(context.Background(), model.SearchQuery{Text: "katze", ResultLimit: 5}, settings)
	require.NoError(t, err)
	require.Equal(t, "katze", gotParams["q"])
	require.Equal(t, "de", gotParams["hl"])
	require.Equal(t, "de", gotParams["gl"])
	require.Equal(t, "5", gotParams["num"])
	require.Equal(t, "active", gotParams["safe"])

	resp, err := Normalize(payload, model.SearchQuery{Text: "katze"})
	require.NoError(t, err)
	require.Equal(t, "Cat", resp.Results[0].Title)
}

func TestSerpAPIEngineError(t *testing.T) {
	engine := NewSerpAPI("key")
	engine.fetch = func(map[string]string, string) (map[string]any, error) {
		return nil, errors.New("Invalid API key")
	}

	_, err := engine.Fetch(context.Background(), model.SearchQuery{Text: "x"}, model.DefaultSettings())
	require.ErrorContains(t, err, "Invalid API key")
}

func TestSerpAPIEngineHonoursContext(t *testing.T) {
	engine := NewSerpAPI("key")
	release := make(chan struct{})
	defer close(release)
	engine.fetch = func(map[string]string, string) (map[string]any, error) {
		<-release
		return map[string]any{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := engine.Fetch(ctx, model.SearchQuery{Text: "x"}, model.DefaultSettings())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
