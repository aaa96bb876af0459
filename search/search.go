package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Brawl345/lensbot/logger"
	"github.com/Brawl345/lensbot/metrics"
	"github.com/Brawl345/lensbot/model"
	"github.com/rs/xid"
)

var log = logger.New("search")

type Mode string

const (
	ModeLive    Mode = "live"
	ModeFixture Mode = "fixture"

	DefaultTimeout      = 8 * time.Second
	DefaultImageLatency = 1500 * time.Millisecond
)

type (
	// Engine is an upstream search backend.
	Engine interface {
		Name() string
		Fetch(ctx context.Context, query model.SearchQuery, settings model.Settings) (RawUpstreamPayload, error)
	}

	// Adapter turns queries into SearchResponses. It never fails: upstream errors
	// are logged, reported to the Notifier and replaced by fixture data.
	Adapter struct {
		engine       Engine
		mode         Mode
		fixtures     *Fixtures
		notifier     model.Notifier
		timeout      time.Duration
		imageLatency time.Duration
	}

	Option func(*Adapter)
)

func WithEngine(engine Engine) Option {
	return func(a *Adapter) {
		a.engine = engine
	}
}

func WithMode(mode Mode) Option {
	return func(a *Adapter) {
		if mode == ModeLive || mode == ModeFixture {
			a.mode = mode
		}
	}
}

func WithFixtures(fixtures *Fixtures) Option {
	return func(a *Adapter) {
		if fixtures != nil {
			a.fixtures = fixtures
		}
	}
}

func WithNotifier(notifier model.Notifier) Option {
	return func(a *Adapter) {
		a.notifier = notifier
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(a *Adapter) {
		if timeout > 0 {
			a.timeout = timeout
		}
	}
}

func WithImageLatency(latency time.Duration) Option {
	return func(a *Adapter) {
		if latency >= 0 {
			a.imageLatency = latency
		}
	}
}

func New(opts ...Option) *Adapter {
	a := &Adapter{
		engine:       NewWikipedia(),
		mode:         ModeLive,
		fixtures:     DefaultFixtures(),
		timeout:      DefaultTimeout,
		imageLatency: DefaultImageLatency,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// WithNotifier returns a copy of the adapter that reports to notifier.
func (a *Adapter) WithNotifier(notifier model.Notifier) *Adapter {
	clone := *a
	clone.notifier = notifier
	return &clone
}

// FetchTextResults performs a single best-effort web search. Whatever happens
// upstream, the returned response is well-formed.
func (a *Adapter) FetchTextResults(ctx context.Context, query model.SearchQuery, settings model.Settings) model.SearchResponse {
	query.Text = strings.TrimSpace(query.Text)
	query.Kind = model.QueryKindWeb
	if query.ResultLimit <= 0 {
		query.ResultLimit = settings.ResultsPerPage
	}

	if query.Text == "" {
		return model.SearchResponse{}.Normalize()
	}

	if a.mode == ModeFixture || a.engine == nil {
		resp, _ := Normalize(FixturePayload{Fixtures: a.fixtures, Kind: model.QueryKindWeb}, query)
		metrics.SearchesTotal.WithLabelValues(string(model.QueryKindWeb), string(resp.Origin)).Inc()
		return resp
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	resp, err := a.fetch(ctx, query, settings)
	metrics.UpstreamLatency.WithLabelValues(a.engine.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		return a.fallback(query, err)
	}

	log.Debug().
		Str("engine", a.engine.Name()).
		Str("query", query.Text).
		Int("results", len(resp.Results)).
		Msg("Upstream search succeeded")
	metrics.SearchesTotal.WithLabelValues(string(model.QueryKindWeb), string(resp.Origin)).Inc()
	return resp
}

func (a *Adapter) fetch(ctx context.Context, query model.SearchQuery, settings model.Settings) (resp model.SearchResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in engine %s: %v", a.engine.Name(), r)
		}
	}()

	payload, err := a.engine.Fetch(ctx, query, settings)
	if err != nil {
		return model.SearchResponse{}, err
	}
	return Normalize(payload, query)
}

func (a *Adapter) fallback(query model.SearchQuery, cause error) model.SearchResponse {
	guid := xid.New().String()
	log.Warn().
		Err(cause).
		Str("guid", guid).
		Str("engine", a.engine.Name()).
		Str("query", query.Text).
		Bool("timeout", errors.Is(cause, context.DeadlineExceeded)).
		Msg("Search request failed, using fallback results")
	metrics.UpstreamFailuresTotal.WithLabelValues(a.engine.Name()).Inc()

	a.notify(model.Notification{
		Title:       "Search API Error",
		Description: "Using fallback search results. API might be unavailable or rate-limited.",
		Variant:     model.NotificationDestructive,
	})

	resp, _ := Normalize(FixturePayload{Fixtures: a.fixtures, Kind: model.QueryKindWeb}, query)
	resp.Origin = model.OriginFallback
	metrics.SearchesTotal.WithLabelValues(string(model.QueryKindWeb), string(resp.Origin)).Inc()
	return resp
}

// FetchImageResults runs a visual search for image. There is no image search
// backend, so after the simulated latency the fixture matches are returned.
func (a *Adapter) FetchImageResults(ctx context.Context, image []byte) (resp model.SearchResponse) {
	query := model.SearchQuery{Kind: model.QueryKindImage}

	defer func() {
		if r := recover(); r != nil {
			resp = a.imageFallback(fmt.Errorf("panic during image search: %v", r))
		}
	}()

	if len(image) == 0 {
		log.Debug().Msg("Image search without image data")
	}

	if a.imageLatency > 0 {
		timer := time.NewTimer(a.imageLatency)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return a.imageFallback(ctx.Err())
		case <-timer.C:
		}
	}

	resp, err := Normalize(FixturePayload{Fixtures: a.fixtures, Kind: model.QueryKindImage}, query)
	if err != nil {
		return a.imageFallback(err)
	}

	metrics.SearchesTotal.WithLabelValues(string(model.QueryKindImage), string(resp.Origin)).Inc()
	return resp
}

// imageFallback is the minimal response used when even the fixture path fails.
func (a *Adapter) imageFallback(cause error) model.SearchResponse {
	guid := xid.New().String()
	log.Warn().
		Err(cause).
		Str("guid", guid).
		Msg("Image search failed, using fallback results")

	a.notify(model.Notification{
		Title:       "Image Search Failed",
		Description: "Using fallback results. Image search API might be unavailable.",
		Variant:     model.NotificationDestructive,
	})

	metrics.SearchesTotal.WithLabelValues(string(model.QueryKindImage), string(model.OriginFallback)).Inc()
	return model.SearchResponse{
		ImageMatches: []model.ImageMatch{
			{
				Title:    "Visual Match 1",
				Link:     "#",
				Source:   "Google Lens",
				ImageURL: defaultPlaceholder,
			},
		},
		Origin: model.OriginFallback,
	}.Normalize()
}

func (a *Adapter) notify(n model.Notification) {
	if a.notifier == nil {
		return
	}
	a.notifier.Notify(n)
}
