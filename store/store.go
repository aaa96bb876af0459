package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Brawl345/lensbot/logger"
	"github.com/Brawl345/lensbot/metrics"
	"github.com/Brawl345/lensbot/model"
	"github.com/rs/xid"
)

var log = logger.New("store")

const (
	SettingsKey = "google-lens-settings"
	HistoryKey  = "google-lens-search-history"

	persistTimeout = 5 * time.Second
)

type (
	// Searcher is the result adapter as seen by the store.
	Searcher interface {
		FetchTextResults(ctx context.Context, query model.SearchQuery, settings model.Settings) model.SearchResponse
		FetchImageResults(ctx context.Context, image []byte) model.SearchResponse
	}

	Image struct {
		Blob     []byte
		Preview  string
		Matches  []model.ImageMatch
		Shopping []model.ShoppingMatch
	}

	// Store is the single owner of one user's search state. All mutations go
	// through its methods; history and settings are persisted after each one.
	Store struct {
		mu sync.RWMutex
		// persistMu orders KV writes with the mutations they belong to.
		// Lock order: persistMu before mu.
		persistMu sync.Mutex

		kv        model.KeyValueService
		searcher  Searcher
		notifier  model.Notifier
		namespace string
		trending  []string

		query      string
		image      Image
		listening  bool
		history    []model.HistoryEntry
		settings   model.Settings
		current    model.SearchResponse
		generation uint64
	}

	Option func(*Store)
)

func WithNamespace(namespace string) Option {
	return func(s *Store) {
		s.namespace = namespace
	}
}

func WithNotifier(notifier model.Notifier) Option {
	return func(s *Store) {
		s.notifier = notifier
	}
}

func WithTrending(trending []string) Option {
	return func(s *Store) {
		s.trending = append([]string(nil), trending...)
	}
}

// New creates a store and rehydrates history and settings from kv.
// kv may be nil, nothing is persisted then.
func New(kv model.KeyValueService, searcher Searcher, opts ...Option) *Store {
	s := &Store{
		kv:       kv,
		searcher: searcher,
		settings: model.DefaultSettings(),
		history:  []model.HistoryEntry{},
		current:  model.SearchResponse{}.Normalize(),
	}
	for _, opt := range opts {
		opt(s)
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	s.load(ctx)

	return s
}

func (s *Store) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// SetQuery replaces the query text. An empty text is the cleared state.
func (s *Store) SetQuery(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = text
}

func (s *Store) Listening() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listening
}

func (s *Store) SetListening(listening bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listening = listening
}

func (s *Store) Image() Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.image
}

// ClearSearch resets query, image and listening flag. History and settings stay.
func (s *Store) ClearSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = ""
	s.image = Image{}
	s.listening = false
}

// Current returns the response that is currently displayed.
func (s *Store) Current() model.SearchResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) History() []model.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.HistoryEntry(nil), s.history...)
}

// AddHistoryEntry prepends a new entry, keeping the newest MaxHistoryEntries.
// Text entries without a term are ignored; image entries may have none.
func (s *Store) AddHistoryEntry(term string, kind model.HistoryKind, imagePreview string) {
	term = strings.TrimSpace(term)
	if term == "" && kind != model.HistoryKindImage {
		return
	}

	entry := model.HistoryEntry{
		ID:           xid.New().String(),
		Term:         term,
		Timestamp:    time.Now(),
		Kind:         kind,
		ImagePreview: imagePreview,
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	history := make([]model.HistoryEntry, 0, min(len(s.history)+1, model.MaxHistoryEntries))
	history = append(history, entry)
	history = append(history, s.history...)
	if len(history) > model.MaxHistoryEntries {
		history = history[:model.MaxHistoryEntries]
	}
	s.history = history
	s.mu.Unlock()

	s.persistHistory(history)
}

func (s *Store) ClearHistory() {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.history = []model.HistoryEntry{}
	s.mu.Unlock()

	if s.kv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.kv.Delete(ctx, s.key(HistoryKey)); err != nil {
		log.Err(err).Str("namespace", s.namespace).Msg("Failed to delete persisted history")
	}
}

func (s *Store) Settings() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings merges patch into the current settings and returns the result.
func (s *Store) UpdateSettings(patch model.SettingsPatch) model.Settings {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.settings = s.settings.Merge(patch)
	settings := s.settings
	s.mu.Unlock()

	s.persistSettings(settings)
	return settings
}

// Search runs a text search for text and makes its response current.
// If another search was started in the meantime, the response is returned
// together with model.ErrSuperseded and is not made current.
func (s *Store) Search(ctx context.Context, text string) (model.SearchResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.SearchResponse{}.Normalize(), nil
	}

	s.mu.Lock()
	s.query = text
	s.generation++
	generation := s.generation
	settings := s.settings
	s.mu.Unlock()

	s.AddHistoryEntry(text, model.HistoryKindText, "")

	resp := s.searcher.FetchTextResults(ctx, model.SearchQuery{
		Text:        text,
		Kind:        model.QueryKindWeb,
		ResultLimit: settings.ResultsPerPage,
	}, settings)

	if !s.commit(generation, func() { s.current = resp }) {
		return resp, model.ErrSuperseded
	}
	return resp, nil
}

// PerformImageSearch runs a visual search for blob. The adapter does not fail
// by itself. A panic is reported to the user; a cancelled context was already
// reported by the adapter's fallback. Both are returned so the caller can abort.
func (s *Store) PerformImageSearch(ctx context.Context, blob []byte, preview string) (resp model.SearchResponse, err error) {
	s.mu.Lock()
	s.generation++
	generation := s.generation
	s.image = Image{Blob: blob, Preview: preview}
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", model.ErrImageSearchFailed, r)
			log.Err(err).Str("namespace", s.namespace).Msg("Image search failed")
			s.notify(model.Notification{
				Title:       "Image Search Failed",
				Description: "Could not search with this image. Please try again.",
				Variant:     model.NotificationDestructive,
			})
		}
	}()

	resp = s.searcher.FetchImageResults(ctx, blob)
	if ctxErr := ctx.Err(); ctxErr != nil {
		log.Debug().Err(ctxErr).Str("namespace", s.namespace).Msg("Image search cancelled")
		return resp, fmt.Errorf("%w: %w", model.ErrImageSearchFailed, ctxErr)
	}

	s.AddHistoryEntry("", model.HistoryKindImage, preview)

	committed := s.commit(generation, func() {
		s.image.Matches = resp.ImageMatches
		s.image.Shopping = resp.ShoppingMatches
		s.current = resp
	})
	if !committed {
		return resp, model.ErrSuperseded
	}
	return resp, nil
}

// commit applies fn if generation is still the latest search.
func (s *Store) commit(generation uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		metrics.StaleResponsesTotal.Inc()
		log.Debug().
			Uint64("generation", generation).
			Uint64("latest", s.generation).
			Msg("Dropping stale search response")
		return false
	}
	fn()
	return true
}

func (s *Store) notify(n model.Notification) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(n)
}
