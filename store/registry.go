package store

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/Brawl345/lensbot/model"
)

const (
	DefaultIdleTimeout = 6 * time.Hour
	evictionInterval   = 10 * time.Minute
)

type (
	// NotifierFactory builds the notifier for a user, e.g. one that messages their chat.
	NotifierFactory func(userID int64) model.Notifier

	// SearcherFactory builds the searcher for a user with the given notifier.
	SearcherFactory func(notifier model.Notifier) Searcher

	registryEntry struct {
		store    *Store
		lastUsed time.Time
	}

	// Registry hands out one Store per user, created on first use. Stores that
	// were not used for a while are dropped and reloaded from kv on the next Get.
	Registry struct {
		mu       sync.Mutex
		stores   map[int64]*registryEntry
		kv       model.KeyValueService
		searcher SearcherFactory
		notifier NotifierFactory
		trending []string
	}
)

func NewRegistry(kv model.KeyValueService, searcher SearcherFactory, notifier NotifierFactory, trending []string) *Registry {
	return &Registry{
		stores:   make(map[int64]*registryEntry),
		kv:       kv,
		searcher: searcher,
		notifier: notifier,
		trending: trending,
	}
}

func (r *Registry) Get(userID int64) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.stores[userID]; ok {
		entry.lastUsed = time.Now()
		return entry.store
	}

	var notifier model.Notifier
	if r.notifier != nil {
		notifier = r.notifier(userID)
	}

	s := New(
		r.kv,
		r.searcher(notifier),
		WithNamespace(strconv.FormatInt(userID, 10)),
		WithNotifier(notifier),
		WithTrending(r.trending),
	)
	r.stores[userID] = &registryEntry{store: s, lastUsed: time.Now()}
	log.Debug().Int64("user_id", userID).Msg("Created search store")
	return s
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Evict drops stores that were not used within idle and returns how many were dropped.
// History and settings are already persisted, so nothing is lost.
func (r *Registry) Evict(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-idle)
	evicted := 0
	for userID, entry := range r.stores {
		if entry.lastUsed.Before(cutoff) {
			delete(r.stores, userID)
			evicted++
		}
	}
	return evicted
}

// EvictIdle runs Evict periodically until ctx is done.
func (r *Registry) EvictIdle(ctx context.Context, idle time.Duration) {
	ticker := time.NewTicker(evictionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := r.Evict(idle); evicted > 0 {
				log.Debug().
					Int("evicted", evicted).
					Int("remaining", r.Len()).
					Msg("Evicted idle search stores")
			}
		}
	}
}
