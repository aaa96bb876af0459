package store

import (
	"context"
	"testing"
	"time"

	"github.com/Brawl345/lensbot/model"
	"github.com/stretchr/testify/require"
)

func TestRegistryReturnsOneStorePerUser(t *testing.T) {
	kv := setupKV(t)
	var notified []int64

	registry := NewRegistry(
		kv,
		func(model.Notifier) Searcher { return &fakeSearcher{} },
		func(userID int64) model.Notifier {
			notified = append(notified, userID)
			return &recordingNotifier{}
		},
		[]string{"AI news"},
	)

	first := registry.Get(1)
	require.Same(t, first, registry.Get(1))
	require.NotSame(t, first, registry.Get(2))
	require.Equal(t, 2, registry.Len())
	require.Equal(t, []int64{1, 2}, notified)
	require.Equal(t, []string{"AI news"}, first.TrendingSearches())

	first.AddHistoryEntry("only for user one", model.HistoryKindText, "")
	require.Empty(t, registry.Get(2).History())

	_, err := kv.Get(context.Background(), "1:"+HistoryKey)
	require.NoError(t, err)
}

func TestRegistryEvictsIdleStores(t *testing.T) {
	kv := setupKV(t)
	registry := NewRegistry(kv, func(model.Notifier) Searcher { return &fakeSearcher{} }, nil, nil)

	idle := registry.Get(1)
	idle.AddHistoryEntry("cats", model.HistoryKindText, "")
	active := registry.Get(2)

	registry.mu.Lock()
	registry.stores[1].lastUsed = time.Now().Add(-2 * time.Hour)
	registry.mu.Unlock()

	require.Equal(t, 1, registry.Evict(time.Hour))
	require.Equal(t, 1, registry.Len())
	require.Same(t, active, registry.Get(2))

	reloaded := registry.Get(1)
	require.NotSame(t, idle, reloaded)
	require.Equal(t, "cats", reloaded.History()[0].Term)
}

func TestRegistryEvictIdleStopsWithContext(t *testing.T) {
	registry := NewRegistry(nil, func(model.Notifier) Searcher { return &fakeSearcher{} }, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		registry.EvictIdle(ctx, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("eviction loop did not stop")
	}
}
