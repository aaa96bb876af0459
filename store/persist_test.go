package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Brawl345/lensbot/model"
	"github.com/stretchr/testify/require"
)

// gatedKV holds the first Set until release is closed.
type gatedKV struct {
	model.KeyValueService
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedKV(kv model.KeyValueService) *gatedKV {
	return &gatedKV{
		KeyValueService: kv,
		entered:         make(chan struct{}),
		release:         make(chan struct{}),
	}
}

func (g *gatedKV) Set(ctx context.Context, key, value string) error {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return g.KeyValueService.Set(ctx, key, value)
}

func isClosed(ch chan struct{}) func() bool {
	return func() bool {
		select {
		case <-ch:
			return true
		default:
			return false
		}
	}
}

func historyTerms(entries []model.HistoryEntry) []string {
	terms := make([]string, 0, len(entries))
	for _, entry := range entries {
		terms = append(terms, entry.Term)
	}
	return terms
}

func TestHistoryWritesKeepMutationOrder(t *testing.T) {
	kv := newGatedKV(setupKV(t))
	s := New(kv, &fakeSearcher{})

	firstDone := make(chan struct{})
	go func() {
		s.AddHistoryEntry("first", model.HistoryKindText, "")
		close(firstDone)
	}()
	<-kv.entered

	secondDone := make(chan struct{})
	go func() {
		s.AddHistoryEntry("second", model.HistoryKindText, "")
		close(secondDone)
	}()
	require.Never(t, isClosed(secondDone), 50*time.Millisecond, 5*time.Millisecond)

	close(kv.release)
	<-firstDone
	<-secondDone

	require.Equal(t, []string{"second", "first"}, historyTerms(s.History()))
	require.Equal(t, []string{"second", "first"}, historyTerms(New(kv, &fakeSearcher{}).History()))
}

func TestClearHistoryWinsOverPendingWrite(t *testing.T) {
	kv := newGatedKV(setupKV(t))
	s := New(kv, &fakeSearcher{})

	added := make(chan struct{})
	go func() {
		s.AddHistoryEntry("secret", model.HistoryKindText, "")
		close(added)
	}()
	<-kv.entered

	cleared := make(chan struct{})
	go func() {
		s.ClearHistory()
		close(cleared)
	}()
	require.Never(t, isClosed(cleared), 50*time.Millisecond, 5*time.Millisecond)

	close(kv.release)
	<-added
	<-cleared

	require.Empty(t, s.History())
	require.Empty(t, New(kv, &fakeSearcher{}).History())
}

func TestSettingsWritesKeepMutationOrder(t *testing.T) {
	kv := newGatedKV(setupKV(t))
	s := New(kv, &fakeSearcher{})

	five, ten := 5, 10
	firstDone := make(chan struct{})
	go func() {
		s.UpdateSettings(model.SettingsPatch{ResultsPerPage: &five})
		close(firstDone)
	}()
	<-kv.entered

	secondDone := make(chan struct{})
	go func() {
		s.UpdateSettings(model.SettingsPatch{ResultsPerPage: &ten})
		close(secondDone)
	}()
	require.Never(t, isClosed(secondDone), 50*time.Millisecond, 5*time.Millisecond)

	close(kv.release)
	<-firstDone
	<-secondDone

	require.Equal(t, 10, New(kv, &fakeSearcher{}).Settings().ResultsPerPage)
}
