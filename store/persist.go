package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Brawl345/lensbot/model"
)

func (s *Store) key(name string) string {
	if s.namespace == "" {
		return name
	}
	return s.namespace + ":" + name
}

// load reads history and settings. Missing keys keep the defaults, corrupt
// values are discarded.
func (s *Store) load(ctx context.Context) {
	if s.kv == nil {
		return
	}

	var history []model.HistoryEntry
	if s.read(ctx, HistoryKey, &history) && history != nil {
		if len(history) > model.MaxHistoryEntries {
			history = history[:model.MaxHistoryEntries]
		}
		s.history = history
	}

	// Fields missing from the stored object keep their defaults.
	settings := model.DefaultSettings()
	if s.read(ctx, SettingsKey, &settings) {
		s.settings = settings
	}
}

func (s *Store) read(ctx context.Context, name string, v any) bool {
	raw, err := s.kv.Get(ctx, s.key(name))
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			log.Err(err).Str("key", s.key(name)).Msg("Failed to read persisted state")
		}
		return false
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		log.Debug().Err(err).Str("key", s.key(name)).Msg("Discarding corrupt persisted state")
		return false
	}
	return true
}

func (s *Store) write(name string, v any) {
	if s.kv == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		log.Err(err).Str("key", s.key(name)).Msg("Failed to encode state")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.kv.Set(ctx, s.key(name), string(data)); err != nil {
		log.Err(err).Str("key", s.key(name)).Msg("Failed to persist state")
	}
}

func (s *Store) persistHistory(history []model.HistoryEntry) {
	s.write(HistoryKey, history)
}

func (s *Store) persistSettings(settings model.Settings) {
	s.write(SettingsKey, settings)
}
