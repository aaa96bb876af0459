package config

import (
	"testing"
	"time"

	"github.com/Brawl345/lensbot/search"
	"github.com/Brawl345/lensbot/store"
	"github.com/Brawl345/lensbot/voice"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"BOT_TOKEN", "DB_DRIVER", "DB_DSN", "SEARCH_MODE", "SEARCH_TIMEOUT",
		"IMAGE_SEARCH_LATENCY", "FIXTURES_FILE", "SERPAPI_API_KEY", "OPENAI_API_KEY", "WHISPER_MODEL",
		"VOICE_MAX_DURATION", "STORE_IDLE_TIMEOUT", "METRICS_ADDR", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "123:abc")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "123:abc", cfg.BotToken)
	require.Equal(t, "sqlite3", cfg.DBDriver)
	require.Equal(t, "lensbot.db", cfg.DBDSN)
	require.Equal(t, search.ModeLive, cfg.SearchMode)
	require.Equal(t, search.DefaultTimeout, cfg.SearchTimeout)
	require.Equal(t, search.DefaultImageLatency, cfg.ImageSearchLatency)
	require.Equal(t, 180, cfg.VoiceMaxDuration)
	require.Equal(t, voice.DefaultModel, cfg.WhisperModel)
	require.Equal(t, store.DefaultIdleTimeout, cfg.StoreIdleTimeout)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("SEARCH_MODE", "FIXTURE")
	t.Setenv("SEARCH_TIMEOUT", "PT3S")
	t.Setenv("IMAGE_SEARCH_LATENCY", "250ms")
	t.Setenv("VOICE_MAX_DURATION", "60")
	t.Setenv("WHISPER_MODEL", "gpt-4o-mini-transcribe")
	t.Setenv("STORE_IDLE_TIMEOUT", "PT1H")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "mysql", cfg.DBDriver)
	require.Equal(t, search.ModeFixture, cfg.SearchMode)
	require.Equal(t, 3*time.Second, cfg.SearchTimeout)
	require.Equal(t, 250*time.Millisecond, cfg.ImageSearchLatency)
	require.Equal(t, 60, cfg.VoiceMaxDuration)
	require.Equal(t, "gpt-4o-mini-transcribe", cfg.WhisperModel)
	require.Equal(t, time.Hour, cfg.StoreIdleTimeout)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("SEARCH_MODE", "turbo")
	t.Setenv("SEARCH_TIMEOUT", "soon")
	t.Setenv("VOICE_MAX_DURATION", "long")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, search.ModeLive, cfg.SearchMode)
	require.Equal(t, search.DefaultTimeout, cfg.SearchTimeout)
	require.Equal(t, 180, cfg.VoiceMaxDuration)
}

func TestLoadRequiresToken(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingToken)
}
