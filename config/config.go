// Package config reads the bot configuration from the environment.
// A .env file in the working directory is loaded automatically.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Brawl345/lensbot/logger"
	"github.com/Brawl345/lensbot/model/sql"
	"github.com/Brawl345/lensbot/search"
	"github.com/Brawl345/lensbot/store"
	"github.com/Brawl345/lensbot/utils"
	"github.com/Brawl345/lensbot/voice"
	_ "github.com/joho/godotenv/autoload"
)

var (
	log = logger.New("config")

	ErrMissingToken = errors.New("BOT_TOKEN is not set")
)

type Config struct {
	BotToken string

	DBDriver string
	DBDSN    string

	SearchMode         search.Mode
	SearchTimeout      time.Duration
	ImageSearchLatency time.Duration
	FixturesFile       string
	SerpAPIKey         string

	OpenAIAPIKey     string
	WhisperModel     string
	VoiceMaxDuration int // seconds

	StoreIdleTimeout time.Duration

	MetricsAddr string
	LogLevel    string
	PrintMsgs   bool
}

func Load() (*Config, error) {
	cfg := &Config{
		BotToken:           strings.TrimSpace(os.Getenv("BOT_TOKEN")),
		DBDriver:           getEnv("DB_DRIVER", sql.DriverSQLite),
		DBDSN:              getEnv("DB_DSN", "lensbot.db"),
		SearchMode:         search.Mode(strings.ToLower(getEnv("SEARCH_MODE", string(search.ModeLive)))),
		SearchTimeout:      getEnvDuration("SEARCH_TIMEOUT", search.DefaultTimeout),
		ImageSearchLatency: getEnvDuration("IMAGE_SEARCH_LATENCY", search.DefaultImageLatency),
		FixturesFile:       os.Getenv("FIXTURES_FILE"),
		SerpAPIKey:         os.Getenv("SERPAPI_API_KEY"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		WhisperModel:       getEnv("WHISPER_MODEL", voice.DefaultModel),
		VoiceMaxDuration:   getEnvInt("VOICE_MAX_DURATION", voice.MaxDuration),
		StoreIdleTimeout:   getEnvDuration("STORE_IDLE_TIMEOUT", store.DefaultIdleTimeout),
		MetricsAddr:        os.Getenv("METRICS_ADDR"),
		LogLevel:           os.Getenv("LOG_LEVEL"),
	}
	_, cfg.PrintMsgs = os.LookupEnv("PRINT_MSGS")

	if cfg.BotToken == "" {
		return nil, ErrMissingToken
	}

	if cfg.SearchMode != search.ModeLive && cfg.SearchMode != search.ModeFixture {
		log.Warn().Str("mode", string(cfg.SearchMode)).Msg("Unknown SEARCH_MODE, using live")
		cfg.SearchMode = search.ModeLive
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Invalid integer, using default")
		return fallback
	}
	return i
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := utils.ParseDuration(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Invalid duration, using default")
		return fallback
	}
	return d
}
