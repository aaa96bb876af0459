package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Brawl345/lensbot/bot"
	"github.com/Brawl345/lensbot/config"
	"github.com/Brawl345/lensbot/logger"
	"github.com/Brawl345/lensbot/metrics"
	"github.com/Brawl345/lensbot/model"
	"github.com/Brawl345/lensbot/model/sql"
	"github.com/Brawl345/lensbot/plugin"
	"github.com/Brawl345/lensbot/plugin/about"
	"github.com/Brawl345/lensbot/plugin/google_search"
	"github.com/Brawl345/lensbot/plugin/history"
	"github.com/Brawl345/lensbot/plugin/settings"
	"github.com/Brawl345/lensbot/search"
	"github.com/Brawl345/lensbot/store"
	"github.com/Brawl345/lensbot/utils"
	"github.com/Brawl345/lensbot/voice"
)

var log = logger.New("main")

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Send()
	}
	logger.SetLevel(cfg.LogLevel)

	versionInfo, err := utils.ReadVersionInfo()
	if err == nil {
		log.Info().Msgf("Lensbot-%s, %v", versionInfo.Revision, versionInfo.LastCommit)
	}

	db, err := sql.New(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
	defer db.Close()

	log.Info().Str("driver", cfg.DBDriver).Msg("Database connection established")

	fixtures := search.DefaultFixtures()
	if cfg.FixturesFile != "" {
		fixtures, err = search.LoadFixtures(cfg.FixturesFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.FixturesFile).Msg("Failed to load fixtures")
		}
	}

	var engine search.Engine = search.NewWikipedia()
	if cfg.SerpAPIKey != "" {
		engine = search.NewSerpAPI(cfg.SerpAPIKey)
	}
	log.Info().
		Str("engine", engine.Name()).
		Str("mode", string(cfg.SearchMode)).
		Msg("Search adapter configured")

	adapter := search.New(
		search.WithEngine(engine),
		search.WithMode(cfg.SearchMode),
		search.WithFixtures(fixtures),
		search.WithTimeout(cfg.SearchTimeout),
		search.WithImageLatency(cfg.ImageSearchLatency),
	)

	b, err := bot.New(cfg.BotToken)
	if err != nil {
		log.Fatal().Err(err).Send()
	}

	registry := store.NewRegistry(
		sql.NewKeyValueService(db),
		func(notifier model.Notifier) store.Searcher {
			return adapter.WithNotifier(notifier)
		},
		func(userID int64) model.Notifier {
			return bot.NewNotifier(b.Bot, userID)
		},
		fixtures.Trending,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go registry.EvictIdle(ctx, cfg.StoreIdleTimeout)

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	plugins := []plugin.Plugin{
		about.New(fixtures.Trending),
		history.New(registry),
		settings.New(registry),
		google_search.New(registry, voice.New(cfg.OpenAIAPIKey, voice.WithModel(cfg.WhisperModel)), cfg.VoiceMaxDuration),
	}

	go func() {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
		<-signals
		log.Info().Msg("Shutting down")
		cancel()
		b.Stop()
	}()

	if err := b.Start(plugins, cfg.PrintMsgs); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info().Str("addr", addr).Msg("Serving metrics")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Err(err).Msg("Metrics server stopped")
	}
}
