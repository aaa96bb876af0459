package bot

import (
	"fmt"
	"time"

	"github.com/Brawl345/lensbot/logger"
	"github.com/Brawl345/lensbot/plugin"
	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
)

var log = logger.New("bot")

type Bot struct {
	*gotgbot.Bot
	updater *ext.Updater
}

func New(token string) (*Bot, error) {
	b, err := gotgbot.NewBot(token, &gotgbot.BotOpts{
		RequestOpts: &gotgbot.RequestOpts{
			Timeout: 15 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{Bot: b}, nil
}

// Start registers the plugin commands and polls for updates until the process is stopped.
func (b *Bot) Start(plugins []plugin.Plugin, printMsgs bool) error {
	var commands []gotgbot.BotCommand
	for i, plg := range plugins {
		log.Info().Msgf("Registering plugin (%d/%d): %s", i+1, len(plugins), plg.Name())
		commands = append(commands, plg.Commands()...)
	}

	if _, err := b.SetMyCommands(commands, nil); err != nil {
		log.Err(err).Msg("Failed to set bot commands")
	}

	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Processor: NewProcessor(plugins, printMsgs),
		Error: func(_ *gotgbot.Bot, ctx *ext.Context, err error) ext.DispatcherAction {
			log.Err(err).Interface("update_id", ctx.UpdateId).Msg("Failed to process update")
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})
	b.updater = ext.NewUpdater(dispatcher, nil)

	err := b.updater.StartPolling(b.Bot, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &gotgbot.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &gotgbot.RequestOpts{
				Timeout: 10 * time.Second,
			},
			AllowedUpdates: []string{"message", "edited_message", "callback_query", "inline_query"},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start polling: %w", err)
	}

	log.Info().Msgf("Logged in as @%s (%d)", b.User.Username, b.User.Id)
	b.updater.Idle()
	return nil
}

func (b *Bot) Stop() {
	if b.updater == nil {
		return
	}
	if err := b.updater.Stop(); err != nil {
		log.Err(err).Msg("Failed to stop updater")
	}
}
