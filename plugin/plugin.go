package plugin

import (
	"regexp"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
)

type (
	Plugin interface {
		Name() string

		// Commands will be shown in the menu button
		Commands() []gotgbot.BotCommand

		// Handlers are used to react to specific strings & media in a message
		Handlers(botInfo *gotgbot.User) []Handler
	}

	Handler interface {
		Command() any
		Run(b *gotgbot.Bot, c BotContext) error
	}

	BotContext struct {
		*ext.Context
		Matches      []string          // Regex matches
		NamedMatches map[string]string // Named Regex matches
	}

	HandlerFunc func(b *gotgbot.Bot, c BotContext) error

	// CommandHandler reacts to messages. Trigger is a *regexp.Regexp matched
	// against text or caption, or a tgUtils.MessageTrigger for media.
	CommandHandler struct {
		Trigger     any
		HandlerFunc HandlerFunc
		HandleEdits bool
		PrivateOnly bool
	}

	CallbackHandler struct {
		HandlerFunc  HandlerFunc
		Trigger      *regexp.Regexp
		DeleteButton bool
		Cooldown     time.Duration
	}

	InlineHandler struct {
		HandlerFunc HandlerFunc
		Trigger     *regexp.Regexp
	}
)

func (h *CommandHandler) Command() any {
	return h.Trigger
}

func (h *CommandHandler) Run(b *gotgbot.Bot, c BotContext) error {
	return h.HandlerFunc(b, c)
}

func (h *CallbackHandler) Command() any {
	return h.Trigger
}

func (h *CallbackHandler) Run(b *gotgbot.Bot, c BotContext) error {
	return h.HandlerFunc(b, c)
}

func (h *InlineHandler) Command() any {
	return h.Trigger
}

func (h *InlineHandler) Run(b *gotgbot.Bot, c BotContext) error {
	return h.HandlerFunc(b, c)
}
