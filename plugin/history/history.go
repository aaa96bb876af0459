package history

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Brawl345/lensbot/model"
	"github.com/Brawl345/lensbot/plugin"
	"github.com/Brawl345/lensbot/store"
	"github.com/Brawl345/lensbot/utils"
	"github.com/PaulSonOfLars/gotgbot/v2"
)

const shownEntries = 20

type Plugin struct {
	registry *store.Registry
}

func New(registry *store.Registry) *Plugin {
	return &Plugin{
		registry: registry,
	}
}

func (p *Plugin) Name() string {
	return "history"
}

func (p *Plugin) Commands() []gotgbot.BotCommand {
	return []gotgbot.BotCommand{
		{
			Command:     "history",
			Description: "Show your recent searches",
		},
		{
			Command:     "clearhistory",
			Description: "Delete your search history",
		},
	}
}

func (p *Plugin) Handlers(botInfo *gotgbot.User) []plugin.Handler {
	return []plugin.Handler{
		&plugin.CommandHandler{
			Trigger:     regexp.MustCompile(fmt.Sprintf(`(?i)^/history(?:@%s)?$`, botInfo.Username)),
			HandlerFunc: p.onHistory,
		},
		&plugin.CommandHandler{
			Trigger:     regexp.MustCompile(fmt.Sprintf(`(?i)^/clearhistory(?:@%s)?$`, botInfo.Username)),
			HandlerFunc: p.onClearHistory,
		},
		&plugin.CallbackHandler{
			Trigger:      regexp.MustCompile(`^history:clear$`),
			HandlerFunc:  p.onClearHistoryCallback,
			DeleteButton: true,
		},
	}
}

func (p *Plugin) onHistory(b *gotgbot.Bot, c plugin.BotContext) error {
	entries := p.registry.Get(c.EffectiveUser.Id).History()

	opts := utils.DefaultSendOptions()
	if len(entries) > 0 {
		opts.ReplyMarkup = gotgbot.InlineKeyboardMarkup{
			InlineKeyboard: [][]gotgbot.InlineKeyboardButton{{
				{Text: "🗑 Clear history", CallbackData: "history:clear"},
			}},
		}
	}

	_, err := c.EffectiveMessage.Reply(b, Format(entries, time.Now()), opts)
	return err
}

func (p *Plugin) onClearHistory(b *gotgbot.Bot, c plugin.BotContext) error {
	p.registry.Get(c.EffectiveUser.Id).ClearHistory()
	_, err := c.EffectiveMessage.Reply(b, "🗑 Your search history has been deleted.", utils.DefaultSendOptions())
	return err
}

func (p *Plugin) onClearHistoryCallback(b *gotgbot.Bot, c plugin.BotContext) error {
	p.registry.Get(c.EffectiveUser.Id).ClearHistory()
	_, err := c.CallbackQuery.Answer(b, &gotgbot.AnswerCallbackQueryOpts{
		Text: "🗑 Search history deleted",
	})
	return err
}

// Format lists the newest entries relative to now.
func Format(entries []model.HistoryEntry, now time.Time) string {
	if len(entries) == 0 {
		return "🕒 Your search history is empty."
	}

	var sb strings.Builder
	sb.WriteString("🕒 <b>Recent searches</b>\n")
	for i, entry := range entries {
		if i == shownEntries {
			sb.WriteString(fmt.Sprintf("<i>and %d more</i>\n", len(entries)-shownEntries))
			break
		}

		if entry.Kind == model.HistoryKindImage {
			term := "Image search"
			if entry.Term != "" {
				term = entry.Term
			}
			sb.WriteString(fmt.Sprintf("📷 %s", utils.Escape(term)))
		} else {
			sb.WriteString(fmt.Sprintf("🔎 <code>%s</code>", utils.Escape(entry.Term)))
		}
		sb.WriteString(fmt.Sprintf(" · <i>%s</i>\n", ago(entry.Timestamp, now)))
	}

	return strings.TrimSpace(sb.String())
}

func ago(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d.Minutes()))
	case d < utils.Day:
		return fmt.Sprintf("%d h ago", int(d.Hours()))
	case d < 7*utils.Day:
		return fmt.Sprintf("%d d ago", int(d/utils.Day))
	default:
		return t.Format("Jan 2, 2006")
	}
}
