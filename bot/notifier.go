package bot

import (
	"fmt"
	"strings"

	"github.com/Brawl345/lensbot/model"
	"github.com/Brawl345/lensbot/utils"
	"github.com/Brawl345/lensbot/utils/tgUtils"
	"github.com/PaulSonOfLars/gotgbot/v2"
)

// Notifier delivers notifications as chat messages. Sending happens on its
// own goroutine, Notify never blocks.
type Notifier struct {
	bot    *gotgbot.Bot
	chatID int64
}

func NewNotifier(b *gotgbot.Bot, chatID int64) *Notifier {
	return &Notifier{
		bot:    b,
		chatID: chatID,
	}
}

func (n *Notifier) Notify(notification model.Notification) {
	text := FormatNotification(notification)
	opts := utils.DefaultSendOptions()
	opts.ReplyParameters = nil

	go func() {
		_, err := n.bot.SendMessage(n.chatID, text, opts)
		if err != nil {
			if tgUtils.IsUnreachable(err) {
				log.Debug().Int64("chat_id", n.chatID).Msg("Chat is unreachable, dropping notification")
				return
			}
			log.Err(err).
				Int64("chat_id", n.chatID).
				Str("title", notification.Title).
				Msg("Failed to send notification")
		}
	}()
}

func FormatNotification(notification model.Notification) string {
	var sb strings.Builder

	if notification.Variant == model.NotificationDestructive {
		sb.WriteString("⚠️ ")
	} else {
		sb.WriteString("ℹ️ ")
	}
	sb.WriteString(fmt.Sprintf("<b>%s</b>", utils.Escape(notification.Title)))
	if notification.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(utils.Escape(notification.Description))
	}

	return sb.String()
}
