package tgUtils

import (
	"errors"
	"strings"

	"github.com/Brawl345/lensbot/utils"
	"github.com/PaulSonOfLars/gotgbot/v2"
)

func AnyText(message *gotgbot.Message) string {
	text := message.Text
	if message.Text == "" {
		text = message.Caption
	}
	return text
}

func ContainsMedia(m *gotgbot.Message) bool {
	switch {
	case m.Photo != nil:
		return true
	case m.Voice != nil:
		return true
	case m.Audio != nil:
		return true
	case m.Animation != nil:
		return true
	case m.Sticker != nil:
		return true
	case m.Document != nil:
		return true
	case m.Video != nil:
		return true
	case m.VideoNote != nil:
		return true
	default:
		return false
	}
}

// MatchesTrigger reports whether the message carries the media the trigger stands for.
func MatchesTrigger(m *gotgbot.Message, trigger MessageTrigger) bool {
	switch trigger {
	case PhotoMsg:
		return m.Photo != nil
	case VoiceMsg:
		return m.Voice != nil
	default:
		return false
	}
}

func FromGroup(message gotgbot.MaybeInaccessibleMessage) bool {
	return message.GetChat().Type == gotgbot.ChatTypeGroup || message.GetChat().Type == gotgbot.ChatTypeSupergroup
}

func IsPrivate(message *gotgbot.Message) bool {
	return message.Chat.Type == gotgbot.ChatTypePrivate
}

func GetBestResolution(photo []gotgbot.PhotoSize) *gotgbot.PhotoSize {
	if photo == nil {
		return nil
	}
	var filesize int64
	var bestResolution *gotgbot.PhotoSize
	for _, photoSize := range photo {
		photoSize := photoSize
		if photoSize.FileSize > filesize {
			filesize = photoSize.FileSize
			bestResolution = &photoSize
		}
	}

	return bestResolution
}

// IsTelegramError reports whether err is a Telegram API error containing description.
func IsTelegramError(err error, description string) bool {
	var telegramErr *gotgbot.TelegramError
	return errors.As(err, &telegramErr) && strings.Contains(telegramErr.Description, description)
}

// IsUnreachable reports whether the user can't be messaged at all.
func IsUnreachable(err error) bool {
	return IsTelegramError(err, ErrBlockedByUser) ||
		IsTelegramError(err, ErrNotStartedByUser) ||
		IsTelegramError(err, ErrUserIsDeactivated)
}

type ReactionFallbackOpts struct {
	SendMessageOpts *gotgbot.SendMessageOpts
	Fallback        string
}

// AddReactionWithFallback adds a reaction to a message. If reactions are disabled, a Fallback message is sent instead
func AddReactionWithFallback(b *gotgbot.Bot, message *gotgbot.Message, emoji string, opts *ReactionFallbackOpts) error {
	_, err := message.SetReaction(b, &gotgbot.SetMessageReactionOpts{
		Reaction: []gotgbot.ReactionType{
			gotgbot.ReactionTypeEmoji{
				Emoji: emoji,
			},
		},
	})

	if err != nil && IsTelegramError(err, "REACTION_INVALID") {
		if opts == nil {
			opts = &ReactionFallbackOpts{}
		}
		fallback := opts.Fallback
		if fallback == "" {
			fallback = emoji
		}

		sendMessageOpts := opts.SendMessageOpts
		if sendMessageOpts == nil {
			sendMessageOpts = utils.DefaultSendOptions()
		}

		_, err = message.Reply(b, fallback, sendMessageOpts)
	}

	return err
}
