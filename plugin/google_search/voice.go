package google_search

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/Brawl345/lensbot/plugin"
	"github.com/Brawl345/lensbot/utils"
	"github.com/Brawl345/lensbot/utils/tgUtils"
	"github.com/Brawl345/lensbot/voice"
	"github.com/PaulSonOfLars/gotgbot/v2"
)

func (p *Plugin) onVoice(b *gotgbot.Bot, c plugin.BotContext) error {
	msg := c.EffectiveMessage

	if msg.Voice.FileSize > tgUtils.MaxFilesizeDownload || msg.Voice.FileSize > voice.MaxVoiceSize {
		log.Warn().
			Int64("filesize", msg.Voice.FileSize).
			Msg("Voice file is too big")
		_, err := msg.Reply(b, "❌ This voice message is too big.", utils.DefaultSendOptions())
		return err
	}

	if p.voiceMaxDuration > 0 && msg.Voice.Duration > p.voiceMaxDuration {
		log.Warn().
			Int64("duration", msg.Voice.Duration).
			Msg(fmt.Sprintf("Voice message is longer than %d seconds", p.voiceMaxDuration))
		_, err := msg.Reply(b, fmt.Sprintf("❌ Voice messages can be at most %d seconds long.", p.voiceMaxDuration), utils.DefaultSendOptions())
		return err
	}

	audio, err := downloadAll(b, msg.Voice.FileId)
	if err != nil {
		return err
	}

	fileEnding := ".ogg"
	if msg.Voice.MimeType == "audio/mpeg" {
		fileEnding = ".mp3"
	} else if msg.Voice.MimeType == "audio/mp4" {
		fileEnding = ".m4a"
	}

	s := p.registry.Get(c.EffectiveUser.Id)
	opts := voice.DefaultOptions()
	opts.Language = s.Settings().Language

	var (
		mu         sync.Mutex
		transcript string
		status     *gotgbot.Message
	)

	onText := func(text string) {
		mu.Lock()
		transcript = text
		current := status
		mu.Unlock()

		s.SetQuery(text)
		if current == nil {
			return
		}
		_, _, err := current.EditText(b, fmt.Sprintf("🎙 <i>%s</i>", utils.Escape(text)), &gotgbot.EditMessageTextOpts{
			ParseMode: gotgbot.ParseModeHTML,
		})
		if err != nil && !tgUtils.IsTelegramError(err, tgUtils.ErrMessageNotModified) {
			log.Err(err).Msg("Failed to update transcript")
		}
	}

	onState := func(listening bool) {
		s.SetListening(listening)
		if listening {
			return
		}

		mu.Lock()
		text := transcript
		mu.Unlock()

		if text == "" {
			_, err := msg.Reply(b, "❌ Sorry, I could not understand that.", utils.DefaultSendOptions())
			if err != nil {
				log.Err(err).Msg("Failed to send reply")
			}
			return
		}

		if err := p.search(b, c, text, msg); err != nil {
			log.Err(err).
				Int64("user_id", c.EffectiveUser.Id).
				Str("query", text).
				Msg("Voice search failed")
		}
	}

	_ = tgUtils.AddReactionWithFallback(b, msg, "👀", &tgUtils.ReactionFallbackOpts{
		Fallback: "🎙 Listening...",
	})

	mu.Lock()
	defer mu.Unlock()

	started := p.voice.StartListening(context.Background(), voice.Audio{
		Content:  bytes.NewReader(audio),
		FileName: "voice" + fileEnding,
	}, onText, onState, opts)
	if !started {
		_, err := msg.Reply(b, "❌ Voice search is not available.", utils.DefaultSendOptions())
		return err
	}

	status, err = msg.Reply(b, "🎙 <i>Listening...</i>", utils.DefaultSendOptions())
	return err
}
