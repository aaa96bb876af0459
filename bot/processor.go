package bot

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Brawl345/lensbot/plugin"
	"github.com/Brawl345/lensbot/utils"
	"github.com/Brawl345/lensbot/utils/tgUtils"
	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/rs/xid"
)

type Processor struct {
	plugins   []plugin.Plugin
	printMsgs bool
}

func NewProcessor(plugins []plugin.Plugin, printMsgs bool) *Processor {
	return &Processor{
		plugins:   plugins,
		printMsgs: printMsgs,
	}
}

func (p *Processor) ProcessUpdate(_ *ext.Dispatcher, b *gotgbot.Bot, ctx *ext.Context) error {
	if ctx.Message != nil || ctx.EditedMessage != nil {
		if p.printMsgs {
			printMessage(ctx)
		}
		return p.onMessage(b, ctx)
	}

	if ctx.CallbackQuery != nil {
		return p.onCallback(b, ctx)
	}

	if ctx.InlineQuery != nil {
		return p.onInlineQuery(b, ctx)
	}

	return nil
}

func (p *Processor) onMessage(b *gotgbot.Bot, ctx *ext.Context) error {
	msg := ctx.EffectiveMessage
	if msg == nil || ctx.EffectiveUser == nil {
		return nil
	}
	isEdited := msg.EditDate != 0

	// Edited captions are not searched again, the media was already handled.
	if isEdited && tgUtils.ContainsMedia(msg) {
		return nil
	}

	for _, plg := range p.plugins {
		for _, h := range plg.Handlers(&b.User) {
			handler, ok := h.(*plugin.CommandHandler)
			if !ok {
				continue
			}

			matches, namedMatches, matched := matchCommand(handler, msg, isEdited)
			if !matched {
				continue
			}

			log.Debug().Msgf("Matched plugin '%s': %v (%T)", plg.Name(), handler.Trigger, handler.Trigger)

			go p.run(b, ctx, plg.Name(), handler, plugin.BotContext{
				Context:      ctx,
				Matches:      matches,
				NamedMatches: namedMatches,
			})

			// One handler per message, so plain text does not also trigger a command search.
			return nil
		}
	}

	return nil
}

// matchCommand checks a single command handler against msg.
func matchCommand(handler *plugin.CommandHandler, msg *gotgbot.Message, isEdited bool) ([]string, map[string]string, bool) {
	if isEdited && !handler.HandleEdits {
		return nil, nil, false
	}

	if handler.PrivateOnly && !tgUtils.IsPrivate(msg) {
		return nil, nil, false
	}

	namedMatches := make(map[string]string)

	switch command := handler.Command().(type) {
	case *regexp.Regexp:
		matches := command.FindStringSubmatch(tgUtils.AnyText(msg))
		if len(matches) == 0 {
			return nil, nil, false
		}
		for i, name := range matches {
			namedMatches[command.SubexpNames()[i]] = name
		}
		return matches, namedMatches, true
	case tgUtils.MessageTrigger:
		return nil, namedMatches, tgUtils.MatchesTrigger(msg, command)
	default:
		panic(fmt.Sprintf("unsupported handler type %T", command))
	}
}

func (p *Processor) run(b *gotgbot.Bot, ctx *ext.Context, component string, handler plugin.Handler, c plugin.BotContext) {
	defer func() {
		if r := recover(); r != nil {
			guid := xid.New().String()
			log.Err(errors.New("panic")).
				Str("guid", guid).
				Int64("chat_id", ctx.EffectiveChat.Id).
				Int64("user_id", ctx.EffectiveUser.Id).
				Str("text", ctx.EffectiveMessage.Text).
				Str("component", component).
				Msgf("%s", r)
			_, _ = ctx.EffectiveMessage.Reply(b, fmt.Sprintf("❌ An error occurred.%s", utils.EmbedGUID(guid)), utils.DefaultSendOptions())
		}
	}()

	err := handler.Run(b, c)
	if err != nil {
		guid := xid.New().String()
		log.Err(err).
			Str("guid", guid).
			Int64("chat_id", ctx.EffectiveChat.Id).
			Int64("user_id", ctx.EffectiveUser.Id).
			Str("text", ctx.EffectiveMessage.Text).
			Str("component", component).
			Send()
		_, _ = ctx.EffectiveMessage.Reply(b, fmt.Sprintf("❌ An error occurred.%s", utils.EmbedGUID(guid)), utils.DefaultSendOptions())
	}
}

func (p *Processor) onCallback(b *gotgbot.Bot, ctx *ext.Context) error {
	callback := ctx.CallbackQuery

	if callback.Data == "" {
		_, err := callback.Answer(b, nil)
		return err
	}

	for _, plg := range p.plugins {
		for _, h := range plg.Handlers(&b.User) {
			handler, ok := h.(*plugin.CallbackHandler)
			if !ok {
				continue
			}

			matches := handler.Trigger.FindStringSubmatch(callback.Data)
			if len(matches) == 0 {
				continue
			}

			log.Debug().Msgf("Matched plugin %s: %s", plg.Name(), handler.Trigger)

			if handler.Cooldown > 0 && callback.Message != nil {
				callbackTime := time.Unix(callback.Message.GetDate(), 0)
				waitTime := handler.Cooldown - time.Since(callbackTime)

				if waitTime > 0 {
					_, err := callback.Answer(b, &gotgbot.AnswerCallbackQueryOpts{
						Text:      fmt.Sprintf("🕒 Please wait %.1f more seconds.", waitTime.Seconds()),
						ShowAlert: true,
					})
					return err
				}
			}

			if handler.DeleteButton && callback.Message != nil {
				go func() {
					_, _, err := b.EditMessageReplyMarkup(&gotgbot.EditMessageReplyMarkupOpts{
						ChatId:    callback.Message.GetChat().Id,
						MessageId: callback.Message.GetMessageId(),
					})
					if err != nil {
						log.Err(err).
							Int64("chat_id", callback.Message.GetChat().Id).
							Msg("Error removing inline keyboard")
					}
				}()
			}

			namedMatches := make(map[string]string)
			for i, name := range matches {
				namedMatches[handler.Trigger.SubexpNames()[i]] = name
			}

			go func(component string) {
				defer func() {
					if r := recover(); r != nil {
						log.Err(errors.New("panic")).
							Int64("user_id", callback.From.Id).
							Str("callback_data", callback.Data).
							Str("component", component).
							Msgf("%s", r)
					}
				}()
				err := handler.Run(b, plugin.BotContext{
					Context:      ctx,
					Matches:      matches,
					NamedMatches: namedMatches,
				})
				if err != nil {
					log.Err(err).
						Int64("user_id", callback.From.Id).
						Str("callback_data", callback.Data).
						Str("component", component).
						Send()
				}
			}(plg.Name())

			return nil
		}
	}

	_, err := callback.Answer(b, nil)
	return err
}

func (p *Processor) onInlineQuery(b *gotgbot.Bot, ctx *ext.Context) error {
	inlineQuery := ctx.InlineQuery

	for _, plg := range p.plugins {
		for _, h := range plg.Handlers(&b.User) {
			handler, ok := h.(*plugin.InlineHandler)
			if !ok {
				continue
			}

			matches := handler.Trigger.FindStringSubmatch(inlineQuery.Query)
			if len(matches) == 0 {
				continue
			}

			log.Debug().Msgf("Matched plugin %s: %s", plg.Name(), handler.Trigger)

			namedMatches := make(map[string]string)
			for i, name := range matches {
				namedMatches[handler.Trigger.SubexpNames()[i]] = name
			}

			go func(component string) {
				defer func() {
					if r := recover(); r != nil {
						log.Err(errors.New("panic")).
							Int64("user_id", inlineQuery.From.Id).
							Str("query", inlineQuery.Query).
							Str("component", component).
							Msgf("%s", r)
					}
				}()
				err := handler.Run(b, plugin.BotContext{
					Context:      ctx,
					Matches:      matches,
					NamedMatches: namedMatches,
				})
				if err != nil {
					log.Err(err).
						Int64("user_id", inlineQuery.From.Id).
						Str("query", inlineQuery.Query).
						Str("component", component).
						Send()
					_, _ = inlineQuery.Answer(b, nil, &gotgbot.AnswerInlineQueryOpts{
						CacheTime:  utils.InlineQueryFailureCacheTime,
						IsPersonal: true,
					})
				}
			}(plg.Name())

			return nil
		}
	}

	_, err := inlineQuery.Answer(b, nil, &gotgbot.AnswerInlineQueryOpts{
		CacheTime:  utils.InlineQueryFailureCacheTime,
		IsPersonal: true,
	})
	return err
}

func printMessage(ctx *ext.Context) {
	msg := ctx.EffectiveMessage
	var sb strings.Builder

	if tgUtils.FromGroup(msg) {
		sb.WriteString(fmt.Sprintf("[%s] ", msg.Chat.Title))
	}
	if ctx.EffectiveUser != nil {
		sb.WriteString(ctx.EffectiveUser.FirstName)
		if ctx.EffectiveUser.Username != "" {
			sb.WriteString(fmt.Sprintf(" (@%s)", ctx.EffectiveUser.Username))
		}
		sb.WriteString(": ")
	}

	switch {
	case msg.Photo != nil:
		sb.WriteString("[Photo]")
	case msg.Voice != nil:
		sb.WriteString(fmt.Sprintf("[Voice, %ds]", msg.Voice.Duration))
	default:
		sb.WriteString(tgUtils.AnyText(msg))
	}

	log.Info().Msg(sb.String())
}
