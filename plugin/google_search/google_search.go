package google_search

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/Brawl345/lensbot/logger"
	"github.com/Brawl345/lensbot/model"
	"github.com/Brawl345/lensbot/plugin"
	"github.com/Brawl345/lensbot/store"
	"github.com/Brawl345/lensbot/utils"
	"github.com/Brawl345/lensbot/utils/tgUtils"
	"github.com/Brawl345/lensbot/voice"
	"github.com/PaulSonOfLars/gotgbot/v2"
)

var log = logger.New("google_search")

const searchTimeout = 30 * time.Second

type Plugin struct {
	registry         *store.Registry
	voice            voice.Capability
	voiceMaxDuration int64
}

func New(registry *store.Registry, capability voice.Capability, voiceMaxDuration int) *Plugin {
	if capability == nil {
		capability = voice.Unavailable{}
	}
	return &Plugin{
		registry:         registry,
		voice:            capability,
		voiceMaxDuration: int64(voiceMaxDuration),
	}
}

func (p *Plugin) Name() string {
	return "google_search"
}

func (p *Plugin) Commands() []gotgbot.BotCommand {
	return []gotgbot.BotCommand{
		{
			Command:     "g",
			Description: "<query> - Search the web",
		},
	}
}

func (p *Plugin) Handlers(botInfo *gotgbot.User) []plugin.Handler {
	return []plugin.Handler{
		&plugin.CommandHandler{
			Trigger:     regexp.MustCompile(fmt.Sprintf(`(?is)^/g(?:@%s)? (.+)$`, botInfo.Username)),
			HandlerFunc: p.onSearch,
			HandleEdits: true,
		},
		&plugin.CommandHandler{
			Trigger:     tgUtils.PhotoMsg,
			HandlerFunc: p.onPhoto,
		},
		&plugin.CommandHandler{
			Trigger:     tgUtils.VoiceMsg,
			HandlerFunc: p.onVoice,
		},
		&plugin.CommandHandler{
			Trigger:     regexp.MustCompile(`(?s)^([^/].*)$`),
			HandlerFunc: p.onSearch,
			HandleEdits: true,
			PrivateOnly: true,
		},
		&plugin.CallbackHandler{
			Trigger:     regexp.MustCompile(`^tab:(web|images|shopping)$`),
			HandlerFunc: p.onTab,
		},
		&plugin.CallbackHandler{
			Trigger:     regexp.MustCompile(`^related:(\d+)$`),
			HandlerFunc: p.onRelated,
			Cooldown:    time.Second,
		},
		&plugin.CallbackHandler{
			Trigger:     regexp.MustCompile(`^preview:(\d+)$`),
			HandlerFunc: p.onPreview,
		},
		&plugin.InlineHandler{
			Trigger:     regexp.MustCompile(`(?s)^(.*)$`),
			HandlerFunc: p.onInlineSuggestions,
		},
	}
}

func (p *Plugin) onSearch(b *gotgbot.Bot, c plugin.BotContext) error {
	return p.search(b, c, c.Matches[1], c.EffectiveMessage)
}

// search runs a web search for query and replies to replyTo with the first page.
func (p *Plugin) search(b *gotgbot.Bot, c plugin.BotContext, query string, replyTo *gotgbot.Message) error {
	s := p.registry.Get(c.EffectiveUser.Id)

	_, _ = b.SendChatAction(c.EffectiveChat.Id, tgUtils.ChatActionTyping, nil)

	ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()

	resp, err := s.Search(ctx, query)
	if errors.Is(err, model.ErrSuperseded) {
		log.Debug().
			Int64("user_id", c.EffectiveUser.Id).
			Str("query", query).
			Msg("Search was superseded, not replying")
		return nil
	}
	if err != nil {
		return err
	}

	return replyWithResponse(b, replyTo, resp, TabWeb)
}

func replyWithResponse(b *gotgbot.Bot, replyTo *gotgbot.Message, resp model.SearchResponse, tab Tab) error {
	opts := utils.DefaultSendOptions()
	opts.ReplyMarkup = Keyboard(resp, tab)
	_, err := replyTo.Reply(b, Render(resp, tab), opts)
	return err
}

func (p *Plugin) onTab(b *gotgbot.Bot, c plugin.BotContext) error {
	tab := Tab(c.Matches[1])
	resp := p.registry.Get(c.EffectiveUser.Id).Current()

	_, _ = c.CallbackQuery.Answer(b, nil)
	return editWithResponse(b, c.CallbackQuery, resp, tab)
}

func editWithResponse(b *gotgbot.Bot, callback *gotgbot.CallbackQuery, resp model.SearchResponse, tab Tab) error {
	if callback.Message == nil {
		return nil
	}

	_, _, err := b.EditMessageText(Render(resp, tab), &gotgbot.EditMessageTextOpts{
		ChatId:             callback.Message.GetChat().Id,
		MessageId:          callback.Message.GetMessageId(),
		ParseMode:          gotgbot.ParseModeHTML,
		LinkPreviewOptions: &gotgbot.LinkPreviewOptions{IsDisabled: true},
		ReplyMarkup:        Keyboard(resp, tab),
	})
	if tgUtils.IsTelegramError(err, tgUtils.ErrMessageNotModified) {
		return nil
	}
	return err
}

func (p *Plugin) onRelated(b *gotgbot.Bot, c plugin.BotContext) error {
	index, err := strconv.Atoi(c.Matches[1])
	if err != nil {
		return err
	}

	s := p.registry.Get(c.EffectiveUser.Id)
	related := s.Current().RelatedQueries
	if index >= len(related) {
		_, err := c.CallbackQuery.Answer(b, &gotgbot.AnswerCallbackQueryOpts{
			Text:      "❌ This search has expired, please search again.",
			ShowAlert: true,
		})
		return err
	}

	query := related[index]
	_, _ = c.CallbackQuery.Answer(b, &gotgbot.AnswerCallbackQueryOpts{
		Text: fmt.Sprintf("Searching for \"%s\"...", query),
	})

	ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()

	resp, err := s.Search(ctx, query)
	if errors.Is(err, model.ErrSuperseded) {
		return nil
	}
	if err != nil {
		return err
	}

	return editWithResponse(b, c.CallbackQuery, resp, TabWeb)
}
