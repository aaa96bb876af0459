package google_search

import (
	"strconv"

	"github.com/Brawl345/lensbot/plugin"
	"github.com/Brawl345/lensbot/utils"
	"github.com/PaulSonOfLars/gotgbot/v2"
)

func (p *Plugin) onInlineSuggestions(b *gotgbot.Bot, c plugin.BotContext) error {
	suggestions := p.registry.Get(c.EffectiveUser.Id).Suggestions(c.Matches[1])

	results := make([]gotgbot.InlineQueryResult, 0, len(suggestions))
	for i, suggestion := range suggestions {
		results = append(results, gotgbot.InlineQueryResultArticle{
			Id:    strconv.Itoa(i),
			Title: suggestion,
			InputMessageContent: gotgbot.InputTextMessageContent{
				MessageText: suggestion,
			},
		})
	}

	_, err := c.InlineQuery.Answer(b, results, &gotgbot.AnswerInlineQueryOpts{
		CacheTime:  utils.InlineQueryCacheTime,
		IsPersonal: true,
	})
	return err
}
