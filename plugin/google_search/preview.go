package google_search

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Brawl345/lensbot/plugin"
	"github.com/Brawl345/lensbot/utils"
	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/go-shiori/go-readability"
)

const (
	previewTimeout   = 10 * time.Second
	maxPreviewLength = 1200
)

var fetchArticle = func(link string, timeout time.Duration) (readability.Article, error) {
	return readability.FromURL(link, timeout)
}

func (p *Plugin) onPreview(b *gotgbot.Bot, c plugin.BotContext) error {
	index, err := strconv.Atoi(c.Matches[1])
	if err != nil {
		return err
	}

	results := p.registry.Get(c.EffectiveUser.Id).Current().Results
	if index >= len(results) {
		_, err := c.CallbackQuery.Answer(b, &gotgbot.AnswerCallbackQueryOpts{
			Text:      "❌ This search has expired, please search again.",
			ShowAlert: true,
		})
		return err
	}
	result := results[index]

	if u, err := url.Parse(result.Link); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		_, err := c.CallbackQuery.Answer(b, &gotgbot.AnswerCallbackQueryOpts{
			Text:      "❌ No preview available for this result.",
			ShowAlert: true,
		})
		return err
	}

	_, _ = c.CallbackQuery.Answer(b, &gotgbot.AnswerCallbackQueryOpts{
		Text: "Loading preview...",
	})

	text, err := Preview(result.Link)
	if err != nil {
		log.Err(err).
			Str("url", result.Link).
			Msg("Failed to extract text content from URL")
		text = fmt.Sprintf("❌ Could not load a preview for <a href=\"%s\">%s</a>.",
			utils.Escape(result.Link), utils.Escape(result.Title))
	}

	opts := utils.DefaultSendOptions()
	opts.ReplyParameters = nil
	_, err = b.SendMessage(c.EffectiveChat.Id, text, opts)
	return err
}

// Preview fetches link and returns a readable excerpt as Telegram HTML.
func Preview(link string) (string, error) {
	article, err := fetchArticle(link, previewTimeout)
	if err != nil {
		return "", err
	}

	content := strings.Join(strings.Fields(article.TextContent), " ")
	if content == "" {
		content = article.Excerpt
	}

	var sb strings.Builder
	title := article.Title
	if title == "" {
		title = link
	}
	sb.WriteString(fmt.Sprintf("📄 <b>%s</b>\n", utils.Escape(title)))
	if article.Byline != "" {
		sb.WriteString(fmt.Sprintf("<i>%s</i>\n", utils.Escape(article.Byline)))
	}
	sb.WriteString("\n")
	if content != "" {
		sb.WriteString(utils.Escape(utils.Truncate(content, maxPreviewLength)))
		sb.WriteString("\n\n")
	}
	sb.WriteString(fmt.Sprintf("<a href=\"%s\">Open page</a>", utils.Escape(link)))

	return sb.String(), nil
}
