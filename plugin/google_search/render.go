package google_search

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Brawl345/lensbot/model"
	"github.com/Brawl345/lensbot/utils"
	"github.com/Brawl345/lensbot/utils/tgUtils"
	"github.com/PaulSonOfLars/gotgbot/v2"
)

type Tab string

const (
	TabWeb      Tab = "web"
	TabImages   Tab = "images"
	TabShopping Tab = "shopping"

	maxPreviewButtons = 5
	maxRelatedButtons = 4
)

var tabs = []struct {
	tab   Tab
	label string
}{
	{TabWeb, "🔎 All"},
	{TabImages, "🖼 Images"},
	{TabShopping, "🛍 Shopping"},
}

// Render formats resp for the given tab as Telegram HTML.
func Render(resp model.SearchResponse, tab Tab) string {
	var sb strings.Builder

	if resp.Query != "" {
		sb.WriteString(fmt.Sprintf("🔎 <b>%s</b>", utils.Escape(resp.Query)))
	} else {
		sb.WriteString("📷 <b>Visual matches</b>")
	}
	if resp.TotalHits > 0 && tab == TabWeb {
		sb.WriteString(fmt.Sprintf("\n<i>About %s results</i>", utils.FormatThousand(resp.TotalHits)))
	}
	sb.WriteString("\n\n")

	if resp.Answer != "" && tab != TabShopping {
		sb.WriteString(fmt.Sprintf("💡 <b>%s</b>\n", utils.Escape(resp.Answer)))
		if resp.AdditionalInfo != "" && resp.AdditionalInfo != resp.Answer {
			sb.WriteString(utils.Escape(resp.AdditionalInfo))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	var entries []string
	switch tab {
	case TabImages:
		entries = renderImages(resp.ImageMatches)
	case TabShopping:
		entries = renderShopping(resp.ShoppingMatches)
	default:
		entries = renderWeb(resp.Results)
	}
	if len(entries) == 0 {
		sb.WriteString("<i>No results found.</i>")
		return sb.String()
	}

	// Entries are never cut in half, that would break the markup.
	for i, entry := range entries {
		if i > 0 {
			entry = "\n\n" + entry
		}
		if utf8.RuneCountInString(sb.String())+utf8.RuneCountInString(entry) > tgUtils.MaxMessageLength {
			break
		}
		sb.WriteString(entry)
	}

	return sb.String()
}

func renderWeb(results []model.SearchResult) []string {
	entries := make([]string, 0, len(results))
	for i, result := range results {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf(
			"<b>%d.</b> <a href=\"%s\">%s</a>",
			i+1,
			utils.Escape(result.Link),
			utils.Escape(result.Title),
		))

		meta := result.DisplayLink
		if result.Date != "" {
			meta += " · " + result.Date
		}
		if meta != "" {
			sb.WriteString(fmt.Sprintf("\n<i>%s</i>", utils.Escape(meta)))
		}

		if result.Description != "" {
			sb.WriteString("\n")
			sb.WriteString(utils.Escape(utils.Truncate(result.Description, 300)))
		}
		entries = append(entries, sb.String())
	}
	return entries
}

func renderImages(matches []model.ImageMatch) []string {
	entries := make([]string, 0, len(matches))
	for i, match := range matches {
		entry := fmt.Sprintf(
			"<b>%d.</b> <a href=\"%s\">%s</a> · %s",
			i+1,
			utils.Escape(match.Link),
			utils.Escape(match.Title),
			utils.Escape(match.Source),
		)
		if match.Description != "" {
			entry += "\n" + utils.Escape(match.Description)
		}
		entries = append(entries, entry)
	}
	return entries
}

func renderShopping(matches []model.ShoppingMatch) []string {
	entries := make([]string, 0, len(matches))
	for i, match := range matches {
		entries = append(entries, fmt.Sprintf(
			"<b>%d.</b> <a href=\"%s\">%s</a>\n💰 %s · %s",
			i+1,
			utils.Escape(match.Link),
			utils.Escape(match.Title),
			utils.Escape(match.Price),
			utils.Escape(match.Store),
		))
	}
	return entries
}

// Keyboard builds the tab switcher, preview buttons and related searches.
func Keyboard(resp model.SearchResponse, active Tab) gotgbot.InlineKeyboardMarkup {
	var rows [][]gotgbot.InlineKeyboardButton

	tabRow := make([]gotgbot.InlineKeyboardButton, 0, len(tabs))
	for _, t := range tabs {
		label := t.label
		if t.tab == active {
			label = "• " + label + " •"
		}
		tabRow = append(tabRow, gotgbot.InlineKeyboardButton{
			Text:         label,
			CallbackData: "tab:" + string(t.tab),
		})
	}
	rows = append(rows, tabRow)

	if active == TabWeb && len(resp.Results) > 0 {
		previewRow := make([]gotgbot.InlineKeyboardButton, 0, maxPreviewButtons)
		for i := range resp.Results[:min(len(resp.Results), maxPreviewButtons)] {
			previewRow = append(previewRow, gotgbot.InlineKeyboardButton{
				Text:         "📄 " + strconv.Itoa(i+1),
				CallbackData: "preview:" + strconv.Itoa(i),
			})
		}
		rows = append(rows, previewRow)
	}

	for i, related := range resp.RelatedQueries {
		if i == maxRelatedButtons {
			break
		}
		rows = append(rows, []gotgbot.InlineKeyboardButton{{
			Text:         "↪️ " + related,
			CallbackData: "related:" + strconv.Itoa(i),
		}})
	}

	return gotgbot.InlineKeyboardMarkup{InlineKeyboard: rows}
}
