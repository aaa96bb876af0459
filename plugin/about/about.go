package about

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Brawl345/lensbot/logger"
	"github.com/Brawl345/lensbot/plugin"
	"github.com/Brawl345/lensbot/utils"
	"github.com/PaulSonOfLars/gotgbot/v2"
)

var log = logger.New("about")

type Plugin struct {
	trending []string
	version  string
}

func New(trending []string) *Plugin {
	versionInfo, err := utils.ReadVersionInfo()
	if err != nil {
		log.Err(err).Msg("Failed to read build info")
	}

	return &Plugin{
		trending: trending,
		version:  formatVersion(versionInfo),
	}
}

func formatVersion(info utils.VersionInfo) string {
	if info.Revision == "" {
		return ""
	}

	revision := info.Revision
	if len(revision) > 7 {
		revision = revision[:7]
	}
	text := fmt.Sprintf("<code>%s</code>", revision)
	if !info.LastCommit.IsZero() {
		text += fmt.Sprintf(" <i>from %s</i>", info.LastCommit.Format("2006-01-02"))
	}
	if info.DirtyBuild {
		text += " (dirty)"
	}
	return text
}

func (p *Plugin) Name() string {
	return "about"
}

func (p *Plugin) Commands() []gotgbot.BotCommand {
	return []gotgbot.BotCommand{
		{
			Command:     "start",
			Description: "How to search",
		},
	}
}

func (p *Plugin) Handlers(botInfo *gotgbot.User) []plugin.Handler {
	return []plugin.Handler{
		&plugin.CommandHandler{
			Trigger:     regexp.MustCompile(fmt.Sprintf(`(?i)^/(?:start|help|about)(?:@%s)?$`, botInfo.Username)),
			HandlerFunc: p.onStart,
		},
	}
}

func (p *Plugin) onStart(b *gotgbot.Bot, c plugin.BotContext) error {
	_, err := c.EffectiveMessage.Reply(b, p.welcomeText(b.Username), utils.DefaultSendOptions())
	return err
}

func (p *Plugin) welcomeText(botUsername string) string {
	var sb strings.Builder

	sb.WriteString("👋 <b>Search the web, with words, pictures or your voice.</b>\n\n")
	sb.WriteString("🔎 Send me any text or use /g &lt;query&gt;\n")
	sb.WriteString("📷 Send a photo to find visual matches and products\n")
	sb.WriteString("🎙 Send a voice message to search by voice\n")
	sb.WriteString(fmt.Sprintf("⌨️ Type <code>@%s</code> in any chat for suggestions\n\n", utils.Escape(botUsername)))
	sb.WriteString("/history shows your recent searches, /settings lets you change language, region and SafeSearch.")

	if len(p.trending) > 0 {
		sb.WriteString("\n\n📈 <b>Trending</b>\n")
		for _, term := range p.trending {
			sb.WriteString(fmt.Sprintf("• %s\n", utils.Escape(term)))
		}
	}

	if p.version != "" {
		sb.WriteString("\n")
		sb.WriteString(p.version)
	}

	return strings.TrimSpace(sb.String())
}
