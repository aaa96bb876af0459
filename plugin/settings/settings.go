package settings

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Brawl345/lensbot/model"
	"github.com/Brawl345/lensbot/plugin"
	"github.com/Brawl345/lensbot/store"
	"github.com/Brawl345/lensbot/utils"
	"github.com/PaulSonOfLars/gotgbot/v2"
)

const MaxResultsPerPage = 20

var (
	ErrUnknownSetting = errors.New("unknown setting")
	ErrInvalidValue   = errors.New("invalid value")

	languageTag = regexp.MustCompile(`^[A-Za-z]{2,3}(?:[-_][A-Za-z]{2})?$`)
	regionCode  = regexp.MustCompile(`^[A-Za-z]{2}$`)
)

type Plugin struct {
	registry *store.Registry
}

func New(registry *store.Registry) *Plugin {
	return &Plugin{
		registry: registry,
	}
}

func (p *Plugin) Name() string {
	return "settings"
}

func (p *Plugin) Commands() []gotgbot.BotCommand {
	return []gotgbot.BotCommand{
		{
			Command:     "settings",
			Description: "[lang|region|safe|num] <value> - Show or change search settings",
		},
	}
}

func (p *Plugin) Handlers(botInfo *gotgbot.User) []plugin.Handler {
	return []plugin.Handler{
		&plugin.CommandHandler{
			Trigger:     regexp.MustCompile(fmt.Sprintf(`(?i)^/settings(?:@%s)?$`, botInfo.Username)),
			HandlerFunc: p.onShow,
		},
		&plugin.CommandHandler{
			Trigger:     regexp.MustCompile(fmt.Sprintf(`(?i)^/settings(?:@%s)? (\S+)\s+(\S+)$`, botInfo.Username)),
			HandlerFunc: p.onUpdate,
		},
	}
}

func (p *Plugin) onShow(b *gotgbot.Bot, c plugin.BotContext) error {
	settings := p.registry.Get(c.EffectiveUser.Id).Settings()
	_, err := c.EffectiveMessage.Reply(b, Format(settings), utils.DefaultSendOptions())
	return err
}

func (p *Plugin) onUpdate(b *gotgbot.Bot, c plugin.BotContext) error {
	patch, err := ParsePatch(c.Matches[1], c.Matches[2])
	if err != nil {
		_, err := c.EffectiveMessage.Reply(b, fmt.Sprintf("❌ %s\n\n%s", utils.Escape(err.Error()), usage), utils.DefaultSendOptions())
		return err
	}

	settings := p.registry.Get(c.EffectiveUser.Id).UpdateSettings(patch)
	_, err = c.EffectiveMessage.Reply(b, "✅ Settings saved.\n\n"+Format(settings), utils.DefaultSendOptions())
	return err
}

const usage = "<b>Usage:</b>\n" +
	"<code>/settings lang fr-FR</code>\n" +
	"<code>/settings region DE</code>\n" +
	"<code>/settings safe on|off</code>\n" +
	"<code>/settings num 5</code>"

// ParsePatch turns a key and a value into a settings patch.
func ParsePatch(key, value string) (model.SettingsPatch, error) {
	var patch model.SettingsPatch
	value = strings.TrimSpace(value)

	switch strings.ToLower(key) {
	case "lang", "language":
		if !languageTag.MatchString(value) {
			return patch, fmt.Errorf("%w: %q is not a language tag like en-US", ErrInvalidValue, value)
		}
		lang := strings.ReplaceAll(value, "_", "-")
		if i := strings.Index(lang, "-"); i > 0 {
			lang = strings.ToLower(lang[:i]) + "-" + strings.ToUpper(lang[i+1:])
		} else {
			lang = strings.ToLower(lang)
		}
		patch.Language = &lang
	case "region":
		if !regionCode.MatchString(value) {
			return patch, fmt.Errorf("%w: %q is not a two-letter region code", ErrInvalidValue, value)
		}
		region := strings.ToUpper(value)
		patch.Region = &region
	case "safe", "safesearch":
		var safe bool
		switch strings.ToLower(value) {
		case "on", "true", "yes", "1":
			safe = true
		case "off", "false", "no", "0":
			safe = false
		default:
			return patch, fmt.Errorf("%w: use on or off", ErrInvalidValue)
		}
		patch.SafeSearch = &safe
	case "num", "results":
		num, err := strconv.Atoi(value)
		if err != nil || num < 1 || num > MaxResultsPerPage {
			return patch, fmt.Errorf("%w: results per page must be between 1 and %d", ErrInvalidValue, MaxResultsPerPage)
		}
		patch.ResultsPerPage = &num
	default:
		return patch, fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}

	return patch, nil
}

func Format(settings model.Settings) string {
	safeSearch := "off"
	if settings.SafeSearch {
		safeSearch = "on"
	}

	return fmt.Sprintf(
		"⚙️ <b>Search settings</b>\n"+
			"Language: <code>%s</code>\n"+
			"Region: <code>%s</code>\n"+
			"SafeSearch: <code>%s</code>\n"+
			"Results per page: <code>%d</code>",
		utils.Escape(settings.Language),
		utils.Escape(settings.Region),
		safeSearch,
		settings.ResultsPerPage,
	)
}
