package model

import "strings"

type (
	Settings struct {
		SafeSearch     bool   `json:"safeSearch"`
		Language       string `json:"language"`
		Region         string `json:"region"`
		ResultsPerPage int    `json:"resultsPerPage"`
	}

	// SettingsPatch is merged field by field; nil fields are left untouched.
	SettingsPatch struct {
		SafeSearch     *bool
		Language       *string
		Region         *string
		ResultsPerPage *int
	}
)

func DefaultSettings() Settings {
	return Settings{
		SafeSearch:     true,
		Language:       "en-US",
		Region:         "US",
		ResultsPerPage: DefaultResultLimit,
	}
}

func (s Settings) Merge(patch SettingsPatch) Settings {
	if patch.SafeSearch != nil {
		s.SafeSearch = *patch.SafeSearch
	}
	if patch.Language != nil {
		s.Language = *patch.Language
	}
	if patch.Region != nil {
		s.Region = *patch.Region
	}
	if patch.ResultsPerPage != nil {
		s.ResultsPerPage = *patch.ResultsPerPage
	}
	return s
}

// LanguageCode returns the primary subtag, "fr-FR" becomes "fr".
func (s Settings) LanguageCode() string {
	lang := strings.TrimSpace(s.Language)
	if lang == "" {
		return "en"
	}
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return strings.ToLower(lang)
}
