package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSettingsMergeOnlyTouchesGivenFields(t *testing.T) {
	lang := "fr-FR"
	merged := DefaultSettings().Merge(SettingsPatch{Language: &lang})

	expected := DefaultSettings()
	expected.Language = "fr-FR"
	require.Equal(t, expected, merged)
}

func TestLanguageCode(t *testing.T) {
	require.Equal(t, "fr", Settings{Language: "fr-FR"}.LanguageCode())
	require.Equal(t, "de", Settings{Language: "DE"}.LanguageCode())
	require.Equal(t, "pt", Settings{Language: "pt_BR"}.LanguageCode())
	require.Equal(t, "en", Settings{}.LanguageCode())
}

func TestSearchResponseNormalize(t *testing.T) {
	resp := SearchResponse{}.Normalize()
	require.NotNil(t, resp.Results)
	require.NotNil(t, resp.ImageMatches)
	require.NotNil(t, resp.ShoppingMatches)
	require.NotNil(t, resp.RelatedQueries)
	require.Empty(t, resp.Results)
	require.Empty(t, resp.ImageMatches)
	require.Empty(t, resp.ShoppingMatches)
}
