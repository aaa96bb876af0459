package about

import (
	"testing"
	"time"

	"github.com/Brawl345/lensbot/utils"
	"github.com/stretchr/testify/require"
)

func TestWelcomeText(t *testing.T) {
	p := &Plugin{trending: []string{"AI news", "Tom & Jerry"}}

	text := p.welcomeText("lens_bot")
	require.Contains(t, text, "<code>@lens_bot</code>")
	require.Contains(t, text, "• AI news\n• Tom &amp; Jerry")
}

func TestFormatVersion(t *testing.T) {
	require.Empty(t, formatVersion(utils.VersionInfo{}))

	version := formatVersion(utils.VersionInfo{
		Revision:   "0123456789abcdef",
		LastCommit: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		DirtyBuild: true,
	})
	require.Equal(t, "<code>0123456</code> <i>from 2024-05-01</i> (dirty)", version)
}
