package bot

import (
	"testing"

	"github.com/Brawl345/lensbot/model"
	"github.com/stretchr/testify/require"
)

func TestFormatNotification(t *testing.T) {
	text := FormatNotification(model.Notification{
		Title:       "Image Search Failed",
		Description: "Try again <later>",
		Variant:     model.NotificationDestructive,
	})
	require.Equal(t, "⚠️ <b>Image Search Failed</b>\nTry again &lt;later&gt;", text)

	text = FormatNotification(model.Notification{Title: "Using demo results"})
	require.Equal(t, "ℹ️ <b>Using demo results</b>", text)
}
