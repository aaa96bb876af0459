package google_search

import (
	"regexp"
	"testing"

	"github.com/Brawl345/lensbot/plugin"
	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/stretchr/testify/require"
)

func TestTextHandlersFollowEdits(t *testing.T) {
	p := New(nil, nil, 0)

	for _, h := range p.Handlers(&gotgbot.User{Username: "lensbot"}) {
		handler, ok := h.(*plugin.CommandHandler)
		if !ok {
			continue
		}
		_, isText := handler.Trigger.(*regexp.Regexp)
		require.Equal(t, isText, handler.HandleEdits, "trigger %v", handler.Trigger)
	}
}
