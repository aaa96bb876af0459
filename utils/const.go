package utils

import "time"

const (
	Day = 24 * time.Hour

	InlineQueryCacheTime        = 5 // In seconds
	InlineQueryFailureCacheTime = 2 // In seconds

	BotAgent = "Lensbot/1.0 (Telegram Bot; +https://github.com/Brawl345/lensbot)"
)
