package google_search

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Brawl345/lensbot/model"
	"github.com/Brawl345/lensbot/plugin"
	"github.com/Brawl345/lensbot/utils"
	"github.com/Brawl345/lensbot/utils/httpUtils"
	"github.com/Brawl345/lensbot/utils/tgUtils"
	"github.com/PaulSonOfLars/gotgbot/v2"
)

func (p *Plugin) onPhoto(b *gotgbot.Bot, c plugin.BotContext) error {
	photo := tgUtils.GetBestResolution(c.EffectiveMessage.Photo)
	if photo == nil {
		return nil
	}

	if photo.FileSize > tgUtils.MaxFilesizeDownload {
		log.Warn().
			Int64("filesize", photo.FileSize).
			Msg("Photo is too big to download")
		_, err := c.EffectiveMessage.Reply(b, "❌ This image is too big.", utils.DefaultSendOptions())
		return err
	}

	_, _ = b.SendChatAction(c.EffectiveChat.Id, tgUtils.ChatActionUploadPhoto, nil)

	blob, err := downloadAll(b, photo.FileId)
	if err != nil {
		return err
	}

	s := p.registry.Get(c.EffectiveUser.Id)

	ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()

	// The Telegram file ID doubles as the preview reference in the history.
	resp, err := s.PerformImageSearch(ctx, blob, photo.FileId)
	if errors.Is(err, model.ErrSuperseded) {
		return nil
	}
	if err != nil {
		// The store already told the user.
		log.Err(err).
			Int64("user_id", c.EffectiveUser.Id).
			Msg("Image search aborted")
		return nil
	}

	return replyWithResponse(b, c.EffectiveMessage, resp, TabImages)
}

func downloadAll(b *gotgbot.Bot, fileID string) ([]byte, error) {
	file, err := httpUtils.DownloadFile(b, fileID)
	if err != nil {
		return nil, err
	}

	defer func(file io.ReadCloser) {
		err := file.Close()
		if err != nil {
			log.Err(err).Msg("Failed to close file")
		}
	}(file)

	data, err := io.ReadAll(io.LimitReader(file, tgUtils.MaxFilesizeDownload))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}
