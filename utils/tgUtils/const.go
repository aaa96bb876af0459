package tgUtils

type MessageTrigger string

const (
	PhotoMsg MessageTrigger = "\alensbot_photo"
	VoiceMsg MessageTrigger = "\alensbot_voice"

	MaxMessageLength    = 4096
	MaxFilesizeDownload = 20000000 // Max filesize that can be downloaded from Telegram = 20MB

	ChatActionTyping      = "typing"
	ChatActionUploadPhoto = "upload_photo"

	ErrBlockedByUser      = "Forbidden: bot was blocked by the user"
	ErrNotStartedByUser   = "Forbidden: bot can't initiate conversation with a user"
	ErrUserIsDeactivated  = "Forbidden: user is deactivated"
	ErrMessageNotModified = "message is not modified"
)
