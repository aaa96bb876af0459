package model

type NotificationVariant string

// NotificationDestructive marks errors; the zero variant is a plain notice.
const NotificationDestructive NotificationVariant = "destructive"

type (
	Notification struct {
		Title       string
		Description string
		Variant     NotificationVariant
	}

	// Notifier shows a dismissible, non-blocking message to the user.
	// Implementations must not block the caller.
	Notifier interface {
		Notify(n Notification)
	}

	NotifierFunc func(n Notification)
)

func (f NotifierFunc) Notify(n Notification) {
	f(n)
}
