package port

import (
	"context"

	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
)

// NotificationKind distinguishes the immediate offline fallback from the
// periodic unread digest.
type NotificationKind string

const (
	KindMessage NotificationKind = "message"
	KindDigest  NotificationKind = "digest"
)

// Notification is the summary payload handed to an outbound channel for a
// participant who missed the live broadcast. Recipient resolution (email
// address, device token, phone number) happens inside the provider; this
// service only knows user ids.
type Notification struct {
	Kind           NotificationKind
	RecipientID    string
	SenderID       string
	ConversationID string
	MessageID      string
	Excerpt        string
	Unread         int
	Channel        messaging.NotifyChannel
}

// Dispatcher delivers one notification over an outbound channel. Dispatch is
// invoked at-least-once by the worker, so implementations must tolerate
// retries of the same notification.
type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}
