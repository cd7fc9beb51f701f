package task

import (
	"context"
	"encoding/json"
	"time"

	qport "github.com/utkogui/voluntariado-sub002/internal/infrastructure/queue/port"
	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	notifyport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/notify/port"
)

// NotifyOfflineTaskType is the queue task name for offline-recipient
// notification fallback.
const NotifyOfflineTaskType = "messaging:notify_offline"

// NotificationsQueue is the asynq queue the delivery path enqueues into.
const NotificationsQueue = "notifications"

// NotifyOfflineTaskPayload is the JSON payload transported via the queue. The
// queue enforces uniqueness of (type, payload) within a TTL window, so the
// payload must be deterministic per (message, recipient) pair.
type NotifyOfflineTaskPayload struct {
	MessageID      string `json:"messageId"`
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId"`
	RecipientID    string `json:"recipientId"`
	Excerpt        string `json:"excerpt"`
	Channel        string `json:"channel"`
}

// RegisterNotifyOfflineTask binds the task handler to the worker. The handler
// hands the summary to the channel dispatcher for the recipient's preference.
func RegisterNotifyOfflineTask(srv qport.Server, dispatcher notifyport.Dispatcher) {
	srv.Register(NotifyOfflineTaskType, func(ctx context.Context, t qport.Task) error {
		var p NotifyOfflineTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		return dispatcher.Dispatch(ctx, notifyport.Notification{
			Kind:           notifyport.KindMessage,
			RecipientID:    p.RecipientID,
			SenderID:       p.SenderID,
			ConversationID: p.ConversationID,
			MessageID:      p.MessageID,
			Excerpt:        p.Excerpt,
			Channel:        messaging.NotifyChannel(p.Channel),
		})
	})
}
