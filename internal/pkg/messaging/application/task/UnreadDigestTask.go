package task

import (
	"context"
	"encoding/json"
	"time"

	qport "github.com/utkogui/voluntariado-sub002/internal/infrastructure/queue/port"
	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	notifyport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/notify/port"
)

// UnreadDigestTaskType is the queue task name for the periodic unread-backlog
// nudge.
const UnreadDigestTaskType = "messaging:unread_digest"

// UnreadDigestTaskPayload identifies one participant's backlog in one
// conversation. Deterministic per (conversation, user, day) so the digest job
// can rely on queue uniqueness instead of its own bookkeeping.
type UnreadDigestTaskPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	Unread         int    `json:"unread"`
	Channel        string `json:"channel"`
}

// RegisterUnreadDigestTask binds the digest handler to the worker.
func RegisterUnreadDigestTask(srv qport.Server, dispatcher notifyport.Dispatcher) {
	srv.Register(UnreadDigestTaskType, func(ctx context.Context, t qport.Task) error {
		var p UnreadDigestTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		return dispatcher.Dispatch(ctx, notifyport.Notification{
			Kind:           notifyport.KindDigest,
			RecipientID:    p.UserID,
			ConversationID: p.ConversationID,
			Unread:         p.Unread,
			Channel:        messaging.NotifyChannel(p.Channel),
		})
	})
}
