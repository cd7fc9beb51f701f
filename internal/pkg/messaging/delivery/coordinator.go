package delivery

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	qport "github.com/utkogui/voluntariado-sub002/internal/infrastructure/queue/port"
	"github.com/utkogui/voluntariado-sub002/internal/infrastructure/realtime"
	"github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/application/task"
	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

const (
	excerptLen = 120

	// uniqueTTL collapses duplicate enqueue attempts for the same
	// (message, recipient) pair: the payload is deterministic and the queue
	// rejects a second identical task within the window.
	uniqueTTL = 15 * time.Minute
)

// Coordinator decides, after a message is durably appended and broadcast,
// which participants need an asynchronous notification: everyone but the
// sender who has no live connection. Online participants saw the broadcast
// and are never notified.
type Coordinator struct {
	presence      *realtime.Registry
	conversations storeport.ConversationStore
	queue         qport.Client
	log           *slog.Logger
}

// NewCoordinator wires the delivery decision to presence and the queue.
func NewCoordinator(presence *realtime.Registry, conversations storeport.ConversationStore, queue qport.Client, log *slog.Logger) *Coordinator {
	return &Coordinator{presence: presence, conversations: conversations, queue: queue, log: log}
}

// MessageAppended enqueues one notification task per offline participant.
// Failures are logged and never propagate: the message is already durable and
// broadcast, and the queue's retry policy owns redelivery.
func (c *Coordinator) MessageAppended(ctx context.Context, msg *messaging.Message) {
	participants, err := c.conversations.Participants(ctx, msg.ConversationID)
	if err != nil {
		c.log.Error("delivery: loading participants failed",
			"conversation_id", msg.ConversationID, "message_id", msg.ID, "err", err)
		return
	}

	for _, p := range participants {
		if p.UserID == msg.SenderID {
			continue
		}
		if c.presence.IsOnline(p.UserID) {
			continue
		}
		c.enqueue(ctx, msg, p)
	}
}

func (c *Coordinator) enqueue(ctx context.Context, msg *messaging.Message, p messaging.Participant) {
	payload, err := json.Marshal(task.NotifyOfflineTaskPayload{
		MessageID:      msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		RecipientID:    p.UserID,
		Excerpt:        excerpt(msg.Content),
		Channel:        string(p.NotifyVia),
	})
	if err != nil {
		c.log.Error("delivery: marshal payload failed", "message_id", msg.ID, "err", err)
		return
	}

	_, err = c.queue.Enqueue(ctx, qport.Task{Type: task.NotifyOfflineTaskType, Payload: payload},
		qport.EnqueueOption{
			Queue:     task.NotificationsQueue,
			MaxRetry:  5,
			UniqueTTL: uniqueTTL,
		})
	if err != nil {
		c.log.Error("delivery: enqueue failed",
			"message_id", msg.ID, "recipient_id", p.UserID, "err", err)
		return
	}
	c.log.Debug("delivery: offline notification enqueued",
		"message_id", msg.ID, "recipient_id", p.UserID, "channel", p.NotifyVia)
}

func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= excerptLen {
		return content
	}
	return string(runes[:excerptLen])
}
