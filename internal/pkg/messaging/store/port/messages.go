package port

import (
	"context"
	"time"

	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
)

// AppendMessageParams carries a new message and its attachments. Attachment
// IDs and MessageID are assigned by the store.
type AppendMessageParams struct {
	ConversationID string
	SenderID       string
	Content        string
	Type           messaging.MessageType
	ParentID       *string
	Attachments    []messaging.Attachment
}

// ListMessagesFilter pages a conversation's messages. Before/After bound the
// window by creation time; results are always ascending by (CreatedAt, Seq).
type ListMessagesFilter struct {
	Page   int
	Limit  int
	Before *time.Time
	After  *time.Time
}

// UnreadBacklog summarizes a participant's unread messages in one
// conversation, used by the digest job.
type UnreadBacklog struct {
	ConversationID string
	UserID         string
	Unread         int
	OldestUnread   time.Time
}

// MessageStore owns message and attachment rows. Append is the linearization
// point per conversation: the returned message carries its assigned id and
// ordering key and is durable by the time the call returns.
type MessageStore interface {
	// Append persists the message and its attachments atomically and
	// touches the conversation's UpdatedAt. ErrPermissionDenied if the
	// sender is not a participant.
	Append(ctx context.Context, p AppendMessageParams) (*messaging.Message, error)

	// List returns messages ascending by (CreatedAt, Seq). Tombstoned
	// messages are included with their placeholder content.
	// ErrPermissionDenied if the caller is not a participant.
	List(ctx context.Context, conversationID, callerID string, f ListMessagesFilter) ([]messaging.Message, error)

	// MarkRead sets the caller's LastReadAt and transitions every message
	// authored by someone else from sent to read. It never touches the
	// caller's own messages. Returns the number of messages transitioned.
	MarkRead(ctx context.Context, conversationID, callerID string) (int64, error)

	// Edit replaces content and sets EditedAt. ErrNotFound if absent,
	// ErrPermissionDenied if the caller is not the sender, ErrConflict if
	// the message is tombstoned.
	Edit(ctx context.Context, messageID, callerID, newContent string) (*messaging.Message, error)

	// SoftDelete tombstones the message. Authorization as Edit; terminal,
	// so any later edit or delete fails with ErrConflict.
	SoftDelete(ctx context.Context, messageID, callerID string) (*messaging.Message, error)

	// UnreadBacklogs returns, per (conversation, participant), the unread
	// count for backlogs whose oldest unread message is older than the
	// cutoff. Senders never appear in their own backlog.
	UnreadBacklogs(ctx context.Context, olderThan time.Time) ([]UnreadBacklog, error)
}
