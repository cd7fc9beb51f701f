package messaging

import (
	"strings"
	"time"
)

// MessageType represents the kind of message content.
type MessageType string

const (
	MessageTypeText             MessageType = "text"
	MessageTypeImage            MessageType = "image"
	MessageTypeFile             MessageType = "file"
	MessageTypeSystem           MessageType = "system"
	MessageTypeOpportunityShare MessageType = "opportunity_share"
)

// MessageStatus tracks the read lifecycle. Messages are created as sent and
// move to read through a bulk mark-read transition only.
type MessageStatus string

const (
	MessageStatusSent MessageStatus = "sent"
	MessageStatusRead MessageStatus = "read"
)

// Tombstone replaces the content of a soft-deleted message. The row keeps its
// position in the thread so replies still resolve.
const Tombstone = "[message removed]"

// Message is a log entry in a conversation. ParentID is a weak reply
// reference resolved by lookup, never an ownership edge. Seq is assigned by
// the store on append and breaks CreatedAt ties so every conversation has a
// deterministic total order.
type Message struct {
	ID             string        `db:"id"`
	ConversationID string        `db:"conversation_id"`
	SenderID       string        `db:"sender_id"`
	Content        string        `db:"content"`
	Type           MessageType   `db:"type"`
	ParentID       *string       `db:"parent_id"`
	Status         MessageStatus `db:"status"`
	Seq            int64         `db:"seq"`
	CreatedAt      time.Time     `db:"created_at"`
	EditedAt       *time.Time    `db:"edited_at"`
	DeletedAt      *time.Time    `db:"deleted_at"`

	Attachments []Attachment `db:"-"`
}

// Deleted reports whether the message has been tombstoned.
func (m *Message) Deleted() bool {
	return m.DeletedAt != nil
}

// NewMessage validates and normalizes a message prior to persistence.
func NewMessage(m Message) (*Message, error) {
	if m.ConversationID == "" || m.SenderID == "" {
		return nil, ErrValidation
	}

	m.Content = strings.TrimSpace(m.Content)
	if m.Type == "" {
		m.Type = MessageTypeText
	}
	switch m.Type {
	case MessageTypeText, MessageTypeImage, MessageTypeFile, MessageTypeSystem, MessageTypeOpportunityShare:
	default:
		return nil, ErrValidation
	}

	if m.Content == "" && len(m.Attachments) == 0 && m.Type != MessageTypeSystem {
		return nil, ErrValidation
	}

	if m.Status == "" {
		m.Status = MessageStatusSent
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	return &m, nil
}
