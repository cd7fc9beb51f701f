package messaging

import (
	"testing"
	"time"
)

func TestNewMessageDefaults(t *testing.T) {
	msg, err := NewMessage(Message{
		ConversationID: "c1",
		SenderID:       "u1",
		Content:        "  hello  ",
	})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if msg.Content != "hello" {
		t.Errorf("content = %q, want trimmed", msg.Content)
	}
	if msg.Type != MessageTypeText {
		t.Errorf("type = %q, want text default", msg.Type)
	}
	if msg.Status != MessageStatusSent {
		t.Errorf("status = %q, want sent", msg.Status)
	}
	if msg.CreatedAt.IsZero() {
		t.Error("created_at not assigned")
	}
}

func TestNewMessageRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		in   Message
	}{
		{"missing conversation", Message{SenderID: "u1", Content: "hi"}},
		{"missing sender", Message{ConversationID: "c1", Content: "hi"}},
		{"empty content without attachments", Message{ConversationID: "c1", SenderID: "u1", Content: "   "}},
		{"unknown type", Message{ConversationID: "c1", SenderID: "u1", Content: "hi", Type: "video"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewMessage(tc.in); err != ErrValidation {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestNewMessageAllowsEmptySystemContent(t *testing.T) {
	if _, err := NewMessage(Message{ConversationID: "c1", SenderID: "u1", Type: MessageTypeSystem}); err != nil {
		t.Fatalf("system message with empty content rejected: %v", err)
	}
}

func TestNewMessageAllowsAttachmentOnly(t *testing.T) {
	msg, err := NewMessage(Message{
		ConversationID: "c1",
		SenderID:       "u1",
		Attachments:    []Attachment{{FileName: "a.png", FileURL: "https://cdn/a.png"}},
	})
	if err != nil {
		t.Fatalf("attachment-only message rejected: %v", err)
	}
	if msg.Content != "" {
		t.Errorf("content = %q, want empty", msg.Content)
	}
}

func TestDeleted(t *testing.T) {
	m := Message{}
	if m.Deleted() {
		t.Error("fresh message reported deleted")
	}
	now := time.Now()
	m.DeletedAt = &now
	if !m.Deleted() {
		t.Error("tombstoned message not reported deleted")
	}
}
