package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

func newDirect(t *testing.T, s *MemoryStore, a, b string) *messaging.Conversation {
	t.Helper()
	conv, err := s.Create(context.Background(), storeport.CreateConversationParams{
		CreatorID:      a,
		ParticipantIDs: []string{a, b},
		Type:           messaging.ConversationTypeDirect,
	})
	if err != nil {
		t.Fatalf("create direct: %v", err)
	}
	return conv
}

func newGroup(t *testing.T, s *MemoryStore, creator string, members ...string) *messaging.Conversation {
	t.Helper()
	conv, err := s.Create(context.Background(), storeport.CreateConversationParams{
		CreatorID:      creator,
		ParticipantIDs: append([]string{creator}, members...),
		Type:           messaging.ConversationTypeGroup,
	})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	return conv
}

func send(t *testing.T, s *MemoryStore, convID, sender, content string) *messaging.Message {
	t.Helper()
	msg, err := s.Append(context.Background(), storeport.AppendMessageParams{
		ConversationID: convID,
		SenderID:       sender,
		Content:        content,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	return msg
}

func TestCreateDirectIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	first := newDirect(t, s, "alice", "bob")

	// Same pair in the opposite order resolves to the same conversation.
	second, err := s.Create(context.Background(), storeport.CreateConversationParams{
		CreatorID:      "bob",
		ParticipantIDs: []string{"bob", "alice"},
		Type:           messaging.ConversationTypeDirect,
	})
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("direct create returned a new conversation: %s != %s", second.ID, first.ID)
	}
}

func TestCreateDirectValidation(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Create(context.Background(), storeport.CreateConversationParams{
		CreatorID:      "alice",
		ParticipantIDs: []string{"alice", "alice"},
		Type:           messaging.ConversationTypeDirect,
	})
	if !errors.Is(err, messaging.ErrValidation) {
		t.Errorf("self-direct err = %v, want ErrValidation", err)
	}

	_, err = s.Create(context.Background(), storeport.CreateConversationParams{
		CreatorID:      "alice",
		ParticipantIDs: []string{"alice", "bob", "carol"},
		Type:           messaging.ConversationTypeDirect,
	})
	if !errors.Is(err, messaging.ErrValidation) {
		t.Errorf("three-member direct err = %v, want ErrValidation", err)
	}
}

func TestFindDirect(t *testing.T) {
	s := NewMemoryStore()
	conv := newDirect(t, s, "alice", "bob")

	got, err := s.FindDirect(context.Background(), "bob", "alice")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil || got.ID != conv.ID {
		t.Fatalf("find returned %+v, want conversation %s", got, conv.ID)
	}

	missing, err := s.FindDirect(context.Background(), "alice", "carol")
	if err != nil {
		t.Fatalf("find missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown pair, got %+v", missing)
	}
}

func TestAppendOrdering(t *testing.T) {
	s := NewMemoryStore()
	conv := newGroup(t, s, "alice", "bob")

	m1 := send(t, s, conv.ID, "alice", "one")
	m2 := send(t, s, conv.ID, "bob", "two")
	m3 := send(t, s, conv.ID, "alice", "three")

	if !(m1.Seq < m2.Seq && m2.Seq < m3.Seq) {
		t.Fatalf("seq not monotonic: %d %d %d", m1.Seq, m2.Seq, m3.Seq)
	}

	msgs, err := s.List(context.Background(), conv.ID, "bob", storeport.ListMessagesFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}
	for i, want := range []string{"one", "two", "three"} {
		if msgs[i].Content != want {
			t.Errorf("msgs[%d] = %q, want %q", i, msgs[i].Content, want)
		}
	}
}

func TestAppendRequiresMembership(t *testing.T) {
	s := NewMemoryStore()
	conv := newGroup(t, s, "alice", "bob")

	_, err := s.Append(context.Background(), storeport.AppendMessageParams{
		ConversationID: conv.ID,
		SenderID:       "mallory",
		Content:        "hi",
	})
	if !errors.Is(err, messaging.ErrPermissionDenied) {
		t.Errorf("outsider append err = %v, want ErrPermissionDenied", err)
	}

	_, err = s.Append(context.Background(), storeport.AppendMessageParams{
		ConversationID: "nope",
		SenderID:       "alice",
		Content:        "hi",
	})
	if !errors.Is(err, messaging.ErrPermissionDenied) {
		t.Errorf("unknown conversation err = %v, want ErrPermissionDenied", err)
	}
}

func TestAppendTouchesConversation(t *testing.T) {
	s := NewMemoryStore()
	conv := newGroup(t, s, "alice", "bob")
	before := conv.UpdatedAt

	time.Sleep(5 * time.Millisecond)
	send(t, s, conv.ID, "alice", "bump")

	got, err := s.Get(context.Background(), conv.ID, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.UpdatedAt.After(before) {
		t.Errorf("UpdatedAt not advanced: %v -> %v", before, got.UpdatedAt)
	}
}

func TestListRequiresMembership(t *testing.T) {
	s := NewMemoryStore()
	conv := newGroup(t, s, "alice", "bob")
	send(t, s, conv.ID, "alice", "secret")

	_, err := s.List(context.Background(), conv.ID, "mallory", storeport.ListMessagesFilter{})
	if !errors.Is(err, messaging.ErrPermissionDenied) {
		t.Errorf("err = %v, want ErrPermissionDenied", err)
	}
}

func TestMarkRead(t *testing.T) {
	s := NewMemoryStore()
	conv := newGroup(t, s, "alice", "bob")
	send(t, s, conv.ID, "alice", "one")
	send(t, s, conv.ID, "alice", "two")
	send(t, s, conv.ID, "bob", "mine")

	n, err := s.MarkRead(context.Background(), conv.ID, "bob")
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if n != 2 {
		t.Errorf("updated = %d, want 2 (own messages excluded)", n)
	}

	// A second pass finds nothing unread.
	n, err = s.MarkRead(context.Background(), conv.ID, "bob")
	if err != nil {
		t.Fatalf("second mark read: %v", err)
	}
	if n != 0 {
		t.Errorf("second pass updated = %d, want 0", n)
	}

	if _, err := s.MarkRead(context.Background(), conv.ID, "mallory"); !errors.Is(err, messaging.ErrPermissionDenied) {
		t.Errorf("outsider err = %v, want ErrPermissionDenied", err)
	}
}

func TestEditAndDelete(t *testing.T) {
	s := NewMemoryStore()
	conv := newGroup(t, s, "alice", "bob")
	msg := send(t, s, conv.ID, "alice", "draft")

	t.Run("author edits", func(t *testing.T) {
		got, err := s.Edit(context.Background(), msg.ID, "alice", "  final  ")
		if err != nil {
			t.Fatalf("edit: %v", err)
		}
		if got.Content != "final" {
			t.Errorf("content = %q, want trimmed edit", got.Content)
		}
		if got.EditedAt == nil {
			t.Error("EditedAt not set")
		}
	})

	t.Run("non-author rejected", func(t *testing.T) {
		if _, err := s.Edit(context.Background(), msg.ID, "bob", "hijack"); !errors.Is(err, messaging.ErrPermissionDenied) {
			t.Errorf("err = %v, want ErrPermissionDenied", err)
		}
		if _, err := s.SoftDelete(context.Background(), msg.ID, "bob"); !errors.Is(err, messaging.ErrPermissionDenied) {
			t.Errorf("delete err = %v, want ErrPermissionDenied", err)
		}
	})

	t.Run("unknown message", func(t *testing.T) {
		if _, err := s.Edit(context.Background(), "missing", "alice", "x"); !errors.Is(err, messaging.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete leaves tombstone", func(t *testing.T) {
		got, err := s.SoftDelete(context.Background(), msg.ID, "alice")
		if err != nil {
			t.Fatalf("delete: %v", err)
		}
		if got.Content != messaging.Tombstone {
			t.Errorf("content = %q, want tombstone", got.Content)
		}
		if !got.Deleted() {
			t.Error("message not marked deleted")
		}

		msgs, err := s.List(context.Background(), conv.ID, "bob", storeport.ListMessagesFilter{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(msgs) != 1 || msgs[0].Content != messaging.Tombstone {
			t.Errorf("tombstone missing from timeline: %+v", msgs)
		}
	})

	t.Run("deleted message is frozen", func(t *testing.T) {
		if _, err := s.Edit(context.Background(), msg.ID, "alice", "resurrect"); !errors.Is(err, messaging.ErrConflict) {
			t.Errorf("edit after delete err = %v, want ErrConflict", err)
		}
		if _, err := s.SoftDelete(context.Background(), msg.ID, "alice"); !errors.Is(err, messaging.ErrConflict) {
			t.Errorf("double delete err = %v, want ErrConflict", err)
		}
	})
}

func TestParticipantManagement(t *testing.T) {
	s := NewMemoryStore()
	conv := newGroup(t, s, "alice", "bob")
	ctx := context.Background()

	// bob is a plain member and may not manage the roster.
	if err := s.AddParticipant(ctx, conv.ID, "carol", "bob"); !errors.Is(err, messaging.ErrPermissionDenied) {
		t.Errorf("member add err = %v, want ErrPermissionDenied", err)
	}

	if err := s.AddParticipant(ctx, conv.ID, "carol", "alice"); err != nil {
		t.Fatalf("admin add: %v", err)
	}
	if err := s.AddParticipant(ctx, conv.ID, "carol", "alice"); !errors.Is(err, messaging.ErrConflict) {
		t.Errorf("duplicate add err = %v, want ErrConflict", err)
	}

	if err := s.RemoveParticipant(ctx, conv.ID, "carol", "alice"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.RemoveParticipant(ctx, conv.ID, "carol", "alice"); !errors.Is(err, messaging.ErrConflict) {
		t.Errorf("remove absent err = %v, want ErrConflict", err)
	}
}

func TestListForUserPagination(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		conv := newGroup(t, s, "alice", "bob")
		// Space out UpdatedAt so ordering is deterministic.
		send(t, s, conv.ID, "alice", "hello")
		time.Sleep(2 * time.Millisecond)
	}

	first, err := s.ListForUser(ctx, "alice", storeport.ListConversationsFilter{Page: 1, Limit: 3})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	second, err := s.ListForUser(ctx, "alice", storeport.ListConversationsFilter{Page: 2, Limit: 3})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(first) != 3 || len(second) != 2 {
		t.Fatalf("page sizes = %d, %d, want 3, 2", len(first), len(second))
	}
	if !first[0].UpdatedAt.After(first[2].UpdatedAt) {
		t.Error("conversations not sorted by recency")
	}
}

func TestUnreadBacklogs(t *testing.T) {
	s := NewMemoryStore()
	conv := newGroup(t, s, "alice", "bob")
	send(t, s, conv.ID, "alice", "hello bob")

	// Fresh backlog is younger than the cutoff, so a past cutoff skips it.
	old, err := s.UnreadBacklogs(context.Background(), time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("backlogs: %v", err)
	}
	if len(old) != 0 {
		t.Errorf("got %d backlogs for old cutoff, want 0", len(old))
	}

	got, err := s.UnreadBacklogs(context.Background(), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("backlogs: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d backlogs, want 1 (sender never in own backlog)", len(got))
	}
	b := got[0]
	if b.UserID != "bob" || b.ConversationID != conv.ID || b.Unread != 1 {
		t.Errorf("backlog = %+v", b)
	}

	// Reading clears it.
	if _, err := s.MarkRead(context.Background(), conv.ID, "bob"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	got, err = s.UnreadBacklogs(context.Background(), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("backlogs after read: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("backlog survived mark read: %+v", got)
	}
}
