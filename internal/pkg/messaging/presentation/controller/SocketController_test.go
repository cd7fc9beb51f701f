package controller

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	qport "github.com/utkogui/voluntariado-sub002/internal/infrastructure/queue/port"
	"github.com/utkogui/voluntariado-sub002/internal/infrastructure/realtime"
	"github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/delivery"
	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	storeadapter "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/adapter"
	storeport "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/store/port"
)

type fakeSession struct {
	id     string
	userID string
	sent   [][]byte
}

func (s *fakeSession) SessionID() string { return s.id }
func (s *fakeSession) UserID() string { return s.userID }
func (s *fakeSession) Send(p []byte) error { s.sent = append(s.sent, p); return nil }
func (s *fakeSession) lastEvent(t *testing.T) map[string]any {
	t.Helper()
	if len(s.sent) == 0 {
		t.Fatal("no frames sent")
	}
	var out map[string]any
	if err := json.Unmarshal(s.sent[len(s.sent)-1], &out); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return out
}

type nopQueue struct{}

func (nopQueue) Enqueue(ctx context.Context, t qport.Task, opts ...qport.EnqueueOption) (string, error) {
	return "id", nil
}
func (nopQueue) Close() error { return nil }

type gatewayFixture struct {
	ctl   *SocketController
	store *storeadapter.MemoryStore
	hub   *realtime.Hub
}

func newGateway(t *testing.T) *gatewayFixture {
	t.Helper()
	store := storeadapter.NewMemoryStore()
	registry := realtime.NewRegistry()
	hub := realtime.NewHub(registry)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	coordinator := delivery.NewCoordinator(registry, store, nopQueue{}, log)
	ctl := NewSocketController(store, store, hub, nil, coordinator, log)
	return &gatewayFixture{ctl: ctl, store: store, hub: hub}
}

func (f *gatewayFixture) connect(t *testing.T, userID, sessionID string) *fakeSession {
	t.Helper()
	sess := &fakeSession{id: sessionID, userID: userID}
	f.hub.Attach(sess)
	return sess
}

func (f *gatewayFixture) group(t *testing.T, creator string, members ...string) string {
	t.Helper()
	conv, err := f.store.Create(context.Background(), storeport.CreateConversationParams{
		CreatorID:      creator,
		ParticipantIDs: append([]string{creator}, members...),
		Type:           messaging.ConversationTypeGroup,
	})
	if err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	return conv.ID
}

func TestJoinConversation(t *testing.T) {
	f := newGateway(t)
	convID := f.group(t, "alice", "bob")
	alice := f.connect(t, "alice", "s1")
	bob := f.connect(t, "bob", "s2")
	f.ctl.handleEvent(bob, inboundEvent{Event: "join_conversation", ConversationID: convID})
	bob.sent = nil

	f.ctl.handleEvent(alice, inboundEvent{Event: "join_conversation", ConversationID: convID})

	if !f.hub.InRoom(convID, "alice") {
		t.Fatal("alice not joined")
	}
	if got := alice.lastEvent(t)["event"]; got != "joined" {
		t.Errorf("ack = %v, want joined", got)
	}
	ev := bob.lastEvent(t)
	if ev["event"] != "user_joined" || ev["user_id"] != "alice" {
		t.Errorf("bob saw %v, want user_joined from alice", ev)
	}
}

func TestJoinRejectsNonParticipant(t *testing.T) {
	f := newGateway(t)
	convID := f.group(t, "alice", "bob")
	mallory := f.connect(t, "mallory", "s1")

	f.ctl.handleEvent(mallory, inboundEvent{Event: "join_conversation", ConversationID: convID})

	if f.hub.InRoom(convID, "mallory") {
		t.Fatal("non-participant joined the room")
	}
	ev := mallory.lastEvent(t)
	if ev["code"] != "not_found" {
		t.Errorf("code = %v, want not_found", ev["code"])
	}
}

func TestSendMessagePersistsThenBroadcasts(t *testing.T) {
	f := newGateway(t)
	convID := f.group(t, "alice", "bob")
	alice := f.connect(t, "alice", "s1")
	bob := f.connect(t, "bob", "s2")
	f.ctl.handleEvent(alice, inboundEvent{Event: "join_conversation", ConversationID: convID})
	f.ctl.handleEvent(bob, inboundEvent{Event: "join_conversation", ConversationID: convID})
	alice.sent, bob.sent = nil, nil

	f.ctl.handleEvent(alice, inboundEvent{Event: "send_message", ConversationID: convID, Content: "hello"})

	msgs, err := f.store.List(context.Background(), convID, "bob", storeport.ListMessagesFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "hello" {
		t.Fatalf("message not persisted: %+v", msgs)
	}

	for name, sess := range map[string]*fakeSession{"sender": alice, "peer": bob} {
		ev := sess.lastEvent(t)
		if ev["event"] != "new_message" {
			t.Errorf("%s saw %v, want new_message", name, ev["event"])
		}
	}
	body := bob.lastEvent(t)["message"].(map[string]any)
	if body["content"] != "hello" || body["sender_id"] != "alice" {
		t.Errorf("broadcast body = %v", body)
	}
}

func TestSendMessageDeniedForOutsider(t *testing.T) {
	f := newGateway(t)
	convID := f.group(t, "alice", "bob")
	mallory := f.connect(t, "mallory", "s1")

	f.ctl.handleEvent(mallory, inboundEvent{Event: "send_message", ConversationID: convID, Content: "spam"})

	ev := mallory.lastEvent(t)
	if ev["event"] != "message_error" || ev["code"] != "permission_denied" {
		t.Errorf("frame = %v, want message_error/permission_denied", ev)
	}
	msgs, _ := f.store.List(context.Background(), convID, "alice", storeport.ListMessagesFilter{})
	if len(msgs) != 0 {
		t.Error("rejected message was persisted")
	}
}

func TestSendMessageValidation(t *testing.T) {
	f := newGateway(t)
	convID := f.group(t, "alice", "bob")
	alice := f.connect(t, "alice", "s1")

	f.ctl.handleEvent(alice, inboundEvent{Event: "send_message", ConversationID: convID, Content: "   "})

	ev := alice.lastEvent(t)
	if ev["event"] != "message_error" || ev["code"] != "validation_error" {
		t.Errorf("frame = %v, want message_error/validation_error", ev)
	}
}

func TestTypingFanOut(t *testing.T) {
	f := newGateway(t)
	convID := f.group(t, "alice", "bob")
	alice := f.connect(t, "alice", "s1")
	bob := f.connect(t, "bob", "s2")
	f.ctl.handleEvent(alice, inboundEvent{Event: "join_conversation", ConversationID: convID})
	f.ctl.handleEvent(bob, inboundEvent{Event: "join_conversation", ConversationID: convID})
	alice.sent, bob.sent = nil, nil

	f.ctl.handleEvent(alice, inboundEvent{Event: "typing_start", ConversationID: convID})

	if len(alice.sent) != 0 {
		t.Error("typing echoed back to the typist")
	}
	ev := bob.lastEvent(t)
	if ev["event"] != "user_typing" || ev["is_typing"] != true {
		t.Errorf("frame = %v", ev)
	}

	bob.sent = nil
	f.ctl.handleEvent(alice, inboundEvent{Event: "typing_stop", ConversationID: convID})
	if ev := bob.lastEvent(t); ev["is_typing"] != false {
		t.Errorf("typing_stop frame = %v", ev)
	}
}

func TestTypingIgnoredOutsideRoom(t *testing.T) {
	f := newGateway(t)
	convID := f.group(t, "alice", "bob")
	bob := f.connect(t, "bob", "s1")
	f.ctl.handleEvent(bob, inboundEvent{Event: "join_conversation", ConversationID: convID})
	bob.sent = nil

	// alice never joined the room, so her typing produces nothing.
	alice := f.connect(t, "alice", "s2")
	f.ctl.handleEvent(alice, inboundEvent{Event: "typing_start", ConversationID: convID})
	if len(bob.sent) != 0 {
		t.Error("typing from outside the room was fanned out")
	}
}

func TestMessageRead(t *testing.T) {
	f := newGateway(t)
	convID := f.group(t, "alice", "bob")
	alice := f.connect(t, "alice", "s1")
	bob := f.connect(t, "bob", "s2")
	f.ctl.handleEvent(alice, inboundEvent{Event: "join_conversation", ConversationID: convID})
	f.ctl.handleEvent(bob, inboundEvent{Event: "join_conversation", ConversationID: convID})
	f.ctl.handleEvent(alice, inboundEvent{Event: "send_message", ConversationID: convID, Content: "unread"})
	alice.sent = nil

	f.ctl.handleEvent(bob, inboundEvent{Event: "message_read", ConversationID: convID})

	ev := alice.lastEvent(t)
	if ev["event"] != "messages_read" || ev["user_id"] != "bob" {
		t.Errorf("frame = %v", ev)
	}
}

func TestEditMessage(t *testing.T) {
	f := newGateway(t)
	convID := f.group(t, "alice", "bob")
	alice := f.connect(t, "alice", "s1")
	bob := f.connect(t, "bob", "s2")
	f.ctl.handleEvent(alice, inboundEvent{Event: "join_conversation", ConversationID: convID})
	f.ctl.handleEvent(bob, inboundEvent{Event: "join_conversation", ConversationID: convID})
	f.ctl.handleEvent(alice, inboundEvent{Event: "send_message", ConversationID: convID, Content: "draft"})

	msgs, _ := f.store.List(context.Background(), convID, "alice", storeport.ListMessagesFilter{})
	msgID := msgs[0].ID
	bob.sent = nil

	f.ctl.handleEvent(alice, inboundEvent{Event: "message_edit", MessageID: msgID, Content: "final"})

	ev := bob.lastEvent(t)
	if ev["event"] != "message_edited" {
		t.Fatalf("frame = %v", ev)
	}
	body := ev["message"].(map[string]any)
	if body["content"] != "final" {
		t.Errorf("edited content = %v", body["content"])
	}

	// Non-author gets a typed edit_error.
	bob.sent = nil
	f.ctl.handleEvent(bob, inboundEvent{Event: "message_edit", MessageID: msgID, Content: "hijack"})
	if ev := bob.lastEvent(t); ev["event"] != "edit_error" || ev["code"] != "permission_denied" {
		t.Errorf("frame = %v, want edit_error/permission_denied", ev)
	}
}

func TestDeleteMessage(t *testing.T) {
	f := newGateway(t)
	convID := f.group(t, "alice", "bob")
	alice := f.connect(t, "alice", "s1")
	bob := f.connect(t, "bob", "s2")
	f.ctl.handleEvent(alice, inboundEvent{Event: "join_conversation", ConversationID: convID})
	f.ctl.handleEvent(bob, inboundEvent{Event: "join_conversation", ConversationID: convID})
	f.ctl.handleEvent(alice, inboundEvent{Event: "send_message", ConversationID: convID, Content: "oops"})

	msgs, _ := f.store.List(context.Background(), convID, "alice", storeport.ListMessagesFilter{})
	msgID := msgs[0].ID
	bob.sent = nil

	f.ctl.handleEvent(alice, inboundEvent{Event: "message_delete", MessageID: msgID})

	ev := bob.lastEvent(t)
	if ev["event"] != "message_deleted" || ev["message_id"] != msgID {
		t.Fatalf("frame = %v", ev)
	}

	// Double delete conflicts.
	alice.sent = nil
	f.ctl.handleEvent(alice, inboundEvent{Event: "message_delete", MessageID: msgID})
	if ev := alice.lastEvent(t); ev["event"] != "delete_error" || ev["code"] != "conflict" {
		t.Errorf("frame = %v, want delete_error/conflict", ev)
	}
}

func TestUnknownEvent(t *testing.T) {
	f := newGateway(t)
	alice := f.connect(t, "alice", "s1")

	f.ctl.handleEvent(alice, inboundEvent{Event: "bogus"})

	ev := alice.lastEvent(t)
	if ev["code"] != "validation_error" {
		t.Errorf("frame = %v, want validation_error", ev)
	}
}
