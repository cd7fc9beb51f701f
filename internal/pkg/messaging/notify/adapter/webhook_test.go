package adapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	"github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/notify/port"
)

func TestPostNotification(t *testing.T) {
	var gotKey string
	var gotBody notifyPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("api-key")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	err := postNotification(context.Background(), srv.Client(), srv.URL, "secret-key", port.Notification{
		Kind:           port.KindMessage,
		RecipientID:    "bob",
		SenderID:       "alice",
		ConversationID: "conv-1",
		MessageID:      "msg-1",
		Excerpt:        "hello",
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if gotKey != "secret-key" {
		t.Errorf("api-key = %q", gotKey)
	}
	if gotBody.RecipientID != "bob" || gotBody.Excerpt != "hello" || gotBody.Kind != "message" {
		t.Errorf("body = %+v", gotBody)
	}
}

func TestPostNotificationProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := postNotification(context.Background(), srv.Client(), srv.URL, "", port.Notification{
		Kind:           port.KindDigest,
		RecipientID:    "bob",
		ConversationID: "conv-1",
		Unread:         4,
	})
	if err == nil {
		t.Fatal("expected error on 502 response")
	}
}

type recordingDispatcher struct {
	calls int
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, n port.Notification) error {
	d.calls++
	return nil
}

func TestMuxRouting(t *testing.T) {
	email := &recordingDispatcher{}
	push := &recordingDispatcher{}
	mux, err := NewMux(map[messaging.NotifyChannel]port.Dispatcher{
		messaging.NotifyChannelEmail: email,
		messaging.NotifyChannelPush:  push,
	})
	if err != nil {
		t.Fatalf("mux: %v", err)
	}

	ctx := context.Background()
	if err := mux.Dispatch(ctx, port.Notification{Channel: messaging.NotifyChannelPush}); err != nil {
		t.Fatal(err)
	}
	if push.calls != 1 {
		t.Error("push dispatcher not used for push channel")
	}

	// Unconfigured channel falls back to email.
	if err := mux.Dispatch(ctx, port.Notification{Channel: messaging.NotifyChannelSMS}); err != nil {
		t.Fatal(err)
	}
	if email.calls != 1 {
		t.Error("sms channel did not fall back to email")
	}
}

func TestMuxRequiresEmail(t *testing.T) {
	if _, err := NewMux(map[messaging.NotifyChannel]port.Dispatcher{}); err == nil {
		t.Fatal("mux accepted configuration without email channel")
	}
}
