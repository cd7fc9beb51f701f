package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/notify/port"
)

const dispatchTimeout = 10 * time.Second

// notifyPayload is the JSON body sent to every provider endpoint. The
// provider resolves the recipient's address or device from the user id.
type notifyPayload struct {
	Kind           string `json:"kind"`
	RecipientID    string `json:"recipient_id"`
	SenderID       string `json:"sender_id,omitempty"`
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id,omitempty"`
	Excerpt        string `json:"excerpt,omitempty"`
	Unread         int    `json:"unread,omitempty"`
}

func postNotification(ctx context.Context, client *http.Client, endpoint, apiKey string, n port.Notification) error {
	body, err := json.Marshal(notifyPayload{
		Kind:           string(n.Kind),
		RecipientID:    n.RecipientID,
		SenderID:       n.SenderID,
		ConversationID: n.ConversationID,
		MessageID:      n.MessageID,
		Excerpt:        n.Excerpt,
		Unread:         n.Unread,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("api-key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify: provider returned status %d", resp.StatusCode)
	}
	return nil
}
