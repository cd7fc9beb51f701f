package adapter

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/notify/port"
)

// PushDispatcher delivers notifications through the mobile push gateway.
type PushDispatcher struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewPushDispatcherFromEnv reads NOTIFY_PUSH_URL and NOTIFY_PUSH_KEY.
func NewPushDispatcherFromEnv() (*PushDispatcher, error) {
	endpoint := os.Getenv("NOTIFY_PUSH_URL")
	if endpoint == "" {
		return nil, errors.New("notify: NOTIFY_PUSH_URL environment variable is not set")
	}
	return &PushDispatcher{
		endpoint: endpoint,
		apiKey:   os.Getenv("NOTIFY_PUSH_KEY"),
		client:   &http.Client{},
	}, nil
}

var _ port.Dispatcher = (*PushDispatcher)(nil)

func (d *PushDispatcher) Dispatch(ctx context.Context, n port.Notification) error {
	return postNotification(ctx, d.client, d.endpoint, d.apiKey, n)
}
