package adapter

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/notify/port"
)

// EmailDispatcher delivers notifications through the transactional email
// provider's HTTP API.
type EmailDispatcher struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewEmailDispatcherFromEnv reads NOTIFY_EMAIL_URL and NOTIFY_EMAIL_KEY.
func NewEmailDispatcherFromEnv() (*EmailDispatcher, error) {
	endpoint := os.Getenv("NOTIFY_EMAIL_URL")
	if endpoint == "" {
		return nil, errors.New("notify: NOTIFY_EMAIL_URL environment variable is not set")
	}
	return &EmailDispatcher{
		endpoint: endpoint,
		apiKey:   os.Getenv("NOTIFY_EMAIL_KEY"),
		client:   &http.Client{},
	}, nil
}

var _ port.Dispatcher = (*EmailDispatcher)(nil)

func (d *EmailDispatcher) Dispatch(ctx context.Context, n port.Notification) error {
	return postNotification(ctx, d.client, d.endpoint, d.apiKey, n)
}
