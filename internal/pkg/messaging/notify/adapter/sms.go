package adapter

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/notify/port"
)

// SMSDispatcher delivers notifications through the SMS provider's HTTP API.
type SMSDispatcher struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewSMSDispatcherFromEnv reads NOTIFY_SMS_URL and NOTIFY_SMS_KEY.
func NewSMSDispatcherFromEnv() (*SMSDispatcher, error) {
	endpoint := os.Getenv("NOTIFY_SMS_URL")
	if endpoint == "" {
		return nil, errors.New("notify: NOTIFY_SMS_URL environment variable is not set")
	}
	return &SMSDispatcher{
		endpoint: endpoint,
		apiKey:   os.Getenv("NOTIFY_SMS_KEY"),
		client:   &http.Client{},
	}, nil
}

var _ port.Dispatcher = (*SMSDispatcher)(nil)

func (d *SMSDispatcher) Dispatch(ctx context.Context, n port.Notification) error {
	return postNotification(ctx, d.client, d.endpoint, d.apiKey, n)
}
