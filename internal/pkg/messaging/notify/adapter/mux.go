package adapter

import (
	"context"
	"fmt"

	messaging "github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/domain"
	"github.com/utkogui/voluntariado-sub002/internal/pkg/messaging/notify/port"
)

// Mux routes each notification to the dispatcher for its channel, falling
// back to email when the preferred channel has no configured dispatcher.
type Mux struct {
	channels map[messaging.NotifyChannel]port.Dispatcher
}

// NewMux builds a channel mux. At least the email channel must be present.
func NewMux(channels map[messaging.NotifyChannel]port.Dispatcher) (*Mux, error) {
	if channels[messaging.NotifyChannelEmail] == nil {
		return nil, fmt.Errorf("notify: email dispatcher is required")
	}
	return &Mux{channels: channels}, nil
}

var _ port.Dispatcher = (*Mux)(nil)

func (m *Mux) Dispatch(ctx context.Context, n port.Notification) error {
	d := m.channels[n.Channel]
	if d == nil {
		d = m.channels[messaging.NotifyChannelEmail]
	}
	return d.Dispatch(ctx, n)
}
