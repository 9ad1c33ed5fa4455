package schema

import (
	"context"

	"github.com/xkinput/keytao-bot/internal/bus"
)

// Channel is a chat-platform adapter. Start blocks until ctx is cancelled;
// Send delivers one outbound reply to the platform.
type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Send(ctx context.Context, msg bus.OutboundMessage) error
}
