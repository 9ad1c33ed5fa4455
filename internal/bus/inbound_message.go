package bus

import (
	"time"

	"github.com/google/uuid"
)

// InboundMessage is a message received from a chat channel.
// RequestID is generated at construction and threaded through logs so one
// conversation's processing can be correlated across components.
type InboundMessage struct {
	requestID string
	channel   Channel
	senderID  string // user identifier within the channel
	chatID    string // chat / group / DM identifier
	content   string
	timestamp time.Time
	metadata  map[string]any // channel-specific extras (message_id, username, …)
}

// NewInboundMessage creates an InboundMessage with a fresh request id and
// Timestamp set to now. Use SetMetadata to attach optional fields.
func NewInboundMessage(channel Channel, senderID, chatID, content string) InboundMessage {
	return InboundMessage{
		requestID: uuid.NewString(),
		channel:   channel,
		senderID:  senderID,
		chatID:    chatID,
		content:   content,
		timestamp: time.Now(),
	}
}

func (m InboundMessage) RequestID() string              { return m.requestID }
func (m InboundMessage) Channel() Channel               { return m.channel }
func (m InboundMessage) SenderID() string               { return m.senderID }
func (m InboundMessage) ChatID() string                 { return m.chatID }
func (m InboundMessage) Content() string                { return m.content }
func (m InboundMessage) Timestamp() time.Time           { return m.timestamp }
func (m InboundMessage) Metadata() map[string]any       { return m.metadata }
func (m *InboundMessage) SetMetadata(md map[string]any) { m.metadata = md }
