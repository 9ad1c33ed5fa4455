// Package bus defines the message types that flow between channels and the agent.
package bus

// Channel identifies a chat platform.
type Channel string

const (
	ChannelTelegram Channel = "telegram"
	ChannelQQ       Channel = "qq"
	ChannelCLI      Channel = "cli"
)

// MessageBus decouples chat channels from the agent core.
//
// Channels push InboundMessages; the agent consumes them, processes, and
// pushes OutboundMessages back for the channel manager to route.
// Both directions use buffered channels so senders never block on a slow
// consumer.
type MessageBus struct {
	Inbound  chan InboundMessage  // channels → agent
	Outbound chan OutboundMessage // agent → channels
}

func NewMessageBus(bufSize int) *MessageBus {
	return &MessageBus{
		Inbound:  make(chan InboundMessage, bufSize),
		Outbound: make(chan OutboundMessage, bufSize),
	}
}

// PublishInbound delivers a channel message to the agent.
func (b *MessageBus) PublishInbound(msg InboundMessage) {
	b.Inbound <- msg
}

// PublishOutbound delivers an agent reply to the channel manager.
func (b *MessageBus) PublishOutbound(msg OutboundMessage) {
	b.Outbound <- msg
}
