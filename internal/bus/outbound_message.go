package bus

// OutboundMessage is a reply to be sent back through a channel.
type OutboundMessage struct {
	channel  Channel
	chatID   string
	content  string
	metadata map[string]any // channel-specific hints (message_id for reply-to, …)
}

func NewOutboundMessage(channel Channel, chatID, content string) OutboundMessage {
	return OutboundMessage{
		channel: channel,
		chatID:  chatID,
		content: content,
	}
}

func (m OutboundMessage) Channel() Channel               { return m.channel }
func (m OutboundMessage) ChatID() string                 { return m.chatID }
func (m OutboundMessage) Content() string                { return m.content }
func (m OutboundMessage) Metadata() map[string]any       { return m.metadata }
func (m *OutboundMessage) SetMetadata(md map[string]any) { m.metadata = md }
