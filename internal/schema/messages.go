package schema

// Messages is the ordered transcript of one conversation with the LLM.
// It owns typed append methods so callers never construct raw maps.
// A Messages value is local to a single tool-calling loop instance and is
// never shared between goroutines or persisted.
type Messages struct {
	Messages []Message
}

// NewMessages returns a Messages initialised with the given messages.
// Called with no arguments it returns an empty transcript ready for use.
func NewMessages(msgs ...Message) Messages {
	if len(msgs) == 0 {
		return Messages{Messages: make([]Message, 0)}
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return Messages{Messages: out}
}

// AddSystem appends a system message.
func (mh *Messages) AddSystem(content string) {
	mh.Messages = append(mh.Messages, NewSystemMessage(content))
}

// AddUser appends a user message.
func (mh *Messages) AddUser(content string) {
	mh.Messages = append(mh.Messages, NewUserMessage(content))
}

// AddAssistant appends an assistant message with optional tool calls.
func (mh *Messages) AddAssistant(content *string, toolCalls []ToolCall) {
	mh.Messages = append(mh.Messages, NewAssistantMessage(content, toolCalls))
}

// AddToolResult appends a tool-result message correlated by call id.
func (mh *Messages) AddToolResult(toolCallID, toolName, result string) {
	mh.Messages = append(mh.Messages, NewToolResultMessage(toolCallID, toolName, result))
}

// Clone returns a copy of mh with an independent backing slice.
func (mh *Messages) Clone() Messages {
	cloned := make([]Message, len(mh.Messages))
	copy(cloned, mh.Messages)
	return Messages{Messages: cloned}
}
