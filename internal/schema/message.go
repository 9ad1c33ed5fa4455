package schema

import "encoding/json"

// ToolCall represents one function call in an assistant message.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToWireMap serialises a ToolCall into the OpenAI wire-format map.
// Used by the provider when building the JSON request body.
func (tc ToolCall) ToWireMap() map[string]any {
	argsJSON, _ := json.Marshal(tc.Arguments)
	return map[string]any{
		"id":   tc.ID,
		"type": "function",
		"function": map[string]any{
			"name":      tc.Name,
			"arguments": string(argsJSON),
		},
	}
}

// Message is one entry in the conversation transcript.
//
// Role is one of: "system", "user", "assistant", "tool".
//
// Content holds the message text:
//   - system / user / tool: plain string
//   - assistant: *string (may be nil when only tool calls are present)
//
// ToolCalls is populated for assistant messages that invoke tools.
// ToolCallID and ToolName are set for tool-result messages.
type Message struct {
	Role       string
	Content    any // string | *string
	ToolCalls  []ToolCall
	ToolCallID string // "tool" role only
	ToolName   string // "tool" role only
}

func NewSystemMessage(content string) Message {
	return Message{Role: "system", Content: content}
}

func NewUserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

func NewAssistantMessage(content *string, toolCalls []ToolCall) Message {
	return Message{Role: "assistant", Content: content, ToolCalls: toolCalls}
}

func NewToolResultMessage(toolCallID, toolName, result string) Message {
	return Message{
		Role:       "tool",
		Content:    result,
		ToolCallID: toolCallID,
		ToolName:   toolName,
	}
}

// Text returns the message content as a plain string, dereferencing
// assistant pointers and returning "" for nil content.
func (m Message) Text() string {
	switch c := m.Content.(type) {
	case string:
		return c
	case *string:
		if c != nil {
			return *c
		}
	}
	return ""
}
