package agent

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/xkinput/keytao-bot/internal/schema"
	"github.com/xkinput/keytao-bot/internal/tools"
)

// scriptedProvider replays a fixed sequence of responses and records every
// transcript it was called with.
type scriptedProvider struct {
	responses []schema.LLMResponse
	calls     []schema.Messages
	err       error
}

func (p *scriptedProvider) Chat(_ context.Context, msgs schema.Messages, _ []map[string]any, _ schema.ChatOptions) (schema.LLMResponse, error) {
	p.calls = append(p.calls, msgs.Clone())
	if p.err != nil {
		return schema.LLMResponse{}, p.err
	}
	idx := len(p.calls) - 1
	if idx >= len(p.responses) {
		idx = len(p.responses) - 1
	}
	return p.responses[idx], nil
}

func (p *scriptedProvider) DefaultModel() string { return "test-model" }

type echoTool struct{ name string }

func (t *echoTool) Name() string        { return t.name }
func (t *echoTool) Description() string { return t.name }
func (t *echoTool) Parameters() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}
func (t *echoTool) Execute(_ context.Context, args map[string]any) (string, error) {
	v, _ := args["q"].(string)
	return "result:" + v, nil
}

func strPtr(s string) *string { return &s }

func buildRegistry(t *testing.T, ts ...schema.Tool) *tools.Registry {
	t.Helper()
	b := tools.NewRegistryBuilder()
	for _, tool := range ts {
		b.WithTool(tool)
	}
	reg, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return reg
}

func newTestRunner(t *testing.T, p schema.LLMProvider, reg *tools.Registry) *Runner {
	t.Helper()
	return NewRunner(p, reg, Settings{Model: "test-model", MaxTokens: 100, MaxIter: 3}, nil)
}

func TestRun_DirectAnswer(t *testing.T) {
	p := &scriptedProvider{responses: []schema.LLMResponse{
		{Content: strPtr("你好！"), FinishReason: "stop"},
	}}
	r := newTestRunner(t, p, buildRegistry(t))

	if got := r.Run(context.Background(), "hi"); got != "你好！" {
		t.Errorf("got %q", got)
	}
	if len(p.calls) != 1 {
		t.Errorf("expected 1 LLM call, got %d", len(p.calls))
	}
	// First transcript carries exactly system + user.
	msgs := p.calls[0].Messages
	if len(msgs) != 2 || msgs[0].Role != "system" || msgs[1].Role != "user" {
		t.Errorf("unexpected initial transcript: %+v", msgs)
	}
}

func TestRun_ToolRoundTrip(t *testing.T) {
	p := &scriptedProvider{responses: []schema.LLMResponse{
		{ToolCalls: []schema.ToolCallRequest{
			{Id: "c1", Name: "lookup", Arguments: map[string]any{"q": "你好"}},
			{Id: "c2", Name: "lookup", Arguments: map[string]any{"q": "世界"}},
		}},
		{Content: strPtr("最终回答"), FinishReason: "stop"},
	}}
	r := newTestRunner(t, p, buildRegistry(t, &echoTool{name: "lookup"}))

	if got := r.Run(context.Background(), "查一下"); got != "最终回答" {
		t.Errorf("got %q", got)
	}
	if len(p.calls) != 2 {
		t.Fatalf("expected 2 LLM calls, got %d", len(p.calls))
	}

	// Second transcript: system, user, assistant(tool calls), then one
	// result turn per call in request order.
	msgs := p.calls[1].Messages
	if len(msgs) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(msgs))
	}
	if msgs[2].Role != "assistant" || len(msgs[2].ToolCalls) != 2 {
		t.Errorf("unexpected assistant turn: %+v", msgs[2])
	}
	if msgs[3].Role != "tool" || msgs[3].ToolCallID != "c1" || msgs[3].Text() != "result:你好" {
		t.Errorf("unexpected first tool result: %+v", msgs[3])
	}
	if msgs[4].Role != "tool" || msgs[4].ToolCallID != "c2" || msgs[4].Text() != "result:世界" {
		t.Errorf("unexpected second tool result: %+v", msgs[4])
	}
}

func TestRun_HandlerErrorContinuesLoop(t *testing.T) {
	failing := &failingTool{name: "broken"}
	p := &scriptedProvider{responses: []schema.LLMResponse{
		{ToolCalls: []schema.ToolCallRequest{{Id: "c1", Name: "broken", Arguments: map[string]any{}}}},
		{Content: strPtr("查询失败了，请访问官网"), FinishReason: "stop"},
	}}
	r := newTestRunner(t, p, buildRegistry(t, failing))

	got := r.Run(context.Background(), "查询")
	if got != "查询失败了，请访问官网" {
		t.Errorf("got %q", got)
	}
	// The failure text went back to the model as a tool result.
	msgs := p.calls[1].Messages
	last := msgs[len(msgs)-1]
	if last.Role != "tool" || !strings.Contains(last.Text(), "查询失败") {
		t.Errorf("expected failure text as tool result, got %+v", last)
	}
}

func TestRun_UnknownToolAborts(t *testing.T) {
	p := &scriptedProvider{responses: []schema.LLMResponse{
		{ToolCalls: []schema.ToolCallRequest{{Id: "c1", Name: "no_such_tool", Arguments: map[string]any{}}}},
		{Content: strPtr("should never be reached")},
	}}
	r := newTestRunner(t, p, buildRegistry(t))

	got := r.Run(context.Background(), "查询")
	if got != unknownToolReply {
		t.Errorf("got %q", got)
	}
	if len(p.calls) != 1 {
		t.Errorf("loop must abort after unknown tool, got %d LLM calls", len(p.calls))
	}
}

func TestRun_IterationCap(t *testing.T) {
	alwaysTools := schema.LLMResponse{
		ToolCalls: []schema.ToolCallRequest{{Id: "c", Name: "lookup", Arguments: map[string]any{"q": "x"}}},
	}
	p := &scriptedProvider{responses: []schema.LLMResponse{alwaysTools}}
	r := newTestRunner(t, p, buildRegistry(t, &echoTool{name: "lookup"}))

	got := r.Run(context.Background(), "查询")
	if got != iterationCapReply {
		t.Errorf("got %q", got)
	}
	if len(p.calls) != 3 {
		t.Errorf("expected exactly 3 LLM calls, got %d", len(p.calls))
	}
}

func TestRun_IterationCapKeepsPartialContent(t *testing.T) {
	withContent := schema.LLMResponse{
		Content:   strPtr("我先查一下…"),
		ToolCalls: []schema.ToolCallRequest{{Id: "c", Name: "lookup", Arguments: map[string]any{"q": "x"}}},
	}
	p := &scriptedProvider{responses: []schema.LLMResponse{withContent}}
	r := newTestRunner(t, p, buildRegistry(t, &echoTool{name: "lookup"}))

	if got := r.Run(context.Background(), "查询"); got != "我先查一下…" {
		t.Errorf("got %q", got)
	}
}

func TestRun_ProviderError(t *testing.T) {
	p := &scriptedProvider{err: context.DeadlineExceeded}
	r := newTestRunner(t, p, buildRegistry(t))

	if got := r.Run(context.Background(), "hi"); got != providerErrorReply {
		t.Errorf("got %q", got)
	}
}

type failingTool struct{ name string }

func (t *failingTool) Name() string        { return t.name }
func (t *failingTool) Description() string { return t.name }
func (t *failingTool) Parameters() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}
func (t *failingTool) Execute(context.Context, map[string]any) (string, error) {
	return "", context.DeadlineExceeded
}
