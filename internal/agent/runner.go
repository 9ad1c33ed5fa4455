// Package agent runs the LLM tool-calling loop that answers chat messages.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xkinput/keytao-bot/internal/schema"
	"github.com/xkinput/keytao-bot/internal/shared/llmutils"
	"github.com/xkinput/keytao-bot/internal/tools"
)

const (
	defaultMaxIter = 3

	providerErrorReply = "抱歉，AI 服务暂时不可用，请稍后再试。"
	unknownToolReply   = "抱歉，处理过程中出现了内部错误，请稍后再试。"
	iterationCapReply  = "抱歉，这个问题处理起来有点复杂，请换个说法再试一次。"
)

// Settings bounds one loop run.
type Settings struct {
	Model       string
	MaxTokens   int
	Temperature float64
	MaxIter     int
}

// Runner executes the LLM ↔ tool iteration loop for a single message.
type Runner struct {
	provider schema.LLMProvider
	registry *tools.Registry
	settings Settings
	logger   *slog.Logger
}

// NewRunner creates a Runner. A zero or negative MaxIter falls back to the
// default bound.
func NewRunner(provider schema.LLMProvider, registry *tools.Registry, settings Settings, logger *slog.Logger) *Runner {
	if settings.MaxIter <= 0 {
		settings.MaxIter = defaultMaxIter
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{provider: provider, registry: registry, settings: settings, logger: logger}
}

// Run processes one user message through the bounded tool-calling loop and
// returns the reply text. It always returns something presentable; loop
// failures become apologetic replies rather than errors, so callers can send
// the result to the user unconditionally.
func (r *Runner) Run(ctx context.Context, userMessage string) string {
	conversation := schema.NewMessages()
	conversation.AddSystem(systemPrompt)
	conversation.AddUser(userMessage)

	var lastContent string
	for i := 0; i < r.settings.MaxIter; i++ {
		resp, err := r.provider.Chat(ctx,
			conversation,
			r.registry.Definitions(),
			schema.NewChatOptions(r.settings.Model, r.settings.MaxTokens, r.settings.Temperature),
		)
		if err != nil {
			r.logger.Error("LLM call failed", "iteration", i, "error", err)
			return providerErrorReply
		}

		if !resp.HasToolCalls() {
			if resp.Content != nil {
				return *resp.Content
			}
			return iterationCapReply
		}

		if resp.Content != nil {
			lastContent = *resp.Content
		}

		toolCalls := make([]schema.ToolCall, 0, len(resp.ToolCalls))
		for _, tc := range resp.ToolCalls {
			toolCalls = append(toolCalls, schema.ToolCall{ID: tc.Id, Name: tc.Name, Arguments: tc.Arguments})
		}
		conversation.AddAssistant(resp.Content, toolCalls)

		r.logger.Info("tool round", "iteration", i, "calls", llmutils.ToolHint(resp.ToolCalls))

		// Every requested call gets exactly one result turn, correlated by
		// id, in request order. An unknown tool name means the model and the
		// registry disagree about the surface; retrying cannot fix that, so
		// the loop aborts.
		for _, tc := range resp.ToolCalls {
			r.logger.Info("tool call", "tool", tc.Name, "args", describeArgs(tc.Arguments))
			result, err := r.registry.Dispatch(ctx, tc.Name, tc.Arguments)
			if errors.Is(err, tools.ErrUnknownTool) {
				r.logger.Error("model requested unregistered tool", "tool", tc.Name)
				return unknownToolReply
			}
			if err != nil {
				r.logger.Warn("tool execution failed", "tool", tc.Name, "error", err)
				result = fmt.Sprintf("查询失败: %v", err)
			}
			conversation.AddToolResult(tc.Id, tc.Name, result)
		}
	}

	r.logger.Warn("tool iteration cap reached", "maxIter", r.settings.MaxIter)
	if lastContent != "" {
		return lastContent
	}
	return iterationCapReply
}

// describeArgs renders tool arguments for log lines, bounded in size.
func describeArgs(args map[string]any) string {
	raw, _ := json.Marshal(args)
	return llmutils.Truncate(string(raw), 200)
}
