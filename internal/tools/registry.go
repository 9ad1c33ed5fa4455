// Package tools holds the bot's function-calling tools and the registry
// that exposes them to the LLM provider.
package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/xkinput/keytao-bot/internal/schema"
)

// ToolName is the canonical name of a built-in tool.
type ToolName string

const (
	ToolLookupByCode ToolName = "keytao_lookup_by_code"
	ToolLookupByWord ToolName = "keytao_lookup_by_word"
	ToolFetchDocs    ToolName = "keytao_fetch_docs"
	ToolCreatePhrase ToolName = "keytao_create_phrase"
	ToolSubmitBatch  ToolName = "keytao_submit_batch"
)

// ErrUnknownTool is returned by Dispatch for a name no registered tool owns.
var ErrUnknownTool = errors.New("unknown tool")

// Registry holds an immutable, ordered set of named tools.
type Registry struct {
	byName map[string]schema.Tool
	order  []schema.Tool
}

// GetTool returns the tool with the given name, or nil.
func (r *Registry) GetTool(name ToolName) schema.Tool {
	return r.byName[string(name)]
}

// Dispatch executes the named tool with args. An unregistered name yields
// ErrUnknownTool; handler failures come back as the tool's own error.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) (string, error) {
	tool, ok := r.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	result, err := tool.Execute(ctx, args)
	if err != nil {
		return "", fmt.Errorf("tool %q: %w", name, err)
	}
	return result, nil
}

// Definitions renders every tool as an OpenAI function-calling definition,
// in registration order.
func (r *Registry) Definitions() []map[string]any {
	defs := make([]map[string]any, 0, len(r.order))
	for _, t := range r.order {
		defs = append(defs, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name(),
				"description": t.Description(),
				"parameters":  t.Parameters(),
			},
		})
	}
	return defs
}

// Len reports the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}
