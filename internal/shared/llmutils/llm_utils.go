// Package llmutils holds small string helpers shared by the agent and channels.
package llmutils

import (
	"fmt"
	"strings"

	"github.com/xkinput/keytao-bot/internal/schema"
)

// Truncate shortens a string to at most n bytes, adding "..." if it was truncated.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// StringOrDefault returns s if it's not empty, or def if s is empty.
func StringOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// ToolHint generates a short hint string for a list of tool calls,
// e.g. `keytao_lookup_by_word("你好")`.
func ToolHint(tcs []schema.ToolCallRequest) string {
	parts := make([]string, 0, len(tcs))
	for _, tc := range tcs {
		var firstVal string
		for _, v := range tc.Arguments {
			if s, ok := v.(string); ok {
				firstVal = s
			}
			break
		}
		if firstVal == "" {
			parts = append(parts, tc.Name)
			continue
		}
		if len(firstVal) > 40 {
			firstVal = firstVal[:40] + "…"
		}
		parts = append(parts, fmt.Sprintf("%s(%q)", tc.Name, firstVal))
	}
	return strings.Join(parts, ", ")
}
