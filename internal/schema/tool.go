// Package schema contains the core contracts shared across keytao-bot packages.
// Concrete implementations live in their respective packages; this package is
// the single canonical source of truth for every shared type.
package schema

import (
	"context"
	"encoding/json"
)

// Tool is the interface all LLM-callable tools must satisfy.
// A tool's Parameters schema and its Execute implementation are registered
// as a pair; the schema must describe exactly what Execute expects.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the JSON Schema (as raw JSON bytes) for this tool's parameters.
	Parameters() json.RawMessage
	Execute(ctx context.Context, params map[string]any) (string, error)
}
