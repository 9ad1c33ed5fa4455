package tools

import (
	"errors"
	"fmt"

	"github.com/xkinput/keytao-bot/internal/schema"
)

// ErrDuplicateTool is returned by Build when two tools share a name.
var ErrDuplicateTool = errors.New("duplicate tool name")

// RegistryBuilder accumulates tools during the construction phase.
// Call Build() to produce an immutable Registry ready for use.
type RegistryBuilder struct {
	tools []schema.Tool
}

// NewRegistryBuilder returns a fresh RegistryBuilder.
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{}
}

// WithTool adds a tool and returns the builder, enabling chaining.
// Duplicates are caught at Build time.
func (b *RegistryBuilder) WithTool(tool schema.Tool) *RegistryBuilder {
	b.tools = append(b.tools, tool)

	return b
}

// Build produces an immutable Registry from the accumulated tools.
// Two tools sharing a name is a configuration bug and fails the build.
func (b *RegistryBuilder) Build() (*Registry, error) {
	byName := make(map[string]schema.Tool, len(b.tools))
	order := make([]schema.Tool, 0, len(b.tools))
	for _, t := range b.tools {
		if _, exists := byName[t.Name()]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTool, t.Name())
		}
		byName[t.Name()] = t
		order = append(order, t)
	}
	return &Registry{byName: byName, order: order}, nil
}
