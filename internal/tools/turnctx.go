package tools

import "context"

// TurnContext carries per-turn sender identity through the context tree.
// It is set by the agent loop once per message and read inside Execute by
// tools that act on behalf of the sender (phrase creation, batch submission),
// so the LLM never sees or controls the identity fields.
type TurnContext struct {
	// Platform names the chat surface the message arrived on ("qq",
	// "telegram", "cli").
	Platform string
	// SenderID is the platform-scoped user identifier.
	SenderID string
}

type turnKey struct{}

// WithTurnContext returns a child context that carries tc.
func WithTurnContext(ctx context.Context, tc TurnContext) context.Context {
	return context.WithValue(ctx, turnKey{}, tc)
}

// TurnCtx extracts the TurnContext from ctx.
// Returns a zero-value TurnContext if none was set.
func TurnCtx(ctx context.Context) TurnContext {
	tc, _ := ctx.Value(turnKey{}).(TurnContext)
	return tc
}
