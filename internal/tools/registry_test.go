package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

type stubTool struct {
	name   string
	result string
	err    error
}

func (t *stubTool) Name() string        { return t.name }
func (t *stubTool) Description() string { return "stub: " + t.name }
func (t *stubTool) Parameters() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}
func (t *stubTool) Execute(context.Context, map[string]any) (string, error) {
	return t.result, t.err
}

func TestBuild_DuplicateNameFails(t *testing.T) {
	_, err := NewRegistryBuilder().
		WithTool(&stubTool{name: "a"}).
		WithTool(&stubTool{name: "b"}).
		WithTool(&stubTool{name: "a"}).
		Build()
	if !errors.Is(err, ErrDuplicateTool) {
		t.Fatalf("expected ErrDuplicateTool, got %v", err)
	}
}

func TestDispatch(t *testing.T) {
	reg, err := NewRegistryBuilder().
		WithTool(&stubTool{name: "ok", result: "done"}).
		WithTool(&stubTool{name: "bad", err: fmt.Errorf("handler broke")}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	got, err := reg.Dispatch(context.Background(), "ok", nil)
	if err != nil || got != "done" {
		t.Errorf("Dispatch(ok) = %q, %v", got, err)
	}

	if _, err := reg.Dispatch(context.Background(), "bad", nil); err == nil {
		t.Error("expected handler error to propagate")
	}

	_, err = reg.Dispatch(context.Background(), "missing", nil)
	if !errors.Is(err, ErrUnknownTool) {
		t.Errorf("expected ErrUnknownTool, got %v", err)
	}
}

func TestDefinitions_RegistrationOrder(t *testing.T) {
	reg, err := NewRegistryBuilder().
		WithTool(&stubTool{name: "zeta"}).
		WithTool(&stubTool{name: "alpha"}).
		WithTool(&stubTool{name: "mid"}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	defs := reg.Definitions()
	if len(defs) != 3 {
		t.Fatalf("expected 3 definitions, got %d", len(defs))
	}
	want := []string{"zeta", "alpha", "mid"}
	for i, def := range defs {
		fn, _ := def["function"].(map[string]any)
		if fn["name"] != want[i] {
			t.Errorf("definition %d: got name %v, want %s", i, fn["name"], want[i])
		}
		if def["type"] != "function" {
			t.Errorf("definition %d: type = %v", i, def["type"])
		}
	}
}

func TestTurnContextRoundTrip(t *testing.T) {
	ctx := WithTurnContext(context.Background(), TurnContext{Platform: "qq", SenderID: "42"})
	tc := TurnCtx(ctx)
	if tc.Platform != "qq" || tc.SenderID != "42" {
		t.Errorf("unexpected turn context: %+v", tc)
	}
	if zero := TurnCtx(context.Background()); zero.Platform != "" || zero.SenderID != "" {
		t.Errorf("expected zero value without context, got %+v", zero)
	}
}
