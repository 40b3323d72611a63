package agent

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/drover-ai/drover/pkg/adapters/sandbox"
)

type stubTool struct {
	name    string
	outcome *Outcome
	err     error
	calls   int
}

func (s *stubTool) Describe() ToolDescriptor {
	return ToolDescriptor{Name: s.name, Kind: KindBash, InputSchema: []byte(`{"type":"object"}`)}
}

func (s *stubTool) Invoke(ctx context.Context, args map[string]any, session sandbox.Session) (*Outcome, error) {
	s.calls++
	return s.outcome, s.err
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	a := &stubTool{name: "bash"}
	b := &stubTool{name: "bash"}
	if _, err := NewRegistry(zap.NewNop(), a, b); err == nil {
		t.Fatal("expected duplicate name error")
	}
}

func TestNewRegistryRejectsNilAndUnnamed(t *testing.T) {
	if _, err := NewRegistry(zap.NewNop(), nil); err == nil {
		t.Fatal("expected error for nil tool")
	}
	if _, err := NewRegistry(zap.NewNop(), &stubTool{name: ""}); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestDescriptorsPreserveRegistrationOrder(t *testing.T) {
	r, err := NewRegistry(zap.NewNop(), &stubTool{name: "computer"}, &stubTool{name: "bash"}, &stubTool{name: "str_replace_editor"})
	if err != nil {
		t.Fatal(err)
	}
	got := r.Descriptors()
	want := []string{"computer", "bash", "str_replace_editor"}
	if len(got) != len(want) {
		t.Fatalf("got %d descriptors, want %d", len(got), len(want))
	}
	for i, d := range got {
		if d.Name != want[i] {
			t.Fatalf("descriptor %d = %q, want %q", i, d.Name, want[i])
		}
	}
}

func TestDispatchUnknownToolReturnsNil(t *testing.T) {
	r, err := NewRegistry(zap.NewNop(), &stubTool{name: "bash"})
	if err != nil {
		t.Fatal(err)
	}
	if out := r.Dispatch(context.Background(), "no_such_tool", nil, nil); out != nil {
		t.Fatalf("expected nil outcome for unknown tool, got %+v", out)
	}
}

func TestDispatchInvocationErrorReturnsNil(t *testing.T) {
	tool := &stubTool{name: "bash", err: errors.New("boom")}
	r, err := NewRegistry(zap.NewNop(), tool)
	if err != nil {
		t.Fatal(err)
	}
	if out := r.Dispatch(context.Background(), "bash", nil, nil); out != nil {
		t.Fatalf("expected nil outcome for failed invocation, got %+v", out)
	}
	if tool.calls != 1 {
		t.Fatalf("tool invoked %d times, want 1", tool.calls)
	}
}

func TestDispatchReturnsOutcome(t *testing.T) {
	tool := &stubTool{name: "bash", outcome: &Outcome{Output: "hello"}}
	r, err := NewRegistry(zap.NewNop(), tool)
	if err != nil {
		t.Fatal(err)
	}
	out := r.Dispatch(context.Background(), "bash", map[string]any{"command": "echo hello"}, nil)
	if out == nil || out.Output != "hello" {
		t.Fatalf("got %+v, want output %q", out, "hello")
	}
}
