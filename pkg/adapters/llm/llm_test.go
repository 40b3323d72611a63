package llm

import (
	"context"
	"testing"
)

type nopClient struct{}

func (nopClient) Name() string { return "nop" }
func (nopClient) Complete(ctx context.Context, req Request) (Response, error) {
	return Response{}, nil
}

func TestRegisterResolveNew(t *testing.T) {
	factory := func(ctx context.Context, cfg map[string]any) (Client, error) {
		return nopClient{}, nil
	}
	if err := Register("test-provider", factory); err != nil {
		t.Fatal(err)
	}
	if _, ok := Resolve("test-provider"); !ok {
		t.Fatal("factory not resolvable")
	}
	c, err := New(context.Background(), "test-provider", nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.Name() != "nop" {
		t.Fatalf("name = %q", c.Name())
	}
}

func TestRegisterRejectsDuplicatesAndNil(t *testing.T) {
	factory := func(ctx context.Context, cfg map[string]any) (Client, error) {
		return nopClient{}, nil
	}
	if err := Register("dup-provider", factory); err != nil {
		t.Fatal(err)
	}
	if err := Register("dup-provider", factory); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := Register("", factory); err == nil {
		t.Fatal("expected empty name error")
	}
	if err := Register("nil-provider", nil); err == nil {
		t.Fatal("expected nil factory error")
	}
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(context.Background(), "no-such-provider", nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestErrorResultBlockShape(t *testing.T) {
	b := ErrorResultBlock("tu_9", "it broke")
	if b.Type != BlockToolResult || !b.IsError || b.ErrorText != "it broke" || b.ToolUseID != "tu_9" {
		t.Fatalf("block = %+v", b)
	}
	if len(b.Content) != 0 {
		t.Fatalf("error result should carry no parts, got %+v", b.Content)
	}
}
