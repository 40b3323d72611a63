package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/drover-ai/drover/pkg/adapters/sandbox"
)

// Registry holds the tools available to one run, keyed by descriptor name.
// It preserves registration order so the tool list sent to the model is
// stable across runs.
type Registry struct {
	byName map[string]Tool
	order  []string
	logger *zap.Logger
}

// NewRegistry builds a registry from the given tools. Nil tools, empty
// names, and duplicate names are construction errors.
func NewRegistry(logger *zap.Logger, tools ...Tool) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		byName: make(map[string]Tool, len(tools)),
		logger: logger,
	}
	for _, t := range tools {
		if t == nil {
			return nil, fmt.Errorf("tool is nil")
		}
		d := t.Describe()
		if d.Name == "" {
			return nil, fmt.Errorf("tool name is empty")
		}
		if _, exists := r.byName[d.Name]; exists {
			return nil, fmt.Errorf("tool %q already registered", d.Name)
		}
		r.byName[d.Name] = t
		r.order = append(r.order, d.Name)
	}
	return r, nil
}

// Resolve returns a tool by name.
func (r *Registry) Resolve(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Descriptors returns the tool descriptors in registration order.
func (r *Registry) Descriptors() []ToolDescriptor {
	out := make([]ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name].Describe())
	}
	return out
}

// Dispatch runs the named tool against the session. It never propagates
// failure to the caller: an unknown tool or a failed invocation returns
// nil, which the loop reports back to the model as an error result so the
// model can adjust course.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any, session sandbox.Session) *Outcome {
	t, ok := r.byName[name]
	if !ok {
		r.logger.Warn("model requested unknown tool", zap.String("tool", name))
		return nil
	}
	out, err := t.Invoke(ctx, args, session)
	if err != nil {
		r.logger.Warn("tool invocation failed",
			zap.String("tool", name),
			zap.Error(err))
		return nil
	}
	return out
}
