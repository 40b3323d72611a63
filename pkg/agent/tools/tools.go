// Package tools provides the built-in tool set backed by a sandbox session:
// computer (pointer/keyboard/screenshot), bash, and str_replace_editor.
// Each tool translates the model's raw arguments into one surface call and
// folds the remote outcome into the shape the agent loop reports back.
package tools

import (
	"fmt"

	"github.com/drover-ai/drover/pkg/adapters/sandbox"
	"github.com/drover-ai/drover/pkg/agent"
)

// Defaults returns the standard tool set in its canonical order.
func Defaults() []agent.Tool {
	return []agent.Tool{Computer{}, Bash{}, Editor{}}
}

func fromSurface(res sandbox.SurfaceResult) *agent.Outcome {
	return &agent.Outcome{
		Output:      res.Output,
		Error:       res.Error,
		Base64Image: res.Base64Image,
		System:      res.System,
		IsError:     res.Error != "",
	}
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func boolArg(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

// intSliceArg reads a JSON array of numbers. Decoded JSON carries numbers
// as float64; integer values coming from test fixtures are accepted too.
func intSliceArg(args map[string]any, key string) ([]int, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected array, got %T", key, raw)
	}
	out := make([]int, 0, len(list))
	for i, e := range list {
		switch n := e.(type) {
		case float64:
			out = append(out, int(n))
		case int:
			out = append(out, n)
		default:
			return nil, fmt.Errorf("%s[%d]: expected number, got %T", key, i, e)
		}
	}
	return out, nil
}

func intPtrArg(args map[string]any, key string) (*int, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch n := raw.(type) {
	case float64:
		v := int(n)
		return &v, nil
	case int:
		v := n
		return &v, nil
	default:
		return nil, fmt.Errorf("%s: expected number, got %T", key, raw)
	}
}
