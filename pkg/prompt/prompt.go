// Package prompt renders the system prompts for the two run modes and
// derives extraction tasks from Go types. Rendering is deterministic:
// identical inputs produce identical bytes.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"text/template"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
)

const timeLayout = "2006-01-02 15:04:05"

const launchTemplate = `You are operating a virtual Ubuntu computer with internet access through a set of tools: a screen with mouse and keyboard, a bash shell, and a file editor.

<GUIDELINES>
* Take a screenshot before your first interaction to see the current state of the screen.
* Chain independent actions where possible, but verify outcomes of consequential steps with a screenshot.
* When a page has not finished loading, wait and take another screenshot rather than clicking blindly.
* Prefer keyboard navigation and the shell when they are more reliable than clicking.
* The current time is {{ .TimeNow }}.
</GUIDELINES>

Complete the user's task, then reply with a concise report of what was done and any result the task asked for.`

const extractTemplate = `You are operating a virtual Ubuntu computer with internet access through a set of tools: a screen with mouse and keyboard, a bash shell, and a file editor. Your job is to retrieve information and report it as JSON.

<GUIDELINES>
* Take a screenshot before your first interaction to see the current state of the screen.
* When a page has not finished loading, wait and take another screenshot rather than clicking blindly.
* The current time is {{ .TimeNow }}.
</GUIDELINES>

<OUTPUT>
Your final reply must be a single JSON object conforming to this JSON Schema, with no surrounding prose or code fences:

{{ .JSONSchema }}
</OUTPUT>`

var (
	launchTmpl  = template.Must(template.New("launch").Parse(launchTemplate))
	extractTmpl = template.Must(template.New("extract").Parse(extractTemplate))
)

// Launch renders the system prompt for open-ended runs.
func Launch(now time.Time) string {
	var buf bytes.Buffer
	if err := launchTmpl.Execute(&buf, map[string]string{
		"TimeNow": now.Format(timeLayout),
	}); err != nil {
		// static template over a string map; cannot fail
		panic(err)
	}
	return buf.String()
}

// Extract renders the system prompt for extraction runs. The schema is
// compacted so rendering is byte-stable regardless of input formatting.
func Extract(now time.Time, schema []byte) (string, error) {
	compact := &bytes.Buffer{}
	if err := json.Compact(compact, schema); err != nil {
		return "", fmt.Errorf("prompt: invalid schema: %w", err)
	}
	var buf bytes.Buffer
	if err := extractTmpl.Execute(&buf, map[string]string{
		"TimeNow":    now.Format(timeLayout),
		"JSONSchema": compact.String(),
	}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// TaskDescriber lets a query type carry its own task instruction.
type TaskDescriber interface {
	TaskDescription() string
}

// DefaultTask is used when neither an override nor a TaskDescription is
// given: the agent observes without acting.
const DefaultTask = "Fill out the requested fields by observing the current state of the computer. Do not navigate away or change anything; only report what you can see."

// DeriveTask derives the JSON Schema and the user instruction for an
// extraction run from a query value. The instruction is resolved in order:
// explicit override, the query's TaskDescription, a fixed observe-only
// fallback. The query must be a struct or pointer to struct.
func DeriveTask(query any, override string) (schema []byte, command string, err error) {
	if query == nil {
		return nil, "", fmt.Errorf("prompt: nil query")
	}
	t := reflect.TypeOf(query)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, "", fmt.Errorf("prompt: query must be a struct, got %s", t.Kind())
	}
	s, err := jsonschema.ForType(t, &jsonschema.ForOptions{IgnoreInvalidTypes: true})
	if err != nil {
		return nil, "", fmt.Errorf("prompt: derive schema: %w", err)
	}
	schema, err = json.Marshal(s)
	if err != nil {
		return nil, "", fmt.Errorf("prompt: encode schema: %w", err)
	}

	command = override
	if command == "" {
		if d, ok := query.(TaskDescriber); ok {
			command = d.TaskDescription()
		}
	}
	if command == "" {
		command = DefaultTask
	}
	return schema, command, nil
}
