// Package extract pulls a JSON object out of a model's free-form answer
// and validates it against a JSON Schema before decoding.
package extract

import (
	"bytes"
	"encoding/json"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/drover-ai/drover/pkg/errmodel"
)

// JSONSpan returns the substring from the first '{' to the last '}' of
// text. The span is greedy: an answer containing several top-level objects
// yields an invalid span and fails later validation rather than silently
// picking one of them.
func JSONSpan(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return "", errmodel.Extraction("not_found", "no JSON object in answer", map[string]any{
			"answer": text,
		})
	}
	return text[start : end+1], nil
}

// Validate checks candidate JSON against the schema.
func Validate(schema, candidate []byte) error {
	var doc any
	if err := json.Unmarshal(schema, &doc); err != nil {
		return errmodel.Validation("bad_schema", "schema is not valid JSON", map[string]any{"error": err.Error()})
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("mem://schema.json", doc); err != nil {
		return errmodel.Validation("bad_schema", "schema resource rejected", map[string]any{"error": err.Error()})
	}
	sch, err := c.Compile("mem://schema.json")
	if err != nil {
		return errmodel.Validation("bad_schema", "schema does not compile", map[string]any{"error": err.Error()})
	}
	var v any
	if err := json.Unmarshal(candidate, &v); err != nil {
		return errmodel.Extraction("malformed_json", "extracted span is not valid JSON", map[string]any{
			"span": string(candidate), "error": err.Error(),
		})
	}
	if err := sch.Validate(v); err != nil {
		return errmodel.Extraction("schema_mismatch", "extracted JSON does not match schema", map[string]any{
			"span": string(candidate), "error": err.Error(),
		})
	}
	return nil
}

// Unmarshal extracts the JSON object from text, validates it against
// schema, and decodes it into out. Unknown fields are rejected so a
// mis-shaped answer fails loudly instead of half-filling the query.
func Unmarshal(schema []byte, text string, out any) error {
	span, err := JSONSpan(text)
	if err != nil {
		return err
	}
	if err := Validate(schema, []byte(span)); err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(span)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return errmodel.Extraction("decode_failed", "extracted JSON does not fit query type", map[string]any{
			"span": span, "error": err.Error(),
		})
	}
	return nil
}
