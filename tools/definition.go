package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/tidwall/sjson"
	"github.com/xeipuuv/gojsonschema"

	"github.com/petasbytes/job-agent/internal/provider"
)

// Handler runs one tool call. Input is the raw JSON object sent by the model.
type Handler func(ctx context.Context, input json.RawMessage) (string, error)

type ToolDefinition struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
	Handler     Handler
}

// Spec returns the advertised part of the definition.
func (d ToolDefinition) Spec() provider.ToolSpec {
	return provider.ToolSpec{Name: d.Name, Description: d.Description, InputSchema: d.InputSchema}
}

// GenerateSchema derives an inline JSON schema from T. Fields without
// omitempty are required.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// NewTool builds a definition whose handler validates the input against the
// schema generated from T before decoding it and calling fn.
func NewTool[T any](name, description string, fn func(ctx context.Context, in T) (string, error)) ToolDefinition {
	schema := GenerateSchema[T]()
	validator, err := compile(schema)
	if err != nil {
		panic(fmt.Sprintf("tools: schema for %s: %v", name, err))
	}
	return ToolDefinition{
		Name:        name,
		Description: description,
		InputSchema: schema,
		Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
			in, err := bind[T](validator, input)
			if err != nil {
				return "", err
			}
			return fn(ctx, in)
		},
	}
}

func compile(schema *jsonschema.Schema) (*gojsonschema.Schema, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	// The validator only knows draft-07 and earlier; the reflector stamps 2020-12.
	stripped, err := sjson.DeleteBytes(raw, "$schema")
	if err != nil {
		return nil, err
	}
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(stripped))
}

func bind[T any](v *gojsonschema.Schema, input json.RawMessage) (T, error) {
	var out T
	if len(input) == 0 || string(input) == "null" {
		input = json.RawMessage(`{}`)
	}
	res, err := v.Validate(gojsonschema.NewBytesLoader(input))
	if err != nil {
		return out, fmt.Errorf("invalid arguments: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return out, fmt.Errorf("invalid arguments: %s", strings.Join(msgs, "; "))
	}
	if err := json.Unmarshal(input, &out); err != nil {
		return out, fmt.Errorf("invalid arguments: %w", err)
	}
	return out, nil
}

// JSON renders v as a compact payload.
func JSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
