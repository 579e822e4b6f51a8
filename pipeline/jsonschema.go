package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/parserator/kernel/types"
	jsonschemav6 "github.com/santhosh-tekuri/jsonschema/v6"
)

// JSONSchemaValidator is a Postprocessor that validates ParsedData against a
// caller-supplied JSON Schema document using
// github.com/santhosh-tekuri/jsonschema/v6. It runs only when a caller adds
// it to the postprocessor stack; ParseOptions.ValidateOutput does not
// install it. A failing field does not abort the parse; it is recorded as
// a StagePostprocess warning diagnostic so the kernel can still return
// best-effort data alongside the warning.
type JSONSchemaValidator struct {
	schema *jsonschemav6.Schema
}

// NewJSONSchemaValidator compiles schemaJSON (a JSON Schema document) and
// returns a Postprocessor that validates extracted data against it.
func NewJSONSchemaValidator(schemaJSON []byte) (*JSONSchemaValidator, error) {
	compiler := jsonschemav6.NewCompiler()
	doc, err := jsonschemav6.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("pipeline: parse output schema: %w", err)
	}
	const resourceURL = "parserator://output-schema.json"
	if err := compiler.AddResource(resourceURL, doc); err != nil {
		return nil, fmt.Errorf("pipeline: add output schema resource: %w", err)
	}
	schema, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("pipeline: compile output schema: %w", err)
	}
	return &JSONSchemaValidator{schema: schema}, nil
}

func (v *JSONSchemaValidator) Name() string { return "jsonschema_validate" }

func (v *JSONSchemaValidator) Postprocess(_ context.Context, data map[string]any, _ map[string]types.SchemaField) (map[string]any, []types.ParseDiagnostic, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return data, nil, fmt.Errorf("pipeline: marshal parsed data for validation: %w", err)
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return data, nil, fmt.Errorf("pipeline: unmarshal parsed data for validation: %w", err)
	}

	if err := v.schema.Validate(instance); err != nil {
		return data, []types.ParseDiagnostic{{
			Stage:    types.StagePostprocess,
			Message:  "output schema validation failed: " + err.Error(),
			Severity: types.SeverityWarning,
		}}, nil
	}
	return data, nil, nil
}
