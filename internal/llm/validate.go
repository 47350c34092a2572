package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// validateResponse checks text returned in native JSON mode against the
// requested schema, or its ValidateAs override. A nil schema always passes.
func validateResponse(schema *Schema, text string) error {
	if schema == nil {
		return nil
	}
	if schema.ValidateAs != nil {
		schema = schema.ValidateAs
	}

	parsed, err := jsonschema.UnmarshalJSON(strings.NewReader(text))
	if err != nil {
		return &ErrInvalidResponse{Text: text, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	compiled, err := CompileSchema(schema)
	if err != nil {
		return &ErrInvalidResponse{Text: text, Err: err}
	}
	if err := compiled.Validate(parsed); err != nil {
		return &ErrInvalidResponse{Text: text, Err: fmt.Errorf("schema validation failed: %w", err)}
	}
	return nil
}

// CompileSchema returns the compiled form of schema, compiling it on first
// use. Compiled schemas are cached by Name.
func CompileSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	doc, err := schemaDocument(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("schema %q: %w", schema.Name, err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %q: %w", schema.Name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", schema.Name, err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}

// schemaDocument round-trips a definition through JSON so Go-typed
// values (ints, []string) reach the compiler in its own representation.
func schemaDocument(def map[string]any) (any, error) {
	raw, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(raw))
}
