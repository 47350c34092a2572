package llm

import (
	"errors"
	"testing"
)

func testPageSchema() *Schema {
	return &Schema{
		Name:        "test-page",
		Description: "One puzzle page",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"nadpis": map[string]any{"type": "string"},
				"zadani": map[string]any{"type": "string"},
				"kod":    map[string]any{"type": "string", "minLength": 1},
				"prompt": map[string]any{"type": "string"},
			},
			"required": []string{"nadpis", "kod"},
		},
	}
}

func TestValidateResponse_Valid(t *testing.T) {
	text := `{"nadpis":"Harbour","zadani":"Count the ships.","kod":"3","prompt":"Ships"}`
	if err := validateResponse(testPageSchema(), text); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidateResponse_ValidWithoutOptional(t *testing.T) {
	if err := validateResponse(testPageSchema(), `{"nadpis":"Harbour","kod":"3"}`); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidateResponse_Rejections(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"missing required", `{"nadpis":"Harbour"}`},
		{"wrong type", `{"nadpis":"Harbour","kod":3}`},
		{"empty code", `{"nadpis":"Harbour","kod":""}`},
		{"malformed", `{not json}`},
		{"empty", ``},
		{"prose wrapped", "Here you go: {\"nadpis\":\"x\",\"kod\":\"1\"}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(testPageSchema(), tt.text)
			var invErr *ErrInvalidResponse
			if !errors.As(err, &invErr) {
				t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
			}
			if invErr.Text != tt.text {
				t.Fatalf("error should carry the offending text, got %q", invErr.Text)
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, "not even JSON"); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateResponse_ArrayOfPages(t *testing.T) {
	schema := &Schema{
		Name: "test-pages",
		Definition: map[string]any{
			"type":     "array",
			"minItems": 1,
			"items":    testPageSchema().Definition,
		},
	}

	valid := `[{"nadpis":"A","kod":"1"},{"nadpis":"B","kod":"2"}]`
	if err := validateResponse(schema, valid); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if err := validateResponse(schema, `[]`); err == nil {
		t.Fatal("expected error for empty array")
	}
	if err := validateResponse(schema, `[{"nadpis":"A","kod":"1"},"stray"]`); err == nil {
		t.Fatal("expected error for non-object item")
	}
}

func TestCompileSchema_Cached(t *testing.T) {
	schema := &Schema{
		Name:       "test-cached",
		Definition: map[string]any{"type": "object"},
	}
	first, err := CompileSchema(schema)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	second, err := CompileSchema(schema)
	if err != nil {
		t.Fatalf("compile again: %v", err)
	}
	if first != second {
		t.Fatal("expected the cached schema on second compile")
	}
}

func TestCompileSchema_Invalid(t *testing.T) {
	schema := &Schema{
		Name:       "test-invalid",
		Definition: map[string]any{"type": 42},
	}
	if _, err := CompileSchema(schema); err == nil {
		t.Fatal("expected compile error for a non-string type")
	}
}

func TestValidateResponse_ValidateAsOverride(t *testing.T) {
	strict := testPageSchema()
	strict.ValidateAs = &Schema{
		Name:       "test-page-shape",
		Definition: map[string]any{"type": "object"},
	}

	if err := validateResponse(strict, `{"zadani":"Count the ships."}`); err != nil {
		t.Fatalf("expected override to accept missing required keys, got: %v", err)
	}

	err := validateResponse(strict, `["not", "an", "object"]`)
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse for wrong container, got %T: %v", err, err)
	}
}
