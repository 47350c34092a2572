package llm

import (
	"testing"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.5-flash"},
		{"gemini-flash-lite", "gemini-2.5-flash-lite"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"nadpis": map[string]any{"type": "string", "description": "page title"},
				"kod":    map[string]any{"type": "string"},
				"order":  map[string]any{"type": "integer"},
			},
			"required": []string{"nadpis", "kod"},
		},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "ARRAY" {
		t.Fatalf("expected ARRAY type, got %s", schema.Type)
	}
	item := schema.Items
	if item == nil || item.Type != "OBJECT" {
		t.Fatalf("expected OBJECT items, got %+v", item)
	}
	if len(item.Properties) != 3 {
		t.Fatalf("expected 3 properties, got %d", len(item.Properties))
	}
	if item.Properties["nadpis"].Type != "STRING" {
		t.Fatalf("expected STRING for nadpis, got %s", item.Properties["nadpis"].Type)
	}
	if item.Properties["nadpis"].Description != "page title" {
		t.Fatalf("description not carried: %q", item.Properties["nadpis"].Description)
	}
	if item.Properties["order"].Type != "INTEGER" {
		t.Fatalf("expected INTEGER for order, got %s", item.Properties["order"].Type)
	}
	if len(item.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(item.Required))
	}
}

func TestBuildGeminiSchema_RequiredAsAny(t *testing.T) {
	schema := buildGeminiSchema(map[string]any{
		"type":     "object",
		"required": []any{"zadani", 7},
	})
	if len(schema.Required) != 1 || schema.Required[0] != "zadani" {
		t.Fatalf("required = %v, want [zadani]", schema.Required)
	}
}

func TestNewGeminiProvider_RequiresKey(t *testing.T) {
	if _, err := NewGeminiProvider(t.Context(), GeminiConfig{}); err == nil {
		t.Fatal("expected error for empty API key")
	}
}
