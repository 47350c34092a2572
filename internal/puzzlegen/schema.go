package puzzlegen

import "github.com/abhisek/escapebook/internal/llm"

var pageProperties = map[string]any{
	"nadpis": map[string]any{
		"type":        "string",
		"description": "Page title",
	},
	"zadani": map[string]any{
		"type":        "string",
		"description": "Riddle text for the reader; may contain a pipe table",
	},
	"kod": map[string]any{
		"type":        "string",
		"description": "Secret code that solves the page",
	},
	"prompt": map[string]any{
		"type":        "string",
		"description": "English prompt for the page illustration",
	},
}

// PageSchema is sent to backends with native JSON output when a single
// page is requested. The backend is asked for every key, but replies are
// only checked for shape so missing fields can be soft-filled.
var PageSchema = &llm.Schema{
	Name:        "puzzle-page",
	Description: "One escape-book puzzle page",
	Definition: map[string]any{
		"type":       "object",
		"properties": pageProperties,
		"required":   requiredKeys(),
	},
	ValidateAs: objectShape,
}

// PagesSchema is the array counterpart of PageSchema.
var PagesSchema = &llm.Schema{
	Name:        "puzzle-pages",
	Description: "Escape-book puzzle pages in page order",
	Definition: map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":       "object",
			"properties": pageProperties,
			"required":   requiredKeys(),
		},
	},
	ValidateAs: arrayShape,
}

// Container shapes the extractor accepts. Field content is not checked
// here; missing fields are soft-filled.
var (
	objectShape = &llm.Schema{
		Name:       "puzzle-shape-object",
		Definition: map[string]any{"type": "object"},
	}
	arrayShape = &llm.Schema{
		Name: "puzzle-shape-array",
		Definition: map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "object"},
		},
	}
)
