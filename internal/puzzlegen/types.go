package puzzlegen

// Record is one drafted puzzle page. Wire keys are mapped in fields.go.
type Record struct {
	// Title is the page heading.
	Title string

	// Task is the riddle text shown to the reader. It may contain a
	// pipe table, e.g. "| 1 | 2 |\n|---|---|".
	Task string

	// Code is the secret code that solves the page, usually a few digits.
	Code string

	// ImagePrompt is an English prompt for the page illustration.
	ImagePrompt string

	// TemplateID is the catalog template the page was requested for.
	// Empty when the model returned more pages than were requested.
	TemplateID string
}

// MissingFields returns the wire keys of the text fields that are empty,
// in canonical order.
func (r Record) MissingFields() []string {
	var out []string
	for _, f := range recordFields {
		if *f.ptr(&r) == "" {
			out = append(out, f.keys[0])
		}
	}
	return out
}

// Request asks for pages on a theme.
type Request struct {
	// Theme is the story theme, e.g. "Pirates".
	Theme string

	// TemplateIDs lists catalog templates in page order.
	TemplateIDs []string

	// ExpectArray asks for a JSON array with one object per template.
	// When false, exactly one template is allowed and a single object
	// is expected.
	ExpectArray bool
}
