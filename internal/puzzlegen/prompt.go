package puzzlegen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/escapebook/internal/catalog"
)

// Composer builds the instruction sent to the model.
type Composer struct {
	// Style is the illustration directive shared by every page.
	Style string
}

// Compose renders the instruction for theme and templates, one page per
// template in order. It is pure; an empty template list still yields a
// prompt, so callers must reject it beforehand.
func (c Composer) Compose(theme string, templates []catalog.Template, expectArray bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Theme: %q. Number of pages: %d.\n", theme, len(templates))
	b.WriteString("You are writing an escape book for children: every page is a riddle whose answer is a secret code.\n")

	b.WriteString("\nPUZZLE LIST:\n")
	for i, t := range templates {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Page %d: %s\n", i+1, t.Name)
		fmt.Fprintf(&b, "Rules: %s\n", t.Rules)
		if t.Example != nil {
			fmt.Fprintf(&b, "\nINSTRUCTION: Follow the JSON structure of the example, but REPLACE its content with the theme %q. Do not copy the example content.\n", theme)
			b.WriteString("EXAMPLE:\n")
			b.WriteString(exampleJSON(t.Example))
			b.WriteString("\n")
		}
	}

	if c.Style != "" {
		fmt.Fprintf(&b, "\nStyle of every image prompt: %s\n", c.Style)
	}

	keys := requiredKeys()
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = fmt.Sprintf("%q", k)
	}
	fmt.Fprintf(&b, "\nEvery page object has exactly the keys %s: title, riddle text, secret code, English image prompt.\n", strings.Join(quoted, ", "))

	if expectArray {
		b.WriteString("Return ONLY a valid JSON array of objects, one object per page, in page order. No prose, no code fences.")
	} else {
		b.WriteString("Return ONLY one valid JSON object. No prose, no code fences.")
	}
	return b.String()
}

// exampleJSON renders an example with canonical keys, indented, without
// HTML escaping so "<" and "&" reach the model unchanged.
func exampleJSON(ex *catalog.Example) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ex); err != nil {
		return ""
	}
	return strings.TrimRight(buf.String(), "\n")
}
