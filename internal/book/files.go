package book

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9]`)

// maxNameLen bounds the sanitized theme in file names.
const maxNameLen = 50

// FileName builds an export file name from the theme, e.g.
// "Escapebook_Pirates_of_the_Sea.html".
func FileName(theme, ext string) string {
	name := unsafeName.ReplaceAllString(theme, "_")
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	return fmt.Sprintf("Escapebook_%s.%s", name, ext)
}

// Format is an export format.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "md"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatHTML, FormatMarkdown:
		return f, nil
	case "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown export format %q (want html or md)", s)
}

// Export renders b in format f into dir and returns the written path.
func Export(b *Book, f Format, dir string) (string, error) {
	var content string
	switch f {
	case FormatHTML:
		html, err := RenderHTML(b)
		if err != nil {
			return "", err
		}
		content = html
	case FormatMarkdown:
		content = RenderMarkdown(b)
	default:
		return "", fmt.Errorf("unknown export format %q", f)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, FileName(b.Theme, string(f)))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
