package book

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

//go:embed templates/book.html.tmpl
var templateFS embed.FS

var bookTemplate = template.Must(template.ParseFS(templateFS, "templates/book.html.tmpl"))

// Raw HTML in model text is dropped; line breaks are kept as in print.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

type htmlPage struct {
	Number      int
	Title       string
	TaskHTML    template.HTML
	Grid        bool
	ImagePath   string
	ImagePrompt string
	Slots       []struct{}
}

// RenderHTML renders the book as a printable HTML document, one page
// section per page.
func RenderHTML(b *Book) (string, error) {
	data := struct {
		Theme string
		Pages []htmlPage
	}{Theme: b.Theme}

	for i, p := range b.Pages {
		task, err := renderTask(p.Task)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i+1, err)
		}
		data.Pages = append(data.Pages, htmlPage{
			Number:      i + 1,
			Title:       p.Title,
			TaskHTML:    task,
			Grid:        IsGridTask(p.Task),
			ImagePath:   p.ImagePath,
			ImagePrompt: p.ImagePrompt,
			Slots:       make([]struct{}, p.CodeSlots()),
		})
	}

	var buf bytes.Buffer
	if err := bookTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render book: %w", err)
	}
	return buf.String(), nil
}

func renderTask(task string) (template.HTML, error) {
	if IsGridTask(task) {
		task = separateTables(task)
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(task), &buf); err != nil {
		return "", fmt.Errorf("convert task: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// separateTables puts blank lines around runs of pipe-table lines so an
// intro sentence directly above a table does not swallow its header row.
func separateTables(task string) string {
	lines := strings.Split(task, "\n")
	out := make([]string, 0, len(lines)+2)
	prevTable, prevBlank := false, true
	for _, line := range lines {
		blank := strings.TrimSpace(line) == ""
		table := strings.Contains(line, "|")
		if !blank && !prevBlank && table != prevTable {
			out = append(out, "")
		}
		out = append(out, line)
		prevTable, prevBlank = table, blank
	}
	return strings.Join(out, "\n")
}

// RenderMarkdown renders the book as a Markdown document.
func RenderMarkdown(b *Book) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", b.Theme)

	for i, p := range b.Pages {
		sb.WriteString("\n---\n\n")
		fmt.Fprintf(&sb, "## %d. %s\n\n", i+1, p.Title)

		task := p.Task
		if IsGridTask(task) {
			task = separateTables(task)
		}
		if task != "" {
			sb.WriteString(task)
			sb.WriteString("\n\n")
		}

		if p.ImagePath != "" {
			fmt.Fprintf(&sb, "![%s](%s)\n\n", p.Title, p.ImagePath)
		} else {
			sb.WriteString("> Image missing, copy the prompt:\n")
			for _, line := range strings.Split(p.ImagePrompt, "\n") {
				fmt.Fprintf(&sb, "> %s\n", line)
			}
			sb.WriteString("\n")
		}

		sb.WriteString("**SECRET CODE:** ")
		sb.WriteString(strings.TrimSpace(strings.Repeat("[   ] ", p.CodeSlots())))
		sb.WriteString("\n")
	}
	return sb.String()
}
