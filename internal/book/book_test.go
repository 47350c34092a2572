package book

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/escapebook/internal/puzzlegen"
)

func testRecords() []puzzlegen.Record {
	return []puzzlegen.Record{
		{
			Title:       "The lost toys",
			Task:        "Count the objects to get the code:\n1. How many bears?\n2. How many cars?",
			Code:        "52",
			ImagePrompt: "A playroom with <5> bears & 2 cars",
			TemplateID:  "hidden_objects",
		},
		{
			Title:       "Pirate grid",
			Task:        "Pick the right item:\n| | 1 | 2 |\n|---|---|---|\n| Anchor | **hat** | coin |",
			Code:        "2312",
			ImagePrompt: "A grid",
			TemplateID:  "matching",
		},
	}
}

func strPtr(s string) *string { return &s }

func TestNewBook(t *testing.T) {
	b := NewBook("Pirates", testRecords())

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "Pirates", b.Theme)
	assert.False(t, b.CreatedAt.IsZero())
	require.Len(t, b.Pages, 2)
	assert.Equal(t, "matching", b.Pages[1].TemplateID)
	assert.Equal(t, "52", b.Pages[0].Code)
	assert.Empty(t, b.Pages[0].ImagePath)

	other := NewBook("Pirates", nil)
	assert.NotEqual(t, b.ID, other.ID)
	assert.Empty(t, other.Pages)
}

func TestApply(t *testing.T) {
	b := NewBook("Pirates", testRecords())
	before := b.UpdatedAt

	err := b.Apply(0, Edit{
		Title:     strPtr("Found toys"),
		Code:      strPtr("524"),
		ImagePath: strPtr("/tmp/toys.png"),
	})
	require.NoError(t, err)

	p := b.Pages[0]
	assert.Equal(t, "Found toys", p.Title)
	assert.Equal(t, "524", p.Code)
	assert.Equal(t, "/tmp/toys.png", p.ImagePath)
	assert.Equal(t, testRecords()[0].Task, p.Task, "untouched fields stay")
	assert.False(t, b.UpdatedAt.Before(before))

	require.NoError(t, b.Apply(1, Edit{ImagePrompt: strPtr("")}))
	assert.Empty(t, b.Pages[1].ImagePrompt, "empty string clears")

	assert.ErrorIs(t, b.Apply(2, Edit{Title: strPtr("x")}), ErrPageRange)
	assert.ErrorIs(t, b.Apply(-1, Edit{}), ErrPageRange)
}

func TestEdit_Empty(t *testing.T) {
	assert.True(t, Edit{}.Empty())
	assert.False(t, Edit{Task: strPtr("")}.Empty())
}

func TestIsGridTask(t *testing.T) {
	assert.True(t, IsGridTask("| a | b |\n|---|---|"))
	assert.False(t, IsGridTask("a | b"))
	assert.False(t, IsGridTask("first --- then"))
	assert.False(t, IsGridTask(""))
}

func TestCodeSlots(t *testing.T) {
	assert.Equal(t, 4, Page{Code: "2312"}.CodeSlots())
	assert.Equal(t, 3, Page{Code: "ŽÁK"}.CodeSlots())
	assert.Equal(t, 0, Page{}.CodeSlots())
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Escapebook_Pirates_of_the_Sea_.html", FileName("Pirates of the Sea!", "html"))
	assert.Equal(t, "Escapebook_Pir_ti.md", FileName("Piráti", "md"))

	long := FileName(strings.Repeat("a", 60), "html")
	assert.Equal(t, "Escapebook_"+strings.Repeat("a", 50)+".html", long)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("markdown")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}

func TestRenderHTML(t *testing.T) {
	b := NewBook("Pirates", testRecords())
	require.NoError(t, b.Apply(1, Edit{ImagePath: strPtr("pics/grid.png")}))

	out, err := RenderHTML(b)
	require.NoError(t, err)

	assert.Contains(t, out, "<title>Pirates</title>")
	assert.Equal(t, 2, strings.Count(out, `<section class="page"`))
	assert.Contains(t, out, `id="page-2"`)

	// Page 1: list task, placeholder with escaped prompt.
	assert.Contains(t, out, "<ol>")
	assert.Contains(t, out, "Image missing, copy the prompt:")
	assert.Contains(t, out, "A playroom with &lt;5&gt; bears &amp; 2 cars")

	// Page 2: table task, attached image.
	assert.Contains(t, out, `<div class="task grid">`)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<strong>hat</strong>")
	assert.Contains(t, out, `<img class="illustration" src="pics/grid.png"`)

	// 2 + 4 code slots.
	assert.Equal(t, 6, strings.Count(out, `<span class="slot"></span>`))
}

func TestRenderHTML_DropsRawHTML(t *testing.T) {
	b := NewBook("X", []puzzlegen.Record{{Title: "<b>T</b>", Task: "<script>alert(1)</script>"}})

	out, err := RenderHTML(b)
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;b&gt;T&lt;/b&gt;")
}

func TestSeparateTables(t *testing.T) {
	in := "Intro\n| a | b |\n|---|---|\n| 1 | 2 |\nAfter"
	want := "Intro\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\nAfter"
	assert.Equal(t, want, separateTables(in))

	already := "Intro\n\n| a |\n|---|"
	assert.Equal(t, already, separateTables(already))
}

func TestRenderMarkdown(t *testing.T) {
	b := NewBook("Pirates", testRecords())
	require.NoError(t, b.Apply(0, Edit{ImagePath: strPtr("toys.png")}))

	out := RenderMarkdown(b)

	assert.True(t, strings.HasPrefix(out, "# Pirates\n"))
	assert.Contains(t, out, "## 1. The lost toys")
	assert.Contains(t, out, "![The lost toys](toys.png)")
	assert.Contains(t, out, "**SECRET CODE:** [   ] [   ]\n")
	assert.Contains(t, out, "## 2. Pirate grid")
	assert.Contains(t, out, "Pick the right item:\n\n| | 1 | 2 |")
	assert.Contains(t, out, "> Image missing, copy the prompt:\n> A grid\n")
	assert.Contains(t, out, "**SECRET CODE:** [   ] [   ] [   ] [   ]\n")
}

func TestExport(t *testing.T) {
	b := NewBook("Pirates", testRecords())
	dir := filepath.Join(t.TempDir(), "out")

	path, err := Export(b, FormatHTML, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Escapebook_Pirates.html"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<table>")

	path, err = Export(b, FormatMarkdown, dir)
	require.NoError(t, err)
	assert.Equal(t, "Escapebook_Pirates.md", filepath.Base(path))

	_, err = Export(b, Format("pdf"), dir)
	assert.Error(t, err)
}
