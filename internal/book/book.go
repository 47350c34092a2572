// Package book holds a curated escape book: the generated pages after
// operator review, and their export to Markdown and printable HTML.
package book

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/abhisek/escapebook/internal/puzzlegen"
)

// ErrPageRange is returned for a page index outside the book.
var ErrPageRange = errors.New("page out of range")

// Book is an ordered set of pages on one theme.
type Book struct {
	ID        string
	Theme     string
	CreatedAt time.Time
	UpdatedAt time.Time
	Pages     []Page
}

// Page is one riddle page.
type Page struct {
	Title       string
	Task        string
	Code        string
	ImagePrompt string
	TemplateID  string

	// ImagePath points to an illustration chosen by the operator.
	// Empty until one is attached.
	ImagePath string
}

// NewBook creates a book from generated records, in order.
func NewBook(theme string, records []puzzlegen.Record) *Book {
	now := time.Now().UTC()
	b := &Book{
		ID:        uuid.NewString(),
		Theme:     theme,
		CreatedAt: now,
		UpdatedAt: now,
		Pages:     make([]Page, len(records)),
	}
	for i, r := range records {
		b.Pages[i] = PageFromRecord(r)
	}
	return b
}

// PageFromRecord converts a generated record into a page.
func PageFromRecord(r puzzlegen.Record) Page {
	return Page{
		Title:       r.Title,
		Task:        r.Task,
		Code:        r.Code,
		ImagePrompt: r.ImagePrompt,
		TemplateID:  r.TemplateID,
	}
}

// Page returns page index (0-based).
func (b *Book) Page(index int) (Page, error) {
	if index < 0 || index >= len(b.Pages) {
		return Page{}, fmt.Errorf("%w: %d of %d", ErrPageRange, index+1, len(b.Pages))
	}
	return b.Pages[index], nil
}

// CodeSlots is the number of boxes printed for the secret code, one per
// character.
func (p Page) CodeSlots() int {
	return utf8.RuneCountInString(p.Code)
}

// IsGridTask reports whether a task is laid out as a pipe table.
func IsGridTask(task string) bool {
	return strings.Contains(task, "|") && strings.Contains(task, "---")
}
