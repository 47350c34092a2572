package book

import "time"

// Edit is an operator change to one page. Nil fields are left alone; a
// non-nil empty string clears the field.
type Edit struct {
	Title       *string
	Task        *string
	Code        *string
	ImagePrompt *string
	ImagePath   *string
}

// Empty reports whether the edit changes nothing.
func (e Edit) Empty() bool {
	return e.Title == nil && e.Task == nil && e.Code == nil &&
		e.ImagePrompt == nil && e.ImagePath == nil
}

// Apply changes page index (0-based) in place.
func (b *Book) Apply(index int, e Edit) error {
	if _, err := b.Page(index); err != nil {
		return err
	}

	p := &b.Pages[index]
	set(&p.Title, e.Title)
	set(&p.Task, e.Task)
	set(&p.Code, e.Code)
	set(&p.ImagePrompt, e.ImagePrompt)
	set(&p.ImagePath, e.ImagePath)

	if !e.Empty() {
		b.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
