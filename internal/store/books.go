package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/escapebook/internal/book"
)

// ErrAmbiguous is returned when an ID prefix matches more than one book.
var ErrAmbiguous = errors.New("ambiguous book id")

type bookRepo struct {
	db *sql.DB
}

func (r *bookRepo) Create(ctx context.Context, b *book.Book) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO books (id, theme, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		b.ID, b.Theme, b.CreatedAt.UnixMilli(), b.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}

	for i, p := range b.Pages {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO pages (
				book_id, position, template_id, title, task, code, image_prompt, image_path
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID, i, p.TemplateID, p.Title, p.Task, p.Code, p.ImagePrompt, p.ImagePath,
		)
		if err != nil {
			return fmt.Errorf("insert page %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *bookRepo) Get(ctx context.Context, id string) (*book.Book, error) {
	fullID, err := r.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}

	b := &book.Book{ID: fullID}
	var created, updated int64
	err = r.db.QueryRowContext(ctx,
		`SELECT theme, created_at, updated_at FROM books WHERE id = ?`, fullID,
	).Scan(&b.Theme, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("book %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	b.CreatedAt = time.UnixMilli(created).UTC()
	b.UpdatedAt = time.UnixMilli(updated).UTC()

	rows, err := r.db.QueryContext(ctx, `
		SELECT template_id, title, task, code, image_prompt, image_path
		FROM pages WHERE book_id = ? ORDER BY position`, fullID)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p book.Page
		if err := rows.Scan(&p.TemplateID, &p.Title, &p.Task, &p.Code, &p.ImagePrompt, &p.ImagePath); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		b.Pages = append(b.Pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	return b, nil
}

// resolveID expands a unique prefix to a full book ID.
func (r *bookRepo) resolveID(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("book id is required")
	}
	pattern := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(id) + "%"
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM books WHERE id LIKE ? ESCAPE '\' ORDER BY id LIMIT 2`, pattern)
	if err != nil {
		return "", fmt.Errorf("resolve book id: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var full string
		if err := rows.Scan(&full); err != nil {
			return "", fmt.Errorf("scan book id: %w", err)
		}
		if full == id {
			return full, nil
		}
		ids = append(ids, full)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("resolve book id: %w", err)
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("book %s: %w", id, ErrNotFound)
	case 1:
		return ids[0], nil
	}
	return "", fmt.Errorf("%w: %s", ErrAmbiguous, id)
}

func (r *bookRepo) List(ctx context.Context) ([]BookSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT b.id, b.theme, b.created_at, b.updated_at, COUNT(p.position)
		FROM books b LEFT JOIN pages p ON p.book_id = b.id
		GROUP BY b.id
		ORDER BY b.created_at DESC, b.id`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var out []BookSummary
	for rows.Next() {
		var s BookSummary
		var created, updated int64
		if err := rows.Scan(&s.ID, &s.Theme, &created, &updated, &s.Pages); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		s.CreatedAt = time.UnixMilli(created).UTC()
		s.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return out, nil
}

func (r *bookRepo) SavePage(ctx context.Context, b *book.Book, index int) error {
	p, err := b.Page(index)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE pages
		SET title = ?, task = ?, code = ?, image_prompt = ?, image_path = ?
		WHERE book_id = ? AND position = ?`,
		p.Title, p.Task, p.Code, p.ImagePrompt, p.ImagePath, b.ID, index,
	)
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("book %s page %d: %w", b.ID, index+1, ErrNotFound)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE books SET updated_at = ? WHERE id = ?`, b.UpdatedAt.UnixMilli(), b.ID)
	if err != nil {
		return fmt.Errorf("touch book: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *bookRepo) Delete(ctx context.Context, id string) error {
	fullID, err := r.resolveID(ctx, id)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, fullID)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("book %s: %w", id, ErrNotFound)
	}
	return nil
}
