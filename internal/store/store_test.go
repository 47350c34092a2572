package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/escapebook/internal/book"
	"github.com/abhisek/escapebook/internal/llm"
	"github.com/abhisek/escapebook/internal/puzzlegen"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testBook(theme string) *book.Book {
	return book.NewBook(theme, []puzzlegen.Record{
		{Title: "Hidden", Task: "Count the parrots.", Code: "7", ImagePrompt: "Parrots", TemplateID: "hidden_objects"},
		{Title: "Grid", Task: "| a | b |\n|---|---|", Code: "2312", ImagePrompt: "Grid", TemplateID: "matching"},
	})
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"user_version", "1"},
	}

	for _, tt := range tests {
		var got string
		if err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	b := testBook("Pirates")
	if err := s.BookRepo().Create(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if _, err := s.BookRepo().Get(ctx, b.ID); err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
}

func TestWithPragmas(t *testing.T) {
	if got := withPragmas("a.db"); !strings.HasPrefix(got, "a.db?_pragma=busy_timeout(5000)&") {
		t.Errorf("withPragmas(a.db) = %q", got)
	}
	if got := withPragmas("file::memory:?cache=shared"); !strings.HasPrefix(got, "file::memory:?cache=shared&_pragma=") {
		t.Errorf("withPragmas(memory) = %q", got)
	}
}

func TestBookCreateGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.BookRepo()
	ctx := context.Background()

	b := testBook("Pirates")
	if err := repo.Create(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Theme != "Pirates" {
		t.Errorf("theme = %q, want Pirates", got.Theme)
	}
	if !got.CreatedAt.Equal(b.CreatedAt.Truncate(time.Millisecond)) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, b.CreatedAt)
	}
	if len(got.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(got.Pages))
	}
	if got.Pages[1] != b.Pages[1] {
		t.Errorf("page 2 = %+v, want %+v", got.Pages[1], b.Pages[1])
	}
}

func TestBookGet_Prefix(t *testing.T) {
	s := openTestStore(t)
	repo := s.BookRepo()
	ctx := context.Background()

	a := testBook("A")
	a.ID = "abc-1"
	c := testBook("C")
	c.ID = "abd-2"
	for _, b := range []*book.Book{a, c} {
		if err := repo.Create(ctx, b); err != nil {
			t.Fatalf("create %s: %v", b.ID, err)
		}
	}

	got, err := repo.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("get by prefix: %v", err)
	}
	if got.ID != "abc-1" {
		t.Errorf("id = %q, want abc-1", got.ID)
	}

	if _, err := repo.Get(ctx, "ab"); !errors.Is(err, ErrAmbiguous) {
		t.Errorf("get ab: err = %v, want ErrAmbiguous", err)
	}
	if _, err := repo.Get(ctx, "zz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get zz: err = %v, want ErrNotFound", err)
	}
	if _, err := repo.Get(ctx, "a%"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get a%%: err = %v, want ErrNotFound (wildcards are literal)", err)
	}
}

func TestBookList(t *testing.T) {
	s := openTestStore(t)
	repo := s.BookRepo()
	ctx := context.Background()

	older := testBook("Older")
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	newer := testBook("Newer")
	newer.Pages = newer.Pages[:1]
	for _, b := range []*book.Book{older, newer} {
		if err := repo.Create(ctx, b); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].Theme != "Newer" || list[0].Pages != 1 {
		t.Errorf("first = %+v, want Newer with 1 page", list[0])
	}
	if list[1].Theme != "Older" || list[1].Pages != 2 {
		t.Errorf("second = %+v, want Older with 2 pages", list[1])
	}
}

func TestBookSavePage(t *testing.T) {
	s := openTestStore(t)
	repo := s.BookRepo()
	ctx := context.Background()

	b := testBook("Pirates")
	if err := repo.Create(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}

	code, img := "8", "/tmp/parrots.png"
	if err := b.Apply(0, book.Edit{Code: &code, ImagePath: &img}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := repo.SavePage(ctx, b, 0); err != nil {
		t.Fatalf("save page: %v", err)
	}

	got, err := repo.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Pages[0].Code != "8" || got.Pages[0].ImagePath != img {
		t.Errorf("page 1 = %+v", got.Pages[0])
	}
	if got.Pages[1].Code != "2312" {
		t.Errorf("page 2 code = %q, want untouched 2312", got.Pages[1].Code)
	}

	if err := repo.SavePage(ctx, b, 5); !errors.Is(err, book.ErrPageRange) {
		t.Errorf("save page 6: err = %v, want ErrPageRange", err)
	}

	ghost := testBook("Ghost")
	if err := repo.SavePage(ctx, ghost, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("save unknown book: err = %v, want ErrNotFound", err)
	}
}

func TestBookDelete(t *testing.T) {
	s := openTestStore(t)
	repo := s.BookRepo()
	ctx := context.Background()

	b := testBook("Pirates")
	if err := repo.Create(ctx, b); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, b.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete: err = %v, want ErrNotFound", err)
	}

	var pages int
	if err := s.DB().QueryRow(`SELECT COUNT(*) FROM pages WHERE book_id = ?`, b.ID).Scan(&pages); err != nil {
		t.Fatalf("count pages: %v", err)
	}
	if pages != 0 {
		t.Errorf("pages left = %d, want 0 (cascade)", pages)
	}

	if err := repo.Delete(ctx, b.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func appendEvents(t *testing.T, repo EventRepo, events ...llm.RequestEvent) {
	t.Helper()
	for _, ev := range events {
		if err := repo.AppendLLMRequest(context.Background(), ev); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
}

func TestLLMEvents_AppendQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	appendEvents(t, repo,
		llm.RequestEvent{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "story", InputTokens: 100, OutputTokens: 400, LatencyMs: 900, Success: true, RequestBody: "prompt", ResponseBody: "[]"},
		llm.RequestEvent{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "page", InputTokens: 50, LatencyMs: 100, ErrorMessage: "rate limited"},
		llm.RequestEvent{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "page", InputTokens: 60, OutputTokens: 90, LatencyMs: 300, Success: true},
	)

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].ID <= all[1].ID {
		t.Errorf("events not newest first: %d, %d", all[0].ID, all[1].ID)
	}
	if all[2].Purpose != "story" || !all[2].Success || all[2].ResponseBody != "[]" {
		t.Errorf("oldest = %+v", all[2])
	}
	if all[1].Success || all[1].ErrorMessage != "rate limited" {
		t.Errorf("failed event = %+v", all[1])
	}
	if all[0].Timestamp.IsZero() {
		t.Error("timestamp not set")
	}

	pages, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "page", Limit: 1})
	if err != nil {
		t.Fatalf("query page: %v", err)
	}
	if len(pages) != 1 || pages[0].OutputTokens != 90 {
		t.Errorf("page query = %+v, want latest page event", pages)
	}
}

func TestLLMEvents_Get(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	appendEvents(t, repo, llm.RequestEvent{Provider: "mock", Model: "mock", Purpose: "page", Success: true})

	events, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1})
	if err != nil || len(events) != 1 {
		t.Fatalf("query: %v (%d events)", err, len(events))
	}

	got, err := repo.GetLLMEvent(ctx, events[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Provider != "mock" {
		t.Errorf("provider = %q, want mock", got.Provider)
	}

	if _, err := repo.GetLLMEvent(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("get 999: err = %v, want ErrNotFound", err)
	}
}

func TestLLMUsage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	appendEvents(t, repo,
		llm.RequestEvent{Model: "gemini-2.5-flash", Purpose: "page", InputTokens: 10, OutputTokens: 20, LatencyMs: 100, Success: true},
		llm.RequestEvent{Model: "gemini-2.5-flash", Purpose: "page", InputTokens: 30, OutputTokens: 40, LatencyMs: 300},
		llm.RequestEvent{Model: "gpt-4o", Purpose: "story", InputTokens: 5, OutputTokens: 5, LatencyMs: 50, Success: true},
	)

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("by purpose: %v", err)
	}
	want := []PurposeUsage{
		{Purpose: "page", Calls: 2, Failures: 1, InputTokens: 40, OutputTokens: 60, AvgLatencyMs: 200},
		{Purpose: "story", Calls: 1, InputTokens: 5, OutputTokens: 5, AvgLatencyMs: 50},
	}
	if len(byPurpose) != len(want) {
		t.Fatalf("by purpose = %+v", byPurpose)
	}
	for i := range want {
		if byPurpose[i] != want[i] {
			t.Errorf("by purpose[%d] = %+v, want %+v", i, byPurpose[i], want[i])
		}
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("by model: %v", err)
	}
	if len(byModel) != 2 || byModel[0].Model != "gemini-2.5-flash" || byModel[0].Calls != 2 || byModel[0].InputTokens != 40 {
		t.Errorf("by model = %+v", byModel)
	}
}

func TestEventRepo_AsSink(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := llm.WithLogging(llm.NewMockProvider(llm.MockResponse{Text: `{"nadpis":"x"}`}), "mock", s.EventRepo(), nil)
	ctx = llm.WithPurpose(ctx, "page")
	if _, err := p.Generate(ctx, llm.UserPrompt("hi", 100, 0)); err != nil {
		t.Fatalf("generate: %v", err)
	}

	events, err := s.EventRepo().QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 || events[0].Purpose != "page" || !events[0].Success {
		t.Errorf("events = %+v", events)
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("ESCAPEBOOK_DB", filepath.Join(dir, "custom", "x.db"))
	p, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("env path: %v", err)
	}
	if p != filepath.Join(dir, "custom", "x.db") {
		t.Errorf("path = %q", p)
	}

	t.Setenv("ESCAPEBOOK_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	if err != nil {
		t.Fatalf("xdg path: %v", err)
	}
	if p != filepath.Join(dir, "escapebook", "escapebook.db") {
		t.Errorf("path = %q", p)
	}
}
