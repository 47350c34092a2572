package puzzlegen

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/escapebook/internal/catalog"
	"github.com/abhisek/escapebook/internal/llm"
)

const testCatalogYAML = `
style: Thick outlines.
templates:
  - id: matching
    name: Grid matching
    rules: The badge picks the column. Code has 4 digits.
    example:
      nadpis: Code to the escape pod
      zadani: Match every astronaut.
      kod: "2312"
      prompt: A strict table grid.
  - id: hidden_objects
    name: Hidden objects
    rules: Count the objects.
  - id: caesar
    name: Shifted alphabet
    rules: Shift the alphabet.
`

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load(strings.NewReader(testCatalogYAML))
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return cat
}

// sleepRecorder stands in for the real timer and remembers each wait.
type sleepRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.waits = append(s.waits, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *sleepRecorder) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.waits...)
}

func newTestCoordinator(mock *llm.MockProvider, cfg Config) (*Coordinator, *sleepRecorder) {
	c := NewCoordinator(mock, cfg, nil)
	rec := &sleepRecorder{}
	c.sleep = rec.sleep
	return c, rec
}

func newTestGenerator(t *testing.T, mock *llm.MockProvider) (*Generator, *sleepRecorder) {
	t.Helper()
	g := NewGenerator(testCatalog(t), mock, DefaultConfig(), nil)
	rec := &sleepRecorder{}
	g.coord.sleep = rec.sleep
	return g, rec
}
