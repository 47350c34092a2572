// Package puzzlegen drafts puzzle pages with a language model: it composes
// the instruction, calls the model with bounded retries and extracts
// structured records from the free-form reply.
package puzzlegen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/escapebook/internal/catalog"
	"github.com/abhisek/escapebook/internal/llm"
	"github.com/abhisek/escapebook/internal/logging"
)

var (
	// ErrEmptyTheme is returned for a blank theme.
	ErrEmptyTheme = errors.New("theme is empty")

	// ErrNoTemplates is returned when no template is requested.
	ErrNoTemplates = errors.New("no puzzle templates requested")

	// ErrSingleTemplate is returned when a single-record request names
	// more than one template.
	ErrSingleTemplate = errors.New("single-page request takes exactly one template")
)

// Generator turns a Request into records.
type Generator struct {
	catalog  *catalog.Catalog
	composer Composer
	coord    *Coordinator
	log      *logging.Logger
}

// NewGenerator creates a Generator drawing templates from cat.
func NewGenerator(cat *catalog.Catalog, provider llm.Provider, cfg Config, log *logging.Logger) *Generator {
	if log == nil {
		log = logging.Nop()
	}
	return &Generator{
		catalog:  cat,
		composer: Composer{Style: cat.Style()},
		coord:    NewCoordinator(provider, cfg, log),
		log:      log,
	}
}

// Catalog returns the catalog templates are resolved against.
func (g *Generator) Catalog() *catalog.Catalog {
	return g.catalog
}

// Generate validates req, calls the model and attaches template ids by
// position: record i gets req.TemplateIDs[i]. The pairing is not checked
// against content.
func (g *Generator) Generate(ctx context.Context, req Request) ([]Record, error) {
	if strings.TrimSpace(req.Theme) == "" {
		return nil, ErrEmptyTheme
	}
	if len(req.TemplateIDs) == 0 {
		return nil, ErrNoTemplates
	}
	if !req.ExpectArray && len(req.TemplateIDs) != 1 {
		return nil, fmt.Errorf("%w: got %d", ErrSingleTemplate, len(req.TemplateIDs))
	}

	templates, err := g.catalog.Resolve(req.TemplateIDs)
	if err != nil {
		return nil, err
	}

	purpose := "page"
	if req.ExpectArray {
		purpose = "story"
	}
	ctx = llm.WithPurpose(ctx, purpose)

	prompt := g.composer.Compose(req.Theme, templates, req.ExpectArray)
	records, err := g.coord.Generate(ctx, prompt, req.ExpectArray)
	if err != nil {
		return nil, err
	}

	if len(records) != len(req.TemplateIDs) {
		g.log.Warn("page count differs from request",
			"requested", len(req.TemplateIDs), "returned", len(records))
	}
	for i := range records {
		if i < len(req.TemplateIDs) {
			records[i].TemplateID = req.TemplateIDs[i]
		}
		if missing := records[i].MissingFields(); len(missing) > 0 {
			g.log.Warn("page has empty fields",
				"page", i+1, "template", records[i].TemplateID, "fields", missing)
		}
	}
	return records, nil
}
