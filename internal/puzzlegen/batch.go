package puzzlegen

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/abhisek/escapebook/internal/logging"
)

// Mode selects how a batch talks to the model.
type Mode string

const (
	// ModeStory sends one request for all pages.
	ModeStory Mode = "story"

	// ModePages sends one request per page, sequentially.
	ModePages Mode = "pages"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case ModeStory, ModePages:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (want story or pages)", s)
}

// FailurePolicy decides what a failed request does to the batch.
type FailurePolicy string

const (
	// FailAbort stops the batch at the first failure.
	FailAbort FailurePolicy = "abort"

	// FailSkip records the failure and moves on.
	FailSkip FailurePolicy = "skip"
)

// ParseFailurePolicy validates a policy name.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(strings.ToLower(s)); p {
	case FailAbort, FailSkip:
		return p, nil
	}
	return "", fmt.Errorf("unknown failure policy %q (want abort or skip)", s)
}

// Batch is one book's worth of pages.
type Batch struct {
	Theme       string
	TemplateIDs []string
	Mode        Mode
	OnFailure   FailurePolicy
}

// PageFailure records a page that could not be generated.
type PageFailure struct {
	// Page is the 1-based page number in the batch.
	Page       int
	TemplateID string
	Err        error
}

// Accumulator collects the results of one batch. It only grows.
type Accumulator struct {
	records  []Record
	failures []PageFailure
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

func (a *Accumulator) add(records ...Record) {
	a.records = append(a.records, records...)
}

func (a *Accumulator) fail(f PageFailure) {
	a.failures = append(a.failures, f)
}

// Records returns the generated records in page order.
func (a *Accumulator) Records() []Record {
	return slices.Clone(a.records)
}

// Failures returns the skipped pages in page order.
func (a *Accumulator) Failures() []PageFailure {
	return slices.Clone(a.failures)
}

// BatchRunner runs batches against a Generator.
type BatchRunner struct {
	gen   *Generator
	delay time.Duration
	log   *logging.Logger
	sleep func(context.Context, time.Duration) error
}

// NewBatchRunner creates a BatchRunner. cfg.PageDelay spaces calls in
// pages mode.
func NewBatchRunner(gen *Generator, cfg Config, log *logging.Logger) *BatchRunner {
	if log == nil {
		log = logging.Nop()
	}
	return &BatchRunner{gen: gen, delay: cfg.PageDelay, log: log, sleep: sleepContext}
}

// Run generates every page of b into acc. With FailAbort the first
// error is returned; with FailSkip failures land in acc and Run returns
// nil. Invalid batches and cancellation are always returned.
func (r *BatchRunner) Run(ctx context.Context, b Batch, acc *Accumulator) error {
	if strings.TrimSpace(b.Theme) == "" {
		return ErrEmptyTheme
	}
	if len(b.TemplateIDs) == 0 {
		return ErrNoTemplates
	}
	if _, err := r.gen.Catalog().Resolve(b.TemplateIDs); err != nil {
		return err
	}

	switch b.Mode {
	case ModeStory:
		return r.runStory(ctx, b, acc)
	case ModePages:
		return r.runPages(ctx, b, acc)
	}
	return fmt.Errorf("unknown mode %q", b.Mode)
}

func (r *BatchRunner) runStory(ctx context.Context, b Batch, acc *Accumulator) error {
	records, err := r.gen.Generate(ctx, Request{
		Theme:       b.Theme,
		TemplateIDs: b.TemplateIDs,
		ExpectArray: true,
	})
	if err != nil {
		if ctx.Err() != nil || b.OnFailure != FailSkip {
			return fmt.Errorf("story: %w", err)
		}
		r.log.Warn("story failed, skipping all pages", "pages", len(b.TemplateIDs), "error", err)
		for i, id := range b.TemplateIDs {
			acc.fail(PageFailure{Page: i + 1, TemplateID: id, Err: err})
		}
		return nil
	}
	acc.add(records...)
	return nil
}

func (r *BatchRunner) runPages(ctx context.Context, b Batch, acc *Accumulator) error {
	for i, id := range b.TemplateIDs {
		if i > 0 {
			if err := r.sleep(ctx, r.delay); err != nil {
				return err
			}
		}

		r.log.Info("generating page", "page", i+1, "of", len(b.TemplateIDs), "template", id)
		records, err := r.gen.Generate(ctx, Request{
			Theme:       b.Theme,
			TemplateIDs: []string{id},
		})
		if err != nil {
			if ctx.Err() != nil || b.OnFailure != FailSkip {
				return fmt.Errorf("page %d (%s): %w", i+1, id, err)
			}
			r.log.Warn("page failed, skipping", "page", i+1, "template", id, "error", err)
			acc.fail(PageFailure{Page: i + 1, TemplateID: id, Err: err})
			continue
		}
		acc.add(records...)
	}
	return nil
}
