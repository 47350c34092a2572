package cmd

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/escapebook/internal/book"
	"github.com/abhisek/escapebook/internal/llm"
	"github.com/abhisek/escapebook/internal/puzzlegen"
	"github.com/abhisek/escapebook/internal/ui/theme"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a themed escape book",
	Long: `Generate one page per puzzle template and store the result as a book.

Templates come from --puzzle (in order, repeats allowed) or are drawn at
random with --pages. In story mode one request covers the whole book; in
pages mode every page is its own request.`,
	Example: `  escapebook generate --theme "Pirates" --puzzle matching --puzzle hidden_objects
  escapebook generate --theme "Space" --pages 6 --mode pages --on-failure skip`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringP("theme", "t", "", "Book theme (required)")
	f.StringSliceP("puzzle", "p", nil, "Template ID for the next page (repeatable)")
	f.IntP("pages", "n", 0, "Pick this many templates at random instead of --puzzle")
	f.Uint64("seed", 0, "Seed for --pages selection (0 = random)")
	f.String("mode", string(puzzlegen.ModeStory), "Request mode: story or pages")
	f.String("on-failure", string(puzzlegen.FailAbort), "Failed request policy: abort or skip")
	f.Int("max-tokens", puzzlegen.DefaultConfig().MaxTokens, "Maximum response tokens per request")
	f.Float64("temperature", 0, "Sampling temperature (0 = backend default)")
	f.Bool("structured", false, "Ask the backend for schema-constrained JSON")
	f.Duration("delay", puzzlegen.DefaultConfig().PageDelay, "Pause between page requests in pages mode")
	_ = generateCmd.MarkFlagRequired("theme")
	generateCmd.MarkFlagsMutuallyExclusive("puzzle", "pages")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	themeName, _ := f.GetString("theme")
	puzzles, _ := f.GetStringSlice("puzzle")
	pages, _ := f.GetInt("pages")
	seed, _ := f.GetUint64("seed")
	modeVal, _ := f.GetString("mode")
	policyVal, _ := f.GetString("on-failure")

	mode, err := puzzlegen.ParseMode(modeVal)
	if err != nil {
		return err
	}
	policy, err := puzzlegen.ParseFailurePolicy(policyVal)
	if err != nil {
		return err
	}

	cat, err := loadCatalog()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	ids := puzzles
	if len(ids) == 0 {
		if pages <= 0 {
			return errors.New("pass --puzzle at least once or --pages N")
		}
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		ids = cat.Pick(pages, rand.New(rand.NewPCG(seed, seed)))
	}

	llmCfg, err := llm.ConfigFromEnv()
	if err != nil {
		return fmt.Errorf("LLM config: %w", err)
	}

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	provider, err := llm.NewProvider(ctx, llmCfg, s.EventRepo(), logger)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	cfg := puzzlegen.DefaultConfig()
	cfg.Retry = llmCfg.Retry
	cfg.MaxTokens, _ = f.GetInt("max-tokens")
	cfg.Temperature, _ = f.GetFloat64("temperature")
	cfg.StructuredOutput, _ = f.GetBool("structured")
	cfg.PageDelay, _ = f.GetDuration("delay")

	gen := puzzlegen.NewGenerator(cat, provider, cfg, logger)
	runner := puzzlegen.NewBatchRunner(gen, cfg, logger)

	fmt.Printf("Generating %d page(s) on %q with %s (%s mode)...\n",
		len(ids), themeName, provider.ModelID(), mode)

	acc := puzzlegen.NewAccumulator()
	err = runner.Run(ctx, puzzlegen.Batch{
		Theme:       themeName,
		TemplateIDs: ids,
		Mode:        mode,
		OnFailure:   policy,
	}, acc)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	failures := acc.Failures()
	records := acc.Records()
	if len(records) == 0 {
		printFailures(failures)
		return errors.New("no pages were generated")
	}

	b := book.NewBook(themeName, records)
	if err := s.BookRepo().Create(ctx, b); err != nil {
		return fmt.Errorf("save book: %w", err)
	}

	fmt.Println()
	printBook(b)
	printFailures(failures)
	fmt.Println()
	fmt.Println(theme.Hint.Render(fmt.Sprintf("Saved book %s. Export it with: escapebook book export %s", b.ID, shortID(b.ID))))
	return nil
}

func printFailures(failures []puzzlegen.PageFailure) {
	if len(failures) == 0 {
		return
	}
	fmt.Println()
	fmt.Println(theme.Failed.Render(fmt.Sprintf("%d page(s) failed:", len(failures))))
	for _, pf := range failures {
		fmt.Printf("  %s page %d (%s): %v\n", theme.Mark(false), pf.Page, pf.TemplateID, pf.Err)
	}
}
