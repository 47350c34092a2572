package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/escapebook/internal/catalog"
	"github.com/abhisek/escapebook/internal/logging"
	"github.com/abhisek/escapebook/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "escapebook",
	Short: "Escape-book page generator",
	Long: `Escapebook drafts themed riddle pages for children's escape books with a
language model, keeps them for review and exports printable books.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnvFile(cmd); err != nil {
			return err
		}
		mode, _ := cmd.Flags().GetString("log")
		if mode == "" {
			mode = os.Getenv("ESCAPEBOOK_LOG")
		}
		l, err := logging.New(mode)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// logger is set once flags are parsed.
var logger = logging.Nop()

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides ESCAPEBOOK_DB env var)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Load environment variables from this file if it exists")
	rootCmd.PersistentFlags().String("log", "", "Log mode: dev, prod or quiet (overrides ESCAPEBOOK_LOG env var)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(bookCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadEnvFile loads --env-file without overriding variables already set.
// A missing default file is fine; a missing explicit one is not.
func loadEnvFile(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("env-file")
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("env-file") {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then ESCAPEBOOK_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// loadCatalog reads ESCAPEBOOK_CATALOG when set, else the built-in catalog.
func loadCatalog() (*catalog.Catalog, error) {
	if p := os.Getenv("ESCAPEBOOK_CATALOG"); p != "" {
		return catalog.LoadFile(p)
	}
	return catalog.Default()
}
