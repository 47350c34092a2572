package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/escapebook/internal/book"
	"github.com/abhisek/escapebook/internal/ui/theme"
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Review, edit and export stored books",
}

var bookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored books",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		books, err := s.BookRepo().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list books: %w", err)
		}
		if len(books) == 0 {
			fmt.Println("No books yet. Create one with: escapebook generate --theme ...")
			return nil
		}

		fmt.Printf("%-8s  %-19s  %5s  %s\n", "ID", "Created", "Pages", "Theme")
		fmt.Println(theme.Rule(72))
		for _, b := range books {
			fmt.Printf("%-8s  %-19s  %5d  %s\n",
				shortID(b.ID),
				b.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				b.Pages,
				b.Theme,
			)
		}
		return nil
	},
}

var bookShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show every page of a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		b, err := s.BookRepo().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printBook(b)
		return nil
	},
}

var bookEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of one page",
	Example: `  escapebook book edit 1a2b --page 2 --code 524
  escapebook book edit 1a2b --page 1 --image ./art/page1.png`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")

		edit := book.Edit{
			Title:       changed(cmd, "title"),
			Task:        changed(cmd, "task"),
			Code:        changed(cmd, "code"),
			ImagePrompt: changed(cmd, "prompt"),
			ImagePath:   changed(cmd, "image"),
		}
		if edit.Empty() {
			return fmt.Errorf("nothing to change: pass --title, --task, --code, --prompt or --image")
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		b, err := s.BookRepo().Get(ctx, args[0])
		if err != nil {
			return err
		}
		if err := b.Apply(page-1, edit); err != nil {
			return err
		}
		if err := s.BookRepo().SavePage(ctx, b, page-1); err != nil {
			return fmt.Errorf("save page: %w", err)
		}

		printPage(page, b.Pages[page-1])
		return nil
	},
}

var bookExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a book as printable HTML or Markdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatVal, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		format, err := book.ParseFormat(formatVal)
		if err != nil {
			return err
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		b, err := s.BookRepo().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		path, err := book.Export(b, format, out)
		if err != nil {
			return err
		}
		fmt.Println(theme.OK.Render("Exported"), path)
		if format == book.FormatHTML {
			fmt.Println(theme.Hint.Render("Open it in a browser and print to PDF (A4)."))
		}
		return nil
	},
}

var bookDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.BookRepo().Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Deleted", args[0])
		return nil
	},
}

// changed returns the flag value when the flag was passed, else nil.
func changed(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printBook(b *book.Book) {
	fmt.Println(theme.Title.Render(b.Theme), theme.Label.Render("("+shortID(b.ID)+")"))
	for i, p := range b.Pages {
		printPage(i+1, p)
	}
}

func printPage(n int, p book.Page) {
	var sb strings.Builder
	sb.WriteString(theme.Heading.Render(fmt.Sprintf("%d. %s", n, p.Title)))
	sb.WriteString("\n\n")
	sb.WriteString(p.Task)
	sb.WriteString("\n\n")
	sb.WriteString(theme.Field("Code", theme.Code.Render(p.Code)))
	sb.WriteString("\n")
	sb.WriteString(theme.Field("Template", p.TemplateID))
	sb.WriteString("\n")
	if p.ImagePath != "" {
		sb.WriteString(theme.Field("Image", p.ImagePath))
	} else {
		sb.WriteString(theme.Field("Prompt", theme.Hint.Render(p.ImagePrompt)))
	}
	fmt.Println(theme.Card.Render(sb.String()))
}

func init() {
	bookEditCmd.Flags().Int("page", 0, "Page number, starting at 1 (required)")
	bookEditCmd.Flags().String("title", "", "New page title")
	bookEditCmd.Flags().String("task", "", "New task text")
	bookEditCmd.Flags().String("code", "", "New secret code")
	bookEditCmd.Flags().String("prompt", "", "New image prompt")
	bookEditCmd.Flags().String("image", "", "Path or URL of the page illustration (empty clears)")
	_ = bookEditCmd.MarkFlagRequired("page")

	bookExportCmd.Flags().StringP("format", "f", string(book.FormatHTML), "Export format: html or md")
	bookExportCmd.Flags().StringP("out", "o", ".", "Output directory")

	bookCmd.AddCommand(bookListCmd)
	bookCmd.AddCommand(bookShowCmd)
	bookCmd.AddCommand(bookEditCmd)
	bookCmd.AddCommand(bookExportCmd)
	bookCmd.AddCommand(bookDeleteCmd)
}
