package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/docstudio/internal/observability"
	"github.com/jonathan/docstudio/internal/preview"
	"github.com/jonathan/docstudio/internal/tabular"
	"github.com/jonathan/docstudio/internal/types"
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Preview content in the terminal",
	Long: "Shows spreadsheet content as a table, or text content with its word count. " +
		"With --html the preview markup served by the API is printed instead.",
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

var (
	previewKind string
	previewHTML bool
)

func init() {
	previewCmd.Flags().StringVarP(&previewKind, "kind", "k", string(types.KindText), "Content kind: text, docx, pdf or xlsx")
	previewCmd.Flags().BoolVar(&previewHTML, "html", false, "Print the HTML preview")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	kind, err := types.ParseOutputKind(previewKind)
	if err != nil {
		return err
	}
	content, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}

	if previewHTML {
		html, err := preview.Render(kind, content)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), html)
		return nil
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	if kind.IsTabular() {
		printer.PrintTable(tabular.Preview(content))
		return nil
	}
	printer.PrintContent(fmt.Sprintf("PREVIEW (%d words)", preview.WordCount(content)), content)
	return nil
}
