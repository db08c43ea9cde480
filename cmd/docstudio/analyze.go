package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jonathan/docstudio/internal/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Summarize, review clarity or suggest improvements for a document",
	Long:  `Reads content from a file ("-" for stdin) and prints the analysis.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var rewriteCmd = &cobra.Command{
	Use:   "rewrite <file>",
	Short: "Shorten, lengthen, formalize or simplify a document",
	Long:  `Reads content from a file ("-" for stdin) and prints the rewritten text.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRewrite,
}

var (
	analyzeKind     string
	rewriteKind     string
	contentLanguage string
	contentTone     string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeKind, "kind", "k", string(types.AnalysisSummary), "Analysis: summary, clarity or improvements")
	rewriteCmd.Flags().StringVarP(&rewriteKind, "kind", "k", "", "Rewrite: shorten, lengthen, formal or simplify (required)")
	for _, cmd := range []*cobra.Command{analyzeCmd, rewriteCmd} {
		cmd.Flags().StringVarP(&contentLanguage, "language", "l", "", "Language of the result")
		cmd.Flags().StringVarP(&contentTone, "tone", "t", "", "Tone of the result")
	}

	if err := rewriteCmd.MarkFlagRequired("kind"); err != nil {
		panic(fmt.Sprintf("failed to mark kind flag as required: %v", err))
	}

	rootCmd.AddCommand(analyzeCmd, rewriteCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	content, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	generator, client, err := newGenerator(cmd.Context(), cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	prefs, err := loadPreferences(preferencesFor(contentLanguage, contentTone))
	if err != nil {
		return err
	}
	text, err := generator.Analyze(cmd.Context(), types.AnalysisRequest{
		Content:  content,
		Kind:     types.AnalysisKind(analyzeKind),
		Language: types.Language(prefs.Language),
		Tone:     types.Tone(prefs.Tone),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func runRewrite(cmd *cobra.Command, args []string) error {
	content, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	generator, client, err := newGenerator(cmd.Context(), cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	prefs, err := loadPreferences(preferencesFor(contentLanguage, contentTone))
	if err != nil {
		return err
	}
	text, err := generator.Rewrite(cmd.Context(), types.RewriteRequest{
		Content:  content,
		Kind:     types.RewriteKind(rewriteKind),
		Language: types.Language(prefs.Language),
		Tone:     types.Tone(prefs.Tone),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
