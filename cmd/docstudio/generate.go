package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/docstudio/internal/export"
	"github.com/jonathan/docstudio/internal/observability"
	"github.com/jonathan/docstudio/internal/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate a document or spreadsheet from a prompt",
	Long: "Generates content for the prompt, records it in history and prints it. " +
		"With --export the result is also encoded as a DOCX, PDF, XLSX or text file.",
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

var (
	generateKind     string
	generateLanguage string
	generateTone     string
	generateOut      string
	generateExport   bool
	generateFlags    customizationFlags
)

func init() {
	generateCmd.Flags().StringVarP(&generateKind, "kind", "k", "", "Output kind: text, docx, pdf or xlsx (default text)")
	generateCmd.Flags().StringVarP(&generateLanguage, "language", "l", "", "Language of the generated content")
	generateCmd.Flags().StringVarP(&generateTone, "tone", "t", "", "Tone of the generated content")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "Write the generated content to this file")
	generateCmd.Flags().BoolVar(&generateExport, "export", false, "Also export the result in its kind's format")
	generateFlags.register(generateCmd)
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	flags := generateFlags.preferences()
	flags.Kind, flags.Language, flags.Tone = generateKind, generateLanguage, generateTone
	prefs, err := loadPreferences(flags)
	if err != nil {
		return err
	}
	if prefs.Kind == "" {
		prefs.Kind = string(types.KindText)
	}
	kind, err := types.ParseOutputKind(prefs.Kind)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	bundle, err := buildBundle(prefs, cfg.MaxLogoBytes)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := slog.Default()
	generator, client, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	result, err := generator.GenerateResult(ctx, types.GenerationRequest{
		Prompt:   args[0],
		Kind:     kind,
		Language: types.Language(prefs.Language),
		Tone:     types.Tone(prefs.Tone),
	}, bundle)
	if err != nil {
		return err
	}

	cache, closeHistory, err := openHistory(ctx, cfg, logger)
	if err != nil {
		logger.Warn("history unavailable, result not recorded", "error", err)
	} else {
		defer closeHistory()
		cache.Add(ctx, *result)
	}

	printer := observability.NewPrinter(cmd.ErrOrStderr())
	if verbose {
		printer.PrintResult(result)
	}

	if generateOut != "" {
		if err := writeOutput(generateOut, []byte(result.Content)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", generateOut)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), result.Content)
	}

	if generateExport {
		artifact, err := export.Encode(ctx, kind, result.Content, bundle, "", export.WithLogger(logger))
		if err != nil {
			return err
		}
		path := filepath.Join(prefs.OutputDir, artifact.Filename)
		if err := writeOutput(path, artifact.Data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", path)
	}
	return nil
}
