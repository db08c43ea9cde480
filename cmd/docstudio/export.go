package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/docstudio/internal/config"
	"github.com/jonathan/docstudio/internal/export"
	"github.com/jonathan/docstudio/internal/types"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export content as DOCX, PDF, XLSX or text",
	Long: "Encodes content from a file (\"-\" for stdin) in the chosen format. " +
		"Spreadsheet export expects a JSON array of row objects.",
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var (
	exportFormat string
	exportOut    string
	exportFlags  customizationFlags
)

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output formats, comma separated: docx, pdf, xlsx or text (required)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: document.<ext> or spreadsheet.xlsx)")
	exportFlags.register(exportCmd)

	if err := exportCmd.MarkFlagRequired("format"); err != nil {
		panic(fmt.Sprintf("failed to mark format flag as required: %v", err))
	}

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	var kinds []types.OutputKind
	for _, name := range strings.Split(exportFormat, ",") {
		kind, err := types.ParseOutputKind(name)
		if err != nil {
			return err
		}
		kinds = append(kinds, kind)
	}
	content, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}
	prefs, err := loadPreferences(exportFlags.preferences())
	if err != nil {
		return err
	}
	maxLogoBytes, err := logoLimit()
	if err != nil {
		return err
	}

	var paths []string
	if len(kinds) == 1 {
		path, err := exportContent(cmd.Context(), kinds[0], content, prefs, maxLogoBytes, exportOut)
		if err != nil {
			return err
		}
		paths = append(paths, path)
	} else {
		if exportOut != "" {
			return fmt.Errorf("--out cannot be used with several formats; set output_dir in --config instead")
		}
		paths, err = exportMany(cmd.Context(), kinds, content, prefs, maxLogoBytes)
		if err != nil {
			return err
		}
	}
	for _, path := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", path)
	}
	return nil
}

// exportMany encodes content in every kind at once and writes the default-named files to prefs.OutputDir.
// Nothing is written unless every encoder succeeded.
func exportMany(ctx context.Context, kinds []types.OutputKind, content string, prefs config.Preferences, maxLogoBytes int64) ([]string, error) {
	bundle, err := buildBundle(prefs, maxLogoBytes)
	if err != nil {
		return nil, err
	}
	artifacts, err := export.EncodeAll(ctx, content, bundle, kinds, export.WithLogger(slog.Default()))
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		path := filepath.Join(prefs.OutputDir, artifact.Filename)
		if err := writeOutput(path, artifact.Data); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// exportContent encodes content and writes it to out, or to the default name in prefs.OutputDir.
func exportContent(ctx context.Context, kind types.OutputKind, content string, prefs config.Preferences, maxLogoBytes int64, out string) (string, error) {
	bundle, err := buildBundle(prefs, maxLogoBytes)
	if err != nil {
		return "", err
	}

	artifact, err := export.Encode(ctx, kind, content, bundle, filepath.Base(out), export.WithLogger(slog.Default()))
	if err != nil {
		return "", err
	}

	path := out
	if path == "" {
		path = filepath.Join(prefs.OutputDir, artifact.Filename)
	} else {
		path = filepath.Join(filepath.Dir(out), artifact.Filename)
	}
	if err := writeOutput(path, artifact.Data); err != nil {
		return "", err
	}
	return path, nil
}
