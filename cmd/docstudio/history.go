package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jonathan/docstudio/internal/observability"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, show or clear saved results",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved results, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}
		cache, closeHistory, err := openHistory(cmd.Context(), cfg, slog.Default())
		if err != nil {
			return err
		}
		defer closeHistory()

		observability.NewPrinter(cmd.OutOrStdout()).PrintHistory(cache.List())
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved result and its settings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}
		cache, closeHistory, err := openHistory(cmd.Context(), cfg, slog.Default())
		if err != nil {
			return err
		}
		defer closeHistory()

		result, err := cache.Restore(args[0])
		if err != nil {
			return err
		}
		printer := observability.NewPrinter(cmd.OutOrStdout())
		printer.PrintResult(&result)
		fmt.Fprintln(cmd.OutOrStdout(), result.Content)
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved result",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}
		cache, closeHistory, err := openHistory(cmd.Context(), cfg, slog.Default())
		if err != nil {
			return err
		}
		defer closeHistory()

		n := cache.Len()
		if err := cache.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d saved results\n", n)
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
