package cli

import (
	"fmt"
	"slices"

	"atscan/internal/common"
	"atscan/internal/history"
	"atscan/internal/types"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past resume analyses and score trends",
	Long: `Show the stored history of past resume analyses, newest first.
At most the five most recent analyses are kept.

In addition to the regular output formats, the history supports 'svg' which
renders the score trend as a line chart (requires at least two analyses).`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if historyConfig.OutputFormat == "" {
			historyConfig.OutputFormat = cfg.App.DefaultFormat
		}
		supported := append(slices.Clone(cfg.App.SupportedFormats), "svg")
		if err := common.ValidateOutputFormat(historyConfig.OutputFormat, supported); err != nil {
			return err
		}
		return resolveHistoryLanguage(cmd)
	},
	RunE: runHistory,
}

var historyConfig common.CommandConfig
var historyLanguage string

func init() {
	historyCmd.Flags().StringVarP(&historyConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	historyCmd.Flags().StringVar(&historyConfig.OutputFormat, "format", "", "Output format: json, text, markdown, or svg")
	historyCmd.Flags().StringVarP(&historyLanguage, "language", "l", "", "Output language: en or ar (default from config)")
}

// resolveHistoryLanguage fills the history command language from the flag or
// the configured default
func resolveHistoryLanguage(cmd *cobra.Command) error {
	cfg := getConfigFromContext(cmd.Context())

	if historyLanguage == "" {
		historyConfig.Language = cfg.Language()
		return nil
	}

	lang := types.Language(historyLanguage)
	if !lang.Valid() {
		return fmt.Errorf("unsupported language: %s (must be 'en' or 'ar')", historyLanguage)
	}
	historyConfig.Language = lang
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	store := history.NewStore(cfg.History.Dir, logger)
	entries := store.Load()

	logger.Debug("Loaded analysis history",
		"entries", len(entries),
		"output_format", historyConfig.OutputFormat)

	outputHandler := common.NewOutputHandler(historyConfig.Language, logger)
	if err := outputHandler.HandleOutput(entries, historyConfig); err != nil {
		return fmt.Errorf("failed to render history: %w", err)
	}

	return nil
}
