package cli

import (
	"fmt"

	"atscan/internal/ai"
	"atscan/internal/common"
	"atscan/internal/flow"
	"atscan/internal/history"
	"atscan/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file]",
	Short: "Analyze a resume for ATS compatibility",
	Long: `Analyze a resume file the way an applicant tracking system would.
The command takes one argument: the path to the resume file (PDF or DOCX,
up to 5 MB).

The analysis includes:
- An overall 0-100 compatibility score
- Section-by-section findings and suggestions
- Keywords already present and keywords worth adding

The result is appended to the local history so score trends can be charted
with the history command.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		if err := common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats); err != nil {
			return err
		}
		return resolveLanguageFlag(cmd, &analyzeConfig)
	},
	RunE: runAnalyze,
}

var analyzeConfig common.CommandConfig
var analyzeLanguage string

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	analyzeCmd.Flags().StringVarP(&analyzeLanguage, "language", "l", "", "Output language: en or ar (default from config)")

	// Add completion for format flag
	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
	_ = analyzeCmd.RegisterFlagCompletionFunc("language", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"en", "ar"}, cobra.ShellCompDirectiveNoFileComp
	})
}

// resolveLanguageFlag fills the command config language from the flag or the
// configured default
func resolveLanguageFlag(cmd *cobra.Command, cmdConfig *common.CommandConfig) error {
	cfg := getConfigFromContext(cmd.Context())

	if analyzeLanguage == "" {
		cmdConfig.Language = cfg.Language()
		return nil
	}

	lang := types.Language(analyzeLanguage)
	if !lang.Valid() {
		return fmt.Errorf("unsupported language: %s (must be 'en' or 'ar')", analyzeLanguage)
	}
	cmdConfig.Language = lang
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	aiService, err := ai.NewService(&cfg.AI, logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}
	defer func() {
		if closeErr := aiService.Close(); closeErr != nil {
			logger.Warn("Failed to close AI service", "error", closeErr)
		}
	}()

	store := history.NewStore(cfg.History.Dir, logger)
	controller := flow.NewController(cfg.UploadGate(), aiService, store, analyzeConfig.Language, logger)

	if err := common.RunAnalysis(cmd.Context(), logger, analyzeConfig, args[0], controller); err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}

	logger.Info("Resume analysis completed successfully")
	return nil
}
