package common

import (
	"context"
	"fmt"

	"atscan/internal/errors"
	"atscan/internal/flow"
)

// RunAnalysis encapsulates the common logic of the file-based analyze
// command: read the resume, push it through the controller, report token
// usage, and render the result.
func RunAnalysis(ctx context.Context, logger *errors.Logger, cmdConfig CommandConfig, filename string, controller *flow.Controller) error {
	fileProcessor := NewFileProcessor(logger)
	outputHandler := NewOutputHandler(cmdConfig.Language, logger)

	file, err := fileProcessor.ReadResumeFile(filename)
	if err != nil {
		return err
	}

	if err := controller.SelectFile(file); err != nil {
		return err
	}

	logger.Info("Starting resume analysis",
		"file", file.Name,
		"size", FormatFileSize(file.SizeBytes),
		"mime_type", file.MimeType,
		"language", cmdConfig.Language)

	result, err := controller.Analyze(ctx)
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("analysis produced no result")
	}

	if usage := controller.Snapshot().TokenUsage; usage != nil {
		logger.Info("AI token usage",
			"input_tokens", usage.InputTokens,
			"output_tokens", usage.OutputTokens,
			"total_tokens", usage.TotalTokens)
	}

	return outputHandler.HandleOutput(*result, cmdConfig)
}
