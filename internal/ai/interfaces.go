package ai

import (
	"context"

	"atscan/internal/types"
)

// Provider is the boundary to the external analysis service. Failures are
// classified into the NETWORK / SERVICE / MALFORMED_RESPONSE / UNKNOWN error
// codes; callers must branch on those codes only, never on raw detail.
type Provider interface {
	AnalyzeResume(ctx context.Context, input types.AnalyzeResumeInput) (types.AnalysisResult, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}
