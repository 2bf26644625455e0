package ai

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"atscan/internal/config"
	"atscan/internal/errors"
	"atscan/internal/types"

	"google.golang.org/genai"
)

func testAIConfig() *config.AIConfig {
	return &config.AIConfig{
		Provider:    "gemini",
		Model:       "gemini-2.5-flash",
		Timeout:     60 * time.Second,
		MaxRetries:  2,
		Temperature: 0.2,
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         60 * time.Second,
			Timeout:          30 * time.Second,
			MinRequests:      5,
			FailureThreshold: 0.6,
		},
	}
}

func TestValidateAnalysisShape(t *testing.T) {
	valid := types.AnalysisResult{
		OverallScore: 78,
		Summary:      "Solid resume with room to grow.",
		Sections: []types.SectionFeedback{
			{SectionName: "Experience", Score: 80, Findings: []string{"clear"}, Suggestions: []string{"quantify impact"}},
		},
		Keywords: types.KeywordsResult{
			Identified:  []string{"Go"},
			Suggestions: []string{"Kubernetes"},
		},
	}

	tests := []struct {
		name    string
		mutate  func(*types.AnalysisResult)
		wantErr bool
	}{
		{"complete result passes", func(r *types.AnalysisResult) {}, false},
		{"missing summary rejected", func(r *types.AnalysisResult) { r.Summary = "" }, true},
		{"negative score rejected", func(r *types.AnalysisResult) { r.OverallScore = -1 }, true},
		{"score above 100 rejected", func(r *types.AnalysisResult) { r.OverallScore = 101 }, true},
		{"no sections rejected", func(r *types.AnalysisResult) { r.Sections = nil }, true},
		{"unnamed section rejected", func(r *types.AnalysisResult) { r.Sections[0].SectionName = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := valid
			result.Sections = append([]types.SectionFeedback(nil), valid.Sections...)
			tt.mutate(&result)

			err := validateAnalysisShape(&result)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateAnalysisShape() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildAnalysisConfig(t *testing.T) {
	g := &GeminiProvider{config: testAIConfig()}

	cfg := g.buildAnalysisConfig(types.LanguageArabic)

	if cfg.ResponseMIMEType != "application/json" {
		t.Errorf("ResponseMIMEType = %s, want application/json", cfg.ResponseMIMEType)
	}
	if cfg.Temperature == nil || *cfg.Temperature != 0.2 {
		t.Errorf("Temperature not applied from config")
	}

	schema := cfg.ResponseSchema
	for _, field := range []string{"overallScore", "summary", "sections", "keywords"} {
		if _, ok := schema.Properties[field]; !ok {
			t.Errorf("response schema missing property %q", field)
		}
	}
	sections := schema.Properties["sections"]
	if sections.Type != genai.TypeArray {
		t.Errorf("sections schema type = %v, want array", sections.Type)
	}
	for _, field := range []string{"sectionName", "score", "findings", "suggestions"} {
		if _, ok := sections.Items.Properties[field]; !ok {
			t.Errorf("section item schema missing property %q", field)
		}
	}
	for _, field := range []string{"findings", "suggestions"} {
		prop := sections.Items.Properties[field]
		if prop.Type != genai.TypeArray || prop.Items == nil || prop.Items.Type != genai.TypeString {
			t.Errorf("%s schema = %+v, want array of strings", field, prop)
		}
	}

	instruction := cfg.SystemInstruction.Parts[0].Text
	if !strings.Contains(instruction, "must be in Arabic") {
		t.Errorf("system instruction missing Arabic directive: %q", instruction)
	}
	if !strings.Contains(instruction, "ATS") {
		t.Errorf("system instruction missing analyzer role")
	}
}

func TestBuildAnalysisConfigCustomInstruction(t *testing.T) {
	cfg := testAIConfig()
	cfg.SystemInstruction = "Custom analyzer instruction."
	g := &GeminiProvider{config: cfg}

	got := g.buildAnalysisConfig(types.LanguageEnglish).SystemInstruction.Parts[0].Text
	if !strings.HasPrefix(got, "Custom analyzer instruction.") {
		t.Errorf("custom instruction not used: %q", got)
	}
	if !strings.Contains(got, "must be in English") {
		t.Errorf("language directive missing from custom instruction: %q", got)
	}
}

func TestSchemaConformantReplyDecodes(t *testing.T) {
	// Payload shaped exactly like a reply that satisfies the response schema.
	reply := `{
		"overallScore": 72,
		"summary": "Good base, thin on metrics.",
		"sections": [
			{
				"sectionName": "Experience",
				"score": 70,
				"findings": ["Roles listed chronologically.", "No quantified outcomes."],
				"suggestions": ["Add impact numbers"]
			}
		],
		"keywords": {"identified": ["Go"], "suggestions": ["gRPC"]}
	}`

	var result types.AnalysisResult
	if err := json.Unmarshal([]byte(reply), &result); err != nil {
		t.Fatalf("schema-conformant reply failed to decode: %v", err)
	}
	if err := validateAnalysisShape(&result); err != nil {
		t.Fatalf("decoded result failed validation: %v", err)
	}
	if len(result.Sections[0].Findings) != 2 {
		t.Errorf("Findings = %v, want two entries", result.Sections[0].Findings)
	}
}

func TestCircuitBreakerDisabledPassesThrough(t *testing.T) {
	cfg := testAIConfig()
	cfg.CircuitBreaker.Enabled = false

	cb := NewCircuitBreaker(cfg, nil)
	if cb != nil {
		t.Fatal("disabled breaker should be nil")
	}

	called := false
	_, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
		called = true
		return nil, nil
	})
	if err != nil || !called {
		t.Errorf("nil breaker must execute directly, called=%v err=%v", called, err)
	}
	if !cb.IsHealthy() {
		t.Error("nil breaker should report healthy")
	}
	if stats := cb.GetStats(); stats["enabled"] != false {
		t.Errorf("nil breaker stats = %v", stats)
	}
}

func TestExtractTokenUsage(t *testing.T) {
	if extractTokenUsage(nil) != nil {
		t.Error("nil response should yield nil usage")
	}
	if extractTokenUsage(&genai.GenerateContentResponse{}) != nil {
		t.Error("missing metadata should yield nil usage")
	}

	resp := &genai.GenerateContentResponse{
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     1200,
			CandidatesTokenCount: 800,
			TotalTokenCount:      2000,
		},
	}
	usage := extractTokenUsage(resp)
	if usage == nil {
		t.Fatal("expected usage")
	}
	if usage.InputTokens != 1200 || usage.OutputTokens != 800 || usage.TotalTokens != 2000 {
		t.Errorf("usage = %+v", usage)
	}
}

func TestNewServiceRejectsUnknownProvider(t *testing.T) {
	cfg := testAIConfig()
	cfg.Provider = "watson"

	logger, err := errors.New("error")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewService(cfg, logger); err == nil {
		t.Error("expected error for unsupported provider")
	}
}
