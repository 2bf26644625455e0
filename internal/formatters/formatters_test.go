package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"atscan/internal/types"
)

func sampleResult() types.AnalysisResult {
	return types.AnalysisResult{
		OverallScore: 78,
		Summary:      "Decent resume overall.",
		Sections: []types.SectionFeedback{
			{SectionName: "Experience", Score: 82, Findings: []string{"Reads well.", "Strong action verbs."}, Suggestions: []string{"Quantify impact"}},
			{SectionName: "Skills", Score: 65, Findings: []string{"Sparse."}, Suggestions: []string{"Group by category"}},
		},
		Keywords: types.KeywordsResult{
			Identified:  []string{"Go", "PostgreSQL"},
			Suggestions: []string{"Kubernetes", "Terraform"},
		},
	}
}

func sampleHistory() []types.HistoricAnalysisResult {
	return []types.HistoricAnalysisResult{
		{AnalysisResult: types.AnalysisResult{OverallScore: 78, Summary: "second run"}, Date: 1741352400000},
		{AnalysisResult: types.AnalysisResult{OverallScore: 60, Summary: "first run"}, Date: 1741266000000},
	}
}

func TestScoreBand(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, "strong"},
		{85, "strong"},
		{84, "moderate"},
		{60, "moderate"},
		{59, "weak"},
		{0, "weak"},
		{-5, "weak"},    // clamped
		{150, "strong"}, // clamped
	}
	for _, tt := range tests {
		if got := ScoreBand(tt.score); got != tt.want {
			t.Errorf("ScoreBand(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestAnalysisTextFormatter(t *testing.T) {
	registry := NewRegistry(types.LanguageEnglish)

	out, err := registry.Format(sampleResult(), "text")
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"ANALYSIS REPORT",
		"Overall Score: 78/100",
		"Experience",
		"   - Reads well.",
		"   - Strong action verbs.",
		"Quantify impact",
		"Identified Keywords",
		"Kubernetes",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q\n%s", want, out)
		}
	}
}

func TestAnalysisMarkdownFormatterListsFindings(t *testing.T) {
	registry := NewRegistry(types.LanguageEnglish)

	out, err := registry.Format(sampleResult(), "markdown")
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"- Reads well.",
		"- Strong action verbs.",
		"- Sparse.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing finding bullet %q\n%s", want, out)
		}
	}
}

func TestAnalysisMarkdownFormatterArabic(t *testing.T) {
	registry := NewRegistry(types.LanguageArabic)

	out, err := registry.Format(sampleResult(), "markdown")
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(out, "# تقرير التحليل") {
		t.Errorf("arabic markdown missing localized title\n%s", out)
	}
	if !strings.Contains(out, "التقييم العام") {
		t.Errorf("arabic markdown missing overall score label")
	}
}

func TestJSONFormatterRoundTrip(t *testing.T) {
	registry := NewRegistry(types.LanguageEnglish)

	out, err := registry.Format(sampleResult(), "json")
	if err != nil {
		t.Fatal(err)
	}

	var decoded types.AnalysisResult
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("json output does not decode: %v", err)
	}
	if decoded.OverallScore != 78 || len(decoded.Sections) != 2 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestHistoryFormatters(t *testing.T) {
	registry := NewRegistry(types.LanguageEnglish)

	text, err := registry.Format(sampleHistory(), "text")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "SCORE HISTORY") || !strings.Contains(text, "78/100") {
		t.Errorf("history text output:\n%s", text)
	}

	md, err := registry.Format(sampleHistory(), "markdown")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(md, "| Date | Overall Score | Summary |") {
		t.Errorf("history markdown missing table header:\n%s", md)
	}

	empty, err := registry.Format([]types.HistoricAnalysisResult{}, "text")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(empty, "No analyses recorded yet.") {
		t.Errorf("empty history output:\n%s", empty)
	}
}

func TestUnknownFormatRejected(t *testing.T) {
	registry := NewRegistry(types.LanguageEnglish)

	if _, err := registry.Format(sampleResult(), "yaml"); err == nil {
		t.Error("expected error for unregistered format")
	}
}

func TestHistoryChart(t *testing.T) {
	registry := NewRegistry(types.LanguageEnglish)

	svg, err := registry.Format(sampleHistory(), "svg")
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		`viewBox="0 0 500 200"`,
		"<title>Score History</title>",
		`stroke="#4f46e5"`,  // score line
		`fill="#f59e0b"`,    // 78 and 60 are both in the moderate band
		`stroke-dasharray=`, // gridlines
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("chart missing %q\n%s", want, svg)
		}
	}

	// Chronological left to right: the older (60) point sits at the left
	// padding edge, the newer (78) at the right.
	if !strings.Contains(svg, `cx="40.0"`) || !strings.Contains(svg, `cx="460.0"`) {
		t.Errorf("chart points not spread across the x axis\n%s", svg)
	}
}

func TestHistoryChartNeedsTwoPoints(t *testing.T) {
	registry := NewRegistry(types.LanguageEnglish)

	_, err := registry.Format(sampleHistory()[:1], "svg")
	if err == nil {
		t.Error("expected error for single-point chart")
	}
}

func TestHistoryChartArabicDates(t *testing.T) {
	registry := NewRegistry(types.LanguageArabic)

	svg, err := registry.Format(sampleHistory(), "svg")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(svg, "مارس") {
		t.Errorf("arabic chart missing localized month label\n%s", svg)
	}
}
