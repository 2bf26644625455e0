package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"atscan/internal/i18n"
	"atscan/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// Registry manages all available formatters. Rendering language is fixed at
// construction so every formatter in one registry renders consistently.
type Registry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
	lang       types.Language
}

// NewRegistry creates a formatter registry with default formatters for the
// given output language
func NewRegistry(lang types.Language) *Registry {
	if !lang.Valid() {
		lang = types.LanguageEnglish
	}
	bundle := i18n.NewBundle()

	registry := &Registry{
		formatters: make(map[string]map[string]Formatter),
		lang:       lang,
	}

	registry.Register("json", "any", &JSONFormatter{})
	registry.Register("text", "AnalysisResult", &AnalysisTextFormatter{bundle: bundle, lang: lang})
	registry.Register("markdown", "AnalysisResult", &AnalysisMarkdownFormatter{bundle: bundle, lang: lang})
	registry.Register("text", "History", &HistoryTextFormatter{bundle: bundle, lang: lang})
	registry.Register("markdown", "History", &HistoryMarkdownFormatter{bundle: bundle, lang: lang})
	registry.Register("svg", "History", &HistoryChartFormatter{bundle: bundle, lang: lang})

	return registry
}

// Register registers a formatter for a specific format and data type
func (r *Registry) Register(format, dataType string, formatter Formatter) {
	if r.formatters[format] == nil {
		r.formatters[format] = make(map[string]Formatter)
	}
	r.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (r *Registry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := r.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (r *Registry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(r.formatters))
	for format := range r.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalysisResult:
		return "AnalysisResult"
	case []types.HistoricAnalysisResult:
		return "History"
	default:
		return "any"
	}
}

// clampScore bounds a score to the displayable 0-100 range so an
// out-of-range value degrades instead of breaking the rendering
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ScoreBand classifies a score into the display band
func ScoreBand(score int) string {
	switch s := clampScore(score); {
	case s >= 85:
		return "strong"
	case s >= 60:
		return "moderate"
	default:
		return "weak"
	}
}

// bandColor returns the display color for a score
func bandColor(score int) string {
	switch ScoreBand(score) {
	case "strong":
		return "#10b981"
	case "moderate":
		return "#f59e0b"
	default:
		return "#ef4444"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// AnalysisTextFormatter handles text formatting for analysis results
type AnalysisTextFormatter struct {
	bundle *i18n.Bundle
	lang   types.Language
}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected AnalysisResult, got %T", data)
	}

	t := func(key string) string { return atf.bundle.T(atf.lang, key) }
	var output strings.Builder

	output.WriteString("=== " + strings.ToUpper(t("analysis_report")) + " ===\n\n")
	output.WriteString(fmt.Sprintf("%s: %d/100\n\n", t("overall_score"), clampScore(result.OverallScore)))
	output.WriteString(t("summary") + ":\n")
	output.WriteString(result.Summary)
	output.WriteString("\n\n")

	output.WriteString("=== " + strings.ToUpper(t("sections_feedback")) + " ===\n\n")
	for i, section := range result.Sections {
		output.WriteString(fmt.Sprintf("%d. %s (%s: %d/100)\n", i+1, section.SectionName, t("score"), clampScore(section.Score)))
		if len(section.Findings) > 0 {
			output.WriteString("   " + t("findings") + ":\n")
			for _, finding := range section.Findings {
				output.WriteString(fmt.Sprintf("   - %s\n", finding))
			}
		}
		if len(section.Suggestions) > 0 {
			output.WriteString("   " + t("suggestions") + ":\n")
			for _, suggestion := range section.Suggestions {
				output.WriteString(fmt.Sprintf("   - %s\n", suggestion))
			}
		}
		output.WriteString("\n")
	}

	output.WriteString("=== " + strings.ToUpper(t("keywords_analysis")) + " ===\n")
	if len(result.Keywords.Identified) > 0 {
		output.WriteString(t("identified_keywords") + ":\n")
		for _, keyword := range result.Keywords.Identified {
			output.WriteString(fmt.Sprintf("- %s\n", keyword))
		}
		output.WriteString("\n")
	}
	if len(result.Keywords.Suggestions) > 0 {
		output.WriteString(t("suggested_keywords") + ":\n")
		output.WriteString(t("keywords_suggestion_intro") + "\n")
		for _, keyword := range result.Keywords.Suggestions {
			output.WriteString(fmt.Sprintf("- %s\n", keyword))
		}
	}

	return output.String(), nil
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return "AnalysisResult"
}

// AnalysisMarkdownFormatter handles markdown formatting for analysis results
type AnalysisMarkdownFormatter struct {
	bundle *i18n.Bundle
	lang   types.Language
}

func (amf *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected AnalysisResult, got %T", data)
	}

	t := func(key string) string { return amf.bundle.T(amf.lang, key) }
	var output strings.Builder

	output.WriteString("# " + t("analysis_report") + "\n\n")
	output.WriteString(fmt.Sprintf("**%s:** %d/100\n\n", t("overall_score"), clampScore(result.OverallScore)))
	output.WriteString("## " + t("summary") + "\n\n")
	output.WriteString(result.Summary)
	output.WriteString("\n\n")

	output.WriteString("## " + t("sections_feedback") + "\n\n")
	for _, section := range result.Sections {
		output.WriteString(fmt.Sprintf("### %s\n\n", section.SectionName))
		output.WriteString(fmt.Sprintf("**%s:** %d/100\n\n", t("score"), clampScore(section.Score)))
		if len(section.Findings) > 0 {
			output.WriteString("**" + t("findings") + ":**\n")
			for _, finding := range section.Findings {
				output.WriteString(fmt.Sprintf("- %s\n", finding))
			}
			output.WriteString("\n")
		}
		if len(section.Suggestions) > 0 {
			output.WriteString("**" + t("suggestions") + ":**\n")
			for _, suggestion := range section.Suggestions {
				output.WriteString(fmt.Sprintf("- %s\n", suggestion))
			}
			output.WriteString("\n")
		}
	}

	output.WriteString("## " + t("keywords_analysis") + "\n\n")
	if len(result.Keywords.Identified) > 0 {
		output.WriteString("### " + t("identified_keywords") + "\n\n")
		for _, keyword := range result.Keywords.Identified {
			output.WriteString(fmt.Sprintf("- %s\n", keyword))
		}
		output.WriteString("\n")
	}
	if len(result.Keywords.Suggestions) > 0 {
		output.WriteString("### " + t("suggested_keywords") + "\n\n")
		output.WriteString(t("keywords_suggestion_intro") + "\n\n")
		for _, keyword := range result.Keywords.Suggestions {
			output.WriteString(fmt.Sprintf("- %s\n", keyword))
		}
	}

	return output.String(), nil
}

func (amf *AnalysisMarkdownFormatter) SupportedType() string {
	return "AnalysisResult"
}

// HistoryTextFormatter handles text formatting for the analysis history
type HistoryTextFormatter struct {
	bundle *i18n.Bundle
	lang   types.Language
}

func (htf *HistoryTextFormatter) Format(data any) (string, error) {
	history, ok := data.([]types.HistoricAnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected history entries, got %T", data)
	}

	t := func(key string) string { return htf.bundle.T(htf.lang, key) }
	var output strings.Builder

	output.WriteString("=== " + strings.ToUpper(t("score_history")) + " ===\n\n")
	if len(history) == 0 {
		output.WriteString(t("history_empty") + "\n")
		return output.String(), nil
	}

	for i, entry := range history {
		output.WriteString(fmt.Sprintf("%d. %s: %s, %s: %d/100\n",
			i+1,
			t("date"), i18n.FormatShortDate(htf.lang, entry.Date),
			t("overall_score"), clampScore(entry.OverallScore)))
		output.WriteString("   " + entry.Summary + "\n\n")
	}

	return output.String(), nil
}

func (htf *HistoryTextFormatter) SupportedType() string {
	return "History"
}

// HistoryMarkdownFormatter handles markdown formatting for the analysis history
type HistoryMarkdownFormatter struct {
	bundle *i18n.Bundle
	lang   types.Language
}

func (hmf *HistoryMarkdownFormatter) Format(data any) (string, error) {
	history, ok := data.([]types.HistoricAnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected history entries, got %T", data)
	}

	t := func(key string) string { return hmf.bundle.T(hmf.lang, key) }
	var output strings.Builder

	output.WriteString("# " + t("score_history") + "\n\n")
	if len(history) == 0 {
		output.WriteString(t("history_empty") + "\n")
		return output.String(), nil
	}

	output.WriteString(fmt.Sprintf("| %s | %s | %s |\n", t("date"), t("overall_score"), t("summary")))
	output.WriteString("| --- | --- | --- |\n")
	for _, entry := range history {
		summary := strings.ReplaceAll(entry.Summary, "|", "\\|")
		output.WriteString(fmt.Sprintf("| %s | %d/100 | %s |\n",
			i18n.FormatShortDate(hmf.lang, entry.Date),
			clampScore(entry.OverallScore),
			summary))
	}

	return output.String(), nil
}

func (hmf *HistoryMarkdownFormatter) SupportedType() string {
	return "History"
}
