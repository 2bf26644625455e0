package formatters

import (
	"fmt"
	"strings"

	"atscan/internal/i18n"
	"atscan/internal/types"
)

// Chart geometry. Scores map linearly onto the vertical band between the
// paddings; dates spread evenly across the horizontal band.
const (
	chartWidth   = 500
	chartHeight  = 200
	chartPadding = 40
)

// HistoryChartFormatter renders the score history as a standalone SVG line
// chart, newest entries on the right
type HistoryChartFormatter struct {
	bundle *i18n.Bundle
	lang   types.Language
}

func (hcf *HistoryChartFormatter) Format(data any) (string, error) {
	history, ok := data.([]types.HistoricAnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected history entries, got %T", data)
	}
	if len(history) < 2 {
		return "", fmt.Errorf("score history chart needs at least 2 entries, have %d", len(history))
	}

	// History is stored newest-first; the chart reads left to right in
	// chronological order.
	points := make([]types.HistoricAnalysisResult, len(history))
	for i, entry := range history {
		points[len(history)-1-i] = entry
	}

	var svg strings.Builder
	svg.WriteString(fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img">`+"\n",
		chartWidth, chartHeight))
	svg.WriteString(fmt.Sprintf("  <title>%s</title>\n", hcf.bundle.T(hcf.lang, "score_history")))

	// Gridlines with score labels
	for _, label := range []int{0, 25, 50, 75, 100} {
		y := chartY(label)
		svg.WriteString(fmt.Sprintf(
			`  <line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#e2e8f0" stroke-dasharray="2,2"/>`+"\n",
			chartPadding, y, chartWidth-chartPadding, y))
		svg.WriteString(fmt.Sprintf(
			`  <text x="%d" y="%.1f" text-anchor="end" font-size="10" fill="#64748b">%d</text>`+"\n",
			chartPadding-10, y, label))
	}

	// Date labels along the x axis
	for i, point := range points {
		svg.WriteString(fmt.Sprintf(
			`  <text x="%.1f" y="%d" text-anchor="middle" font-size="10" fill="#64748b">%s</text>`+"\n",
			chartX(i, len(points)), chartHeight-chartPadding+20,
			i18n.FormatShortDate(hcf.lang, point.Date)))
	}

	// Score line
	var path strings.Builder
	for i, point := range points {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		path.WriteString(fmt.Sprintf("%s %.1f %.1f ", cmd, chartX(i, len(points)), chartY(point.OverallScore)))
	}
	svg.WriteString(fmt.Sprintf(
		`  <path d="%s" fill="none" stroke="#4f46e5" stroke-width="2"/>`+"\n",
		strings.TrimSpace(path.String())))

	// Data points, colored by their score band
	for i, point := range points {
		svg.WriteString(fmt.Sprintf(
			`  <circle cx="%.1f" cy="%.1f" r="4" fill="%s"/>`+"\n",
			chartX(i, len(points)), chartY(point.OverallScore), bandColor(point.OverallScore)))
	}

	svg.WriteString("</svg>\n")
	return svg.String(), nil
}

func (hcf *HistoryChartFormatter) SupportedType() string {
	return "History"
}

func chartX(index, count int) float64 {
	if count == 1 {
		return chartWidth / 2
	}
	return chartPadding + (float64(index)/float64(count-1))*(chartWidth-2*chartPadding)
}

func chartY(score int) float64 {
	return (chartHeight - chartPadding) - (float64(clampScore(score))/100)*(chartHeight-2*chartPadding)
}
