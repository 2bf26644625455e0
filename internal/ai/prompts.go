package ai

import "atscan/internal/types"

// DefaultSystemInstruction directs the external service to act as an ATS
// analyzer. This text is part of the external interface contract; a config
// override exists for tuning, not for changing the response shape.
const DefaultSystemInstruction = `You are an expert ATS (Applicant Tracking System) resume analyzer. Your task is to review the provided resume and return a detailed analysis in JSON format.
- If the provided document is a scanned image or contains non-selectable text, your first step is to perform Optical Character Recognition (OCR) to accurately extract all text content before analysis.
- Be critical and objective.
- Evaluate the resume's content based on standard ATS parsing rules: clear headings, standard fonts, keyword optimization, and structured data.
- Provide an overall score and a breakdown by standard resume sections (Contact Info, Summary, Experience, Education, Skills, etc.).
- For each section, provide specific findings and actionable suggestions for improvement.
- Also, perform a keyword analysis. Identify the key skills and terms present in the resume. Based on the content, suggest other relevant keywords that could be added to improve its chances of passing through an ATS for relevant job roles.`

// analyzeUserPrompt is the fixed per-request instruction
const analyzeUserPrompt = "Please analyze this resume for ATS compatibility."

// languageDirective returns the instruction selecting the output language of
// all free-text fields
func languageDirective(lang types.Language) string {
	if lang == types.LanguageArabic {
		return "All analysis, feedback, and section names must be in Arabic."
	}
	return "All analysis, feedback, and section names must be in English."
}
