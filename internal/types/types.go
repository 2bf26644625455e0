package types

// Language selects the output language for all free-text analysis fields
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageArabic  Language = "ar"
)

// Valid reports whether the language is one of the recognized options
func (l Language) Valid() bool {
	return l == LanguageEnglish || l == LanguageArabic
}

// Direction returns the text direction for the language
func (l Language) Direction() string {
	if l == LanguageArabic {
		return "rtl"
	}
	return "ltr"
}

// AnalyzeResumeInput represents the input for analyzing a resume
type AnalyzeResumeInput struct {
	Data     []byte   `json:"-"`
	MimeType string   `json:"mimeType"`
	Language Language `json:"language"`
}

// SectionFeedback represents the findings for one resume section
type SectionFeedback struct {
	SectionName string   `json:"sectionName"`
	Score       int      `json:"score"` // 0-100 score
	Findings    []string `json:"findings"`
	Suggestions []string `json:"suggestions"`
}

// KeywordsResult represents the keyword gap analysis
type KeywordsResult struct {
	Identified  []string `json:"identified"`
	Suggestions []string `json:"suggestions"`
}

// AnalysisResult represents the full ATS analysis returned by the AI service
type AnalysisResult struct {
	OverallScore int               `json:"overallScore"` // 0-100 score
	Summary      string            `json:"summary"`
	Sections     []SectionFeedback `json:"sections"`
	Keywords     KeywordsResult    `json:"keywords"`
}

// HistoricAnalysisResult is an AnalysisResult stamped with its creation time
type HistoricAnalysisResult struct {
	AnalysisResult
	Date int64 `json:"date"` // epoch milliseconds, assigned at append time
}

// UploadFile describes a candidate resume file before validation
type UploadFile struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"sizeBytes"`
	MimeType  string `json:"mimeType"`
	Data      []byte `json:"-"`
}
