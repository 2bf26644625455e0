package i18n

import (
	"fmt"
	"time"

	"atscan/internal/errors"
	"atscan/internal/types"
)

// Bundle holds the static translation tables for every supported language.
// Lookup is pure: an unknown key degrades to the key itself instead of
// failing, and an unknown language falls back to English.
type Bundle struct {
	tables map[types.Language]map[string]string
}

// NewBundle returns the bundle with the built-in en/ar tables
func NewBundle() *Bundle {
	return &Bundle{tables: translations}
}

// T resolves key in the given language, falling back to the key itself
func (b *Bundle) T(lang types.Language, key string) string {
	table, ok := b.tables[lang]
	if !ok {
		table = b.tables[types.LanguageEnglish]
	}
	if msg, ok := table[key]; ok {
		return msg
	}
	return key
}

// ErrorMessage maps a structured error code to its localized user message
func (b *Bundle) ErrorMessage(lang types.Language, code string) string {
	key, ok := errorKeys[code]
	if !ok {
		key = "error_analysis"
	}
	return b.T(lang, key)
}

// errorKeys maps flow error codes to translation keys
var errorKeys = map[string]string{
	errors.ErrCodeNoFile:            "error_no_file",
	errors.ErrCodeFileTooLarge:      "error_file_size",
	errors.ErrCodeUnsupportedType:   "error_file_type",
	errors.ErrCodeNetwork:           "error_network",
	errors.ErrCodeService:           "error_api",
	errors.ErrCodeMalformedResponse: "error_parsing",
	errors.ErrCodeUnknown:           "error_analysis",
}

// FormatShortDate renders an epoch-milliseconds timestamp as a short,
// locale-appropriate date label (chart x-axis style: "Jan 2" / "٢ يناير").
func FormatShortDate(lang types.Language, epochMillis int64) string {
	t := time.UnixMilli(epochMillis)
	if lang == types.LanguageArabic {
		return fmt.Sprintf("%s %s", arabicNumerals(t.Day()), arabicMonths[t.Month()-1])
	}
	return t.Format("Jan 2")
}

var arabicMonths = [12]string{
	"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
	"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
}

// arabicNumerals converts a day number to Eastern Arabic numerals
func arabicNumerals(n int) string {
	digits := []rune("٠١٢٣٤٥٦٧٨٩")
	out := []rune{}
	for _, d := range fmt.Sprintf("%d", n) {
		out = append(out, digits[d-'0'])
	}
	return string(out)
}

var translations = map[types.Language]map[string]string{
	types.LanguageEnglish: {
		"title":                     "ATS Resume Scanner",
		"subtitle":                  "Get instant feedback on your resume and optimize it for Applicant Tracking Systems.",
		"analyzing":                 "Analyzing...",
		"analysis_report":           "Analysis Report",
		"overall_score":             "Overall Score",
		"summary":                   "Summary",
		"sections_feedback":         "Sections Feedback",
		"findings":                  "Findings",
		"suggestions":               "Suggestions",
		"error_title":               "An Error Occurred",
		"error_no_file":             "Please select a file before analyzing.",
		"error_file_type":           "Unsupported file type. Please upload a PDF or DOCX file.",
		"error_file_size":           "File is too large. Please upload a file under 5MB.",
		"error_network":             "A network error occurred. Please check your connection and try again.",
		"error_api":                 "The analysis service failed to respond. Please try again later.",
		"error_parsing":             "Failed to read the analysis results. The response may be malformed.",
		"error_analysis":            "An unexpected error occurred during analysis. Please try again.",
		"keywords_analysis":         "Keywords Analysis",
		"identified_keywords":       "Identified Keywords",
		"suggested_keywords":        "Keyword Suggestions",
		"keywords_suggestion_intro": "Consider adding these keywords to better match job descriptions:",
		"score_history":             "Score History",
		"score":                     "Score",
		"date":                      "Date",
		"history_empty":             "No analyses recorded yet.",
		"file_selected":             "File selected:",
		"supported_files":           "Supported formats: PDF & DOCX",
	},
	types.LanguageArabic: {
		"title":                     "فاحص السيرة الذاتية لـ ATS",
		"subtitle":                  "احصل على تقييم فوري لسيرتك الذاتية وقم بتحسينها لتتوافق مع أنظمة تتبع المتقدمين.",
		"analyzing":                 "جاري التحليل...",
		"analysis_report":           "تقرير التحليل",
		"overall_score":             "التقييم العام",
		"summary":                   "الملخص",
		"sections_feedback":         "تقييم الأقسام",
		"findings":                  "النتائج",
		"suggestions":               "الاقتراحات",
		"error_title":               "حدث خطأ",
		"error_no_file":             "يرجى اختيار ملف قبل التحليل.",
		"error_file_type":           "نوع الملف غير مدعوم. يرجى رفع ملف PDF أو DOCX.",
		"error_file_size":           "حجم الملف كبير جدًا. يرجى رفع ملف أصغر من 5 ميجابايت.",
		"error_network":             "حدث خطأ في الشبكة. يرجى التحقق من اتصالك بالإنترنت والمحاولة مرة أخرى.",
		"error_api":                 "فشلت خدمة التحليل في الاستجابة. يرجى المحاولة مرة أخرى لاحقًا.",
		"error_parsing":             "فشل في قراءة نتائج التحليل. قد تكون الاستجابة غير صالحة.",
		"error_analysis":            "حدث خطأ غير متوقع أثناء التحليل. يرجى المحاولة مرة أخرى.",
		"keywords_analysis":         "تحليل الكلمات المفتاحية",
		"identified_keywords":       "الكلمات المفتاحية المكتشفة",
		"suggested_keywords":        "اقتراحات الكلمات المفتاحية",
		"keywords_suggestion_intro": "فكر في إضافة هذه الكلمات المفتاحية لتتناسب بشكل أفضل مع الأوصاف الوظيفية:",
		"score_history":             "سجل التقييمات",
		"score":                     "التقييم",
		"date":                      "التاريخ",
		"history_empty":             "لا توجد تحليلات مسجلة بعد.",
		"file_selected":             "الملف المختار:",
		"supported_files":           "الصيغ المدعومة: PDF و DOCX",
	},
}
