package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"atscan/internal/common"
	"atscan/internal/errors"
	"atscan/internal/observability"
	"atscan/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// multipartMemoryLimit caps the in-memory portion of multipart parsing;
// larger parts spill to temp files.
const multipartMemoryLimit = 10 << 20

// createAnalyzeHandler handles resume uploads: the file is validated by the
// upload gate, analyzed, and the result appended to the history record.
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("atscan.api")
		ctx, span := tracer.Start(ctx, "api.analyze")
		defer span.End()

		if r.Method != http.MethodPost {
			writeErrorResponse(w, "Method not allowed", "POST required", http.StatusMethodNotAllowed)
			return
		}

		file, err := s.parseUploadRequest(r)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "request_parsing"))
			writeErrorResponse(w, "Invalid upload request", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.String("upload.mime_type", file.MimeType),
			attribute.Int64("upload.size_bytes", file.SizeBytes),
			attribute.String("operation", "analyze"),
		)

		metrics := om.GetMetrics()

		if err := s.Gate.Validate(file); err != nil {
			code := errors.CodeOf(err)
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "upload_rejected"))
			metrics.RecordUploadRejection(ctx, code)
			s.Logger.Info("Upload rejected",
				"code", code,
				"file_name", file.Name,
				"size_bytes", file.SizeBytes,
				"mime_type", file.MimeType)
			writeAppErrorResponse(w, err, statusForCode(code))
			return
		}

		lang := s.resolveLanguage(r)
		input := types.AnalyzeResumeInput{
			Data:     file.Data,
			MimeType: file.MimeType,
			Language: lang,
		}

		var result types.AnalysisResult
		var usage *observability.TokenUsage
		err = metrics.TrackAIOperationWithTokens(ctx, "analyze_resume", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := s.AIService.AnalyzeResume(ctx, input)
			result = output
			usage = (*observability.TokenUsage)(tokenUsage)
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: usage,
			}
		})

		if err != nil {
			code := errors.CodeOf(err)
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordResumeAnalyzed(ctx, false, 0,
				attribute.String("error_code", code))
			writeAppErrorResponse(w, err, statusForCode(code))
			return
		}

		entries := s.History.Append(result)
		metrics.RecordResumeAnalyzed(ctx, true, len(entries),
			attribute.Int("overall_score", result.OverallScore))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.overall_score", result.OverallScore),
			attribute.Int("response.sections", len(result.Sections)),
		)

		w.Header().Set("Content-Type", "application/json")
		response := AnalyzeResponse{Result: result, TokenUsage: usage}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createHistoryHandler returns the stored analysis record, newest first
func (s *Server) createHistoryHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("atscan.api")
		_, span := tracer.Start(ctx, "api.history")
		defer span.End()

		if r.Method != http.MethodGet {
			writeErrorResponse(w, "Method not allowed", "GET required", http.StatusMethodNotAllowed)
			return
		}

		entries := s.History.Load()
		span.SetAttributes(attribute.Int("history.entries", len(entries)))

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// parseUploadRequest extracts the resume file from a multipart form.
// The request body is already capped by the request size middleware.
func (s *Server) parseUploadRequest(r *http.Request) (types.UploadFile, error) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		return types.UploadFile{}, fmt.Errorf("failed to parse multipart form: %w", err)
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		return types.UploadFile{}, fmt.Errorf("file field is required: %w", err)
	}
	defer func() {
		if closeErr := part.Close(); closeErr != nil {
			s.Logger.Warn("Failed to close uploaded file", "error", closeErr)
		}
	}()

	data, err := io.ReadAll(part)
	if err != nil {
		return types.UploadFile{}, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return types.UploadFile{
		Name:      header.Filename,
		SizeBytes: int64(len(data)),
		MimeType:  common.DetectMimeType(header.Filename, data),
		Data:      data,
	}, nil
}

// resolveLanguage reads the requested output language from the form,
// falling back to the configured default
func (s *Server) resolveLanguage(r *http.Request) types.Language {
	if lang := types.Language(r.FormValue("language")); lang.Valid() {
		return lang
	}
	return s.AppConfig.Language()
}

// statusForCode maps analysis error codes to HTTP status codes
func statusForCode(code string) int {
	switch code {
	case errors.ErrCodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case errors.ErrCodeUnsupportedType:
		return http.StatusUnsupportedMediaType
	case errors.ErrCodeNoFile:
		return http.StatusBadRequest
	case errors.ErrCodeNetwork, errors.ErrCodeService, errors.ErrCodeMalformedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordRateLimitHit(r.Context(),
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
