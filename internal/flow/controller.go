package flow

import (
	"context"
	"sync"

	"atscan/internal/ai"
	"atscan/internal/errors"
	"atscan/internal/history"
	"atscan/internal/types"
	"atscan/internal/upload"
)

// Phase is the controller's user-visible state
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseFileSelected Phase = "file_selected"
	PhaseAnalyzing    Phase = "analyzing"
	PhaseResultShown  Phase = "result_shown"
	PhaseErrorShown   Phase = "error_shown"
)

// AnalysisClient is the slice of the AI service the controller needs.
// Both *ai.Service and *ai.GeminiProvider satisfy it.
type AnalysisClient interface {
	AnalyzeResume(ctx context.Context, input types.AnalyzeResumeInput) (types.AnalysisResult, *ai.TokenUsage, error)
}

// Controller owns the analysis session state: the selected file, the
// in-flight flag, the last result or error, and the history snapshot. All
// state moves through explicit transitions; callers observe it via Snapshot.
//
// A generation counter guards the one suspension point (the outbound
// analysis call): Reset and SelectFile bump it, so a response that arrives
// after either is discarded instead of resurrecting pre-reset state.
type Controller struct {
	gate   *upload.Gate
	client AnalysisClient
	store  *history.Store
	logger *errors.Logger

	mu         sync.Mutex
	generation uint64
	phase      Phase
	language   types.Language
	file       *types.UploadFile
	result     *types.AnalysisResult
	tokenUsage *ai.TokenUsage
	errCode    string
	loading    bool
	history    []types.HistoricAnalysisResult
}

// Snapshot is a consistent copy of the controller state
type Snapshot struct {
	Phase      Phase
	Language   types.Language
	File       *types.UploadFile
	Result     *types.AnalysisResult
	TokenUsage *ai.TokenUsage
	ErrorCode  string
	Loading    bool
	History    []types.HistoricAnalysisResult
}

// NewController creates a controller and hydrates the history snapshot from
// the store. A corrupt store has already been cleared by Load, so hydration
// never fails.
func NewController(gate *upload.Gate, client AnalysisClient, store *history.Store, language types.Language, logger *errors.Logger) *Controller {
	if !language.Valid() {
		language = types.LanguageEnglish
	}
	return &Controller{
		gate:     gate,
		client:   client,
		store:    store,
		logger:   logger,
		phase:    PhaseIdle,
		language: language,
		history:  store.Load(),
	}
}

// SetLanguage switches the output language for subsequent analyses
func (c *Controller) SetLanguage(lang types.Language) {
	if !lang.Valid() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.language = lang
}

// SelectFile validates the file through the upload gate. On rejection no
// file is retained and the validation error becomes the shown error. On
// acceptance any previous result or error is cleared. Selecting a file
// invalidates a pending analysis, if any.
func (c *Controller) SelectFile(file types.UploadFile) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.loading = false
	c.result = nil
	c.tokenUsage = nil
	c.errCode = ""

	if err := c.gate.Validate(file); err != nil {
		c.file = nil
		c.errCode = errors.CodeOf(err)
		c.phase = PhaseErrorShown
		c.logger.Warn("File rejected",
			"file", file.Name,
			"size_bytes", file.SizeBytes,
			"mime_type", file.MimeType,
			"code", c.errCode)
		return err
	}

	c.file = &file
	c.phase = PhaseFileSelected
	c.logger.Debug("File selected",
		"file", file.Name,
		"size_bytes", file.SizeBytes,
		"mime_type", file.MimeType)
	return nil
}

// Analyze runs one analysis round trip against the selected file. A call
// while an analysis is already in flight is a no-op. On success the result
// is appended to history; on failure the selected file is kept so the user
// can retry without re-uploading.
func (c *Controller) Analyze(ctx context.Context) (*types.AnalysisResult, error) {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		c.logger.Debug("Analyze ignored, analysis already in flight")
		return nil, nil
	}
	if c.file == nil {
		c.errCode = errors.ErrCodeNoFile
		c.phase = PhaseErrorShown
		c.mu.Unlock()
		return nil, errors.NewValidationError(errors.ErrCodeNoFile,
			"No file selected for analysis", nil)
	}

	c.result = nil
	c.tokenUsage = nil
	c.errCode = ""
	c.loading = true
	c.phase = PhaseAnalyzing
	generation := c.generation
	input := types.AnalyzeResumeInput{
		Data:     c.file.Data,
		MimeType: c.file.MimeType,
		Language: c.language,
	}
	c.mu.Unlock()

	// The lock is not held across the network call. Everything after this
	// point must re-check the generation before touching state or history.
	result, usage, err := c.client.AnalyzeResume(ctx, input)

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		c.logger.Debug("Discarding stale analysis response",
			"generation", generation,
			"current", c.generation)
		return nil, nil
	}

	c.loading = false

	if err != nil {
		c.errCode = errors.CodeOf(err)
		c.phase = PhaseErrorShown
		return nil, err
	}

	c.history = c.store.Append(result)
	c.result = &result
	c.tokenUsage = usage
	c.errCode = ""
	c.phase = PhaseResultShown
	return &result, nil
}

// Reset clears the file, result, error, and loading flag and returns to
// Idle. History is untouched. A pending analysis becomes stale.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.file = nil
	c.result = nil
	c.tokenUsage = nil
	c.errCode = ""
	c.loading = false
	c.phase = PhaseIdle
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Phase:      c.phase,
		Language:   c.language,
		ErrorCode:  c.errCode,
		Loading:    c.loading,
		History:    append([]types.HistoricAnalysisResult(nil), c.history...),
		TokenUsage: c.tokenUsage,
	}
	if c.file != nil {
		fileCopy := *c.file
		snap.File = &fileCopy
	}
	if c.result != nil {
		resultCopy := *c.result
		snap.Result = &resultCopy
	}
	return snap
}
