package flow

import (
	"context"
	"sync"
	"testing"
	"time"

	"atscan/internal/ai"
	"atscan/internal/errors"
	"atscan/internal/history"
	"atscan/internal/types"
	"atscan/internal/upload"
)

type stubClient struct {
	mu      sync.Mutex
	calls   int
	release chan struct{} // when set, AnalyzeResume blocks until closed
	result  types.AnalysisResult
	err     error
}

func (s *stubClient) AnalyzeResume(ctx context.Context, input types.AnalyzeResumeInput) (types.AnalysisResult, *ai.TokenUsage, error) {
	s.mu.Lock()
	s.calls++
	release := s.release
	s.mu.Unlock()

	if release != nil {
		<-release
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, nil, s.err
}

func (s *stubClient) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func testResult(score int) types.AnalysisResult {
	return types.AnalysisResult{
		OverallScore: score,
		Summary:      "Well structured resume.",
		Sections: []types.SectionFeedback{
			{SectionName: "Experience", Score: score, Findings: []string{"clear"}, Suggestions: []string{"add metrics"}},
		},
		Keywords: types.KeywordsResult{
			Identified:  []string{"Go", "Postgres"},
			Suggestions: []string{"Kubernetes"},
		},
	}
}

func pdfFile(sizeBytes int64) types.UploadFile {
	return types.UploadFile{
		Name:      "resume.pdf",
		SizeBytes: sizeBytes,
		MimeType:  "application/pdf",
		Data:      []byte("%PDF-1.7 stub"),
	}
}

func newTestController(t *testing.T, client AnalysisClient) *Controller {
	t.Helper()
	logger, err := errors.New("error")
	if err != nil {
		t.Fatal(err)
	}
	gate := upload.NewGate(0, nil)
	store := history.NewStore(t.TempDir(), logger)
	return NewController(gate, client, store, types.LanguageEnglish, logger)
}

func waitForPhase(t *testing.T, c *Controller, phase Phase) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.Snapshot().Phase == phase {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("controller never reached phase %s, stuck at %s", phase, c.Snapshot().Phase)
}

func TestSuccessfulAnalysis(t *testing.T) {
	client := &stubClient{result: testResult(78)}
	c := newTestController(t, client)

	if err := c.SelectFile(pdfFile(2 * 1024 * 1024)); err != nil {
		t.Fatalf("SelectFile: %v", err)
	}
	if snap := c.Snapshot(); snap.Phase != PhaseFileSelected {
		t.Fatalf("phase after select = %s, want %s", snap.Phase, PhaseFileSelected)
	}

	result, err := c.Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.OverallScore != 78 {
		t.Errorf("score = %d, want 78", result.OverallScore)
	}

	snap := c.Snapshot()
	if snap.Phase != PhaseResultShown {
		t.Errorf("phase = %s, want %s", snap.Phase, PhaseResultShown)
	}
	if snap.ErrorCode != "" {
		t.Errorf("error code = %s, want empty", snap.ErrorCode)
	}
	if len(snap.History) != 1 {
		t.Errorf("history length = %d, want 1", len(snap.History))
	}
	if snap.History[0].Date == 0 {
		t.Error("history entry missing append date")
	}
}

func TestOversizeFileRejected(t *testing.T) {
	client := &stubClient{}
	c := newTestController(t, client)

	err := c.SelectFile(pdfFile(6 * 1024 * 1024))
	if err == nil {
		t.Fatal("expected rejection")
	}
	if code := errors.CodeOf(err); code != errors.ErrCodeFileTooLarge {
		t.Errorf("code = %s, want %s", code, errors.ErrCodeFileTooLarge)
	}

	snap := c.Snapshot()
	if snap.File != nil {
		t.Error("rejected file must not be retained")
	}
	if snap.Phase != PhaseErrorShown {
		t.Errorf("phase = %s, want %s", snap.Phase, PhaseErrorShown)
	}
	if client.callCount() != 0 {
		t.Error("no analysis call may happen for a rejected file")
	}
}

func TestUnsupportedTypeRejected(t *testing.T) {
	client := &stubClient{}
	c := newTestController(t, client)

	file := pdfFile(1024)
	file.Name = "resume.gif"
	file.MimeType = "image/gif"

	err := c.SelectFile(file)
	if code := errors.CodeOf(err); code != errors.ErrCodeUnsupportedType {
		t.Errorf("code = %s, want %s", code, errors.ErrCodeUnsupportedType)
	}
}

func TestAnalyzeWithoutFile(t *testing.T) {
	client := &stubClient{}
	c := newTestController(t, client)

	_, err := c.Analyze(context.Background())
	if code := errors.CodeOf(err); code != errors.ErrCodeNoFile {
		t.Errorf("code = %s, want %s", code, errors.ErrCodeNoFile)
	}
	if snap := c.Snapshot(); snap.Phase != PhaseErrorShown || snap.ErrorCode != errors.ErrCodeNoFile {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestAnalysisFailureKeepsFile(t *testing.T) {
	client := &stubClient{
		err: errors.NewNetworkError(errors.ErrCodeNetwork, "unreachable", nil),
	}
	c := newTestController(t, client)

	if err := c.SelectFile(pdfFile(1024)); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Analyze(context.Background()); err == nil {
		t.Fatal("expected analysis failure")
	}

	snap := c.Snapshot()
	if snap.Phase != PhaseErrorShown || snap.ErrorCode != errors.ErrCodeNetwork {
		t.Fatalf("snapshot after failure: phase=%s code=%s", snap.Phase, snap.ErrorCode)
	}
	if snap.File == nil {
		t.Fatal("file must be preserved after failure for retry")
	}
	if len(snap.History) != 0 {
		t.Error("failed analysis must not touch history")
	}

	// Retry without re-selecting the file
	client.mu.Lock()
	client.err = nil
	client.result = testResult(65)
	client.mu.Unlock()

	if _, err := c.Analyze(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if snap := c.Snapshot(); snap.Phase != PhaseResultShown || len(snap.History) != 1 {
		t.Errorf("retry snapshot: phase=%s history=%d", snap.Phase, len(snap.History))
	}
}

func TestResetDuringFlightDiscardsResponse(t *testing.T) {
	release := make(chan struct{})
	client := &stubClient{result: testResult(90), release: release}
	c := newTestController(t, client)

	if err := c.SelectFile(pdfFile(1024)); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		result, err := c.Analyze(context.Background())
		if result != nil || err != nil {
			t.Errorf("stale analysis must resolve to nothing, got result=%v err=%v", result, err)
		}
	}()

	waitForPhase(t, c, PhaseAnalyzing)
	c.Reset()
	close(release)
	<-done

	snap := c.Snapshot()
	if snap.Phase != PhaseIdle {
		t.Errorf("phase = %s, want %s", snap.Phase, PhaseIdle)
	}
	if snap.Result != nil || snap.ErrorCode != "" || snap.Loading {
		t.Errorf("stale response mutated state: %+v", snap)
	}
	if len(snap.History) != 0 {
		t.Error("stale response must not write history")
	}
}

func TestConcurrentAnalyzeIsNoOp(t *testing.T) {
	release := make(chan struct{})
	client := &stubClient{result: testResult(70), release: release}
	c := newTestController(t, client)

	if err := c.SelectFile(pdfFile(1024)); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Analyze(context.Background())
	}()

	waitForPhase(t, c, PhaseAnalyzing)

	// Second trigger while in flight must return immediately without a call
	result, err := c.Analyze(context.Background())
	if result != nil || err != nil {
		t.Errorf("in-flight analyze must be a no-op, got result=%v err=%v", result, err)
	}

	close(release)
	<-done

	if client.callCount() != 1 {
		t.Errorf("client called %d times, want 1", client.callCount())
	}
	if snap := c.Snapshot(); snap.Phase != PhaseResultShown {
		t.Errorf("phase = %s, want %s", snap.Phase, PhaseResultShown)
	}
}

func TestResetClearsStateButNotHistory(t *testing.T) {
	client := &stubClient{result: testResult(55)}
	c := newTestController(t, client)

	if err := c.SelectFile(pdfFile(1024)); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Analyze(context.Background()); err != nil {
		t.Fatal(err)
	}

	c.Reset()

	snap := c.Snapshot()
	if snap.Phase != PhaseIdle || snap.File != nil || snap.Result != nil || snap.ErrorCode != "" {
		t.Errorf("reset left state behind: %+v", snap)
	}
	if len(snap.History) != 1 {
		t.Errorf("reset must not clear history, got %d entries", len(snap.History))
	}
}

func TestSelectFileClearsPreviousError(t *testing.T) {
	client := &stubClient{}
	c := newTestController(t, client)

	_ = c.SelectFile(pdfFile(6 * 1024 * 1024)) // rejected
	if err := c.SelectFile(pdfFile(1024)); err != nil {
		t.Fatal(err)
	}

	snap := c.Snapshot()
	if snap.Phase != PhaseFileSelected || snap.ErrorCode != "" {
		t.Errorf("previous error not cleared: phase=%s code=%s", snap.Phase, snap.ErrorCode)
	}
}
