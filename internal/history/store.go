package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"atscan/internal/errors"
	"atscan/internal/types"
)

// MaxHistoryItems bounds the stored history. Eviction is strict FIFO by
// insertion; the bound is fixed, not configuration.
const MaxHistoryItems = 5

// StorageKey names the durable record holding the serialized history
const StorageKey = "atsResumeHistory"

// Store persists a bounded, newest-first list of past analysis results.
// It is the sole owner of the durable representation; callers only ever see
// copies of the decoded list. The load/prepend/truncate/persist sequence is
// not atomic, so every entry point holds the store mutex for its duration.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *errors.Logger
	now    func() time.Time
}

// NewStore creates a history store rooted at dir. The directory is created
// on first write, not here, so a read-only environment can still Load.
func NewStore(dir string, logger *errors.Logger) *Store {
	return &Store{
		path:   filepath.Join(dir, StorageKey+".json"),
		logger: logger,
		now:    time.Now,
	}
}

// Load reads the persisted history, newest-first. A missing record yields an
// empty list. A record that fails to deserialize is logged and removed so
// the same poison data is never re-read; the store then reports empty.
func (s *Store) Load() []types.HistoricAnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() []types.HistoricAnalysisResult {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) && s.logger != nil {
			s.logger.Warn("Failed to read history record", "path", s.path, "error", err.Error())
		}
		return nil
	}

	var entries []types.HistoricAnalysisResult
	if err := json.Unmarshal(data, &entries); err != nil {
		if s.logger != nil {
			s.logger.LogError(
				errors.NewIOError(errors.ErrCodeInvalidFormat, "Corrupted history record", err),
				"Clearing corrupted history record", "path", s.path)
		}
		// Clear the poison data rather than failing on every load
		if rmErr := os.Remove(s.path); rmErr != nil && s.logger != nil {
			s.logger.Warn("Failed to clear corrupted history record", "path", s.path, "error", rmErr.Error())
		}
		return nil
	}

	return entries
}

// Append stamps result with the current time, prepends it, truncates the
// list to the MaxHistoryItems most recent entries, persists, and returns the
// updated newest-first list. A persistence failure is logged and swallowed:
// the caller still gets the in-memory list so the just-completed analysis
// can be shown, only the stored trend loses that point.
func (s *Store) Append(result types.AnalysisResult) []types.HistoricAnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := types.HistoricAnalysisResult{
		AnalysisResult: result,
		Date:           s.now().UnixMilli(),
	}

	updated := append([]types.HistoricAnalysisResult{entry}, s.loadLocked()...)
	if len(updated) > MaxHistoryItems {
		updated = updated[:MaxHistoryItems]
	}

	if err := s.persist(updated); err != nil {
		if s.logger != nil {
			s.logger.LogError(err, "Failed to persist history", "path", s.path)
		}
	}

	return updated
}

func (s *Store) persist(entries []types.HistoricAnalysisResult) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeInvalidFormat, "Failed to serialize history", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return errors.NewIOError("HISTORY_WRITE_FAILED", "Cannot create history directory", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return errors.NewIOError("HISTORY_WRITE_FAILED", "Cannot write history record", err)
	}

	return nil
}

// Path returns the location of the durable record
func (s *Store) Path() string {
	return s.path
}
