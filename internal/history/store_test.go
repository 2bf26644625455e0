package history

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"atscan/internal/types"
)

func testResult(score int) types.AnalysisResult {
	return types.AnalysisResult{
		OverallScore: score,
		Summary:      fmt.Sprintf("summary for score %d", score),
		Sections: []types.SectionFeedback{
			{SectionName: "Experience", Score: score, Findings: []string{"finding"}, Suggestions: []string{"suggestion"}},
		},
		Keywords: types.KeywordsResult{Identified: []string{"go"}, Suggestions: []string{"kubernetes"}},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), nil)
}

func TestLoadEmptyStore(t *testing.T) {
	store := newTestStore(t)

	if got := store.Load(); len(got) != 0 {
		t.Errorf("expected empty history, got %d entries", len(got))
	}
}

func TestAppendStampsDateAndPrepends(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	store.Append(testResult(50))
	updated := store.Append(testResult(75))

	if len(updated) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(updated))
	}
	if updated[0].OverallScore != 75 {
		t.Errorf("expected newest entry first, got score %d", updated[0].OverallScore)
	}
	if updated[0].Date <= updated[1].Date {
		t.Errorf("expected descending dates, got %d then %d", updated[0].Date, updated[1].Date)
	}
	if updated[1].Date != base.Add(time.Minute).UnixMilli() {
		t.Errorf("expected date stamped at append time, got %d", updated[1].Date)
	}
}

func TestEvictionKeepsFiveMostRecent(t *testing.T) {
	store := newTestStore(t)

	for i := 1; i <= 6; i++ {
		store.Append(testResult(i * 10))
	}

	loaded := store.Load()
	if len(loaded) != MaxHistoryItems {
		t.Fatalf("expected %d entries after 6 appends, got %d", MaxHistoryItems, len(loaded))
	}

	// Newest-first: scores 60, 50, 40, 30, 20; the first append (10) evicted
	expected := []int{60, 50, 40, 30, 20}
	for i, want := range expected {
		if loaded[i].OverallScore != want {
			t.Errorf("entry %d: expected score %d, got %d", i, want, loaded[i].OverallScore)
		}
	}
}

func TestAppendCountBelowBound(t *testing.T) {
	store := newTestStore(t)

	for i := 1; i <= 3; i++ {
		store.Append(testResult(i))
	}

	if got := len(store.Load()); got != 3 {
		t.Errorf("expected min(callCount, 5) = 3 entries, got %d", got)
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	store.Append(testResult(80))
	store.Append(testResult(90))

	first := store.Load()
	second := store.Load()

	if len(first) != len(second) {
		t.Fatalf("load not idempotent: %d vs %d entries", len(first), len(second))
	}
	for i := range first {
		if first[i].Date != second[i].Date || first[i].OverallScore != second[i].OverallScore {
			t.Errorf("entry %d differs between loads", i)
		}
	}
}

func TestCorruptionRecovery(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)

	if err := os.WriteFile(store.Path(), []byte("{not valid json"), 0600); err != nil {
		t.Fatal(err)
	}

	if got := store.Load(); len(got) != 0 {
		t.Errorf("expected empty history from corrupt record, got %d entries", len(got))
	}

	// The corrupt record must have been cleared, not merely skipped
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Error("expected corrupt record to be removed")
	}
	if got := store.Load(); len(got) != 0 {
		t.Errorf("expected second load to also be empty, got %d entries", len(got))
	}

	// The store keeps working after recovery
	if got := store.Append(testResult(70)); len(got) != 1 {
		t.Errorf("expected append after recovery to yield 1 entry, got %d", len(got))
	}
}

func TestWriteFailureIsSwallowed(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)

	// Occupy the record path with a directory so WriteFile fails
	if err := os.MkdirAll(store.Path(), 0750); err != nil {
		t.Fatal(err)
	}

	updated := store.Append(testResult(65))
	if len(updated) != 1 || updated[0].OverallScore != 65 {
		t.Errorf("expected in-memory result despite write failure, got %v", updated)
	}
}

func TestStorageKeyLayout(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)

	if got := store.Path(); got != filepath.Join(dir, "atsResumeHistory.json") {
		t.Errorf("unexpected record path %q", got)
	}
}
