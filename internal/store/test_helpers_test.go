package store

import (
	"path/filepath"
	"testing"
	"time"
)

// createTestStore creates a new on-disk store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testEpoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// createTestCycle creates a short-click cycle with minimal required fields.
func createTestCycle(session string, cycleID, seq int64) CycleRecord {
	return CycleRecord{
		Session:    session,
		CycleID:    cycleID,
		Seq:        seq,
		Outcome:    "short_click",
		StartedAt:  testEpoch,
		EndedAt:    testEpoch.Add(100 * time.Millisecond),
		Points:     1,
		Directions: []string{},
	}
}
