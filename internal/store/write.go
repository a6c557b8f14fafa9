package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// WriteCycle inserts a cycle record into the store.
// Uses ON CONFLICT(session, cycle_id) DO NOTHING for idempotency - duplicate
// cycles are silently ignored. Other constraint violations (e.g., an unknown
// outcome) still return errors.
func (s *Store) WriteCycle(ctx context.Context, rec CycleRecord) error {
	dirs := rec.Directions
	if dirs == nil {
		dirs = []string{}
	}
	dirsJSON, err := json.Marshal(dirs)
	if err != nil {
		return fmt.Errorf("write cycle: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cycles
		(session, cycle_id, seq, outcome, started_at, ended_at, point_count, directions, pattern, action, matched, suppressed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session, cycle_id) DO NOTHING
	`,
		rec.Session,
		rec.CycleID,
		rec.Seq,
		rec.Outcome,
		toMillis(rec.StartedAt),
		toMillis(rec.EndedAt),
		rec.Points,
		string(dirsJSON),
		rec.Pattern,
		rec.Action,
		rec.Matched,
		rec.Suppressed,
	)
	if err != nil {
		return fmt.Errorf("write cycle: %w", err)
	}
	return nil
}

// WriteExecution inserts an execution record into the store.
// Each cycle can have at most ONE execution (UNIQUE(session, cycle_id));
// a second write for the same cycle is silently ignored.
//
// Note: The cycle referenced by (Session, CycleID) must exist (foreign key constraint).
func (s *Store) WriteExecution(ctx context.Context, rec ExecutionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO executions
		(session, cycle_id, seq, action, ok, code, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		rec.Session,
		rec.CycleID,
		rec.Seq,
		rec.Action,
		rec.OK,
		rec.Code,
		rec.Message,
	)
	if err != nil {
		return fmt.Errorf("write execution: %w", err)
	}
	return nil
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
