package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// ReadCycles returns the cycles of a session, or of every session when
// session is empty. Results are ordered ORDER BY seq ASC, session ASC
// COLLATE BINARY, cycle_id ASC.
//
// Returns an empty slice (not nil) if no records exist.
func (s *Store) ReadCycles(ctx context.Context, session string) ([]CycleRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session, cycle_id, seq, outcome, started_at, ended_at, point_count, directions, pattern, action, matched, suppressed
		FROM cycles
		WHERE ? = '' OR session = ?
		ORDER BY seq ASC, session COLLATE BINARY ASC, cycle_id ASC
	`, session, session)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	cycles := []CycleRecord{}
	for rows.Next() {
		rec, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cycles: %w", err)
	}
	return cycles, nil
}

// ReadCycle returns one cycle. Returns sql.ErrNoRows (wrapped) if the cycle
// does not exist.
func (s *Store) ReadCycle(ctx context.Context, session string, cycleID int64) (CycleRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT session, cycle_id, seq, outcome, started_at, ended_at, point_count, directions, pattern, action, matched, suppressed
		FROM cycles
		WHERE session = ? AND cycle_id = ?
	`, session, cycleID)
	rec, err := scanCycle(row)
	if err != nil {
		return CycleRecord{}, fmt.Errorf("read cycle %s/%d: %w", session, cycleID, err)
	}
	return rec, nil
}

// ReadExecutions returns the executions of a session, or of every session
// when session is empty, ordered by seq then id.
//
// Returns an empty slice (not nil) if no records exist.
func (s *Store) ReadExecutions(ctx context.Context, session string) ([]ExecutionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session, cycle_id, seq, action, ok, code, message
		FROM executions
		WHERE ? = '' OR session = ?
		ORDER BY seq ASC, id ASC
	`, session, session)
	if err != nil {
		return nil, fmt.Errorf("query executions: %w", err)
	}
	defer rows.Close()

	execs := []ExecutionRecord{}
	for rows.Next() {
		var rec ExecutionRecord
		if err := rows.Scan(&rec.ID, &rec.Session, &rec.CycleID, &rec.Seq, &rec.Action, &rec.OK, &rec.Code, &rec.Message); err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		execs = append(execs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate executions: %w", err)
	}
	return execs, nil
}

// Sessions summarizes every session in the log, ordered by the seq of each
// session's first cycle.
func (s *Store) Sessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			c.session,
			COUNT(*),
			SUM(CASE WHEN c.outcome = 'gesture' THEN 1 ELSE 0 END),
			SUM(c.matched),
			COUNT(e.id),
			SUM(CASE WHEN e.id IS NOT NULL AND e.ok = 0 THEN 1 ELSE 0 END),
			MIN(c.seq),
			MAX(c.seq)
		FROM cycles c
		LEFT JOIN executions e ON e.session = c.session AND e.cycle_id = c.cycle_id
		GROUP BY c.session
		ORDER BY MIN(c.seq) ASC, c.session COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	out := []SessionSummary{}
	for rows.Next() {
		var sum SessionSummary
		if err := rows.Scan(&sum.Session, &sum.Cycles, &sum.Gestures, &sum.Matched, &sum.Executions, &sum.Failures, &sum.FirstSeq, &sum.LastSeq); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

// MaxSeq returns the largest seq in the log, or 0 when it is empty. The
// engine resumes its clock from here so seq stays monotonic across runs.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(seq) FROM (
			SELECT seq FROM cycles
			UNION ALL
			SELECT seq FROM executions
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}
	return seq.Int64, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCycle(row rowScanner) (CycleRecord, error) {
	var (
		rec      CycleRecord
		started  int64
		ended    int64
		dirsJSON string
	)
	if err := row.Scan(
		&rec.Session,
		&rec.CycleID,
		&rec.Seq,
		&rec.Outcome,
		&started,
		&ended,
		&rec.Points,
		&dirsJSON,
		&rec.Pattern,
		&rec.Action,
		&rec.Matched,
		&rec.Suppressed,
	); err != nil {
		return CycleRecord{}, fmt.Errorf("scan cycle: %w", err)
	}
	rec.StartedAt = fromMillis(started)
	rec.EndedAt = fromMillis(ended)
	if err := json.Unmarshal([]byte(dirsJSON), &rec.Directions); err != nil {
		return CycleRecord{}, fmt.Errorf("unmarshal directions: %w", err)
	}
	return rec, nil
}
