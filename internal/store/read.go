package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/rxharness/internal/harness"
)

// ListRuns returns stored runs, newest first.
// A limit of zero or less returns every run.
//
// Returns an empty slice (not nil) if the store holds no runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
		SELECT id, seq, catalog, engine, total, passed, failed, digest
		FROM runs
		ORDER BY seq DESC
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunRecord{}
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// ReadRun returns the run with the given ID.
func (s *Store) ReadRun(ctx context.Context, runID string) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, catalog, engine, total, passed, failed, digest
		FROM runs
		WHERE id = ?
	`, runID)

	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("read run %s: %w", runID, ErrRunNotFound)
	}
	return rec, err
}

// ReadOutcomes returns the outcomes of one run in case order.
// Returns ErrRunNotFound if the run does not exist.
func (s *Store) ReadOutcomes(ctx context.Context, runID string) ([]harness.Outcome, error) {
	if _, err := s.ReadRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT case_name, pass, reason, result
		FROM outcomes
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := []harness.Outcome{}
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}

	return outcomes, nil
}

// CaseResult is one case's verdict in one run.
type CaseResult struct {
	RunID  string `json:"run_id"`
	RunSeq int64  `json:"run_seq"`
	Engine string `json:"engine"`
	Pass   bool   `json:"pass"`
	Reason string `json:"reason,omitempty"`
}

// CaseHistory returns every stored verdict for a case name, oldest run first.
func (s *Store) CaseHistory(ctx context.Context, caseName string) ([]CaseResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.seq, r.engine, o.pass, o.reason
		FROM outcomes o
		JOIN runs r ON o.run_id = r.id
		WHERE o.case_name = ?
		ORDER BY r.seq ASC
	`, caseName)
	if err != nil {
		return nil, fmt.Errorf("query case history: %w", err)
	}
	defer rows.Close()

	results := []CaseResult{}
	for rows.Next() {
		var cr CaseResult
		var pass int
		if err := rows.Scan(&cr.RunID, &cr.RunSeq, &cr.Engine, &pass, &cr.Reason); err != nil {
			return nil, fmt.Errorf("scan case history: %w", err)
		}
		cr.Pass = pass != 0
		results = append(results, cr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate case history: %w", err)
	}

	return results, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunRecord, error) {
	var rec RunRecord
	err := row.Scan(
		&rec.ID,
		&rec.Seq,
		&rec.Catalog,
		&rec.Engine,
		&rec.Total,
		&rec.Passed,
		&rec.Failed,
		&rec.Digest,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, err
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("scan run: %w", err)
	}
	return rec, nil
}

func scanOutcome(rows *sql.Rows) (harness.Outcome, error) {
	var o harness.Outcome
	var pass int
	var resultJSON string

	if err := rows.Scan(&o.Case, &pass, &o.Reason, &resultJSON); err != nil {
		return harness.Outcome{}, fmt.Errorf("scan outcome: %w", err)
	}

	res, err := unmarshalResult(resultJSON)
	if err != nil {
		return harness.Outcome{}, err
	}
	o.Pass = pass != 0
	o.Result = res
	return o, nil
}
