package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/rxharness/internal/harness"
)

// RunRecord is one stored run.
type RunRecord struct {
	ID      string `json:"id"`
	Seq     int64  `json:"seq"`
	Catalog string `json:"catalog"`
	Engine  string `json:"engine"`
	Total   int    `json:"total"`
	Passed  int    `json:"passed"`
	Failed  int    `json:"failed"`
	Digest  string `json:"digest"`
}

// ErrRunNotFound is returned when a run ID is not in the store.
var ErrRunNotFound = errors.New("run not found")

// WriteRun records r as a new run of catalog.
//
// The run row and every outcome row are written in one transaction. The run
// receives a fresh UUIDv7 and the next logical sequence number; outcomes keep
// the report's case order.
func (s *Store) WriteRun(ctx context.Context, catalog string, r *harness.Report) (RunRecord, error) {
	digest, err := harness.Digest(r)
	if err != nil {
		return RunRecord{}, fmt.Errorf("write run: %w", err)
	}

	rec := RunRecord{
		ID:      uuid.Must(uuid.NewV7()).String(),
		Catalog: catalog,
		Engine:  r.Engine,
		Total:   r.Total,
		Passed:  r.Passed,
		Failed:  len(r.Failed),
		Digest:  digest,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RunRecord{}, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&rec.Seq); err != nil {
		return RunRecord{}, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, catalog, engine, total, passed, failed, digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.Seq,
		rec.Catalog,
		rec.Engine,
		rec.Total,
		rec.Passed,
		rec.Failed,
		rec.Digest,
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("write run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO outcomes
		(run_id, seq, case_name, pass, reason, result)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return RunRecord{}, fmt.Errorf("write run: prepare outcomes: %w", err)
	}
	defer stmt.Close()

	for i, o := range r.Outcomes {
		resultJSON, err := marshalResult(o.Result)
		if err != nil {
			return RunRecord{}, fmt.Errorf("write run: case %s: %w", o.Case, err)
		}
		if _, err := stmt.ExecContext(ctx, rec.ID, i, o.Case, boolToInt(o.Pass), o.Reason, resultJSON); err != nil {
			return RunRecord{}, fmt.Errorf("write run: case %s: %w", o.Case, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return RunRecord{}, fmt.Errorf("write run: commit: %w", err)
	}

	return rec, nil
}

// DeleteRun removes a run and its outcomes.
// Returns ErrRunNotFound if no run has the given ID.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}
