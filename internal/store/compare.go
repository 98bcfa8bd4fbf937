package store

import (
	"context"
	"fmt"
)

// RunDiff lists how case verdicts changed between two runs.
// Each slice holds case names in the order they appear in the run that
// contains them.
type RunDiff struct {
	Base string `json:"base"`
	Head string `json:"head"`

	// Regressed cases passed in base and fail in head.
	Regressed []string `json:"regressed"`
	// Fixed cases failed in base and pass in head.
	Fixed []string `json:"fixed"`
	// Added cases exist only in head; Removed only in base.
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// Clean reports whether head introduced no regressions.
func (d RunDiff) Clean() bool {
	return len(d.Regressed) == 0
}

// CompareRuns diffs the verdicts of two stored runs by case name.
func (s *Store) CompareRuns(ctx context.Context, baseID, headID string) (RunDiff, error) {
	base, err := s.ReadOutcomes(ctx, baseID)
	if err != nil {
		return RunDiff{}, fmt.Errorf("compare runs: %w", err)
	}
	head, err := s.ReadOutcomes(ctx, headID)
	if err != nil {
		return RunDiff{}, fmt.Errorf("compare runs: %w", err)
	}

	diff := RunDiff{
		Base:      baseID,
		Head:      headID,
		Regressed: []string{},
		Fixed:     []string{},
		Added:     []string{},
		Removed:   []string{},
	}

	basePass := make(map[string]bool, len(base))
	for _, o := range base {
		basePass[o.Case] = o.Pass
	}
	seen := make(map[string]bool, len(head))

	for _, o := range head {
		seen[o.Case] = true
		was, ok := basePass[o.Case]
		switch {
		case !ok:
			diff.Added = append(diff.Added, o.Case)
		case was && !o.Pass:
			diff.Regressed = append(diff.Regressed, o.Case)
		case !was && o.Pass:
			diff.Fixed = append(diff.Fixed, o.Case)
		}
	}

	for _, o := range base {
		if !seen[o.Case] {
			diff.Removed = append(diff.Removed, o.Case)
		}
	}

	return diff, nil
}
