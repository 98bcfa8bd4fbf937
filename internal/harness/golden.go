package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/rxharness/internal/canon"
)

// DigestDomain separates report digests from other content hashes.
const DigestDomain = "rxharness/report/v1"

// Snapshot returns the canonical JSON form of r.
//
// Only what is compared across runs is kept: the engine, the counts,
// and each case's pass flag and failure reason. Match offsets are left out so
// a snapshot is stable across engines that agree on outcomes.
func Snapshot(r *Report) ([]byte, error) {
	outcomes := make([]any, len(r.Outcomes))
	for i, o := range r.Outcomes {
		entry := map[string]any{
			"case": o.Case,
			"pass": o.Pass,
		}
		if o.Reason != "" {
			entry["reason"] = o.Reason
		}
		outcomes[i] = entry
	}

	return canon.Marshal(map[string]any{
		"engine":   r.Engine,
		"total":    r.Total,
		"passed":   r.Passed,
		"failed":   len(r.Failed),
		"outcomes": outcomes,
	})
}

// Digest returns the content digest of r's snapshot.
func Digest(r *Report) (string, error) {
	snap, err := Snapshot(r)
	if err != nil {
		return "", err
	}
	return canon.Digest(DigestDomain, snap), nil
}

// AssertGolden compares the snapshot of r against
// testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, r *Report) {
	t.Helper()

	snap, err := Snapshot(r)
	if err != nil {
		t.Fatalf("snapshot %s: %v", name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snap)
}
