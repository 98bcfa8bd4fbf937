package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/rxharness/internal/harness"
	"github.com/roach88/rxharness/internal/matcher"
)

// createTestStore creates a new file-backed store for testing.
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

// createTestReport builds a report with one outcome per name.
// Names listed in failing get a failing outcome.
func createTestReport(engine string, names []string, failing ...string) *harness.Report {
	fail := make(map[string]bool, len(failing))
	for _, n := range failing {
		fail[n] = true
	}

	outcomes := make([]harness.Outcome, len(names))
	for i, n := range names {
		if fail[n] {
			outcomes[i] = harness.Outcome{Case: n, Reason: "found: expected true, got false"}
			continue
		}
		outcomes[i] = harness.Outcome{
			Case: n,
			Pass: true,
			Result: matcher.MatchResult{
				Found:  true,
				Groups: []matcher.Group{{Text: n, Start: 0, End: len(n), Set: true}},
			},
		}
	}
	return harness.NewReport(engine, outcomes)
}
