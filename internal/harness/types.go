package harness

import (
	"sort"

	"github.com/roach88/rxharness/internal/matcher"
)

// ExpectKind selects how a case's outcome is judged.
type ExpectKind string

const (
	// ExpectMatch compares only the found flag.
	ExpectMatch ExpectKind = "match"

	// ExpectGroups requires a match and compares the asserted groups.
	ExpectGroups ExpectKind = "groups"
)

// Expectation is what a case requires of the matcher.
// Build one with BooleanMatch or GroupCapture.
type Expectation struct {
	Kind ExpectKind

	// Match is the expected found flag (ExpectMatch).
	Match bool

	// Groups maps group index to expected text (ExpectGroups).
	// A nil value asserts the group is unset. Indexes not present are not
	// checked.
	Groups map[int]*string
}

// BooleanMatch expects the found flag to equal found.
func BooleanMatch(found bool) Expectation {
	return Expectation{Kind: ExpectMatch, Match: found}
}

// GroupCapture expects a match whose groups agree with groups.
func GroupCapture(groups map[int]*string) Expectation {
	return Expectation{Kind: ExpectGroups, Groups: groups}
}

// Text returns a pointer to s, for building GroupCapture maps.
func Text(s string) *string {
	return &s
}

// indexes returns the asserted group indexes in ascending order.
func (e Expectation) indexes() []int {
	idx := make([]int, 0, len(e.Groups))
	for i := range e.Groups {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// TestCase is a named pattern, subject and expectation.
// Cases are defined when a catalog is built and never mutated.
type TestCase struct {
	Name    string
	Pattern string
	Subject string
	Expect  Expectation
}

// Outcome is the result of evaluating one case.
type Outcome struct {
	Case   string              `json:"case"`
	Pass   bool                `json:"pass"`
	Reason string              `json:"reason,omitempty"`
	Result matcher.MatchResult `json:"result"`
}

// Failure names a failed case and why it failed.
type Failure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Report aggregates the outcomes of a run, in case order.
type Report struct {
	Engine   string    `json:"engine"`
	Total    int       `json:"total"`
	Passed   int       `json:"passed"`
	Failed   []Failure `json:"failed"`
	Outcomes []Outcome `json:"outcomes"`
}

// NewReport aggregates outcomes produced by engine.
func NewReport(engine string, outcomes []Outcome) *Report {
	r := &Report{
		Engine:   engine,
		Failed:   []Failure{},
		Outcomes: make([]Outcome, 0, len(outcomes)),
	}
	for _, o := range outcomes {
		r.add(o)
	}
	return r
}

func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.Total++
	if o.Pass {
		r.Passed++
		return
	}
	r.Failed = append(r.Failed, Failure{Name: o.Case, Reason: o.Reason})
}

// OK reports whether every case passed.
func (r *Report) OK() bool {
	return len(r.Failed) == 0
}
