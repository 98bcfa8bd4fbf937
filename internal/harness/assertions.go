package harness

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/rxharness/internal/matcher"
)

// Reason prefixes for outcomes that did not reach the comparison step.
const (
	ReasonPatternRejected = "pattern rejected by matching capability"
	ReasonMatcherError    = "matching capability error"
	ReasonMatcherPanic    = "matching capability panicked"
)

// AssertionMismatch describes one check that disagreed with the matcher.
// It is rendered into Outcome.Reason and never returned to callers.
type AssertionMismatch struct {
	Case     string
	Check    string // "found" or "group N"
	Expected string
	Actual   string
}

func (e *AssertionMismatch) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Check, e.Expected, e.Actual)
}

// compare checks res against the expectation of c.
// Every failing check is collected; the result joins them in index order.
func compare(c TestCase, res matcher.MatchResult) error {
	switch c.Expect.Kind {
	case ExpectMatch:
		if res.Found != c.Expect.Match {
			return foundMismatch(c, c.Expect.Match, res.Found)
		}
		return nil

	case ExpectGroups:
		if !res.Found {
			return foundMismatch(c, true, false)
		}

		var errs []error
		for _, i := range c.Expect.indexes() {
			want := c.Expect.Groups[i]
			got, ok := res.Group(i)
			if !ok {
				errs = append(errs, &AssertionMismatch{
					Case:     c.Name,
					Check:    groupCheck(i),
					Expected: formatExpected(want),
					Actual:   fmt.Sprintf("out of range (%d groups)", len(res.Groups)-1),
				})
				continue
			}
			if !groupEqual(want, got) {
				errs = append(errs, &AssertionMismatch{
					Case:     c.Name,
					Check:    groupCheck(i),
					Expected: formatExpected(want),
					Actual:   formatGroup(got),
				})
			}
		}
		return errors.Join(errs...)

	default:
		return fmt.Errorf("unknown expectation kind %q", c.Expect.Kind)
	}
}

// groupEqual treats an unset group as equal only to a nil expectation.
func groupEqual(want *string, got matcher.Group) bool {
	if want == nil {
		return !got.Set
	}
	return got.Set && got.Text == *want
}

func foundMismatch(c TestCase, want, got bool) *AssertionMismatch {
	return &AssertionMismatch{
		Case:     c.Name,
		Check:    "found",
		Expected: strconv.FormatBool(want),
		Actual:   strconv.FormatBool(got),
	}
}

func groupCheck(i int) string {
	return "group " + strconv.Itoa(i)
}

const unsetMarker = "<unset>"

func formatExpected(want *string) string {
	if want == nil {
		return unsetMarker
	}
	return strconv.Quote(*want)
}

func formatGroup(g matcher.Group) string {
	if !g.Set {
		return unsetMarker
	}
	return strconv.Quote(g.Text)
}

// failureReason renders a reason for an outcome that did not reach the
// comparison step. Engine messages quote the pattern verbatim, so invalid
// UTF-8 is replaced to keep the reason encodable in snapshots and the store.
func failureReason(prefix string, v any) string {
	return strings.ToValidUTF8(fmt.Sprintf("%s: %v", prefix, v), "\uFFFD")
}

// reasonFor renders the error returned by compare.
func reasonFor(err error) string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		parts := make([]string, 0, len(joined.Unwrap()))
		for _, e := range joined.Unwrap() {
			parts = append(parts, e.Error())
		}
		return strings.Join(parts, "; ")
	}
	return err.Error()
}
