package harness

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rxharness/internal/matcher"
)

// fakeMatcher returns canned results and counts calls.
type fakeMatcher struct {
	find  func(pattern, subject string) (matcher.MatchResult, error)
	calls atomic.Int32
}

func (f *fakeMatcher) Name() string { return "fake" }

func (f *fakeMatcher) Find(pattern, subject string) (matcher.MatchResult, error) {
	f.calls.Add(1)
	return f.find(pattern, subject)
}

func newMatcher(t *testing.T, engine string) matcher.Matcher {
	t.Helper()
	m, err := matcher.New(engine, matcher.Limits{})
	require.NoError(t, err)
	return m
}

func TestEvaluate_BooleanMatch(t *testing.T) {
	m := newMatcher(t, matcher.EngineStd)

	tests := []struct {
		name    string
		pattern string
		subject string
		expect  bool
		pass    bool
	}{
		{"digit matches", `00\d`, "008", true, true},
		{"digit rejects letter", `00\d`, "00A", false, true},
		{"boundary at end", `er\b`, "never", true, true},
		{"boundary inside word", `er\b`, "nevered", false, true},
		{"wrong expectation", `er\b`, "nevered", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Evaluate(TestCase{
				Name:    tt.name,
				Pattern: tt.pattern,
				Subject: tt.subject,
				Expect:  BooleanMatch(tt.expect),
			}, m)
			assert.Equal(t, tt.pass, out.Pass)
			assert.Equal(t, tt.name, out.Case)
			if tt.pass {
				assert.Empty(t, out.Reason)
			} else {
				assert.Equal(t, "found: expected true, got false", out.Reason)
			}
		})
	}
}

func TestEvaluate_PassIffFoundFlagAgrees(t *testing.T) {
	for _, found := range []bool{true, false} {
		for _, expect := range []bool{true, false} {
			m := &fakeMatcher{find: func(string, string) (matcher.MatchResult, error) {
				return matcher.MatchResult{Found: found}, nil
			}}
			out := Evaluate(TestCase{Name: "c", Pattern: "x", Expect: BooleanMatch(expect)}, m)
			assert.Equal(t, found == expect, out.Pass, "found=%v expect=%v", found, expect)
		}
	}
}

func TestEvaluate_GroupCapture(t *testing.T) {
	m := newMatcher(t, matcher.EngineStd)

	out := Evaluate(TestCase{
		Name:    "wildcard",
		Pattern: `ja.`,
		Subject: "java",
		Expect:  GroupCapture(map[int]*string{0: Text("jav")}),
	}, m)
	assert.True(t, out.Pass, out.Reason)

	out = Evaluate(TestCase{
		Name:    "phone",
		Pattern: `^(\d{3})-(\d{3,8})$`,
		Subject: "010-123456",
		Expect:  GroupCapture(map[int]*string{1: Text("010"), 2: Text("123456")}),
	}, m)
	assert.True(t, out.Pass, out.Reason)
	assert.Equal(t, "010-123456", out.Result.Groups[0].Text)

	out = Evaluate(TestCase{
		Name:    "lazy",
		Pattern: `^(\d+?)(0*)$`,
		Subject: "10203000",
		Expect:  GroupCapture(map[int]*string{2: Text("000")}),
	}, m)
	assert.True(t, out.Pass, out.Reason)
}

func TestEvaluate_GroupMismatchReasons(t *testing.T) {
	m := newMatcher(t, matcher.EngineStd)

	tests := []struct {
		name    string
		pattern string
		subject string
		groups  map[int]*string
		reason  string
	}{
		{
			name:    "wrong text",
			pattern: `^(\d+)(0*)$`,
			subject: "10203000",
			groups:  map[int]*string{2: Text("000")},
			reason:  `group 2: expected "000", got ""`,
		},
		{
			name:    "unset is not empty",
			pattern: `a(b)?c`,
			subject: "ac",
			groups:  map[int]*string{1: Text("")},
			reason:  `group 1: expected "", got <unset>`,
		},
		{
			name:    "empty is not unset",
			pattern: `a(b*)c`,
			subject: "ac",
			groups:  map[int]*string{1: nil},
			reason:  `group 1: expected <unset>, got ""`,
		},
		{
			name:    "index out of range",
			pattern: `(a)(b)`,
			subject: "ab",
			groups:  map[int]*string{5: Text("x")},
			reason:  `group 5: expected "x", got out of range (2 groups)`,
		},
		{
			name:    "no match",
			pattern: `z`,
			subject: "ab",
			groups:  map[int]*string{0: Text("z")},
			reason:  "found: expected true, got false",
		},
		{
			name:    "every mismatch reported in index order",
			pattern: `(a)(b)`,
			subject: "ab",
			groups:  map[int]*string{2: Text("x"), 1: Text("y"), 0: Text("ab")},
			reason:  `group 1: expected "y", got "a"; group 2: expected "x", got "b"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Evaluate(TestCase{
				Name:    tt.name,
				Pattern: tt.pattern,
				Subject: tt.subject,
				Expect:  GroupCapture(tt.groups),
			}, m)
			assert.False(t, out.Pass)
			assert.Equal(t, tt.reason, out.Reason)
		})
	}
}

func TestEvaluate_UnsetGroupMatchesNilExpectation(t *testing.T) {
	m := newMatcher(t, matcher.EngineStd)

	out := Evaluate(TestCase{
		Name:    "optional",
		Pattern: `a(b)?c`,
		Subject: "ac",
		Expect:  GroupCapture(map[int]*string{0: Text("ac"), 1: nil}),
	}, m)
	assert.True(t, out.Pass, out.Reason)
}

func TestEvaluate_PatternRejected(t *testing.T) {
	m := newMatcher(t, matcher.EngineStd)

	out := Evaluate(TestCase{Name: "bad", Pattern: `(`, Subject: "x", Expect: BooleanMatch(true)}, m)
	assert.False(t, out.Pass)
	assert.Contains(t, out.Reason, ReasonPatternRejected+": ")
	assert.False(t, out.Result.Found)
}

func TestEvaluate_MatcherError(t *testing.T) {
	m, err := matcher.New(matcher.EngineStd, matcher.Limits{MaxSubjectLen: 2})
	require.NoError(t, err)

	out := Evaluate(TestCase{Name: "big", Pattern: `a`, Subject: "aaa", Expect: BooleanMatch(true)}, m)
	assert.False(t, out.Pass)
	assert.Contains(t, out.Reason, ReasonMatcherError+": ")
	assert.Contains(t, out.Reason, "subject is 3 bytes")
}

func TestEvaluate_MatcherPanic(t *testing.T) {
	m := &fakeMatcher{find: func(string, string) (matcher.MatchResult, error) {
		panic("boom")
	}}

	out := Evaluate(TestCase{Name: "p", Pattern: "x", Expect: BooleanMatch(true)}, m)
	assert.False(t, out.Pass)
	assert.Equal(t, "p", out.Case)
	assert.Equal(t, ReasonMatcherPanic+": boom", out.Reason)
}

func TestEvaluate_InvalidUTF8InEngineError(t *testing.T) {
	m := newMatcher(t, matcher.EngineStd)
	cases := []TestCase{
		{Name: "raw_bytes", Pattern: "a\xff(", Subject: "a", Expect: BooleanMatch(true)},
		{Name: "after", Pattern: "a", Subject: "a", Expect: BooleanMatch(true)},
	}

	report := Run(cases, m)
	require.Len(t, report.Failed, 1)
	reason := report.Failed[0].Reason
	assert.Contains(t, reason, ReasonPatternRejected+": ")
	assert.True(t, utf8.ValidString(reason), "reason %q", reason)
	assert.Contains(t, reason, "\uFFFD")

	digest, err := Digest(report)
	require.NoError(t, err)
	assert.Len(t, digest, 64)
}

func TestEvaluate_InvalidUTF8InPanic(t *testing.T) {
	m := &fakeMatcher{find: func(string, string) (matcher.MatchResult, error) {
		panic("bad \xfe byte")
	}}

	out := Evaluate(TestCase{Name: "p", Pattern: "x", Expect: BooleanMatch(true)}, m)
	assert.Equal(t, ReasonMatcherPanic+": bad \uFFFD byte", out.Reason)
}

func TestEvaluate_UnknownExpectation(t *testing.T) {
	m := newMatcher(t, matcher.EngineStd)

	out := Evaluate(TestCase{Name: "zero", Pattern: "x", Subject: "x"}, m)
	assert.False(t, out.Pass)
	assert.Contains(t, out.Reason, "unknown expectation kind")
}

func TestEvaluate_Idempotent(t *testing.T) {
	m := newMatcher(t, matcher.EngineAuto)

	for _, c := range Builtin().Cases {
		first := Evaluate(c, m)
		second := Evaluate(c, m)
		assert.Equal(t, first, second, c.Name)
	}
}

func TestRun_IsolatesRejectedPattern(t *testing.T) {
	m := &fakeMatcher{find: func(pattern, subject string) (matcher.MatchResult, error) {
		if pattern == "(" {
			return matcher.MatchResult{}, &matcher.PatternSyntaxError{
				Engine: "fake", Pattern: pattern, Err: errors.New("missing closing )"),
			}
		}
		return matcher.MatchResult{Found: true, Groups: []matcher.Group{{Text: subject, End: len(subject), Set: true}}}, nil
	}}

	cases := []TestCase{
		{Name: "first", Pattern: "a", Subject: "a", Expect: BooleanMatch(true)},
		{Name: "broken", Pattern: "(", Subject: "a", Expect: BooleanMatch(true)},
		{Name: "after", Pattern: "b", Subject: "b", Expect: GroupCapture(map[int]*string{0: Text("b")})},
		{Name: "failing", Pattern: "c", Subject: "c", Expect: BooleanMatch(false)},
		{Name: "last", Pattern: "d", Subject: "d", Expect: BooleanMatch(true)},
	}

	report := Run(cases, m)

	assert.Equal(t, int32(len(cases)), m.calls.Load(), "every case must execute")
	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 3, report.Passed)
	assert.False(t, report.OK())
	require.Len(t, report.Failed, 2)
	assert.Equal(t, "broken", report.Failed[0].Name)
	assert.Equal(t, ReasonPatternRejected+": missing closing )", report.Failed[0].Reason)
	assert.Equal(t, "failing", report.Failed[1].Name)

	names := make([]string, len(report.Outcomes))
	for i, o := range report.Outcomes {
		names[i] = o.Case
	}
	assert.Equal(t, []string{"first", "broken", "after", "failing", "last"}, names)
	assert.Equal(t, "fake", report.Engine)
}

func TestRun_Empty(t *testing.T) {
	report := Run(nil, newMatcher(t, matcher.EngineStd))
	assert.Equal(t, 0, report.Total)
	assert.True(t, report.OK())
	assert.NotNil(t, report.Failed)
}

func TestRun_BuiltinPassesOnRE2Engines(t *testing.T) {
	for _, engine := range []string{matcher.EngineStd, matcher.EngineCoregex, matcher.EngineAuto} {
		t.Run(engine, func(t *testing.T) {
			report := Run(Builtin().Cases, newMatcher(t, engine))
			assert.Empty(t, report.Failed)
			assert.Equal(t, len(Builtin().Cases), report.Passed)
		})
	}
}

func TestRun_BuiltinOnBacktrackingEngine(t *testing.T) {
	// identifier_shape escapes '_' inside a class, which regexp2 may reject.
	var cases []TestCase
	for _, c := range Builtin().Cases {
		if c.Name != "identifier_shape" {
			cases = append(cases, c)
		}
	}
	require.Len(t, cases, len(Builtin().Cases)-1)

	report := Run(cases, newMatcher(t, matcher.EnginePCRE))
	assert.True(t, report.OK(), "%v", report.Failed)
	assert.Equal(t, len(cases), report.Passed)
}

func TestRunParallel_MatchesRun(t *testing.T) {
	m := newMatcher(t, matcher.EngineStd)
	cases := append(Builtin().Cases,
		TestCase{Name: "broken", Pattern: `[`, Subject: "", Expect: BooleanMatch(false)},
		TestCase{Name: "wrong", Pattern: `a`, Subject: "b", Expect: BooleanMatch(true)},
	)

	h := New(m)
	serial := h.Run(cases)
	for _, workers := range []int{0, 1, 3, 64} {
		parallel, err := h.RunParallel(context.Background(), cases, workers)
		require.NoError(t, err)
		assert.Equal(t, serial, parallel, "workers=%d", workers)
	}
}

func TestRunParallel_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(newMatcher(t, matcher.EngineStd)).RunParallel(ctx, Builtin().Cases, 2)
	require.ErrorIs(t, err, context.Canceled)
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := New(newMatcher(t, matcher.EngineStd), WithLogger(logger))
	h.Run([]TestCase{{Name: "digit_escape", Pattern: `00\d`, Subject: "008", Expect: BooleanMatch(true)}})

	out := buf.String()
	assert.Contains(t, out, "case=digit_escape")
	assert.Contains(t, out, "engine=std")
	assert.Contains(t, out, "run completed")

	// A nil logger keeps the default.
	assert.NotNil(t, New(newMatcher(t, matcher.EngineStd), WithLogger(nil)).logger)
}

func TestWithObserver(t *testing.T) {
	var seen atomic.Int32
	h := New(newMatcher(t, matcher.EngineStd), WithObserver(func(Outcome) { seen.Add(1) }))

	h.Run(Builtin().Cases)
	assert.Equal(t, int32(len(Builtin().Cases)), seen.Load())

	_, err := h.RunParallel(context.Background(), Builtin().Cases, 4)
	require.NoError(t, err)
	assert.Equal(t, int32(2*len(Builtin().Cases)), seen.Load())

	// Evaluate alone does not notify.
	h.Evaluate(Builtin().Cases[0])
	assert.Equal(t, int32(2*len(Builtin().Cases)), seen.Load())
}
