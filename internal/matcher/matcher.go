package matcher

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Engine names accepted by New.
const (
	EngineStd     = "std"
	EngineCoregex = "coregex"
	EnginePCRE    = "pcre"
	EngineAuto    = "auto"
)

// Default limits applied when a Limits field is zero.
const (
	DefaultMaxPatternLen = 4 << 10
	DefaultMaxSubjectLen = 1 << 20
	DefaultTimeout       = time.Second
)

// ErrInputTooLarge is returned when a pattern or subject exceeds Limits.
var ErrInputTooLarge = errors.New("input exceeds matcher limits")

// Matcher is a pattern-matching capability.
//
// Find compiles pattern and returns the leftmost match in subject. A pattern
// that cannot be compiled yields a *PatternSyntaxError. A subject without a
// match yields a MatchResult with Found == false and a nil error.
//
// Implementations must be safe for concurrent use.
type Matcher interface {
	Name() string
	Find(pattern, subject string) (MatchResult, error)
}

// MatchResult is the outcome of a single Find call.
type MatchResult struct {
	Found bool `json:"found"`

	// Groups holds the whole match at index 0 followed by the capturing
	// groups numbered left to right from 1. Empty when Found is false.
	Groups []Group `json:"groups,omitempty"`
}

// Group is one captured span.
// Set is false when the group did not participate in the match; such a group
// has empty Text but is distinct from a group that captured "".
type Group struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Set   bool   `json:"set"`
}

// Group returns the i-th group and whether the index exists.
func (r MatchResult) Group(i int) (Group, bool) {
	if i < 0 || i >= len(r.Groups) {
		return Group{}, false
	}
	return r.Groups[i], true
}

// PatternSyntaxError reports a pattern that the engine refused to compile.
type PatternSyntaxError struct {
	Engine  string
	Pattern string
	Err     error
}

func (e *PatternSyntaxError) Error() string {
	return fmt.Sprintf("%s: invalid pattern %q: %v", e.Engine, e.Pattern, e.Err)
}

func (e *PatternSyntaxError) Unwrap() error {
	return e.Err
}

// Limits bounds the input accepted by an engine.
// Zero fields take the package defaults; negative fields disable the bound.
type Limits struct {
	MaxPatternLen int
	MaxSubjectLen int
	Timeout       time.Duration
}

// withDefaults fills zero fields with the package defaults.
func (l Limits) withDefaults() Limits {
	if l.MaxPatternLen == 0 {
		l.MaxPatternLen = DefaultMaxPatternLen
	}
	if l.MaxSubjectLen == 0 {
		l.MaxSubjectLen = DefaultMaxSubjectLen
	}
	if l.Timeout == 0 {
		l.Timeout = DefaultTimeout
	}
	return l
}

// check rejects oversized input.
func (l Limits) check(pattern, subject string) error {
	if l.MaxPatternLen > 0 && len(pattern) > l.MaxPatternLen {
		return fmt.Errorf("%w: pattern is %d bytes, limit is %d", ErrInputTooLarge, len(pattern), l.MaxPatternLen)
	}
	if l.MaxSubjectLen > 0 && len(subject) > l.MaxSubjectLen {
		return fmt.Errorf("%w: subject is %d bytes, limit is %d", ErrInputTooLarge, len(subject), l.MaxSubjectLen)
	}
	return nil
}

var constructors = map[string]func(Limits) Matcher{
	EngineStd:     func(l Limits) Matcher { return &stdMatcher{limits: l} },
	EngineCoregex: func(l Limits) Matcher { return &coreMatcher{limits: l} },
	EnginePCRE:    func(l Limits) Matcher { return &pcreMatcher{limits: l} },
	EngineAuto: func(l Limits) Matcher {
		return &autoMatcher{
			core: &coreMatcher{limits: l},
			pcre: &pcreMatcher{limits: l},
		}
	},
}

// New returns the engine registered under name.
func New(name string, limits Limits) (Matcher, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown engine %q: must be one of %v", name, Engines())
	}
	return ctor(limits.withDefaults()), nil
}

// Engines returns the registered engine names in sorted order.
func Engines() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resultFromIndex builds a MatchResult from a submatch index slice in the
// format returned by regexp.FindStringSubmatchIndex: pairs of byte offsets,
// -1 for groups that did not participate.
func resultFromIndex(subject string, idx []int) MatchResult {
	if idx == nil {
		return MatchResult{}
	}

	groups := make([]Group, len(idx)/2)
	for i := range groups {
		start, end := idx[2*i], idx[2*i+1]
		if start < 0 || end < 0 {
			groups[i] = Group{Start: -1, End: -1}
			continue
		}
		groups[i] = Group{
			Text:  subject[start:end],
			Start: start,
			End:   end,
			Set:   true,
		}
	}

	return MatchResult{Found: true, Groups: groups}
}
