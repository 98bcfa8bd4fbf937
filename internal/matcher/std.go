package matcher

import (
	"regexp"

	"github.com/coregx/coregex"
)

// stdMatcher uses Go's RE2 implementation.
type stdMatcher struct {
	limits Limits
}

func (m *stdMatcher) Name() string { return EngineStd }

func (m *stdMatcher) Find(pattern, subject string) (MatchResult, error) {
	if err := m.limits.check(pattern, subject); err != nil {
		return MatchResult{}, err
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return MatchResult{}, &PatternSyntaxError{Engine: EngineStd, Pattern: pattern, Err: err}
	}

	return resultFromIndex(subject, re.FindStringSubmatchIndex(subject)), nil
}

// coreMatcher uses coregex, which accepts RE2 syntax and reports submatches
// the same way the standard library does.
type coreMatcher struct {
	limits Limits
}

func (m *coreMatcher) Name() string { return EngineCoregex }

func (m *coreMatcher) Find(pattern, subject string) (MatchResult, error) {
	if err := m.limits.check(pattern, subject); err != nil {
		return MatchResult{}, err
	}

	re, err := coregex.Compile(pattern)
	if err != nil {
		return MatchResult{}, &PatternSyntaxError{Engine: EngineCoregex, Pattern: pattern, Err: err}
	}

	return resultFromIndex(subject, re.FindStringSubmatchIndex(subject)), nil
}
