package matcher

import "strings"

// autoMatcher runs coregex unless the pattern uses syntax that only the
// backtracking engine understands.
type autoMatcher struct {
	core *coreMatcher
	pcre *pcreMatcher
}

func (m *autoMatcher) Name() string { return EngineAuto }

func (m *autoMatcher) Find(pattern, subject string) (MatchResult, error) {
	return m.route(pattern).Find(pattern, subject)
}

// route picks the engine for pattern.
func (m *autoMatcher) route(pattern string) Matcher {
	if NeedsBacktracking(pattern) {
		return m.pcre
	}
	return m.core
}

// backtrackingTokens are constructs RE2 rejects but regexp2 accepts.
var backtrackingTokens = []string{
	"(?=", "(?!", "(?<=", "(?<!", // lookaround
	"(?>",      // atomic group
	"(?#",      // inline comment
	"(?(",      // conditional
	`\Z`, `\G`, // anchors RE2 lacks
	`\k<`, `\k'`, // named backreference
}

// NeedsBacktracking reports whether pattern uses lookaround, backreferences,
// atomic groups, conditionals, quoted named groups or anchors that RE2
// engines cannot compile.
func NeedsBacktracking(pattern string) bool {
	for _, tok := range backtrackingTokens {
		if strings.Contains(pattern, tok) {
			return true
		}
	}

	// Numbered backreferences \1..\9, skipping escaped backslashes.
	escaped := false
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '\\' {
			escaped = false
			continue
		}
		if !escaped && i+1 < len(pattern) && pattern[i+1] >= '1' && pattern[i+1] <= '9' {
			return true
		}
		escaped = !escaped
	}

	// RE2 accepts (?P<name>...) and (?<name>...) but not (?'name'...).
	return strings.Contains(pattern, "(?'")
}
