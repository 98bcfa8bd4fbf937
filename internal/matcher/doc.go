// Package matcher provides the pattern-matching capabilities that the
// conformance harness evaluates.
//
// A Matcher compiles a pattern and searches a subject left to right for the
// first match, returning the whole-match span as group 0 followed by every
// capturing group in pattern order. Compilation failures are reported as
// *PatternSyntaxError so callers can tell a rejected pattern apart from any
// other failure.
//
// # Engines
//
// Four engines are registered under stable names:
//
//   - std: Go's RE2 implementation (package regexp)
//   - coregex: github.com/coregx/coregex, an accelerated RE2-compatible engine
//   - pcre: github.com/dlclark/regexp2, a backtracking engine with
//     lookaround, backreferences and atomic groups
//   - auto: coregex, switching to pcre for patterns that need it
//
// Offsets in a MatchResult are byte offsets into the subject for every
// engine, including pcre, whose native offsets are rune indexes. Group
// indexes are pattern order for every engine too: pcre reorders regexp2's
// groups, which number named groups after all unnamed ones.
//
// # Limits
//
// Every engine enforces Limits before compiling. Oversized patterns or
// subjects fail with ErrInputTooLarge; the pcre engine additionally applies
// Limits.Timeout as its match timeout.
package matcher
