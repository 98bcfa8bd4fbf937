package matcher

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// pcreMatcher uses regexp2, a backtracking engine. Its offsets are rune
// indexes and are converted to byte offsets before they leave this file.
type pcreMatcher struct {
	limits Limits
}

func (m *pcreMatcher) Name() string { return EnginePCRE }

func (m *pcreMatcher) Find(pattern, subject string) (MatchResult, error) {
	if err := m.limits.check(pattern, subject); err != nil {
		return MatchResult{}, err
	}

	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return MatchResult{}, &PatternSyntaxError{Engine: EnginePCRE, Pattern: pattern, Err: err}
	}
	if m.limits.Timeout > 0 {
		re.MatchTimeout = m.limits.Timeout
	}

	match, err := re.FindStringMatch(subject)
	if err != nil {
		return MatchResult{}, err
	}
	if match == nil {
		return MatchResult{}, nil
	}

	offsets := runeOffsets(subject)
	order := groupOrder(pattern, re)
	groups := make([]Group, len(order))
	for i, num := range order {
		g := match.GroupByNumber(num)
		if g == nil || len(g.Captures) == 0 {
			groups[i] = Group{Start: -1, End: -1}
			continue
		}
		start := offsets[g.Index]
		end := offsets[g.Index+g.Length]
		groups[i] = Group{
			Text:  subject[start:end],
			Start: start,
			End:   end,
			Set:   true,
		}
	}

	return MatchResult{Found: true, Groups: groups}, nil
}

// groupOrder lists regexp2 group numbers in the order their opening
// parentheses appear in pattern, starting with 0. regexp2 itself numbers
// named groups after every unnamed one.
func groupOrder(pattern string, re *regexp2.Regexp) []int {
	defined := make(map[int]bool)
	for _, n := range re.GetGroupNumbers() {
		defined[n] = true
	}

	order := []int{0}
	seen := map[int]bool{0: true}
	add := func(n int) {
		if defined[n] && !seen[n] {
			seen[n] = true
			order = append(order, n)
		}
	}

	for _, ref := range scanCaptures(pattern) {
		if ref.name != "" {
			add(re.GroupNumberFromName(ref.name))
			continue
		}
		add(ref.number)
	}

	// Anything the scan missed keeps regexp2's order at the end.
	rest := make([]int, 0, len(defined))
	for n := range defined {
		if !seen[n] {
			rest = append(rest, n)
		}
	}
	sort.Ints(rest)
	return append(order, rest...)
}

// captureRef identifies one capturing group by number or by name.
type captureRef struct {
	number int
	name   string
}

// scanCaptures walks pattern and reports its capturing groups in textual
// order. Unnamed groups are numbered the way regexp2 numbers them.
func scanCaptures(pattern string) []captureRef {
	var refs []captureRef
	autocap := 1
	skipNext := false

	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '[':
			i = skipClass(pattern, i)
		case '(':
			rest := pattern[i+1:]
			switch {
			case strings.HasPrefix(rest, "?#"):
				if end := strings.IndexByte(rest, ')'); end >= 0 {
					i += end + 1
				} else {
					i = len(pattern)
				}
			case strings.HasPrefix(rest, "?("):
				// The condition of (?(...)yes|no) does not capture.
				skipNext = true
				i++
				continue
			case strings.HasPrefix(rest, "?<") || strings.HasPrefix(rest, "?'"):
				if name := captureName(rest[2:]); name != "" {
					if n, err := strconv.Atoi(name); err == nil {
						refs = append(refs, captureRef{number: n})
					} else {
						refs = append(refs, captureRef{name: name})
					}
				}
			case strings.HasPrefix(rest, "?"):
			case !skipNext:
				refs = append(refs, captureRef{number: autocap})
				autocap++
			}
			skipNext = false
		}
	}
	return refs
}

// captureName returns the word characters at the start of s, or "" when s
// starts with anything else (as in the lookbehind forms (?<= and (?<!).
func captureName(s string) string {
	end := 0
	for i, r := range s {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		end = i + utf8.RuneLen(r)
	}
	if end == 0 || s[0] == '0' {
		return ""
	}
	return s[:end]
}

// skipClass returns the index of the ']' closing the class opened at i.
// A ']' directly after '[' or '[^' is a literal.
func skipClass(pattern string, i int) int {
	j := i + 1
	if j < len(pattern) && pattern[j] == '^' {
		j++
	}
	if j < len(pattern) && pattern[j] == ']' {
		j++
	}
	for ; j < len(pattern); j++ {
		switch pattern[j] {
		case '\\':
			j++
		case ']':
			return j
		}
	}
	return len(pattern)
}

// runeOffsets maps each rune index of s to its byte offset, with one extra
// entry for the end of the string.
func runeOffsets(s string) []int {
	offsets := make([]int, 0, utf8.RuneCountInString(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	return append(offsets, len(s))
}
