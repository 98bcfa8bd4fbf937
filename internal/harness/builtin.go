package harness

// BuiltinName is the catalog name reported for Builtin.
const BuiltinName = "builtin"

// Builtin returns the reference catalog: escapes and character classes,
// the wildcard, quantifiers, bracket classes, alternation, anchors, capture
// groups, and greedy against lazy repetition.
//
// A fresh catalog is built on every call so callers may filter or reorder
// the slice freely.
func Builtin() Catalog {
	return Catalog{
		Name:        BuiltinName,
		Description: "Core regular-expression syntax",
		Cases: []TestCase{
			// Escapes: \d digit, \w word, \s space, \b word boundary.
			{Name: "digit_escape", Pattern: `00\d`, Subject: "008", Expect: BooleanMatch(true)},
			{Name: "digit_escape_rejects_letter", Pattern: `00\d`, Subject: "00A", Expect: BooleanMatch(false)},
			{Name: "word_boundary_at_end", Pattern: `er\b`, Subject: "never", Expect: BooleanMatch(true)},
			{Name: "word_boundary_inside_word", Pattern: `er\b`, Subject: "nevered", Expect: BooleanMatch(false)},
			{Name: "boundary_at_start", Pattern: `\bja`, Subject: "java", Expect: BooleanMatch(true)},

			// "." matches one character of any kind; only "jav" is consumed.
			{Name: "dot_wildcard", Pattern: `ja.`, Subject: "java", Expect: GroupCapture(map[int]*string{0: Text("jav")})},

			// Quantifiers.
			{Name: "exact_repetition", Pattern: `\d{3,3}`, Subject: "001", Expect: BooleanMatch(true)},
			{Name: "one_or_more", Pattern: `0+`, Subject: "9031", Expect: BooleanMatch(true)},
			{Name: "zero_or_more_empty_span", Pattern: `0*`, Subject: "931", Expect: GroupCapture(map[int]*string{0: Text("")})},
			{Name: "zero_repetitions", Pattern: `ab{0}c`, Subject: "ac", Expect: BooleanMatch(true)},

			// Bracket classes, alternation and anchors.
			{Name: "word_class_range", Pattern: `[0-9a-zA-Z_]+`, Subject: "_D3", Expect: BooleanMatch(true)},
			{Name: "identifier_shape", Pattern: `[a-zA-Z\_][0-9a-zA-Z\_]*`, Subject: "ai", Expect: BooleanMatch(true)},
			{Name: "negated_class", Pattern: `[^0-9]+`, Subject: "42abc", Expect: GroupCapture(map[int]*string{0: Text("abc")})},
			{Name: "alternation_group", Pattern: `(J|j)ava`, Subject: "java", Expect: BooleanMatch(true)},
			{Name: "start_anchor", Pattern: `^ja`, Subject: "java", Expect: BooleanMatch(true)},
			{Name: "anchored_both_ends", Pattern: `^ja$`, Subject: "ja", Expect: BooleanMatch(true)},

			// Capture groups are numbered from 1; group 0 is the whole match.
			{Name: "capture_groups", Pattern: `^(\d{3})-(\d{3,8})$`, Subject: "010-123456", Expect: GroupCapture(map[int]*string{
				0: Text("010-123456"),
				1: Text("010"),
				2: Text("123456"),
			})},
			{Name: "nested_groups", Pattern: `((a)(b))c`, Subject: "xabc", Expect: GroupCapture(map[int]*string{
				0: Text("abc"),
				1: Text("ab"),
				2: Text("a"),
				3: Text("b"),
			})},
			{Name: "optional_group_unset", Pattern: `a(b)?c`, Subject: "ac", Expect: GroupCapture(map[int]*string{
				0: Text("ac"),
				1: nil,
			})},

			// Lazy \d+? leaves the trailing zeros to (0*); greedy \d+ takes them.
			{Name: "lazy_quantifier", Pattern: `^(\d+?)(0*)$`, Subject: "10203000", Expect: GroupCapture(map[int]*string{
				2: Text("000"),
			})},
			{Name: "greedy_quantifier", Pattern: `^(\d+)(0*)$`, Subject: "10203000", Expect: GroupCapture(map[int]*string{
				1: Text("10203000"),
				2: Text(""),
			})},
		},
	}
}
