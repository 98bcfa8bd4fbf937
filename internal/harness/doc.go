// Package harness provides conformance testing for regular-expression
// matching capabilities.
//
// A harness evaluates an ordered catalog of test cases against an injected
// matcher.Matcher and reports, per case and in aggregate, whether the engine
// behaved as each case expects. A mismatch is an outcome, not an error: the
// harness never aborts a run because one case failed, and a pattern the engine
// refuses to compile fails only that case.
//
// # Catalog Format
//
// Catalogs are defined in YAML (or CUE, with the same structure):
//
//	name: basics
//	description: "Character classes and anchors"
//	cases:
//	  - name: digit_escape
//	    pattern: '00\d'
//	    subject: "008"
//	    expect:
//	      match: true
//	  - name: capture_groups
//	    pattern: '^(\d{3})-(\d{3,8})$'
//	    subject: "010-123456"
//	    expect:
//	      groups:
//	        1: "010"
//	        2: "123456"
//
// # Expectations
//
// Each case carries exactly one expectation:
//
//   - match: the engine's found flag must equal the given boolean
//   - groups: the engine must find a match, and every listed group index must
//     hold the listed text. A null value asserts the group did not take part in
//     the match; it never equals an empty capture. Unlisted indexes are not
//     checked.
//
// # Usage
//
//	m, err := matcher.New(matcher.EngineStd, matcher.Limits{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report := harness.Run(harness.Builtin().Cases, m)
//	for _, f := range report.Failed {
//	    log.Printf("%s: %s", f.Name, f.Reason)
//	}
package harness
