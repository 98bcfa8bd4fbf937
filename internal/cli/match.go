package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/rxharness/internal/config"
	"github.com/roach88/rxharness/internal/matcher"
)

// MatchResult is the payload of the match command.
type MatchResult struct {
	Engine  string          `json:"engine"`
	Pattern string          `json:"pattern"`
	Subject string          `json:"subject"`
	Found   bool            `json:"found"`
	Groups  []matcher.Group `json:"groups"`
}

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <pattern> <subject>",
		Short: "Find the first match of a pattern",
		Long: `Compile a pattern with the configured engine and print the first match
in subject together with every capture group.

Exit codes:
  0 - Pattern compiled (whether or not it matched)
  2 - Pattern rejected or input too large

Examples:
  rxharness match 'ja.' java
  rxharness match '(\w+)\s+\1' 'say go go' --engine pcre
  rxharness match '^(\d{3})-(\d{3,8})$' 010-123456 --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runMatch(opts *RootOptions, pattern, subject string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	cfg, err := opts.loadConfig(config.Flags{})
	if err != nil {
		return err
	}
	m, err := cfg.Matcher()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid engine", err)
	}

	res, err := m.Find(pattern, subject)
	if err != nil {
		var syntaxErr *matcher.PatternSyntaxError
		if errors.As(err, &syntaxErr) {
			_ = out.Error(CodePattern, syntaxErr.Err.Error(), map[string]string{
				"engine":  syntaxErr.Engine,
				"pattern": syntaxErr.Pattern,
			})
			return WrapExitError(ExitCommandError, "pattern rejected", err)
		}
		_ = out.Error(CodeInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "match failed", err)
	}

	result := MatchResult{
		Engine:  m.Name(),
		Pattern: pattern,
		Subject: subject,
		Found:   res.Found,
		Groups:  res.Groups,
	}
	if result.Groups == nil {
		result.Groups = []matcher.Group{}
	}

	if out.JSON() {
		return out.Success(result)
	}

	w := cmd.OutOrStdout()
	if !res.Found {
		fmt.Fprintln(w, failMark("no match"))
		return nil
	}
	fmt.Fprintln(w, passMark("match"))
	for i, g := range res.Groups {
		fmt.Fprintf(w, "  group %d: %s\n", i, formatGroup(g))
	}
	return nil
}

func formatGroup(g matcher.Group) string {
	if !g.Set {
		return "<unset>"
	}
	return fmt.Sprintf("%s [%d,%d)", strconv.Quote(g.Text), g.Start, g.End)
}
