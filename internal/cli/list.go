package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rxharness/internal/harness"
)

// ListedCase describes one case for the list command.
type ListedCase struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	Subject string `json:"subject"`
	Expect  string `json:"expect"`
}

// ListResult is the payload of the list command.
type ListResult struct {
	Catalog     string       `json:"catalog"`
	Description string       `json:"description"`
	Cases       []ListedCase `json:"cases"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list [catalog-path]",
		Short: "List the cases in a catalog",
		Long: `List the cases in a catalog file, or in the built-in catalog when no
path is given.

Examples:
  rxharness list
  rxharness list ./catalogs/anchors.yaml --filter "*anchor*"`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, args, filter, cmd)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "filter cases by glob pattern")

	return cmd
}

func runList(opts *RootOptions, args []string, filter string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	var cat *harness.Catalog
	if len(args) == 0 {
		builtin := harness.Builtin()
		cat = &builtin
	} else {
		loaded, err := harness.LoadCatalog(args[0])
		if err != nil {
			_ = out.Error(CodeLoad, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to load catalog", err)
		}
		cat = loaded
	}

	cases, err := cat.Filter(filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid filter", err)
	}

	result := ListResult{
		Catalog:     cat.Name,
		Description: cat.Description,
		Cases:       make([]ListedCase, len(cases)),
	}
	for i, c := range cases {
		result.Cases[i] = ListedCase{
			Name:    c.Name,
			Pattern: c.Pattern,
			Subject: c.Subject,
			Expect:  describeExpectation(c.Expect),
		}
	}

	if out.JSON() {
		return out.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: %s (%d cases)\n", result.Catalog, result.Description, len(result.Cases))
	for _, c := range result.Cases {
		fmt.Fprintf(w, "  %s\n    pattern %s  subject %s  expect %s\n",
			c.Name, strconv.Quote(c.Pattern), strconv.Quote(c.Subject), c.Expect)
	}
	return nil
}

// describeExpectation renders an expectation as "match=true" or
// "groups{0="jav" 1=<unset>}".
func describeExpectation(e harness.Expectation) string {
	switch e.Kind {
	case harness.ExpectMatch:
		return "match=" + strconv.FormatBool(e.Match)
	case harness.ExpectGroups:
		idx := make([]int, 0, len(e.Groups))
		for i := range e.Groups {
			idx = append(idx, i)
		}
		sort.Ints(idx)

		parts := make([]string, len(idx))
		for n, i := range idx {
			v := "<unset>"
			if e.Groups[i] != nil {
				v = strconv.Quote(*e.Groups[i])
			}
			parts[n] = fmt.Sprintf("%d=%s", i, v)
		}
		return "groups{" + strings.Join(parts, " ") + "}"
	default:
		return string(e.Kind)
	}
}
