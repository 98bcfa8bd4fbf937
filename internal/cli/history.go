package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rxharness/internal/config"
	"github.com/roach88/rxharness/internal/harness"
	"github.com/roach88/rxharness/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	RunID    string // show outcomes of one run
	Compare  string // base run to diff RunID against
	Case     string // show one case across runs
}

// RunDetail is the payload of history --run.
type RunDetail struct {
	Run      store.RunRecord   `json:"run"`
	Outcomes []harness.Outcome `json:"outcomes"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded runs",
		Long: `Inspect runs recorded by "rxharness test --db".

Without selectors, lists runs newest first. --run shows the outcomes of one
run; adding --compare diffs it against an earlier run. --case shows one
case's verdict across every recorded run, oldest first.

Exit codes:
  0 - Success (and no regressions with --compare)
  1 - --compare found regressions
  2 - Command error (database not found, unknown run, etc.)

Examples:
  rxharness history --db runs.db --limit 5
  rxharness history --db runs.db --run 0190f6c4-...
  rxharness history --db runs.db --run <head> --compare <base>
  rxharness history --db runs.db --case lazy_quantifier`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from "+config.EnvDB+")")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show outcomes of this run")
	cmd.Flags().StringVar(&opts.Compare, "compare", "", "base run to compare --run against")
	cmd.Flags().StringVar(&opts.Case, "case", "", "show one case across runs")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.formatter(cmd)

	if opts.Compare != "" && opts.RunID == "" {
		return NewExitError(ExitCommandError, "--compare requires --run")
	}

	cfg, err := opts.loadConfig(config.Flags{DBPath: opts.Database})
	if err != nil {
		return err
	}
	if cfg.DBPath == "" {
		return NewExitError(ExitCommandError, "database path required: use --db or "+config.EnvDB)
	}

	st, err := store.OpenExisting(cfg.DBPath)
	if err != nil {
		_ = out.Error(CodeStore, err.Error(), nil)
		if errors.Is(err, store.ErrDatabaseNotFound) {
			return WrapExitError(ExitCommandError, "database not found", err)
		}
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	switch {
	case opts.Compare != "":
		return historyCompare(ctx, st, opts, out, cmd)
	case opts.RunID != "":
		return historyRun(ctx, st, opts.RunID, out, cmd)
	case opts.Case != "":
		return historyCase(ctx, st, opts.Case, out, cmd)
	default:
		return historyList(ctx, st, opts.Limit, out, cmd)
	}
}

func historyList(ctx context.Context, st *store.Store, limit int, out *OutputFormatter, cmd *cobra.Command) error {
	runs, err := st.ListRuns(ctx, limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if out.JSON() {
		return out.Success(runs)
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		line := fmt.Sprintf("#%d %s %s/%s %d/%d passed", r.Seq, r.ID, r.Catalog, r.Engine, r.Passed, r.Total)
		if r.Failed == 0 {
			fmt.Fprintln(w, passMark("%s", line))
		} else {
			fmt.Fprintln(w, failMark("%s", line))
		}
	}
	return nil
}

func historyRun(ctx context.Context, st *store.Store, runID string, out *OutputFormatter, cmd *cobra.Command) error {
	rec, err := st.ReadRun(ctx, runID)
	if err != nil {
		return runLookupError(err, out)
	}
	outcomes, err := st.ReadOutcomes(ctx, runID)
	if err != nil {
		return runLookupError(err, out)
	}

	if out.JSON() {
		return out.Success(RunDetail{Run: rec, Outcomes: outcomes})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run #%d %s (%s, %s)\n", rec.Seq, rec.ID, rec.Catalog, rec.Engine)
	fmt.Fprintf(w, "Digest: %s\n", rec.Digest)
	for _, o := range outcomes {
		if o.Pass {
			fmt.Fprintln(w, passMark("%s", o.Case))
			continue
		}
		fmt.Fprintln(w, failMark("%s", o.Case))
		fmt.Fprintf(w, "  %s\n", o.Reason)
	}
	fmt.Fprintf(w, "\n%d passed, %d failed, %d total\n", rec.Passed, rec.Failed, rec.Total)
	return nil
}

func historyCompare(ctx context.Context, st *store.Store, opts *HistoryOptions, out *OutputFormatter, cmd *cobra.Command) error {
	diff, err := st.CompareRuns(ctx, opts.Compare, opts.RunID)
	if err != nil {
		return runLookupError(err, out)
	}

	msg := fmt.Sprintf("%d case(s) regressed", len(diff.Regressed))
	if out.JSON() {
		if diff.Clean() {
			return out.Success(diff)
		}
		if err := out.Failure(diff, CodeTestFailed, msg); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	w := cmd.OutOrStdout()
	for _, name := range diff.Regressed {
		fmt.Fprintln(w, failMark("regressed %s", name))
	}
	for _, name := range diff.Fixed {
		fmt.Fprintln(w, passMark("fixed %s", name))
	}
	for _, name := range diff.Added {
		fmt.Fprintf(w, "+ added %s\n", name)
	}
	for _, name := range diff.Removed {
		fmt.Fprintf(w, "- removed %s\n", name)
	}

	if !diff.Clean() {
		return NewExitError(ExitFailure, msg)
	}
	fmt.Fprintln(w, passMark("No regressions"))
	return nil
}

func historyCase(ctx context.Context, st *store.Store, name string, out *OutputFormatter, cmd *cobra.Command) error {
	results, err := st.CaseHistory(ctx, name)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read case history", err)
	}

	if out.JSON() {
		return out.Success(results)
	}

	w := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintf(w, "No recorded runs include %s.\n", name)
		return nil
	}
	for _, r := range results {
		if r.Pass {
			fmt.Fprintln(w, passMark("#%d %s", r.RunSeq, r.Engine))
			continue
		}
		fmt.Fprintln(w, failMark("#%d %s", r.RunSeq, r.Engine))
		fmt.Fprintf(w, "  %s\n", r.Reason)
	}
	return nil
}

func runLookupError(err error, out *OutputFormatter) error {
	if errors.Is(err, store.ErrRunNotFound) {
		_ = out.Error(CodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "unknown run", err)
	}
	return WrapExitError(ExitCommandError, "failed to read run", err)
}
