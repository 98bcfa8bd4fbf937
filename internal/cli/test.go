package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/roach88/rxharness/internal/config"
	"github.com/roach88/rxharness/internal/harness"
	"github.com/roach88/rxharness/internal/store"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter   string // case filter (glob pattern)
	Parallel int    // workers; 0 defers to config
	Database string // record runs here; empty defers to config
	Progress bool   // draw a progress bar on stderr
}

// CaseResult holds the verdict for a single case.
type CaseResult struct {
	Name   string `json:"name"`
	Pass   bool   `json:"pass"`
	Reason string `json:"reason,omitempty"`
}

// CatalogResult holds the result of running one catalog.
type CatalogResult struct {
	Catalog string       `json:"catalog"`
	Path    string       `json:"path,omitempty"`
	Engine  string       `json:"engine"`
	RunID   string       `json:"run_id,omitempty"`
	Cases   []CaseResult `json:"cases"`
	Passed  int          `json:"passed"`
	Failed  int          `json:"failed"`
	Total   int          `json:"total"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Catalogs []CatalogResult `json:"catalogs"`
	Passed   int             `json:"passed"`
	Failed   int             `json:"failed"`
	Total    int             `json:"total"`
}

// loadedCatalog pairs a catalog with the file it came from.
type loadedCatalog struct {
	path    string
	catalog *harness.Catalog
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test [catalog-path...]",
		Short: "Run conformance catalogs",
		Long: `Run conformance catalogs against the configured matching engine.

Each argument is a catalog file (.yaml, .yml, .cue) or a directory searched
recursively for catalog files. With no arguments the built-in catalog runs.

Exit codes:
  0 - All cases passed
  1 - One or more cases failed
  2 - Command error (unreadable catalog, unknown engine, etc.)

Examples:
  rxharness test
  rxharness test ./catalogs --engine pcre
  rxharness test ./catalogs/anchors.yaml --filter "start_*"
  rxharness test ./catalogs --parallel 8 --db runs.db
  rxharness test --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter cases by glob pattern")
	cmd.Flags().IntVar(&opts.Parallel, "parallel", 0, fmt.Sprintf("number of workers (default from config: %d)", config.DefaultParallel))
	cmd.Flags().StringVar(&opts.Database, "db", "", "record runs in this SQLite database")
	cmd.Flags().BoolVar(&opts.Progress, "progress", false, "show a progress bar on stderr")

	return cmd
}

func runTests(opts *TestOptions, paths []string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.formatter(cmd)

	cfg, err := opts.loadConfig(config.Flags{Parallel: opts.Parallel, DBPath: opts.Database})
	if err != nil {
		return err
	}
	m, err := cfg.Matcher()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid engine", err)
	}

	catalogs, err := loadCatalogs(paths)
	if err != nil {
		_ = out.Error(CodeLoad, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load catalogs", err)
	}

	if len(catalogs) == 0 {
		if out.JSON() {
			return out.Success(TestResult{Catalogs: []CatalogResult{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No catalogs found.")
		return nil
	}

	var st *store.Store
	if cfg.DBPath != "" {
		st, err = store.Open(cfg.DBPath)
		if err != nil {
			_ = out.Error(CodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
	}

	logger := opts.logger(cmd.ErrOrStderr())
	result := TestResult{Catalogs: make([]CatalogResult, 0, len(catalogs))}

	for _, lc := range catalogs {
		cases, err := lc.catalog.Filter(opts.Filter)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid filter", err)
		}
		if len(cases) == 0 {
			out.VerboseLog("skipping %s: no cases match filter %q", lc.catalog.Name, opts.Filter)
			continue
		}

		hopts := []harness.Option{harness.WithLogger(logger.With("catalog", lc.catalog.Name))}
		var bar *progressbar.ProgressBar
		if opts.Progress {
			bar = newProgressBar(cmd, lc.catalog.Name, len(cases))
			hopts = append(hopts, harness.WithObserver(func(harness.Outcome) { _ = bar.Add(1) }))
		}
		h := harness.New(m, hopts...)

		var report *harness.Report
		if cfg.Parallel > 1 {
			report, err = h.RunParallel(ctx, cases, cfg.Parallel)
			if err != nil {
				return WrapExitError(ExitCommandError, "run interrupted", err)
			}
		} else {
			report = h.Run(cases)
		}
		if bar != nil {
			_ = bar.Finish()
		}

		cr := catalogResult(lc, report)
		if st != nil {
			rec, err := st.WriteRun(ctx, lc.catalog.Name, report)
			if err != nil {
				_ = out.Error(CodeStore, err.Error(), nil)
				return WrapExitError(ExitCommandError, "failed to record run", err)
			}
			cr.RunID = rec.ID
		}

		if !out.JSON() {
			printCatalogText(cmd, cr)
		}

		result.Catalogs = append(result.Catalogs, cr)
		result.Passed += cr.Passed
		result.Failed += cr.Failed
		result.Total += cr.Total
	}

	if out.JSON() {
		return outputTestJSON(out, result)
	}
	return outputTestText(cmd, result)
}

// loadCatalogs resolves paths to catalogs. Directories are searched
// recursively. No paths selects the built-in catalog.
func loadCatalogs(paths []string) ([]loadedCatalog, error) {
	if len(paths) == 0 {
		builtin := harness.Builtin()
		return []loadedCatalog{{catalog: &builtin}}, nil
	}

	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("catalog path not found: %s", p)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := harness.FindCatalogFiles(p)
		if err != nil {
			return nil, fmt.Errorf("failed to search %s: %w", p, err)
		}
		files = append(files, found...)
	}

	catalogs := make([]loadedCatalog, 0, len(files))
	for _, f := range files {
		cat, err := harness.LoadCatalog(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		catalogs = append(catalogs, loadedCatalog{path: f, catalog: cat})
	}
	return catalogs, nil
}

func catalogResult(lc loadedCatalog, r *harness.Report) CatalogResult {
	cr := CatalogResult{
		Catalog: lc.catalog.Name,
		Path:    lc.path,
		Engine:  r.Engine,
		Cases:   make([]CaseResult, len(r.Outcomes)),
		Passed:  r.Passed,
		Failed:  len(r.Failed),
		Total:   r.Total,
	}
	for i, o := range r.Outcomes {
		cr.Cases[i] = CaseResult{Name: o.Case, Pass: o.Pass, Reason: o.Reason}
	}
	return cr
}

func newProgressBar(cmd *cobra.Command, catalog string, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.CyanString("%s ", catalog)),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionClearOnFinish(),
	)
}

func printCatalogText(cmd *cobra.Command, cr CatalogResult) {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w, color.CyanString("%s (%s)", cr.Catalog, cr.Engine))
	for _, c := range cr.Cases {
		if c.Pass {
			fmt.Fprintln(w, passMark("%s", c.Name))
			continue
		}
		fmt.Fprintln(w, failMark("%s", c.Name))
		fmt.Fprintf(w, "  %s\n", c.Reason)
	}
	if cr.RunID != "" {
		fmt.Fprintf(w, "Recorded run %s\n", cr.RunID)
	}
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(out *OutputFormatter, result TestResult) error {
	if result.Failed == 0 {
		return out.Success(result)
	}

	msg := fmt.Sprintf("%d case(s) failed", result.Failed)
	if err := out.Failure(result, CodeTestFailed, msg); err != nil {
		return err
	}
	return NewExitError(ExitFailure, msg)
}

// outputTestText outputs the test summary as text.
func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d case(s) failed", result.Failed))
	}

	fmt.Fprintln(w, passMark("All cases passed"))
	return nil
}
