package harness

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/rxharness/internal/matcher"
)

// Harness evaluates test cases against one matcher.
// It holds no per-run state, so a Harness may be reused and shared.
type Harness struct {
	matcher  matcher.Matcher
	logger   *slog.Logger
	observer func(Outcome)
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger used for per-case and per-run records.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithObserver registers fn to receive every outcome as soon as it is
// decided. RunParallel calls fn from several goroutines at once.
func WithObserver(fn func(Outcome)) Option {
	return func(h *Harness) {
		h.observer = fn
	}
}

// New returns a harness for m. Logging is discarded unless WithLogger is given.
func New(m matcher.Matcher, opts ...Option) *Harness {
	h := &Harness{
		matcher: m,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Evaluate runs one case against m.
func Evaluate(c TestCase, m matcher.Matcher) Outcome {
	return New(m).Evaluate(c)
}

// Run evaluates cases in order against m.
func Run(cases []TestCase, m matcher.Matcher) *Report {
	return New(m).Run(cases)
}

// Evaluate runs one case and judges the result.
//
// A pattern the matcher rejects, any other matcher error, and a panic inside
// the matcher all become a failing Outcome for this case only.
func (h *Harness) Evaluate(c TestCase) (out Outcome) {
	out = Outcome{Case: c.Name}

	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Case: c.Name, Reason: failureReason(ReasonMatcherPanic, r)}
			h.logger.Warn("matcher panicked", "case", c.Name, "engine", h.matcher.Name(), "panic", r)
		}
	}()

	res, err := h.matcher.Find(c.Pattern, c.Subject)
	if err != nil {
		var syntaxErr *matcher.PatternSyntaxError
		if errors.As(err, &syntaxErr) {
			out.Reason = failureReason(ReasonPatternRejected, syntaxErr.Err)
		} else {
			out.Reason = failureReason(ReasonMatcherError, err)
		}
		h.logger.Debug("case failed",
			"case", c.Name,
			"engine", h.matcher.Name(),
			"reason", out.Reason,
		)
		return out
	}

	out.Result = res
	if err := compare(c, res); err != nil {
		out.Reason = reasonFor(err)
	} else {
		out.Pass = true
	}

	h.logger.Debug("case evaluated",
		"case", c.Name,
		"engine", h.matcher.Name(),
		"pass", out.Pass,
		"reason", out.Reason,
	)
	return out
}

// Run evaluates every case in order. It never stops early.
func (h *Harness) Run(cases []TestCase) *Report {
	outcomes := make([]Outcome, len(cases))
	for i, c := range cases {
		outcomes[i] = h.evaluate(c)
	}
	return h.report(outcomes)
}

// RunParallel evaluates cases on up to workers goroutines.
// Outcomes are kept in case order, so the report equals Run's for the same
// cases. workers <= 0 means GOMAXPROCS. It returns ctx.Err() if the context
// ends before every case has been evaluated.
func (h *Harness) RunParallel(ctx context.Context, cases []TestCase, workers int) (*Report, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	outcomes := make([]Outcome, len(cases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, c := range cases {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = h.evaluate(c)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.report(outcomes), nil
}

// evaluate is Evaluate plus notification of the observer.
func (h *Harness) evaluate(c TestCase) Outcome {
	out := h.Evaluate(c)
	if h.observer != nil {
		h.observer(out)
	}
	return out
}

func (h *Harness) report(outcomes []Outcome) *Report {
	r := NewReport(h.matcher.Name(), outcomes)
	h.logger.Info("run completed",
		"engine", r.Engine,
		"total", r.Total,
		"passed", r.Passed,
		"failed", len(r.Failed),
	)
	return r
}
