package wer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chaz8081/wer/internal/aggregate"
	"github.com/chaz8081/wer/internal/batch"
	"github.com/chaz8081/wer/internal/errkind"
	"github.com/chaz8081/wer/internal/metrics"
	"github.com/chaz8081/wer/internal/normalize"
	"github.com/chaz8081/wer/internal/report"
	"github.com/chaz8081/wer/internal/tokenize"
)

// Weights scales each error type in the weighted rates.
type Weights = aggregate.Weights

// Rates is a list of per-pair or corpus rates.
type Rates = report.Rates

// Table is a per-pair summary.
type Table = report.Table

// DefaultWeights counts every error as one, making WERP equal WER.
func DefaultWeights() Weights { return aggregate.DefaultWeights() }

// Evaluator computes error rates with explicit contexts and errors. The
// zero value is not usable; create one with New.
type Evaluator struct {
	workers   int
	timeout   time.Duration
	logger    *slog.Logger
	weights   Weights
	normalize bool
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithWorkers bounds the goroutines aligning a batch. Zero or less uses
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Evaluator) { e.workers = n }
}

// WithTimeout bounds every evaluation. Zero disables the deadline.
func WithTimeout(d time.Duration) Option {
	return func(e *Evaluator) { e.timeout = d }
}

// WithLogger sets the logger used for no-result diagnostics. A nil logger
// falls back to slog.Default at log time.
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

// WithWeights sets the weights used by WERP, WERPs and SummaryP.
func WithWeights(w Weights) Option {
	return func(e *Evaluator) { e.weights = w }
}

// WithNormalize strips punctuation, lower-cases and collapses whitespace in
// both inputs before tokenizing.
func WithNormalize(on bool) Option {
	return func(e *Evaluator) { e.normalize = on }
}

// New returns an Evaluator with unit weights and no deadline.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{weights: aggregate.DefaultWeights()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Weights returns the configured weights.
func (e *Evaluator) Weights() Weights { return e.weights }

func (e *Evaluator) log() *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return slog.Default()
}

func (e *Evaluator) aggregator() aggregate.Aggregator {
	return aggregate.Aggregator{Runner: batch.Runner{Workers: e.workers}}
}

// prepare applies the deadline and turns the inputs into a batch.
func (e *Evaluator) prepare(ctx context.Context, reference, hypothesis any) (context.Context, context.CancelFunc, tokenize.Batch, error) {
	if e.normalize {
		var err error
		if reference, err = normalize.Text(reference); err != nil {
			return ctx, func() {}, tokenize.Batch{}, fmt.Errorf("wer: reference: %w", err)
		}
		if hypothesis, err = normalize.Text(hypothesis); err != nil {
			return ctx, func() {}, tokenize.Batch{}, fmt.Errorf("wer: hypothesis: %w", err)
		}
	}
	b, err := tokenize.Pairs(reference, hypothesis)
	if err != nil {
		return ctx, func() {}, tokenize.Batch{}, fmt.Errorf("wer: %w", err)
	}
	if e.timeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, e.timeout)
		return ctx, cancel, b, nil
	}
	return ctx, func() {}, b, nil
}

// WER returns the corpus word error rate: total edits over total reference
// words.
func (e *Evaluator) WER(ctx context.Context, reference, hypothesis any) (rate float64, err error) {
	defer recoverInto(&err)
	ctx, cancel, b, err := e.prepare(ctx, reference, hypothesis)
	defer cancel()
	if err != nil {
		return 0, err
	}
	return e.aggregator().WER(ctx, b)
}

// WERs returns the word error rate of each pair.
func (e *Evaluator) WERs(ctx context.Context, reference, hypothesis any) (rates report.Rates, err error) {
	defer recoverInto(&err)
	ctx, cancel, b, err := e.prepare(ctx, reference, hypothesis)
	defer cancel()
	if err != nil {
		return report.Rates{}, err
	}
	values, err := e.aggregator().WERs(ctx, b)
	if err != nil {
		return report.Rates{}, err
	}
	return report.List(values, b.Batched), nil
}

// WERP returns the weighted corpus word error rate.
func (e *Evaluator) WERP(ctx context.Context, reference, hypothesis any) (rate float64, err error) {
	defer recoverInto(&err)
	ctx, cancel, b, err := e.prepare(ctx, reference, hypothesis)
	defer cancel()
	if err != nil {
		return 0, err
	}
	return e.aggregator().WERP(ctx, b, e.weights)
}

// WERPs returns the weighted word error rate of each pair.
func (e *Evaluator) WERPs(ctx context.Context, reference, hypothesis any) (rates report.Rates, err error) {
	defer recoverInto(&err)
	ctx, cancel, b, err := e.prepare(ctx, reference, hypothesis)
	defer cancel()
	if err != nil {
		return report.Rates{}, err
	}
	values, err := e.aggregator().WERPs(ctx, b, e.weights)
	if err != nil {
		return report.Rates{}, err
	}
	return report.List(values, b.Batched), nil
}

// Summary returns one row per pair with the edit breakdown.
func (e *Evaluator) Summary(ctx context.Context, reference, hypothesis any) (t *report.Table, err error) {
	defer recoverInto(&err)
	ctx, cancel, b, err := e.prepare(ctx, reference, hypothesis)
	defer cancel()
	if err != nil {
		return nil, err
	}
	rows, err := e.aggregator().Summary(ctx, b)
	if err != nil {
		return nil, err
	}
	return report.NewTable(rows, false), nil
}

// SummaryP is Summary with a weighted rate column.
func (e *Evaluator) SummaryP(ctx context.Context, reference, hypothesis any) (t *report.Table, err error) {
	defer recoverInto(&err)
	ctx, cancel, b, err := e.prepare(ctx, reference, hypothesis)
	defer cancel()
	if err != nil {
		return nil, err
	}
	rows, err := e.aggregator().SummaryP(ctx, b, e.weights)
	if err != nil {
		return nil, err
	}
	return report.NewTable(rows, true), nil
}

// Normalize cleans text and keeps its shape: a string for a string, a
// []string for any list.
func (e *Evaluator) Normalize(text any) (out any, err error) {
	defer recoverInto(&err)
	out, err = normalize.Text(text)
	if err != nil {
		return nil, fmt.Errorf("wer: %w", err)
	}
	return out, nil
}

// NoResult records a failed evaluation: a warning on the logger and a
// failure count labelled by operation and kind.
func (e *Evaluator) NoResult(operation string, err error) {
	kind := errkind.Of(err)
	metrics.NoResult.WithLabelValues(operation, kind.String()).Inc()
	e.log().Warn("no result", "operation", operation, "kind", kind.String(), "error", err)
}

func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("wer: unexpected failure: %v", r)
	}
}
