// Package aggregate reduces per-pair alignments into word error rates.
//
// The corpus rates (WER, WERP) are micro-averages: errors and reference
// lengths are summed over all pairs before dividing. The per-pair rates
// (WERs, WERPs) divide within each pair and are returned unreduced.
package aggregate

import (
	"context"
	"fmt"

	"github.com/chaz8081/wer/internal/align"
	"github.com/chaz8081/wer/internal/batch"
	"github.com/chaz8081/wer/internal/errkind"
	"github.com/chaz8081/wer/internal/metrics"
	"github.com/chaz8081/wer/internal/tokenize"
)

// Row is one line of a summary: the alignment of a pair plus its rates.
// WERP is only meaningful in weighted summaries.
type Row struct {
	WER  float64
	WERP float64
	align.Result
}

// Aggregator computes rates over tokenized batches.
type Aggregator struct {
	Runner batch.Runner
}

// WER returns Σ edit distance / Σ reference length over every pair.
func (a Aggregator) WER(ctx context.Context, b tokenize.Batch) (float64, error) {
	scores, err := a.scores(ctx, b)
	if err != nil {
		return 0, err
	}
	var edits, words int
	for _, s := range scores {
		edits += s.EditDistance
		words += s.ReferenceLength
	}
	rate := float64(edits) / float64(words)
	metrics.LastRate.WithLabelValues("wer").Set(rate)
	return rate, nil
}

// WERs returns the word error rate of each pair in input order.
func (a Aggregator) WERs(ctx context.Context, b tokenize.Batch) ([]float64, error) {
	scores, err := a.scores(ctx, b)
	if err != nil {
		return nil, err
	}
	rates := make([]float64, len(scores))
	for i, s := range scores {
		rates[i] = float64(s.EditDistance) / float64(s.ReferenceLength)
	}
	return rates, nil
}

// WERP returns Σ weighted errors / Σ reference length over every pair.
func (a Aggregator) WERP(ctx context.Context, b tokenize.Batch, w Weights) (float64, error) {
	results, err := a.results(ctx, b, w)
	if err != nil {
		return 0, err
	}
	var errs float64
	var words int
	for _, r := range results {
		errs += w.Errors(r)
		words += r.ReferenceLength
	}
	rate := errs / float64(words)
	metrics.LastRate.WithLabelValues("werp").Set(rate)
	return rate, nil
}

// WERPs returns the weighted word error rate of each pair in input order.
func (a Aggregator) WERPs(ctx context.Context, b tokenize.Batch, w Weights) ([]float64, error) {
	results, err := a.results(ctx, b, w)
	if err != nil {
		return nil, err
	}
	rates := make([]float64, len(results))
	for i, r := range results {
		rates[i] = w.Errors(r) / float64(r.ReferenceLength)
	}
	return rates, nil
}

// Summary returns one row per pair with the full alignment and its WER.
// WERP is filled with the unit-weighted rate, which equals WER.
func (a Aggregator) Summary(ctx context.Context, b tokenize.Batch) ([]Row, error) {
	return a.SummaryP(ctx, b, DefaultWeights())
}

// SummaryP is Summary with WERP weighted by w.
func (a Aggregator) SummaryP(ctx context.Context, b tokenize.Batch, w Weights) ([]Row, error) {
	results, err := a.results(ctx, b, w)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, len(results))
	for i, r := range results {
		rows[i] = Row{
			WER:    float64(r.EditDistance) / float64(r.ReferenceLength),
			WERP:   w.Errors(r) / float64(r.ReferenceLength),
			Result: r,
		}
	}
	return rows, nil
}

func (a Aggregator) scores(ctx context.Context, b tokenize.Batch) ([]align.Score, error) {
	if err := checkReferences(b); err != nil {
		return nil, err
	}
	return a.Runner.Score(ctx, b.Pairs)
}

func (a Aggregator) results(ctx context.Context, b tokenize.Batch, w Weights) ([]align.Result, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if err := checkReferences(b); err != nil {
		return nil, err
	}
	return a.Runner.Align(ctx, b.Pairs)
}

// checkReferences fails when there is nothing to divide by: no pairs, or a
// pair whose reference has no words. Every variant computes per-pair rates,
// so one empty reference invalidates the whole batch.
func checkReferences(b tokenize.Batch) error {
	if b.Len() == 0 {
		return fmt.Errorf("aggregate: no pairs: %w", errkind.ErrDegenerate)
	}
	for i, p := range b.Pairs {
		if len(p.Reference) == 0 {
			return fmt.Errorf("aggregate: pair %d has %d hypothesis words and an empty reference: %w",
				i, len(p.Hypothesis), errkind.ErrDegenerate)
		}
	}
	return nil
}
