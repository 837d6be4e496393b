// Package wer computes word error rates between reference and hypothesis
// transcripts.
//
// Inputs are a single string or a list of strings; lists are evaluated pair
// by pair and must have the same length. The package-level functions never
// fail loudly: on bad input they log a warning through slog.Default and
// return ok == false. Use an Evaluator for contexts, deadlines and the
// underlying error.
//
//	rate, ok := wer.WER("i love cold pizza", "i love pizza") // 0.25, true
package wer

import "context"

var std = New()

// WER returns the corpus word error rate.
func WER(reference, hypothesis any) (float64, bool) {
	rate, err := std.WER(context.Background(), reference, hypothesis)
	return settle(std, "wer", rate, err)
}

// WERs returns one word error rate per pair.
func WERs(reference, hypothesis any) (Rates, bool) {
	rates, err := std.WERs(context.Background(), reference, hypothesis)
	return settle(std, "wers", rates, err)
}

// WERP returns the corpus word error rate with errors scaled by w.
func WERP(reference, hypothesis any, w Weights) (float64, bool) {
	e := New(WithWeights(w))
	rate, err := e.WERP(context.Background(), reference, hypothesis)
	return settle(e, "werp", rate, err)
}

// WERPs returns one weighted word error rate per pair.
func WERPs(reference, hypothesis any, w Weights) (Rates, bool) {
	e := New(WithWeights(w))
	rates, err := e.WERPs(context.Background(), reference, hypothesis)
	return settle(e, "werps", rates, err)
}

// Summary returns a per-pair table of rates, counts and edited words.
func Summary(reference, hypothesis any) (*Table, bool) {
	t, err := std.Summary(context.Background(), reference, hypothesis)
	return settle(std, "summary", t, err)
}

// SummaryP is Summary with a werp column computed with w.
func SummaryP(reference, hypothesis any, w Weights) (*Table, bool) {
	e := New(WithWeights(w))
	t, err := e.SummaryP(context.Background(), reference, hypothesis)
	return settle(e, "summaryp", t, err)
}

// Normalize removes punctuation, lower-cases and collapses whitespace.
func Normalize(text any) (any, bool) {
	out, err := std.Normalize(text)
	return settle(std, "normalize", out, err)
}

func settle[T any](e *Evaluator, operation string, v T, err error) (T, bool) {
	if err != nil {
		e.NoResult(operation, err)
		var zero T
		return zero, false
	}
	return v, true
}
