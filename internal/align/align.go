// Package align computes word-level Levenshtein alignments between a
// reference and a hypothesis. Align returns the full edit script; Distance
// returns only the edit distance.
package align

import (
	"context"
	"fmt"
	"slices"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/chaz8081/wer/internal/errkind"
)

// Substitution records a reference word replaced by a hypothesis word.
type Substitution struct {
	Reference  string `json:"reference" yaml:"reference"`
	Hypothesis string `json:"hypothesis" yaml:"hypothesis"`
}

func (s Substitution) String() string {
	return fmt.Sprintf("(%s, %s)", s.Reference, s.Hypothesis)
}

// Result holds the alignment of one reference/hypothesis pair.
// Insertions+Deletions+Substitutions always equals EditDistance.
type Result struct {
	EditDistance    int // Minimum edits turning the hypothesis into the reference
	ReferenceLength int // Words in the reference, the WER denominator
	Insertions      int // Extra words in hypothesis
	Deletions       int // Reference words missing from hypothesis
	Substitutions   int // Reference words replaced with different words

	InsertedWords    []string
	DeletedWords     []string
	SubstitutedWords []Substitution
}

// WER returns EditDistance / ReferenceLength. An empty reference has no
// defined rate and yields an error wrapping errkind.ErrDegenerate.
func (r Result) WER() (float64, error) {
	return r.Score().WER()
}

// Score drops the edit script, keeping what the unweighted rates need.
func (r Result) Score() Score {
	return Score{EditDistance: r.EditDistance, ReferenceLength: r.ReferenceLength}
}

// Score is the distance-only outcome of aligning a pair.
type Score struct {
	EditDistance    int
	ReferenceLength int
}

// WER returns EditDistance / ReferenceLength, or an ErrDegenerate error for
// an empty reference.
func (s Score) WER() (float64, error) {
	if s.ReferenceLength == 0 {
		return 0, fmt.Errorf("align: %d edits over 0 reference words: %w", s.EditDistance, errkind.ErrDegenerate)
	}
	return float64(s.EditDistance) / float64(s.ReferenceLength), nil
}

// Align computes the minimum edit alignment between reference and hypothesis.
func Align(reference, hypothesis []string) Result {
	res, _ := AlignContext(context.Background(), reference, hypothesis)
	return res
}

// AlignContext is Align with cancellation. The context is checked once per
// reference word, so a deadline bounds the O(m*n) table fill.
func AlignContext(ctx context.Context, reference, hypothesis []string) (Result, error) {
	m, n := len(reference), len(hypothesis)
	cols := n + 1

	// Row-major (m+1)x(n+1) DP table for minimum edit distance.
	d := make([]int, (m+1)*cols)
	for j := 0; j <= n; j++ {
		d[j] = j // inserting all hyp words
	}

	for i := 1; i <= m; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("align: row %d of %d: %w", i, m, err)
		}
		row := i * cols
		prev := row - cols
		d[row] = i // deleting all ref words
		for j := 1; j <= n; j++ {
			if reference[i-1] == hypothesis[j-1] {
				d[row+j] = d[prev+j-1]
				continue
			}
			del := d[prev+j]
			ins := d[row+j-1]
			sub := d[prev+j-1]
			d[row+j] = 1 + min(del, ins, sub)
		}
	}

	return backtrace(reference, hypothesis, d, cols), nil
}

// backtrace walks the filled table from (m,n) back to (0,0). Ties prefer
// the diagonal, then deletion, then insertion, matching the fill order.
func backtrace(reference, hypothesis []string, d []int, cols int) Result {
	m, n := len(reference), len(hypothesis)
	res := Result{
		EditDistance:     d[m*cols+n],
		ReferenceLength:  m,
		InsertedWords:    []string{},
		DeletedWords:     []string{},
		SubstitutedWords: []Substitution{},
	}

	i, j := m, n
	for i > 0 || j > 0 {
		cur := d[i*cols+j]
		switch {
		case i > 0 && j > 0 && reference[i-1] == hypothesis[j-1] && cur == d[(i-1)*cols+j-1]:
			// Match
			i--
			j--
		case i > 0 && j > 0 && cur == d[(i-1)*cols+j-1]+1:
			res.SubstitutedWords = append(res.SubstitutedWords, Substitution{
				Reference:  reference[i-1],
				Hypothesis: hypothesis[j-1],
			})
			i--
			j--
		case i > 0 && cur == d[(i-1)*cols+j]+1:
			res.DeletedWords = append(res.DeletedWords, reference[i-1])
			i--
		default:
			res.InsertedWords = append(res.InsertedWords, hypothesis[j-1])
			j--
		}
	}

	slices.Reverse(res.InsertedWords)
	slices.Reverse(res.DeletedWords)
	slices.Reverse(res.SubstitutedWords)

	res.Insertions = len(res.InsertedWords)
	res.Deletions = len(res.DeletedWords)
	res.Substitutions = len(res.SubstitutedWords)
	return res
}

// unitCost weighs insertion, deletion and substitution equally.
var unitCost = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: func(a, b rune) bool { return a == b },
}

// Distance returns the word-level edit distance between reference and
// hypothesis without building an edit script. Each distinct word is mapped
// to one rune so the rune-based levenshtein package can compare sequences.
func Distance(reference, hypothesis []string) int {
	vocab := make(map[string]rune, len(reference)+len(hypothesis))
	src := intern(vocab, reference)
	dst := intern(vocab, hypothesis)
	return levenshtein.DistanceForStrings(src, dst, unitCost)
}

// ScoreOf returns the distance-only score of a pair.
func ScoreOf(reference, hypothesis []string) Score {
	return Score{
		EditDistance:    Distance(reference, hypothesis),
		ReferenceLength: len(reference),
	}
}

func intern(vocab map[string]rune, words []string) []rune {
	out := make([]rune, len(words))
	for i, w := range words {
		r, ok := vocab[w]
		if !ok {
			r = rune(len(vocab))
			vocab[w] = r
		}
		out[i] = r
	}
	return out
}
