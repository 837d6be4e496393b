package align

import (
	"context"
	"errors"
	"math/rand/v2"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/chaz8081/wer/internal/errkind"
)

func TestAlign(t *testing.T) {
	tests := []struct {
		name       string
		reference  string
		hypothesis string
		wantDist   int
		wantIns    []string
		wantDels   []string
		wantSubs   []Substitution
	}{
		{
			name:       "identical",
			reference:  "the cat sat on the mat",
			hypothesis: "the cat sat on the mat",
		},
		{
			name:       "one_deletion",
			reference:  "i love cold pizza",
			hypothesis: "i love pizza",
			wantDist:   1,
			wantDels:   []string{"cold"},
		},
		{
			name:       "one_insertion",
			reference:  "the cat sat",
			hypothesis: "the big cat sat",
			wantDist:   1,
			wantIns:    []string{"big"},
		},
		{
			name:       "one_substitution",
			reference:  "this is a test",
			hypothesis: "this is the test",
			wantDist:   1,
			wantSubs:   []Substitution{{"a", "the"}},
		},
		{
			name:       "substitutions_in_order",
			reference:  "rufino street in makati right inside the makati central business district",
			hypothesis: "rofino street in mccauti right inside the macasi central business district",
			wantDist:   3,
			wantSubs:   []Substitution{{"rufino", "rofino"}, {"makati", "mccauti"}, {"makati", "macasi"}},
		},
		{
			name:       "substitution_preferred_over_insertion",
			reference:  "its estuary is considered to have abnormally low rates of dissolved oxygen",
			hypothesis: "its estiary is considered to have a normally low rates of dissolved oxygen",
			wantDist:   3,
			wantIns:    []string{"a"},
			wantSubs:   []Substitution{{"estuary", "estiary"}, {"abnormally", "normally"}},
		},
		{
			name:       "substitution_preferred_over_deletion",
			reference:  "the tower caused minor discontent because it blocked sight lines of central park",
			hypothesis: "the tower caused minor discontent because it blocked sightlines of central park",
			wantDist:   2,
			wantDels:   []string{"sight"},
			wantSubs:   []Substitution{{"lines", "sightlines"}},
		},
		{
			name:       "split_word",
			reference:  "he was commonly referred to as the blacksmith of ballinalee",
			hypothesis: "he was commonly referred to as the blacksmith of balen alley",
			wantDist:   2,
			wantIns:    []string{"balen"},
			wantSubs:   []Substitution{{"ballinalee", "alley"}},
		},
		{
			name:       "merged_word",
			reference:  "he was executed in a lubyanka prison cellar",
			hypothesis: "he was executed in alabianca prison seller",
			wantDist:   3,
			wantDels:   []string{"a"},
			wantSubs:   []Substitution{{"lubyanka", "alabianca"}, {"cellar", "seller"}},
		},
		{
			name:       "mixed_errors",
			reference:  "the quick brown fox jumps over the lazy dog",
			hypothesis: "a quick brown cat jumps the lazy dog",
			wantDist:   3,
			wantDels:   []string{"over"},
			wantSubs:   []Substitution{{"the", "a"}, {"fox", "cat"}},
		},
		{
			name:       "case_sensitive",
			reference:  "The Cat",
			hypothesis: "the cat",
			wantDist:   2,
			wantSubs:   []Substitution{{"The", "the"}, {"Cat", "cat"}},
		},
		{
			name:       "punctuation_sensitive",
			reference:  "hello, world",
			hypothesis: "hello world",
			wantDist:   1,
			wantSubs:   []Substitution{{"hello,", "hello"}},
		},
		{
			name:       "empty_hypothesis",
			reference:  "some words",
			hypothesis: "",
			wantDist:   2,
			wantDels:   []string{"some", "words"},
		},
		{
			name:       "empty_reference",
			reference:  "",
			hypothesis: "some words",
			wantDist:   2,
			wantIns:    []string{"some", "words"},
		},
		{
			name: "both_empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := strings.Fields(tt.reference)
			hyp := strings.Fields(tt.hypothesis)
			got := Align(ref, hyp)

			if got.EditDistance != tt.wantDist {
				t.Errorf("EditDistance = %d, want %d", got.EditDistance, tt.wantDist)
			}
			if got.ReferenceLength != len(ref) {
				t.Errorf("ReferenceLength = %d, want %d", got.ReferenceLength, len(ref))
			}
			assertWords(t, "InsertedWords", got.InsertedWords, tt.wantIns)
			assertWords(t, "DeletedWords", got.DeletedWords, tt.wantDels)
			if len(got.SubstitutedWords) != len(tt.wantSubs) ||
				(len(tt.wantSubs) > 0 && !reflect.DeepEqual(got.SubstitutedWords, tt.wantSubs)) {
				t.Errorf("SubstitutedWords = %v, want %v", got.SubstitutedWords, tt.wantSubs)
			}
			assertInvariants(t, got)
		})
	}
}

func TestAlignEmptyListsAreNotNil(t *testing.T) {
	got := Align([]string{"a"}, []string{"a"})
	if got.InsertedWords == nil || got.DeletedWords == nil || got.SubstitutedWords == nil {
		t.Errorf("word lists should be empty, not nil: %+v", got)
	}
}

func TestAlignSwapsInsertionsAndDeletions(t *testing.T) {
	ref := strings.Fields("i love cold pizza")
	hyp := strings.Fields("i love pizza")

	fwd := Align(ref, hyp)
	rev := Align(hyp, ref)

	if fwd.EditDistance != rev.EditDistance {
		t.Fatalf("distance not symmetric: %d vs %d", fwd.EditDistance, rev.EditDistance)
	}
	if fwd.Deletions != 1 || rev.Insertions != 1 {
		t.Errorf("forward deletions = %d, reverse insertions = %d, want 1 and 1", fwd.Deletions, rev.Insertions)
	}
	if !reflect.DeepEqual(fwd.DeletedWords, rev.InsertedWords) {
		t.Errorf("deleted %v vs inserted %v", fwd.DeletedWords, rev.InsertedWords)
	}
}

func TestAlignProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	vocab := []string{"a", "b", "c", "d", "e"}
	randSeq := func() []string {
		n := rng.IntN(12)
		out := make([]string, n)
		for i := range out {
			out[i] = vocab[rng.IntN(len(vocab))]
		}
		return out
	}

	for iter := 0; iter < 500; iter++ {
		r, h := randSeq(), randSeq()
		fwd := Align(r, h)
		rev := Align(h, r)

		assertInvariants(t, fwd)
		if fwd.EditDistance != rev.EditDistance {
			t.Fatalf("Align(%q, %q) = %d, reverse = %d", r, h, fwd.EditDistance, rev.EditDistance)
		}
		if d := Distance(r, h); d != fwd.EditDistance {
			t.Fatalf("Distance(%q, %q) = %d, Align = %d", r, h, d, fwd.EditDistance)
		}
		if self := Align(r, r); self.EditDistance != 0 || self.Insertions+self.Deletions+self.Substitutions != 0 {
			t.Fatalf("Align(%q, self) = %+v, want zero", r, self)
		}
		lo := len(r) - len(h)
		if lo < 0 {
			lo = -lo
		}
		if fwd.EditDistance < lo || fwd.EditDistance > max(len(r), len(h)) {
			t.Fatalf("distance %d out of bounds for lengths %d, %d", fwd.EditDistance, len(r), len(h))
		}
	}
}

func TestAlignContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AlignContext(ctx, []string{"a", "b"}, []string{"a"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		ref, hyp string
		want     int
	}{
		{"i love cold pizza", "i love pizza", 1},
		{"the sugar bear character was popular", "the sugar bare character was popular", 1},
		{"", "", 0},
		{"", "a b c", 3},
		{"a b c", "", 3},
		{"a b c", "c b a", 2},
	}
	for _, tt := range tests {
		if got := Distance(strings.Fields(tt.ref), strings.Fields(tt.hyp)); got != tt.want {
			t.Errorf("Distance(%q, %q) = %d, want %d", tt.ref, tt.hyp, got, tt.want)
		}
	}
}

func TestScoreWER(t *testing.T) {
	got, err := ScoreOf(strings.Fields("i love cold pizza"), strings.Fields("i love pizza")).WER()
	if err != nil {
		t.Fatalf("WER() error = %v", err)
	}
	if got != 0.25 {
		t.Errorf("WER() = %v, want 0.25", got)
	}

	full, err := Align([]string{"some", "words"}, nil).WER()
	if err != nil || full != 1.0 {
		t.Errorf("empty hypothesis WER() = %v, %v, want 1, nil", full, err)
	}

	for _, hyp := range [][]string{nil, {"extra"}} {
		_, err := Align(nil, hyp).WER()
		if !errors.Is(err, errkind.ErrDegenerate) {
			t.Errorf("empty reference with hypothesis %q: error = %v, want ErrDegenerate", hyp, err)
		}
	}
}

func TestSubstitutionString(t *testing.T) {
	if got := (Substitution{"cited", "sighted"}).String(); got != "(cited, sighted)" {
		t.Errorf("String() = %q", got)
	}
}

func assertWords(t *testing.T, field string, got, want []string) {
	t.Helper()
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("%s = %q, want %q", field, got, want)
	}
}

func assertInvariants(t *testing.T, r Result) {
	t.Helper()
	if r.Insertions+r.Deletions+r.Substitutions != r.EditDistance {
		t.Errorf("I+D+S = %d, EditDistance = %d", r.Insertions+r.Deletions+r.Substitutions, r.EditDistance)
	}
	if len(r.InsertedWords) != r.Insertions || len(r.DeletedWords) != r.Deletions || len(r.SubstitutedWords) != r.Substitutions {
		t.Errorf("word lists do not match counts: %+v", r)
	}
}

func BenchmarkAlign(b *testing.B) {
	rng := rand.New(rand.NewPCG(7, 11))
	vocab := strings.Fields("the sugar bear character was popular enough to have occasional premium toys")
	sentence := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = vocab[rng.IntN(len(vocab))]
		}
		return out
	}

	for _, size := range []int{10, 100, 1000} {
		ref, hyp := sentence(size), sentence(size)
		b.Run("align/"+strconv.Itoa(size), func(b *testing.B) {
			var last Result
			for i := 0; i < b.N; i++ {
				last = Align(ref, hyp)
			}
			b.StopTimer()

			b.ReportMetric(float64((size+1)*(size+1)), "cells")
			wer, _ := last.WER()
			b.ReportMetric(wer, "wer")
		})
		b.Run("distance/"+strconv.Itoa(size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = Distance(ref, hyp)
			}
		})
	}
}
