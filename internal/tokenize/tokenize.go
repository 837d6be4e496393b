// Package tokenize validates reference/hypothesis input and splits each
// text unit into whitespace-separated words.
package tokenize

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/chaz8081/wer/internal/errkind"
)

// Pair is one reference/hypothesis couple of word sequences.
type Pair struct {
	Reference  []string
	Hypothesis []string
}

// Batch holds the pairs of one call in input order. Batched is false when
// both sides were given as single strings.
type Batch struct {
	Pairs   []Pair
	Batched bool
}

// Len returns the number of pairs.
func (b Batch) Len() int { return len(b.Pairs) }

// Words splits text on runs of whitespace.
func Words(text string) []string {
	return strings.Fields(text)
}

// Units validates unit and returns its text elements. A single string yields
// one element and batched == false. Accepted shapes are string, any slice or
// array of a string kind, and []any whose elements are all strings.
func Units(unit any) (units []string, batched bool, err error) {
	if s, ok := unit.(string); ok {
		return []string{s}, false, nil
	}
	if ss, ok := unit.([]string); ok {
		return ss, true, nil
	}
	if unit == nil {
		return nil, false, fmt.Errorf("tokenize: got nil: %w", errkind.ErrType)
	}

	v := reflect.ValueOf(unit)
	switch v.Kind() {
	case reflect.String:
		return []string{v.String()}, false, nil
	case reflect.Slice, reflect.Array:
	default:
		return nil, false, fmt.Errorf("tokenize: got %T: %w", unit, errkind.ErrType)
	}

	elem := v.Type().Elem()
	switch elem.Kind() {
	case reflect.String:
		units = make([]string, v.Len())
		for i := range units {
			units[i] = v.Index(i).String()
		}
		return units, true, nil
	case reflect.Interface:
		units = make([]string, v.Len())
		for i := range units {
			e := v.Index(i)
			if e.IsNil() || e.Elem().Kind() != reflect.String {
				return nil, false, fmt.Errorf("tokenize: element %d is %s: %w", i, describe(e), errkind.ErrType)
			}
			units[i] = e.Elem().String()
		}
		return units, true, nil
	case reflect.Uint8:
		return nil, false, fmt.Errorf("tokenize: got bytes (%T): %w", unit, errkind.ErrType)
	case reflect.Slice, reflect.Array, reflect.Map:
		return nil, false, fmt.Errorf("tokenize: nested collection %T: %w", unit, errkind.ErrType)
	}
	return nil, false, fmt.Errorf("tokenize: got %T: %w", unit, errkind.ErrType)
}

// Tokenize validates unit and splits every element into words.
func Tokenize(unit any) ([][]string, bool, error) {
	units, batched, err := Units(unit)
	if err != nil {
		return nil, false, err
	}
	seqs := make([][]string, len(units))
	for i, u := range units {
		seqs[i] = Words(u)
	}
	return seqs, batched, nil
}

// Pairs tokenizes both sides and zips them into a Batch. The two sides must
// have the same number of elements.
func Pairs(reference, hypothesis any) (Batch, error) {
	refs, refBatched, err := Tokenize(reference)
	if err != nil {
		return Batch{}, fmt.Errorf("reference: %w", err)
	}
	hyps, hypBatched, err := Tokenize(hypothesis)
	if err != nil {
		return Batch{}, fmt.Errorf("hypothesis: %w", err)
	}
	if len(refs) != len(hyps) {
		return Batch{}, fmt.Errorf("tokenize: %d references vs %d hypotheses: %w", len(refs), len(hyps), errkind.ErrShape)
	}

	b := Batch{
		Pairs:   make([]Pair, len(refs)),
		Batched: refBatched || hypBatched,
	}
	for i := range refs {
		b.Pairs[i] = Pair{Reference: refs[i], Hypothesis: hyps[i]}
	}
	return b, nil
}

func describe(v reflect.Value) string {
	if v.IsNil() {
		return "nil"
	}
	return v.Elem().Type().String()
}
