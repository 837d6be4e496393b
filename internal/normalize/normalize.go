// Package normalize prepares text for word error rate scoring: it strips
// ASCII punctuation, lower-cases, and collapses whitespace. Alignment
// compares words exactly, so reference and hypothesis should go through the
// same normalization.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/chaz8081/wer/internal/tokenize"
)

// Punctuation is the set of characters removed from text.
const Punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// String normalizes a single text unit.
func String(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 0x80 && strings.ContainsRune(Punctuation, r) {
			return -1
		}
		return r
	}, s)
	// cases.Caser is stateful, so each call gets its own.
	s = cases.Lower(language.Und).String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Strings normalizes every element.
func Strings(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = String(s)
	}
	return out
}

// Text normalizes unit and preserves its shape: a string yields a string,
// anything batched yields []string. Non-text input fails with
// errkind.ErrType.
func Text(unit any) (any, error) {
	units, batched, err := tokenize.Units(unit)
	if err != nil {
		return nil, err
	}
	if !batched {
		return String(units[0]), nil
	}
	return Strings(units), nil
}
