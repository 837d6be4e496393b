// Package errkind classifies the errors raised while validating, aligning
// and scoring text. Callers match with errors.Is or use Of.
package errkind

import (
	"context"
	"errors"
)

// Kind is the error category reported in diagnostics and metrics labels.
type Kind string

const (
	KindNone       Kind = ""
	KindType       Kind = "type"
	KindShape      Kind = "shape"
	KindDegenerate Kind = "degenerate_input"
	KindValue      Kind = "value"
	KindCancel     Kind = "cancel"
	KindUnknown    Kind = "unknown"
)

var (
	// ErrType: input is not flat text (numbers, booleans, bytes, nested collections).
	ErrType = errors.New("input must be a string or a flat list of strings")
	// ErrShape: reference and hypothesis do not pair up element for element.
	ErrShape = errors.New("reference and hypothesis must contain the same number of elements")
	// ErrDegenerate: the reference has no words, so the rate has no denominator.
	ErrDegenerate = errors.New("reference is empty, word error rate is undefined")
	// ErrValue: a numeric argument is out of range.
	ErrValue = errors.New("value out of range")
)

// Of returns the kind of err, or KindNone for a nil error.
func Of(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancel
	case errors.Is(err, ErrType):
		return KindType
	case errors.Is(err, ErrShape):
		return KindShape
	case errors.Is(err, ErrDegenerate):
		return KindDegenerate
	case errors.Is(err, ErrValue):
		return KindValue
	}
	return KindUnknown
}

// String implements fmt.Stringer; the empty kind prints as "none".
func (k Kind) String() string {
	if k == KindNone {
		return "none"
	}
	return string(k)
}
