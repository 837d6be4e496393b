// Package report shapes aggregated results for callers: a scalar or list of
// rates depending on input cardinality, or a summary table with one row per
// pair. Tables and rates render as text, CSV, JSON, YAML or Markdown.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chaz8081/wer/internal/aggregate"
	"github.com/chaz8081/wer/internal/align"
)

// Format selects an output encoding.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatCSV, FormatJSON, FormatYAML, FormatMarkdown}

// FormatNames returns the supported formats as a comma-separated list.
func FormatNames() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// ParseFormat maps a name to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatCSV, FormatJSON, FormatYAML, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("report: unknown format %q (supported: %s)", s, FormatNames())
}

// Rates holds per-pair or corpus rates. Batched is false when the caller
// passed a single reference/hypothesis pair, in which case Values has one
// element and Float is the natural accessor.
type Rates struct {
	Values  []float64
	Batched bool
}

// Scalar wraps a corpus-level rate.
func Scalar(v float64) Rates {
	return Rates{Values: []float64{v}}
}

// List wraps per-pair rates; batched mirrors the input cardinality.
func List(values []float64, batched bool) Rates {
	return Rates{Values: values, Batched: batched}
}

// Float returns the first value, or 0 for an empty list.
func (r Rates) Float() float64 {
	if len(r.Values) == 0 {
		return 0
	}
	return r.Values[0]
}

// Len returns the number of values.
func (r Rates) Len() int { return len(r.Values) }

func (r Rates) String() string {
	if !r.Batched {
		return formatFloat(r.Float())
	}
	parts := make([]string, len(r.Values))
	for i, v := range r.Values {
		parts[i] = formatFloat(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Table is a per-pair summary. Weighted tables carry the werp column.
type Table struct {
	Weighted bool
	Rows     []aggregate.Row
}

// NewTable builds a table over rows.
func NewTable(rows []aggregate.Row, weighted bool) *Table {
	return &Table{Rows: rows, Weighted: weighted}
}

var (
	summaryColumns = []string{
		"wer", "edit_distance", "reference_length", "insertions", "deletions", "substitutions",
		"inserted_words", "deleted_words", "substituted_words",
	}
	weightedColumns = append([]string{"wer", "werp"}, summaryColumns[1:]...)
)

// Columns returns the column names in display order.
func (t *Table) Columns() []string {
	if t.Weighted {
		return weightedColumns
	}
	return summaryColumns
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// cells renders row i as strings in Columns order.
func (t *Table) cells(i int) []string {
	r := t.Rows[i]
	out := make([]string, 0, len(weightedColumns))
	out = append(out, formatFloat(r.WER))
	if t.Weighted {
		out = append(out, formatFloat(r.WERP))
	}
	return append(out,
		strconv.Itoa(r.EditDistance),
		strconv.Itoa(r.ReferenceLength),
		strconv.Itoa(r.Insertions),
		strconv.Itoa(r.Deletions),
		strconv.Itoa(r.Substitutions),
		formatWords(r.InsertedWords),
		formatWords(r.DeletedWords),
		formatSubstitutions(r.SubstitutedWords),
	)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatWords(words []string) string {
	return "[" + strings.Join(words, ", ") + "]"
}

func formatSubstitutions(subs []align.Substitution) string {
	parts := make([]string, len(subs))
	for i, s := range subs {
		parts[i] = s.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
