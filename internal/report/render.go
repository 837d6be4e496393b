package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/chaz8081/wer/internal/align"
)

// record is the structured form of a table row for JSON and YAML.
type record struct {
	WER              float64              `json:"wer" yaml:"wer"`
	WERP             *float64             `json:"werp,omitempty" yaml:"werp,omitempty"`
	EditDistance     int                  `json:"edit_distance" yaml:"edit_distance"`
	ReferenceLength  int                  `json:"reference_length" yaml:"reference_length"`
	Insertions       int                  `json:"insertions" yaml:"insertions"`
	Deletions        int                  `json:"deletions" yaml:"deletions"`
	Substitutions    int                  `json:"substitutions" yaml:"substitutions"`
	InsertedWords    []string             `json:"inserted_words" yaml:"inserted_words"`
	DeletedWords     []string             `json:"deleted_words" yaml:"deleted_words"`
	SubstitutedWords []align.Substitution `json:"substituted_words" yaml:"substituted_words"`
}

func (t *Table) records() []record {
	out := make([]record, len(t.Rows))
	for i, r := range t.Rows {
		rec := record{
			WER:              r.WER,
			EditDistance:     r.EditDistance,
			ReferenceLength:  r.ReferenceLength,
			Insertions:       r.Insertions,
			Deletions:        r.Deletions,
			Substitutions:    r.Substitutions,
			InsertedWords:    nonNil(r.InsertedWords),
			DeletedWords:     nonNil(r.DeletedWords),
			SubstitutedWords: r.SubstitutedWords,
		}
		if rec.SubstitutedWords == nil {
			rec.SubstitutedWords = []align.Substitution{}
		}
		if t.Weighted {
			werp := r.WERP
			rec.WERP = &werp
		}
		out[i] = rec
	}
	return out
}

// Render writes the table to w in format f.
func (t *Table) Render(w io.Writer, f Format) error {
	switch f {
	case FormatText, "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(append([]string{""}, t.Columns()...), "\t"))
		for i := range t.Rows {
			fmt.Fprintf(tw, "%d\t%s\n", i, strings.Join(t.cells(i), "\t"))
		}
		return tw.Flush()

	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(t.Columns()); err != nil {
			return fmt.Errorf("report: write csv header: %w", err)
		}
		for i := range t.Rows {
			if err := cw.Write(t.cells(i)); err != nil {
				return fmt.Errorf("report: write csv row %d: %w", i, err)
			}
		}
		cw.Flush()
		return cw.Error()

	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(t.records())

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(t.records()); err != nil {
			return fmt.Errorf("report: encode yaml: %w", err)
		}
		return enc.Close()

	case FormatMarkdown:
		cols := t.Columns()
		fmt.Fprintf(w, "| %s |\n", strings.Join(cols, " | "))
		fmt.Fprintf(w, "|%s\n", strings.Repeat(" --- |", len(cols)))
		for i := range t.Rows {
			cells := t.cells(i)
			for j, c := range cells {
				cells[j] = markdownEscaper.Replace(c)
			}
			fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
		}
		return nil
	}
	return fmt.Errorf("report: unsupported format %q", f)
}

// Render writes the rates to w in format f. Unbatched rates are written as a
// single number; batched rates one per line (text), as a column (CSV), or as
// a list (JSON, YAML, Markdown).
func (r Rates) Render(w io.Writer, f Format) error {
	switch f {
	case FormatText, "":
		for _, v := range r.Values {
			if _, err := fmt.Fprintln(w, formatFloat(v)); err != nil {
				return err
			}
		}
		return nil

	case FormatCSV:
		cw := csv.NewWriter(w)
		for _, v := range r.Values {
			if err := cw.Write([]string{formatFloat(v)}); err != nil {
				return fmt.Errorf("report: write csv: %w", err)
			}
		}
		cw.Flush()
		return cw.Error()

	case FormatJSON:
		var v any = r.Values
		if !r.Batched {
			v = r.Float()
		}
		return json.NewEncoder(w).Encode(v)

	case FormatYAML:
		var v any = r.Values
		if !r.Batched {
			v = r.Float()
		}
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("report: encode yaml: %w", err)
		}
		_, err = w.Write(out)
		return err

	case FormatMarkdown:
		fmt.Fprintln(w, "| pair | rate |")
		fmt.Fprintln(w, "| --- | --- |")
		for i, v := range r.Values {
			fmt.Fprintf(w, "| %d | %s |\n", i, formatFloat(v))
		}
		return nil
	}
	return fmt.Errorf("report: unsupported format %q", f)
}

// markdownEscaper keeps raw words containing pipes inside their cell.
var markdownEscaper = strings.NewReplacer(`\`, `\\`, "|", `\|`)

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
