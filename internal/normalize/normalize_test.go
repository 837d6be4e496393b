package normalize

import (
	"errors"
	"reflect"
	"testing"

	"github.com/chaz8081/wer/internal/errkind"
)

func TestString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{" it's Consumed Domestically  And exported to other countries.", "its consumed domestically and exported to other countries"},
		{"It's very popular in Antarctica.", "its very popular in antarctica"},
		{"The Sugar Bear character", "the sugar bear character"},
		{"Rufino Street in Makati, right inside the Makati Central Business District.",
			"rufino street in makati right inside the makati central business district"},
		{"sight-lines", "sightlines"},
		{"\tMÜNCHEN  Straße\n", "münchen straße"},
		{"", ""},
		{"...", ""},
		{"¿Qué?", "¿qué"},
	}
	for _, tt := range tests {
		if got := String(tt.in); got != tt.want {
			t.Errorf("String(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStringsReferenceTranslations(t *testing.T) {
	in := []string{
		"     It is consumed domestically           and exported to other countries.     ",
		"The Sugar Bear character was popular enough to have occasional premium toys.",
		"He was executed in a Lubyanka prison cellar.",
		"Gadya is the nearest rural locality.",
	}
	want := []string{
		"it is consumed domestically and exported to other countries",
		"the sugar bear character was popular enough to have occasional premium toys",
		"he was executed in a lubyanka prison cellar",
		"gadya is the nearest rural locality",
	}
	if got := Strings(in); !reflect.DeepEqual(got, want) {
		t.Errorf("Strings() = %q, want %q", got, want)
	}
}

func TestTextKeepsShape(t *testing.T) {
	got, err := Text("Hello, World!")
	if err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	if s, ok := got.(string); !ok || s != "hello world" {
		t.Errorf("Text(string) = %#v", got)
	}

	got, err = Text([]string{"it's estiary ", "A normally"})
	if err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	if ss, ok := got.([]string); !ok || !reflect.DeepEqual(ss, []string{"its estiary", "a normally"}) {
		t.Errorf("Text([]string) = %#v", got)
	}
}

func TestTextRejectsNonText(t *testing.T) {
	for _, in := range []any{1, 2.5, true, []int{1, 2}, complex(1, 1), []byte("x")} {
		if _, err := Text(in); !errors.Is(err, errkind.ErrType) {
			t.Errorf("Text(%#v) error = %v, want ErrType", in, err)
		}
	}
}
