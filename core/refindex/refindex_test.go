package refindex

import (
	"testing"

	"github.com/otzarlib/otzar/core/flatten"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Genesis 1:4", "genesis 1:4"},
		{"  Genesis   1:4  ", "genesis 1:4"},
		{"Tur, Orach Chayim 325", "tur orach chayim 325"},
		{"ספר א׳:ב׳", "ספר א:ב"},
		{"ברכות ב׳ ע״א", "ברכות ב עא"},
		{`Rashi's "comment"`, "rashis comment"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Genesis 1:4", "טור, אורח חיים שכ״ה", "  a  b  "}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestStripAlias(t *testing.T) {
	tests := []struct {
		s, alias, want string
	}{
		{"Genesis 1:4", "Genesis", "1:4"},
		{"Tur, Orach Chayim 325", "Tur", "orach chayim 325"},
		{"Genesis 1:4", "Exodus", "Genesis 1:4"},
		{"Genesis 1:4", "", "Genesis 1:4"},
	}

	for _, tt := range tests {
		if got := StripAlias(tt.s, tt.alias); got != tt.want {
			t.Errorf("StripAlias(%q, %q) = %q, want %q", tt.s, tt.alias, got, tt.want)
		}
	}
}

func TestNumericTail(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Genesis 1:4", "1:4"},
		{"Tur, Orach Chayim 325:4", "325:4"},
		{"Berakhot 2a:4", "2a:4"},
		{"Introduction", ""},
	}

	for _, tt := range tests {
		if got := NumericTail(tt.in); got != tt.want {
			t.Errorf("NumericTail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAddBookRegistersAllKeyForms(t *testing.T) {
	idx := New()
	idx.AddBook(7, 100, []string{"Genesis", "Bereshit"}, []flatten.RefEntry{
		{Ref: "Genesis 1:1", HeRef: "בראשית א׳:א׳", LineIndex: 1},
		{Ref: "Genesis 1:2", HeRef: "בראשית א׳:ב׳", LineIndex: 2},
	})

	lookups := []string{
		"Genesis 1:1",    // full ref
		"genesis 1:1",    // case-insensitive
		"בראשית א׳:א׳", // full heRef
		"בראשית א:א",    // punctuation-stripped heRef
		"1:1",            // alias-stripped / numeric tail
	}
	for _, key := range lookups {
		pos, ok := idx.Lookup(key)
		if !ok {
			t.Errorf("Lookup(%q) missed", key)
			continue
		}
		if pos.BookID != 7 || pos.LineID != 100 || pos.LineIndex != 0 {
			t.Errorf("Lookup(%q) = %+v", key, pos)
		}
	}

	pos, ok := idx.Lookup("Genesis 1:2")
	if !ok || pos.LineID != 101 || pos.LineIndex != 1 {
		t.Errorf("second entry position = %+v, ok=%v", pos, ok)
	}
}

func TestFirstOccurrenceWins(t *testing.T) {
	idx := New()
	idx.AddBook(1, 0, nil, []flatten.RefEntry{
		{Ref: "Book 1:1", LineIndex: 1},
	})
	// A later duplicate header must not shadow the true anchor.
	idx.AddBook(2, 500, nil, []flatten.RefEntry{
		{Ref: "Book 1:1", LineIndex: 1},
	})

	pos, ok := idx.Lookup("Book 1:1")
	if !ok {
		t.Fatal("Lookup missed")
	}
	if pos.BookID != 1 || pos.LineID != 0 {
		t.Errorf("expected first registration to win, got %+v", pos)
	}
}

func TestLookupMiss(t *testing.T) {
	idx := New()
	if _, ok := idx.Lookup("Nothing Here 1:1"); ok {
		t.Error("expected miss on empty index")
	}
}
