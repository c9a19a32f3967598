// Package citation parses free-form citation strings and resolves them
// against the canonical reference index.
//
// Citation strings arrive in inconsistent formats ("Genesis 1:4",
// "Beit Yosef, Orach Chayim 325:34:1", "Shabbat 21b"). Parsing is
// best-effort: a trailing token run that fails to parse as numbers degrades
// into the section label rather than failing, and resolution walks an
// ordered chain of fallback keys. Unresolvable citations are dropped, never
// raised.
package citation

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/otzarlib/otzar/core/hebrew"
)

// Citation is the structured form of a citation string. Immutable once
// parsed.
type Citation struct {
	// Raw is the citation string as received.
	Raw string `json:"raw"`

	// BookTitle is the cited book's title phrase.
	BookTitle string `json:"book_title"`

	// Section is the optional intermediate section label
	// (e.g., "Orach Chayim").
	Section string `json:"section,omitempty"`

	// References is the ordered list of address integers. A page/side
	// token like "21b" is linearized into its sequential position.
	References []int `json:"references,omitempty"`

	// HasDafAddress records that the leading reference token was a
	// page/side pair. Chapter-level fallbacks are not meaningful for such
	// citations and the resolver suppresses them.
	HasDafAddress bool `json:"has_daf_address,omitempty"`
}

// tailGrammar is the participle grammar for the trailing reference run.
// Examples: "325:34:1", "2a", "21b:4", "3:5-7" (range end discarded here;
// the resolver handles ranges from the raw string).
//
//nolint:govet // participle grammar tags are not standard struct tags
type tailGrammar struct {
	Head string `@(PageSide | Int)`
	Rest []int  `( ":" @Int )*`
	End  *int   `( "-" @Int )?`
}

// tailLexer tokenizes reference runs. PageSide must precede Int so that
// "21b" lexes as one token.
var tailLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "PageSide", Pattern: `[0-9]+[ab]`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[:\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// tailParser is the participle parser for reference runs.
var tailParser = participle.MustBuild[tailGrammar](
	participle.Lexer(tailLexer),
	participle.Elide("Whitespace"),
)

// Parse converts a free-form citation string into a Citation. The string is
// split on the first comma to separate the book title from an optional
// section plus trailing reference run, else on the last space. Malformed
// trailing runs degrade into the section label, yielding a low-confidence
// Citation with no references for the resolver to reject; only an empty
// input returns nil.
func Parse(raw string) *Citation {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	c := &Citation{Raw: trimmed}

	var remainder string
	if comma := strings.Index(trimmed, ","); comma >= 0 {
		c.BookTitle = strings.TrimSpace(trimmed[:comma])
		remainder = strings.TrimSpace(trimmed[comma+1:])
	} else if space := strings.LastIndex(trimmed, " "); space >= 0 {
		c.BookTitle = strings.TrimSpace(trimmed[:space])
		remainder = strings.TrimSpace(trimmed[space+1:])
	} else {
		c.BookTitle = trimmed
		return c
	}

	// The trailing whitespace-separated token is the reference run
	// candidate; anything before it is the section label.
	section, run := "", remainder
	if space := strings.LastIndex(remainder, " "); space >= 0 {
		section = strings.TrimSpace(remainder[:space])
		run = strings.TrimSpace(remainder[space+1:])
	}

	refs, daf, ok := parseRun(run)
	if !ok {
		// No reference tokens extractable: the whole remainder is a
		// section label ("Tur, Orach Chayim, Introduction").
		c.Section = remainder
		return c
	}

	c.Section = strings.TrimSuffix(section, ",")
	c.Section = strings.TrimSpace(c.Section)
	c.References = refs
	c.HasDafAddress = daf
	return c
}

// parseRun parses a colon-delimited reference run, linearizing a leading
// page/side token into its 1-based sequential position.
func parseRun(run string) (refs []int, daf bool, ok bool) {
	if run == "" {
		return nil, false, false
	}

	parsed, err := tailParser.ParseString("", run)
	if err != nil {
		return nil, false, false
	}

	head := parsed.Head
	if last := head[len(head)-1]; last == 'a' || last == 'b' {
		page := 0
		for _, r := range head[:len(head)-1] {
			page = page*10 + int(r-'0')
		}
		side := 0
		if last == 'b' {
			side = 1
		}
		refs = append(refs, hebrew.DafPosition(page, side))
		daf = true
	} else {
		n := 0
		for _, r := range head {
			n = n*10 + int(r-'0')
		}
		refs = append(refs, n)
	}

	refs = append(refs, parsed.Rest...)
	return refs, daf, true
}
