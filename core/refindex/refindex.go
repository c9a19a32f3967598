// Package refindex builds the multi-key lookup from normalized canonical
// reference strings to line identities.
//
// Each reference entry registers several keys: the full canonical ref and
// heRef, an alias-stripped form with the leading book-title phrase removed,
// and a tail-only form with leading non-numeric tokens dropped. This
// redundancy is what keeps the citation resolver's fallback chain to plain
// map lookups.
package refindex

import (
	"strings"

	"github.com/otzarlib/otzar/core/flatten"
	"github.com/otzarlib/otzar/core/hebrew"
)

// Position identifies one line in the corpus.
type Position struct {
	// BookID is the owning book.
	BookID int `json:"book_id"`

	// LineID is the corpus-wide line identifier.
	LineID int `json:"line_id"`

	// LineIndex is the 0-based index within the book.
	LineIndex int `json:"line_index"`
}

// Index maps normalized reference keys to line positions. It is built once,
// after all documents' reference entries are collected, and immutable after.
type Index struct {
	byKey map[string]Position
}

// New creates an empty index.
func New() *Index {
	return &Index{byKey: make(map[string]Position)}
}

// Len returns the number of distinct keys.
func (idx *Index) Len() int {
	return len(idx.byKey)
}

// Lookup returns the position registered under the normalized form of key.
func (idx *Index) Lookup(key string) (Position, bool) {
	pos, ok := idx.byKey[Normalize(key)]
	return pos, ok
}

// register stores a key unless an earlier entry already claimed it. First
// occurrence wins: later duplicate headers must not shadow true anchors.
func (idx *Index) register(key string, pos Position) {
	key = Normalize(key)
	if key == "" {
		return
	}
	if _, exists := idx.byKey[key]; !exists {
		idx.byKey[key] = pos
	}
}

// AddBook registers one book's reference entries. baseLineID is the
// corpus-wide ID of the book's first line; entries carry 1-based indices and
// the book's lines are contiguous in the ID arena.
func (idx *Index) AddBook(bookID, baseLineID int, aliases []string, entries []flatten.RefEntry) {
	for _, entry := range entries {
		pos := Position{
			BookID:    bookID,
			LineID:    baseLineID + entry.LineIndex - 1,
			LineIndex: entry.LineIndex - 1,
		}

		idx.register(entry.Ref, pos)
		idx.register(entry.HeRef, pos)

		for _, alias := range aliases {
			if stripped := StripAlias(entry.Ref, alias); stripped != entry.Ref {
				idx.register(stripped, pos)
			}
			if stripped := StripAlias(entry.HeRef, alias); stripped != entry.HeRef {
				idx.register(stripped, pos)
			}
		}

		if tail := NumericTail(entry.Ref); tail != "" {
			idx.register(tail, pos)
		}
	}
}

// quoteVariants are the characters stripped during normalization: ASCII
// quotes and the Hebrew geresh/gershayim that punctuate numerals.
var quoteVariants = strings.NewReplacer(
	",", "",
	"\"", "",
	"'", "",
	hebrew.Geresh, "",
	hebrew.Gershayim, "",
)

// Normalize lowercases, collapses whitespace, and strips commas and quote
// variants so that cosmetically different citations share one key.
func Normalize(s string) string {
	s = strings.ToLower(quoteVariants.Replace(s))
	return strings.Join(strings.Fields(s), " ")
}

// StripAlias removes a leading book-title phrase, returning the remainder.
// Returns s unchanged when s does not start with the alias.
func StripAlias(s, alias string) string {
	ns, na := Normalize(s), Normalize(alias)
	if na == "" || !strings.HasPrefix(ns, na) {
		return s
	}
	rest := strings.TrimSpace(strings.TrimPrefix(ns, na))
	rest = strings.TrimPrefix(rest, ",")
	return strings.TrimSpace(rest)
}

// NumericTail drops leading tokens until the first token that starts with a
// digit, returning the numeric run ("325:34:1", "2a:4"). Empty when no token
// is numeric.
func NumericTail(s string) string {
	fields := strings.Fields(Normalize(s))
	for i, f := range fields {
		if f != "" && f[0] >= '0' && f[0] <= '9' {
			return strings.Join(fields[i:], " ")
		}
	}
	return ""
}
