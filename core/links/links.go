// Package links resolves raw citation pairs into directional, symmetric
// link records between documents.
//
// Both sides of a pair resolve through the citation fallback chain; either
// failure drops the pair without raising. Commentary and Targum pairs are
// always emitted as a forward/reverse pair so that either endpoint's "what
// links here" is a plain equality lookup.
package links

import (
	"strings"

	"github.com/otzarlib/otzar/core/citation"
	"github.com/otzarlib/otzar/core/refindex"
)

// ConnectionType classifies a link.
type ConnectionType string

// Connection type constants.
const (
	ConnectionCommentary ConnectionType = "commentary"
	ConnectionTargum     ConnectionType = "targum"
	ConnectionReference  ConnectionType = "reference"
	ConnectionSource     ConnectionType = "source"
	ConnectionOther      ConnectionType = "other"
)

// validConnectionTypes is the set of valid connection types.
var validConnectionTypes = map[ConnectionType]bool{
	ConnectionCommentary: true,
	ConnectionTargum:     true,
	ConnectionReference:  true,
	ConnectionSource:     true,
	ConnectionOther:      true,
}

// IsValid returns true if the connection type is valid.
func (c ConnectionType) IsValid() bool {
	return validConnectionTypes[c]
}

// BookMeta carries the per-book metadata the link stage needs.
type BookMeta struct {
	// ID is the book's corpus-wide identifier.
	ID int `json:"id"`

	// Title is the canonical English title.
	Title string `json:"title"`

	// Aliases are alternate title phrases, including the Hebrew title.
	Aliases []string `json:"aliases,omitempty"`

	// Categories is the category path (e.g., ["Talmud", "Bavli"]).
	Categories []string `json:"categories,omitempty"`

	// Dependent flags a book that exists relative to a base text
	// (a commentary or a targum).
	Dependent bool `json:"dependent,omitempty"`
}

// Link is one directional link record.
type Link struct {
	// SourceBookID and SourceLineID identify the referring line.
	SourceBookID int `json:"source_book_id"`
	SourceLineID int `json:"source_line_id"`

	// TargetBookID and TargetLineID identify the referenced line.
	TargetBookID int `json:"target_book_id"`
	TargetLineID int `json:"target_line_id"`

	// Type classifies the connection.
	Type ConnectionType `json:"type"`
}

// Resolver resolves citation pairs against an immutable index and book
// metadata. Safe for concurrent use once constructed.
type Resolver struct {
	idx     *refindex.Index
	byTitle map[string]*BookMeta
	byID    map[int]*BookMeta
}

// NewResolver builds a resolver over the finished index. Books are looked up
// by normalized title and alias.
func NewResolver(idx *refindex.Index, books []*BookMeta) *Resolver {
	r := &Resolver{
		idx:     idx,
		byTitle: make(map[string]*BookMeta),
		byID:    make(map[int]*BookMeta),
	}
	for _, book := range books {
		r.byID[book.ID] = book
		r.register(book.Title, book)
		for _, alias := range book.Aliases {
			r.register(alias, book)
		}
	}
	return r
}

func (r *Resolver) register(title string, book *BookMeta) {
	key := refindex.Normalize(title)
	if key == "" {
		return
	}
	if _, exists := r.byTitle[key]; !exists {
		r.byTitle[key] = book
	}
}

// bookFor returns the metadata of the book a citation names, nil if unknown.
func (r *Resolver) bookFor(c *citation.Citation) *BookMeta {
	if c == nil {
		return nil
	}
	return r.byTitle[refindex.Normalize(c.BookTitle)]
}

// Resolve converts one (citation, citation, type label) triple into zero or
// more link records. Either side failing to resolve drops the pair.
func (r *Resolver) Resolve(rawCit1, rawCit2, rawType string) []Link {
	cit1 := citation.Parse(rawCit1)
	cit2 := citation.Parse(rawCit2)
	if cit1 == nil || cit2 == nil {
		return nil
	}

	book1, book2 := r.bookFor(cit1), r.bookFor(cit2)

	pos1, ok := r.resolveSide(cit1, book1)
	if !ok {
		return nil
	}
	pos2, ok := r.resolveSide(cit2, book2)
	if !ok {
		return nil
	}

	connType := normalizeType(rawType, book1, book2)

	if connType == ConnectionCommentary || connType == ConnectionTargum {
		basePos, depPos := pos1, pos2
		if !baseIsFirst(book1, book2, pos1, pos2) {
			basePos, depPos = pos2, pos1
		}
		// The base side points at its dependent with type "source"; the
		// dependent points back with the original type.
		return []Link{
			{
				SourceBookID: basePos.BookID,
				SourceLineID: basePos.LineID,
				TargetBookID: depPos.BookID,
				TargetLineID: depPos.LineID,
				Type:         ConnectionSource,
			},
			{
				SourceBookID: depPos.BookID,
				SourceLineID: depPos.LineID,
				TargetBookID: basePos.BookID,
				TargetLineID: basePos.LineID,
				Type:         connType,
			},
		}
	}

	// Reference and other links preserve input order.
	return []Link{
		{
			SourceBookID: pos1.BookID,
			SourceLineID: pos1.LineID,
			TargetBookID: pos2.BookID,
			TargetLineID: pos2.LineID,
			Type:         connType,
		},
		{
			SourceBookID: pos2.BookID,
			SourceLineID: pos2.LineID,
			TargetBookID: pos1.BookID,
			TargetLineID: pos1.LineID,
			Type:         connType,
		},
	}
}

// resolveSide resolves one citation with the book's aliases, suppressing
// chapter fallbacks for paginated works.
func (r *Resolver) resolveSide(c *citation.Citation, book *BookMeta) (refindex.Position, bool) {
	var aliases []string
	opts := citation.ResolveOptions{}
	if book != nil {
		aliases = append([]string{book.Title}, book.Aliases...)
		opts.NoChapterFallback = hasCategory(book, "Talmud")
	}
	return citation.Resolve(c, r.idx, aliases, opts)
}

// normalizeType maps a free-text connection label onto the closed enum. A
// blank label with exactly one dependent side infers commentary, or targum
// when the dependent book is categorized as one.
func normalizeType(label string, book1, book2 *BookMeta) ConnectionType {
	switch l := strings.ToLower(strings.TrimSpace(label)); {
	case strings.Contains(l, "commentary"):
		return ConnectionCommentary
	case strings.Contains(l, "targum"):
		return ConnectionTargum
	case strings.Contains(l, "reference"):
		return ConnectionReference
	case l == "":
		dep := dependentSide(book1, book2)
		if dep == nil {
			return ConnectionOther
		}
		if hasCategory(dep, "Targum") {
			return ConnectionTargum
		}
		return ConnectionCommentary
	default:
		return ConnectionOther
	}
}

// dependentSide returns the single dependent book of a pair, nil when zero
// or both sides are dependent.
func dependentSide(book1, book2 *BookMeta) *BookMeta {
	d1 := book1 != nil && book1.Dependent
	d2 := book2 != nil && book2.Dependent
	switch {
	case d1 && !d2:
		return book1
	case d2 && !d1:
		return book2
	default:
		return nil
	}
}

// baseIsFirst decides whether the first side of a commentary/targum pair is
// the structurally base text: the explicitly non-dependent side, else the
// shallower category path, else the lower book id.
func baseIsFirst(book1, book2 *BookMeta, pos1, pos2 refindex.Position) bool {
	if dep := dependentSide(book1, book2); dep != nil {
		return dep == book2
	}
	if book1 != nil && book2 != nil && len(book1.Categories) != len(book2.Categories) {
		return len(book1.Categories) < len(book2.Categories)
	}
	return pos1.BookID < pos2.BookID
}

// hasCategory reports whether the book's category path contains name.
func hasCategory(book *BookMeta, name string) bool {
	if book == nil {
		return false
	}
	for _, c := range book.Categories {
		if c == name {
			return true
		}
	}
	return false
}
