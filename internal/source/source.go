// Package source reads a corpus from a directory tree and serves it to the
// importer.
//
// Layout:
//
//	<root>/links.json            optional corpus-wide link triples
//	<root>/books/<name>/book.json        titles, categories, aliases
//	<root>/books/<name>/schema.json      schema node tree
//	<root>/books/<name>/text.json        content tree
//	<root>/books/<name>/alt_structs.json optional overlay definitions
//
// Book directories are visited in lexical order, so corpus order, and with
// it every minted identifier, is a pure function of the tree.
package source

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/otzarlib/otzar/core/altstruct"
	"github.com/otzarlib/otzar/core/errors"
	"github.com/otzarlib/otzar/core/importer"
	"github.com/otzarlib/otzar/core/schema"
)

// DirSource reads documents from a corpus directory.
type DirSource struct {
	root string
}

// NewDir creates a source over the corpus directory at root.
func NewDir(root string) *DirSource {
	return &DirSource{root: root}
}

// bookMeta is the raw shape of book.json.
type bookMeta struct {
	Title      string   `json:"title"`
	HeTitle    string   `json:"heTitle"`
	Categories []string `json:"categories"`
	Aliases    []string `json:"aliases"`
	Dependent  bool     `json:"dependent"`
}

// Documents reads every book directory under <root>/books in lexical order.
// A corrupt book is returned with LoadErr set so the importer counts and
// excludes it; only an unreadable books root is an error.
func (s *DirSource) Documents(ctx context.Context) ([]*importer.Document, error) {
	booksDir := filepath.Join(s.root, "books")
	entries, err := os.ReadDir(booksDir)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCorpusRoot, "read %s", booksDir)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var docs []*importer.Document
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := s.readBook(filepath.Join(booksDir, name))
		if err != nil {
			doc = &importer.Document{
				Title:   name,
				LoadErr: errors.Wrapf(err, "book %s", name),
			}
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *DirSource) readBook(dir string) (*importer.Document, error) {
	var meta bookMeta
	if err := readJSON(filepath.Join(dir, "book.json"), &meta); err != nil {
		return nil, err
	}
	if meta.Title == "" {
		return nil, errors.NewValidation("title", "book.json missing title")
	}

	schemaData, err := os.ReadFile(filepath.Join(dir, "schema.json"))
	if err != nil {
		return nil, errors.NewSource("read", filepath.Join(dir, "schema.json"), err)
	}
	node, err := schema.ParseNode(schemaData)
	if err != nil {
		return nil, err
	}

	var content schema.Content
	if err := readJSON(filepath.Join(dir, "text.json"), &content); err != nil {
		return nil, err
	}

	doc := &importer.Document{
		Title:      meta.Title,
		HeTitle:    meta.HeTitle,
		Schema:     node,
		Content:    &content,
		Categories: meta.Categories,
		Aliases:    meta.Aliases,
		Dependent:  meta.Dependent,
	}

	// Overlays are optional; a missing file simply means none.
	altPath := filepath.Join(dir, "alt_structs.json")
	if _, err := os.Stat(altPath); err == nil {
		var structures []*altstruct.Structure
		if err := readJSON(altPath, &structures); err != nil {
			return nil, err
		}
		doc.AltStructures = structures
	}

	return doc, nil
}

// Links reads the corpus-wide link triples. A missing links.json means no
// links, not an error.
func (s *DirSource) Links(ctx context.Context) ([]importer.LinkTriple, error) {
	path := filepath.Join(s.root, "links.json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	var triples []importer.LinkTriple
	if err := readJSON(path, &triples); err != nil {
		return nil, err
	}
	return triples, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewSource("read", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.NewSource("decode", path, err)
	}
	return nil
}
