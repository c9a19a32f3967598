package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	coreerrors "github.com/otzarlib/otzar/core/errors"
	"github.com/otzarlib/otzar/core/importer"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func writeBook(t *testing.T, root, dir, title string) {
	t.Helper()
	base := filepath.Join(root, "books", dir)
	writeFile(t, filepath.Join(base, "book.json"),
		`{"title": "`+title+`", "heTitle": "ספר", "categories": ["Tanakh"]}`)
	writeFile(t, filepath.Join(base, "schema.json"),
		`{"key": "default", "depth": 2, "sectionNames": ["Chapter", "Verse"], "addressTypes": ["Chapter", "Verse"]}`)
	writeFile(t, filepath.Join(base, "text.json"),
		`[["first verse", "second verse"], ["third verse"]]`)
}

func TestDocuments(t *testing.T) {
	root := t.TempDir()
	writeBook(t, root, "02-exodus", "Exodus")
	writeBook(t, root, "01-genesis", "Genesis")

	docs, err := NewDir(root).Documents(context.Background())
	if err != nil {
		t.Fatalf("Documents failed: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(docs))
	}
	// Lexical directory order, not filesystem order.
	if docs[0].Title != "Genesis" || docs[1].Title != "Exodus" {
		t.Errorf("Expected Genesis then Exodus, got %q then %q", docs[0].Title, docs[1].Title)
	}
	if docs[0].Schema == nil {
		t.Fatal("Expected parsed schema")
	}
	if docs[0].Content == nil || len(docs[0].Content.Items) != 2 {
		t.Error("Expected two-chapter content tree")
	}
	if docs[0].HeTitle != "ספר" {
		t.Errorf("Expected Hebrew title, got %q", docs[0].HeTitle)
	}
}

func TestDocumentsMissingRoot(t *testing.T) {
	_, err := NewDir(filepath.Join(t.TempDir(), "nope")).Documents(context.Background())
	if !errors.Is(err, coreerrors.ErrCorpusRoot) {
		t.Errorf("Expected ErrCorpusRoot, got %v", err)
	}
}

func TestDocumentsMissingTitle(t *testing.T) {
	root := t.TempDir()
	writeBook(t, root, "genesis", "Genesis")
	writeFile(t, filepath.Join(root, "books", "genesis", "book.json"), `{"heTitle": "בראשית"}`)

	docs, err := NewDir(root).Documents(context.Background())
	if err != nil {
		t.Fatalf("Documents failed: %v", err)
	}
	if len(docs) != 1 || docs[0].LoadErr == nil {
		t.Fatal("Expected document with load error for missing title")
	}
}

func TestDocumentsBadSchema(t *testing.T) {
	root := t.TempDir()
	writeBook(t, root, "genesis", "Genesis")
	writeFile(t, filepath.Join(root, "books", "genesis", "schema.json"), `{not json`)

	docs, err := NewDir(root).Documents(context.Background())
	if err != nil {
		t.Fatalf("Documents failed: %v", err)
	}
	if len(docs) != 1 || docs[0].LoadErr == nil {
		t.Fatal("Expected document with load error for malformed schema")
	}
	// The directory name stands in for the unreadable title.
	if docs[0].Title != "genesis" {
		t.Errorf("Expected directory name as title, got %q", docs[0].Title)
	}
}

func TestDocumentsCorruptBookDoesNotHideOthers(t *testing.T) {
	root := t.TempDir()
	writeBook(t, root, "01-genesis", "Genesis")
	writeBook(t, root, "02-broken", "Broken")
	writeFile(t, filepath.Join(root, "books", "02-broken", "schema.json"),
		`{"nodeType": "mystery"}`)

	docs, err := NewDir(root).Documents(context.Background())
	if err != nil {
		t.Fatalf("Documents failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(docs))
	}
	if docs[0].LoadErr != nil {
		t.Errorf("Expected Genesis to load, got %v", docs[0].LoadErr)
	}
	if docs[1].LoadErr == nil {
		t.Error("Expected load error on the corrupt book")
	}
}

func TestDocumentsAltStructures(t *testing.T) {
	root := t.TempDir()
	writeBook(t, root, "genesis", "Genesis")
	writeFile(t, filepath.Join(root, "books", "genesis", "alt_structs.json"),
		`[{"key": "parasha", "nodes": [{"title": "Bereshit", "wholeRef": "Genesis 1:1"}]}]`)

	docs, err := NewDir(root).Documents(context.Background())
	if err != nil {
		t.Fatalf("Documents failed: %v", err)
	}
	if len(docs[0].AltStructures) != 1 {
		t.Fatalf("Expected 1 alt structure, got %d", len(docs[0].AltStructures))
	}
	if docs[0].AltStructures[0].Key != "parasha" {
		t.Errorf("Expected key parasha, got %q", docs[0].AltStructures[0].Key)
	}
}

func TestLinks(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "links.json"),
		`[{"citation1": "Rashi on Genesis 1:1", "citation2": "Genesis 1:1", "type": "commentary"}]`)

	triples, err := NewDir(root).Links(context.Background())
	if err != nil {
		t.Fatalf("Links failed: %v", err)
	}
	if len(triples) != 1 {
		t.Fatalf("Expected 1 triple, got %d", len(triples))
	}
	if triples[0].Type != "commentary" {
		t.Errorf("Expected type commentary, got %q", triples[0].Type)
	}
}

func TestLinksMissingFile(t *testing.T) {
	triples, err := NewDir(t.TempDir()).Links(context.Background())
	if err != nil {
		t.Fatalf("Expected missing links.json to be tolerated, got %v", err)
	}
	if triples != nil {
		t.Errorf("Expected no triples, got %d", len(triples))
	}
}

func TestEndToEndWithImporter(t *testing.T) {
	root := t.TempDir()
	writeBook(t, root, "genesis", "Genesis")

	out, err := importer.Run(context.Background(), NewDir(root), importer.Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(out.Books) != 1 {
		t.Fatalf("Expected 1 book, got %d", len(out.Books))
	}
	if len(out.Books[0].Lines) != 3 {
		t.Errorf("Expected 3 lines, got %d", len(out.Books[0].Lines))
	}
	if _, ok := out.Index.Lookup("Genesis 2:1"); !ok {
		t.Error("Expected Genesis 2:1 in index")
	}
}

func TestEndToEndExcludesCorruptBook(t *testing.T) {
	root := t.TempDir()
	writeBook(t, root, "01-genesis", "Genesis")
	writeBook(t, root, "02-broken", "Broken")
	writeFile(t, filepath.Join(root, "books", "02-broken", "schema.json"),
		`{"nodeType": "mystery"}`)

	out, err := importer.Run(context.Background(), NewDir(root), importer.Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(out.Books) != 1 {
		t.Fatalf("Expected 1 book, got %d", len(out.Books))
	}
	if out.Books[0].Title != "Genesis" {
		t.Errorf("Expected surviving book Genesis, got %q", out.Books[0].Title)
	}
	if out.Stats.DocumentsFailed != 1 {
		t.Errorf("Expected 1 document failed, got %d", out.Stats.DocumentsFailed)
	}
	if out.Stats.DocumentsProcessed != 1 {
		t.Errorf("Expected 1 document processed, got %d", out.Stats.DocumentsProcessed)
	}
}
