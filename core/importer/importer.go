// Package importer orchestrates the corpus import: parallel per-document
// flattening, a single index build over the collected reference entries, and
// errgroup-parallel link and alternate-structure stages over the finished,
// immutable index.
package importer

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/otzarlib/otzar/core/altstruct"
	"github.com/otzarlib/otzar/core/errors"
	"github.com/otzarlib/otzar/core/flatten"
	"github.com/otzarlib/otzar/core/links"
	"github.com/otzarlib/otzar/core/refindex"
	"github.com/otzarlib/otzar/core/schema"
	"github.com/otzarlib/otzar/internal/logging"
)

// Document is the per-document tuple consumed from the document source.
type Document struct {
	// Title and HeTitle are the canonical English and Hebrew titles.
	Title   string
	HeTitle string

	// Schema and Content describe the document's shape and text.
	Schema  schema.Node
	Content *schema.Content

	// Categories is the category path.
	Categories []string

	// Aliases are alternate title phrases.
	Aliases []string

	// Dependent flags a commentary or targum.
	Dependent bool

	// AltStructures are the optional overlay definitions.
	AltStructures []*altstruct.Structure

	// LoadErr records a failure reading or decoding the document. A
	// document carrying a load error has no usable content; it is counted
	// as failed and excluded, and the run continues.
	LoadErr error
}

// LinkTriple is one raw link row from the corpus-wide link list.
type LinkTriple struct {
	Citation1 string `json:"citation1"`
	Citation2 string `json:"citation2"`
	Type      string `json:"type"`
}

// Source supplies the corpus. Implementations read from disk or elsewhere;
// the importer never touches storage formats directly.
type Source interface {
	// Documents returns every document in corpus order.
	Documents(ctx context.Context) ([]*Document, error)

	// Links returns the corpus-wide ordered link triples.
	Links(ctx context.Context) ([]LinkTriple, error)
}

// Book is one imported document with its assigned identity and output rows.
type Book struct {
	ID         int
	Title      string
	HeTitle    string
	Categories []string
	Aliases    []string
	Dependent  bool

	// BaseLineID is the corpus-wide ID of the book's first line; lines
	// are contiguous in the arena.
	BaseLineID int

	Lines      []flatten.Line
	TocEntries []TocEntry
	AltEntries []AltTocEntry

	// HasAltStructures reports whether any overlay survived anchoring.
	HasAltStructures bool
}

// Result is the aggregate import output.
type Result struct {
	Books []*Book
	Links []links.Link
	Index *refindex.Index
	Stats StatsSnapshot
}

// Options configures a run.
type Options struct {
	// Workers bounds the flattening pool; 0 means the CPU core count.
	Workers int
}

// flattenJob and flattenResult carry one document through the pool.
type flattenJob struct {
	index int
	doc   *Document
}

type flattenResult struct {
	index  int
	result *flatten.Result
	err    error
}

// Run executes the full import. Only an unreadable corpus is fatal; a single
// document's structural failure is logged and excluded, and unresolvable
// citations are dropped and counted.
func Run(ctx context.Context, src Source, opts Options) (*Result, error) {
	docs, err := src.Documents(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load corpus")
	}
	if len(docs) == 0 {
		return nil, errors.ErrCorpusRoot
	}

	stats := &Stats{}

	results := flattenAll(ctx, docs, opts, stats)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Single-writer merge: book IDs and the line-ID arena are minted in
	// corpus order, so repeated runs over the same corpus agree.
	out := &Result{Index: refindex.New()}
	nextLineID := 0
	for i, doc := range docs {
		fr := results[i]
		if fr == nil || fr.err != nil {
			continue
		}

		book := &Book{
			ID:         len(out.Books) + 1,
			Title:      doc.Title,
			HeTitle:    doc.HeTitle,
			Categories: doc.Categories,
			Aliases:    doc.Aliases,
			Dependent:  doc.Dependent,
			BaseLineID: nextLineID,
			Lines:      fr.result.Lines,
			TocEntries: BuildToc(fr.result.Headings),
		}
		for j := range book.Lines {
			book.Lines[j].BookID = book.ID
		}
		nextLineID += len(book.Lines)

		out.Index.AddBook(book.ID, book.BaseLineID, bookAliases(doc), fr.result.RefEntries)
		out.Books = append(out.Books, book)

		stats.linesEmitted.Add(int64(len(book.Lines)))
		stats.skippedSubtrees.Add(int64(fr.result.SkippedSubtrees))
	}

	triples, err := src.Links(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load links")
	}

	// The index is immutable from here on; the link and overlay stages
	// read it concurrently and write disjoint outputs.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.Links = resolveLinks(gctx, triples, out, stats)
		return gctx.Err()
	})
	g.Go(func() error {
		buildAltStructures(gctx, docs, results, out, stats)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.Stats = stats.Snapshot()
	logging.ImportSummary(out.Stats.DocumentsProcessed, out.Stats.DocumentsFailed,
		out.Stats.LinesEmitted, out.Stats.LinksCreated, out.Stats.LinksDropped)
	return out, nil
}

// flattenAll runs the pure flattening phase through the worker pool,
// returning results positioned by document index.
func flattenAll(ctx context.Context, docs []*Document, opts Options, stats *Stats) []*flattenResult {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	pool := NewWorkerPool[flattenJob, *flattenResult](workers, len(docs))
	pool.Start(func(job flattenJob) *flattenResult {
		if err := ctx.Err(); err != nil {
			return &flattenResult{index: job.index, err: err}
		}
		return flattenOne(job)
	})

	for i, doc := range docs {
		pool.Submit(flattenJob{index: i, doc: doc})
	}
	pool.Close()

	results := make([]*flattenResult, len(docs))
	for fr := range pool.Results() {
		results[fr.index] = fr
		if fr.err != nil {
			if ctx.Err() == nil {
				stats.documentsFailed.Add(1)
				logging.DocumentFailed(docs[fr.index].Title, fr.err)
			}
			continue
		}
		stats.documentsProcessed.Add(1)
	}
	return results
}

// flattenOne flattens a single document, converting panics from pathological
// shapes into a per-document failure so the run continues. No partial state
// escapes: the result is discarded wholesale on error.
func flattenOne(job flattenJob) (fr *flattenResult) {
	fr = &flattenResult{index: job.index}
	defer func() {
		if r := recover(); r != nil {
			fr.result = nil
			fr.err = fmt.Errorf("document panic: %v", r)
		}
	}()

	if job.doc.LoadErr != nil {
		fr.err = job.doc.LoadErr
		return fr
	}

	result, err := flatten.Flatten(job.doc.Schema, job.doc.Content, job.doc.Title, job.doc.HeTitle)
	if err != nil {
		fr.err = err
		return fr
	}
	// A document that flattens to nothing would mint an empty book.
	if len(result.Lines) == 0 {
		fr.err = errors.ErrEmptyContent
		return fr
	}
	fr.result = result
	return fr
}

// resolveLinks walks the raw triples against the finished index.
func resolveLinks(ctx context.Context, triples []LinkTriple, out *Result, stats *Stats) []links.Link {
	metas := make([]*links.BookMeta, len(out.Books))
	for i, b := range out.Books {
		metas[i] = &links.BookMeta{
			ID:         b.ID,
			Title:      b.Title,
			Aliases:    append([]string{b.HeTitle}, b.Aliases...),
			Categories: b.Categories,
			Dependent:  b.Dependent,
		}
	}
	resolver := links.NewResolver(out.Index, metas)

	var resolved []links.Link
	for i, triple := range triples {
		if i%1024 == 0 && ctx.Err() != nil {
			return resolved
		}
		pair := resolver.Resolve(triple.Citation1, triple.Citation2, triple.Type)
		if len(pair) == 0 {
			stats.linksDropped.Add(1)
			logging.CitationDrop(triple.Citation1, triple.Citation2)
			continue
		}
		resolved = append(resolved, pair...)
		stats.linksCreated.Add(int64(len(pair)))
	}
	return resolved
}

// buildAltStructures anchors each document's overlays. Every book writes only
// into its own Book record, so the stage needs no locking.
func buildAltStructures(ctx context.Context, docs []*Document, results []*flattenResult, out *Result, stats *Stats) {
	byTitle := make(map[string]*Book, len(out.Books))
	for _, b := range out.Books {
		byTitle[b.Title] = b
	}

	for i, doc := range docs {
		if ctx.Err() != nil {
			return
		}
		if len(doc.AltStructures) == 0 {
			continue
		}
		book := byTitle[doc.Title]
		if book == nil || results[i] == nil || results[i].err != nil {
			continue
		}

		opts := altstruct.BuildOptions{
			Aliases:    bookAliases(doc),
			Categories: doc.Categories,
		}
		for _, structure := range doc.AltStructures {
			entries := altstruct.Build(structure, out.Index, opts)
			defined := countAltNodes(structure.Nodes)
			built := countAltEntries(entries)
			stats.altNodesBuilt.Add(int64(built))
			stats.altNodesDropped.Add(int64(defined - built))
			if len(entries) == 0 {
				continue
			}
			book.AltEntries = FlattenAltToc(book.AltEntries, structure.Key, entries)
			book.HasAltStructures = true
		}
	}
}

// bookAliases collects every title phrase a citation may use for a document.
func bookAliases(doc *Document) []string {
	aliases := []string{doc.Title}
	if doc.HeTitle != "" {
		aliases = append(aliases, doc.HeTitle)
	}
	return append(aliases, doc.Aliases...)
}

func countAltNodes(nodes []*altstruct.Node) int {
	n := len(nodes)
	for _, node := range nodes {
		n += countAltNodes(node.Nodes)
	}
	return n
}

// countAltEntries counts surviving structural entries. Inline children carry
// a computed address and have no defined node of their own, so they are
// excluded from the built/dropped accounting.
func countAltEntries(entries []*altstruct.Entry) int {
	n := 0
	for _, e := range entries {
		if e.Address == 0 {
			n += 1 + countAltEntries(e.Children)
		}
	}
	return n
}
