// Package flatten walks a document schema and its parallel content tree,
// emitting ordered lines, heading entries, and canonical reference strings.
//
// Lines, headings, and reference entries share one depth-first traversal and
// therefore have consistent relative ordering: a reference entry's line index
// always equals the running line count at the moment of emission.
package flatten

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/otzarlib/otzar/core/hebrew"
	"github.com/otzarlib/otzar/core/schema"
)

// Line is one addressable unit of text. Lines are owned by their book and
// immutable once emitted. BookID is assigned by the importer.
type Line struct {
	// BookID identifies the owning book (filled in by the importer).
	BookID int `json:"book_id"`

	// LineIndex is the 0-based, contiguous position within the book.
	LineIndex int `json:"line_index"`

	// Content is the text of the line.
	Content string `json:"content"`

	// Ref is the English canonical reference, empty for unreferenceable lines.
	Ref string `json:"ref,omitempty"`

	// HeRef is the Hebrew canonical reference.
	HeRef string `json:"he_ref,omitempty"`
}

// Heading is a table-of-contents entry emitted during traversal. Level 0 is
// the book root; a heading's parent is the closest earlier heading at
// level-1, resolvable with a level-indexed stack and no forward references.
type Heading struct {
	// Title is the English heading text.
	Title string `json:"title"`

	// HeTitle is the Hebrew heading text.
	HeTitle string `json:"he_title,omitempty"`

	// Level is the nesting depth (0 = book root).
	Level int `json:"level"`

	// LineIndex is the running line count at emission, i.e. the index of
	// the first line under this heading.
	LineIndex int `json:"line_index"`
}

// RefEntry maps a canonical reference string pair to a 1-based line index.
// Entries are transient input to the reference index; several entries may
// point at one line.
type RefEntry struct {
	// Ref is the English canonical reference.
	Ref string `json:"ref"`

	// HeRef is the Hebrew canonical reference.
	HeRef string `json:"he_ref"`

	// LineIndex is 1-based.
	LineIndex int `json:"line_index"`
}

// Result aggregates one document's flattening output.
type Result struct {
	Lines      []Line
	Headings   []Heading
	RefEntries []RefEntry

	// SkippedSubtrees counts schema/content shape disagreements. Each one
	// skipped a subtree without aborting the document.
	SkippedSubtrees int
}

// Flatten converts a schema and its content tree into the flat line, heading,
// and reference-entry sequences for one document. Blank branches contribute
// nothing; shape mismatches skip their subtree and are counted.
func Flatten(root schema.Node, content *schema.Content, titleEn, titleHe string) (*Result, error) {
	if root == nil {
		return nil, fmt.Errorf("nil schema for %q", titleEn)
	}
	if err := root.Validate(); err != nil {
		return nil, err
	}

	w := &walker{titleEn: titleEn, titleHe: titleHe}
	w.result.Headings = append(w.result.Headings, Heading{
		Title:     titleEn,
		HeTitle:   titleHe,
		Level:     0,
		LineIndex: 0,
	})
	w.walkNode(root, content, 1, titleEn, titleHe)
	return &w.result, nil
}

type walker struct {
	titleEn string
	titleHe string
	result  Result
}

// walkNode dispatches on the schema node variant. enBase and heBase are the
// running reference prefixes, e.g. "Tur, Orach Chayim".
func (w *walker) walkNode(node schema.Node, content *schema.Content, level int, enBase, heBase string) {
	switch n := node.(type) {
	case *schema.ContainerNode:
		w.walkContainer(n, content, level, enBase, heBase)
	case *schema.LeafNode:
		w.walkLeaf(n, content, level, 0, enBase, heBase, "", "")
	}
}

// walkContainer visits each declared child in order. Untitled children are
// structurally transparent: no heading, no level increment.
func (w *walker) walkContainer(node *schema.ContainerNode, content *schema.Content, level int, enBase, heBase string) {
	for _, child := range node.Children {
		childContent := w.locate(content, child)
		if childContent.IsEmpty() {
			continue
		}

		title := child.NodeTitle()
		if title == "" || child.NodeKey() == "default" {
			w.walkNode(child, childContent, level, enBase, heBase)
			continue
		}

		w.result.Headings = append(w.result.Headings, Heading{
			Title:     title,
			HeTitle:   child.NodeHeTitle(),
			Level:     level,
			LineIndex: len(w.result.Lines),
		})

		childEn := enBase + ", " + title
		childHe := heBase
		if he := child.NodeHeTitle(); he != "" {
			childHe = heBase + ", " + he
		}
		w.walkNode(child, childContent, level+1, childEn, childHe)
	}
}

// locate finds the content value matching a schema child. Container content
// is keyed by node key, falling back to English then Hebrew title. A leaf at
// document root takes the whole content tree.
func (w *walker) locate(content *schema.Content, child schema.Node) *schema.Content {
	if content == nil {
		return nil
	}
	if content.Fields != nil {
		return content.Field(child.NodeKey(), child.NodeTitle(), child.NodeHeTitle())
	}
	// Content is already positional; only a sole default child can claim it.
	if child.NodeKey() == "default" || child.NodeTitle() == "" {
		return content
	}
	return nil
}

// walkLeaf descends the nested arrays of a leaf node. depthLevel is the
// 0-based level within the leaf; enRun/heRun carry the colon-joined address
// components accumulated so far.
func (w *walker) walkLeaf(leaf *schema.LeafNode, content *schema.Content, level, depthLevel int, enBase, heBase, enRun, heRun string) {
	if content == nil || content.IsEmpty() {
		return
	}

	if depthLevel == leaf.Depth-1 {
		w.emitTerminal(leaf, content, depthLevel, enBase, heBase, enRun, heRun)
		return
	}

	if content.IsText() {
		// Deeper structure declared than present.
		w.result.SkippedSubtrees++
		return
	}

	sectionName := leaf.SectionNames[depthLevel]
	referenceable := leaf.LevelReferenceable(depthLevel)
	addr := leaf.AddressTypes[depthLevel]

	for i, item := range content.Items {
		if item.IsEmpty() {
			continue
		}

		enLabel, heLabel := addressLabels(addr, i+1)

		childLevel := level
		if referenceable && sectionName != "" {
			w.result.Headings = append(w.result.Headings, Heading{
				Title:     sectionName + " " + enLabel,
				HeTitle:   heLabel,
				Level:     level,
				LineIndex: len(w.result.Lines),
			})
			childLevel = level + 1
		}

		w.walkLeaf(leaf, item, childLevel, depthLevel+1, enBase, heBase,
			appendComponent(enRun, enLabel), appendComponent(heRun, heLabel))
	}
}

// emitTerminal turns each non-blank string at the innermost level into one
// line with its canonical references.
func (w *walker) emitTerminal(leaf *schema.LeafNode, content *schema.Content, depthLevel int, enBase, heBase, enRun, heRun string) {
	if content.IsText() {
		// A depth-1 leaf whose content is a bare string still yields one line.
		if leaf.Depth == 1 {
			w.emitLine(strings.TrimSpace(content.Text), enBase, heBase, enRun, heRun)
			return
		}
		w.result.SkippedSubtrees++
		return
	}

	addr := leaf.AddressTypes[depthLevel]
	referenceable := leaf.LevelReferenceable(depthLevel)
	prefixInline := referenceable && len(content.Items) > 1 && addr != schema.AddressInteger

	for i, item := range content.Items {
		if item == nil {
			continue
		}
		if !item.IsText() {
			if !item.IsEmpty() {
				w.result.SkippedSubtrees++
			}
			continue
		}
		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}

		enLabel, heLabel := addressLabels(addr, i+1)
		if prefixInline {
			text = "(" + hebrew.Gematria(i+1) + ") " + text
		}

		w.emitLine(text, enBase, heBase, appendComponent(enRun, enLabel), appendComponent(heRun, heLabel))
	}
}

// emitLine appends a line and its reference entry. The entry's 1-based line
// index equals the running line count after emission.
func (w *walker) emitLine(text, enBase, heBase, enRun, heRun string) {
	ref := enBase
	if enRun != "" {
		ref = enBase + " " + enRun
	}
	heRef := heBase
	if heRun != "" {
		heRef = heBase + " " + heRun
	}

	w.result.Lines = append(w.result.Lines, Line{
		LineIndex: len(w.result.Lines),
		Content:   text,
		Ref:       ref,
		HeRef:     heRef,
	})
	w.result.RefEntries = append(w.result.RefEntries, RefEntry{
		Ref:       ref,
		HeRef:     heRef,
		LineIndex: len(w.result.Lines),
	})
}

// addressLabels renders the English and Hebrew address labels for a 1-based
// index under the given addressing scheme. Talmud levels use the daf
// page/side form in English refs and the amud form in Hebrew refs.
func addressLabels(addr schema.AddressType, index int) (string, string) {
	if addr == schema.AddressTalmudPage {
		return hebrew.DafExternal(index), hebrew.DafHebrew(index)
	}
	return strconv.Itoa(index), hebrew.GematriaPunctuated(index)
}

// appendComponent joins address components with ':' to build the running
// reference suffix, e.g. "2a" then "2a:4".
func appendComponent(run, component string) string {
	if run == "" {
		return component
	}
	return run + ":" + component
}
