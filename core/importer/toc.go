package importer

import (
	"github.com/otzarlib/otzar/core/altstruct"
	"github.com/otzarlib/otzar/core/flatten"
)

// TocEntry is a persistable table-of-contents row. ParentIndex points into
// the same slice; -1 marks a root.
type TocEntry struct {
	Title       string `json:"title"`
	HeTitle     string `json:"he_title,omitempty"`
	Level       int    `json:"level"`
	LineIndex   int    `json:"line_index"`
	ParentIndex int    `json:"parent_index"`
	HasChildren bool   `json:"has_children"`
	IsLastChild bool   `json:"is_last_child"`
}

// BuildToc assembles the TOC rows from a document's headings. Every heading's
// parent was created earlier in traversal order, so parents resolve with a
// level-indexed stack in a single pass and no forward references.
func BuildToc(headings []flatten.Heading) []TocEntry {
	entries := make([]TocEntry, len(headings))

	// stack[level] holds the index of the most recent entry at that level.
	var stack []int
	for i, h := range headings {
		parent := -1
		if h.Level > 0 && h.Level-1 < len(stack) {
			parent = stack[h.Level-1]
		}

		entries[i] = TocEntry{
			Title:       h.Title,
			HeTitle:     h.HeTitle,
			Level:       h.Level,
			LineIndex:   h.LineIndex,
			ParentIndex: parent,
		}
		if parent >= 0 {
			entries[parent].HasChildren = true
		}

		if h.Level < len(stack) {
			stack = stack[:h.Level]
		}
		stack = append(stack, i)
	}

	markLastChildren(entries)
	return entries
}

// AltTocEntry is a persistable alternate-TOC row, flattened pre-order from
// the anchored overlay tree.
type AltTocEntry struct {
	StructureKey string `json:"structure_key"`
	Title        string `json:"title"`
	HeTitle      string `json:"he_title,omitempty"`
	Level        int    `json:"level"`
	LineID       int    `json:"line_id"`
	Address      int    `json:"address,omitempty"`
	ParentIndex  int    `json:"parent_index"`
	HasChildren  bool   `json:"has_children"`
	IsLastChild  bool   `json:"is_last_child"`
}

// FlattenAltToc serializes an anchored overlay into rows, appending to dst so
// one book's overlays share a slice.
func FlattenAltToc(dst []AltTocEntry, key string, entries []*altstruct.Entry) []AltTocEntry {
	start := len(dst)
	dst = appendAltEntries(dst, key, entries, 0, -1)
	markAltLastChildren(dst[start:])
	return dst
}

func appendAltEntries(dst []AltTocEntry, key string, entries []*altstruct.Entry, level, parent int) []AltTocEntry {
	for _, e := range entries {
		idx := len(dst)
		dst = append(dst, AltTocEntry{
			StructureKey: key,
			Title:        e.Title,
			HeTitle:      e.HeTitle,
			Level:        level,
			LineID:       e.Position.LineID,
			Address:      e.Address,
			ParentIndex:  parent,
			HasChildren:  len(e.Children) > 0,
		})
		if parent >= 0 {
			dst[parent].HasChildren = true
		}
		dst = appendAltEntries(dst, key, e.Children, level+1, idx)
	}
	return dst
}

// markLastChildren flags the final sibling under each parent.
func markLastChildren(entries []TocEntry) {
	last := make(map[int]int)
	for i, e := range entries {
		last[e.ParentIndex] = i
	}
	for _, i := range last {
		entries[i].IsLastChild = true
	}
}

func markAltLastChildren(entries []AltTocEntry) {
	last := make(map[int]int)
	for i := range entries {
		last[entries[i].ParentIndex] = i
	}
	for _, i := range last {
		entries[i].IsLastChild = true
	}
}
