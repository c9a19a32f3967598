// Package altstruct builds secondary table-of-contents overlays whose
// addressing is independent of the primary schema: explicit ref lists,
// skip-lists, and offsets, anchored into the corpus via the citation
// resolver.
package altstruct

import (
	"strconv"

	"github.com/otzarlib/otzar/core/citation"
	"github.com/otzarlib/otzar/core/hebrew"
	"github.com/otzarlib/otzar/core/refindex"
)

// Node is one entry of an alternate-structure definition.
type Node struct {
	// Title is the English display title (e.g., "Parashat Noach").
	Title string `json:"title,omitempty"`

	// HeTitle is the Hebrew display title.
	HeTitle string `json:"heTitle,omitempty"`

	// WholeRef is the optional whole-range anchor citation.
	WholeRef string `json:"wholeRef,omitempty"`

	// Refs is the ordered list of child citation strings.
	Refs []string `json:"refs,omitempty"`

	// AddressTypes gives the addressing scheme of the inline sub-level
	// (e.g., "Talmud", "Integer", "Siman").
	AddressTypes []string `json:"addressTypes,omitempty"`

	// Addresses optionally fixes a child's address by index, overriding
	// the offset walk. Zero means unset.
	Addresses []int `json:"addresses,omitempty"`

	// SkippedAddresses is the set of addresses absent from this node.
	SkippedAddresses []int `json:"skippedAddresses,omitempty"`

	// StartingAddress is the offset the address walk starts from.
	StartingAddress int `json:"startingAddress,omitempty"`

	// Nodes are the ordered nested child nodes.
	Nodes []*Node `json:"nodes,omitempty"`
}

// Structure is a named alternate TOC overlay for one book.
type Structure struct {
	// Key identifies the overlay (e.g., "Chapters", "Parasha").
	Key string `json:"key"`

	// Title is the English overlay title.
	Title string `json:"title,omitempty"`

	// HeTitle is the Hebrew overlay title.
	HeTitle string `json:"heTitle,omitempty"`

	// Nodes are the overlay's root nodes.
	Nodes []*Node `json:"nodes"`
}

// Entry is an anchored alternate-TOC node. Every persisted entry has a
// usable jump target.
type Entry struct {
	// Title is the English display title.
	Title string `json:"title"`

	// HeTitle is the Hebrew display title.
	HeTitle string `json:"he_title,omitempty"`

	// Position is the anchor this entry jumps to.
	Position refindex.Position `json:"position"`

	// Address is the computed address value for inline children, 0 for
	// grouping containers.
	Address int `json:"address,omitempty"`

	// Children are the anchored child entries.
	Children []*Entry `json:"children,omitempty"`
}

// BuildOptions carries the book context that shapes overlay construction.
type BuildOptions struct {
	// Aliases are the book's title aliases for citation resolution.
	Aliases []string

	// Categories is the book's category path. Paginated tractates and
	// Siman-organized codices suppress the inline-ref sub-level,
	// materializing only the top grouping.
	Categories []string
}

// Build anchors an alternate structure against the index. Nodes whose anchor
// citations all fail to resolve are dropped; a grouping container additionally
// needs at least one resolvable descendant. Containers that anchor none of
// their own citations inherit the first resolvable descendant's anchor, so a
// dangling container is never returned.
func Build(structure *Structure, idx *refindex.Index, opts BuildOptions) []*Entry {
	if structure == nil {
		return nil
	}

	suppress := suppressInline(opts.Categories)
	var entries []*Entry
	for _, node := range structure.Nodes {
		if entry := buildNode(node, idx, opts, suppress); entry != nil {
			entries = append(entries, entry)
		}
	}
	return entries
}

// buildNode anchors one node, returning nil when the node must be dropped.
func buildNode(node *Node, idx *refindex.Index, opts BuildOptions, suppress bool) *Entry {
	entry := &Entry{
		Title:   node.Title,
		HeTitle: node.HeTitle,
	}

	anchored := false
	if node.WholeRef != "" {
		if pos, ok := resolveRef(node.WholeRef, idx, opts.Aliases); ok {
			entry.Position = pos
			anchored = true
		}
	}
	if !anchored {
		for _, ref := range node.Refs {
			if pos, ok := resolveRef(ref, idx, opts.Aliases); ok {
				entry.Position = pos
				anchored = true
				break
			}
		}
	}

	if len(node.Nodes) > 0 {
		for _, child := range node.Nodes {
			if built := buildNode(child, idx, opts, suppress); built != nil {
				entry.Children = append(entry.Children, built)
			}
		}
	} else if !suppress {
		entry.Children = buildInline(node, idx, opts)
	}

	// A node with no anchor of its own and no resolvable descendants is
	// dropped entirely: never persist a dangling container.
	if !anchored && len(entry.Children) == 0 {
		return nil
	}

	// Post-order repair: inherit the first resolvable descendant's anchor.
	if !anchored {
		entry.Position = entry.Children[0].Position
	}

	return entry
}

// buildInline materializes the inline child level from a node's ref list,
// labeling children by their computed address values.
func buildInline(node *Node, idx *refindex.Index, opts BuildOptions) []*Entry {
	if len(node.Refs) < 2 {
		// A single ref is the node's own anchor, not a sub-level.
		return nil
	}

	addresses := ComputeAddresses(len(node.Refs), node.Addresses, node.SkippedAddresses, node.StartingAddress)
	addrType := ""
	if len(node.AddressTypes) > 0 {
		addrType = node.AddressTypes[0]
	}

	var children []*Entry
	for i, ref := range node.Refs {
		pos, ok := resolveRef(ref, idx, opts.Aliases)
		if !ok {
			continue
		}
		title, heTitle := addressTitle(addrType, addresses[i])
		children = append(children, &Entry{
			Title:    title,
			HeTitle:  heTitle,
			Position: pos,
			Address:  addresses[i],
		})
	}
	return children
}

// ComputeAddresses assigns an address to each of n children: the explicit
// per-index address when present, else a stateful walk from the starting
// offset that skips addresses in the skip-set.
func ComputeAddresses(n int, explicit []int, skipped []int, offset int) []int {
	skip := make(map[int]bool, len(skipped))
	for _, s := range skipped {
		skip[s] = true
	}

	addresses := make([]int, n)
	next := offset
	for i := 0; i < n; i++ {
		if i < len(explicit) && explicit[i] != 0 {
			addresses[i] = explicit[i]
			next = explicit[i]
			continue
		}
		next++
		for skip[next] {
			next++
		}
		addresses[i] = next
	}
	return addresses
}

// resolveRef parses and resolves one citation string. Chapter fallbacks stay
// enabled; daf citations suppress them on their own.
func resolveRef(raw string, idx *refindex.Index, aliases []string) (refindex.Position, bool) {
	return citation.Resolve(citation.Parse(raw), idx, aliases, citation.ResolveOptions{})
}

// addressTitle renders a child's display titles from its address value.
func addressTitle(addrType string, address int) (string, string) {
	if addrType == "Talmud" {
		return hebrew.DafExternal(address), hebrew.DafHebrew(address)
	}
	return strconv.Itoa(address), hebrew.GematriaPunctuated(address)
}

// suppressInline reports whether the book's categories call for top-grouping
// only. Paginated tractates and Siman-organized codices carry per-page and
// per-Siman primary structure already; the inline sub-level would duplicate it.
func suppressInline(categories []string) bool {
	for _, c := range categories {
		switch c {
		case "Talmud", "Halakhah":
			return true
		}
	}
	return false
}
