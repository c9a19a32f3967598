// Package schema provides the typed representation of a document's
// hierarchical structure and the runtime content tree that mirrors it.
//
// A document's shape is a tree of nodes: ContainerNode groups named child
// nodes (book parts, named sections), LeafNode describes nested arrays of
// text addressed by per-level section names. The two variants form a closed
// sum type; consumers switch exhaustively on the concrete type.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/otzarlib/otzar/core/errors"
)

// AddressType describes how a leaf level is addressed.
type AddressType string

// Address type constants.
const (
	AddressChapter    AddressType = "Chapter"
	AddressVerse      AddressType = "Verse"
	AddressTalmudPage AddressType = "Talmud"
	AddressInteger    AddressType = "Integer"
	AddressSection    AddressType = "Section"
	AddressParagraph  AddressType = "Paragraph"
)

// validAddressTypes is the set of valid address types.
var validAddressTypes = map[AddressType]bool{
	AddressChapter:    true,
	AddressVerse:      true,
	AddressTalmudPage: true,
	AddressInteger:    true,
	AddressSection:    true,
	AddressParagraph:  true,
}

// IsValid returns true if the address type is valid.
func (a AddressType) IsValid() bool {
	return validAddressTypes[a]
}

// Node is the closed set of schema node variants. The only implementations
// are ContainerNode and LeafNode.
type Node interface {
	// NodeKey returns the lookup key used to locate this node's content.
	NodeKey() string

	// NodeTitle returns the English title, empty for untitled nodes.
	NodeTitle() string

	// NodeHeTitle returns the Hebrew title, empty for untitled nodes.
	NodeHeTitle() string

	// Validate checks the node's structural invariants.
	Validate() error

	isNode()
}

// ContainerNode groups an ordered list of named child nodes.
type ContainerNode struct {
	// Key is the content lookup key (e.g., "Introduction", "default").
	Key string `json:"key"`

	// Title is the English title. An empty title marks a structurally
	// transparent node: no heading, no level increment.
	Title string `json:"title,omitempty"`

	// HeTitle is the Hebrew title.
	HeTitle string `json:"heTitle,omitempty"`

	// Children are the ordered child nodes.
	Children []Node `json:"-"`
}

func (c *ContainerNode) NodeKey() string     { return c.Key }
func (c *ContainerNode) NodeTitle() string   { return c.Title }
func (c *ContainerNode) NodeHeTitle() string { return c.HeTitle }
func (c *ContainerNode) isNode()             {}

// Validate checks that child keys are unique and recurses into children.
func (c *ContainerNode) Validate() error {
	seen := make(map[string]bool, len(c.Children))
	for _, child := range c.Children {
		key := child.NodeKey()
		if seen[key] {
			return errors.NewValidation("nodes", fmt.Sprintf("duplicate child key %q under %q", key, c.Key))
		}
		seen[key] = true
		if err := child.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// LeafNode describes nested arrays of text up to Depth levels deep.
type LeafNode struct {
	// Key is the content lookup key.
	Key string `json:"key"`

	// Title is the English title (empty for the default leaf of a book).
	Title string `json:"title,omitempty"`

	// HeTitle is the Hebrew title.
	HeTitle string `json:"heTitle,omitempty"`

	// Depth is the nesting depth of the content arrays.
	Depth int `json:"depth"`

	// SectionNames names each level, outermost first (e.g., ["Chapter", "Verse"]).
	SectionNames []string `json:"sectionNames"`

	// AddressTypes gives the addressing scheme per level.
	AddressTypes []AddressType `json:"addressTypes"`

	// Referenceable flags which levels participate in canonical references
	// and headings. Missing entries default to true.
	Referenceable []bool `json:"referenceable,omitempty"`
}

func (l *LeafNode) NodeKey() string     { return l.Key }
func (l *LeafNode) NodeTitle() string   { return l.Title }
func (l *LeafNode) NodeHeTitle() string { return l.HeTitle }
func (l *LeafNode) isNode()             {}

// Validate checks that the per-level lists match Depth.
func (l *LeafNode) Validate() error {
	if l.Depth < 1 {
		return errors.NewValidation("depth", fmt.Sprintf("leaf %q has depth %d", l.Key, l.Depth))
	}
	if len(l.SectionNames) != l.Depth {
		return errors.NewValidation("sectionNames",
			fmt.Sprintf("leaf %q has %d section names for depth %d", l.Key, len(l.SectionNames), l.Depth))
	}
	if len(l.AddressTypes) != l.Depth {
		return errors.NewValidation("addressTypes",
			fmt.Sprintf("leaf %q has %d address types for depth %d", l.Key, len(l.AddressTypes), l.Depth))
	}
	for _, at := range l.AddressTypes {
		if !at.IsValid() {
			return errors.NewValidation("addressTypes", fmt.Sprintf("leaf %q has unknown address type %q", l.Key, at))
		}
	}
	if len(l.Referenceable) != 0 && len(l.Referenceable) != l.Depth {
		return errors.NewValidation("referenceable",
			fmt.Sprintf("leaf %q has %d referenceable flags for depth %d", l.Key, len(l.Referenceable), l.Depth))
	}
	return nil
}

// LevelReferenceable reports whether the given 0-based level participates in
// references. Levels default to referenceable when no flags are declared.
func (l *LeafNode) LevelReferenceable(level int) bool {
	if len(l.Referenceable) == 0 {
		return true
	}
	if level < 0 || level >= len(l.Referenceable) {
		return false
	}
	return l.Referenceable[level]
}

// nodeEnvelope is the raw JSON shape of a schema node before the variant
// is known. NodeType discriminates: "container" or "leaf".
type nodeEnvelope struct {
	NodeType string `json:"nodeType"`

	Key     string `json:"key"`
	Title   string `json:"title"`
	HeTitle string `json:"heTitle"`

	// Container fields
	Nodes []json.RawMessage `json:"nodes"`

	// Leaf fields
	Depth         int           `json:"depth"`
	SectionNames  []string      `json:"sectionNames"`
	AddressTypes  []AddressType `json:"addressTypes"`
	Referenceable []bool        `json:"referenceable"`
}

// ParseNode decodes a schema node from JSON, recursively decoding container
// children. A node with no explicit nodeType is treated as a leaf when it
// declares a depth, otherwise as a container.
func ParseNode(data []byte) (Node, error) {
	var env nodeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(err, "decode schema node")
	}

	nodeType := env.NodeType
	if nodeType == "" {
		if env.Depth > 0 {
			nodeType = "leaf"
		} else {
			nodeType = "container"
		}
	}

	switch nodeType {
	case "container":
		node := &ContainerNode{
			Key:     env.Key,
			Title:   env.Title,
			HeTitle: env.HeTitle,
		}
		for _, raw := range env.Nodes {
			child, err := ParseNode(raw)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
		}
		return node, nil

	case "leaf":
		return &LeafNode{
			Key:           env.Key,
			Title:         env.Title,
			HeTitle:       env.HeTitle,
			Depth:         env.Depth,
			SectionNames:  env.SectionNames,
			AddressTypes:  env.AddressTypes,
			Referenceable: env.Referenceable,
		}, nil

	default:
		return nil, errors.NewValidation("nodeType", fmt.Sprintf("unknown node type %q", env.NodeType))
	}
}
