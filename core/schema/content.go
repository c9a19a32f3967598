package schema

import (
	"encoding/json"
	"strings"
)

// Content is the runtime tree holding a document's text. Its shape mirrors
// the schema: containers are objects keyed by child key or title, leaves are
// nested arrays whose terminal elements are strings. Exactly one of Fields,
// Items, or Text is populated; an entirely zero Content is an absent branch.
//
// Content decoding is deliberately tolerant: missing keys, null entries, and
// non-string terminals degrade to absent branches rather than errors, since
// corpus files routinely carry placeholder holes.
type Content struct {
	// Fields holds named child content for container nodes.
	Fields map[string]*Content

	// Items holds ordered child content for array levels.
	Items []*Content

	// Text holds terminal string content.
	Text string

	// isText distinguishes an empty terminal string from an absent branch.
	isText bool
}

// UnmarshalJSON decodes any of the three content shapes.
func (c *Content) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	switch trimmed[0] {
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return err
		}
		c.Fields = make(map[string]*Content, len(fields))
		for key, raw := range fields {
			child := &Content{}
			if err := child.UnmarshalJSON(raw); err != nil {
				return err
			}
			c.Fields[key] = child
		}
		return nil

	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		c.Items = make([]*Content, len(items))
		for i, raw := range items {
			child := &Content{}
			if err := child.UnmarshalJSON(raw); err != nil {
				return err
			}
			c.Items[i] = child
		}
		return nil

	case '"':
		if err := json.Unmarshal(data, &c.Text); err != nil {
			return err
		}
		c.isText = true
		return nil

	default:
		// Numbers, booleans: tolerated as absent content.
		return nil
	}
}

// TextContent constructs a terminal text node.
func TextContent(s string) *Content {
	return &Content{Text: s, isText: true}
}

// ArrayContent constructs an array node from children.
func ArrayContent(items ...*Content) *Content {
	return &Content{Items: items}
}

// ObjectContent constructs a container node from named children.
func ObjectContent(fields map[string]*Content) *Content {
	return &Content{Fields: fields}
}

// IsText reports whether this node is a terminal string.
func (c *Content) IsText() bool {
	return c != nil && c.isText
}

// Field returns the child content under any of the given keys, nil if none
// is present. Container children are located by key first, then by title.
func (c *Content) Field(keys ...string) *Content {
	if c == nil || c.Fields == nil {
		return nil
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if child, ok := c.Fields[key]; ok {
			return child
		}
	}
	return nil
}

// IsEmpty reports whether the branch contains no non-blank text anywhere.
// Blank branches are skipped entirely during flattening.
func (c *Content) IsEmpty() bool {
	if c == nil {
		return true
	}
	if c.isText {
		return strings.TrimSpace(c.Text) == ""
	}
	for _, item := range c.Items {
		if !item.IsEmpty() {
			return false
		}
	}
	for _, child := range c.Fields {
		if !child.IsEmpty() {
			return false
		}
	}
	return true
}
