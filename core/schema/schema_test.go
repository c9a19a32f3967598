package schema

import (
	"encoding/json"
	"testing"
)

func TestParseNodeLeaf(t *testing.T) {
	data := []byte(`{
		"nodeType": "leaf",
		"key": "default",
		"depth": 2,
		"sectionNames": ["Chapter", "Verse"],
		"addressTypes": ["Chapter", "Verse"]
	}`)

	node, err := ParseNode(data)
	if err != nil {
		t.Fatalf("ParseNode failed: %v", err)
	}

	leaf, ok := node.(*LeafNode)
	if !ok {
		t.Fatalf("expected *LeafNode, got %T", node)
	}
	if leaf.Depth != 2 {
		t.Errorf("Depth = %d, want 2", leaf.Depth)
	}
	if leaf.SectionNames[0] != "Chapter" || leaf.SectionNames[1] != "Verse" {
		t.Errorf("SectionNames = %v", leaf.SectionNames)
	}
	if err := leaf.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestParseNodeContainer(t *testing.T) {
	data := []byte(`{
		"nodeType": "container",
		"key": "root",
		"title": "Tur",
		"heTitle": "טור",
		"nodes": [
			{"nodeType": "leaf", "key": "Introduction", "title": "Introduction",
			 "depth": 1, "sectionNames": ["Paragraph"], "addressTypes": ["Integer"]},
			{"nodeType": "leaf", "key": "default",
			 "depth": 2, "sectionNames": ["Siman", "Seif"], "addressTypes": ["Section", "Paragraph"]}
		]
	}`)

	node, err := ParseNode(data)
	if err != nil {
		t.Fatalf("ParseNode failed: %v", err)
	}

	container, ok := node.(*ContainerNode)
	if !ok {
		t.Fatalf("expected *ContainerNode, got %T", node)
	}
	if len(container.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(container.Children))
	}
	if container.Children[0].NodeTitle() != "Introduction" {
		t.Errorf("first child title = %q", container.Children[0].NodeTitle())
	}
	if container.Children[1].NodeTitle() != "" {
		t.Errorf("default child should be untitled, got %q", container.Children[1].NodeTitle())
	}
	if err := container.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestParseNodeInferredVariant(t *testing.T) {
	// No explicit nodeType: depth implies leaf.
	node, err := ParseNode([]byte(`{"key": "default", "depth": 1, "sectionNames": ["Daf"], "addressTypes": ["Talmud"]}`))
	if err != nil {
		t.Fatalf("ParseNode failed: %v", err)
	}
	if _, ok := node.(*LeafNode); !ok {
		t.Errorf("expected leaf for node with depth, got %T", node)
	}
}

func TestValidateRejectsMismatchedLengths(t *testing.T) {
	leaf := &LeafNode{
		Key:          "default",
		Depth:        2,
		SectionNames: []string{"Chapter"},
		AddressTypes: []AddressType{AddressChapter, AddressVerse},
	}
	if err := leaf.Validate(); err == nil {
		t.Error("expected validation error for sectionNames length != depth")
	}
}

func TestValidateRejectsDuplicateKeys(t *testing.T) {
	container := &ContainerNode{
		Key: "root",
		Children: []Node{
			&LeafNode{Key: "a", Depth: 1, SectionNames: []string{"Paragraph"}, AddressTypes: []AddressType{AddressInteger}},
			&LeafNode{Key: "a", Depth: 1, SectionNames: []string{"Paragraph"}, AddressTypes: []AddressType{AddressInteger}},
		},
	}
	if err := container.Validate(); err == nil {
		t.Error("expected validation error for duplicate child keys")
	}
}

func TestLevelReferenceableDefaults(t *testing.T) {
	leaf := &LeafNode{Depth: 2}
	if !leaf.LevelReferenceable(0) || !leaf.LevelReferenceable(1) {
		t.Error("levels should default to referenceable")
	}

	leaf.Referenceable = []bool{true, false}
	if leaf.LevelReferenceable(1) {
		t.Error("level 1 should not be referenceable")
	}
}

func TestAddressTypeValidity(t *testing.T) {
	valid := []AddressType{AddressChapter, AddressVerse, AddressTalmudPage, AddressInteger, AddressSection, AddressParagraph}
	for _, at := range valid {
		if !at.IsValid() {
			t.Errorf("%q should be valid", at)
		}
	}
	if AddressType("Folio").IsValid() {
		t.Error("unknown address type should be invalid")
	}
}

func TestContentUnmarshalShapes(t *testing.T) {
	var c Content
	data := []byte(`{"Introduction": [["intro text"]], "default": [["a", "b"], ["c"]]}`)
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	intro := c.Field("Introduction")
	if intro == nil {
		t.Fatal("Introduction field missing")
	}
	def := c.Field("default")
	if len(def.Items) != 2 {
		t.Fatalf("default items = %d, want 2", len(def.Items))
	}
	if got := def.Items[0].Items[1].Text; got != "b" {
		t.Errorf("default[0][1] = %q, want %q", got, "b")
	}
}

func TestContentTolerance(t *testing.T) {
	var c Content
	data := []byte(`[null, "x", 42, ["y"]]`)
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(c.Items) != 4 {
		t.Fatalf("items = %d, want 4", len(c.Items))
	}
	if !c.Items[0].IsEmpty() {
		t.Error("null entry should be an absent branch")
	}
	if c.Items[1].Text != "x" || !c.Items[1].IsText() {
		t.Error("string entry should be terminal text")
	}
	if !c.Items[2].IsEmpty() {
		t.Error("numeric entry should degrade to absent branch")
	}
}

func TestContentIsEmpty(t *testing.T) {
	tests := []struct {
		name    string
		content *Content
		want    bool
	}{
		{"nil", nil, true},
		{"blank text", TextContent("   "), true},
		{"non-blank text", TextContent("a"), false},
		{"empty array", ArrayContent(), true},
		{"array of blanks", ArrayContent(TextContent(""), TextContent(" ")), true},
		{"array with text", ArrayContent(TextContent(""), TextContent("x")), false},
		{"nested blank", ArrayContent(ArrayContent(TextContent(""))), true},
	}

	for _, tt := range tests {
		if got := tt.content.IsEmpty(); got != tt.want {
			t.Errorf("%s: IsEmpty() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestContentFieldByTitle(t *testing.T) {
	c := ObjectContent(map[string]*Content{
		"הקדמה": TextContent("intro"),
	})
	if got := c.Field("Introduction", "הקדמה"); got == nil || got.Text != "intro" {
		t.Error("Field should fall back to later keys")
	}
}
