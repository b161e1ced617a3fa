package std

import (
	"testing"

	"github.com/docfold/docfold/core/ir"
)

func TestDocBuilder(t *testing.T) {
	doc := Doc(
		Heading(1, Text("Hello World")),
		Para(Text("This is "), Strong(Text("bold")), Text(" text.")),
		BulletList(
			Item(Para(Text("First item"))),
			Item(Para(Text("Second item"))),
		),
	)

	if doc.Content.Kind != KindDocument {
		t.Fatalf("root kind = %q, want %q", doc.Content.Kind, KindDocument)
	}
	if len(doc.Content.Children) != 3 {
		t.Fatalf("root children = %d, want 3", len(doc.Content.Children))
	}

	h := doc.Content.Children[0]
	if h.Kind != KindHeading || h.Props.GetInt(PropLevel, 0) != 1 {
		t.Errorf("heading = %q level %d", h.Kind, h.Props.GetInt(PropLevel, 0))
	}

	list := doc.Content.Children[2]
	if list.Props.GetBool(PropOrdered) {
		t.Error("bullet list should not be ordered")
	}
	if len(list.Children) != 2 || list.Children[0].Kind != KindListItem {
		t.Error("list items not built as expected")
	}
}

func TestInlineBuilders(t *testing.T) {
	link := Link("https://example.com", Text("site"))
	if link.Props.GetString(PropURL) != "https://example.com" {
		t.Error("link url missing")
	}

	img := Image("logo.png", "the logo")
	if img.Props.GetString(PropAlt) != "the logo" {
		t.Error("image alt missing")
	}
	if bare := Image("logo.png", ""); bare.Props.Contains(PropAlt) {
		t.Error("empty alt should be omitted")
	}

	cb := CodeBlock("go", "package main")
	if cb.Props.GetString(PropLanguage) != "go" || cb.Props.GetString(PropContent) != "package main" {
		t.Error("code block props missing")
	}
	if plain := CodeBlock("", "x"); plain.Props.Contains(PropLanguage) {
		t.Error("empty language should be omitted")
	}

	raw := RawBlock("html", "<hr>")
	if raw.Props.GetString(PropFormat) != "html" {
		t.Error("raw block format missing")
	}
}

func TestOrderedList(t *testing.T) {
	list := OrderedList(Item(Para(Text("one"))))
	if !list.Props.GetBool(PropOrdered) {
		t.Error("ordered list should carry ordered=true")
	}
}

func TestKindClassification(t *testing.T) {
	tests := []struct {
		kind   string
		block  bool
		inline bool
	}{
		{KindParagraph, true, false},
		{KindHeading, true, false},
		{KindText, false, true},
		{KindLink, false, true},
		{"latex:math", false, false},
		{"docx:comment", false, false},
	}
	for _, tt := range tests {
		if IsBlock(tt.kind) != tt.block {
			t.Errorf("IsBlock(%q) = %v, want %v", tt.kind, IsBlock(tt.kind), tt.block)
		}
		if IsInline(tt.kind) != tt.inline {
			t.Errorf("IsInline(%q) = %v, want %v", tt.kind, IsInline(tt.kind), tt.inline)
		}
	}
}

func TestBuiltTreesAreStructurallyComparable(t *testing.T) {
	a := Doc(Para(Text("hello")))
	b := Doc(Para(Text("hello")))
	if !a.Equal(b) {
		t.Error("independently built identical documents must compare equal")
	}

	c := Doc(Para(Text("hello")))
	c.Content.Children[0].Props.Set("docx:style", ir.String("BodyText"))
	if a.Equal(c) {
		t.Error("namespaced property must affect equality")
	}
}
