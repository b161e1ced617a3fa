package markdown

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/docfold/docfold/core/errors"
	"github.com/docfold/docfold/core/ir"
	"github.com/docfold/docfold/core/std"
)

func hasCategory(warnings []ir.Warning, cat ir.Category) bool {
	for _, w := range warnings {
		if w.Category == cat {
			return true
		}
	}
	return false
}

func mustParse(t *testing.T, input string, opts ir.ParseOptions) *ir.Result[*ir.Document] {
	t.Helper()
	res, err := Parser{}.Parse([]byte(input), opts)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", input, err)
	}
	return res
}

func TestParseHello(t *testing.T) {
	res := mustParse(t, "# Hello\n\nworld\n", ir.ParseOptions{})
	doc := res.Value

	want := std.Doc(
		std.Heading(1, ir.Text("Hello")),
		std.Para(ir.Text("world")),
	)
	if !doc.Equal(want) {
		t.Errorf("parsed document does not match expected tree")
	}
	if len(res.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", res.Warnings)
	}

	blocks := doc.Content.Children
	if blocks[0].Span == nil || blocks[0].Span.Start != 0 || blocks[0].Span.End != 7 {
		t.Errorf("heading span = %v, want 0..7", blocks[0].Span)
	}
	if blocks[1].Span == nil || blocks[1].Span.Start != 9 {
		t.Errorf("paragraph span = %v, want start 9", blocks[1].Span)
	}
}

func TestRoundtrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"atx heading", "# Hello\n\nworld\n"},
		{"setext heading", "Title\n=====\n\npara\n"},
		{"setext h2", "Sub\n---\n\npara\n"},
		{"backtick fence", "```go\nfmt.Println()\n```\n"},
		{"tilde fence", "~~~go\ncode\n~~~\n"},
		{"dash bullets", "- one\n- two\n"},
		{"star bullets", "* one\n* two\n"},
		{"ordered list", "1. a\n2. b\n"},
		{"ordered offset", "3. a\n4. b\n"},
		{"star emphasis", "*hi* there\n"},
		{"underscore emphasis", "_hi_ there\n"},
		{"strong", "**bold** text\n"},
		{"inline code", "call `f` now\n"},
		{"link", "see [go](https://go.dev)\n"},
		{"link title", "[go](https://go.dev \"Go\")\n"},
		{"image", "![alt](img.png)\n"},
		{"blockquote", "> hi\n"},
		{"rule", "---\n"},
		{"soft break", "a\nb\n"},
		{"hard break", "a  \nb\n"},
		{"front matter", "---\ntitle: Hi\n---\n\nbody\n"},
	}

	popts := ir.ParseOptions{PreserveSourceInfo: true}
	eopts := ir.EmitOptions{UseSourceInfo: true}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustParse(t, tt.input, popts)
			out, err := Emitter{}.Emit(res.Value, eopts)
			if err != nil {
				t.Fatalf("Emit error: %v", err)
			}
			if got := string(out.Value); got != tt.input {
				t.Errorf("roundtrip = %q, want %q", got, tt.input)
			}
		})
	}
}

// Reparsing emitted output must yield a structurally equal document even
// when source hints are not used.
func TestReparse(t *testing.T) {
	input := "# Title\n\nSome *styled* text with [a link](https://example.com).\n\n" +
		"```sh\nls -l\n```\n\n- first\n- second\n\n> quoted\n"
	first := mustParse(t, input, ir.ParseOptions{})

	out, err := Emitter{}.Emit(first.Value, ir.EmitOptions{})
	if err != nil {
		t.Fatalf("Emit error: %v", err)
	}
	second := mustParse(t, string(out.Value), ir.ParseOptions{})
	if !first.Value.Equal(second.Value) {
		t.Errorf("reparsed document differs from original\nemitted:\n%s", out.Value)
	}
}

func TestParseBlocks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *ir.Document
	}{
		{
			name:  "heading levels",
			input: "### Deep\n",
			want:  std.Doc(std.Heading(3, ir.Text("Deep"))),
		},
		{
			name:  "fence with language",
			input: "```python\nprint(1)\n```\n",
			want:  std.Doc(std.CodeBlock("python", "print(1)\n")),
		},
		{
			name:  "blockquote with two paragraphs",
			input: "> one\n>\n> two\n",
			want: std.Doc(std.Blockquote(
				std.Para(ir.Text("one")),
				std.Para(ir.Text("two")),
			)),
		},
		{
			name:  "list item continuation",
			input: "- first line\n  still first\n- second\n",
			want: std.Doc(std.BulletList(
				std.Item(std.Para(ir.Text("first line"), std.SoftBreak(), ir.Text("still first"))),
				std.Item(std.Para(ir.Text("second"))),
			)),
		},
		{
			name:  "rule between paragraphs",
			input: "a\n\n***\n\nb\n",
			want: std.Doc(
				std.Para(ir.Text("a")),
				std.HorizontalRule(),
				std.Para(ir.Text("b")),
			),
		},
		{
			name:  "rule marker variants",
			input: "---\n\n___\n\n* * *\n\n- - -\n",
			want: std.Doc(
				std.HorizontalRule(),
				std.HorizontalRule(),
				std.HorizontalRule(),
				std.HorizontalRule(),
			),
		},
		{
			name:  "mixed rule markers stay a paragraph",
			input: "*-*\n",
			want:  std.Doc(std.Para(std.Emphasis(ir.Text("-")))),
		},
		{
			name:  "heading interrupts paragraph",
			input: "text\n# Head\n",
			want: std.Doc(
				std.Para(ir.Text("text")),
				std.Heading(1, ir.Text("Head")),
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustParse(t, tt.input, ir.ParseOptions{})
			if !res.Value.Equal(tt.want) {
				t.Errorf("parsed tree mismatch for %q", tt.input)
			}
		})
	}
}

func TestParseInlines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []*ir.Node
	}{
		{
			name:  "nested emphasis in strong",
			input: "**a *b* c**",
			want:  []*ir.Node{std.Strong(ir.Text("a "), std.Emphasis(ir.Text("b")), ir.Text(" c"))},
		},
		{
			name:  "escaped star stays literal",
			input: `\*not em\*`,
			want:  []*ir.Node{ir.Text("*not em*")},
		},
		{
			name:  "unclosed emphasis stays literal",
			input: "a * b",
			want:  []*ir.Node{ir.Text("a * b")},
		},
		{
			name:  "code protects markup",
			input: "`*raw*`",
			want:  []*ir.Node{std.Code("*raw*")},
		},
		{
			name:  "double backtick code",
			input: "`` a`b ``",
			want:  []*ir.Node{std.Code("a`b")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustParse(t, tt.input+"\n", ir.ParseOptions{})
			want := std.Doc(std.Para(tt.want...))
			if !res.Value.Equal(want) {
				t.Errorf("parsed tree mismatch for %q", tt.input)
			}
		})
	}
}

func TestFrontMatter(t *testing.T) {
	input := "---\ntitle: Report\ncount: 3\ndraft: true\ntags:\n  - a\n  - b\n---\n\nbody\n"
	res := mustParse(t, input, ir.ParseOptions{})
	meta := res.Value.Metadata

	if got := meta.GetString("title"); got != "Report" {
		t.Errorf("title = %q, want %q", got, "Report")
	}
	if got := meta.GetInt("count", 0); got != 3 {
		t.Errorf("count = %d, want 3", got)
	}
	if !meta.GetBool("draft") {
		t.Errorf("draft = false, want true")
	}
	tags, _ := meta.Get("tags")
	list, ok := tags.AsList()
	if !ok || len(list) != 2 {
		t.Fatalf("tags = %v, want list of 2", tags)
	}

	want := std.Doc(std.Para(ir.Text("body")))
	want.Metadata = res.Value.Metadata
	if !res.Value.Equal(want) {
		t.Errorf("content after front matter mismatch")
	}
}

func TestFrontMatterInvalid(t *testing.T) {
	input := "---\n: not: [valid\n---\nbody\n"
	res := mustParse(t, input, ir.ParseOptions{})
	if !hasCategory(res.Warnings, ir.AmbiguousInput) {
		t.Errorf("warnings = %v, want ambiguous_input", res.Warnings)
	}
	if res.Value.Metadata.Len() != 0 {
		t.Errorf("metadata = %v, want empty", res.Value.Metadata)
	}
}

func TestUnterminatedFence(t *testing.T) {
	res := mustParse(t, "```\ncode", ir.ParseOptions{})
	if !hasCategory(res.Warnings, ir.AmbiguousInput) {
		t.Errorf("warnings = %v, want ambiguous_input", res.Warnings)
	}
	want := std.Doc(std.CodeBlock("", "code\n"))
	if !res.Value.Equal(want) {
		t.Errorf("unterminated fence tree mismatch")
	}
}

func TestParseInvalidUTF8(t *testing.T) {
	_, err := Parser{}.Parse([]byte{0xff, 0xfe, 0xfd}, ir.ParseOptions{})
	if !errors.Is(err, apperrors.ErrEncoding) {
		t.Fatalf("error = %v, want ErrEncoding", err)
	}
	var perr *apperrors.ParseError
	if !errors.As(err, &perr) || perr.Format != FormatName {
		t.Errorf("error = %v, want *ParseError for %s", err, FormatName)
	}
}

func TestSourceInfoOptional(t *testing.T) {
	res := mustParse(t, "# Hi\n", ir.ParseOptions{})
	if res.Value.Source != nil {
		t.Errorf("Source = %v, want nil without PreserveSourceInfo", res.Value.Source)
	}

	res = mustParse(t, "# Hi\n", ir.ParseOptions{PreserveSourceInfo: true})
	src := res.Value.Source
	if src == nil || src.Format != FormatName {
		t.Fatalf("Source = %v, want markdown source info", src)
	}
	if got := src.Metadata.GetString("heading_style"); got != "atx" {
		t.Errorf("heading_style hint = %q, want atx", got)
	}
}

func TestEmbedResources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pixel.png")
	payload := []byte{0x89, 'P', 'N', 'G'}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatal(err)
	}

	res := mustParse(t, "![dot]("+path+")\n", ir.ParseOptions{EmbedResources: true})
	doc := res.Value
	if doc.Resources.Len() != 1 {
		t.Fatalf("resources = %d, want 1", doc.Resources.Len())
	}

	img := ir.Find(doc.Content, func(n *ir.Node) bool { return n.Kind == std.KindImage })
	if img == nil {
		t.Fatal("no image node")
	}
	id := img.Props.GetString(std.PropResourceID)
	r, ok := doc.Resources.Get(id)
	if !ok {
		t.Fatalf("resource %q not in map", id)
	}
	if string(r.Data) != string(payload) || r.URI != path {
		t.Errorf("resource = %+v, want embedded file contents", r)
	}
	if r.MediaType != "image/png" {
		t.Errorf("media type = %q, want image/png", r.MediaType)
	}
}

func TestEmbedMissingResource(t *testing.T) {
	res := mustParse(t, "![x](no-such-file.png)\n", ir.ParseOptions{EmbedResources: true})
	if !hasCategory(res.Warnings, ir.ContentLoss) {
		t.Errorf("warnings = %v, want content_loss", res.Warnings)
	}
	if res.Value.Resources.Len() != 0 {
		t.Errorf("resources = %d, want 0", res.Value.Resources.Len())
	}
}

func TestEmitWarnings(t *testing.T) {
	tests := []struct {
		name string
		doc  *ir.Document
		want ir.Category
		out  string
	}{
		{
			name: "style property lost",
			doc: std.Doc(std.Para(
				ir.Text("red").WithProp(std.StyleColor, ir.String("red")),
			)),
			want: ir.StyleLoss,
			out:  "red\n",
		},
		{
			name: "foreign raw block dropped",
			doc:  std.Doc(std.RawBlock("html", "<hr>")),
			want: ir.ContentLoss,
			out:  "",
		},
		{
			name: "underline flattened",
			doc:  std.Doc(std.Para(ir.NewNode(std.KindUnderline).WithChild(ir.Text("u")))),
			want: ir.StyleLoss,
			out:  "u\n",
		},
		{
			name: "unknown block dropped",
			doc:  std.Doc(ir.NewNode("sidebar")),
			want: ir.ContentLoss,
			out:  "",
		},
		{
			name: "unknown block with children kept as paragraph",
			doc:  std.Doc(ir.NewNode("sidebar").WithChild(ir.Text("aside"))),
			want: ir.StructureLoss,
			out:  "aside\n",
		},
		{
			name: "unknown block with property content kept as paragraph",
			doc:  std.Doc(ir.NewNode("sidebar").WithProp(std.PropContent, ir.String("aside"))),
			want: ir.StructureLoss,
			out:  "aside\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Emitter{}.Emit(tt.doc, ir.EmitOptions{})
			if err != nil {
				t.Fatalf("Emit error: %v", err)
			}
			if !hasCategory(res.Warnings, tt.want) {
				t.Errorf("warnings = %v, want %s", res.Warnings, tt.want)
			}
			if string(res.Value) != tt.out {
				t.Errorf("output = %q, want %q", res.Value, tt.out)
			}
		})
	}
}

func TestEmitTable(t *testing.T) {
	doc := std.Doc(ir.NewNode(std.KindTable).WithChildren(
		ir.NewNode(std.KindTableHeader).WithChildren(
			ir.NewNode(std.KindTableCell).WithChild(ir.Text("Name")),
			ir.NewNode(std.KindTableCell).WithChild(ir.Text("Age")),
		),
		ir.NewNode(std.KindTableRow).WithChildren(
			ir.NewNode(std.KindTableCell).WithChild(ir.Text("Ada")),
			ir.NewNode(std.KindTableCell).WithChild(ir.Text("36")),
		),
	))

	res, err := Emitter{}.Emit(doc, ir.EmitOptions{})
	if err != nil {
		t.Fatalf("Emit error: %v", err)
	}
	want := "| Name | Age |\n| --- | --- |\n| Ada | 36 |\n"
	if string(res.Value) != want {
		t.Errorf("table = %q, want %q", res.Value, want)
	}
}

// Parsing must never panic, whatever the input.
func TestParseNeverPanics(t *testing.T) {
	inputs := []string{
		"", "\n", "#", "# ", "```", "~~~x", ">", "> >", "---", "-", "1.",
		"[", "![", "[](", "**", "``", "\\", "a\rb", "- \n- ", "=\n=",
		"---\n---\n", "[x](", "*_*_",
	}
	for _, input := range inputs {
		if _, err := (Parser{}).Parse([]byte(input), ir.ParseOptions{PreserveSourceInfo: true, EmbedResources: true}); err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", input, err)
		}
	}
}
