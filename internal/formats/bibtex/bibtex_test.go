package bibtex

import (
	"errors"
	"testing"

	apperrors "github.com/docfold/docfold/core/errors"
	"github.com/docfold/docfold/core/ir"
	"github.com/docfold/docfold/core/std"
)

const sample = `@article{knuth1984,
  author = {Donald E. Knuth},
  title = {Literate Programming},
  journal = {The Computer Journal},
  year = 1984,
}

@book{pike2015,
  author = "Alan A. A. Donovan and Brian W. Kernighan",
  title = {The {Go} Programming Language},
  year = {2015},
}
`

func mustParse(t *testing.T, input string) *ir.Result[*ir.Document] {
	t.Helper()
	res, err := Parser{}.Parse([]byte(input), ir.ParseOptions{})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return res
}

func TestParse(t *testing.T) {
	res := mustParse(t, sample)
	doc := res.Value

	if len(doc.Content.Children) != 2 {
		t.Fatalf("entries = %d, want 2", len(doc.Content.Children))
	}

	article := doc.Content.Children[0]
	if article.Kind != KindEntry {
		t.Fatalf("kind = %q, want %q", article.Kind, KindEntry)
	}
	if got := article.Props.GetString(propType); got != "article" {
		t.Errorf("type = %q, want article", got)
	}
	if got := article.Props.GetString(std.PropID); got != "knuth1984" {
		t.Errorf("key = %q, want knuth1984", got)
	}
	if got := article.Props.GetString(fieldPrefix + "author"); got != "Donald E. Knuth" {
		t.Errorf("author = %q", got)
	}
	if got := article.Props.GetString(fieldPrefix + "year"); got != "1984" {
		t.Errorf("year = %q, want 1984", got)
	}

	book := doc.Content.Children[1]
	if got := book.Props.GetString(fieldPrefix + "author"); got != "Alan A. A. Donovan and Brian W. Kernighan" {
		t.Errorf("quoted author = %q", got)
	}
	if got := book.Props.GetString(fieldPrefix + "title"); got != "The {Go} Programming Language" {
		t.Errorf("nested braces lost: title = %q", got)
	}
}

func TestParseFoldsWhitespace(t *testing.T) {
	res := mustParse(t, "@misc{a,\n  note = {spread\n    over lines},\n}\n")
	entry := res.Value.Content.Children[0]
	if got := entry.Props.GetString(fieldPrefix + "note"); got != "spread over lines" {
		t.Errorf("note = %q, want folded whitespace", got)
	}
}

func TestParseDuplicateKey(t *testing.T) {
	res := mustParse(t, "@misc{a,\n}\n@misc{a,\n}\n")
	if len(res.Value.Content.Children) != 2 {
		t.Fatalf("entries = %d, want both kept", len(res.Value.Content.Children))
	}
	found := false
	for _, w := range res.Warnings {
		if w.Category == ir.AmbiguousInput {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want ambiguous_input for duplicate key", res.Warnings)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  error
	}{
		{"invalid utf8", []byte{0xff, 0xfe}, apperrors.ErrEncoding},
		{"unterminated entry", []byte("@article{key"), apperrors.ErrMalformedInput},
		{"garbage", []byte("= = ="), apperrors.ErrMalformedInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parser{}.Parse(tt.input, ir.ParseOptions{})
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEmit(t *testing.T) {
	doc := ir.NewDocument()
	doc.Content.Children = append(doc.Content.Children,
		ir.NewNode(KindEntry).
			WithProp(propType, ir.String("article")).
			WithProp(std.PropID, ir.String("k1")).
			WithProp(fieldPrefix+"title", ir.String("A Title")).
			WithProp(fieldPrefix+"year", ir.String("2001")))

	res, err := Emitter{}.Emit(doc, ir.EmitOptions{})
	if err != nil {
		t.Fatalf("Emit error: %v", err)
	}
	want := "@article{k1,\n  title = {A Title},\n  year = {2001},\n}\n"
	if got := string(res.Value); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestEmitDropsForeignNodes(t *testing.T) {
	doc := std.Doc(std.Para(ir.Text("prose")))
	res, err := Emitter{}.Emit(doc, ir.EmitOptions{})
	if err != nil {
		t.Fatalf("Emit error: %v", err)
	}
	if len(res.Value) != 0 {
		t.Errorf("output = %q, want empty", res.Value)
	}
	if len(res.Warnings) == 0 || res.Warnings[0].Category != ir.ContentLoss {
		t.Errorf("warnings = %v, want content_loss", res.Warnings)
	}
}

// Emitting and reparsing yields the same entries, field order included.
func TestReparse(t *testing.T) {
	first := mustParse(t, sample)
	out, err := Emitter{}.Emit(first.Value, ir.EmitOptions{})
	if err != nil {
		t.Fatalf("Emit error: %v", err)
	}
	second := mustParse(t, string(out.Value))
	if !first.Value.Equal(second.Value) {
		t.Errorf("reparsed bibliography differs\nemitted:\n%s", out.Value)
	}
}

// Hostile input may fail with a typed error but must never panic.
func TestParseNeverPanics(t *testing.T) {
	inputs := []string{
		"", "@", "@{", "@article", "@article{", "@article{,}", "@a{k", "}",
		"@a{k,f}", "@a{k,f=}", "@a{k,f={", "@a{k,f={{}", "@a{k,f=\"", "%",
		"@a{k,f=v,,}", "@a{k,f={a{b}c}", "@@", "@a{k,=v}", "@a{k}@b{k}",
	}
	for _, input := range inputs {
		res, err := (Parser{}).Parse([]byte(input), ir.ParseOptions{})
		if err == nil && res.Value == nil {
			t.Errorf("Parse(%q) returned neither document nor error", input)
		}
	}
}
