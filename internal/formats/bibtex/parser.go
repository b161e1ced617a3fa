package bibtex

import (
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	apperrors "github.com/docfold/docfold/core/errors"
	"github.com/docfold/docfold/core/ir"
	"github.com/docfold/docfold/core/std"
)

// Parser reads a BibTeX bibliography into the document IR.
type Parser struct{}

// bibGrammar is the participle grammar for a bibliography file.
//
//nolint:govet // participle grammar tags are not standard struct tags
type bibGrammar struct {
	Entries []*bibEntry `parser:"@@*"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type bibEntry struct {
	Pos    lexer.Position
	Type   string      `parser:"'@' @Ident '{'"`
	Key    string      `parser:"@(Ident | Number)"`
	Fields []*bibField `parser:"( ',' @@? )* '}'"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type bibField struct {
	Name  string `parser:"@Ident '='"`
	Value string `parser:"@(String | Braced | Number | Ident)"`
}

// bibLexer tokenizes BibTeX. Field values are lexed in their own state so
// that a braced value (with up to two nesting levels) is one token while the
// entry's own braces stay structural.
var bibLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Comment", Pattern: `%[^\n]*`},
		{Name: "At", Pattern: `@`},
		{Name: "Ident", Pattern: `[A-Za-z][A-Za-z0-9_.:+/-]*`},
		{Name: "Number", Pattern: `[0-9]+`},
		{Name: "Eq", Pattern: `=`, Action: lexer.Push("Value")},
		{Name: "Punct", Pattern: `[{},]`},
		{Name: "Whitespace", Pattern: `\s+`},
	},
	"Value": {
		{Name: "String", Pattern: `"[^"]*"`, Action: lexer.Pop()},
		{Name: "Braced", Pattern: `\{(?:[^{}]|\{(?:[^{}]|\{[^{}]*\})*\})*\}`, Action: lexer.Pop()},
		{Name: "Number", Pattern: `[0-9]+`, Action: lexer.Pop()},
		{Name: "Ident", Pattern: `[A-Za-z][A-Za-z0-9_.:+/-]*`, Action: lexer.Pop()},
		{Name: "Whitespace", Pattern: `\s+`},
	},
})

var bibParser = participle.MustBuild[bibGrammar](
	participle.Lexer(bibLexer),
	participle.Elide("Whitespace", "Comment"),
)

// Parse implements ir.Parser.
func (Parser) Parse(input []byte, opts ir.ParseOptions) (*ir.Result[*ir.Document], error) {
	if !utf8.Valid(input) {
		return nil, apperrors.Encoding(FormatName, "input is not valid UTF-8")
	}

	file, err := bibParser.ParseBytes("", input)
	if err != nil {
		return nil, apperrors.Malformed(FormatName, err.Error())
	}

	doc := ir.NewDocument()
	var warnings []ir.Warning
	seen := make(map[string]bool)

	for _, entry := range file.Entries {
		switch strings.ToLower(entry.Type) {
		case "comment", "preamble", "string":
			warnings = append(warnings, ir.NewWarning(ir.UnsupportedFeature,
				"dropped @"+strings.ToLower(entry.Type)+" block"))
			continue
		}
		if seen[entry.Key] {
			warnings = append(warnings, ir.NewWarning(ir.AmbiguousInput,
				"duplicate citation key "+entry.Key))
		}
		seen[entry.Key] = true

		n := ir.NewNode(KindEntry).
			WithProp(propType, ir.String(strings.ToLower(entry.Type))).
			WithProp(std.PropID, ir.String(entry.Key))
		n.Span = ir.NewSpan(entry.Pos.Offset, entry.Pos.Offset)
		for _, f := range entry.Fields {
			if f == nil {
				continue
			}
			n.Props.Set(fieldPrefix+strings.ToLower(f.Name), ir.String(fieldValue(f.Value)))
		}
		doc.Content.Children = append(doc.Content.Children, n)
	}

	if opts.PreserveSourceInfo {
		doc.Source = &ir.SourceInfo{Format: FormatName, Metadata: ir.NewProperties()}
	}
	return ir.WithWarnings(doc, warnings), nil
}

// fieldValue strips the delimiters of a raw field value and folds internal
// whitespace.
func fieldValue(raw string) string {
	switch {
	case strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}"):
		raw = raw[1 : len(raw)-1]
	case strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`):
		raw = raw[1 : len(raw)-1]
	}
	return strings.Join(strings.Fields(raw), " ")
}
