package pandoc

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "github.com/docfold/docfold/core/errors"
	"github.com/docfold/docfold/core/ir"
	"github.com/docfold/docfold/core/std"
)

// Parser reads a Pandoc JSON AST into the document IR.
type Parser struct{}

// Parse implements ir.Parser.
func (Parser) Parse(input []byte, opts ir.ParseOptions) (*ir.Result[*ir.Document], error) {
	if !utf8.Valid(input) {
		return nil, apperrors.Encoding(FormatName, "input is not valid UTF-8")
	}

	var raw pandocDoc
	if err := json.Unmarshal(input, &raw); err != nil {
		return nil, apperrors.Malformed(FormatName, err.Error())
	}
	if len(raw.APIVersion) == 0 {
		return nil, apperrors.Malformed(FormatName, "missing pandoc-api-version")
	}

	p := &parser{doc: ir.NewDocument()}
	if raw.APIVersion[0] != 1 {
		p.warn(ir.AmbiguousInput, fmt.Sprintf("pandoc-api-version %v is unknown; parsed as version 1", raw.APIVersion))
	}

	for key, meta := range raw.Meta {
		p.doc.Metadata.Set(key, p.metaValue(meta))
	}
	p.doc.Content.Children = p.blocks(raw.Blocks)

	if opts.PreserveSourceInfo {
		p.doc.Source = &ir.SourceInfo{Format: FormatName, Metadata: ir.NewProperties()}
	}
	return ir.WithWarnings(p.doc, p.warnings), nil
}

type parser struct {
	doc      *ir.Document
	warnings []ir.Warning
}

func (p *parser) warn(cat ir.Category, msg string) {
	p.warnings = append(p.warnings, ir.NewWarning(cat, msg))
}

// attr is the Pandoc attribute triple [id, classes, key-value pairs].
type attr struct {
	ID      string
	Classes []string
}

func decodeAttr(raw json.RawMessage) attr {
	var parts [3]json.RawMessage
	if json.Unmarshal(raw, &parts) != nil {
		return attr{}
	}
	var a attr
	_ = json.Unmarshal(parts[0], &a.ID)
	_ = json.Unmarshal(parts[1], &a.Classes)
	return a
}

func (p *parser) metaValue(n pnode) ir.PropValue {
	switch n.T {
	case "MetaString":
		var s string
		_ = json.Unmarshal(n.C, &s)
		return ir.String(s)
	case "MetaBool":
		var b bool
		_ = json.Unmarshal(n.C, &b)
		return ir.Bool(b)
	case "MetaInlines":
		var inl []pnode
		_ = json.Unmarshal(n.C, &inl)
		return ir.String(inlineText(p.inlines(inl)))
	case "MetaList":
		var list []pnode
		_ = json.Unmarshal(n.C, &list)
		items := make([]ir.PropValue, len(list))
		for i, item := range list {
			items[i] = p.metaValue(item)
		}
		return ir.List(items...)
	case "MetaMap":
		var m map[string]pnode
		_ = json.Unmarshal(n.C, &m)
		props := ir.NewProperties()
		for k, v := range m {
			props.Set(k, p.metaValue(v))
		}
		return ir.MapValue(props)
	default:
		p.warn(ir.UnsupportedFeature, "unsupported metadata value "+n.T)
		return ir.String("")
	}
}

func inlineText(nodes []*ir.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(n.TextContent())
	}
	return b.String()
}

func (p *parser) blocks(raw []pnode) []*ir.Node {
	var out []*ir.Node
	for _, b := range raw {
		if n := p.block(b); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (p *parser) block(b pnode) *ir.Node {
	switch b.T {
	case "Para", "Plain":
		var inl []pnode
		_ = json.Unmarshal(b.C, &inl)
		return std.Para(p.inlines(inl)...)

	case "Header":
		var parts [3]json.RawMessage
		if err := json.Unmarshal(b.C, &parts); err != nil {
			return nil
		}
		var level int64
		_ = json.Unmarshal(parts[0], &level)
		var inl []pnode
		_ = json.Unmarshal(parts[2], &inl)
		h := std.Heading(level, p.inlines(inl)...)
		if a := decodeAttr(parts[1]); a.ID != "" {
			h.Props.Set(std.PropID, ir.String(a.ID))
		}
		return h

	case "CodeBlock":
		var parts [2]json.RawMessage
		if err := json.Unmarshal(b.C, &parts); err != nil {
			return nil
		}
		var text string
		_ = json.Unmarshal(parts[1], &text)
		a := decodeAttr(parts[0])
		lang := ""
		if len(a.Classes) > 0 {
			lang = a.Classes[0]
		}
		return std.CodeBlock(lang, text)

	case "BlockQuote":
		var inner []pnode
		_ = json.Unmarshal(b.C, &inner)
		return std.Blockquote(p.blocks(inner)...)

	case "BulletList":
		var items [][]pnode
		_ = json.Unmarshal(b.C, &items)
		return std.BulletList(p.items(items)...)

	case "OrderedList":
		var parts [2]json.RawMessage
		if err := json.Unmarshal(b.C, &parts); err != nil {
			return nil
		}
		var listAttr []json.RawMessage
		_ = json.Unmarshal(parts[0], &listAttr)
		var items [][]pnode
		_ = json.Unmarshal(parts[1], &items)
		n := std.OrderedList(p.items(items)...)
		if len(listAttr) > 0 {
			var start int64
			if json.Unmarshal(listAttr[0], &start) == nil && start != 1 {
				n.Props.Set(std.PropStart, ir.Int(start))
			}
		}
		return n

	case "HorizontalRule":
		return std.HorizontalRule()

	case "RawBlock":
		var parts [2]string
		_ = json.Unmarshal(b.C, &parts)
		return std.RawBlock(parts[0], parts[1])

	case "Div":
		var parts [2]json.RawMessage
		if err := json.Unmarshal(b.C, &parts); err != nil {
			return nil
		}
		var inner []pnode
		_ = json.Unmarshal(parts[1], &inner)
		n := ir.NewNode(std.KindDiv).WithChildren(p.blocks(inner)...)
		if a := decodeAttr(parts[0]); a.ID != "" {
			n.Props.Set(std.PropID, ir.String(a.ID))
		}
		return n

	case "Figure":
		var parts [3]json.RawMessage
		if err := json.Unmarshal(b.C, &parts); err != nil {
			return nil
		}
		var inner []pnode
		_ = json.Unmarshal(parts[2], &inner)
		return ir.NewNode(std.KindFigure).WithChildren(p.blocks(inner)...)

	case "Table":
		p.warn(ir.UnsupportedFeature, "pandoc tables are not mapped; table dropped")
		return nil

	default:
		p.warn(ir.UnsupportedFeature, "unsupported block "+b.T+" dropped")
		return nil
	}
}

func (p *parser) items(raw [][]pnode) []*ir.Node {
	items := make([]*ir.Node, len(raw))
	for i, blocks := range raw {
		items[i] = std.Item(p.blocks(blocks)...)
	}
	return items
}

// inlines converts a run of Pandoc inlines, merging Str and Space sequences
// into single text nodes.
func (p *parser) inlines(raw []pnode) []*ir.Node {
	var out []*ir.Node
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			out = append(out, ir.Text(text.String()))
			text.Reset()
		}
	}

	for _, n := range raw {
		switch n.T {
		case "Str":
			var s string
			_ = json.Unmarshal(n.C, &s)
			text.WriteString(s)
		case "Space":
			text.WriteByte(' ')
		case "SoftBreak":
			flush()
			out = append(out, std.SoftBreak())
		case "LineBreak":
			flush()
			out = append(out, std.LineBreak())
		default:
			flush()
			if conv := p.inline(n); conv != nil {
				out = append(out, conv)
			}
		}
	}
	flush()
	return out
}

func (p *parser) inline(n pnode) *ir.Node {
	wrap := func(kind string) *ir.Node {
		var inl []pnode
		_ = json.Unmarshal(n.C, &inl)
		return ir.NewNode(kind).WithChildren(p.inlines(inl)...)
	}

	switch n.T {
	case "Emph":
		return wrap(std.KindEmphasis)
	case "Strong":
		return wrap(std.KindStrong)
	case "Strikeout":
		return wrap(std.KindStrikeout)
	case "Underline":
		return wrap(std.KindUnderline)
	case "Subscript":
		return wrap(std.KindSubscript)
	case "Superscript":
		return wrap(std.KindSuperscript)
	case "Span":
		return wrap(std.KindSpan)

	case "Code":
		var parts [2]json.RawMessage
		if err := json.Unmarshal(n.C, &parts); err != nil {
			return nil
		}
		var text string
		_ = json.Unmarshal(parts[1], &text)
		return std.Code(text)

	case "Link", "Image":
		var parts [3]json.RawMessage
		if err := json.Unmarshal(n.C, &parts); err != nil {
			return nil
		}
		var inl []pnode
		_ = json.Unmarshal(parts[1], &inl)
		var target [2]string
		_ = json.Unmarshal(parts[2], &target)
		if n.T == "Image" {
			img := std.Image(target[0], inlineText(p.inlines(inl)))
			if target[1] != "" {
				img.Props.Set(std.PropTitle, ir.String(target[1]))
			}
			return img
		}
		link := std.Link(target[0], p.inlines(inl)...)
		if target[1] != "" {
			link.Props.Set(std.PropTitle, ir.String(target[1]))
		}
		return link

	case "RawInline":
		var parts [2]string
		_ = json.Unmarshal(n.C, &parts)
		return ir.NewNode(std.KindRawInline).
			WithProp(std.PropFormat, ir.String(parts[0])).
			WithProp(std.PropContent, ir.String(parts[1]))

	case "Quoted":
		var parts [2]json.RawMessage
		if err := json.Unmarshal(n.C, &parts); err != nil {
			return nil
		}
		var inl []pnode
		_ = json.Unmarshal(parts[1], &inl)
		children := append([]*ir.Node{ir.Text("“")}, p.inlines(inl)...)
		children = append(children, ir.Text("”"))
		return ir.NewNode(std.KindSpan).WithChildren(children...)

	default:
		p.warn(ir.UnsupportedFeature, "unsupported inline "+n.T+" dropped")
		return nil
	}
}
