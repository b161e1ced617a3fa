package pandoc

import (
	"encoding/json"
	"strconv"
	"strings"

	apperrors "github.com/docfold/docfold/core/errors"
	"github.com/docfold/docfold/core/ir"
	"github.com/docfold/docfold/core/std"
)

// Emitter writes a document as a Pandoc JSON AST.
type Emitter struct{}

// Emit implements ir.Emitter.
func (Emitter) Emit(doc *ir.Document, opts ir.EmitOptions) (*ir.Result[[]byte], error) {
	e := &emitter{}

	out := pandocDoc{
		APIVersion: apiVersion,
		Meta:       make(map[string]pnode, doc.Metadata.Len()),
		Blocks:     e.blocks(doc.Content.Children),
	}
	if out.Blocks == nil {
		out.Blocks = []pnode{}
	}
	for _, key := range doc.Metadata.Keys() {
		v, _ := doc.Metadata.Get(key)
		out.Meta[key] = metaValue(v)
	}

	var encoded []byte
	var err error
	if opts.Pretty {
		encoded, err = json.MarshalIndent(out, "", "  ")
	} else {
		encoded, err = json.Marshal(out)
	}
	if err != nil {
		return nil, apperrors.Unrepresentable(FormatName, err.Error())
	}
	if opts.Pretty {
		encoded = append(encoded, '\n')
	}
	return ir.WithWarnings(encoded, e.warnings), nil
}

type emitter struct {
	warnings []ir.Warning
}

func (e *emitter) warn(cat ir.Category, msg string, span *ir.Span) {
	e.warnings = append(e.warnings, ir.NewWarning(cat, msg).At(span))
}

// node builds a tagged constructor with marshaled content.
func node(t string, c any) pnode {
	raw, _ := json.Marshal(c)
	return pnode{T: t, C: raw}
}

func bare(t string) pnode {
	return pnode{T: t}
}

// emptyAttr is the Pandoc attribute triple ["", [], []].
func emptyAttr() []any {
	return []any{"", []string{}, [][2]string{}}
}

func idAttr(n *ir.Node) []any {
	return []any{n.Props.GetString(std.PropID), []string{}, [][2]string{}}
}

func metaValue(v ir.PropValue) pnode {
	switch v.Type() {
	case ir.StringType:
		s, _ := v.AsString()
		return node("MetaString", s)
	case ir.BoolType:
		b, _ := v.AsBool()
		return node("MetaBool", b)
	case ir.IntType:
		n, _ := v.AsInt()
		return node("MetaString", strconv.FormatInt(n, 10))
	case ir.FloatType:
		f, _ := v.AsFloat()
		return node("MetaString", strconv.FormatFloat(f, 'g', -1, 64))
	case ir.ListType:
		items, _ := v.AsList()
		out := make([]pnode, len(items))
		for i, item := range items {
			out[i] = metaValue(item)
		}
		return node("MetaList", out)
	default:
		props, _ := v.AsMap()
		out := make(map[string]pnode, props.Len())
		for _, key := range props.Keys() {
			item, _ := props.Get(key)
			out[key] = metaValue(item)
		}
		return node("MetaMap", out)
	}
}

func (e *emitter) blocks(nodes []*ir.Node) []pnode {
	var out []pnode
	for _, n := range nodes {
		if b, ok := e.block(n); ok {
			out = append(out, b)
		}
	}
	return out
}

func (e *emitter) block(n *ir.Node) (pnode, bool) {
	switch n.Kind {
	case std.KindParagraph:
		return node("Para", e.inlines(n.Children)), true

	case std.KindHeading:
		level := n.Props.GetInt(std.PropLevel, 1)
		return node("Header", []any{level, idAttr(n), e.inlines(n.Children)}), true

	case std.KindCodeBlock:
		attr := []any{"", []string{}, [][2]string{}}
		if lang := n.Props.GetString(std.PropLanguage); lang != "" {
			attr[1] = []string{lang}
		}
		return node("CodeBlock", []any{attr, n.Props.GetString(std.PropContent)}), true

	case std.KindBlockquote:
		return node("BlockQuote", e.blocks(n.Children)), true

	case std.KindList:
		items := make([][]pnode, len(n.Children))
		for i, item := range n.Children {
			items[i] = e.blocks(item.Children)
			if items[i] == nil {
				items[i] = []pnode{}
			}
		}
		if !n.Props.GetBool(std.PropOrdered) {
			return node("BulletList", items), true
		}
		start := n.Props.GetInt(std.PropStart, 1)
		listAttr := []any{start, bare("Decimal"), bare("Period")}
		return node("OrderedList", []any{listAttr, items}), true

	case std.KindHorizontalRule:
		return bare("HorizontalRule"), true

	case std.KindRawBlock:
		return node("RawBlock", []any{
			n.Props.GetString(std.PropFormat),
			n.Props.GetString(std.PropContent),
		}), true

	case std.KindDiv, std.KindFigure:
		return node("Div", []any{idAttr(n), e.blocks(n.Children)}), true

	case std.KindCaption:
		return node("Para", e.inlines(n.Children)), true

	case std.KindTable:
		e.warn(ir.UnsupportedFeature, "tables are not mapped to the pandoc AST; table dropped", n.Span)
		return pnode{}, false

	default:
		if len(n.Children) > 0 && std.IsInline(n.Children[0].Kind) {
			e.warn(ir.StructureLoss, "unknown block "+n.Kind+" emitted as Para", n.Span)
			return node("Para", e.inlines(n.Children)), true
		}
		e.warn(ir.ContentLoss, "dropped unknown block "+n.Kind, n.Span)
		return pnode{}, false
	}
}

// inlines converts inline nodes, splitting text into Str and Space tokens
// the way Pandoc represents words.
func (e *emitter) inlines(nodes []*ir.Node) []pnode {
	out := []pnode{}
	for _, n := range nodes {
		out = append(out, e.inline(n)...)
	}
	return out
}

func (e *emitter) inline(n *ir.Node) []pnode {
	wrap := func(t string) []pnode {
		return []pnode{node(t, e.inlines(n.Children))}
	}

	switch n.Kind {
	case std.KindText:
		return strSpace(n.Props.GetString(std.PropContent))
	case std.KindEmphasis:
		return wrap("Emph")
	case std.KindStrong:
		return wrap("Strong")
	case std.KindStrikeout:
		return wrap("Strikeout")
	case std.KindUnderline:
		return wrap("Underline")
	case std.KindSubscript:
		return wrap("Subscript")
	case std.KindSuperscript:
		return wrap("Superscript")
	case std.KindSpan:
		return []pnode{node("Span", []any{idAttr(n), e.inlines(n.Children)})}
	case std.KindCode:
		return []pnode{node("Code", []any{emptyAttr(), n.Props.GetString(std.PropContent)})}
	case std.KindLink:
		target := [2]string{n.Props.GetString(std.PropURL), n.Props.GetString(std.PropTitle)}
		return []pnode{node("Link", []any{idAttr(n), e.inlines(n.Children), target})}
	case std.KindImage:
		target := [2]string{n.Props.GetString(std.PropURL), n.Props.GetString(std.PropTitle)}
		alt := strSpace(n.Props.GetString(std.PropAlt))
		return []pnode{node("Image", []any{idAttr(n), alt, target})}
	case std.KindLineBreak:
		return []pnode{bare("LineBreak")}
	case std.KindSoftBreak:
		return []pnode{bare("SoftBreak")}
	case std.KindRawInline:
		return []pnode{node("RawInline", []any{
			n.Props.GetString(std.PropFormat),
			n.Props.GetString(std.PropContent),
		})}
	default:
		e.warn(ir.StructureLoss, "unknown inline "+n.Kind+" flattened", n.Span)
		if len(n.Children) > 0 {
			return e.inlines(n.Children)
		}
		return strSpace(n.Props.GetString(std.PropContent))
	}
}

// strSpace splits text into Pandoc Str and Space constructors.
func strSpace(text string) []pnode {
	out := []pnode{}
	for i, word := range strings.Split(text, " ") {
		if i > 0 {
			out = append(out, bare("Space"))
		}
		if word != "" {
			out = append(out, node("Str", word))
		}
	}
	return out
}
