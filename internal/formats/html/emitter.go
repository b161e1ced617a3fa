package html

import (
	"encoding/base64"
	"strconv"
	"strings"

	xhtml "golang.org/x/net/html"

	"github.com/docfold/docfold/core/ir"
	"github.com/docfold/docfold/core/std"
)

// Emitter writes a document as an HTML fragment. With EmitOptions.Pretty the
// output is indented two spaces per nesting level; otherwise blocks are
// emitted one per line.
type Emitter struct{}

// Emit implements ir.Emitter.
func (Emitter) Emit(doc *ir.Document, opts ir.EmitOptions) (*ir.Result[[]byte], error) {
	e := &emitter{doc: doc, pretty: opts.Pretty}
	var b strings.Builder
	for _, n := range doc.Content.Children {
		e.block(&b, n, 0)
	}
	return ir.WithWarnings([]byte(b.String()), e.warnings), nil
}

type emitter struct {
	doc      *ir.Document
	pretty   bool
	warnings []ir.Warning
}

func (e *emitter) warn(cat ir.Category, msg string, span *ir.Span) {
	e.warnings = append(e.warnings, ir.NewWarning(cat, msg).At(span))
}

func (e *emitter) indent(b *strings.Builder, depth int) {
	if e.pretty {
		b.WriteString(strings.Repeat("  ", depth))
	}
}

func (e *emitter) block(b *strings.Builder, n *ir.Node, depth int) {
	switch n.Kind {
	case std.KindHeading:
		level := n.Props.GetInt(std.PropLevel, 1)
		if level < 1 {
			level = 1
		}
		if level > 6 {
			e.warn(ir.StructureLoss, "heading level clamped to 6", n.Span)
			level = 6
		}
		tag := "h" + strconv.FormatInt(level, 10)
		e.line(b, depth, "<"+tag+e.attrs(n)+">"+e.inlines(n.Children)+"</"+tag+">")

	case std.KindParagraph:
		e.line(b, depth, "<p"+e.attrs(n)+">"+e.inlines(n.Children)+"</p>")

	case std.KindCodeBlock:
		code := "<code>"
		if lang := n.Props.GetString(std.PropLanguage); lang != "" {
			code = `<code class="language-` + xhtml.EscapeString(lang) + `">`
		}
		content := xhtml.EscapeString(n.Props.GetString(std.PropContent))
		e.line(b, depth, "<pre"+e.attrs(n)+">"+code+content+"</code></pre>")

	case std.KindBlockquote:
		e.container(b, n, depth, "blockquote")

	case std.KindList:
		tag := "ul"
		open := "<ul" + e.attrs(n) + ">"
		if n.Props.GetBool(std.PropOrdered) {
			tag = "ol"
			open = "<ol" + e.attrs(n)
			if start := n.Props.GetInt(std.PropStart, 1); start != 1 {
				open += ` start="` + strconv.FormatInt(start, 10) + `"`
			}
			open += ">"
		}
		e.line(b, depth, open)
		for _, item := range n.Children {
			e.listItem(b, item, depth+1)
		}
		e.line(b, depth, "</"+tag+">")

	case std.KindListItem:
		e.listItem(b, n, depth)

	case std.KindHorizontalRule:
		e.line(b, depth, "<hr>")

	case std.KindTable:
		e.table(b, n, depth)

	case std.KindDiv:
		e.container(b, n, depth, divTag(n))

	case std.KindFigure:
		e.container(b, n, depth, "figure")

	case std.KindCaption:
		e.line(b, depth, "<figcaption"+e.attrs(n)+">"+e.inlines(n.Children)+"</figcaption>")

	case std.KindRawBlock:
		format := n.Props.GetString(std.PropFormat)
		if format == FormatName {
			e.line(b, depth, strings.TrimRight(n.Props.GetString(std.PropContent), "\n"))
			return
		}
		e.warn(ir.ContentLoss, "dropped raw "+format+" block", n.Span)

	default:
		e.warn(ir.StructureLoss, "unknown block "+n.Kind+" emitted as <div>", n.Span)
		e.container(b, n, depth, "div")
	}
}

// divTag restores the original tag name for containers the parser preserved
// generically.
func divTag(n *ir.Node) string {
	if tag := n.Props.GetString(propTag); tag != "" {
		return tag
	}
	return "div"
}

func (e *emitter) container(b *strings.Builder, n *ir.Node, depth int, tag string) {
	e.line(b, depth, "<"+tag+e.attrs(n)+">")
	for _, c := range n.Children {
		e.block(b, c, depth+1)
	}
	e.line(b, depth, "</"+tag+">")
}

// listItem renders <li> on one line when the item is a single paragraph.
func (e *emitter) listItem(b *strings.Builder, item *ir.Node, depth int) {
	if len(item.Children) == 1 && item.Children[0].Kind == std.KindParagraph {
		e.line(b, depth, "<li"+e.attrs(item)+">"+e.inlines(item.Children[0].Children)+"</li>")
		return
	}
	e.line(b, depth, "<li"+e.attrs(item)+">")
	for _, c := range item.Children {
		e.block(b, c, depth+1)
	}
	e.line(b, depth, "</li>")
}

func (e *emitter) table(b *strings.Builder, n *ir.Node, depth int) {
	e.line(b, depth, "<table"+e.attrs(n)+">")
	for _, row := range n.Children {
		cell := "td"
		if row.Kind == std.KindTableHeader {
			cell = "th"
		} else if row.Kind != std.KindTableRow {
			e.warn(ir.StructureLoss, "dropped non-row "+row.Kind+" inside table", row.Span)
			continue
		}
		var cells strings.Builder
		for _, c := range row.Children {
			cells.WriteString("<" + cell + e.attrs(c) + ">" + e.inlines(c.Children) + "</" + cell + ">")
		}
		e.line(b, depth+1, "<tr>"+cells.String()+"</tr>")
	}
	e.line(b, depth, "</table>")
}

func (e *emitter) line(b *strings.Builder, depth int, s string) {
	e.indent(b, depth)
	b.WriteString(s)
	b.WriteByte('\n')
}

func (e *emitter) inlines(nodes []*ir.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(e.inline(n))
	}
	return b.String()
}

func (e *emitter) inline(n *ir.Node) string {
	switch n.Kind {
	case std.KindText:
		return xhtml.EscapeString(n.Props.GetString(std.PropContent))
	case std.KindEmphasis:
		return e.wrap(n, "em")
	case std.KindStrong:
		return e.wrap(n, "strong")
	case std.KindUnderline:
		return e.wrap(n, "u")
	case std.KindStrikeout:
		return e.wrap(n, "s")
	case std.KindSubscript:
		return e.wrap(n, "sub")
	case std.KindSuperscript:
		return e.wrap(n, "sup")
	case std.KindCode:
		return "<code" + e.attrs(n) + ">" + xhtml.EscapeString(n.Props.GetString(std.PropContent)) + "</code>"
	case std.KindLink:
		href := xhtml.EscapeString(n.Props.GetString(std.PropURL))
		out := `<a href="` + href + `"`
		if title := n.Props.GetString(std.PropTitle); title != "" {
			out += ` title="` + xhtml.EscapeString(title) + `"`
		}
		return out + e.attrs(n) + ">" + e.inlines(n.Children) + "</a>"
	case std.KindImage:
		return e.image(n)
	case std.KindLineBreak:
		return "<br>"
	case std.KindSoftBreak:
		return "\n"
	case std.KindSpan:
		tag := "span"
		if t := n.Props.GetString(propTag); t != "" {
			tag = t
		}
		return "<" + tag + e.attrs(n) + ">" + e.inlines(n.Children) + "</" + tag + ">"
	case std.KindRawInline:
		format := n.Props.GetString(std.PropFormat)
		if format == FormatName {
			return n.Props.GetString(std.PropContent)
		}
		e.warn(ir.ContentLoss, "dropped raw "+format+" inline", n.Span)
		return ""
	default:
		e.warn(ir.StructureLoss, "unknown inline "+n.Kind+" emitted as <span>", n.Span)
		if len(n.Children) > 0 {
			return "<span>" + e.inlines(n.Children) + "</span>"
		}
		return xhtml.EscapeString(n.Props.GetString(std.PropContent))
	}
}

func (e *emitter) wrap(n *ir.Node, tag string) string {
	return "<" + tag + e.attrs(n) + ">" + e.inlines(n.Children) + "</" + tag + ">"
}

// image prefers an embedded resource over the external URL, inlining it as a
// data URL.
func (e *emitter) image(n *ir.Node) string {
	src := n.Props.GetString(std.PropURL)
	if id := n.Props.GetString(std.PropResourceID); id != "" {
		if r, ok := e.doc.Resources.Get(id); ok {
			src = "data:" + r.MediaType + ";base64," + base64.StdEncoding.EncodeToString(r.Data)
		} else {
			e.warn(ir.ContentLoss, "image references missing resource "+id, n.Span)
		}
	}
	out := `<img src="` + xhtml.EscapeString(src) + `"`
	if alt := n.Props.GetString(std.PropAlt); alt != "" {
		out += ` alt="` + xhtml.EscapeString(alt) + `"`
	}
	if title := n.Props.GetString(std.PropTitle); title != "" {
		out += ` title="` + xhtml.EscapeString(title) + `"`
	}
	return out + e.attrs(n) + ">"
}

// attrs renders id, class, and style attributes from node properties.
func (e *emitter) attrs(n *ir.Node) string {
	var b strings.Builder
	if id := n.Props.GetString(std.PropID); id != "" {
		b.WriteString(` id="` + xhtml.EscapeString(id) + `"`)
	}
	if class := n.Props.GetString(propClass); class != "" {
		b.WriteString(` class="` + xhtml.EscapeString(class) + `"`)
	}
	var styles []string
	if color := n.Props.GetString(std.StyleColor); color != "" {
		styles = append(styles, "color: "+color)
	}
	if align := n.Props.GetString(std.StyleAlign); align != "" {
		styles = append(styles, "text-align: "+align)
	}
	if rest := n.Props.GetString(propStyle); rest != "" {
		styles = append(styles, rest)
	}
	if len(styles) > 0 {
		b.WriteString(` style="` + xhtml.EscapeString(strings.Join(styles, "; ")) + `"`)
	}
	return b.String()
}
