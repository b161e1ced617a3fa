package docbook

import (
	"strconv"
	"strings"

	"github.com/docfold/docfold/core/ir"
	"github.com/docfold/docfold/core/std"
)

// Emitter writes a document as a DocBook 5 article. Headings reopen the
// section nesting at their level; everything below a heading belongs to its
// section until the next heading of the same or a higher level.
type Emitter struct{}

// Emit implements ir.Emitter.
func (Emitter) Emit(doc *ir.Document, opts ir.EmitOptions) (*ir.Result[[]byte], error) {
	e := &emitter{pretty: opts.Pretty}
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<article xmlns="http://docbook.org/ns/docbook" xmlns:xlink="http://www.w3.org/1999/xlink" version="5.0">` + "\n")
	if title := doc.Metadata.GetString(std.PropTitle); title != "" {
		e.line(&b, 1, "<title>"+escape(title)+"</title>")
	}

	depth := 0 // open section nesting
	for _, n := range doc.Content.Children {
		if n.Kind == std.KindHeading {
			level := int(n.Props.GetInt(std.PropLevel, 1))
			for depth >= level {
				e.line(&b, depth, "</section>")
				depth--
			}
			for depth < level-1 {
				// Skipped levels still need enclosing sections.
				depth++
				e.line(&b, depth, "<section>")
			}
			depth++
			open := "<section"
			if id := n.Props.GetString(std.PropID); id != "" {
				open += ` xml:id="` + escape(id) + `"`
			}
			e.line(&b, depth, open+">")
			e.line(&b, depth+1, "<title>"+e.inlines(n.Children)+"</title>")
			continue
		}
		e.block(&b, n, depth+1)
	}
	for depth > 0 {
		e.line(&b, depth, "</section>")
		depth--
	}
	b.WriteString("</article>\n")
	return ir.WithWarnings([]byte(b.String()), e.warnings), nil
}

type emitter struct {
	pretty   bool
	warnings []ir.Warning
}

func (e *emitter) warn(cat ir.Category, msg string, span *ir.Span) {
	e.warnings = append(e.warnings, ir.NewWarning(cat, msg).At(span))
}

func (e *emitter) line(b *strings.Builder, depth int, s string) {
	if e.pretty {
		b.WriteString(strings.Repeat("  ", depth))
	}
	b.WriteString(s)
	b.WriteByte('\n')
}

func (e *emitter) block(b *strings.Builder, n *ir.Node, depth int) {
	switch n.Kind {
	case std.KindParagraph:
		e.line(b, depth, "<para>"+e.inlines(n.Children)+"</para>")

	case std.KindHeading:
		// Headings inside containers cannot open sections.
		e.line(b, depth, "<bridgehead>"+e.inlines(n.Children)+"</bridgehead>")

	case std.KindCodeBlock:
		open := "<programlisting"
		if lang := n.Props.GetString(std.PropLanguage); lang != "" {
			open += ` language="` + escape(lang) + `"`
		}
		content := strings.TrimRight(n.Props.GetString(std.PropContent), "\n")
		e.line(b, depth, open+">"+escape(content)+"</programlisting>")

	case std.KindBlockquote:
		e.container(b, n, depth, "blockquote")

	case std.KindList:
		tag := "itemizedlist"
		if n.Props.GetBool(std.PropOrdered) {
			tag = "orderedlist"
		}
		e.line(b, depth, "<"+tag+">")
		for _, item := range n.Children {
			e.container(b, item, depth+1, "listitem")
		}
		e.line(b, depth, "</"+tag+">")

	case std.KindHorizontalRule:
		e.warn(ir.StyleLoss, "docbook has no thematic break; dropped", n.Span)

	case std.KindTable:
		e.table(b, n, depth)

	case std.KindFigure:
		e.figure(b, n, depth)

	case std.KindDiv:
		if tag := n.Props.GetString(propTag); tag != "" {
			e.container(b, n, depth, tag)
			return
		}
		e.warn(ir.StructureLoss, "generic container flattened", n.Span)
		for _, c := range n.Children {
			e.block(b, c, depth)
		}

	case std.KindRawBlock:
		format := n.Props.GetString(std.PropFormat)
		if format == FormatName {
			e.line(b, depth, n.Props.GetString(std.PropContent))
			return
		}
		e.warn(ir.ContentLoss, "dropped raw "+format+" block", n.Span)

	default:
		if len(n.Children) > 0 && std.IsInline(n.Children[0].Kind) {
			e.warn(ir.StructureLoss, "unknown block "+n.Kind+" emitted as <para>", n.Span)
			e.line(b, depth, "<para>"+e.inlines(n.Children)+"</para>")
			return
		}
		e.warn(ir.ContentLoss, "dropped unknown block "+n.Kind, n.Span)
	}
}

func (e *emitter) container(b *strings.Builder, n *ir.Node, depth int, tag string) {
	e.line(b, depth, "<"+tag+">")
	for _, c := range n.Children {
		e.block(b, c, depth+1)
	}
	e.line(b, depth, "</"+tag+">")
}

func (e *emitter) table(b *strings.Builder, n *ir.Node, depth int) {
	var header, body []*ir.Node
	for _, row := range n.Children {
		switch row.Kind {
		case std.KindTableHeader:
			header = append(header, row)
		case std.KindTableRow:
			body = append(body, row)
		}
	}

	cols := 0
	for _, row := range n.Children {
		if len(row.Children) > cols {
			cols = len(row.Children)
		}
	}

	e.line(b, depth, "<informaltable>")
	e.line(b, depth+1, `<tgroup cols="`+strconv.Itoa(cols)+`">`)
	e.rows(b, header, depth+2, "thead")
	e.rows(b, body, depth+2, "tbody")
	e.line(b, depth+1, "</tgroup>")
	e.line(b, depth, "</informaltable>")
}

func (e *emitter) rows(b *strings.Builder, rows []*ir.Node, depth int, tag string) {
	if len(rows) == 0 {
		return
	}
	e.line(b, depth, "<"+tag+">")
	for _, row := range rows {
		var cells strings.Builder
		for _, cell := range row.Children {
			cells.WriteString("<entry>" + e.inlines(cell.Children) + "</entry>")
		}
		e.line(b, depth+1, "<row>"+cells.String()+"</row>")
	}
	e.line(b, depth, "</"+tag+">")
}

func (e *emitter) figure(b *strings.Builder, n *ir.Node, depth int) {
	var caption *ir.Node
	var img *ir.Node
	for _, c := range n.Children {
		if c.Kind == std.KindCaption {
			caption = c
		}
	}
	img = ir.Find(n, func(x *ir.Node) bool { return x.Kind == std.KindImage })
	if img == nil {
		e.warn(ir.ContentLoss, "dropped figure without image", n.Span)
		return
	}

	tag := "mediaobject"
	if caption != nil {
		e.line(b, depth, "<figure>")
		e.line(b, depth+1, "<title>"+e.inlines(caption.Children)+"</title>")
		depth++
	}
	e.line(b, depth, "<"+tag+">")
	e.line(b, depth+1, `<imageobject><imagedata fileref="`+escape(img.Props.GetString(std.PropURL))+`"/></imageobject>`)
	if alt := img.Props.GetString(std.PropAlt); alt != "" {
		e.line(b, depth+1, "<textobject><phrase>"+escape(alt)+"</phrase></textobject>")
	}
	e.line(b, depth, "</"+tag+">")
	if caption != nil {
		e.line(b, depth-1, "</figure>")
	}
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
		return escape(n.Props.GetString(std.PropContent))
	case std.KindEmphasis:
		return "<emphasis>" + e.inlines(n.Children) + "</emphasis>"
	case std.KindStrong:
		return `<emphasis role="strong">` + e.inlines(n.Children) + "</emphasis>"
	case std.KindCode:
		return "<literal>" + escape(n.Props.GetString(std.PropContent)) + "</literal>"
	case std.KindLink:
		return `<link xlink:href="` + escape(n.Props.GetString(std.PropURL)) + `">` +
			e.inlines(n.Children) + "</link>"
	case std.KindImage:
		return `<inlinemediaobject><imageobject><imagedata fileref="` +
			escape(n.Props.GetString(std.PropURL)) + `"/></imageobject></inlinemediaobject>`
	case std.KindSubscript:
		return "<subscript>" + e.inlines(n.Children) + "</subscript>"
	case std.KindSuperscript:
		return "<superscript>" + e.inlines(n.Children) + "</superscript>"
	case std.KindSoftBreak:
		return "\n"
	case std.KindLineBreak:
		e.warn(ir.StyleLoss, "docbook has no hard line break; emitted as space", n.Span)
		return " "
	case std.KindUnderline, std.KindStrikeout:
		e.warn(ir.StyleLoss, "docbook cannot express "+n.Kind, n.Span)
		return e.inlines(n.Children)
	case std.KindSpan:
		if tag := n.Props.GetString(propTag); tag != "" {
			return "<" + tag + ">" + e.inlines(n.Children) + "</" + tag + ">"
		}
		return e.inlines(n.Children)
	case std.KindRawInline:
		format := n.Props.GetString(std.PropFormat)
		if format == FormatName {
			return n.Props.GetString(std.PropContent)
		}
		e.warn(ir.ContentLoss, "dropped raw "+format+" inline", n.Span)
		return ""
	default:
		e.warn(ir.StructureLoss, "unknown inline "+n.Kind+" flattened to text", n.Span)
		if len(n.Children) > 0 {
			return e.inlines(n.Children)
		}
		return escape(n.Props.GetString(std.PropContent))
	}
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escape(s string) string {
	return xmlEscaper.Replace(s)
}
