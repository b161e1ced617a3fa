package docbook

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	apperrors "github.com/docfold/docfold/core/errors"
	"github.com/docfold/docfold/core/ir"
	"github.com/docfold/docfold/core/std"
)

// Parser reads DocBook XML into the document IR.
type Parser struct{}

var (
	rootQuery  = xpath.MustCompile("//article | //book | //chapter")
	titleQuery = xpath.MustCompile("./title | ./info/title")
)

// Parse implements ir.Parser.
func (Parser) Parse(input []byte, opts ir.ParseOptions) (*ir.Result[*ir.Document], error) {
	if !utf8.Valid(input) {
		return nil, apperrors.Encoding(FormatName, "input is not valid UTF-8")
	}

	dom, err := xmlquery.Parse(bytes.NewReader(input))
	if err != nil {
		return nil, apperrors.Malformed(FormatName, "not well-formed XML: "+err.Error())
	}
	root := xmlquery.QuerySelector(dom, rootQuery)
	if root == nil {
		return nil, apperrors.Malformed(FormatName, "no article, book, or chapter element")
	}

	p := &parser{doc: ir.NewDocument()}
	if title := xmlquery.QuerySelector(root, titleQuery); title != nil {
		p.doc.Metadata.Set(std.PropTitle, ir.String(strings.TrimSpace(title.InnerText())))
	}
	p.doc.Content.Children = p.blocks(root, 1)

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

// blocks converts the element children of parent into block nodes. level is
// the heading level the next section title maps to.
func (p *parser) blocks(parent *xmlquery.Node, level int64) []*ir.Node {
	var out []*ir.Node
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			if c.Type == xmlquery.TextNode && strings.TrimSpace(c.Data) != "" {
				out = append(out, std.Para(ir.Text(collapseSpace(c.Data))))
			}
			continue
		}

		switch c.Data {
		case "title", "info":
			// Consumed by the enclosing section or document.

		case "section", "sect1", "sect2", "sect3", "sect4", "sect5":
			out = append(out, p.section(c, level)...)

		case "para", "simpara":
			out = append(out, std.Para(p.inlines(c)...))

		case "programlisting", "screen":
			lang := c.SelectAttr("language")
			out = append(out, std.CodeBlock(lang, c.InnerText()))

		case "blockquote":
			out = append(out, std.Blockquote(p.blocks(c, level)...))

		case "itemizedlist":
			out = append(out, p.list(c, level, false))
		case "orderedlist":
			out = append(out, p.list(c, level, true))

		case "table", "informaltable":
			out = append(out, p.table(c))

		case "mediaobject", "figure":
			if img := p.media(c); img != nil {
				out = append(out, img)
			}

		case "bridgehead":
			out = append(out, std.Heading(level, p.inlines(c)...))

		default:
			p.warn(ir.UnsupportedFeature, "unsupported element <"+c.Data+"> kept as generic container")
			n := ir.NewNode(std.KindDiv).WithProp(propTag, ir.String(c.Data))
			n.Children = p.blocks(c, level)
			out = append(out, n)
		}
	}
	return out
}

// section flattens a nested section into a heading followed by its content.
func (p *parser) section(sec *xmlquery.Node, level int64) []*ir.Node {
	if level > 6 {
		level = 6
	}
	var out []*ir.Node
	if title := xmlquery.QuerySelector(sec, titleQuery); title != nil {
		h := std.Heading(level, p.inlines(title)...)
		if id := sec.SelectAttr("id"); id != "" {
			h.Props.Set(std.PropID, ir.String(id))
		} else if id := sec.SelectAttr("xml:id"); id != "" {
			h.Props.Set(std.PropID, ir.String(id))
		}
		out = append(out, h)
	}
	return append(out, p.blocks(sec, level+1)...)
}

func (p *parser) list(elem *xmlquery.Node, level int64, ordered bool) *ir.Node {
	var items []*ir.Node
	for c := elem.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == "listitem" {
			items = append(items, std.Item(p.blocks(c, level)...))
		}
	}
	if ordered {
		return std.OrderedList(items...)
	}
	return std.BulletList(items...)
}

var rowQuery = xpath.MustCompile(".//row | .//tr")

func (p *parser) table(elem *xmlquery.Node) *ir.Node {
	table := ir.NewNode(std.KindTable)
	for _, row := range xmlquery.QuerySelectorAll(elem, rowQuery) {
		kind := std.KindTableRow
		if inThead(row) {
			kind = std.KindTableHeader
		}
		r := ir.NewNode(kind)
		for c := row.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != xmlquery.ElementNode {
				continue
			}
			switch c.Data {
			case "entry", "td", "th":
				cell := ir.NewNode(std.KindTableCell)
				cell.Children = p.inlines(c)
				r.Children = append(r.Children, cell)
			}
		}
		table.Children = append(table.Children, r)
	}
	return table
}

func inThead(row *xmlquery.Node) bool {
	for a := row.Parent; a != nil; a = a.Parent {
		if a.Type == xmlquery.ElementNode && a.Data == "thead" {
			return true
		}
	}
	return false
}

var imageQuery = xpath.MustCompile(".//imagedata")

func (p *parser) media(elem *xmlquery.Node) *ir.Node {
	data := xmlquery.QuerySelector(elem, imageQuery)
	if data == nil {
		p.warn(ir.ContentLoss, "dropped <"+elem.Data+"> without imagedata")
		return nil
	}
	alt := ""
	if t := xmlquery.FindOne(elem, ".//textobject/phrase"); t != nil {
		alt = strings.TrimSpace(t.InnerText())
	}
	img := std.Image(data.SelectAttr("fileref"), alt)
	if elem.Data == "figure" {
		fig := ir.NewNode(std.KindFigure).WithChild(std.Para(img))
		if title := xmlquery.QuerySelector(elem, titleQuery); title != nil {
			fig.Children = append(fig.Children,
				ir.NewNode(std.KindCaption).WithChildren(p.inlines(title)...))
		}
		return fig
	}
	return std.Para(img)
}

func (p *parser) inlines(parent *xmlquery.Node) []*ir.Node {
	var out []*ir.Node
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if text := collapseSpace(c.Data); strings.TrimSpace(text) != "" || len(out) > 0 {
				out = append(out, ir.Text(text))
			}

		case xmlquery.ElementNode:
			switch c.Data {
			case "emphasis":
				role := c.SelectAttr("role")
				if role == "strong" || role == "bold" {
					out = append(out, std.Strong(p.inlines(c)...))
				} else {
					out = append(out, std.Emphasis(p.inlines(c)...))
				}
			case "literal", "code", "command", "filename":
				out = append(out, std.Code(c.InnerText()))
			case "link", "ulink":
				href := c.SelectAttr("href")
				if href == "" {
					href = c.SelectAttr("url")
				}
				out = append(out, std.Link(href, p.inlines(c)...))
			case "subscript":
				out = append(out, ir.NewNode(std.KindSubscript).WithChildren(p.inlines(c)...))
			case "superscript":
				out = append(out, ir.NewNode(std.KindSuperscript).WithChildren(p.inlines(c)...))
			case "inlinemediaobject":
				if data := xmlquery.QuerySelector(c, imageQuery); data != nil {
					out = append(out, std.Image(data.SelectAttr("fileref"), ""))
				}
			case "footnote":
				p.warn(ir.ContentLoss, "dropped footnote")
			default:
				p.warn(ir.UnsupportedFeature, "unsupported inline <"+c.Data+"> kept as generic span")
				n := ir.NewNode(std.KindSpan).WithProp(propTag, ir.String(c.Data))
				n.Children = p.inlines(c)
				out = append(out, n)
			}
		}
	}
	return trimEdges(out)
}

// trimEdges drops leading and trailing whitespace-only text nodes and trims
// the outer edges of the first and last text nodes.
func trimEdges(nodes []*ir.Node) []*ir.Node {
	for len(nodes) > 0 {
		if t := textOf(nodes[0]); t != "" && strings.TrimSpace(t) == "" {
			nodes = nodes[1:]
			continue
		}
		break
	}
	for len(nodes) > 0 {
		if t := textOf(nodes[len(nodes)-1]); t != "" && strings.TrimSpace(t) == "" {
			nodes = nodes[:len(nodes)-1]
			continue
		}
		break
	}
	if len(nodes) > 0 {
		if t := textOf(nodes[0]); t != "" {
			nodes[0] = ir.Text(strings.TrimLeft(t, " "))
		}
		if t := textOf(nodes[len(nodes)-1]); t != "" {
			nodes[len(nodes)-1] = ir.Text(strings.TrimRight(t, " "))
		}
	}
	return nodes
}

func textOf(n *ir.Node) string {
	if n.Kind != std.KindText {
		return ""
	}
	return n.Props.GetString(std.PropContent)
}

// collapseSpace folds whitespace runs to single spaces, keeping one leading
// or trailing space when the original had any.
func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return " "
	}
	out := strings.Join(fields, " ")
	if isSpace(s[0]) {
		out = " " + out
	}
	if isSpace(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
