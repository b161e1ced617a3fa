package html

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"

	xhtml "golang.org/x/net/html"

	apperrors "github.com/docfold/docfold/core/errors"
	"github.com/docfold/docfold/core/ir"
	"github.com/docfold/docfold/core/std"
)

// Parser reads HTML into the document IR. Like any HTML5 tokenizer it
// accepts arbitrary input, so the only parse failure is invalid UTF-8.
type Parser struct{}

// Parse implements ir.Parser.
func (Parser) Parse(input []byte, opts ir.ParseOptions) (*ir.Result[*ir.Document], error) {
	if !utf8.Valid(input) {
		return nil, apperrors.Encoding(FormatName, "input is not valid UTF-8")
	}

	p := &parser{doc: ir.NewDocument()}
	p.stack = []*frame{{node: p.doc.Content, tag: ""}}
	p.run(input)

	if opts.PreserveSourceInfo {
		p.doc.Source = &ir.SourceInfo{Format: FormatName, Metadata: ir.NewProperties()}
	}
	return ir.WithWarnings(p.doc, p.warnings), nil
}

// frame is one open element. A nil node marks a transparent wrapper like
// <body> whose children belong to the enclosing node.
type frame struct {
	node  *ir.Node
	tag   string
	start int
	sawTH bool
}

type parser struct {
	doc      *ir.Document
	stack    []*frame
	warnings []ir.Warning

	// skipDepth > 0 while inside head, script, or style.
	skipDepth int
	skipTag   string

	// pre capture state.
	inPre    bool
	preBuf   strings.Builder
	preLang  string
	preStart int
}

func (p *parser) warn(cat ir.Category, msg string, span *ir.Span) {
	p.warnings = append(p.warnings, ir.NewWarning(cat, msg).At(span))
}

// target returns the nearest frame node that accepts children.
func (p *parser) target() *ir.Node {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].node != nil {
			return p.stack[i].node
		}
	}
	return p.doc.Content
}

func (p *parser) run(input []byte) {
	z := xhtml.NewTokenizer(bytes.NewReader(input))
	offset := 0
	for {
		tt := z.Next()
		tokStart := offset
		offset += len(z.Raw())

		if tt == xhtml.ErrorToken {
			break
		}

		switch tt {
		case xhtml.TextToken:
			p.text(z.Text())

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			name, attrs := tagAndAttrs(z)
			p.open(name, attrs, tokStart, offset, tt == xhtml.SelfClosingTagToken)

		case xhtml.EndTagToken:
			name, _ := tagAndAttrs(z)
			p.close(name, offset)
		}
		// Comments and doctypes carry nothing the model keeps.
	}

	// An unclosed pre runs to end of input.
	if p.inPre {
		n := std.CodeBlock(p.preLang, strings.TrimPrefix(p.preBuf.String(), "\n"))
		n.Span = ir.NewSpan(p.preStart, offset)
		p.inPre = false
		p.appendChild(n)
	}

	// Unclosed elements run to end of input.
	for len(p.stack) > 1 {
		p.close(p.stack[len(p.stack)-1].tag, offset)
	}
	p.doc.Content.Children = wrapInlines(p.doc.Content.Children)
}

func tagAndAttrs(z *xhtml.Tokenizer) (string, map[string]string) {
	name, hasAttr := z.TagName()
	if !hasAttr {
		return string(name), nil
	}
	attrs := make(map[string]string)
	for {
		key, val, more := z.TagAttr()
		attrs[string(key)] = string(val)
		if !more {
			break
		}
	}
	return string(name), attrs
}

func (p *parser) text(raw []byte) {
	if p.skipDepth > 0 {
		return
	}
	if p.inPre {
		p.preBuf.Write(raw)
		return
	}
	text := collapseSpace(string(raw))
	if strings.TrimSpace(text) == "" {
		// Whitespace between inline siblings is significant.
		if top := p.stack[len(p.stack)-1]; inlineContext[top.tag] && len(p.target().Children) > 0 {
			p.appendChild(ir.Text(" "))
		}
		return
	}
	p.appendChild(ir.Text(text))
}

func (p *parser) appendChild(n *ir.Node) {
	parent := p.target()
	parent.Children = append(parent.Children, n)
}

// Tags whose text content keeps inter-word whitespace.
var inlineContext = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "em": true, "i": true, "strong": true, "b": true, "a": true,
	"span": true, "li": true, "td": true, "th": true, "u": true, "s": true,
	"del": true, "sub": true, "sup": true, "figcaption": true,
}

// Tags that only group content and map to no node of their own.
var transparent = map[string]bool{
	"html": true, "body": true, "thead": true, "tbody": true, "tfoot": true,
	"main": true, "article": true, "section": true,
}

func (p *parser) open(name string, attrs map[string]string, start, end int, selfClosing bool) {
	if p.skipDepth > 0 {
		if name == p.skipTag && !selfClosing {
			p.skipDepth++
		}
		return
	}
	if p.inPre {
		if name == "code" {
			p.preLang = languageFromClass(attrs["class"])
		}
		return
	}

	switch name {
	case "head", "script", "style":
		p.warnSkipped(name, start)
		if !selfClosing {
			p.skipDepth = 1
			p.skipTag = name
		}
		return

	case "pre":
		p.inPre = true
		p.preBuf.Reset()
		p.preLang = ""
		p.preStart = start
		return

	case "hr":
		p.appendChild(std.HorizontalRule().WithSpan(start, end))
		return
	case "br":
		p.appendChild(std.LineBreak())
		return
	case "img":
		n := std.Image(attrs["src"], attrs["alt"])
		if t := attrs["title"]; t != "" {
			n.Props.Set(std.PropTitle, ir.String(t))
		}
		p.applyAttrs(n, attrs)
		p.appendChild(n.WithSpan(start, end))
		return
	}

	if transparent[name] {
		p.stack = append(p.stack, &frame{tag: name, start: start})
		return
	}

	n := p.nodeFor(name, attrs, start)
	p.applyAttrs(n, attrs)
	n.Span = ir.NewSpan(start, end)
	p.appendChild(n)
	if !selfClosing {
		p.stack = append(p.stack, &frame{node: n, tag: name, start: start})
	}
}

func (p *parser) nodeFor(name string, attrs map[string]string, start int) *ir.Node {
	switch name {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int64(name[1] - '0')
		return ir.NewNode(std.KindHeading).WithProp(std.PropLevel, ir.Int(level))
	case "p":
		return ir.NewNode(std.KindParagraph)
	case "blockquote":
		return ir.NewNode(std.KindBlockquote)
	case "ul":
		return ir.NewNode(std.KindList).WithProp(std.PropOrdered, ir.Bool(false))
	case "ol":
		n := ir.NewNode(std.KindList).WithProp(std.PropOrdered, ir.Bool(true))
		if s, err := strconv.ParseInt(attrs["start"], 10, 64); err == nil && s != 1 {
			n.Props.Set(std.PropStart, ir.Int(s))
		}
		return n
	case "li":
		return ir.NewNode(std.KindListItem)
	case "table":
		return ir.NewNode(std.KindTable)
	case "tr":
		return ir.NewNode(std.KindTableRow)
	case "td", "th":
		if len(p.stack) > 0 && name == "th" {
			p.stack[len(p.stack)-1].sawTH = true
		}
		return ir.NewNode(std.KindTableCell)
	case "em", "i":
		return ir.NewNode(std.KindEmphasis)
	case "strong", "b":
		return ir.NewNode(std.KindStrong)
	case "u":
		return ir.NewNode(std.KindUnderline)
	case "s", "del":
		return ir.NewNode(std.KindStrikeout)
	case "sub":
		return ir.NewNode(std.KindSubscript)
	case "sup":
		return ir.NewNode(std.KindSuperscript)
	case "code":
		return ir.NewNode(std.KindCode)
	case "a":
		n := ir.NewNode(std.KindLink).WithProp(std.PropURL, ir.String(attrs["href"]))
		if t := attrs["title"]; t != "" {
			n.Props.Set(std.PropTitle, ir.String(t))
		}
		return n
	case "span":
		return ir.NewNode(std.KindSpan)
	case "div":
		return ir.NewNode(std.KindDiv)
	case "figure":
		return ir.NewNode(std.KindFigure)
	case "figcaption":
		return ir.NewNode(std.KindCaption)
	default:
		p.warn(ir.UnsupportedFeature, "unsupported tag <"+name+"> kept as generic container",
			ir.NewSpan(start, start))
		return ir.NewNode(std.KindSpan).WithProp(propTag, ir.String(name))
	}
}

func (p *parser) warnSkipped(name string, start int) {
	if name == "head" {
		return
	}
	p.warn(ir.ContentLoss, "dropped <"+name+"> content", ir.NewSpan(start, start))
}

// applyAttrs maps id, class, and style onto node properties.
func (p *parser) applyAttrs(n *ir.Node, attrs map[string]string) {
	if id := attrs["id"]; id != "" {
		n.Props.Set(std.PropID, ir.String(id))
	}
	if class := attrs["class"]; class != "" {
		n.Props.Set(propClass, ir.String(class))
	}
	if style := attrs["style"]; style != "" {
		p.applyStyle(n, style)
	}
}

// applyStyle lifts recognized CSS declarations into style:* properties and
// keeps the remainder verbatim under html:style.
func (p *parser) applyStyle(n *ir.Node, style string) {
	var rest []string
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(strings.ToLower(name))
		value = strings.TrimSpace(value)
		switch name {
		case "color":
			n.Props.Set(std.StyleColor, ir.String(value))
		case "text-align":
			n.Props.Set(std.StyleAlign, ir.String(value))
		default:
			rest = append(rest, name+": "+value)
		}
	}
	if len(rest) > 0 {
		n.Props.Set(propStyle, ir.String(strings.Join(rest, "; ")))
	}
}

func (p *parser) close(name string, end int) {
	if p.skipDepth > 0 {
		if name == p.skipTag {
			p.skipDepth--
		}
		return
	}
	if p.inPre {
		if name == "pre" {
			content := strings.TrimPrefix(p.preBuf.String(), "\n")
			n := std.CodeBlock(p.preLang, content)
			n.Span = ir.NewSpan(p.preStart, end)
			p.inPre = false
			p.appendChild(n)
		}
		return
	}

	// Find the matching open element; ignore stray end tags.
	idx := -1
	for i := len(p.stack) - 1; i >= 1; i-- {
		if p.stack[i].tag == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	// Mis-nested inner elements close along with the outer one.
	for len(p.stack) > idx {
		f := p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]
		if f.node == nil {
			continue
		}
		f.node.Span = ir.NewSpan(f.start, end)
		if f.sawTH && f.node.Kind == std.KindTableRow {
			f.node.Kind = std.KindTableHeader
		}
		if f.node.Kind == std.KindCode {
			// Inline code carries its text as a property, not children.
			f.node.Props.Set(std.PropContent, ir.String(flattenText(f.node)))
			f.node.Children = nil
		}
		if blockContainer[f.tag] {
			f.node.Children = wrapInlines(f.node.Children)
		}
	}
}

// Containers whose stray inline children get wrapped into paragraphs.
var blockContainer = map[string]bool{
	"blockquote": true, "li": true, "div": true, "figure": true,
}

// wrapInlines groups runs of inline nodes into paragraph nodes so block
// containers hold blocks only.
func wrapInlines(children []*ir.Node) []*ir.Node {
	var out []*ir.Node
	var run []*ir.Node
	flush := func() {
		if len(run) == 0 {
			return
		}
		para := std.Para(run...)
		if first, last := run[0].Span, run[len(run)-1].Span; first != nil && last != nil {
			para.Span = ir.NewSpan(first.Start, last.End)
		}
		out = append(out, para)
		run = nil
	}
	for _, c := range children {
		if std.IsInline(c.Kind) {
			run = append(run, c)
			continue
		}
		flush()
		out = append(out, c)
	}
	flush()
	return out
}

func languageFromClass(class string) string {
	for _, c := range strings.Fields(class) {
		if lang, ok := strings.CutPrefix(c, "language-"); ok {
			return lang
		}
	}
	return ""
}

// flattenText concatenates the text of every text node under n. Markup
// nested inside an inline code element collapses to its plain text.
func flattenText(n *ir.Node) string {
	var b strings.Builder
	ir.Walk(n, func(c *ir.Node) ir.VisitResult {
		if c.Kind == std.KindText {
			b.WriteString(c.TextContent())
		}
		return ir.Continue
	})
	return b.String()
}

func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			space = true
		default:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		}
	}
	out := b.String()
	if space && out != "" {
		out += " "
	}
	if strings.HasPrefix(s, " ") || strings.HasPrefix(s, "\t") {
		// Leading space survives so "a <em>b</em>" keeps its gap.
		return " " + out
	}
	return out
}
