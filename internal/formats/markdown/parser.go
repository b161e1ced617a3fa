package markdown

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-yaml"

	apperrors "github.com/docfold/docfold/core/errors"
	"github.com/docfold/docfold/core/ir"
	"github.com/docfold/docfold/core/std"
)

// Parser reads Markdown into the document IR.
type Parser struct{}

var (
	atxRe     = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*\s*$`)
	hrRe      = regexp.MustCompile(`^(-(\s*-){2,}|\*(\s*\*){2,}|_(\s*_){2,})\s*$`)
	fenceRe   = regexp.MustCompile("^(`{3,}|~{3,})\\s*(\\S*)\\s*$")
	bulletRe  = regexp.MustCompile(`^([-*+])\s+(.*)$`)
	orderedRe = regexp.MustCompile(`^(\d{1,9})[.)]\s+(.*)$`)
	setextRe  = regexp.MustCompile(`^(=+|-+)\s*$`)
)

// Parse implements ir.Parser. It accepts any valid UTF-8 byte sequence;
// constructs the parser cannot place become paragraphs rather than errors.
func (Parser) Parse(input []byte, opts ir.ParseOptions) (*ir.Result[*ir.Document], error) {
	if !utf8.Valid(input) {
		return nil, apperrors.Encoding(FormatName, "input is not valid UTF-8")
	}

	p := &parser{
		opts:  opts,
		doc:   ir.NewDocument(),
		hints: ir.NewProperties(),
	}

	lines := splitLines(string(input))
	lines = p.frontMatter(lines)
	p.doc.Content.Children = p.blocks(lines)

	if opts.PreserveSourceInfo {
		p.doc.Source = &ir.SourceInfo{Format: FormatName, Metadata: p.hints}
	}

	return ir.WithWarnings(p.doc, p.warnings), nil
}

type parser struct {
	opts     ir.ParseOptions
	doc      *ir.Document
	hints    ir.Properties
	warnings []ir.Warning
}

// line is one source line with its byte offset into the original input.
type line struct {
	text   string
	offset int
}

func splitLines(s string) []line {
	var lines []line
	offset := 0
	for offset <= len(s) {
		end := strings.IndexByte(s[offset:], '\n')
		if end < 0 {
			if offset < len(s) {
				lines = append(lines, line{text: strings.TrimSuffix(s[offset:], "\r"), offset: offset})
			}
			break
		}
		lines = append(lines, line{text: strings.TrimSuffix(s[offset:offset+end], "\r"), offset: offset})
		offset += end + 1
	}
	return lines
}

func (p *parser) warn(cat ir.Category, msg string, span *ir.Span) {
	p.warnings = append(p.warnings, ir.NewWarning(cat, msg).At(span))
}

func (p *parser) hint(key, value string) {
	if p.opts.PreserveSourceInfo && !p.hints.Contains(key) {
		p.hints.Set(key, ir.String(value))
	}
}

// frontMatter consumes a leading YAML block into document metadata and
// returns the remaining lines.
func (p *parser) frontMatter(lines []line) []line {
	if len(lines) == 0 || strings.TrimRight(lines[0].text, " ") != "---" {
		return lines
	}
	for i := 1; i < len(lines); i++ {
		t := strings.TrimRight(lines[i].text, " ")
		if t != "---" && t != "..." {
			continue
		}
		var body strings.Builder
		for _, l := range lines[1:i] {
			body.WriteString(l.text)
			body.WriteByte('\n')
		}
		var raw map[string]any
		if err := yaml.Unmarshal([]byte(body.String()), &raw); err != nil {
			p.warn(ir.AmbiguousInput, "front matter is not valid YAML; treated as content",
				ir.NewSpan(lines[0].offset, lines[i].offset+len(lines[i].text)))
			return lines
		}
		for key, v := range raw {
			p.doc.Metadata.Set(key, yamlToProp(v))
		}
		return lines[i+1:]
	}
	return lines
}

func yamlToProp(v any) ir.PropValue {
	switch t := v.(type) {
	case string:
		return ir.String(t)
	case bool:
		return ir.Bool(t)
	case int:
		return ir.Int(int64(t))
	case int64:
		return ir.Int(t)
	case uint64:
		return ir.Int(int64(t))
	case float64:
		return ir.Float(t)
	case []any:
		items := make([]ir.PropValue, len(t))
		for i, item := range t {
			items[i] = yamlToProp(item)
		}
		return ir.List(items...)
	case map[string]any:
		props := ir.NewProperties()
		for k, item := range t {
			props.Set(k, yamlToProp(item))
		}
		return ir.MapValue(props)
	default:
		return ir.String(fmt.Sprint(v))
	}
}

// blocks parses a run of lines into block nodes.
func (p *parser) blocks(lines []line) []*ir.Node {
	var out []*ir.Node
	i := 0
	for i < len(lines) {
		l := lines[i]
		text := l.text
		trimmed := strings.TrimSpace(text)

		switch {
		case trimmed == "":
			i++

		case atxRe.MatchString(trimmed):
			m := atxRe.FindStringSubmatch(trimmed)
			p.hint(hintHeadingStyle, "atx")
			n := std.Heading(int64(len(m[1])), p.inlines(m[2])...)
			n.Span = ir.NewSpan(l.offset, l.offset+len(text))
			out = append(out, n)
			i++

		case fenceRe.MatchString(trimmed):
			node, next := p.fencedCode(lines, i)
			out = append(out, node)
			i = next

		case hrRe.MatchString(trimmed):
			n := std.HorizontalRule()
			n.Span = ir.NewSpan(l.offset, l.offset+len(text))
			out = append(out, n)
			i++

		case strings.HasPrefix(trimmed, ">"):
			node, next := p.blockquote(lines, i)
			out = append(out, node)
			i = next

		case bulletRe.MatchString(text):
			node, next := p.list(lines, i, false)
			out = append(out, node)
			i = next

		case orderedRe.MatchString(text):
			node, next := p.list(lines, i, true)
			out = append(out, node)
			i = next

		default:
			node, next := p.paragraph(lines, i)
			out = append(out, node)
			i = next
		}
	}
	return out
}

func (p *parser) fencedCode(lines []line, start int) (*ir.Node, int) {
	open := fenceRe.FindStringSubmatch(strings.TrimSpace(lines[start].text))
	marker, lang := open[1], open[2]
	p.hint(hintFence, marker[:1])

	var body []string
	i := start + 1
	closed := false
	for ; i < len(lines); i++ {
		t := strings.TrimSpace(lines[i].text)
		if strings.HasPrefix(t, marker[:1]) && len(strings.Trim(t, marker[:1])) == 0 && len(t) >= len(marker) {
			closed = true
			i++
			break
		}
		body = append(body, lines[i].text)
	}

	span := ir.NewSpan(lines[start].offset, lines[i-1].offset+len(lines[i-1].text))
	if !closed {
		p.warn(ir.AmbiguousInput, "unterminated code fence; ran to end of input", span)
	}

	content := strings.Join(body, "\n")
	if content != "" {
		content += "\n"
	}
	n := std.CodeBlock(lang, content)
	n.Span = span
	return n, i
}

func (p *parser) blockquote(lines []line, start int) (*ir.Node, int) {
	var inner []line
	i := start
	for ; i < len(lines); i++ {
		t := strings.TrimSpace(lines[i].text)
		if !strings.HasPrefix(t, ">") {
			break
		}
		stripped := strings.TrimPrefix(t, ">")
		stripped = strings.TrimPrefix(stripped, " ")
		inner = append(inner, line{text: stripped, offset: lines[i].offset + (len(lines[i].text) - len(stripped))})
	}
	n := std.Blockquote(p.blocks(inner)...)
	n.Span = ir.NewSpan(lines[start].offset, lines[i-1].offset+len(lines[i-1].text))
	return n, i
}

func (p *parser) list(lines []line, start int, ordered bool) (*ir.Node, int) {
	itemRe := bulletRe
	if ordered {
		itemRe = orderedRe
	}

	var items []*ir.Node
	var startNum int64 = 1
	i := start
	for i < len(lines) {
		m := itemRe.FindStringSubmatch(lines[i].text)
		if m == nil {
			break
		}
		if ordered {
			if len(items) == 0 {
				startNum, _ = strconv.ParseInt(m[1], 10, 64)
			}
		} else {
			p.hint(hintBullet, m[1])
		}

		rest := m[len(m)-1]
		itemLines := []line{{text: rest, offset: lines[i].offset + (len(lines[i].text) - len(rest))}}
		i++
		// Continuation lines are indented and not themselves new items.
		for i < len(lines) {
			t := lines[i].text
			if strings.TrimSpace(t) == "" || itemRe.MatchString(t) {
				break
			}
			if !strings.HasPrefix(t, "  ") && !strings.HasPrefix(t, "\t") {
				break
			}
			trimmed := strings.TrimLeft(t, " \t")
			itemLines = append(itemLines, line{text: trimmed, offset: lines[i].offset + (len(t) - len(trimmed))})
			i++
		}
		items = append(items, std.Item(p.blocks(itemLines)...))
	}

	var n *ir.Node
	if ordered {
		n = std.OrderedList(items...)
		if startNum != 1 {
			n.Props.Set(std.PropStart, ir.Int(startNum))
		}
	} else {
		n = std.BulletList(items...)
	}
	n.Span = ir.NewSpan(lines[start].offset, lines[i-1].offset+len(lines[i-1].text))
	return n, i
}

// blockStart reports whether a line opens a non-paragraph block.
func blockStart(text string) bool {
	trimmed := strings.TrimSpace(text)
	return atxRe.MatchString(trimmed) || fenceRe.MatchString(trimmed) ||
		hrRe.MatchString(trimmed) || strings.HasPrefix(trimmed, ">") ||
		bulletRe.MatchString(text) || orderedRe.MatchString(text)
}

func (p *parser) paragraph(lines []line, start int) (*ir.Node, int) {
	var para []line
	i := start
	for ; i < len(lines); i++ {
		text := lines[i].text
		if strings.TrimSpace(text) == "" {
			break
		}
		// A setext underline after a single gathered line turns it into a heading.
		if len(para) == 1 && setextRe.MatchString(strings.TrimSpace(text)) {
			level := int64(1)
			if strings.TrimSpace(text)[0] == '-' {
				level = 2
			}
			p.hint(hintHeadingStyle, "setext")
			n := std.Heading(level, p.inlines(strings.TrimSpace(para[0].text))...)
			n.Span = ir.NewSpan(para[0].offset, lines[i].offset+len(text))
			return n, i + 1
		}
		if len(para) > 0 && blockStart(text) {
			break
		}
		para = append(para, lines[i])
	}

	var inlines []*ir.Node
	for idx, l := range para {
		if idx > 0 {
			if strings.HasSuffix(para[idx-1].text, "  ") {
				inlines = append(inlines, std.LineBreak())
			} else {
				inlines = append(inlines, std.SoftBreak())
			}
		}
		inlines = append(inlines, p.inlines(strings.TrimRight(strings.TrimSpace(l.text), " "))...)
	}

	n := std.Para(inlines...)
	n.Span = ir.NewSpan(para[0].offset, para[len(para)-1].offset+len(para[len(para)-1].text))
	return n, i
}

// inlines parses inline markup within one logical line of text.
func (p *parser) inlines(s string) []*ir.Node {
	var out []*ir.Node
	var plain strings.Builder

	flush := func() {
		if plain.Len() > 0 {
			out = append(out, ir.Text(plain.String()))
			plain.Reset()
		}
	}

	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			plain.WriteByte(s[i+1])
			i += 2

		case c == '`':
			run := runLen(s[i:], '`')
			closer := strings.Index(s[i+run:], strings.Repeat("`", run))
			if closer < 0 {
				plain.WriteString(s[i : i+run])
				i += run
				continue
			}
			flush()
			out = append(out, std.Code(strings.TrimSpace(s[i+run:i+run+closer])))
			i += run + closer + run

		case c == '*' || c == '_':
			node, consumed := p.emphasis(s[i:])
			if node == nil {
				plain.WriteByte(c)
				i++
				continue
			}
			flush()
			out = append(out, node)
			i += consumed

		case c == '!' && i+1 < len(s) && s[i+1] == '[':
			node, consumed := p.image(s[i:])
			if node == nil {
				plain.WriteByte(c)
				i++
				continue
			}
			flush()
			out = append(out, node)
			i += consumed

		case c == '[':
			node, consumed := p.link(s[i:])
			if node == nil {
				plain.WriteByte(c)
				i++
				continue
			}
			flush()
			out = append(out, node)
			i += consumed

		default:
			plain.WriteByte(c)
			i++
		}
	}
	flush()
	return out
}

func runLen(s string, c byte) int {
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	return n
}

// emphasis parses *em*, _em_, **strong**, and __strong__ at the start of s.
func (p *parser) emphasis(s string) (*ir.Node, int) {
	delim := s[0]
	double := len(s) > 1 && s[1] == delim
	marker := string(delim)
	if double {
		marker = marker + marker
	}
	inner := s[len(marker):]
	end := strings.Index(inner, marker)
	if end <= 0 {
		return nil, 0
	}
	content := inner[:end]
	if strings.TrimSpace(content) == "" {
		return nil, 0
	}
	p.hint(hintEmphasis, string(delim))
	children := p.inlines(content)
	if double {
		return std.Strong(children...), len(marker)*2 + end
	}
	return std.Emphasis(children...), len(marker)*2 + end
}

// bracketTarget parses "[label](target "title")" starting at '['. It returns
// the label, target, optional title, and bytes consumed, or ok=false.
func bracketTarget(s string) (label, target, title string, consumed int, ok bool) {
	if len(s) == 0 || s[0] != '[' {
		return "", "", "", 0, false
	}
	sep := strings.Index(s, "](")
	if sep < 0 {
		return "", "", "", 0, false
	}
	label = s[1:sep]
	rest := s[sep+2:]
	end := strings.IndexByte(rest, ')')
	if end < 0 {
		return "", "", "", 0, false
	}
	target = strings.TrimSpace(rest[:end])
	if q := strings.IndexByte(target, '"'); q >= 0 {
		title = strings.Trim(strings.TrimSpace(target[q:]), `"`)
		target = strings.TrimSpace(target[:q])
	}
	return label, target, title, sep + 2 + end + 1, true
}

func (p *parser) link(s string) (*ir.Node, int) {
	label, target, title, consumed, ok := bracketTarget(s)
	if !ok {
		return nil, 0
	}
	n := std.Link(target, p.inlines(label)...)
	if title != "" {
		n.Props.Set(std.PropTitle, ir.String(title))
	}
	return n, consumed
}

func (p *parser) image(s string) (*ir.Node, int) {
	alt, target, title, consumed, ok := bracketTarget(s[1:])
	if !ok {
		return nil, 0
	}
	n := std.Image(target, alt)
	if title != "" {
		n.Props.Set(std.PropTitle, ir.String(title))
	}
	if p.opts.EmbedResources {
		p.embedImage(n, target)
	}
	return n, consumed + 1
}

// embedImage inlines a local image file into the resource map. Remote and
// data URLs stay external references.
func (p *parser) embedImage(n *ir.Node, target string) {
	if target == "" || strings.Contains(target, "://") || strings.HasPrefix(target, "data:") {
		return
	}
	data, err := os.ReadFile(target)
	if err != nil {
		p.warn(ir.ContentLoss, "could not embed resource "+target+": "+err.Error(), n.Span)
		return
	}
	mediaType := mime.TypeByExtension(filepath.Ext(target))
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	id, err := p.doc.Embed(&ir.Resource{MediaType: mediaType, Data: data, URI: target})
	if err != nil {
		p.warn(ir.ContentLoss, "could not embed resource "+target+": "+err.Error(), n.Span)
		return
	}
	n.Props.Set(std.PropResourceID, ir.String(id))
}
