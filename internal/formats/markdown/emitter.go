package markdown

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/docfold/docfold/core/ir"
	"github.com/docfold/docfold/core/std"
)

// Emitter writes a document as Markdown. When EmitOptions.UseSourceInfo is
// set and the document was parsed from Markdown, the emitter reproduces the
// recorded heading, fence, bullet, and emphasis styles.
type Emitter struct{}

// Emit implements ir.Emitter.
func (Emitter) Emit(doc *ir.Document, opts ir.EmitOptions) (*ir.Result[[]byte], error) {
	e := &emitter{
		headingStyle: "atx",
		fence:        "`",
		bullet:       "-",
		emphasis:     "*",
	}
	if opts.UseSourceInfo && doc.Source != nil && doc.Source.Format == FormatName {
		h := doc.Source.Metadata
		e.headingStyle = pickHint(h, hintHeadingStyle, e.headingStyle)
		e.fence = pickHint(h, hintFence, e.fence)
		e.bullet = pickHint(h, hintBullet, e.bullet)
		e.emphasis = pickHint(h, hintEmphasis, e.emphasis)
	}

	var out strings.Builder
	e.frontMatter(&out, doc.Metadata)

	rendered := e.blocks(doc.Content.Children)
	out.WriteString(strings.Join(rendered, "\n\n"))
	if len(rendered) > 0 {
		out.WriteByte('\n')
	}

	return ir.WithWarnings([]byte(out.String()), e.warnings), nil
}

func pickHint(h ir.Properties, key, def string) string {
	if v := h.GetString(key); v != "" {
		return v
	}
	return def
}

type emitter struct {
	headingStyle string
	fence        string
	bullet       string
	emphasis     string
	warnings     []ir.Warning
}

func (e *emitter) warn(cat ir.Category, msg string, span *ir.Span) {
	e.warnings = append(e.warnings, ir.NewWarning(cat, msg).At(span))
}

// styleCheck records a warning for style properties Markdown cannot carry.
func (e *emitter) styleCheck(n *ir.Node) {
	for _, key := range n.Props.Keys() {
		if strings.HasPrefix(key, std.StylePrefix) {
			e.warn(ir.StyleLoss, "markdown cannot express "+key+" on "+n.Kind, n.Span)
		}
	}
}

func (e *emitter) frontMatter(out *strings.Builder, meta ir.Properties) {
	if meta.IsEmpty() {
		return
	}
	body := make(yaml.MapSlice, 0, meta.Len())
	for _, key := range meta.Keys() {
		v, _ := meta.Get(key)
		body = append(body, yaml.MapItem{Key: key, Value: propToYAML(v)})
	}
	encoded, err := yaml.Marshal(body)
	if err != nil {
		e.warn(ir.ContentLoss, "document metadata could not be encoded as YAML: "+err.Error(), nil)
		return
	}
	out.WriteString("---\n")
	out.Write(encoded)
	out.WriteString("---\n\n")
}

func propToYAML(v ir.PropValue) any {
	switch v.Type() {
	case ir.StringType:
		s, _ := v.AsString()
		return s
	case ir.IntType:
		n, _ := v.AsInt()
		return n
	case ir.FloatType:
		f, _ := v.AsFloat()
		return f
	case ir.BoolType:
		b, _ := v.AsBool()
		return b
	case ir.ListType:
		items, _ := v.AsList()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = propToYAML(item)
		}
		return out
	default:
		props, _ := v.AsMap()
		out := make(yaml.MapSlice, 0, props.Len())
		for _, key := range props.Keys() {
			item, _ := props.Get(key)
			out = append(out, yaml.MapItem{Key: key, Value: propToYAML(item)})
		}
		return out
	}
}

// blocks renders each block node to its Markdown text, skipping nodes that
// produce no output.
func (e *emitter) blocks(nodes []*ir.Node) []string {
	var out []string
	for _, n := range nodes {
		if text, ok := e.block(n); ok {
			out = append(out, text)
		}
	}
	return out
}

func (e *emitter) block(n *ir.Node) (string, bool) {
	e.styleCheck(n)
	switch n.Kind {
	case std.KindHeading:
		return e.heading(n), true

	case std.KindParagraph:
		return e.inlines(n.Children), true

	case std.KindCodeBlock:
		return e.codeBlock(n), true

	case std.KindBlockquote:
		inner := strings.Join(e.blocks(n.Children), "\n\n")
		var quoted []string
		for _, l := range strings.Split(inner, "\n") {
			if l == "" {
				quoted = append(quoted, ">")
			} else {
				quoted = append(quoted, "> "+l)
			}
		}
		return strings.Join(quoted, "\n"), true

	case std.KindList:
		return e.list(n), true

	case std.KindHorizontalRule:
		return "---", true

	case std.KindTable:
		return e.table(n)

	case std.KindRawBlock:
		format := n.Props.GetString(std.PropFormat)
		if format == FormatName {
			return strings.TrimRight(n.Props.GetString(std.PropContent), "\n"), true
		}
		e.warn(ir.ContentLoss, "dropped raw "+format+" block", n.Span)
		return "", false

	case std.KindDiv, std.KindFigure:
		e.warn(ir.StructureLoss, "markdown cannot express "+n.Kind+"; emitted its contents", n.Span)
		if inner := e.blocks(n.Children); len(inner) > 0 {
			return strings.Join(inner, "\n\n"), true
		}
		return "", false

	default:
		if out := e.inlines(n.Children); out != "" {
			e.warn(ir.StructureLoss, "unknown block "+n.Kind+" emitted as paragraph", n.Span)
			return out, true
		}
		if text := n.TextContent(); text != "" {
			e.warn(ir.StructureLoss, "unknown block "+n.Kind+" emitted as paragraph", n.Span)
			return escapeText(text), true
		}
		e.warn(ir.ContentLoss, "dropped unknown block "+n.Kind, n.Span)
		return "", false
	}
}

func (e *emitter) heading(n *ir.Node) string {
	level := n.Props.GetInt(std.PropLevel, 1)
	text := e.inlines(n.Children)
	if e.headingStyle == "setext" && level <= 2 {
		underline := "="
		if level == 2 {
			underline = "-"
		}
		width := len(text)
		if width < 3 {
			width = 3
		}
		return text + "\n" + strings.Repeat(underline, width)
	}
	return strings.Repeat("#", int(level)) + " " + text
}

func (e *emitter) codeBlock(n *ir.Node) string {
	content := n.Props.GetString(std.PropContent)
	lang := n.Props.GetString(std.PropLanguage)

	// The fence must be longer than any fence-character run in the content.
	fenceLen := 3
	for run := range longestRuns(content, e.fence[0]) {
		if run >= fenceLen {
			fenceLen = run + 1
		}
	}
	fence := strings.Repeat(e.fence, fenceLen)

	var b strings.Builder
	b.WriteString(fence)
	b.WriteString(lang)
	b.WriteByte('\n')
	b.WriteString(content)
	if content != "" && !strings.HasSuffix(content, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(fence)
	return b.String()
}

// longestRuns yields the length of every maximal run of c in s.
func longestRuns(s string, c byte) map[int]struct{} {
	runs := make(map[int]struct{})
	n := 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] == c {
			n++
			continue
		}
		if n > 0 {
			runs[n] = struct{}{}
			n = 0
		}
	}
	return runs
}

func (e *emitter) list(n *ir.Node) string {
	ordered := n.Props.GetBool(std.PropOrdered)
	num := n.Props.GetInt(std.PropStart, 1)

	var lines []string
	for _, item := range n.Children {
		marker := e.bullet + " "
		if ordered {
			marker = strconv.FormatInt(num, 10) + ". "
			num++
		}
		indent := strings.Repeat(" ", len(marker))
		inner := strings.Join(e.blocks(item.Children), "\n\n")
		for j, l := range strings.Split(inner, "\n") {
			switch {
			case j == 0:
				lines = append(lines, marker+l)
			case l == "":
				lines = append(lines, "")
			default:
				lines = append(lines, indent+l)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// table renders a pipe table. Cells are flattened to single-line text; block
// content inside cells loses its structure.
func (e *emitter) table(n *ir.Node) (string, bool) {
	var rows [][]string
	headerRows := 0
	for _, row := range n.Children {
		if row.Kind != std.KindTableRow && row.Kind != std.KindTableHeader {
			continue
		}
		var cells []string
		for _, cell := range row.Children {
			text := strings.ReplaceAll(e.inlines(cell.Children), "\n", " ")
			cells = append(cells, strings.ReplaceAll(text, "|", "\\|"))
		}
		if row.Kind == std.KindTableHeader && len(rows) == headerRows {
			headerRows++
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		e.warn(ir.ContentLoss, "dropped empty table", n.Span)
		return "", false
	}
	if headerRows == 0 {
		// Pipe tables require a header row; promote the first row.
		e.warn(ir.StructureLoss, "table has no header row; first row promoted", n.Span)
		headerRows = 1
	}

	width := 0
	for _, cells := range rows {
		if len(cells) > width {
			width = len(cells)
		}
	}

	var lines []string
	for i, cells := range rows {
		for len(cells) < width {
			cells = append(cells, "")
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
		if i == headerRows-1 {
			sep := make([]string, width)
			for j := range sep {
				sep[j] = "---"
			}
			lines = append(lines, "| "+strings.Join(sep, " | ")+" |")
		}
	}
	return strings.Join(lines, "\n"), true
}

func (e *emitter) inlines(nodes []*ir.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(e.inline(n))
	}
	return b.String()
}

func (e *emitter) inline(n *ir.Node) string {
	e.styleCheck(n)
	switch n.Kind {
	case std.KindText:
		return escapeText(n.Props.GetString(std.PropContent))

	case std.KindEmphasis:
		return e.emphasis + e.inlines(n.Children) + e.emphasis

	case std.KindStrong:
		d := e.emphasis + e.emphasis
		return d + e.inlines(n.Children) + d

	case std.KindStrikeout:
		return "~~" + e.inlines(n.Children) + "~~"

	case std.KindCode:
		return codeSpan(n.Props.GetString(std.PropContent))

	case std.KindLink:
		return "[" + e.inlines(n.Children) + "](" + linkTarget(n) + ")"

	case std.KindImage:
		return "![" + escapeText(n.Props.GetString(std.PropAlt)) + "](" + linkTarget(n) + ")"

	case std.KindLineBreak:
		return "  \n"

	case std.KindSoftBreak:
		return "\n"

	case std.KindRawInline:
		format := n.Props.GetString(std.PropFormat)
		if format == FormatName {
			return n.Props.GetString(std.PropContent)
		}
		e.warn(ir.ContentLoss, "dropped raw "+format+" inline", n.Span)
		return ""

	case std.KindUnderline, std.KindSubscript, std.KindSuperscript, std.KindSpan:
		e.warn(ir.StyleLoss, "markdown cannot express "+n.Kind, n.Span)
		return e.inlines(n.Children)

	default:
		if len(n.Children) > 0 || n.Props.Contains(std.PropContent) {
			e.warn(ir.StructureLoss, fmt.Sprintf("unknown inline %s emitted as text", n.Kind), n.Span)
			if len(n.Children) > 0 {
				return e.inlines(n.Children)
			}
			return escapeText(n.Props.GetString(std.PropContent))
		}
		e.warn(ir.ContentLoss, "dropped unknown inline "+n.Kind, n.Span)
		return ""
	}
}

func linkTarget(n *ir.Node) string {
	target := n.Props.GetString(std.PropURL)
	if title := n.Props.GetString(std.PropTitle); title != "" {
		target += ` "` + title + `"`
	}
	return target
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// codeSpan wraps content in enough backticks to survive backticks inside it.
func codeSpan(content string) string {
	fenceLen := 1
	for run := range longestRuns(content, '`') {
		if run >= fenceLen {
			fenceLen = run + 1
		}
	}
	fence := strings.Repeat("`", fenceLen)
	if fenceLen > 1 {
		return fence + " " + content + " " + fence
	}
	return fence + content + fence
}
