// Package plain provides the plain-text emitter. Plain text is the floor of
// the fidelity ladder: structure is flattened to blank-line-separated blocks
// and all styling is dropped, with warnings reporting exactly what degraded.
// There is no plain-text parser; the format is write-only in the registry.
package plain

import (
	"strconv"
	"strings"

	apperrors "github.com/docfold/docfold/core/errors"
	"github.com/docfold/docfold/core/ir"
	"github.com/docfold/docfold/core/registry"
	"github.com/docfold/docfold/core/std"
)

// FormatName is the registry identifier.
const FormatName = "plain"

func init() {
	registry.Register(&registry.Format{
		Name:       FormatName,
		Extensions: []string{"txt", "text"},
		Emitter:    Emitter{},
	})
}

// Emitter renders the document as plain text.
type Emitter struct{}

// Emit implements ir.Emitter.
func (Emitter) Emit(doc *ir.Document, opts ir.EmitOptions) (*ir.Result[[]byte], error) {
	if doc == nil || doc.Content == nil {
		return nil, apperrors.Unrepresentable(FormatName, "document has no content node")
	}

	e := &emitter{}
	for _, block := range doc.Content.Children {
		e.block(block)
	}

	out := strings.Join(e.blocks, "\n\n")
	if out != "" {
		out += "\n"
	}
	return ir.WithWarnings([]byte(out), e.warnings), nil
}

type emitter struct {
	blocks   []string
	warnings []ir.Warning
}

func (e *emitter) warnAt(cat ir.Category, msg string, span *ir.Span) {
	e.warnings = append(e.warnings, ir.NewWarning(cat, msg).At(span))
}

func (e *emitter) block(n *ir.Node) {
	switch n.Kind {
	case std.KindParagraph:
		e.blocks = append(e.blocks, e.inlines(n.Children))
	case std.KindHeading:
		// Headings keep their text but lose their level styling.
		e.blocks = append(e.blocks, e.inlines(n.Children))
		e.warnAt(ir.StyleLoss, "heading level rendered as plain text", n.Span)
	case std.KindCodeBlock:
		e.blocks = append(e.blocks, strings.TrimRight(n.Props.GetString(std.PropContent), "\n"))
	case std.KindBlockquote:
		start := len(e.blocks)
		for _, c := range n.Children {
			e.block(c)
		}
		for i := start; i < len(e.blocks); i++ {
			e.blocks[i] = "  " + strings.ReplaceAll(e.blocks[i], "\n", "\n  ")
		}
	case std.KindList:
		e.list(n)
	case std.KindHorizontalRule:
		e.blocks = append(e.blocks, "* * *")
	case std.KindDiv:
		for _, c := range n.Children {
			e.block(c)
		}
	case std.KindRawBlock:
		e.warnAt(ir.ContentLoss, "raw "+n.Props.GetString(std.PropFormat)+" block dropped", n.Span)
	case std.KindTable:
		e.warnAt(ir.StructureLoss, "table flattened to rows of text", n.Span)
		ir.Walk(n, func(cell *ir.Node) ir.VisitResult {
			if cell.Kind == std.KindTableRow {
				e.blocks = append(e.blocks, e.inlines(cellTexts(cell)))
			}
			return ir.Continue
		})
	default:
		if text := e.inlines(n.Children); text != "" {
			e.blocks = append(e.blocks, text)
			e.warnAt(ir.StructureLoss, "block "+n.Kind+" flattened to plain text", n.Span)
		} else {
			e.warnAt(ir.ContentLoss, "block "+n.Kind+" dropped", n.Span)
		}
	}
}

func cellTexts(row *ir.Node) []*ir.Node {
	var inlines []*ir.Node
	for i, cell := range row.Children {
		if i > 0 {
			inlines = append(inlines, ir.Text("\t"))
		}
		inlines = append(inlines, cell.Children...)
	}
	return inlines
}

func (e *emitter) list(n *ir.Node) {
	ordered := n.Props.GetBool(std.PropOrdered)
	num := n.Props.GetInt(std.PropStart, 1)
	for _, item := range n.Children {
		marker := "- "
		if ordered {
			marker = strconv.FormatInt(num, 10) + ". "
			num++
		}
		start := len(e.blocks)
		for _, c := range item.Children {
			e.block(c)
		}
		if len(e.blocks) == start {
			e.blocks = append(e.blocks, "")
		}
		indent := strings.Repeat(" ", len(marker))
		for i := start; i < len(e.blocks); i++ {
			if i == start {
				e.blocks[i] = marker + strings.ReplaceAll(e.blocks[i], "\n", "\n"+indent)
			} else {
				e.blocks[i] = indent + strings.ReplaceAll(e.blocks[i], "\n", "\n"+indent)
			}
		}
	}
}

func (e *emitter) inlines(nodes []*ir.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		e.inline(&sb, n)
	}
	return sb.String()
}

func (e *emitter) inline(sb *strings.Builder, n *ir.Node) {
	switch n.Kind {
	case std.KindText, std.KindCode:
		if n.Props.Contains(std.StyleColor) || n.Props.Contains(std.StyleFont) {
			e.warnAt(ir.StyleLoss, "inline styling dropped", n.Span)
		}
		sb.WriteString(n.Props.GetString(std.PropContent))
	case std.KindEmphasis, std.KindStrong, std.KindStrikeout, std.KindUnderline,
		std.KindSubscript, std.KindSuperscript, std.KindSpan:
		e.warnAt(ir.StyleLoss, n.Kind+" styling dropped", n.Span)
		for _, c := range n.Children {
			e.inline(sb, c)
		}
	case std.KindLink:
		for _, c := range n.Children {
			e.inline(sb, c)
		}
		if url := n.Props.GetString(std.PropURL); url != "" {
			sb.WriteString(" <" + url + ">")
		}
	case std.KindImage:
		alt := n.Props.GetString(std.PropAlt)
		if alt == "" {
			alt = n.Props.GetString(std.PropURL)
		}
		sb.WriteString("[image: " + alt + "]")
		e.warnAt(ir.ContentLoss, "image reduced to alt text", n.Span)
	case std.KindLineBreak:
		sb.WriteString("\n")
	case std.KindSoftBreak:
		sb.WriteString(" ")
	case std.KindRawInline:
		e.warnAt(ir.ContentLoss, "raw "+n.Props.GetString(std.PropFormat)+" inline dropped", n.Span)
	default:
		e.warnAt(ir.UnsupportedFeature, "inline "+n.Kind+" rendered as its text content", n.Span)
		for _, c := range n.Children {
			e.inline(sb, c)
		}
	}
}
