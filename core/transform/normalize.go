package transform

import (
	"strings"

	"github.com/docfold/docfold/core/ir"
	"github.com/docfold/docfold/core/std"
)

// ShiftHeadings shifts every heading level by Delta, clamped to [Min, Max].
// Useful when embedding one document inside another's heading hierarchy.
type ShiftHeadings struct {
	Delta int64
	Min   int64
	Max   int64
}

// NewShiftHeadings creates a shifter with the conventional 1-6 clamp range.
func NewShiftHeadings(delta int64) *ShiftHeadings {
	return &ShiftHeadings{Delta: delta, Min: 1, Max: 6}
}

// Name implements ir.Transformer.
func (s *ShiftHeadings) Name() string { return "shift_headings" }

// Transform implements ir.Transformer.
func (s *ShiftHeadings) Transform(doc *ir.Document) *ir.Document {
	doc = doc.Clone()
	doc.Content = ir.Map(doc.Content, func(n *ir.Node) *ir.Node {
		if n.Kind == std.KindHeading {
			level := n.Props.GetInt(std.PropLevel, 1) + s.Delta
			if level < s.Min {
				level = s.Min
			}
			if level > s.Max {
				level = s.Max
			}
			n.Props.Set(std.PropLevel, ir.Int(level))
		}
		return n
	})
	return doc
}

// StripEmpty removes text nodes holding only whitespace and paragraph, span,
// and div nodes left with no children.
type StripEmpty struct{}

// Name implements ir.Transformer.
func (StripEmpty) Name() string { return "strip_empty" }

// Transform implements ir.Transformer.
func (StripEmpty) Transform(doc *ir.Document) *ir.Document {
	doc = doc.Clone()
	doc.Content = ir.Map(doc.Content, func(n *ir.Node) *ir.Node {
		kept := n.Children[:0]
		for _, c := range n.Children {
			if !isEmptyNode(c) {
				kept = append(kept, c)
			}
		}
		n.Children = kept
		return n
	})
	return doc
}

func isEmptyNode(n *ir.Node) bool {
	switch n.Kind {
	case std.KindText:
		return strings.TrimSpace(n.TextContent()) == ""
	case std.KindParagraph, std.KindSpan, std.KindDiv:
		return len(n.Children) == 0
	}
	return false
}

// MergeText merges adjacent text nodes into one, concatenating content.
type MergeText struct{}

// Name implements ir.Transformer.
func (MergeText) Name() string { return "merge_text" }

// Transform implements ir.Transformer.
func (MergeText) Transform(doc *ir.Document) *ir.Document {
	doc = doc.Clone()
	doc.Content = mergeTextNode(doc.Content)
	return doc
}

func mergeTextNode(n *ir.Node) *ir.Node {
	for i, c := range n.Children {
		n.Children[i] = mergeTextNode(c)
	}

	var merged []*ir.Node
	for _, c := range n.Children {
		if c.Kind == std.KindText && len(merged) > 0 {
			last := merged[len(merged)-1]
			// Only plain text merges; a text node carrying extra properties
			// (styles, format hints) keeps its identity.
			if last.Kind == std.KindText && last.Props.Len() == 1 && c.Props.Len() == 1 {
				last.Props.Set(std.PropContent, ir.String(last.TextContent()+c.TextContent()))
				last.Span = nil
				continue
			}
		}
		merged = append(merged, c)
	}
	n.Children = merged
	return n
}

// UnwrapSingleChild replaces property-less div and span wrappers holding a
// single child with that child.
type UnwrapSingleChild struct{}

// Name implements ir.Transformer.
func (UnwrapSingleChild) Name() string { return "unwrap_single_child" }

// Transform implements ir.Transformer.
func (UnwrapSingleChild) Transform(doc *ir.Document) *ir.Document {
	doc = doc.Clone()
	doc.Content = unwrapNode(doc.Content)
	return doc
}

func unwrapNode(n *ir.Node) *ir.Node {
	for i, c := range n.Children {
		n.Children[i] = unwrapNode(c)
	}
	if (n.Kind == std.KindDiv || n.Kind == std.KindSpan) &&
		len(n.Children) == 1 && n.Props.IsEmpty() {
		return n.Children[0]
	}
	return n
}

// Func adapts a plain function into a named transformer.
func Func(name string, fn func(*ir.Document) *ir.Document) ir.Transformer {
	return ir.TransformerFunc{TransformerName: name, Fn: fn}
}
