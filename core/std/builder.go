package std

import "github.com/docfold/docfold/core/ir"

// Doc builds a document whose root holds the given block nodes.
func Doc(blocks ...*ir.Node) *ir.Document {
	doc := ir.NewDocument()
	doc.Content.WithChildren(blocks...)
	return doc
}

// Heading builds a heading node of the given level.
func Heading(level int64, inlines ...*ir.Node) *ir.Node {
	return ir.NewNode(KindHeading).
		WithProp(PropLevel, ir.Int(level)).
		WithChildren(inlines...)
}

// Para builds a paragraph node.
func Para(inlines ...*ir.Node) *ir.Node {
	return ir.NewNode(KindParagraph).WithChildren(inlines...)
}

// Text builds a plain text node.
func Text(content string) *ir.Node {
	return ir.Text(content)
}

// Emphasis builds an emphasis node.
func Emphasis(inlines ...*ir.Node) *ir.Node {
	return ir.NewNode(KindEmphasis).WithChildren(inlines...)
}

// Strong builds a strong node.
func Strong(inlines ...*ir.Node) *ir.Node {
	return ir.NewNode(KindStrong).WithChildren(inlines...)
}

// Code builds an inline code node.
func Code(content string) *ir.Node {
	return ir.NewNode(KindCode).WithProp(PropContent, ir.String(content))
}

// CodeBlock builds a code block node; lang may be empty.
func CodeBlock(lang, content string) *ir.Node {
	n := ir.NewNode(KindCodeBlock).WithProp(PropContent, ir.String(content))
	if lang != "" {
		n.WithProp(PropLanguage, ir.String(lang))
	}
	return n
}

// Link builds a link node around the given inlines.
func Link(url string, inlines ...*ir.Node) *ir.Node {
	return ir.NewNode(KindLink).
		WithProp(PropURL, ir.String(url)).
		WithChildren(inlines...)
}

// Image builds an image node; alt may be empty.
func Image(url, alt string) *ir.Node {
	n := ir.NewNode(KindImage).WithProp(PropURL, ir.String(url))
	if alt != "" {
		n.WithProp(PropAlt, ir.String(alt))
	}
	return n
}

// Blockquote builds a block quotation around the given blocks.
func Blockquote(blocks ...*ir.Node) *ir.Node {
	return ir.NewNode(KindBlockquote).WithChildren(blocks...)
}

// BulletList builds an unordered list of the given items.
func BulletList(items ...*ir.Node) *ir.Node {
	return ir.NewNode(KindList).
		WithProp(PropOrdered, ir.Bool(false)).
		WithChildren(items...)
}

// OrderedList builds an ordered list of the given items.
func OrderedList(items ...*ir.Node) *ir.Node {
	return ir.NewNode(KindList).
		WithProp(PropOrdered, ir.Bool(true)).
		WithChildren(items...)
}

// Item builds a list item around the given blocks.
func Item(blocks ...*ir.Node) *ir.Node {
	return ir.NewNode(KindListItem).WithChildren(blocks...)
}

// HorizontalRule builds a thematic break node.
func HorizontalRule() *ir.Node {
	return ir.NewNode(KindHorizontalRule)
}

// LineBreak builds a hard line break node.
func LineBreak() *ir.Node {
	return ir.NewNode(KindLineBreak)
}

// SoftBreak builds a soft line break node.
func SoftBreak() *ir.Node {
	return ir.NewNode(KindSoftBreak)
}

// RawBlock builds a raw block owned by the named format.
func RawBlock(format, content string) *ir.Node {
	return ir.NewNode(KindRawBlock).
		WithProp(PropFormat, ir.String(format)).
		WithProp(PropContent, ir.String(content))
}

// IsBlock reports whether kind is one of the standard block-level kinds.
func IsBlock(kind string) bool {
	switch kind {
	case KindDocument, KindParagraph, KindHeading, KindCodeBlock, KindBlockquote,
		KindList, KindListItem, KindTable, KindTableRow, KindTableCell,
		KindTableHeader, KindFigure, KindCaption, KindHorizontalRule, KindDiv,
		KindRawBlock:
		return true
	}
	return false
}

// IsInline reports whether kind is one of the standard inline-level kinds.
func IsInline(kind string) bool {
	switch kind {
	case KindText, KindEmphasis, KindStrong, KindStrikeout, KindUnderline,
		KindSubscript, KindSuperscript, KindCode, KindLink, KindImage,
		KindSpan, KindLineBreak, KindSoftBreak, KindRawInline:
		return true
	}
	return false
}
