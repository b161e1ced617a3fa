// Package std provides the standard node-kind and property-key vocabulary
// layered on top of the open core IR, plus builder helpers for constructing
// documents programmatically. The core treats kinds and keys as opaque
// strings; this package is the convention format modules share.
package std

// Standard block-level node kinds.
const (
	// KindDocument is the root document container.
	KindDocument = "document"
	// KindParagraph is a paragraph of text.
	KindParagraph = "paragraph"
	// KindHeading is a heading; depth is the "level" property.
	KindHeading = "heading"
	// KindCodeBlock is a fenced or indented code block; "content" holds the code.
	KindCodeBlock = "code_block"
	// KindBlockquote is a block quotation.
	KindBlockquote = "blockquote"
	// KindList is a list; "ordered" distinguishes numbering.
	KindList = "list"
	// KindListItem is an item in a list.
	KindListItem = "list_item"
	// KindTable is a table.
	KindTable = "table"
	// KindTableRow is a row in a table.
	KindTableRow = "table_row"
	// KindTableCell is a cell in a table row.
	KindTableCell = "table_cell"
	// KindTableHeader is a header cell.
	KindTableHeader = "table_header"
	// KindFigure is a figure with optional caption.
	KindFigure = "figure"
	// KindCaption is a caption for figures or tables.
	KindCaption = "caption"
	// KindHorizontalRule is a thematic break.
	KindHorizontalRule = "horizontal_rule"
	// KindDiv is a generic block container.
	KindDiv = "div"
	// KindRawBlock is raw format-specific block content; "format" names the format.
	KindRawBlock = "raw_block"
)

// Standard inline-level node kinds.
const (
	// KindText is plain text content; "content" holds the text.
	KindText = "text"
	// KindEmphasis is emphasized (typically italic) text.
	KindEmphasis = "emphasis"
	// KindStrong is strong (typically bold) text.
	KindStrong = "strong"
	// KindStrikeout is struck-through text.
	KindStrikeout = "strikeout"
	// KindUnderline is underlined text.
	KindUnderline = "underline"
	// KindSubscript is subscript text.
	KindSubscript = "subscript"
	// KindSuperscript is superscript text.
	KindSuperscript = "superscript"
	// KindCode is inline code.
	KindCode = "code"
	// KindLink is a hyperlink; see PropURL and PropTitle.
	KindLink = "link"
	// KindImage is an image; see PropURL, PropAlt, PropResourceID.
	KindImage = "image"
	// KindSpan is a generic inline container.
	KindSpan = "span"
	// KindLineBreak is a hard line break.
	KindLineBreak = "line_break"
	// KindSoftBreak is a soft line break that may render as a space.
	KindSoftBreak = "soft_break"
	// KindRawInline is raw format-specific inline content.
	KindRawInline = "raw_inline"
)
