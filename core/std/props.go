package std

// Semantic, format-independent property keys.
const (
	// PropLevel is the heading depth (Int, 1-6 by convention).
	PropLevel = "level"
	// PropOrdered marks a list as numbered (Bool).
	PropOrdered = "ordered"
	// PropStart is the first number of an ordered list (Int).
	PropStart = "start"
	// PropTight marks a list as tight (no inter-item blank lines; Bool).
	PropTight = "tight"
	// PropLanguage is a code block's language tag (String).
	PropLanguage = "language"
	// PropURL is a link or image target (String).
	PropURL = "url"
	// PropTitle is a link/image title (String).
	PropTitle = "title"
	// PropAlt is an image's alternative text (String).
	PropAlt = "alt"
	// PropContent is the text payload of text/code nodes (String).
	PropContent = "content"
	// PropID is an anchor identifier (String).
	PropID = "id"
	// PropFormat names the format owning a raw_block/raw_inline node (String).
	PropFormat = "format"
	// PropResourceID references an embedded resource by id (String). The
	// reference is logical: removing the node does not remove the resource.
	PropResourceID = "resource_id"
)

// Presentational hint keys (the "style:" namespace).
const (
	StyleFont  = "style:font"
	StyleSize  = "style:size"
	StyleColor = "style:color"
	StyleAlign = "style:align"
)

// Page and positioning hint keys (the "layout:" namespace).
const (
	LayoutPageBreak = "layout:page_break"
	LayoutColumn    = "layout:column"
	LayoutFloat     = "layout:float"
)

// Namespace prefixes for format-private keys and kinds.
const (
	StylePrefix  = "style:"
	LayoutPrefix = "layout:"
)
