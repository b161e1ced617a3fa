// Package markdown provides the Markdown format module: a block/inline
// parser and a matching emitter over the common Markdown constructs (ATX and
// setext headings, fenced code, blockquotes, lists, thematic breaks,
// emphasis, links, images) plus YAML front matter for document metadata.
//
// With ParseOptions.PreserveSourceInfo the parser records the author's
// formatting choices (heading style, fence character, bullet marker,
// emphasis delimiter) in the document's SourceInfo; the emitter honors them
// under EmitOptions.UseSourceInfo, which is what makes parse-emit-parse
// structurally idempotent for this module.
package markdown

import (
	"github.com/docfold/docfold/core/registry"
)

// FormatName is the registry identifier.
const FormatName = "markdown"

// Source-info metadata keys recorded by the parser.
const (
	hintHeadingStyle = "heading_style" // "atx" or "setext"
	hintFence        = "fence"         // "`" or "~"
	hintBullet       = "bullet"        // "-", "*", or "+"
	hintEmphasis     = "emphasis"      // "*" or "_"
)

func init() {
	registry.Register(&registry.Format{
		Name:       FormatName,
		Extensions: []string{"md", "markdown", "mdown"},
		Roundtrip:  true,
		Parser:     Parser{},
		Emitter:    Emitter{},
	})
}
