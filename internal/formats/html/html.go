// Package html provides the HTML format module. The parser is built on the
// golang.org/x/net/html tokenizer and maps the structural subset of HTML
// onto the document model; tags outside the subset are kept as generic
// container nodes carrying an "html:tag" property so later emitters can
// degrade them deliberately instead of silently. The emitter writes escaped
// HTML5 and can inline embedded resources as data URLs.
package html

import (
	"github.com/docfold/docfold/core/registry"
)

// FormatName is the registry identifier.
const FormatName = "html"

// Properties recorded for constructs the document model has no slot for.
const (
	propTag   = "html:tag"
	propClass = "html:class"
	propStyle = "html:style"
)

func init() {
	registry.Register(&registry.Format{
		Name:       FormatName,
		Extensions: []string{"html", "htm", "xhtml"},
		Roundtrip:  false,
		Parser:     Parser{},
		Emitter:    Emitter{},
	})
}
