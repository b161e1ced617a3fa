// Package docbook provides the DocBook 5 format module. The parser reads a
// well-formed article or book through an XML DOM and flattens its nested
// sections into heading levels; the emitter rebuilds the section nesting
// from heading levels. Elements outside the recognized subset are kept as
// generic container nodes carrying a "docbook:tag" property.
package docbook

import (
	"github.com/docfold/docfold/core/registry"
)

// FormatName is the registry identifier.
const FormatName = "docbook"

// propTag records the original element name of unrecognized markup.
const propTag = "docbook:tag"

func init() {
	registry.Register(&registry.Format{
		Name:       FormatName,
		Extensions: []string{"dbk", "docbook"},
		Roundtrip:  false,
		Parser:     Parser{},
		Emitter:    Emitter{},
	})
}
