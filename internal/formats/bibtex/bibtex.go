// Package bibtex provides the BibTeX format module. A bibliography maps to
// one node per entry: the node's kind is KindEntry, the citation key lands in
// the standard id property, the entry type and fields in bibtex:* properties.
// The emitter writes entries back in canonical form, one field per line.
package bibtex

import (
	"github.com/docfold/docfold/core/registry"
)

// FormatName is the registry identifier.
const FormatName = "bibtex"

// KindEntry is the node kind for one bibliography entry.
const KindEntry = "bibtex_entry"

// Property keys carried by entry nodes. Field order survives through the
// insertion order of the property set.
const (
	propType    = "bibtex:type"
	fieldPrefix = "bibtex:field:"
)

func init() {
	registry.Register(&registry.Format{
		Name:       FormatName,
		Extensions: []string{"bib", "bibtex"},
		// Bibliography entries survive parse-emit-parse, but arbitrary
		// documents do not, so the module makes no roundtrip claim.
		Roundtrip: false,
		Parser:    Parser{},
		Emitter:   Emitter{},
	})
}
