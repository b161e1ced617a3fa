// Package pandoc provides interchange with the Pandoc JSON AST. It covers
// the common block and inline constructors; Pandoc constructs without a
// model counterpart (citations, notes, post-1.22 tables) degrade with
// warnings rather than failing the conversion.
package pandoc

import (
	"encoding/json"

	"github.com/docfold/docfold/core/registry"
)

// FormatName is the registry identifier.
const FormatName = "pandoc"

// apiVersion is the pandoc-api-version the emitter declares.
var apiVersion = []int{1, 23, 1}

// pandocDoc is the top-level JSON shape.
type pandocDoc struct {
	APIVersion []int            `json:"pandoc-api-version"`
	Meta       map[string]pnode `json:"meta"`
	Blocks     []pnode          `json:"blocks"`
}

// pnode is one tagged AST constructor: {"t": "Para", "c": [...]}.
type pnode struct {
	T string          `json:"t"`
	C json.RawMessage `json:"c,omitempty"`
}

func init() {
	registry.Register(&registry.Format{
		Name:       FormatName,
		Extensions: []string{"pandoc"},
		Roundtrip:  true,
		Parser:     Parser{},
		Emitter:    Emitter{},
	})
}
