// Package native provides docfold's own JSON serialization of the document
// IR. It is the reference interchange format: parse and emit are lossless
// (content, resources, metadata, and source info all survive byte-exactly at
// the structural level), so any document can be saved and reloaded without
// fidelity warnings.
package native

import (
	"encoding/json"
	"unicode/utf8"

	apperrors "github.com/docfold/docfold/core/errors"
	"github.com/docfold/docfold/core/ir"
	"github.com/docfold/docfold/core/registry"
)

// FormatName is the registry identifier.
const FormatName = "native"

func init() {
	registry.Register(&registry.Format{
		Name:       FormatName,
		Extensions: []string{"json", "docfold"},
		Roundtrip:  true,
		Parser:     Parser{},
		Emitter:    Emitter{},
	})
}

// Parser reads the native JSON representation.
type Parser struct{}

// Parse implements ir.Parser.
func (Parser) Parse(input []byte, opts ir.ParseOptions) (*ir.Result[*ir.Document], error) {
	if !utf8.Valid(input) {
		return nil, apperrors.Encoding(FormatName, "input is not valid UTF-8")
	}
	var doc ir.Document
	if err := json.Unmarshal(input, &doc); err != nil {
		if isUnexpectedEnd(err) {
			return nil, apperrors.Truncated(FormatName, err.Error())
		}
		return nil, apperrors.Malformed(FormatName, err.Error())
	}
	if doc.Content == nil {
		return nil, apperrors.Malformed(FormatName, "document has no content node")
	}
	if doc.Resources == nil {
		doc.Resources = ir.NewResourceMap()
	}
	return ir.OK(&doc), nil
}

func isUnexpectedEnd(err error) bool {
	var syn *json.SyntaxError
	if apperrors.As(err, &syn) {
		return syn.Error() == "unexpected end of JSON input"
	}
	return err.Error() == "unexpected end of JSON input"
}

// Emitter writes the native JSON representation.
type Emitter struct{}

// Emit implements ir.Emitter.
func (Emitter) Emit(doc *ir.Document, opts ir.EmitOptions) (*ir.Result[[]byte], error) {
	var (
		data []byte
		err  error
	)
	if opts.Pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, apperrors.Unrepresentable(FormatName, err.Error())
	}
	if opts.Pretty {
		data = append(data, '\n')
	}
	return ir.OK(data), nil
}
