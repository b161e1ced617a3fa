// Package registry resolves format identifiers to the Parser and Emitter
// implementations compiled into the binary. Format modules register
// themselves from init(); the CLI (or any other caller) looks formats up by
// name or file extension. The IR core never consults the registry.
package registry

import (
	"sort"
	"strings"

	apperrors "github.com/docfold/docfold/core/errors"
	"github.com/docfold/docfold/core/ir"
)

// Format describes one registered format module. Parser and Emitter may each
// be nil for formats that only read or only write.
type Format struct {
	// Name is the registry identifier (e.g. "markdown").
	Name string

	// Extensions are recognized file extensions, without the leading dot.
	Extensions []string

	// Roundtrip indicates the module claims structural parse-emit-parse
	// roundtrip fidelity.
	Roundtrip bool

	Parser  ir.Parser
	Emitter ir.Emitter
}

// CanParse reports whether the format has a parser.
func (f *Format) CanParse() bool { return f != nil && f.Parser != nil }

// CanEmit reports whether the format has an emitter.
func (f *Format) CanEmit() bool { return f != nil && f.Emitter != nil }

// formats holds all registered format modules, keyed by name.
var formats = make(map[string]*Format)

// Register adds a format module to the registry. Registering a duplicate
// name is a programming error (two init() funcs claiming one format) and
// panics.
func Register(f *Format) {
	if f.Name == "" {
		panic("registry: format with empty name")
	}
	if _, exists := formats[f.Name]; exists {
		panic("registry: duplicate format " + f.Name)
	}
	formats[f.Name] = f
}

// Lookup returns the format registered under name.
func Lookup(name string) (*Format, error) {
	f, ok := formats[strings.ToLower(name)]
	if !ok {
		return nil, &apperrors.UnknownFormatError{Name: name}
	}
	return f, nil
}

// ByExtension returns the format claiming the given file extension. The
// extension may be passed with or without its leading dot.
func ByExtension(ext string) (*Format, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, f := range formats {
		for _, candidate := range f.Extensions {
			if candidate == ext {
				return f, nil
			}
		}
	}
	return nil, &apperrors.UnknownFormatError{Name: "." + ext}
}

// List returns all registered formats sorted by name.
func List() []*Format {
	out := make([]*Format, 0, len(formats))
	for _, f := range formats {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// clear empties the registry. Tests only.
func clear() {
	formats = make(map[string]*Format)
}
