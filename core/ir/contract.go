package ir

// ParseOptions configures a Parser.
type ParseOptions struct {
	// PreserveSourceInfo asks the parser to populate SourceInfo with enough
	// detail to reconstruct original formatting choices on emit.
	PreserveSourceInfo bool

	// EmbedResources asks the parser to resolve referenced external resources
	// and inline them into the document's ResourceMap instead of leaving
	// external references.
	EmbedResources bool
}

// EmitOptions configures an Emitter.
type EmitOptions struct {
	// Pretty requests human-formatted output where the format allows it.
	Pretty bool

	// UseSourceInfo prefers recorded original-formatting hints over the
	// emitter's default style, when the document carries SourceInfo.
	UseSourceInfo bool
}

// Parser turns raw bytes into a Document. Implementations must not panic on
// any byte sequence, including invalid encodings; every recognized failure
// surfaces as an *errors.ParseError.
type Parser interface {
	Parse(input []byte, opts ParseOptions) (*Result[*Document], error)
}

// Emitter turns a Document into bytes. The document is read-only to the
// emitter. Failures surface as an *errors.EmitError.
type Emitter interface {
	Emit(doc *Document, opts EmitOptions) (*Result[[]byte], error)
}

// Transformer consumes a Document and produces a Document. Transformers are
// pure and deterministic: no I/O, no hidden randomness or time-dependence,
// and no failure channel. A transformation that can meaningfully fail should
// instead apply what it can and record the shortfall as fidelity warnings at
// a higher level.
type Transformer interface {
	// Name identifies the transformer (e.g. "shift_headings").
	Name() string

	// Transform returns the transformed document. The input must not be
	// mutated in a way visible to the caller.
	Transform(doc *Document) *Document
}

// TransformerFunc adapts a function to the Transformer interface.
type TransformerFunc struct {
	TransformerName string
	Fn              func(*Document) *Document
}

// Name implements Transformer.
func (t TransformerFunc) Name() string { return t.TransformerName }

// Transform implements Transformer.
func (t TransformerFunc) Transform(doc *Document) *Document { return t.Fn(doc) }
