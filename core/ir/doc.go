// Package ir provides the Intermediate Representation (IR) for universal document conversion.
//
// Every supported format parses into the same tree of Nodes and emits from it,
// so any reader/writer pair composes into a conversion. The IR is deliberately
// open-ended: node kinds are plain strings and every extensible fact lives in a
// property bag, so a format module can introduce new vocabulary without
// touching this package or any other module.
//
// # Core Types
//
//   - Document: root container for content, resources, metadata, and source info
//   - Node: a content tree node (kind + properties + children)
//   - Properties / PropValue: the open key-value vocabulary
//   - Resource / ResourceMap: embedded binary assets referenced by id
//   - Result / Warning: fidelity tracking for every parse and emit
//
// # Node Kinds
//
// Kinds are opaque strings, not a closed enum. Standard kinds ("paragraph",
// "heading", ...) are a convention provided by core/std; format-private kinds
// use a "{format}:{name}" prefix (e.g. "latex:math"). The core never
// interprets or restricts kinds.
//
// # Property Namespacing
//
// Unqualified keys ("level", "url") are semantic and format-independent.
// "style:*" carries presentational hints, "layout:*" page/positioning hints,
// and "{format}:*" data meaningful to a single format (e.g. "docx:style").
// The core preserves namespaced keys verbatim; it never strips or
// special-cases them.
//
// # Fidelity Tracking
//
// Parsers and emitters return a Result wrapping their value together with an
// ordered list of Warnings, so callers are structurally forced to see what a
// conversion could not preserve. Warnings are advisory and never invalidate
// the value they accompany.
//
// # Ownership
//
// A Document is exclusively owned by whichever component currently holds it.
// Nodes own their children and properties outright; there are no parent
// pointers and no sharing between trees, so the model is acyclic by
// construction and conversions on independent documents need no coordination.
package ir
