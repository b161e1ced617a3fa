package ir

import "fmt"

// Category classifies what kind of information a fidelity warning reports.
type Category string

// Fidelity warning categories.
const (
	// ContentLoss: a node, property, or resource could not be represented at all.
	ContentLoss Category = "content_loss"

	// StructureLoss: structure present in the input could not be kept in the output.
	StructureLoss Category = "structure_loss"

	// StyleLoss: content survived but its presentational form degraded.
	StyleLoss Category = "style_loss"

	// UnsupportedFeature: a recognized construct the module does not implement.
	UnsupportedFeature Category = "unsupported_feature"

	// AmbiguousInput: the module guessed between multiple valid interpretations.
	AmbiguousInput Category = "ambiguous_input"
)

// validCategories is the set of valid warning categories.
var validCategories = map[Category]bool{
	ContentLoss:        true,
	StructureLoss:      true,
	StyleLoss:          true,
	UnsupportedFeature: true,
	AmbiguousInput:     true,
}

// IsValid returns true if the category is valid.
func (c Category) IsValid() bool {
	return validCategories[c]
}

// Warning is a non-fatal, structured report that some input feature could not
// be fully represented. Its presence never implies the accompanying value is
// invalid.
type Warning struct {
	Category Category `json:"category"`
	Message  string   `json:"message"`
	Span     *Span    `json:"span,omitempty"`
}

// NewWarning creates a warning with no span.
func NewWarning(category Category, message string) Warning {
	return Warning{Category: category, Message: message}
}

// At returns a copy of the warning carrying the given source span.
func (w Warning) At(span *Span) Warning {
	w.Span = span
	return w
}

// String renders the warning for human consumption.
func (w Warning) String() string {
	if w.Span != nil {
		return fmt.Sprintf("[%s] %s (bytes %d-%d)", w.Category, w.Message, w.Span.Start, w.Span.End)
	}
	return fmt.Sprintf("[%s] %s", w.Category, w.Message)
}

// Result wraps a produced value with the ordered fidelity warnings gathered
// while producing it. Every Parser and Emitter returns a Result, never a bare
// value, so callers are structurally forced to consider warnings.
type Result[T any] struct {
	Value    T
	Warnings []Warning
}

// OK creates a result with no warnings.
func OK[T any](value T) *Result[T] {
	return &Result[T]{Value: value}
}

// WithWarnings creates a result carrying warnings.
func WithWarnings[T any](value T, warnings []Warning) *Result[T] {
	return &Result[T]{Value: value, Warnings: warnings}
}

// Warn appends a warning.
func (r *Result[T]) Warn(category Category, message string) {
	r.Warnings = append(r.Warnings, NewWarning(category, message))
}

// Warnf appends a formatted warning.
func (r *Result[T]) Warnf(category Category, format string, args ...any) {
	r.Warnings = append(r.Warnings, NewWarning(category, fmt.Sprintf(format, args...)))
}

// WarnAt appends a warning carrying a source span.
func (r *Result[T]) WarnAt(category Category, message string, span *Span) {
	r.Warnings = append(r.Warnings, NewWarning(category, message).At(span))
}

// Absorb appends warnings gathered elsewhere, preserving their order.
func (r *Result[T]) Absorb(warnings []Warning) {
	r.Warnings = append(r.Warnings, warnings...)
}

// HasWarnings reports whether any warnings were gathered.
func (r *Result[T]) HasWarnings() bool {
	return len(r.Warnings) > 0
}
