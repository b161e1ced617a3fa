// Package transform provides the transform pipeline and the standard
// document transformers: heading adjustment, empty-node removal, text
// merging, and wrapper unwrapping.
//
// Transformers are pure and deterministic. Each one clones the incoming
// document before rewriting it, so the input document is never mutated in a
// way visible to the caller.
package transform

import "github.com/docfold/docfold/core/ir"

// Pipeline applies an ordered sequence of transformers left to right.
// An empty pipeline returns the document unchanged. Pipeline itself
// implements ir.Transformer, so pipelines nest.
type Pipeline struct {
	transformers []ir.Transformer
}

// NewPipeline creates a pipeline over the given transformers.
func NewPipeline(transformers ...ir.Transformer) *Pipeline {
	return &Pipeline{transformers: transformers}
}

// Then appends a transformer and returns the pipeline for chaining.
func (p *Pipeline) Then(t ir.Transformer) *Pipeline {
	p.transformers = append(p.transformers, t)
	return p
}

// Len returns the number of stages.
func (p *Pipeline) Len() int { return len(p.transformers) }

// Name implements ir.Transformer.
func (p *Pipeline) Name() string { return "pipeline" }

// Transform implements ir.Transformer.
func (p *Pipeline) Transform(doc *ir.Document) *ir.Document {
	for _, t := range p.transformers {
		doc = t.Transform(doc)
	}
	return doc
}
