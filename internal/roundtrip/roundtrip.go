// Package roundtrip verifies how faithfully a format survives a parse and
// re-emit cycle. A verification reports three tiers: byte identity (the
// emitted output equals the input), structural identity (the output parses
// back to an equal document), and the fidelity warnings both passes raised.
package roundtrip

import (
	"encoding/hex"
	"fmt"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/zeebo/blake3"

	"github.com/docfold/docfold/core/ir"
	"github.com/docfold/docfold/core/registry"
)

// Report is the outcome of one verification.
type Report struct {
	// Format is the registry name of the verified format.
	Format string

	// ByteIdentical is true when re-emitting reproduced the input exactly.
	ByteIdentical bool

	// StructuralEqual is true when the re-emitted output parses back to a
	// document structurally equal to the first parse.
	StructuralEqual bool

	// InputDigest and OutputDigest are hex BLAKE3 digests of the input and
	// the re-emitted output.
	InputDigest  string
	OutputDigest string

	// Diff is a textual patch from input to output, set only when the bytes
	// differ.
	Diff string

	// Warnings aggregates the fidelity warnings of every pass.
	Warnings []ir.Warning
}

// Clean reports whether the cycle was lossless at the structural tier with
// no fidelity warnings.
func (r *Report) Clean() bool {
	return r.StructuralEqual && len(r.Warnings) == 0
}

// Verify runs input through the format's parser, emitter, and parser again.
func Verify(f *registry.Format, input []byte, popts ir.ParseOptions, eopts ir.EmitOptions) (*Report, error) {
	if !f.CanParse() {
		return nil, fmt.Errorf("format %s has no parser", f.Name)
	}
	if !f.CanEmit() {
		return nil, fmt.Errorf("format %s has no emitter", f.Name)
	}

	first, err := f.Parser.Parse(input, popts)
	if err != nil {
		return nil, fmt.Errorf("first parse: %w", err)
	}

	emitted, err := f.Emitter.Emit(first.Value, eopts)
	if err != nil {
		return nil, fmt.Errorf("re-emit: %w", err)
	}

	report := &Report{
		Format:        f.Name,
		InputDigest:   digest(input),
		OutputDigest:  digest(emitted.Value),
		ByteIdentical: string(input) == string(emitted.Value),
	}
	report.Warnings = append(report.Warnings, first.Warnings...)
	report.Warnings = append(report.Warnings, emitted.Warnings...)

	if !report.ByteIdentical {
		report.Diff = diff(string(input), string(emitted.Value))
	}

	second, err := f.Parser.Parse(emitted.Value, popts)
	if err != nil {
		return nil, fmt.Errorf("reparse of emitted output: %w", err)
	}
	report.Warnings = append(report.Warnings, second.Warnings...)
	report.StructuralEqual = first.Value.Equal(second.Value)

	return report, nil
}

// VerifyFormat looks the format up by name first.
func VerifyFormat(name string, input []byte, popts ir.ParseOptions, eopts ir.EmitOptions) (*Report, error) {
	f, err := registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	return Verify(f, input, popts, eopts)
}

func digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func diff(before, after string) string {
	dmp := diffmatchpatch.New()
	patches := dmp.PatchMake(before, after)
	return dmp.PatchToText(patches)
}
