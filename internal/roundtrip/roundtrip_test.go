package roundtrip

import (
	"strings"
	"testing"

	"github.com/docfold/docfold/core/ir"
	"github.com/docfold/docfold/core/registry"
	"github.com/docfold/docfold/core/std"

	_ "github.com/docfold/docfold/internal/formats/all"
)

func TestVerifyByteIdentical(t *testing.T) {
	input := "# Hello\n\nworld with *emphasis*\n"
	report, err := VerifyFormat("markdown", []byte(input),
		ir.ParseOptions{PreserveSourceInfo: true},
		ir.EmitOptions{UseSourceInfo: true})
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !report.ByteIdentical {
		t.Errorf("ByteIdentical = false, diff:\n%s", report.Diff)
	}
	if !report.StructuralEqual {
		t.Errorf("StructuralEqual = false")
	}
	if report.InputDigest != report.OutputDigest {
		t.Errorf("digests differ for byte-identical cycle")
	}
	if !report.Clean() {
		t.Errorf("Clean() = false, warnings = %v", report.Warnings)
	}
}

func TestVerifyNormalizedButStable(t *testing.T) {
	// Without source hints the emitter uses its default emphasis delimiter,
	// so the bytes change while the structure survives.
	report, err := VerifyFormat("markdown", []byte("_hi_ there\n"),
		ir.ParseOptions{}, ir.EmitOptions{})
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if report.ByteIdentical {
		t.Errorf("ByteIdentical = true, want normalized output to differ")
	}
	if !report.StructuralEqual {
		t.Errorf("StructuralEqual = false")
	}
	if report.Diff == "" {
		t.Errorf("Diff empty for differing bytes")
	}
	if report.InputDigest == report.OutputDigest {
		t.Errorf("digests equal for differing bytes")
	}
}

func TestVerifyNative(t *testing.T) {
	doc := std.Doc(
		std.Heading(1, ir.Text("Title")),
		std.Para(ir.Text("body")),
	)
	f, err := registry.Lookup("native")
	if err != nil {
		t.Fatal(err)
	}
	encoded, err := f.Emitter.Emit(doc, ir.EmitOptions{})
	if err != nil {
		t.Fatal(err)
	}

	report, err := Verify(f, encoded.Value, ir.ParseOptions{}, ir.EmitOptions{})
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !report.ByteIdentical || !report.StructuralEqual {
		t.Errorf("native cycle not lossless: %+v", report)
	}
}

func TestVerifyRequiresParser(t *testing.T) {
	_, err := VerifyFormat("plain", []byte("text"), ir.ParseOptions{}, ir.EmitOptions{})
	if err == nil || !strings.Contains(err.Error(), "no parser") {
		t.Errorf("error = %v, want missing-parser error", err)
	}
}

func TestVerifyUnknownFormat(t *testing.T) {
	_, err := VerifyFormat("nope", nil, ir.ParseOptions{}, ir.EmitOptions{})
	if err == nil {
		t.Error("error = nil, want unknown format")
	}
}

func TestVerifyParseFailure(t *testing.T) {
	_, err := VerifyFormat("native", []byte("{not json"), ir.ParseOptions{}, ir.EmitOptions{})
	if err == nil {
		t.Error("error = nil, want parse failure")
	}
}

// Every format claiming roundtrip fidelity must carry a minimal document
// through parse-emit-parse without structural change.
func TestRoundtripClaimants(t *testing.T) {
	hello := std.Doc(std.Para(ir.Text("hello")))

	for _, f := range registry.List() {
		if !f.Roundtrip {
			continue
		}
		t.Run(f.Name, func(t *testing.T) {
			if !f.CanParse() || !f.CanEmit() {
				t.Fatalf("%s claims roundtrip without both parser and emitter", f.Name)
			}
			emitted, err := f.Emitter.Emit(hello, ir.EmitOptions{})
			if err != nil {
				t.Fatalf("emit: %v", err)
			}
			reparsed, err := f.Parser.Parse(emitted.Value, ir.ParseOptions{})
			if err != nil {
				t.Fatalf("reparse: %v", err)
			}
			if !reparsed.Value.Content.Equal(hello.Content) {
				t.Errorf("document changed across the cycle:\nemitted %q", emitted.Value)
			}
		})
	}
}
