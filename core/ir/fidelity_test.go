package ir

import (
	"strings"
	"testing"
)

func TestCategoryValidation(t *testing.T) {
	tests := []struct {
		c     Category
		valid bool
	}{
		{ContentLoss, true},
		{StructureLoss, true},
		{StyleLoss, true},
		{UnsupportedFeature, true},
		{AmbiguousInput, true},
		{Category("fatal"), false},
		{Category(""), false},
	}

	for _, tt := range tests {
		if got := tt.c.IsValid(); got != tt.valid {
			t.Errorf("Category(%q).IsValid() = %v, want %v", tt.c, got, tt.valid)
		}
	}
}

func TestCategoryWireValues(t *testing.T) {
	tests := []struct {
		c    Category
		want string
	}{
		{ContentLoss, "content_loss"},
		{StructureLoss, "structure_loss"},
		{StyleLoss, "style_loss"},
		{UnsupportedFeature, "unsupported_feature"},
		{AmbiguousInput, "ambiguous_input"},
	}
	for _, tt := range tests {
		if string(tt.c) != tt.want {
			t.Errorf("Category = %q, want %q", tt.c, tt.want)
		}
	}
}

func TestResultWarnings(t *testing.T) {
	r := OK("value")
	if r.HasWarnings() {
		t.Error("OK result should have no warnings")
	}

	r.Warn(StyleLoss, "color dropped")
	r.Warnf(UnsupportedFeature, "tag %q not implemented", "marquee")
	r.WarnAt(ContentLoss, "image dropped", NewSpan(5, 12))
	r.Absorb([]Warning{NewWarning(AmbiguousInput, "guessed list style")})

	if len(r.Warnings) != 4 {
		t.Fatalf("len(Warnings) = %d, want 4", len(r.Warnings))
	}

	// Order must be preserved.
	wantCats := []Category{StyleLoss, UnsupportedFeature, ContentLoss, AmbiguousInput}
	for i, w := range r.Warnings {
		if w.Category != wantCats[i] {
			t.Errorf("Warnings[%d].Category = %v, want %v", i, w.Category, wantCats[i])
		}
	}

	if r.Warnings[2].Span == nil || r.Warnings[2].Span.Start != 5 {
		t.Error("WarnAt should carry the span")
	}
	if !strings.Contains(r.Warnings[1].Message, "marquee") {
		t.Errorf("Warnf message = %q", r.Warnings[1].Message)
	}
	if r.Value != "value" {
		t.Error("warnings must not disturb the value")
	}
}

func TestWarningString(t *testing.T) {
	w := NewWarning(StyleLoss, "bold dropped")
	if !strings.Contains(w.String(), "style_loss") || !strings.Contains(w.String(), "bold dropped") {
		t.Errorf("String() = %q", w.String())
	}
	spanned := w.At(NewSpan(3, 9))
	if !strings.Contains(spanned.String(), "3-9") {
		t.Errorf("String() = %q, want span range", spanned.String())
	}
	// At returns a copy; the original stays span-free.
	if w.Span != nil {
		t.Error("At must not mutate the receiver")
	}
}

func TestWithWarnings(t *testing.T) {
	ws := []Warning{NewWarning(StructureLoss, "table flattened")}
	r := WithWarnings([]byte("out"), ws)
	if !r.HasWarnings() || string(r.Value) != "out" {
		t.Error("WithWarnings should carry both value and warnings")
	}
}
