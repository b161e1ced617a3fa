package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"

	"github.com/docfold/docfold/core/ir"
	"github.com/docfold/docfold/internal/logging"
)

func createTestFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

func TestReadInputPlain(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, "doc.md", []byte("# Hello\n"))

	data, err := readInput(path)
	if err != nil {
		t.Fatalf("readInput: %v", err)
	}
	if string(data) != "# Hello\n" {
		t.Errorf("got %q", data)
	}
}

func TestReadInputXZ(t *testing.T) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		t.Fatalf("xz.NewWriter: %v", err)
	}
	if _, err := w.Write([]byte("# Compressed\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	dir := t.TempDir()
	path := createTestFile(t, dir, "doc.md.xz", buf.Bytes())

	data, err := readInput(path)
	if err != nil {
		t.Fatalf("readInput: %v", err)
	}
	if string(data) != "# Compressed\n" {
		t.Errorf("got %q", data)
	}
}

func TestReadInputMissing(t *testing.T) {
	if _, err := readInput(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestIsXZ(t *testing.T) {
	if isXZ([]byte("# Hello\n")) {
		t.Error("plain text detected as xz")
	}
	if !isXZ([]byte{0xfd, '7', 'z', 'X', 'Z', 0x00, 0x01}) {
		t.Error("xz magic not detected")
	}
}

func TestResolveSourceByFlag(t *testing.T) {
	f, how, err := resolveSource("markdown", "whatever.bin")
	if err != nil {
		t.Fatalf("resolveSource: %v", err)
	}
	if f.Name != "markdown" || how != "flag" {
		t.Errorf("got %s via %s", f.Name, how)
	}
}

func TestResolveSourceByExtension(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"paper.md", "markdown"},
		{"paper.md.xz", "markdown"},
		{"page.html", "html"},
		{"refs.bib", "bibtex"},
	}
	for _, tt := range tests {
		f, how, err := resolveSource("", tt.path)
		if err != nil {
			t.Errorf("resolveSource(%q): %v", tt.path, err)
			continue
		}
		if f.Name != tt.want || how != "extension" {
			t.Errorf("resolveSource(%q) = %s via %s, want %s via extension",
				tt.path, f.Name, how, tt.want)
		}
	}
}

func TestResolveSourceNoExtension(t *testing.T) {
	if _, _, err := resolveSource("", "README"); err == nil {
		t.Error("expected error for extensionless path")
	}
	if _, _, err := resolveSource("", "data.unknownext"); err == nil {
		t.Error("expected error for unknown extension")
	}
}

func TestConvertPipeline(t *testing.T) {
	cmd := &ConvertCmd{}
	if got := cmd.pipeline().Len(); got != 0 {
		t.Errorf("empty flags built %d transformers", got)
	}

	cmd = &ConvertCmd{ShiftHeadings: 1, Normalize: true}
	if got := cmd.pipeline().Len(); got != 3 {
		t.Errorf("got %d transformers, want 3", got)
	}
}

func TestConvertRun(t *testing.T) {
	dir := t.TempDir()
	createTestFile(t, dir, "in.md", []byte("# Title\n\nSome *text*.\n"))
	out := filepath.Join(dir, "out.html")

	cmd := &ConvertCmd{
		Path:  filepath.Join(dir, "in.md"),
		To:    "html",
		Out:   out,
		Quiet: true,
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("convert: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	got := string(data)
	if !strings.Contains(got, "<h1>Title</h1>") {
		t.Errorf("missing heading in output: %q", got)
	}
	if !strings.Contains(got, "<em>text</em>") {
		t.Errorf("missing emphasis in output: %q", got)
	}
}

func TestConvertRunShiftHeadings(t *testing.T) {
	dir := t.TempDir()
	createTestFile(t, dir, "in.md", []byte("# Title\n"))
	out := filepath.Join(dir, "out.html")

	cmd := &ConvertCmd{
		Path:          filepath.Join(dir, "in.md"),
		To:            "html",
		Out:           out,
		ShiftHeadings: 1,
		Quiet:         true,
	}
	if err := cmd.Run(); err != nil {
		t.Fatalf("convert: %v", err)
	}

	data, _ := os.ReadFile(out)
	if !strings.Contains(string(data), "<h2>Title</h2>") {
		t.Errorf("heading not shifted: %q", data)
	}
}

func TestConvertRunUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := createTestFile(t, dir, "in.md", []byte("hi\n"))

	cmd := &ConvertCmd{Path: path, To: "nosuch", Quiet: true}
	if err := cmd.Run(); err == nil {
		t.Error("expected error for unknown output format")
	}
}

func TestPrintWarnings(t *testing.T) {
	var buf bytes.Buffer
	printWarnings(&buf, []ir.Warning{
		ir.NewWarning(ir.ContentLoss, "dropped a footnote"),
		ir.NewWarning(ir.StyleLoss, "lost underline").At(ir.NewSpan(3, 9)),
	})

	got := buf.String()
	if !strings.Contains(got, "[content_loss] dropped a footnote") {
		t.Errorf("missing first warning: %q", got)
	}
	if !strings.Contains(got, "at bytes 3..9") {
		t.Errorf("missing span line: %q", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	seen := map[logging.Level]string{}
	for _, s := range []string{"debug", "info", "warn", "error"} {
		level := parseLogLevel(s)
		if prev, dup := seen[level]; dup {
			t.Errorf("%q and %q resolve to the same level", prev, s)
		}
		seen[level] = s
	}
}
