// Command docfold converts documents between formats through a shared
// intermediate representation, reporting what each conversion could not
// preserve.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/ulikunitz/xz"

	"github.com/docfold/docfold/core/ir"
	"github.com/docfold/docfold/core/registry"
	"github.com/docfold/docfold/core/transform"
	"github.com/docfold/docfold/internal/logging"
	"github.com/docfold/docfold/internal/roundtrip"

	// Register all built-in format modules.
	_ "github.com/docfold/docfold/internal/formats/all"
)

const version = "0.1.0"

// CLI defines the command-line interface for docfold.
var CLI struct {
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"warn" enum:"debug,info,warn,error"`
	LogFormat string `name:"log-format" help:"Log output format (text, json)" default:"text" enum:"text,json"`

	Convert ConvertCmd `cmd:"" help:"Convert a document to another format"`
	Formats FormatsCmd `cmd:"" help:"List registered formats"`
	Verify  VerifyCmd  `cmd:"" help:"Verify how faithfully a format round-trips a file"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// ConvertCmd converts one document.
type ConvertCmd struct {
	Path string `arg:"" help:"Input file (xz-compressed input is decompressed; - reads stdin)"`
	From string `help:"Input format (default: resolved from the file extension)"`
	To   string `required:"" help:"Output format"`
	Out  string `short:"o" help:"Output file (default: stdout)" type:"path"`

	Pretty         bool `help:"Human-formatted output where the format allows it"`
	PreserveSource bool `name:"preserve-source" help:"Record original formatting hints while parsing"`
	UseSource      bool `name:"use-source" help:"Honor recorded formatting hints while emitting"`
	Embed          bool `help:"Inline referenced local resources into the document"`

	ShiftHeadings int64 `name:"shift-headings" help:"Shift heading levels by N before emitting"`
	Normalize     bool  `help:"Drop empty nodes and merge adjacent plain text before emitting"`

	Quiet bool `short:"q" help:"Suppress fidelity warnings on stderr"`
}

func (c *ConvertCmd) Run() error {
	start := time.Now()

	input, err := readInput(c.Path)
	if err != nil {
		return err
	}

	source, how, err := resolveSource(c.From, c.Path)
	if err != nil {
		return err
	}
	logging.FormatResolved("input", source.Name, how)
	if !source.CanParse() {
		return fmt.Errorf("format %s cannot be used as input", source.Name)
	}

	target, err := registry.Lookup(c.To)
	if err != nil {
		return err
	}
	if !target.CanEmit() {
		return fmt.Errorf("format %s cannot be used as output", target.Name)
	}

	parsed, err := source.Parser.Parse(input, ir.ParseOptions{
		PreserveSourceInfo: c.PreserveSource || c.UseSource,
		EmbedResources:     c.Embed,
	})
	if err != nil {
		return err
	}

	doc := parsed.Value
	if pipeline := c.pipeline(); pipeline.Len() > 0 {
		doc = pipeline.Transform(doc)
	}

	emitted, err := target.Emitter.Emit(doc, ir.EmitOptions{
		Pretty:        c.Pretty,
		UseSourceInfo: c.UseSource,
	})
	if err != nil {
		return err
	}

	if err := writeOutput(c.Out, emitted.Value); err != nil {
		return err
	}

	warnings := append(parsed.Warnings, emitted.Warnings...)
	if !c.Quiet {
		printWarnings(os.Stderr, warnings)
	}
	logging.Conversion(source.Name, target.Name, len(input), len(emitted.Value),
		len(warnings), time.Since(start))
	return nil
}

// pipeline assembles the requested pre-emit transformations.
func (c *ConvertCmd) pipeline() *transform.Pipeline {
	p := transform.NewPipeline()
	if c.ShiftHeadings != 0 {
		p = p.Then(transform.NewShiftHeadings(c.ShiftHeadings))
	}
	if c.Normalize {
		p = p.Then(transform.StripEmpty{}).Then(transform.MergeText{})
	}
	return p
}

// FormatsCmd lists the registry.
type FormatsCmd struct{}

func (FormatsCmd) Run() error {
	for _, f := range registry.List() {
		caps := make([]string, 0, 3)
		if f.CanParse() {
			caps = append(caps, "parse")
		}
		if f.CanEmit() {
			caps = append(caps, "emit")
		}
		if f.Roundtrip {
			caps = append(caps, "roundtrip")
		}
		ext := ""
		if len(f.Extensions) > 0 {
			ext = " (." + strings.Join(f.Extensions, ", .") + ")"
		}
		fmt.Printf("%-10s %s%s\n", f.Name, strings.Join(caps, "+"), ext)
	}
	return nil
}

// VerifyCmd checks a parse/emit/reparse cycle.
type VerifyCmd struct {
	Path   string `arg:"" help:"Input file (xz-compressed input is decompressed; - reads stdin)"`
	Format string `help:"Format to verify (default: resolved from the file extension)"`
	Diff   bool   `help:"Print the patch from input to re-emitted output"`
}

func (c *VerifyCmd) Run() error {
	input, err := readInput(c.Path)
	if err != nil {
		return err
	}
	f, _, err := resolveSource(c.Format, c.Path)
	if err != nil {
		return err
	}

	report, err := roundtrip.Verify(f, input,
		ir.ParseOptions{PreserveSourceInfo: true},
		ir.EmitOptions{UseSourceInfo: true})
	if err != nil {
		return err
	}

	fmt.Printf("format:     %s\n", report.Format)
	fmt.Printf("bytes:      %s\n", verdict(report.ByteIdentical))
	fmt.Printf("structure:  %s\n", verdict(report.StructuralEqual))
	fmt.Printf("input:      blake3:%s\n", report.InputDigest)
	fmt.Printf("output:     blake3:%s\n", report.OutputDigest)
	printWarnings(os.Stdout, report.Warnings)
	if c.Diff && report.Diff != "" {
		fmt.Println(report.Diff)
	}

	if !report.StructuralEqual {
		return fmt.Errorf("structure changed across the cycle")
	}
	return nil
}

func verdict(ok bool) string {
	if ok {
		return "identical"
	}
	return "changed"
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (VersionCmd) Run() error {
	fmt.Printf("docfold %s\n", version)
	return nil
}

// readInput loads a file or stdin, transparently decompressing xz.
func readInput(path string) ([]byte, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	if isXZ(data) {
		r, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", path, err)
		}
		return io.ReadAll(r)
	}
	return data, nil
}

var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

func isXZ(data []byte) bool {
	return bytes.HasPrefix(data, xzMagic)
}

// resolveSource picks a format from the explicit flag or the file extension.
// The returned string says which way it was resolved, for logging.
func resolveSource(flag, path string) (*registry.Format, string, error) {
	if flag != "" {
		f, err := registry.Lookup(flag)
		return f, "flag", err
	}
	ext := filepath.Ext(strings.TrimSuffix(path, ".xz"))
	if ext == "" {
		return nil, "", fmt.Errorf("cannot resolve format of %q; pass --from", path)
	}
	f, err := registry.ByExtension(ext)
	if err != nil {
		return nil, "", fmt.Errorf("%w; pass --from", err)
	}
	return f, "extension", nil
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// warningColors maps each fidelity category to its display color.
var warningColors = map[ir.Category]*color.Color{
	ir.ContentLoss:        color.New(color.FgRed),
	ir.StructureLoss:      color.New(color.FgYellow),
	ir.StyleLoss:          color.New(color.FgCyan),
	ir.UnsupportedFeature: color.New(color.FgMagenta),
	ir.AmbiguousInput:     color.New(color.FgBlue),
}

func printWarnings(w io.Writer, warnings []ir.Warning) {
	for _, warning := range warnings {
		c, ok := warningColors[warning.Category]
		if !ok {
			c = color.New(color.Reset)
		}
		fmt.Fprintf(w, "%s %s\n", c.Sprintf("[%s]", warning.Category), warning.Message)
		if warning.Span != nil {
			fmt.Fprintf(w, "  at bytes %d..%d\n", warning.Span.Start, warning.Span.End)
		}
	}
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("docfold"),
		kong.Description("Universal document conversion through a fidelity-tracking IR"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	logging.InitLogger(parseLogLevel(CLI.LogLevel), parseLogFormat(CLI.LogFormat))
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}

func parseLogLevel(s string) logging.Level {
	switch s {
	case "debug":
		return logging.LevelDebug
	case "info":
		return logging.LevelInfo
	case "error":
		return logging.LevelError
	default:
		return logging.LevelWarn
	}
}

func parseLogFormat(s string) logging.Format {
	if s == "json" {
		return logging.FormatJSON
	}
	return logging.FormatText
}
