package bibtex

import (
	"strings"

	"github.com/docfold/docfold/core/ir"
	"github.com/docfold/docfold/core/std"
)

// Emitter writes entry nodes back as BibTeX. Nodes that are not bibliography
// entries have no BibTeX form and are dropped with a warning.
type Emitter struct{}

// Emit implements ir.Emitter.
func (Emitter) Emit(doc *ir.Document, opts ir.EmitOptions) (*ir.Result[[]byte], error) {
	var b strings.Builder
	var warnings []ir.Warning

	for _, n := range doc.Content.Children {
		if n.Kind != KindEntry {
			warnings = append(warnings, ir.NewWarning(ir.ContentLoss,
				"dropped non-bibliography node "+n.Kind).At(n.Span))
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		writeEntry(&b, n)
	}

	return ir.WithWarnings([]byte(b.String()), warnings), nil
}

func writeEntry(b *strings.Builder, n *ir.Node) {
	entryType := n.Props.GetString(propType)
	if entryType == "" {
		entryType = "misc"
	}
	b.WriteString("@" + entryType + "{" + n.Props.GetString(std.PropID))
	for _, key := range n.Props.Keys() {
		name, ok := strings.CutPrefix(key, fieldPrefix)
		if !ok {
			continue
		}
		b.WriteString(",\n  " + name + " = {" + n.Props.GetString(key) + "}")
	}
	b.WriteString(",\n}\n")
}
