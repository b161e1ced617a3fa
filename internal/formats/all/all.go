// Package all registers every built-in format module. Importing it for side
// effects is how binaries opt in to the full format set:
//
//	import _ "github.com/docfold/docfold/internal/formats/all"
package all

import (
	_ "github.com/docfold/docfold/internal/formats/bibtex"
	_ "github.com/docfold/docfold/internal/formats/docbook"
	_ "github.com/docfold/docfold/internal/formats/html"
	_ "github.com/docfold/docfold/internal/formats/markdown"
	_ "github.com/docfold/docfold/internal/formats/native"
	_ "github.com/docfold/docfold/internal/formats/pandoc"
	_ "github.com/docfold/docfold/internal/formats/plain"
)
