package ir

// SourceInfo carries format-specific formatting hints recorded by a parser so
// a matching emitter can reconstruct original formatting choices. Its
// metadata shape is owned by the recording format module; the core only
// guarantees that it round-trips opaquely through transformers that do not
// know about it.
type SourceInfo struct {
	// Format is the recording format's registry name (e.g. "markdown").
	Format string `json:"format"`

	// Metadata holds the module-defined formatting hints.
	Metadata Properties `json:"metadata,omitempty"`
}

// Clone returns a deep copy of the source info.
func (s *SourceInfo) Clone() *SourceInfo {
	if s == nil {
		return nil
	}
	return &SourceInfo{Format: s.Format, Metadata: s.Metadata.Clone()}
}

// Document is the root container a conversion passes through: a content tree,
// the resources it references, document-level metadata, and optional source
// formatting hints.
type Document struct {
	// Content is the root node, conventionally of kind "document".
	Content *Node `json:"content"`

	// Resources holds embedded binary assets referenced from node properties.
	Resources *ResourceMap `json:"resources,omitempty"`

	// Metadata holds document-level properties (title, authors, ...).
	Metadata Properties `json:"metadata,omitempty"`

	// Source carries optional format-specific hints for roundtrip fidelity.
	Source *SourceInfo `json:"source,omitempty"`
}

// NewDocument creates an empty document with a "document" root node.
func NewDocument() *Document {
	return &Document{
		Content:   NewNode("document"),
		Resources: NewResourceMap(),
	}
}

// WithContent replaces the root node and returns the document for chaining.
func (d *Document) WithContent(content *Node) *Document {
	d.Content = content
	return d
}

// Embed inserts a resource and returns its id.
func (d *Document) Embed(r *Resource) (string, error) {
	if d.Resources == nil {
		d.Resources = NewResourceMap()
	}
	return d.Resources.Insert(r)
}

// Resource returns the embedded resource with the given id.
func (d *Document) Resource(id string) (*Resource, bool) {
	return d.Resources.Get(id)
}

// Equal reports structural equality of content, resources, and metadata.
// Source info and spans are excluded: two documents that differ only in
// recorded formatting hints are the same document.
func (d *Document) Equal(o *Document) bool {
	if d == nil || o == nil {
		return d == o
	}
	if !d.Content.Equal(o.Content) || !d.Metadata.Equal(o.Metadata) {
		return false
	}
	return d.Resources.Equal(o.Resources)
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	return &Document{
		Content:   d.Content.Clone(),
		Resources: d.Resources.Clone(),
		Metadata:  d.Metadata.Clone(),
		Source:    d.Source.Clone(),
	}
}
