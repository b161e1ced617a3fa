package ir

// Span is a half-open byte-offset range into the original source buffer.
// Spans exist for diagnostics only; structural equality ignores them.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NewSpan creates a span covering [start, end).
func NewSpan(start, end int) *Span {
	return &Span{Start: start, End: end}
}

// Node is a content node in the document tree. A node exclusively owns its
// properties and children; trees are acyclic and finite by construction.
type Node struct {
	// Kind is the open node-kind identifier (e.g. "paragraph", "latex:math").
	Kind string `json:"kind"`

	// Props holds the node's extensible properties.
	Props Properties `json:"props,omitempty"`

	// Children are the ordered child nodes.
	Children []*Node `json:"children,omitempty"`

	// Span is the optional source location, for diagnostics only.
	Span *Span `json:"span,omitempty"`
}

// NewNode creates a node of the given kind with no properties or children.
func NewNode(kind string) *Node {
	return &Node{Kind: kind}
}

// Text creates a "text" node carrying content.
func Text(content string) *Node {
	n := NewNode("text")
	n.Props.Set("content", String(content))
	return n
}

// WithProp sets a property and returns the node for chaining.
func (n *Node) WithProp(key string, v PropValue) *Node {
	n.Props.Set(key, v)
	return n
}

// WithChild appends a child and returns the node for chaining.
func (n *Node) WithChild(child *Node) *Node {
	n.Children = append(n.Children, child)
	return n
}

// WithChildren appends children and returns the node for chaining.
func (n *Node) WithChildren(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// WithSpan records the source span and returns the node for chaining.
func (n *Node) WithSpan(start, end int) *Node {
	n.Span = NewSpan(start, end)
	return n
}

// TextContent returns the "content" property of a text node, or "" if unset.
func (n *Node) TextContent() string {
	return n.Props.GetString("content")
}

// Equal reports structural equality: kind, properties, and children must
// match pairwise in order. Spans are excluded.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Kind != o.Kind || !n.Props.Equal(o.Props) || len(n.Children) != len(o.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// EqualExact reports span-aware equality for source-accurate comparisons.
func (n *Node) EqualExact(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if !spanEqual(n.Span, o.Span) {
		return false
	}
	if n.Kind != o.Kind || !n.Props.Equal(o.Props) || len(n.Children) != len(o.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].EqualExact(o.Children[i]) {
			return false
		}
	}
	return true
}

func spanEqual(a, b *Span) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Clone returns a deep copy of the node and its subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		Kind:  n.Kind,
		Props: n.Props.Clone(),
	}
	if n.Span != nil {
		s := *n.Span
		out.Span = &s
	}
	if len(n.Children) > 0 {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// ClearSpans removes spans from the node and its entire subtree.
func (n *Node) ClearSpans() {
	Walk(n, func(node *Node) VisitResult {
		node.Span = nil
		return Continue
	})
}

// Count returns the number of nodes in the subtree rooted at n, including n.
func (n *Node) Count() int {
	count := 0
	Walk(n, func(*Node) VisitResult {
		count++
		return Continue
	})
	return count
}
