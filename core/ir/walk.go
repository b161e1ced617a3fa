package ir

// VisitResult controls traversal from a visitor callback.
type VisitResult int

const (
	// Continue descends into the node's children.
	Continue VisitResult = iota
	// SkipChildren continues the walk without descending.
	SkipChildren
	// Stop ends the walk immediately.
	Stop
)

// Walk performs a pre-order depth-first traversal of the subtree rooted at n,
// calling fn for each node. Each call to Walk is a fresh traversal; the walk
// is always finite because trees are acyclic by construction.
//
// Walk returns Stop if fn ended the traversal early, Continue otherwise.
func Walk(n *Node, fn func(*Node) VisitResult) VisitResult {
	if n == nil {
		return Continue
	}
	switch fn(n) {
	case Stop:
		return Stop
	case SkipChildren:
		return Continue
	}
	for _, c := range n.Children {
		if Walk(c, fn) == Stop {
			return Stop
		}
	}
	return Continue
}

// Map rebuilds a tree by applying fn to each node top-down. fn may return the
// node unchanged, a replacement, or nil to drop the node (and its subtree)
// from the parent's children. Children of the returned node are then mapped
// in turn. The root cannot be dropped; a nil result for the root yields nil.
func Map(n *Node, fn func(*Node) *Node) *Node {
	if n == nil {
		return nil
	}
	n = fn(n)
	if n == nil {
		return nil
	}
	if len(n.Children) > 0 {
		kept := n.Children[:0]
		for _, c := range n.Children {
			if mapped := Map(c, fn); mapped != nil {
				kept = append(kept, mapped)
			}
		}
		n.Children = kept
	}
	return n
}

// Find returns the first node in pre-order for which pred is true, or nil.
func Find(n *Node, pred func(*Node) bool) *Node {
	var found *Node
	Walk(n, func(node *Node) VisitResult {
		if pred(node) {
			found = node
			return Stop
		}
		return Continue
	})
	return found
}
