// Package logical builds and rewrites the logical plan tree: a relational
// algebra tree independent of execution strategy. Nodes are allocated into
// an Arena and referenced by index rather than pointer, grounded on design
// note 9 ("plan trees owned by the query engine -> arena") and modeled on
// the teacher's buffer arena (internal/memory/arena.go's allocate-and-
// release-as-a-batch shape, here indexing plan nodes instead of byte
// buffers). A rewrite rule that "removes" a node simply stops referencing
// its index; the whole tree is disposable in one step once the physical
// planner has consumed it.
package logical

// NodeRef indexes a Node within an Arena. The zero value is not a valid
// reference; Arena.Alloc always returns a ref >= 0 for successfully
// allocated nodes, so callers use a separate "no node" sentinel (NoNode)
// rather than relying on zero.
type NodeRef int

// NoNode is the sentinel for "no child in this slot".
const NoNode NodeRef = -1

// Arena owns every Node of one logical plan tree.
type Arena struct {
	nodes []Node
}

// NewArena returns an empty arena with room for n nodes pre-sized.
func NewArena(n int) *Arena {
	return &Arena{nodes: make([]Node, 0, n)}
}

// Alloc appends a node and returns its index.
func (a *Arena) Alloc(n Node) NodeRef {
	a.nodes = append(a.nodes, n)
	return NodeRef(len(a.nodes) - 1)
}

// Get returns a pointer to the node at ref for in-place mutation by
// rewrite rules.
func (a *Arena) Get(ref NodeRef) *Node {
	return &a.nodes[ref]
}

// Len returns the number of allocated nodes, including ones no rewrite
// rule references anymore (the arena never compacts; it is released as a
// batch when the plan is discarded).
func (a *Arena) Len() int { return len(a.nodes) }
