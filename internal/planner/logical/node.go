package logical

import (
	"github.com/kartikbazzad/reldb/internal/query"
	"github.com/kartikbazzad/reldb/internal/types"
)

// Kind tags which logical variant a Node is, per spec §3's closed set.
type Kind int

const (
	KindTableAccess Kind = iota
	KindSelect
	KindProject
	KindCrossProduct
	KindJoin
	KindOrderBy
	KindSkip
	KindLimit
	KindDistinct
	KindInsert
	KindUpdate
	KindDelete
)

func (k Kind) String() string {
	names := [...]string{"TableAccess", "Select", "Project", "CrossProduct", "Join", "OrderBy", "Skip", "Limit", "Distinct", "Insert", "Update", "Delete"}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// Node is a tagged variant over every logical plan node kind. Only the
// fields relevant to Kind are meaningful; the arena-and-index ownership
// model means a Node never holds pointers to siblings, only NodeRefs into
// its owning Arena.
type Node struct {
	Kind Kind

	Left  NodeRef // first/only child; NoNode for leaves
	Right NodeRef // second child (CrossProduct, Join); NoNode otherwise

	// TableAccess
	Table string

	// Select, Join, Update, Delete
	Predicate query.Predicate

	// Project
	Columns     []query.ColumnRef
	Aggregators []query.Aggregator

	// OrderBy
	OrderBy []query.OrderSpec

	// Skip, Limit
	N int

	// Distinct
	DistinctColumn query.ColumnRef

	// Insert
	Rows   []types.Row
	Policy query.ConflictPolicy

	// Update
	Assignments []query.Assignment

	// Scope is the set of table names visible at this node's output,
	// derived bottom-up as the tree is built; used by the physical planner
	// and by the executor to decide flat-vs-composite projection shape.
	Scope []string
}

// Plan is a complete logical plan: the arena that owns every node plus the
// index of the tree's single root.
type Plan struct {
	Arena *Arena
	Root  NodeRef
}
