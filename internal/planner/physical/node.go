// Package physical maps a logical plan onto executable physical nodes:
// one-to-one with logical variants, but each carries the strategy choices
// spec §4.5 calls for (join strategy, Limit+Skip fusion). OrderBy nodes
// carry a NoopSort flag, but Build always leaves it false. The physical plan is cached by canonicalized query shape via an
// LRU (internal/engine wires github.com/hashicorp/golang-lru/v2), keyed
// independently of this package.
package physical

import (
	"github.com/kartikbazzad/reldb/internal/query"
	"github.com/kartikbazzad/reldb/internal/types"
)

// JoinStrategy names how a Join physical node will match its two sides.
type JoinStrategy int

const (
	// StrategyHashJoin builds a hash table over the smaller side's join
	// column and probes it with the larger side. The effective default in
	// this in-memory engine, which has no indexes.
	StrategyHashJoin JoinStrategy = iota
	StrategyIndexNestedLoop
	StrategyNestedLoop
)

func (s JoinStrategy) String() string {
	switch s {
	case StrategyIndexNestedLoop:
		return "index-nested-loop"
	case StrategyNestedLoop:
		return "nested-loop"
	default:
		return "hash-join"
	}
}

// Kind mirrors logical.Kind one-to-one.
type Kind int

const (
	KindTableAccess Kind = iota
	KindSelect
	KindProject
	KindCrossProduct
	KindJoin
	KindOrderBy
	KindBoundedTake // fused Skip+Limit, or either alone
	KindDistinct
	KindInsert
	KindUpdate
	KindDelete
)

func (k Kind) String() string {
	names := [...]string{"TableAccess", "Select", "Project", "CrossProduct", "Join", "OrderBy", "BoundedTake", "Distinct", "Insert", "Update", "Delete"}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// Node is one physical operator. Children are held by pointer (unlike the
// logical arena, the physical tree is small and short-lived per execution,
// so the extra allocation indirection is not worth avoiding).
type Node struct {
	Kind Kind

	Left, Right *Node

	Table string // TableAccess, Insert, Update, Delete

	Predicate query.Predicate // Select, Join, Update, Delete

	JoinStrategy JoinStrategy // Join

	Columns     []query.ColumnRef // Project
	Aggregators []query.Aggregator

	OrderBy []query.OrderSpec
	NoopSort bool // OrderBy: input already satisfies the order

	Skip, Limit *int // BoundedTake

	DistinctColumn query.ColumnRef

	Rows   []types.Row // Insert
	Policy query.ConflictPolicy

	Assignments []query.Assignment

	Scope []string
}
