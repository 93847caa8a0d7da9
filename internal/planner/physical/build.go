package physical

import (
	"github.com/kartikbazzad/reldb/internal/planner/logical"
	"github.com/kartikbazzad/reldb/internal/query"
)

// IndexHints reports, for a table and column, whether a sorted/hash index
// is known to exist over that column. The in-memory storage this engine
// ships never maintains indexes (index maintenance is out of scope), so
// the zero IndexHints always answers false and every Join resolves to
// StrategyHashJoin — the "effective default" spec §4.5 calls out. The
// interface exists so a future Storage implementation that does maintain
// indexes can plug into strategy selection without changing this package.
type IndexHints interface {
	HasIndex(table, column string) bool
}

// NoIndexes is the zero-value IndexHints every call site uses today.
type NoIndexes struct{}

func (NoIndexes) HasIndex(table, column string) bool { return false }

// Build walks the logical arena bottom-up, emitting one physical node per
// logical node and preserving structure, per spec §4.5.
func Build(plan *logical.Plan, hints IndexHints) *Node {
	if hints == nil {
		hints = NoIndexes{}
	}
	return buildNode(plan.Arena, plan.Root, hints)
}

func buildNode(arena *logical.Arena, ref logical.NodeRef, hints IndexHints) *Node {
	if ref == logical.NoNode {
		return nil
	}
	ln := arena.Get(ref)
	left := buildNode(arena, ln.Left, hints)
	right := buildNode(arena, ln.Right, hints)

	switch ln.Kind {
	case logical.KindTableAccess:
		return &Node{Kind: KindTableAccess, Table: ln.Table, Scope: ln.Scope}
	case logical.KindSelect:
		return &Node{Kind: KindSelect, Left: left, Predicate: ln.Predicate, Scope: ln.Scope}
	case logical.KindProject:
		return &Node{Kind: KindProject, Left: left, Columns: ln.Columns, Aggregators: ln.Aggregators, Scope: ln.Scope}
	case logical.KindCrossProduct:
		return &Node{Kind: KindCrossProduct, Left: left, Right: right, Scope: ln.Scope}
	case logical.KindJoin:
		return &Node{
			Kind:         KindJoin,
			Left:         left,
			Right:        right,
			Predicate:    ln.Predicate,
			JoinStrategy: selectJoinStrategy(ln, hints),
			Scope:        ln.Scope,
		}
	case logical.KindOrderBy:
		return &Node{Kind: KindOrderBy, Left: left, OrderBy: ln.OrderBy, NoopSort: false, Scope: ln.Scope}
	case logical.KindSkip:
		n := ln.N
		return &Node{Kind: KindBoundedTake, Left: left, Skip: &n, Scope: ln.Scope}
	case logical.KindLimit:
		take := &Node{Kind: KindBoundedTake, Left: left, Scope: ln.Scope}
		n := ln.N
		take.Limit = &n
		// Limit+Skip fusion: an adjacent BoundedTake directly below (from a
		// Skip node) merges into this one rather than nesting two operators.
		if left != nil && left.Kind == KindBoundedTake && left.Limit == nil {
			take.Left = left.Left
			take.Skip = left.Skip
		}
		return take
	case logical.KindDistinct:
		return &Node{Kind: KindDistinct, Left: left, DistinctColumn: ln.DistinctColumn, Scope: ln.Scope}
	case logical.KindInsert:
		return &Node{Kind: KindInsert, Table: ln.Table, Rows: ln.Rows, Policy: ln.Policy, Scope: ln.Scope}
	case logical.KindUpdate:
		return &Node{Kind: KindUpdate, Left: left, Table: ln.Table, Assignments: ln.Assignments, Scope: ln.Scope}
	case logical.KindDelete:
		return &Node{Kind: KindDelete, Left: left, Table: ln.Table, Scope: ln.Scope}
	default:
		return nil
	}
}

// selectJoinStrategy implements spec §4.5's decision: index-nested-loop if
// the predicate is a column-to-column comparison and both sides expose an
// index over their join column, else hash-join with the smaller side built
// (size unknown at plan time in this engine, so the executor picks the
// build side at execute time). It never returns StrategyNestedLoop. With
// NoIndexes this always yields StrategyHashJoin, the documented effective
// default.
func selectJoinStrategy(ln *logical.Node, hints IndexHints) JoinStrategy {
	cmp, ok := ln.Predicate.(*query.Compare)
	if !ok || !cmp.IsJoin {
		return StrategyHashJoin
	}
	if hints.HasIndex(cmp.Column.Table, cmp.Column.Column) && hints.HasIndex(cmp.Other.Table, cmp.Other.Column) {
		return StrategyIndexNestedLoop
	}
	return StrategyHashJoin
}
