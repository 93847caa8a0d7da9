package logical

import (
	"github.com/kartikbazzad/reldb/internal/catalog"
	"github.com/kartikbazzad/reldb/internal/query"
)

// pushDownProjections inserts narrower Project nodes directly above each
// TableAccess, restricted to the columns actually referenced by the final
// projection, any aggregator, any predicate, or any order-by anywhere in
// the tree — never removing a column an ancestor predicate or order-by
// still needs. It only narrows when a Project or Distinct node (possibly
// under OrderBy/Skip/Limit) defines the output columns; a plain Select,
// Update or Delete keeps every column of its rows.
func pushDownProjections(plan *Plan, cat *catalog.Catalog) {
	top := plan.Arena.Get(plan.Root)
	for (top.Kind == KindOrderBy || top.Kind == KindSkip || top.Kind == KindLimit) && top.Left != NoNode {
		top = plan.Arena.Get(top.Left)
	}
	if top.Kind != KindProject && top.Kind != KindDistinct {
		return
	}
	needed := make(map[string]map[string]bool)
	collectNeeded(plan.Arena, cat, plan.Root, needed)
	insertNarrowProjections(plan.Arena, cat, plan.Root, needed)
}

func addNeeded(needed map[string]map[string]bool, table, col string) {
	if table == "" || col == "" {
		return
	}
	if needed[table] == nil {
		needed[table] = make(map[string]bool)
	}
	needed[table][col] = true
}

func addRefNeeded(cat *catalog.Catalog, needed map[string]map[string]bool, ref query.ColumnRef, scope []string) {
	table := ref.Table
	if table == "" {
		for _, t := range scope {
			if _, err := cat.Resolve(t, ref.Column); err == nil {
				table = t
				break
			}
		}
	}
	addNeeded(needed, table, ref.Column)
}

func collectNeeded(arena *Arena, cat *catalog.Catalog, ref NodeRef, needed map[string]map[string]bool) {
	if ref == NoNode {
		return
	}
	n := arena.Get(ref)
	switch n.Kind {
	case KindProject:
		for _, c := range n.Columns {
			addRefNeeded(cat, needed, c, n.Scope)
		}
		for _, a := range n.Aggregators {
			if !a.Star {
				addRefNeeded(cat, needed, a.Column, n.Scope)
			}
		}
	case KindOrderBy:
		for _, o := range n.OrderBy {
			addRefNeeded(cat, needed, o.Column, n.Scope)
		}
	case KindDistinct:
		addRefNeeded(cat, needed, n.DistinctColumn, n.Scope)
	case KindSelect, KindJoin:
		if n.Predicate != nil {
			for _, c := range n.Predicate.Columns() {
				addRefNeeded(cat, needed, c, n.Scope)
			}
		}
	case KindUpdate:
		for _, a := range n.Assignments {
			addNeeded(needed, n.Table, a.Column.Column)
		}
		if n.Predicate != nil {
			for _, c := range n.Predicate.Columns() {
				addNeeded(needed, n.Table, c.Column)
			}
		}
	case KindDelete:
		if n.Predicate != nil {
			for _, c := range n.Predicate.Columns() {
				addNeeded(needed, n.Table, c.Column)
			}
		}
	}
	collectNeeded(arena, cat, n.Left, needed)
	collectNeeded(arena, cat, n.Right, needed)
}

func insertNarrowProjections(arena *Arena, cat *catalog.Catalog, ref NodeRef, needed map[string]map[string]bool) {
	if ref == NoNode {
		return
	}
	n := arena.Get(ref)
	if n.Kind == KindTableAccess {
		cols := needed[n.Table]
		if len(cols) == 0 {
			return
		}
		refs := make([]query.ColumnRef, 0, len(cols))
		for c := range cols {
			refs = append(refs, query.ColumnRef{Table: n.Table, Column: c})
		}
		inner := arena.Alloc(*n)
		n.Kind = KindProject
		n.Left = inner
		n.Right = NoNode
		n.Columns = refs
		n.Aggregators = nil
		return
	}
	insertNarrowProjections(arena, cat, n.Left, needed)
	insertNarrowProjections(arena, cat, n.Right, needed)
}

// foldConstants applies behaviour-preserving simplifications to predicate
// trees: double negation and trivial and/or collapse. Optional per spec
// §4.4 rule 4.
func foldConstants(arena *Arena, ref NodeRef) {
	if ref == NoNode {
		return
	}
	n := arena.Get(ref)
	if n.Predicate != nil {
		n.Predicate = foldPredicate(n.Predicate)
	}
	foldConstants(arena, n.Left)
	foldConstants(arena, n.Right)
}

func foldPredicate(p query.Predicate) query.Predicate {
	b, ok := p.(*query.Bool)
	if !ok {
		return p
	}
	left := foldPredicate(b.Left)
	if b.Op == query.BoolNot {
		if inner, ok := left.(*query.Bool); ok && inner.Op == query.BoolNot {
			return inner.Left
		}
		return query.Not(left)
	}
	right := foldPredicate(b.Right)
	if left == right {
		return left
	}
	if b.Op == query.BoolAnd {
		return query.And(left, right)
	}
	return query.Or(left, right)
}
