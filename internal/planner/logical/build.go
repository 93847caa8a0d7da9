package logical

import (
	"github.com/kartikbazzad/reldb/internal/catalog"
	"github.com/kartikbazzad/reldb/internal/errors"
	"github.com/kartikbazzad/reldb/internal/query"
)

// Build constructs the initial tree shape per query kind (spec §4.4), then
// runs the rewrite rules to a fixpoint. The caller must have already run
// query.Validate; Build assumes a well-formed description and only returns
// errors for planner-stage concerns (e.g. join inference finding no usable
// shape, which it never needs to reject — rewrite rules are all
// behaviour-preserving no-ops when their pattern doesn't match).
func Build(d query.Description, cat *catalog.Catalog) (*Plan, error) {
	arena := NewArena(8)
	var root NodeRef

	switch {
	case d.Select != nil:
		root = buildSelect(arena, d.Select)
	case d.Insert != nil:
		root = arena.Alloc(Node{
			Kind:   KindInsert,
			Left:   NoNode,
			Right:  NoNode,
			Table:  d.Insert.Table,
			Rows:   d.Insert.Rows,
			Policy: d.Insert.Policy,
			Scope:  []string{d.Insert.Table},
		})
	case d.Update != nil:
		root = buildUpdate(arena, d.Update)
	case d.Delete != nil:
		root = buildDelete(arena, d.Delete)
	default:
		return nil, &errors.PlanError{Stage: "logical", Reason: "description has no populated shape"}
	}

	plan := &Plan{Arena: arena, Root: root}
	Rewrite(plan, cat)
	return plan, nil
}

func tableAccess(arena *Arena, table string) NodeRef {
	return arena.Alloc(Node{Kind: KindTableAccess, Left: NoNode, Right: NoNode, Table: table, Scope: []string{table}})
}

func buildSelect(arena *Arena, s *query.Select) NodeRef {
	// Left-deep cross product over the from list.
	cur := tableAccess(arena, s.Tables[0])
	for _, t := range s.Tables[1:] {
		right := tableAccess(arena, t)
		cur = arena.Alloc(Node{
			Kind:  KindCrossProduct,
			Left:  cur,
			Right: right,
			Scope: append(append([]string{}, arena.Get(cur).Scope...), arena.Get(right).Scope...),
		})
	}

	// Explicit inner joins become Join nodes instead of CrossProduct; their
	// predicate is not also placed in the top-level Select.
	for _, j := range s.Joins {
		right := tableAccess(arena, j.Table)
		cur = arena.Alloc(Node{
			Kind:      KindJoin,
			Left:      cur,
			Right:     right,
			Predicate: j.Predicate,
			Scope:     append(append([]string{}, arena.Get(cur).Scope...), j.Table),
		})
	}

	scope := arena.Get(cur).Scope

	if s.Predicate != nil {
		cur = arena.Alloc(Node{Kind: KindSelect, Left: cur, Right: NoNode, Predicate: s.Predicate, Scope: scope})
	}

	switch {
	case s.Distinct != nil:
		cur = arena.Alloc(Node{Kind: KindDistinct, Left: cur, Right: NoNode, DistinctColumn: *s.Distinct, Scope: scope})
	case len(s.Projection) > 0:
		cols := make([]query.ColumnRef, 0, len(s.Projection))
		aggs := make([]query.Aggregator, 0)
		for _, pc := range s.Projection {
			if pc.Agg != nil {
				aggs = append(aggs, *pc.Agg)
			} else {
				cols = append(cols, pc.Column)
			}
		}
		cur = arena.Alloc(Node{Kind: KindProject, Left: cur, Right: NoNode, Columns: cols, Aggregators: aggs, Scope: scope})
	}

	if len(s.OrderBy) > 0 {
		cur = arena.Alloc(Node{Kind: KindOrderBy, Left: cur, Right: NoNode, OrderBy: s.OrderBy, Scope: scope})
	}
	if s.Skip != nil {
		cur = arena.Alloc(Node{Kind: KindSkip, Left: cur, Right: NoNode, N: *s.Skip, Scope: scope})
	}
	if s.Limit != nil {
		cur = arena.Alloc(Node{Kind: KindLimit, Left: cur, Right: NoNode, N: *s.Limit, Scope: scope})
	}

	return cur
}

func buildUpdate(arena *Arena, u *query.Update) NodeRef {
	child := tableAccess(arena, u.Table)
	if u.Predicate != nil {
		child = arena.Alloc(Node{Kind: KindSelect, Left: child, Right: NoNode, Predicate: u.Predicate, Scope: []string{u.Table}})
	}
	return arena.Alloc(Node{
		Kind:        KindUpdate,
		Left:        child,
		Right:       NoNode,
		Table:       u.Table,
		Assignments: u.Assignments,
		Scope:       []string{u.Table},
	})
}

func buildDelete(arena *Arena, del *query.Delete) NodeRef {
	child := tableAccess(arena, del.Table)
	if del.Predicate != nil {
		child = arena.Alloc(Node{Kind: KindSelect, Left: child, Right: NoNode, Predicate: del.Predicate, Scope: []string{del.Table}})
	}
	return arena.Alloc(Node{
		Kind:  KindDelete,
		Left:  child,
		Right: NoNode,
		Table: del.Table,
		Scope: []string{del.Table},
	})
}
