package logical

import (
	"github.com/kartikbazzad/reldb/internal/catalog"
	"github.com/kartikbazzad/reldb/internal/query"
)

// Rewrite applies the four rewrite rules: predicate push-down and join
// inference are repeated until a pass changes nothing (at most 10 passes),
// then projection push-down and constant folding run once each.
func Rewrite(plan *Plan, cat *catalog.Catalog) {
	for i := 0; i < 10; i++ {
		changed := rewriteOnce(plan.Arena, cat, plan.Root)
		if !changed {
			break
		}
	}
	pushDownProjections(plan, cat)
	foldConstants(plan.Arena, plan.Root)
}

// rewriteOnce walks the tree post-order, applying predicate push-down and
// join inference at every Select node it finds. It mutates nodes in place
// by index and reports whether anything changed.
func rewriteOnce(arena *Arena, cat *catalog.Catalog, ref NodeRef) bool {
	if ref == NoNode {
		return false
	}
	n := arena.Get(ref)
	changed := false
	if n.Left != NoNode {
		changed = rewriteOnce(arena, cat, n.Left) || changed
	}
	if n.Right != NoNode {
		changed = rewriteOnce(arena, cat, n.Right) || changed
	}

	if n.Kind == KindSelect {
		changed = rewriteSelect(arena, cat, ref) || changed
	}
	return changed
}

func rewriteSelect(arena *Arena, cat *catalog.Catalog, ref NodeRef) bool {
	n := arena.Get(ref)
	child := arena.Get(n.Left)

	// Join inference: Select(colA = colB) immediately above a CrossProduct,
	// where colA/colB each come from a different side, becomes Join and the
	// Select disappears.
	if cmp, ok := n.Predicate.(*query.Compare); ok && cmp.IsJoin && child.Kind == KindCrossProduct {
		leftScope, rightScope := arena.Get(child.Left).Scope, arena.Get(child.Right).Scope
		aSide := sideOf(cat, cmp.Column, leftScope, rightScope)
		bSide := sideOf(cat, cmp.Other, leftScope, rightScope)
		if aSide != 0 && bSide != 0 && aSide != bSide {
			n.Kind = KindJoin
			n.Left = child.Left
			n.Right = child.Right
			n.Scope = child.Scope
			return true
		}
	}

	// Predicate push-down: split an AND into conjuncts, push each below a
	// CrossProduct/Join child when every column it touches comes from one
	// side.
	if child.Kind != KindCrossProduct && child.Kind != KindJoin {
		return false
	}
	conjuncts := splitAnd(n.Predicate)
	if len(conjuncts) < 2 {
		return pushSingle(arena, cat, ref)
	}

	leftScope, rightScope := arena.Get(child.Left).Scope, arena.Get(child.Right).Scope
	var remaining []query.Predicate
	changed := false
	for _, c := range conjuncts {
		side := predicateSide(cat, c, leftScope, rightScope)
		switch side {
		case -1:
			child.Left = arena.Alloc(Node{Kind: KindSelect, Left: child.Left, Right: NoNode, Predicate: c, Scope: arena.Get(child.Left).Scope})
			changed = true
		case 1:
			child.Right = arena.Alloc(Node{Kind: KindSelect, Left: child.Right, Right: NoNode, Predicate: c, Scope: arena.Get(child.Right).Scope})
			changed = true
		default:
			remaining = append(remaining, c)
		}
	}

	switch len(remaining) {
	case 0:
		// This Select node is fully pushed away; splice it out by copying
		// the (now rewritten) child into this slot.
		*n = *child
	default:
		n.Predicate = joinAnd(remaining)
	}
	return changed
}

// pushSingle handles the len(conjuncts)==1 case: a bare Compare/Bool
// predicate directly above a CrossProduct/Join, pushed wholesale to one
// side if possible.
func pushSingle(arena *Arena, cat *catalog.Catalog, ref NodeRef) bool {
	n := arena.Get(ref)
	child := arena.Get(n.Left)
	leftScope, rightScope := arena.Get(child.Left).Scope, arena.Get(child.Right).Scope
	side := predicateSide(cat, n.Predicate, leftScope, rightScope)
	switch side {
	case -1:
		child.Left = arena.Alloc(Node{Kind: KindSelect, Left: child.Left, Right: NoNode, Predicate: n.Predicate, Scope: arena.Get(child.Left).Scope})
		*n = *child
		return true
	case 1:
		child.Right = arena.Alloc(Node{Kind: KindSelect, Left: child.Right, Right: NoNode, Predicate: n.Predicate, Scope: arena.Get(child.Right).Scope})
		*n = *child
		return true
	default:
		return false
	}
}

// splitAnd flattens nested AND nodes into a flat slice of conjuncts.
func splitAnd(p query.Predicate) []query.Predicate {
	b, ok := p.(*query.Bool)
	if !ok || b.Op != query.BoolAnd {
		return []query.Predicate{p}
	}
	return append(splitAnd(b.Left), splitAnd(b.Right)...)
}

func joinAnd(ps []query.Predicate) query.Predicate {
	out := ps[0]
	for _, p := range ps[1:] {
		out = query.And(out, p)
	}
	return out
}

// sideOf reports which side of a binary node a qualified or unqualified
// column reference belongs to: -1 left, 1 right, 0 unknown/ambiguous.
func sideOf(cat *catalog.Catalog, ref query.ColumnRef, leftScope, rightScope []string) int {
	inLeft := inScope(cat, ref, leftScope)
	inRight := inScope(cat, ref, rightScope)
	switch {
	case inLeft && !inRight:
		return -1
	case inRight && !inLeft:
		return 1
	default:
		return 0
	}
}

func inScope(cat *catalog.Catalog, ref query.ColumnRef, scope []string) bool {
	if ref.Table != "" {
		for _, t := range scope {
			if t == ref.Table {
				return true
			}
		}
		return false
	}
	for _, t := range scope {
		if _, err := cat.Resolve(t, ref.Column); err == nil {
			return true
		}
	}
	return false
}

// predicateSide reports which side every column of p belongs to, or 0 if
// it spans both (or resolution is ambiguous).
func predicateSide(cat *catalog.Catalog, p query.Predicate, leftScope, rightScope []string) int {
	side := 0
	for i, ref := range p.Columns() {
		s := sideOf(cat, ref, leftScope, rightScope)
		if s == 0 {
			return 0
		}
		if i == 0 {
			side = s
		} else if s != side {
			return 0
		}
	}
	return side
}
