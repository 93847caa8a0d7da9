package engine

import (
	"fmt"
	"strings"

	"github.com/kartikbazzad/reldb/internal/query"
)

// canonicalShape renders a query.Description's structural shape — kind,
// table set, predicate shape, projection, joins, ordering, and whether
// limit/skip are present — without literal values. It is the plan-cache
// key; descriptions that carry literals (see hasLiteral) are never cached,
// so queries differing only in their constants do not share a plan.
func canonicalShape(d query.Description) string {
	switch {
	case d.Select != nil:
		return canonicalSelect(d.Select)
	case d.Insert != nil:
		return fmt.Sprintf("insert(%s,policy=%v,n=%d)", d.Insert.Table, d.Insert.Policy, len(d.Insert.Rows))
	case d.Update != nil:
		cols := make([]string, len(d.Update.Assignments))
		for i, a := range d.Update.Assignments {
			cols[i] = a.Column.String()
		}
		return fmt.Sprintf("update(%s,pred=%s,set=%s)", d.Update.Table, predicateShape(d.Update.Predicate), strings.Join(cols, ","))
	case d.Delete != nil:
		return fmt.Sprintf("delete(%s,pred=%s)", d.Delete.Table, predicateShape(d.Delete.Predicate))
	default:
		return "empty"
	}
}

func canonicalSelect(s *query.Select) string {
	var sb strings.Builder
	sb.WriteString("select(")
	sb.WriteString(strings.Join(s.Tables, ","))
	sb.WriteString(";pred=")
	sb.WriteString(predicateShape(s.Predicate))
	sb.WriteString(";proj=")
	for i, pc := range s.Projection {
		if i > 0 {
			sb.WriteString(",")
		}
		if pc.Agg != nil {
			sb.WriteString(fmt.Sprintf("%s(%s,distinct=%t)", pc.Agg.Func, pc.Agg.Column, pc.Agg.Distinct))
		} else {
			sb.WriteString(pc.Column.String())
		}
	}
	if s.Distinct != nil {
		sb.WriteString(";distinct=" + s.Distinct.String())
	}
	sb.WriteString(";joins=")
	for i, j := range s.Joins {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(j.Table + ":" + predicateShape(j.Predicate))
	}
	sb.WriteString(";order=")
	for i, o := range s.OrderBy {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(fmt.Sprintf("%s:%d", o.Column, o.Dir))
	}
	sb.WriteString(fmt.Sprintf(";limit=%t;skip=%t)", s.Limit != nil, s.Skip != nil))
	return sb.String()
}

// hasLiteral reports whether d carries any concrete value baked into the
// tree Build will produce: a predicate literal, an inserted row, or an
// assigned value. canonicalShape deliberately strips literals out of the
// cache key so structurally identical queries share one compiled plan, but
// logical.Build bakes the actual *query.Compare.Literal, Insert.Rows and
// Update.Assignments straight into the nodes it returns — there is no
// mechanism that rebinds those at Execute time. A plan built for one
// literal and served from the cache to a later call with a different
// literal would silently execute against the wrong value, so any
// Description carrying one is never added to or served from the cache.
func hasLiteral(d query.Description) bool {
	switch {
	case d.Select != nil:
		if predicateHasLiteral(d.Select.Predicate) {
			return true
		}
		for _, j := range d.Select.Joins {
			if predicateHasLiteral(j.Predicate) {
				return true
			}
		}
		return false
	case d.Insert != nil:
		return len(d.Insert.Rows) > 0
	case d.Update != nil:
		return len(d.Update.Assignments) > 0 || predicateHasLiteral(d.Update.Predicate)
	case d.Delete != nil:
		return predicateHasLiteral(d.Delete.Predicate)
	default:
		return false
	}
}

func predicateHasLiteral(p query.Predicate) bool {
	switch n := p.(type) {
	case nil:
		return false
	case *query.Compare:
		return !n.IsJoin
	case *query.Bool:
		return predicateHasLiteral(n.Left) || predicateHasLiteral(n.Right)
	default:
		return false
	}
}

// predicateShape renders a predicate's structure (columns, operators,
// boolean combinators) without any literal it compares against.
func predicateShape(p query.Predicate) string {
	if p == nil {
		return "-"
	}
	switch n := p.(type) {
	case *query.Compare:
		if n.IsJoin {
			return fmt.Sprintf("%s%s%s", n.Column, n.Op, n.Other)
		}
		return fmt.Sprintf("%s%s?", n.Column, n.Op)
	case *query.Bool:
		switch n.Op {
		case query.BoolNot:
			return "NOT(" + predicateShape(n.Left) + ")"
		case query.BoolAnd:
			return "(" + predicateShape(n.Left) + " AND " + predicateShape(n.Right) + ")"
		default:
			return "(" + predicateShape(n.Left) + " OR " + predicateShape(n.Right) + ")"
		}
	default:
		return "?"
	}
}
