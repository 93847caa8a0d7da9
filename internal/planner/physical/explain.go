package physical

import (
	"fmt"
	"strings"
)

// Plan is the full physical tree plus enough metadata for the façade to
// cache and explain it.
type Plan struct {
	Root *Node
	// Shape is the canonicalized query-shape cache key this plan was built
	// for; the façade's LRU is keyed on it.
	Shape string
}

// Explain renders the operator tree indented, one line per node, in the
// same indent-and-recurse style this pack's planners use for their
// String() methods (grounded on utkarsh5026-StoreMy's plan.PlanNode).
func (p *Plan) Explain() string {
	var sb strings.Builder
	explainNode(&sb, p.Root, 0)
	return sb.String()
}

func explainNode(sb *strings.Builder, n *Node, depth int) {
	if n == nil {
		return
	}
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(describe(n))
	sb.WriteString("\n")
	explainNode(sb, n.Left, depth+1)
	explainNode(sb, n.Right, depth+1)
}

func describe(n *Node) string {
	switch n.Kind {
	case KindTableAccess:
		return fmt.Sprintf("TableAccess(%s)", n.Table)
	case KindSelect:
		return fmt.Sprintf("Select(%s)", n.Predicate)
	case KindProject:
		return fmt.Sprintf("Project(%v, aggs=%v)", n.Columns, n.Aggregators)
	case KindCrossProduct:
		return "CrossProduct"
	case KindJoin:
		return fmt.Sprintf("Join(%s, strategy=%s)", n.Predicate, n.JoinStrategy)
	case KindOrderBy:
		return fmt.Sprintf("OrderBy(%v, noop=%t)", n.OrderBy, n.NoopSort)
	case KindBoundedTake:
		skip, limit := "-", "-"
		if n.Skip != nil {
			skip = fmt.Sprintf("%d", *n.Skip)
		}
		if n.Limit != nil {
			limit = fmt.Sprintf("%d", *n.Limit)
		}
		return fmt.Sprintf("BoundedTake(skip=%s, limit=%s)", skip, limit)
	case KindDistinct:
		return fmt.Sprintf("Distinct(%s)", n.DistinctColumn)
	case KindInsert:
		return fmt.Sprintf("Insert(%s, rows=%d, policy=%v)", n.Table, len(n.Rows), n.Policy)
	case KindUpdate:
		return fmt.Sprintf("Update(%s, assignments=%d)", n.Table, len(n.Assignments))
	case KindDelete:
		return fmt.Sprintf("Delete(%s)", n.Table)
	default:
		return n.Kind.String()
	}
}
