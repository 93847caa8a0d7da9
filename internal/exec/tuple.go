// Package exec implements the physical operators: TableAccess, Select,
// Project, CrossProduct, Join, OrderBy, Skip/Limit (as BoundedTake),
// Aggregate, Distinct, Insert, Update, Delete. Operator shape is grounded
// on kfigon-simple-db's naive/algebra.go (Select/Project/Product as pure
// row-sequence transforms); the Relation-of-composite-rows representation
// follows spec §3's "entry per source table in scope, keyed by table name"
// literally, all the way through the operator chain, and is only
// flattened to the caller-facing shape at the very end (see result.go).
package exec

import (
	"github.com/kartikbazzad/reldb/internal/query"
	"github.com/kartikbazzad/reldb/internal/types"
)

// TableRow is one table's contribution to a Tuple: the stored row's
// identity plus its (possibly narrowed, post projection-push-down) payload.
type TableRow struct {
	ID      types.RowID
	Payload map[string]types.Value
}

// Tuple is a composite row: an entry per source table in scope, keyed by
// table name, plus an optional "" entry holding computed aggregate
// aliases that are not attached to any one source table.
type Tuple map[string]TableRow

// Relation is a finite sequence of result rows produced by an operator.
type Relation []Tuple

// Resolve implements query.Row so a Tuple can be evaluated directly by any
// Predicate. A qualified ref looks up its table's payload; an unqualified
// ref searches every real (non-"") table entry and returns the first hit.
func (t Tuple) Resolve(ref query.ColumnRef) (types.Value, bool) {
	if ref.Table != "" {
		row, ok := t[ref.Table]
		if !ok {
			return types.Absent, false
		}
		v, ok := row.Payload[ref.Column]
		if !ok {
			return types.Absent, true
		}
		return v, true
	}
	for table, row := range t {
		if table == "" {
			continue
		}
		if v, ok := row.Payload[ref.Column]; ok {
			return v, true
		}
	}
	if row, ok := t[""]; ok {
		if v, ok := row.Payload[ref.Column]; ok {
			return v, true
		}
	}
	return types.Absent, false
}

// merge combines two disjoint-table tuples into one composite, used by
// CrossProduct and Join.
func merge(left, right Tuple) Tuple {
	out := make(Tuple, len(left)+len(right))
	for k, v := range left {
		out[k] = v
	}
	for k, v := range right {
		out[k] = v
	}
	return out
}

func singleTuple(table string, row types.Row) Tuple {
	return Tuple{table: {ID: row.ID, Payload: row.Payload}}
}
