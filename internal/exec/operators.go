package exec

import (
	"sort"

	"github.com/kartikbazzad/reldb/internal/errors"
	"github.com/kartikbazzad/reldb/internal/planner/physical"
	"github.com/kartikbazzad/reldb/internal/query"
	"github.com/kartikbazzad/reldb/internal/types"
)

// Execute walks a physical plan and runs it against ctx's storage,
// returning the (still composite) Relation it produced. Mutating nodes
// (Insert/Update/Delete) return a single Tuple carrying their affected
// count under the "" / "count" slot; engine.Execute translates that into
// Result.Affected.
func Execute(n *physical.Node, ctx *ExecContext) (Relation, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case physical.KindTableAccess:
		return execTableAccess(n, ctx)
	case physical.KindSelect:
		return execSelect(n, ctx)
	case physical.KindProject:
		return execProject(n, ctx)
	case physical.KindCrossProduct:
		return execCrossProduct(n, ctx)
	case physical.KindJoin:
		return execJoin(n, ctx)
	case physical.KindOrderBy:
		return execOrderBy(n, ctx)
	case physical.KindBoundedTake:
		return execBoundedTake(n, ctx)
	case physical.KindDistinct:
		return execDistinct(n, ctx)
	case physical.KindInsert:
		return execInsert(n, ctx)
	case physical.KindUpdate:
		return execUpdate(n, ctx)
	case physical.KindDelete:
		return execDelete(n, ctx)
	default:
		return nil, &errors.ExecError{Operator: n.Kind.String(), Reason: "unknown physical node kind"}
	}
}

func execTableAccess(n *physical.Node, ctx *ExecContext) (Relation, error) {
	if err := ctx.checkCancelled(); err != nil {
		return nil, err
	}
	store, err := ctx.storageFor(n.Table)
	if err != nil {
		return nil, err
	}
	rows, err := store.Get(nil)
	if err != nil {
		return nil, &errors.StorageError{Op: "get", Err: err}
	}
	rel := make(Relation, 0, len(rows))
	for _, r := range rows {
		rel = append(rel, singleTuple(n.Table, r))
	}
	return rel, nil
}

func execSelect(n *physical.Node, ctx *ExecContext) (Relation, error) {
	in, err := Execute(n.Left, ctx)
	if err != nil {
		return nil, err
	}
	out := make(Relation, 0, len(in))
	for _, t := range in {
		if n.Predicate.Evaluate(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func execCrossProduct(n *physical.Node, ctx *ExecContext) (Relation, error) {
	left, err := Execute(n.Left, ctx)
	if err != nil {
		return nil, err
	}
	right, err := Execute(n.Right, ctx)
	if err != nil {
		return nil, err
	}
	out := make(Relation, 0, len(left)*len(right))
	for _, l := range left {
		for _, r := range right {
			out = append(out, merge(l, r))
		}
	}
	return out, nil
}

// execJoin runs Join(colA=colB): as CrossProduct but keeping only tuples
// where colA = colB. When the predicate is a simple equi-join, a hash join
// is used (building on whichever side materializes fewer tuples); any
// other join predicate shape falls back to nested-loop evaluation of the
// full predicate, still correct, just without the hash shortcut.
func execJoin(n *physical.Node, ctx *ExecContext) (Relation, error) {
	left, err := Execute(n.Left, ctx)
	if err != nil {
		return nil, err
	}
	right, err := Execute(n.Right, ctx)
	if err != nil {
		return nil, err
	}

	cmp, ok := n.Predicate.(*query.Compare)
	if !ok || !cmp.IsJoin || cmp.Op != query.OpEq {
		return nestedLoopJoin(left, right, n.Predicate), nil
	}

	leftKey, rightKey := cmp.Column, cmp.Other
	if !columnInScope(leftKey, n.Left.Scope) {
		leftKey, rightKey = rightKey, leftKey
	}

	buildRel, probeRel := left, right
	buildKey, probeKey := leftKey, rightKey
	buildFirst := true
	if len(right) < len(left) {
		buildRel, probeRel = right, left
		buildKey, probeKey = rightKey, leftKey
		buildFirst = false
	}

	buckets := make(map[string][]Tuple, len(buildRel))
	for _, t := range buildRel {
		v, ok := t.Resolve(buildKey)
		if !ok || v.IsAbsent() {
			continue
		}
		buckets[v.String()] = append(buckets[v.String()], t)
	}

	out := make(Relation, 0, len(probeRel))
	for _, p := range probeRel {
		v, ok := p.Resolve(probeKey)
		if !ok || v.IsAbsent() {
			continue
		}
		for _, b := range buckets[v.String()] {
			if buildFirst {
				out = append(out, merge(b, p))
			} else {
				out = append(out, merge(p, b))
			}
		}
	}
	return out, nil
}

func columnInScope(ref query.ColumnRef, scope []string) bool {
	if ref.Table == "" {
		return false
	}
	for _, t := range scope {
		if t == ref.Table {
			return true
		}
	}
	return false
}

func nestedLoopJoin(left, right Relation, pred query.Predicate) Relation {
	out := make(Relation, 0, len(left))
	for _, l := range left {
		for _, r := range right {
			m := merge(l, r)
			if pred.Evaluate(m) {
				out = append(out, m)
			}
		}
	}
	return out
}

func execProject(n *physical.Node, ctx *ExecContext) (Relation, error) {
	in, err := Execute(n.Left, ctx)
	if err != nil {
		return nil, err
	}

	if len(n.Columns) == 0 && len(n.Aggregators) > 0 {
		// Pure aggregate projection: collapse to exactly one output row,
		// regardless of input cardinality (spec §4.6/§8).
		payload := make(map[string]types.Value, len(n.Aggregators))
		for _, a := range n.Aggregators {
			payload[aggAlias(a)] = computeAggregate(a, in)
		}
		return Relation{Tuple{"": {Payload: payload}}}, nil
	}

	var broadcast map[string]types.Value
	if len(n.Aggregators) > 0 {
		broadcast = make(map[string]types.Value, len(n.Aggregators))
		for _, a := range n.Aggregators {
			broadcast[aggAlias(a)] = computeAggregate(a, in)
		}
	}

	out := make(Relation, 0, len(in))
	for _, t := range in {
		projected := projectTuple(t, n.Columns)
		if broadcast != nil {
			row, ok := projected[""]
			if !ok {
				row = TableRow{Payload: map[string]types.Value{}}
			}
			for k, v := range broadcast {
				row.Payload[k] = v
			}
			projected[""] = row
		}
		out = append(out, projected)
	}
	return out, nil
}

func projectTuple(t Tuple, cols []query.ColumnRef) Tuple {
	out := make(Tuple)
	for _, ref := range cols {
		table := ref.Table
		if table == "" {
			for tn, row := range t {
				if tn == "" {
					continue
				}
				if _, ok := row.Payload[ref.Column]; ok {
					table = tn
					break
				}
			}
		}
		v, _ := t.Resolve(query.ColumnRef{Table: table, Column: ref.Column})
		row, ok := out[table]
		if !ok {
			row = TableRow{Payload: map[string]types.Value{}}
			if src, ok := t[table]; ok {
				row.ID = src.ID
			}
		}
		row.Payload[ref.Column] = v
		out[table] = row
	}
	return out
}

func execOrderBy(n *physical.Node, ctx *ExecContext) (Relation, error) {
	in, err := Execute(n.Left, ctx)
	if err != nil {
		return nil, err
	}
	if n.NoopSort {
		return in, nil
	}
	out := make(Relation, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		return compareByOrderSpecs(out[i], out[j], n.OrderBy) < 0
	})
	return out, nil
}

// compareByOrderSpecs implements multi-column ORDER BY as a single
// comparator applied lexicographically across specs, keeping the sort
// stable with respect to earlier keys. NULL (Absent) sorts below every
// other value in ASC; DESC is a true mirror, achieved by reversing the
// whole comparison rather than special-casing Absent again.
func compareByOrderSpecs(a, b Tuple, specs []query.OrderSpec) int {
	for _, s := range specs {
		av, _ := a.Resolve(s.Column)
		bv, _ := b.Resolve(s.Column)
		c := av.Compare(bv)
		if s.Dir == query.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

func execBoundedTake(n *physical.Node, ctx *ExecContext) (Relation, error) {
	in, err := Execute(n.Left, ctx)
	if err != nil {
		return nil, err
	}
	start := 0
	if n.Skip != nil {
		start = *n.Skip
	}
	if start > len(in) {
		start = len(in)
	}
	end := len(in)
	if n.Limit != nil {
		if start+*n.Limit < end {
			end = start + *n.Limit
		}
	}
	return in[start:end], nil
}

func execDistinct(n *physical.Node, ctx *ExecContext) (Relation, error) {
	in, err := Execute(n.Left, ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	out := make(Relation, 0)
	for _, t := range in {
		v, ok := t.Resolve(n.DistinctColumn)
		if !ok {
			continue
		}
		key := v.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		table := n.DistinctColumn.Table
		out = append(out, Tuple{table: {Payload: map[string]types.Value{n.DistinctColumn.Column: v}}})
	}
	return out, nil
}

func execInsert(n *physical.Node, ctx *ExecContext) (Relation, error) {
	if err := ctx.checkCancelled(); err != nil {
		return nil, err
	}
	store, err := ctx.storageFor(n.Table)
	if err != nil {
		return nil, err
	}

	if n.Policy == query.ConflictError {
		ids := make([]types.RowID, len(n.Rows))
		for i, r := range n.Rows {
			ids[i] = r.ID
		}
		existing, err := store.Get(ids)
		if err != nil {
			return nil, &errors.StorageError{Op: "get", Err: err}
		}
		if len(existing) > 0 {
			return nil, &errors.ExecError{Operator: "Insert", Reason: "row already exists", Err: errors.ErrRowExists}
		}
	}

	if err := store.Put(n.Rows); err != nil {
		return nil, &errors.StorageError{Op: "put", Err: err}
	}
	return countRelation(len(n.Rows)), nil
}

func execUpdate(n *physical.Node, ctx *ExecContext) (Relation, error) {
	matched, err := Execute(n.Left, ctx)
	if err != nil {
		return nil, err
	}

	store, err := ctx.storageFor(n.Table)
	if err != nil {
		return nil, err
	}

	updated := make([]types.Row, 0, len(matched))
	for _, t := range matched {
		row, ok := t[n.Table]
		if !ok {
			continue
		}
		r := types.NewRow(row.ID, row.Payload)
		for _, a := range n.Assignments {
			r = r.With(a.Column.Column, a.Value)
		}
		updated = append(updated, r)
	}

	if err := ctx.checkCancelled(); err != nil {
		return nil, err
	}
	if err := store.Put(updated); err != nil {
		return nil, &errors.StorageError{Op: "put", Err: err}
	}
	return countRelation(len(updated)), nil
}

func execDelete(n *physical.Node, ctx *ExecContext) (Relation, error) {
	matched, err := Execute(n.Left, ctx)
	if err != nil {
		return nil, err
	}

	store, err := ctx.storageFor(n.Table)
	if err != nil {
		return nil, err
	}

	ids := make([]types.RowID, 0, len(matched))
	for _, t := range matched {
		if row, ok := t[n.Table]; ok {
			ids = append(ids, row.ID)
		}
	}

	if len(ids) == 0 {
		// A predicate that matched nothing must not hit Remove's "empty
		// means all" convention (spec §4.1) and wipe the table.
		return countRelation(0), nil
	}
	if err := ctx.checkCancelled(); err != nil {
		return nil, err
	}
	if err := store.Remove(ids); err != nil {
		return nil, &errors.StorageError{Op: "remove", Err: err}
	}
	return countRelation(len(ids)), nil
}

func countRelation(n int) Relation {
	return Relation{Tuple{"": {Payload: map[string]types.Value{"count": types.Int(int64(n))}}}}
}
