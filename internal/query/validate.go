package query

import (
	"fmt"

	"github.com/kartikbazzad/reldb/internal/catalog"
	"github.com/kartikbazzad/reldb/internal/config"
	"github.com/kartikbazzad/reldb/internal/errors"
	"github.com/kartikbazzad/reldb/internal/types"
)

// Validate enforces every rule spec §4.3 lists, surfacing a
// *errors.ValidationError on the first violation found. It must run before
// planning; the planner assumes a Description that passed Validate. limits
// bounds a Select's result size and join fan-out; pass nil to skip those two
// checks (callers exercising Validate in isolation, e.g. tests).
func Validate(d Description, cat *catalog.Catalog, limits *config.QueryConfig) error {
	switch {
	case d.Select != nil:
		return validateSelect(d.Select, cat, limits)
	case d.Insert != nil:
		return validateInsert(d.Insert, cat)
	case d.Update != nil:
		return validateUpdate(d.Update, cat)
	case d.Delete != nil:
		return validateDelete(d.Delete, cat)
	default:
		return &errors.ValidationError{Op: "query", Reason: "description has no populated shape"}
	}
}

func tableSet(tables []string) map[string]bool {
	s := make(map[string]bool, len(tables))
	for _, t := range tables {
		s[t] = true
	}
	return s
}

func checkTablesExist(op string, tables []string, cat *catalog.Catalog) error {
	for _, t := range tables {
		if _, ok := cat.Table(t); !ok {
			return &errors.ValidationError{Op: op, Reason: fmt.Sprintf("unknown table %q", t)}
		}
	}
	return nil
}

func checkColumnRef(op string, ref ColumnRef, scope map[string]bool, cat *catalog.Catalog) error {
	if ref.Table != "" {
		if !scope[ref.Table] {
			return &errors.ValidationError{Op: op, Reason: fmt.Sprintf("column %s refers to table %q not in from list", ref, ref.Table)}
		}
		if _, err := cat.Resolve(ref.Table, ref.Column); err != nil {
			return &errors.ValidationError{Op: op, Reason: err.Error()}
		}
		return nil
	}

	// Unqualified reference: must resolve unambiguously against exactly one
	// table in scope.
	var found string
	for t := range scope {
		if _, err := cat.Resolve(t, ref.Column); err == nil {
			if found != "" {
				return &errors.ValidationError{Op: op, Reason: fmt.Sprintf("column %q is ambiguous across tables %q and %q", ref.Column, found, t)}
			}
			found = t
		}
	}
	if found == "" {
		return &errors.ValidationError{Op: op, Reason: fmt.Sprintf("unknown column %q", ref.Column)}
	}
	return nil
}

func checkPredicateColumns(op string, p Predicate, scope map[string]bool, cat *catalog.Catalog) error {
	if p == nil {
		return nil
	}
	for _, ref := range p.Columns() {
		if err := checkColumnRef(op, ref, scope, cat); err != nil {
			return err
		}
	}
	return checkPredicateTypes(op, p, scope, cat)
}

// checkPredicateTypes walks p's Compare leaves and rejects a literal or a
// join partner whose kind doesn't match the column it's compared against,
// mirroring the column/value check validateInsert and validateUpdate already
// run on writes. Without it a type-mismatched
// predicate reaches Compare.Evaluate, which panics rather than returning
// false (internal/types/value.go's Value.Compare only handles same-kind and
// numeric-widened pairs).
func checkPredicateTypes(op string, p Predicate, scope map[string]bool, cat *catalog.Catalog) error {
	switch n := p.(type) {
	case nil:
		return nil
	case *Compare:
		return checkCompareTypes(op, n, scope, cat)
	case *Bool:
		if err := checkPredicateTypes(op, n.Left, scope, cat); err != nil {
			return err
		}
		if n.Right != nil {
			return checkPredicateTypes(op, n.Right, scope, cat)
		}
		return nil
	default:
		return nil
	}
}

func checkCompareTypes(op string, c *Compare, scope map[string]bool, cat *catalog.Catalog) error {
	col, err := resolveInScope(c.Column, scope, cat)
	if err != nil {
		// Already reported by checkColumnRef above; nothing to compare here.
		return nil
	}
	if c.IsJoin {
		other, err := resolveInScope(c.Other, scope, cat)
		if err != nil {
			return nil
		}
		if col.Type != other.Type {
			return &errors.ValidationError{
				Op:     op,
				Reason: fmt.Sprintf("%s: column %s is %s, joined against %s which is %s", errors.ErrTypeMismatch, c.Column, col.Type, c.Other, other.Type),
				Err:    errors.ErrTypeMismatch,
			}
		}
		return nil
	}
	if !c.Literal.IsAbsent() && c.Literal.Kind() != col.Type {
		return &errors.ValidationError{
			Op:     op,
			Reason: fmt.Sprintf("%s: column %s is %s, compared against a literal of kind %s", errors.ErrTypeMismatch, c.Column, col.Type, c.Literal.Kind()),
			Err:    errors.ErrTypeMismatch,
		}
	}
	return nil
}

func isNumericAggregator(fn AggFunc) bool {
	switch fn {
	case AggSum, AggAvg, AggStddev, AggMin, AggMax:
		return true
	default:
		return false
	}
}

func validateSelect(s *Select, cat *catalog.Catalog, limits *config.QueryConfig) error {
	const op = "select"
	if len(s.Tables) == 0 {
		return &errors.ValidationError{Op: op, Reason: "select requires at least one table"}
	}
	if err := checkTablesExist(op, s.Tables, cat); err != nil {
		return err
	}
	if limits != nil && limits.MaxTablesPerSelect > 0 && len(s.Tables)+len(s.Joins) > limits.MaxTablesPerSelect {
		return &errors.ValidationError{Op: op, Reason: fmt.Sprintf("select touches %d tables, exceeding the limit of %d", len(s.Tables)+len(s.Joins), limits.MaxTablesPerSelect)}
	}
	scope := tableSet(s.Tables)
	for _, j := range s.Joins {
		scope[j.Table] = true
		if _, ok := cat.Table(j.Table); !ok {
			return &errors.ValidationError{Op: op, Reason: fmt.Sprintf("unknown table %q", j.Table)}
		}
		if err := checkPredicateColumns(op, j.Predicate, scope, cat); err != nil {
			return err
		}
	}

	if err := checkPredicateColumns(op, s.Predicate, scope, cat); err != nil {
		return err
	}

	for _, pc := range s.Projection {
		if pc.Agg != nil {
			if !pc.Agg.Star {
				if err := checkColumnRef(op, pc.Agg.Column, scope, cat); err != nil {
					return err
				}
				col, err := resolveInScope(pc.Agg.Column, scope, cat)
				if err != nil {
					return err
				}
				if isNumericAggregator(pc.Agg.Func) && col.Type != types.KindInt && col.Type != types.KindFloat {
					return &errors.ValidationError{Op: op, Reason: fmt.Sprintf("aggregator %s requires a numeric column, got %s on %s", pc.Agg.Func, col.Type, pc.Agg.Column)}
				}
			} else if pc.Agg.Func != AggCount {
				return &errors.ValidationError{Op: op, Reason: "only COUNT may be applied to *"}
			}
			continue
		}
		if err := checkColumnRef(op, pc.Column, scope, cat); err != nil {
			return err
		}
	}

	for _, ob := range s.OrderBy {
		if err := checkColumnRef(op, ob.Column, scope, cat); err != nil {
			return err
		}
	}

	if s.Distinct != nil {
		if err := checkColumnRef(op, *s.Distinct, scope, cat); err != nil {
			return err
		}
	}

	if s.Limit != nil && *s.Limit < 0 {
		return &errors.ValidationError{Op: op, Reason: "limit must be non-negative"}
	}
	if limits != nil && limits.MaxLimit > 0 && s.Limit != nil && *s.Limit > limits.MaxLimit {
		return &errors.ValidationError{Op: op, Reason: fmt.Sprintf("limit %d exceeds the maximum of %d", *s.Limit, limits.MaxLimit)}
	}
	if s.Skip != nil && *s.Skip < 0 {
		return &errors.ValidationError{Op: op, Reason: "skip must be non-negative"}
	}
	return nil
}

func resolveInScope(ref ColumnRef, scope map[string]bool, cat *catalog.Catalog) (types.Column, error) {
	if ref.Table != "" {
		return cat.Resolve(ref.Table, ref.Column)
	}
	for t := range scope {
		if col, err := cat.Resolve(t, ref.Column); err == nil {
			return col, nil
		}
	}
	return types.Column{}, fmt.Errorf("unknown column %q", ref.Column)
}

func validateInsert(ins *Insert, cat *catalog.Catalog) error {
	const op = "insert"
	tbl, ok := cat.Table(ins.Table)
	if !ok {
		return &errors.ValidationError{Op: op, Reason: fmt.Sprintf("unknown table %q", ins.Table)}
	}
	for _, r := range ins.Rows {
		for colName, v := range r.Payload {
			col, ok := tbl.Column(colName)
			if !ok {
				return &errors.ValidationError{Op: op, Reason: fmt.Sprintf("unknown column %q on table %q", colName, ins.Table)}
			}
			if !v.IsAbsent() && v.Kind() != col.Type {
				return &errors.ValidationError{Op: op, Reason: fmt.Sprintf("%s: column %q expects %s, got %s", errors.ErrTypeMismatch, colName, col.Type, v.Kind()), Err: errors.ErrTypeMismatch}
			}
			if v.IsAbsent() && !col.Nullable {
				return &errors.ValidationError{Op: op, Reason: fmt.Sprintf("column %q is not nullable", colName)}
			}
		}
	}
	return nil
}

func validateUpdate(u *Update, cat *catalog.Catalog) error {
	const op = "update"
	tbl, ok := cat.Table(u.Table)
	if !ok {
		return &errors.ValidationError{Op: op, Reason: fmt.Sprintf("unknown table %q", u.Table)}
	}
	scope := map[string]bool{u.Table: true}
	if err := checkPredicateColumns(op, u.Predicate, scope, cat); err != nil {
		return err
	}
	for _, a := range u.Assignments {
		col, ok := tbl.Column(a.Column.Column)
		if !ok {
			return &errors.ValidationError{Op: op, Reason: fmt.Sprintf("unknown column %q on table %q", a.Column.Column, u.Table)}
		}
		if !a.Value.IsAbsent() && a.Value.Kind() != col.Type {
			return &errors.ValidationError{Op: op, Reason: fmt.Sprintf("%s: column %q expects %s, got %s", errors.ErrTypeMismatch, a.Column.Column, col.Type, a.Value.Kind()), Err: errors.ErrTypeMismatch}
		}
	}
	return nil
}

func validateDelete(del *Delete, cat *catalog.Catalog) error {
	const op = "delete"
	if _, ok := cat.Table(del.Table); !ok {
		return &errors.ValidationError{Op: op, Reason: fmt.Sprintf("unknown table %q", del.Table)}
	}
	scope := map[string]bool{del.Table: true}
	return checkPredicateColumns(op, del.Predicate, scope, cat)
}
