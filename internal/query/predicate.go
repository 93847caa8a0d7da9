// Package query defines the declarative, validated query description shapes
// the engine façade consumes (spec §4.3): Select, Insert, Update, Delete,
// plus the predicate expression tree, ordering specs, and aggregator
// vocabulary those shapes reference.
//
// Join/aggregate vocabulary grounded on utkarsh5026-StoreMy's
// pkg/plan/operators.go (PredicateInfo, JoinType, SelectListNode);
// description shapes grounded on the teacher's internal/query/types.go.
package query

import (
	"fmt"

	"github.com/kartikbazzad/reldb/internal/types"
)

// Op is a comparison operator for a leaf predicate.
type Op int

const (
	OpEq Op = iota
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	default:
		return "?"
	}
}

func (o Op) apply(cmp int) bool {
	switch o {
	case OpEq:
		return cmp == 0
	case OpNeq:
		return cmp != 0
	case OpLt:
		return cmp < 0
	case OpLte:
		return cmp <= 0
	case OpGt:
		return cmp > 0
	case OpGte:
		return cmp >= 0
	default:
		return false
	}
}

// ColumnRef names a column, optionally qualified by table (qualification is
// required once a query's scope spans more than one table).
type ColumnRef struct {
	Table  string
	Column string
}

func (c ColumnRef) String() string {
	if c.Table == "" {
		return c.Column
	}
	return c.Table + "." + c.Column
}

// Row is the minimal surface a predicate evaluates against: resolving a
// ColumnRef to a Value, whether the row is a flat single-table row or a
// composite spanning several tables in scope.
type Row interface {
	Resolve(ref ColumnRef) (types.Value, bool)
}

// Predicate is a tree of comparison and boolean nodes. Each node exposes a
// pure Evaluate(row) -> bool, per spec §3.
type Predicate interface {
	Evaluate(row Row) bool
	// Columns returns every ColumnRef the predicate reaches, used by
	// predicate push-down to decide which subtree a clause belongs under.
	Columns() []ColumnRef
	String() string
}

// Compare is a leaf node comparing a column against either a literal or
// another column (for join predicates). Exactly one of Literal/Other is
// meaningful, selected by IsJoin.
type Compare struct {
	Column  ColumnRef
	Op      Op
	Literal types.Value
	Other   ColumnRef
	IsJoin  bool
}

// Eq builds a column-vs-literal equality predicate.
func Eq(col ColumnRef, lit types.Value) *Compare { return &Compare{Column: col, Op: OpEq, Literal: lit} }

// Cmp builds a column-vs-literal comparison with an arbitrary operator.
func Cmp(col ColumnRef, op Op, lit types.Value) *Compare {
	return &Compare{Column: col, Op: op, Literal: lit}
}

// ColEq builds a column-vs-column equality predicate, the shape join
// inference looks for directly above a CrossProduct.
func ColEq(a, b ColumnRef) *Compare {
	return &Compare{Column: a, Op: OpEq, Other: b, IsJoin: true}
}

func (c *Compare) Evaluate(row Row) bool {
	lhs, ok := row.Resolve(c.Column)
	if !ok {
		return false
	}
	var rhs types.Value
	if c.IsJoin {
		rhs, ok = row.Resolve(c.Other)
		if !ok {
			return false
		}
	} else {
		rhs = c.Literal
	}
	if lhs.IsAbsent() || rhs.IsAbsent() {
		// Strict two-valued semantics: a comparison against absent is
		// simply false, never "unknown" (spec §9 open question, resolved
		// in DESIGN.md in favor of strict rather than three-valued logic).
		return false
	}
	return c.Op.apply(lhs.Compare(rhs))
}

func (c *Compare) Columns() []ColumnRef {
	if c.IsJoin {
		return []ColumnRef{c.Column, c.Other}
	}
	return []ColumnRef{c.Column}
}

func (c *Compare) String() string {
	if c.IsJoin {
		return fmt.Sprintf("%s %s %s", c.Column, c.Op, c.Other)
	}
	return fmt.Sprintf("%s %s %s", c.Column, c.Op, c.Literal)
}

// BoolOp tags which boolean combinator an inner predicate node applies.
type BoolOp int

const (
	BoolAnd BoolOp = iota
	BoolOr
	BoolNot
)

// Bool is an and/or/not inner node over one or two child predicates (Not
// uses only Left).
type Bool struct {
	Op          BoolOp
	Left, Right Predicate
}

func And(l, r Predicate) *Bool { return &Bool{Op: BoolAnd, Left: l, Right: r} }
func Or(l, r Predicate) *Bool  { return &Bool{Op: BoolOr, Left: l, Right: r} }
func Not(p Predicate) *Bool    { return &Bool{Op: BoolNot, Left: p} }

func (b *Bool) Evaluate(row Row) bool {
	switch b.Op {
	case BoolAnd:
		return b.Left.Evaluate(row) && b.Right.Evaluate(row)
	case BoolOr:
		return b.Left.Evaluate(row) || b.Right.Evaluate(row)
	case BoolNot:
		return !b.Left.Evaluate(row)
	default:
		return false
	}
}

func (b *Bool) Columns() []ColumnRef {
	cols := append([]ColumnRef{}, b.Left.Columns()...)
	if b.Right != nil {
		cols = append(cols, b.Right.Columns()...)
	}
	return cols
}

func (b *Bool) String() string {
	switch b.Op {
	case BoolAnd:
		return fmt.Sprintf("(%s AND %s)", b.Left, b.Right)
	case BoolOr:
		return fmt.Sprintf("(%s OR %s)", b.Left, b.Right)
	case BoolNot:
		return fmt.Sprintf("NOT (%s)", b.Left)
	default:
		return "?"
	}
}
