package query

import (
	"testing"

	"github.com/kartikbazzad/reldb/internal/types"
)

type fakeRow map[string]types.Value

func (r fakeRow) Resolve(ref ColumnRef) (types.Value, bool) {
	v, ok := r[ref.Column]
	return v, ok
}

func TestCompareStrictAbsentIsFalse(t *testing.T) {
	row := fakeRow{"x": types.Absent}
	p := Eq(ColumnRef{Column: "x"}, types.Int(1))
	if p.Evaluate(row) {
		t.Fatal("comparison against absent must be false, not true")
	}
	neq := Cmp(ColumnRef{Column: "x"}, OpNeq, types.Int(1))
	if neq.Evaluate(row) {
		t.Fatal("NEQ against absent must also be false under strict semantics, not true")
	}
}

func TestCompareMissingColumnIsFalse(t *testing.T) {
	row := fakeRow{}
	p := Eq(ColumnRef{Column: "missing"}, types.Int(1))
	if p.Evaluate(row) {
		t.Fatal("unresolved column must evaluate false")
	}
}

func TestCompareLiteral(t *testing.T) {
	row := fakeRow{"x": types.Int(5)}
	if !Eq(ColumnRef{Column: "x"}, types.Int(5)).Evaluate(row) {
		t.Fatal("expected 5 = 5 to be true")
	}
	if Cmp(ColumnRef{Column: "x"}, OpGt, types.Int(5)).Evaluate(row) {
		t.Fatal("expected 5 > 5 to be false")
	}
}

func TestCompareJoin(t *testing.T) {
	row := fakeRow{"a": types.Int(3), "b": types.Int(3)}
	p := ColEq(ColumnRef{Column: "a"}, ColumnRef{Column: "b"})
	if !p.Evaluate(row) {
		t.Fatal("expected a = b to be true")
	}
}

func TestBoolCombinators(t *testing.T) {
	row := fakeRow{"x": types.Int(5), "y": types.Int(10)}
	and := And(Eq(ColumnRef{Column: "x"}, types.Int(5)), Eq(ColumnRef{Column: "y"}, types.Int(10)))
	if !and.Evaluate(row) {
		t.Fatal("expected AND of two true comparisons to be true")
	}
	or := Or(Eq(ColumnRef{Column: "x"}, types.Int(0)), Eq(ColumnRef{Column: "y"}, types.Int(10)))
	if !or.Evaluate(row) {
		t.Fatal("expected OR with one true branch to be true")
	}
	not := Not(Eq(ColumnRef{Column: "x"}, types.Int(0)))
	if !not.Evaluate(row) {
		t.Fatal("expected NOT of a false comparison to be true")
	}
}

func TestPredicateColumnsCollectsLeavesInTree(t *testing.T) {
	p := And(
		Eq(ColumnRef{Table: "A", Column: "x"}, types.Int(1)),
		ColEq(ColumnRef{Table: "A", Column: "id"}, ColumnRef{Table: "B", Column: "aId"}),
	)
	cols := p.Columns()
	if len(cols) != 3 {
		t.Fatalf("expected 3 column refs across the tree, got %d: %v", len(cols), cols)
	}
}
