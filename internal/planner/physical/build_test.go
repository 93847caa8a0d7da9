package physical

import (
	"testing"

	"github.com/kartikbazzad/reldb/internal/catalog"
	"github.com/kartikbazzad/reldb/internal/planner/logical"
	"github.com/kartikbazzad/reldb/internal/query"
	"github.com/kartikbazzad/reldb/internal/types"
)

type allIndexed struct{}

func (allIndexed) HasIndex(table, column string) bool { return true }

func planFor(t *testing.T, d query.Description, cat *catalog.Catalog) *logical.Plan {
	t.Helper()
	p, err := logical.Build(d, cat)
	if err != nil {
		t.Fatalf("logical build: %v", err)
	}
	return p
}

func joinCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat := catalog.New()
	_, err := cat.CreateTable("Jobs", []types.Column{{Name: "id", Type: types.KindText}}, "id", nil)
	if err != nil {
		t.Fatalf("create Jobs: %v", err)
	}
	_, err = cat.CreateTable("Employees", []types.Column{{Name: "jobId", Type: types.KindText}}, "", nil)
	if err != nil {
		t.Fatalf("create Employees: %v", err)
	}
	cat.Freeze()
	return cat
}

func TestHashJoinDefaultWithNoIndexes(t *testing.T) {
	cat := joinCatalog(t)
	d := query.Description{Select: &query.Select{
		Tables: []string{"Jobs", "Employees"},
		Predicate: query.ColEq(
			query.ColumnRef{Table: "Employees", Column: "jobId"},
			query.ColumnRef{Table: "Jobs", Column: "id"},
		),
	}}
	lp := planFor(t, d, cat)
	root := Build(lp, NoIndexes{})
	if root.Kind != KindJoin {
		t.Fatalf("expected a Join node, got %s", root.Kind)
	}
	if root.JoinStrategy != StrategyHashJoin {
		t.Fatalf("expected StrategyHashJoin as the effective default, got %s", root.JoinStrategy)
	}
}

func TestIndexNestedLoopWhenBothSidesIndexed(t *testing.T) {
	cat := joinCatalog(t)
	d := query.Description{Select: &query.Select{
		Tables: []string{"Jobs", "Employees"},
		Predicate: query.ColEq(
			query.ColumnRef{Table: "Employees", Column: "jobId"},
			query.ColumnRef{Table: "Jobs", Column: "id"},
		),
	}}
	lp := planFor(t, d, cat)
	root := Build(lp, allIndexed{})
	if root.JoinStrategy != StrategyIndexNestedLoop {
		t.Fatalf("expected StrategyIndexNestedLoop when both sides are indexed, got %s", root.JoinStrategy)
	}
}

func TestLimitSkipFusionIntoBoundedTake(t *testing.T) {
	cat := joinCatalog(t)
	limit, skip := 10, 5
	d := query.Description{Select: &query.Select{
		Tables: []string{"Jobs"},
		Skip:   &skip,
		Limit:  &limit,
	}}
	lp := planFor(t, d, cat)
	root := Build(lp, NoIndexes{})
	if root.Kind != KindBoundedTake {
		t.Fatalf("expected BoundedTake at the root, got %s", root.Kind)
	}
	if root.Limit == nil || *root.Limit != limit {
		t.Fatalf("expected fused Limit=%d, got %v", limit, root.Limit)
	}
	if root.Skip == nil || *root.Skip != skip {
		t.Fatalf("expected fused Skip=%d, got %v", skip, root.Skip)
	}
	if root.Left == nil || root.Left.Kind == KindBoundedTake {
		t.Fatalf("expected the Skip's BoundedTake to be fused away, not nested")
	}
}

func TestOrderByAlone(t *testing.T) {
	cat := joinCatalog(t)
	d := query.Description{Select: &query.Select{
		Tables:  []string{"Jobs"},
		OrderBy: []query.OrderSpec{{Column: query.ColumnRef{Table: "Jobs", Column: "id"}, Dir: query.Asc}},
	}}
	lp := planFor(t, d, cat)
	root := Build(lp, NoIndexes{})
	if root.Kind != KindOrderBy {
		t.Fatalf("expected OrderBy at the root, got %s", root.Kind)
	}
}
