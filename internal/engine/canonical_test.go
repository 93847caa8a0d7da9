package engine

import (
	"testing"

	"github.com/kartikbazzad/reldb/internal/query"
	"github.com/kartikbazzad/reldb/internal/types"
)

func TestHasLiteralSelectWithPredicate(t *testing.T) {
	d := query.Description{Select: &query.Select{
		Tables:    []string{"Jobs"},
		Predicate: query.Eq(query.ColumnRef{Table: "Jobs", Column: "id"}, types.Text("jobId1")),
	}}
	if !hasLiteral(d) {
		t.Fatal("expected a predicate comparing a column to a literal to be flagged as literal-bearing")
	}
}

func TestHasLiteralSelectLiteralFree(t *testing.T) {
	d := query.Description{Select: &query.Select{Tables: []string{"Jobs"}}}
	if hasLiteral(d) {
		t.Fatal("expected a predicate-free select to be cacheable")
	}
}

func TestHasLiteralSelectJoinColumnOnlyIsCacheable(t *testing.T) {
	d := query.Description{Select: &query.Select{
		Tables: []string{"Jobs"},
		Joins: []query.ExplicitJoin{
			{Table: "Employees", Predicate: query.ColEq(query.ColumnRef{Table: "Jobs", Column: "id"}, query.ColumnRef{Table: "Employees", Column: "jobId"})},
		},
	}}
	if hasLiteral(d) {
		t.Fatal("expected a column-vs-column join predicate (no literal) to be cacheable")
	}
}

func TestHasLiteralSelectJoinWithLiteralPredicate(t *testing.T) {
	d := query.Description{Select: &query.Select{
		Tables: []string{"Jobs"},
		Joins: []query.ExplicitJoin{
			{Table: "Employees", Predicate: query.Eq(query.ColumnRef{Table: "Employees", Column: "jobId"}, types.Text("jobId1"))},
		},
	}}
	if !hasLiteral(d) {
		t.Fatal("expected a literal inside a join predicate to be flagged as literal-bearing")
	}
}

func TestHasLiteralInsertWithRows(t *testing.T) {
	d := query.Description{Insert: &query.Insert{
		Table: "Jobs",
		Rows:  []types.Row{types.NewRow(1, map[string]types.Value{"id": types.Text("jobIdNew")})},
	}}
	if !hasLiteral(d) {
		t.Fatal("expected an insert carrying rows to be flagged as literal-bearing")
	}
}

func TestHasLiteralUpdateWithAssignments(t *testing.T) {
	d := query.Description{Update: &query.Update{
		Table:       "Jobs",
		Assignments: []query.Assignment{{Column: query.ColumnRef{Column: "title"}, Value: types.Text("Renamed")}},
	}}
	if !hasLiteral(d) {
		t.Fatal("expected an update carrying assignments to be flagged as literal-bearing")
	}
}

func TestHasLiteralDeleteWithPredicate(t *testing.T) {
	d := query.Description{Delete: &query.Delete{
		Table:     "Jobs",
		Predicate: query.Eq(query.ColumnRef{Table: "Jobs", Column: "id"}, types.Text("jobId1")),
	}}
	if !hasLiteral(d) {
		t.Fatal("expected a delete predicate literal to be flagged as literal-bearing")
	}
}
