package exec

import (
	"math"
	"testing"

	"github.com/kartikbazzad/reldb/internal/fixtures"
	"github.com/kartikbazzad/reldb/internal/memtable"
	"github.com/kartikbazzad/reldb/internal/planner/logical"
	"github.com/kartikbazzad/reldb/internal/planner/physical"
	"github.com/kartikbazzad/reldb/internal/query"
	"github.com/kartikbazzad/reldb/internal/types"
)

func seededContext(t *testing.T) *ExecContext {
	t.Helper()
	cat := fixtures.BuildCatalog()
	storage := make(map[string]memtable.Storage)
	for _, tbl := range cat.Tables() {
		storage[tbl.Name] = memtable.New(tbl.Name, 4)
	}
	if err := fixtures.Seed(storage); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return &ExecContext{Cancel: &CancelFlag{}, Storage: storage}
}

func run(t *testing.T, ctx *ExecContext, d query.Description) Relation {
	t.Helper()
	cat := fixtures.BuildCatalog()
	if err := query.Validate(d, cat, nil); err != nil {
		t.Fatalf("validate: %v", err)
	}
	lp, err := logical.Build(d, cat)
	if err != nil {
		t.Fatalf("logical build: %v", err)
	}
	root := physical.Build(lp, physical.NoIndexes{})
	rel, err := Execute(root, ctx)
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	return rel
}

func TestAllJobsScansEveryRow(t *testing.T) {
	ctx := seededContext(t)
	rel := run(t, ctx, query.Description{Select: &query.Select{Tables: []string{"Jobs"}}})
	if len(rel) != fixtures.JobCount {
		t.Fatalf("expected %d rows, got %d", fixtures.JobCount, len(rel))
	}
}

func TestLimitBoundsRowCount(t *testing.T) {
	ctx := seededContext(t)
	n := 16
	rel := run(t, ctx, query.Description{Select: &query.Select{Tables: []string{"Jobs"}, Limit: &n}})
	if len(rel) != 16 {
		t.Fatalf("expected 16 rows, got %d", len(rel))
	}
}

func TestSkipBoundsRowCount(t *testing.T) {
	ctx := seededContext(t)
	n := 16
	rel := run(t, ctx, query.Description{Select: &query.Select{Tables: []string{"Jobs"}, Skip: &n}})
	if len(rel) != fixtures.JobCount-16 {
		t.Fatalf("expected %d rows, got %d", fixtures.JobCount-16, len(rel))
	}
}

func TestPointLookupByID(t *testing.T) {
	ctx := seededContext(t)
	rel := run(t, ctx, query.Description{Select: &query.Select{
		Tables:    []string{"Jobs"},
		Predicate: query.Eq(query.ColumnRef{Table: "Jobs", Column: "id"}, types.Text("jobId3")),
	}})
	if len(rel) != 1 {
		t.Fatalf("expected exactly 1 row, got %d", len(rel))
	}
}

func TestEquiJoinMatchesExpectedEmployeeCount(t *testing.T) {
	ctx := seededContext(t)
	rel := run(t, ctx, query.Description{Select: &query.Select{
		Tables: []string{"Jobs", "Employees"},
		Predicate: query.And(
			query.Eq(query.ColumnRef{Table: "Employees", Column: "jobId"}, types.Text("jobId25")),
			query.ColEq(query.ColumnRef{Table: "Employees", Column: "jobId"}, query.ColumnRef{Table: "Jobs", Column: "id"}),
		),
	}})
	expected := fixtures.EmployeeCount / fixtures.JobCount
	if len(rel) != expected {
		t.Fatalf("expected %d employees for job 25, got %d", expected, len(rel))
	}
}

func TestExplicitJoinHighSalary(t *testing.T) {
	ctx := seededContext(t)
	rel := run(t, ctx, query.Description{Select: &query.Select{
		Tables: []string{"Employees"},
		Joins: []query.ExplicitJoin{
			{Table: "Jobs", Predicate: query.ColEq(query.ColumnRef{Table: "Jobs", Column: "id"}, query.ColumnRef{Table: "Employees", Column: "jobId"})},
		},
		Predicate: query.Cmp(query.ColumnRef{Table: "Jobs", Column: "minSalary"}, query.OpGt, types.Float(59000)),
	}})
	if len(rel) == 0 {
		t.Fatal("expected at least one high-salary employee match")
	}
	for _, tup := range rel {
		v, ok := tup.Resolve(query.ColumnRef{Table: "Jobs", Column: "minSalary"})
		if !ok || v.IsAbsent() {
			t.Fatalf("expected every matched row to carry Jobs.minSalary, got %v", tup)
		}
	}
}

func TestOrderByAscThenDescAreMirrors(t *testing.T) {
	ctx := seededContext(t)
	asc := run(t, ctx, query.Description{Select: &query.Select{
		Tables:     []string{"Jobs"},
		Projection: []query.ProjectedColumn{{Column: query.ColumnRef{Table: "Jobs", Column: "minSalary"}}},
		OrderBy:    []query.OrderSpec{{Column: query.ColumnRef{Table: "Jobs", Column: "minSalary"}, Dir: query.Asc}},
	}})
	desc := run(t, ctx, query.Description{Select: &query.Select{
		Tables:     []string{"Jobs"},
		Projection: []query.ProjectedColumn{{Column: query.ColumnRef{Table: "Jobs", Column: "minSalary"}}},
		OrderBy:    []query.OrderSpec{{Column: query.ColumnRef{Table: "Jobs", Column: "minSalary"}, Dir: query.Desc}},
	}})
	if len(asc) != len(desc) {
		t.Fatalf("expected equal row counts, got %d vs %d", len(asc), len(desc))
	}
	n := len(asc)
	for i := 0; i < n; i++ {
		av, _ := asc[i].Resolve(query.ColumnRef{Table: "Jobs", Column: "minSalary"})
		dv, _ := desc[n-1-i].Resolve(query.ColumnRef{Table: "Jobs", Column: "minSalary"})
		if !av.Equal(dv) {
			t.Fatalf("expected desc to be the exact reverse of asc at position %d: %v vs %v", i, av, dv)
		}
	}
}

func TestMultiKeyOrderIsStable(t *testing.T) {
	ctx := seededContext(t)
	rel := run(t, ctx, query.Description{Select: &query.Select{
		Tables: []string{"Jobs"},
		OrderBy: []query.OrderSpec{
			{Column: query.ColumnRef{Table: "Jobs", Column: "maxSalary"}, Dir: query.Desc},
			{Column: query.ColumnRef{Table: "Jobs", Column: "minSalary"}, Dir: query.Asc},
		},
	}})
	for i := 1; i < len(rel); i++ {
		prev, _ := rel[i-1].Resolve(query.ColumnRef{Table: "Jobs", Column: "maxSalary"})
		cur, _ := rel[i].Resolve(query.ColumnRef{Table: "Jobs", Column: "maxSalary"})
		if cur.Compare(prev) > 0 {
			t.Fatalf("expected maxSalary non-increasing at position %d", i)
		}
		if cur.Compare(prev) == 0 {
			prevMin, _ := rel[i-1].Resolve(query.ColumnRef{Table: "Jobs", Column: "minSalary"})
			curMin, _ := rel[i].Resolve(query.ColumnRef{Table: "Jobs", Column: "minSalary"})
			if curMin.Compare(prevMin) < 0 {
				t.Fatalf("expected minSalary non-decreasing within equal maxSalary at position %d", i)
			}
		}
	}
}

func TestBroadcastAggregateOntoEveryRow(t *testing.T) {
	ctx := seededContext(t)
	rel := run(t, ctx, query.Description{Select: &query.Select{
		Tables: []string{"Jobs"},
		Projection: []query.ProjectedColumn{
			{Column: query.ColumnRef{Table: "Jobs", Column: "title"}},
			{Column: query.ColumnRef{Table: "Jobs", Column: "maxSalary"}},
			{Agg: &query.Aggregator{Func: query.AggMin, Column: query.ColumnRef{Table: "Jobs", Column: "maxSalary"}}},
		},
	}})
	if len(rel) != fixtures.JobCount {
		t.Fatalf("broadcast must preserve input cardinality, expected %d got %d", fixtures.JobCount, len(rel))
	}
	first, _ := rel[0].Resolve(query.ColumnRef{Column: "min(maxSalary)"})
	for _, tup := range rel[1:] {
		v, _ := tup.Resolve(query.ColumnRef{Column: "min(maxSalary)"})
		if !v.Equal(first) {
			t.Fatal("expected the same broadcast aggregate value on every row")
		}
	}
}

func TestPureAggregateProjectionCollapsesToOneRow(t *testing.T) {
	ctx := seededContext(t)
	rel := run(t, ctx, query.Description{Select: &query.Select{
		Tables: []string{"Jobs"},
		Projection: []query.ProjectedColumn{
			{Agg: &query.Aggregator{Func: query.AggMax, Column: query.ColumnRef{Table: "Jobs", Column: "maxSalary"}}},
			{Agg: &query.Aggregator{Func: query.AggMin, Column: query.ColumnRef{Table: "Jobs", Column: "maxSalary"}}},
		},
	}})
	if len(rel) != 1 {
		t.Fatalf("expected exactly 1 row for a pure-aggregate projection, got %d", len(rel))
	}
}

func TestDistinctCollapsesDuplicateJobIDs(t *testing.T) {
	ctx := seededContext(t)
	col := query.ColumnRef{Table: "Employees", Column: "jobId"}
	rel := run(t, ctx, query.Description{Select: &query.Select{
		Tables:   []string{"Employees"},
		Distinct: &col,
	}})
	if len(rel) != fixtures.JobCount {
		t.Fatalf("expected %d distinct jobIds, got %d", fixtures.JobCount, len(rel))
	}
}

// TestDistinctAggregatesMatchGroundTruth runs the "distinct-aggregates-
// maxsalary" scenario (count/sum/avg/stddev of distinct(maxSalary)) and
// checks it against values derived straight from the seed formula, not from
// computeAggregate itself. fixtures.Seed gives every job a distinct
// maxSalary, so distinct and non-distinct agree here; the duplicate-
// collapsing behavior itself is covered separately below.
func TestDistinctAggregatesMatchGroundTruth(t *testing.T) {
	ctx := seededContext(t)
	maxSalaries := make([]float64, fixtures.JobCount)
	sum := 0.0
	for i := 0; i < fixtures.JobCount; i++ {
		min := float64(40000 + i*500)
		maxSalaries[i] = min + 20000
		sum += maxSalaries[i]
	}
	count := float64(fixtures.JobCount)
	avg := sum / count
	var sqDev float64
	for _, v := range maxSalaries {
		sqDev += (v - avg) * (v - avg)
	}
	wantStddev := math.Sqrt(sqDev / (count - 1))

	rel := run(t, ctx, query.Description{Select: &query.Select{
		Tables: []string{"Jobs"},
		Projection: []query.ProjectedColumn{
			{Agg: &query.Aggregator{Func: query.AggCount, Column: query.ColumnRef{Table: "Jobs", Column: "maxSalary"}, Distinct: true}},
			{Agg: &query.Aggregator{Func: query.AggSum, Column: query.ColumnRef{Table: "Jobs", Column: "maxSalary"}, Distinct: true}},
			{Agg: &query.Aggregator{Func: query.AggAvg, Column: query.ColumnRef{Table: "Jobs", Column: "maxSalary"}, Distinct: true}},
			{Agg: &query.Aggregator{Func: query.AggStddev, Column: query.ColumnRef{Table: "Jobs", Column: "maxSalary"}, Distinct: true}},
		},
	}})
	if len(rel) != 1 {
		t.Fatalf("expected a pure-aggregate projection to collapse to 1 row, got %d", len(rel))
	}

	gotCount, ok := rel[0].Resolve(query.ColumnRef{Column: "count(distinct(maxSalary))"})
	if n, iok := gotCount.AsInt(); !ok || !iok || float64(n) != count {
		t.Fatalf("expected count(distinct(maxSalary)) = %v, got %v", count, gotCount)
	}
	gotSum, ok := rel[0].Resolve(query.ColumnRef{Column: "sum(distinct(maxSalary))"})
	if f, fok := gotSum.AsFloat(); !ok || !fok || math.Abs(f-sum) > 1e-6 {
		t.Fatalf("expected sum(distinct(maxSalary)) = %v, got %v", sum, gotSum)
	}
	gotAvg, ok := rel[0].Resolve(query.ColumnRef{Column: "avg(distinct(maxSalary))"})
	if f, fok := gotAvg.AsFloat(); !ok || !fok || math.Abs(f-avg) > 1e-6 {
		t.Fatalf("expected avg(distinct(maxSalary)) = %v, got %v", avg, gotAvg)
	}
	gotStddev, ok := rel[0].Resolve(query.ColumnRef{Column: "stddev(distinct(maxSalary))"})
	if f, fok := gotStddev.AsFloat(); !ok || !fok || math.Abs(f-wantStddev) > 1e-6 {
		t.Fatalf("expected stddev(distinct(maxSalary)) = %v, got %v", wantStddev, gotStddev)
	}
}

// TestDistinctAggregateCollapsesDuplicates exercises the duplicate-collapsing
// behavior the maxSalary column can't: fixture values are already unique, so
// the scenario above can't tell a correct distinct count from a non-distinct
// one. This drives computeAggregate directly over a relation with repeats.
func TestDistinctAggregateCollapsesDuplicates(t *testing.T) {
	col := query.ColumnRef{Table: "Jobs", Column: "maxSalary"}
	rel := Relation{
		Tuple{"Jobs": {ID: 1, Payload: map[string]types.Value{"maxSalary": types.Float(10)}}},
		Tuple{"Jobs": {ID: 2, Payload: map[string]types.Value{"maxSalary": types.Float(10)}}},
		Tuple{"Jobs": {ID: 3, Payload: map[string]types.Value{"maxSalary": types.Float(20)}}},
	}

	distinctCount := computeAggregate(query.Aggregator{Func: query.AggCount, Column: col, Distinct: true}, rel)
	if n, ok := distinctCount.AsInt(); !ok || n != 2 {
		t.Fatalf("expected distinct count = 2, got %v", distinctCount)
	}
	plainCount := computeAggregate(query.Aggregator{Func: query.AggCount, Column: col}, rel)
	if n, ok := plainCount.AsInt(); !ok || n != 3 {
		t.Fatalf("expected non-distinct count = 3, got %v", plainCount)
	}

	distinctSum := computeAggregate(query.Aggregator{Func: query.AggSum, Column: col, Distinct: true}, rel)
	if f, ok := distinctSum.AsFloat(); !ok || f != 30 {
		t.Fatalf("expected distinct sum = 30, got %v", distinctSum)
	}
	plainSum := computeAggregate(query.Aggregator{Func: query.AggSum, Column: col}, rel)
	if f, ok := plainSum.AsFloat(); !ok || f != 40 {
		t.Fatalf("expected non-distinct sum = 40, got %v", plainSum)
	}

	distinctAvg := computeAggregate(query.Aggregator{Func: query.AggAvg, Column: col, Distinct: true}, rel)
	if f, ok := distinctAvg.AsFloat(); !ok || f != 15 {
		t.Fatalf("expected distinct avg = 15, got %v", distinctAvg)
	}
}

// TestStandaloneDistinctMaxSalary runs the "distinct-maxsalary" scenario:
// since every job's maxSalary is already unique, DISTINCT on it is a no-op
// over the row count (unlike TestDistinctCollapsesDuplicateJobIDs's
// Employees.jobId case, which does collapse duplicates).
func TestStandaloneDistinctMaxSalary(t *testing.T) {
	ctx := seededContext(t)
	col := query.ColumnRef{Table: "Jobs", Column: "maxSalary"}
	rel := run(t, ctx, query.Description{Select: &query.Select{
		Tables:   []string{"Jobs"},
		Distinct: &col,
	}})
	if len(rel) != fixtures.JobCount {
		t.Fatalf("expected %d distinct maxSalary values, got %d", fixtures.JobCount, len(rel))
	}
}

func TestAggregateOverEmptyInput(t *testing.T) {
	empty := Relation{}
	count := computeAggregate(query.Aggregator{Func: query.AggCount, Column: query.ColumnRef{Column: "x"}}, empty)
	if n, ok := count.AsInt(); !ok || n != 0 {
		t.Fatalf("expected COUNT over empty input to be 0, got %v", count)
	}
	sum := computeAggregate(query.Aggregator{Func: query.AggSum, Column: query.ColumnRef{Column: "x"}}, empty)
	if n, ok := sum.AsFloat(); !ok || n != 0 {
		// SUM is stored as Int(0) per implementation; accept either numeric zero.
		if iv, iok := sum.AsInt(); !iok || iv != 0 {
			t.Fatalf("expected SUM over empty input to be zero, got %v", sum)
		}
	}
	for _, fn := range []query.AggFunc{query.AggMin, query.AggMax, query.AggAvg, query.AggStddev} {
		v := computeAggregate(query.Aggregator{Func: fn, Column: query.ColumnRef{Column: "x"}}, empty)
		if !v.IsAbsent() {
			t.Fatalf("expected %s over empty input to be Absent, got %v", fn, v)
		}
	}
}

func TestDeleteOnZeroMatchesDoesNotWipeTable(t *testing.T) {
	ctx := seededContext(t)
	rel := run(t, ctx, query.Description{Delete: &query.Delete{
		Table:     "Jobs",
		Predicate: query.Eq(query.ColumnRef{Table: "Jobs", Column: "id"}, types.Text("does-not-exist")),
	}})
	if AffectedCount(rel) != 0 {
		t.Fatalf("expected 0 affected rows, got %d", AffectedCount(rel))
	}
	remaining := run(t, ctx, query.Description{Select: &query.Select{Tables: []string{"Jobs"}}})
	if len(remaining) != fixtures.JobCount {
		t.Fatalf("expected the table untouched by a zero-match delete, got %d rows left", len(remaining))
	}
}

func TestDeleteMatchingRowsRemovesExactlyThose(t *testing.T) {
	ctx := seededContext(t)
	rel := run(t, ctx, query.Description{Delete: &query.Delete{
		Table:     "Jobs",
		Predicate: query.Eq(query.ColumnRef{Table: "Jobs", Column: "id"}, types.Text("jobId7")),
	}})
	if AffectedCount(rel) != 1 {
		t.Fatalf("expected 1 affected row, got %d", AffectedCount(rel))
	}
	remaining := run(t, ctx, query.Description{Select: &query.Select{Tables: []string{"Jobs"}}})
	if len(remaining) != fixtures.JobCount-1 {
		t.Fatalf("expected %d rows left, got %d", fixtures.JobCount-1, len(remaining))
	}
}

func TestUpdateAppliesAssignments(t *testing.T) {
	ctx := seededContext(t)
	rel := run(t, ctx, query.Description{Update: &query.Update{
		Table:       "Jobs",
		Predicate:   query.Eq(query.ColumnRef{Table: "Jobs", Column: "id"}, types.Text("jobId1")),
		Assignments: []query.Assignment{{Column: query.ColumnRef{Column: "title"}, Value: types.Text("Renamed")}},
	}})
	if AffectedCount(rel) != 1 {
		t.Fatalf("expected 1 affected row, got %d", AffectedCount(rel))
	}
	after := run(t, ctx, query.Description{Select: &query.Select{
		Tables:    []string{"Jobs"},
		Predicate: query.Eq(query.ColumnRef{Table: "Jobs", Column: "id"}, types.Text("jobId1")),
	}})
	v, ok := after[0].Resolve(query.ColumnRef{Table: "Jobs", Column: "title"})
	text, _ := v.AsText()
	if !ok || text != "Renamed" {
		t.Fatalf("expected title updated to Renamed, got %v", v)
	}
}

func TestInsertThenReadRoundTrip(t *testing.T) {
	ctx := seededContext(t)
	rel := run(t, ctx, query.Description{Insert: &query.Insert{
		Table: "Jobs",
		Rows: []types.Row{
			types.NewRow(types.RowID(9000), map[string]types.Value{
				"id":        types.Text("jobIdNew"),
				"title":     types.Text("New Job"),
				"minSalary": types.Float(1000),
				"maxSalary": types.Float(2000),
			}),
		},
	}})
	if AffectedCount(rel) != 1 {
		t.Fatalf("expected 1 affected row, got %d", AffectedCount(rel))
	}
	found := run(t, ctx, query.Description{Select: &query.Select{
		Tables:    []string{"Jobs"},
		Predicate: query.Eq(query.ColumnRef{Table: "Jobs", Column: "id"}, types.Text("jobIdNew")),
	}})
	if len(found) != 1 {
		t.Fatalf("expected to find the newly inserted row, got %d matches", len(found))
	}
}

func TestToRowsFlatVsComposite(t *testing.T) {
	ctx := seededContext(t)
	flatRel := run(t, ctx, query.Description{Select: &query.Select{Tables: []string{"Jobs"}}})
	flatRows := ToRows(flatRel)
	if _, ok := flatRows[0].(map[string]types.Value); !ok {
		t.Fatalf("expected a single-table select to produce flat rows, got %T", flatRows[0])
	}

	compositeRel := run(t, ctx, query.Description{Select: &query.Select{
		Tables: []string{"Jobs", "Employees"},
		Predicate: query.And(
			query.Eq(query.ColumnRef{Table: "Employees", Column: "jobId"}, types.Text("jobId1")),
			query.ColEq(query.ColumnRef{Table: "Employees", Column: "jobId"}, query.ColumnRef{Table: "Jobs", Column: "id"}),
		),
	}})
	compositeRows := ToRows(compositeRel)
	if _, ok := compositeRows[0].(types.CompositeRow); !ok {
		t.Fatalf("expected a multi-table select to produce composite rows, got %T", compositeRows[0])
	}
}
