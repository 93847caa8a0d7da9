package fixtures

import (
	"github.com/kartikbazzad/reldb/internal/query"
	"github.com/kartikbazzad/reldb/internal/types"
)

// Scenario names one of spec §8's canned end-to-end queries, for tooling
// (cmd/reldbsh, tests) that wants to run them by name rather than
// hand-building a query.Description.
type Scenario struct {
	Name        string
	Description query.Description
}

func intPtr(n int) *int { return &n }

// Scenarios returns every end-to-end scenario spec §8 enumerates, in order.
func Scenarios() []Scenario {
	return []Scenario{
		{"all-jobs", query.Description{Select: &query.Select{
			Tables: []string{"Jobs"},
		}}},
		{"jobs-limit-16", query.Description{Select: &query.Select{
			Tables: []string{"Jobs"},
			Limit:  intPtr(16),
		}}},
		{"jobs-skip-16", query.Description{Select: &query.Select{
			Tables: []string{"Jobs"},
			Skip:   intPtr(16),
		}}},
		{"job-by-id", query.Description{Select: &query.Select{
			Tables:    []string{"Jobs"},
			Predicate: query.Eq(query.ColumnRef{Table: "Jobs", Column: "id"}, types.Text("jobId3")),
		}}},
		{"jobs-id-title", query.Description{Select: &query.Select{
			Tables: []string{"Jobs"},
			Projection: []query.ProjectedColumn{
				{Column: query.ColumnRef{Table: "Jobs", Column: "id"}},
				{Column: query.ColumnRef{Table: "Jobs", Column: "title"}},
			},
		}}},
		{"employees-of-job25", query.Description{Select: &query.Select{
			Tables: []string{"Jobs", "Employees"},
			Predicate: query.And(
				query.Eq(query.ColumnRef{Table: "Employees", Column: "jobId"}, types.Text("jobId25")),
				query.ColEq(query.ColumnRef{Table: "Employees", Column: "jobId"}, query.ColumnRef{Table: "Jobs", Column: "id"}),
			),
		}}},
		{"employees-high-salary-join", query.Description{Select: &query.Select{
			Tables: []string{"Employees"},
			Joins: []query.ExplicitJoin{
				{Table: "Jobs", Predicate: query.ColEq(query.ColumnRef{Table: "Jobs", Column: "id"}, query.ColumnRef{Table: "Employees", Column: "jobId"})},
			},
			Predicate: query.Cmp(query.ColumnRef{Table: "Jobs", Column: "minSalary"}, query.OpGt, types.Float(59000)),
		}}},
		{"min-salary-asc", query.Description{Select: &query.Select{
			Tables: []string{"Jobs"},
			Projection: []query.ProjectedColumn{
				{Column: query.ColumnRef{Table: "Jobs", Column: "minSalary"}},
			},
			OrderBy: []query.OrderSpec{{Column: query.ColumnRef{Table: "Jobs", Column: "minSalary"}, Dir: query.Asc}},
		}}},
		{"min-salary-desc", query.Description{Select: &query.Select{
			Tables: []string{"Jobs"},
			Projection: []query.ProjectedColumn{
				{Column: query.ColumnRef{Table: "Jobs", Column: "minSalary"}},
			},
			OrderBy: []query.OrderSpec{{Column: query.ColumnRef{Table: "Jobs", Column: "minSalary"}, Dir: query.Desc}},
		}}},
		{"multi-key-order", query.Description{Select: &query.Select{
			Tables: []string{"Jobs"},
			OrderBy: []query.OrderSpec{
				{Column: query.ColumnRef{Table: "Jobs", Column: "maxSalary"}, Dir: query.Desc},
				{Column: query.ColumnRef{Table: "Jobs", Column: "minSalary"}, Dir: query.Asc},
			},
		}}},
		{"broadcast-min-maxsalary", query.Description{Select: &query.Select{
			Tables: []string{"Jobs"},
			Projection: []query.ProjectedColumn{
				{Column: query.ColumnRef{Table: "Jobs", Column: "title"}},
				{Column: query.ColumnRef{Table: "Jobs", Column: "maxSalary"}},
				{Agg: &query.Aggregator{Func: query.AggMin, Column: query.ColumnRef{Table: "Jobs", Column: "maxSalary"}}},
			},
		}}},
		{"max-min-maxsalary", query.Description{Select: &query.Select{
			Tables: []string{"Jobs"},
			Projection: []query.ProjectedColumn{
				{Agg: &query.Aggregator{Func: query.AggMax, Column: query.ColumnRef{Table: "Jobs", Column: "maxSalary"}}},
				{Agg: &query.Aggregator{Func: query.AggMin, Column: query.ColumnRef{Table: "Jobs", Column: "maxSalary"}}},
			},
		}}},
		{"distinct-aggregates-maxsalary", query.Description{Select: &query.Select{
			Tables: []string{"Jobs"},
			Projection: []query.ProjectedColumn{
				{Agg: &query.Aggregator{Func: query.AggCount, Column: query.ColumnRef{Table: "Jobs", Column: "maxSalary"}, Distinct: true}},
				{Agg: &query.Aggregator{Func: query.AggSum, Column: query.ColumnRef{Table: "Jobs", Column: "maxSalary"}, Distinct: true}},
				{Agg: &query.Aggregator{Func: query.AggAvg, Column: query.ColumnRef{Table: "Jobs", Column: "maxSalary"}, Distinct: true}},
				{Agg: &query.Aggregator{Func: query.AggStddev, Column: query.ColumnRef{Table: "Jobs", Column: "maxSalary"}, Distinct: true}},
			},
		}}},
		{"distinct-maxsalary", query.Description{Select: &query.Select{
			Tables:   []string{"Jobs"},
			Distinct: &query.ColumnRef{Table: "Jobs", Column: "maxSalary"},
		}}},
	}
}
