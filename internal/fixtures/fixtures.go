// Package fixtures builds the Jobs/Employees sample schema and seed data
// for end-to-end scenarios: a Jobs table of 50 rows and an Employees table
// of 300 rows, each Employee referencing a Job by id. Shared by the
// demo/bench CLIs (cmd/reldbsh, cmd/reldbbench) and by the scenario
// coverage in internal/exec/operators_test.go.
package fixtures

import (
	"fmt"

	"github.com/kartikbazzad/reldb/internal/catalog"
	"github.com/kartikbazzad/reldb/internal/memtable"
	"github.com/kartikbazzad/reldb/internal/types"
)

const (
	JobCount      = 50
	EmployeeCount = 300
)

// BuildCatalog registers the Jobs and Employees tables.
func BuildCatalog() *catalog.Catalog {
	cat := catalog.New()
	_, err := cat.CreateTable("Jobs", []types.Column{
		{Name: "id", Type: types.KindText, Unique: true},
		{Name: "title", Type: types.KindText},
		{Name: "minSalary", Type: types.KindFloat},
		{Name: "maxSalary", Type: types.KindFloat},
	}, "id", nil)
	if err != nil {
		panic(err)
	}

	_, err = cat.CreateTable("Employees", []types.Column{
		{Name: "id", Type: types.KindText, Unique: true},
		{Name: "name", Type: types.KindText},
		{Name: "jobId", Type: types.KindText},
	}, "id", []catalog.Reference{{Column: "jobId", RefTable: "Jobs", RefColumn: "id"}})
	if err != nil {
		panic(err)
	}

	cat.Freeze()
	return cat
}

// Seed populates storage with JobCount jobs and EmployeeCount employees,
// each employee assigned round-robin to a job.
func Seed(storage map[string]memtable.Storage) error {
	jobs := make([]types.Row, 0, JobCount)
	for i := 0; i < JobCount; i++ {
		min := float64(40000 + i*500)
		max := min + 20000
		jobs = append(jobs, types.NewRow(types.RowID(i), map[string]types.Value{
			"id":        types.Text(fmt.Sprintf("jobId%d", i)),
			"title":     types.Text(fmt.Sprintf("Job Title %d", i)),
			"minSalary": types.Float(min),
			"maxSalary": types.Float(max),
		}))
	}
	if err := storage["Jobs"].Put(jobs); err != nil {
		return err
	}

	employees := make([]types.Row, 0, EmployeeCount)
	for i := 0; i < EmployeeCount; i++ {
		jobIdx := i % JobCount
		employees = append(employees, types.NewRow(types.RowID(i), map[string]types.Value{
			"id":    types.Text(fmt.Sprintf("empId%d", i)),
			"name":  types.Text(fmt.Sprintf("Employee %d", i)),
			"jobId": types.Text(fmt.Sprintf("jobId%d", jobIdx)),
		}))
	}
	return storage["Employees"].Put(employees)
}
