// Command reldbsh is an interactive inspection shell, grounded on the
// teacher's cmd/docdbsh. SQL parsing is out of scope (and the query
// builder surface is an external collaborator per spec §1), so this shell
// does not parse SQL: it loads canned query.Description scenarios by name
// — the same seed scenarios spec §8 specifies — and prints results, plan
// trees, and EXPLAIN-style operator traces.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/kartikbazzad/reldb/internal/catalog"
	"github.com/kartikbazzad/reldb/internal/config"
	"github.com/kartikbazzad/reldb/internal/engine"
	"github.com/kartikbazzad/reldb/internal/errors"
	"github.com/kartikbazzad/reldb/internal/exec"
	"github.com/kartikbazzad/reldb/internal/fixtures"
	"github.com/kartikbazzad/reldb/internal/logger"
	"github.com/kartikbazzad/reldb/internal/memtable"
	"github.com/kartikbazzad/reldb/internal/metrics"
)

const prompt = "reldb> "

func main() {
	fmt.Println("reldb shell — type '.help' for commands")

	cfg := config.Default()
	log := logger.Default()
	m := metrics.NewPrometheusExporter()
	cat := fixtures.BuildCatalog()
	storage := engine.NewStorageSet(cat, cfg.Memory.ShardCount)
	if err := fixtures.Seed(storage); err != nil {
		fmt.Fprintln(os.Stderr, "seed failed:", err)
		os.Exit(1)
	}
	eng, err := engine.New(cat, cfg.Query.PlanCacheSize, &cfg.Query, log, m)
	if err != nil {
		fmt.Fprintln(os.Stderr, "engine init failed:", err)
		os.Exit(1)
	}

	scenarios := make(map[string]fixtures.Scenario)
	for _, s := range fixtures.Scenarios() {
		scenarios[s.Name] = s
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt(prompt)
		if err != nil {
			if err == io.EOF || err == liner.ErrPromptAborted {
				fmt.Println()
				return
			}
			fmt.Fprintln(os.Stderr, "read error:", err)
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		switch input {
		case ".help":
			printHelp(scenarios)
		case ".exit", ".quit":
			return
		case ".metrics":
			fmt.Print(m.Export())
		case ".errors":
			printErrors(eng.ErrorTracker())
		case ".schema":
			printSchema(cat)
		default:
			runScenario(eng, storage, scenarios, strings.TrimPrefix(input, ".run "), cfg.Query.DefaultQueryTimeout)
		}
	}
}

func printHelp(scenarios map[string]fixtures.Scenario) {
	names := make([]string, 0, len(scenarios))
	for n := range scenarios {
		names = append(names, n)
	}
	sort.Strings(names)
	fmt.Println(".help            show this message")
	fmt.Println(".metrics         print accumulated metrics")
	fmt.Println(".errors          print error counts and critical alerts by category")
	fmt.Println(".schema          print tables, columns, and declared references")
	fmt.Println(".run <scenario>  run a canned scenario and print its plan and rows")
	fmt.Println(".exit            quit")
	fmt.Println("scenarios:")
	for _, n := range names {
		fmt.Println("  " + n)
	}
}

func printErrors(trk *errors.ErrorTracker) {
	categories := []errors.ErrorCategory{
		errors.ErrorTransient,
		errors.ErrorPermanent,
		errors.ErrorCritical,
		errors.ErrorValidation,
		errors.ErrorNetwork,
	}
	names := map[errors.ErrorCategory]string{
		errors.ErrorTransient:  "transient",
		errors.ErrorPermanent:  "permanent",
		errors.ErrorCritical:   "critical",
		errors.ErrorValidation: "validation",
		errors.ErrorNetwork:    "network",
	}
	for _, c := range categories {
		count := trk.GetErrorCount(c)
		if count == 0 {
			continue
		}
		fmt.Printf("  %-10s count=%d last=%s\n", names[c], count, trk.GetLastOccurrence(c).Format("15:04:05"))
	}
	alerts := trk.GetCriticalAlerts()
	if len(alerts) > 0 {
		fmt.Printf("critical alerts (%d):\n", len(alerts))
		for _, a := range alerts {
			fmt.Printf("  %s: %s\n", a.OccurredAt.Format("15:04:05"), a.Description)
		}
	}
}

func printSchema(cat *catalog.Catalog) {
	for _, t := range cat.Tables() {
		fmt.Printf("%s (primary key: %s)\n", t.Name, t.PrimaryKey)
		for _, c := range t.Columns {
			nullable := ""
			if c.Nullable {
				nullable = ", nullable"
			}
			unique := ""
			if c.Unique {
				unique = ", unique"
			}
			fmt.Printf("  %-12s %s%s%s\n", c.Name, c.Type, unique, nullable)
		}
		for _, r := range t.References {
			fmt.Printf("  %s -> %s.%s\n", r.Column, r.RefTable, r.RefColumn)
		}
	}
}

func runScenario(eng *engine.Engine, storage map[string]memtable.Storage, scenarios map[string]fixtures.Scenario, name string, timeout time.Duration) {
	s, ok := scenarios[name]
	if !ok {
		fmt.Printf("unknown scenario %q; try .help\n", name)
		return
	}

	plan, err := eng.Plan(s.Description)
	if err != nil {
		fmt.Println("plan error:", err)
		return
	}
	fmt.Println("plan:")
	fmt.Print(plan.Explain())

	cancel := &exec.CancelFlag{}
	timer := time.AfterFunc(timeout, cancel.Cancel)
	defer timer.Stop()
	ctx := &exec.ExecContext{Cancel: cancel, Storage: storage}
	res, err := eng.Execute(plan, s.Description.Kind(), ctx)
	if err != nil {
		fmt.Println("exec error:", err)
		return
	}
	if res.Rows != nil {
		fmt.Printf("%d rows:\n", len(res.Rows))
		for i, r := range res.Rows {
			if i >= 20 {
				fmt.Println("  ...")
				break
			}
			fmt.Printf("  %v\n", r)
		}
	} else {
		fmt.Printf("affected: %d\n", res.Affected)
	}
}
