// Command reldbbench drives the query engine concurrently through a fixed
// worker pool, exercising the "interleaved at suspension points, no
// cross-query ordering guarantee" concurrency model from the outside
// (spec §5; the core itself stays single-threaded). Pool usage is the
// exact pattern the teacher uses for its own IPC connection handler pool.
package main

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/kartikbazzad/reldb/internal/config"
	"github.com/kartikbazzad/reldb/internal/engine"
	"github.com/kartikbazzad/reldb/internal/errors"
	"github.com/kartikbazzad/reldb/internal/exec"
	"github.com/kartikbazzad/reldb/internal/fixtures"
	"github.com/kartikbazzad/reldb/internal/logger"
	"github.com/kartikbazzad/reldb/internal/memtable"
	"github.com/kartikbazzad/reldb/internal/metrics"
	"github.com/kartikbazzad/reldb/internal/query"
	"github.com/kartikbazzad/reldb/internal/types"
)

func main() {
	queries := flag.Int("queries", 5000, "total queries to run")
	workers := flag.Int("workers", 0, "worker pool size (0 = config default)")
	flag.Parse()

	cfg := config.Default()
	if *workers > 0 {
		cfg.Bench.WorkerCount = *workers
	}

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

	var completed, failed int64
	var wg sync.WaitGroup

	pool, err := ants.NewPool(cfg.Bench.WorkerCount,
		ants.WithExpiryDuration(cfg.Bench.WorkerExpiry),
		ants.WithMaxBlockingTasks(cfg.Bench.QueueDepth),
		ants.WithPanicHandler(func(v interface{}) {
			log.Error("bench worker panic: %v", v)
		}))
	if err != nil {
		fmt.Fprintln(os.Stderr, "pool init failed:", err)
		os.Exit(1)
	}
	retry := errors.NewRetryController()
	classifier := errors.NewClassifier()

	start := time.Now()
	for i := 0; i < *queries; i++ {
		wg.Add(1)
		idx := i
		err := pool.Submit(func() {
			defer wg.Done()
			runOneQuery(eng, storage, idx, cfg.Query.DefaultQueryTimeout, retry, classifier, &completed, &failed)
		})
		if err != nil {
			log.Error("submit failed: %v", err)
			wg.Done()
		}
	}
	wg.Wait()
	elapsed := time.Since(start)

	fmt.Printf("completed=%d failed=%d elapsed=%s qps=%.0f\n", completed, failed, elapsed, float64(completed)/elapsed.Seconds())
	fmt.Print(m.Export())
	_ = pool.ReleaseTimeout(3 * time.Second)
}

// runOneQuery plans and executes one sample query, retrying storage
// failures the classifier deems transient (spec's storage interface has
// no durability guarantee of its own, so a transient hiccup from a
// caller-supplied Storage implementation is worth retrying, up to the
// RetryController's retry limit, rather than failing the whole query
// outright).
func runOneQuery(eng *engine.Engine, storage map[string]memtable.Storage, idx int, timeout time.Duration, retry *errors.RetryController, classifier *errors.Classifier, completed, failed *int64) {
	desc := sampleDescription(idx)
	err := retry.Retry(func() error {
		plan, err := eng.Plan(desc)
		if err != nil {
			return err
		}
		cancel := &exec.CancelFlag{}
		timer := time.AfterFunc(timeout, cancel.Cancel)
		ctx := &exec.ExecContext{Cancel: cancel, Storage: storage}
		_, err = eng.Execute(plan, desc.Kind(), ctx)
		timer.Stop()
		return err
	}, classifier)
	if err != nil {
		atomic.AddInt64(failed, 1)
		return
	}
	atomic.AddInt64(completed, 1)
}

func sampleDescription(idx int) query.Description {
	jobID := fmt.Sprintf("jobId%d", idx%fixtures.JobCount)
	return query.Description{Select: &query.Select{
		ID:        query.NewID(),
		Tables:    []string{"Jobs"},
		Predicate: query.Eq(query.ColumnRef{Table: "Jobs", Column: "id"}, types.Text(jobID)),
	}}
}
