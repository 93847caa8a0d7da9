package engine

import (
	"time"

	"github.com/dustin/go-humanize"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kartikbazzad/reldb/internal/catalog"
	"github.com/kartikbazzad/reldb/internal/config"
	"github.com/kartikbazzad/reldb/internal/errors"
	"github.com/kartikbazzad/reldb/internal/exec"
	"github.com/kartikbazzad/reldb/internal/logger"
	"github.com/kartikbazzad/reldb/internal/memtable"
	"github.com/kartikbazzad/reldb/internal/metrics"
	"github.com/kartikbazzad/reldb/internal/planner/logical"
	"github.com/kartikbazzad/reldb/internal/planner/physical"
	"github.com/kartikbazzad/reldb/internal/query"
)

// Engine is the query engine façade: Plan converts a validated query
// description to a physical plan (pure, no storage access); Execute runs
// that plan against the storage an ExecContext carries.
type Engine struct {
	catalog *catalog.Catalog
	limits  *config.QueryConfig
	cache   *lru.Cache[string, *physical.Plan]
	log     *logger.Logger
	metrics *metrics.PrometheusExporter
	errCls  *errors.Classifier
	errTrk  *errors.ErrorTracker
}

// New builds an Engine bound to cat, with a physical-plan cache sized
// cacheSize (spec SPEC_FULL §4.5). limits bounds query shape at validation
// time (result size, join fan-out); pass nil for no bound.
func New(cat *catalog.Catalog, cacheSize int, limits *config.QueryConfig, log *logger.Logger, m *metrics.PrometheusExporter) (*Engine, error) {
	if cacheSize < 1 {
		cacheSize = 1
	}
	cache, err := lru.New[string, *physical.Plan](cacheSize)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Default()
	}
	if m == nil {
		m = metrics.NewPrometheusExporter()
	}
	return &Engine{catalog: cat, limits: limits, cache: cache, log: log, metrics: m, errCls: errors.NewClassifier(), errTrk: errors.NewErrorTracker()}, nil
}

// ErrorTracker exposes the engine's running error counts/rates/critical
// alerts, e.g. for cmd/reldbsh's ".errors" inspection command.
func (e *Engine) ErrorTracker() *errors.ErrorTracker { return e.errTrk }

// Plan validates d and compiles it to a physical plan, reusing a cached
// plan when d's structural shape (ignoring literal values) was compiled
// before. A Description carrying a literal — a predicate value, inserted
// rows, or assigned values — is never served from or added to the cache:
// the compiled tree bakes those literals in directly, and nothing rebinds
// them at Execute time, so caching across differing literals would execute
// a later call against an earlier call's value. Pure: never touches
// storage.
func (e *Engine) Plan(d query.Description) (*physical.Plan, error) {
	start := time.Now()
	if err := query.Validate(d, e.catalog, e.limits); err != nil {
		e.log.Warn("validation failed for %s query: %v", d.Kind(), err)
		return nil, err
	}

	shape := canonicalShape(d)
	cacheable := !hasLiteral(d)
	if cacheable {
		if cached, ok := e.cache.Get(shape); ok {
			e.metrics.RecordPlanCache(true)
			e.log.Debug("plan cache hit for shape %q", shape)
			return cached, nil
		}
	}
	e.metrics.RecordPlanCache(false)

	logicalPlan, err := logical.Build(d, e.catalog)
	if err != nil {
		return nil, err
	}
	root := physical.Build(logicalPlan, physical.NoIndexes{})
	plan := &physical.Plan{Root: root, Shape: shape}
	if cacheable {
		e.cache.Add(shape, plan)
	}

	e.log.DebugPlan(d.Kind(), shape, time.Since(start), plan.Explain)
	return plan, nil
}

// Execute runs plan against ctx's storage, shaping the result per the
// plan's kind. It logs and classifies failures, and records query/exec
// metrics around the call.
func (e *Engine) Execute(plan *physical.Plan, kind string, ctx *exec.ExecContext) (Result, error) {
	start := time.Now()
	id := query.NewID()

	rel, err := exec.Execute(plan.Root, ctx)
	elapsed := time.Since(start)

	if err != nil {
		category := e.errCls.Classify(err)
		e.errTrk.RecordError(err, category)
		e.metrics.RecordError(category)
		e.metrics.RecordQuery(kind, "error", 0, elapsed)
		e.log.Error("query %s (%s) failed after %s: %v", id, kind, elapsed, err)
		return Result{QueryID: id}, err
	}

	e.metrics.RecordQuery(kind, "ok", 0, elapsed)
	e.metrics.AddRowsScanned(uint64(len(rel)))

	res := Result{QueryID: id}
	if plan.Root.Kind == physical.KindInsert || plan.Root.Kind == physical.KindUpdate || plan.Root.Kind == physical.KindDelete {
		res.Affected = exec.AffectedCount(rel)
	} else {
		res.Rows = exec.ToRows(rel)
		e.metrics.AddRowsReturned(uint64(len(res.Rows)))
	}

	e.log.Info("query %s (%s) scanned %s rows in %s", id, kind, humanize.Comma(int64(len(rel))), elapsed)
	return res, nil
}

// NewStorageSet wires one memtable.Table per catalog table, the mapping
// exec.ExecContext needs since the Storage interface itself has no
// per-call table parameter.
func NewStorageSet(cat *catalog.Catalog, shardCount int) map[string]memtable.Storage {
	out := make(map[string]memtable.Storage)
	for _, t := range cat.Tables() {
		out[t.Name] = memtable.New(t.Name, shardCount)
	}
	return out
}
