// Package metrics hand-rolls a small Prometheus/OpenMetrics text exporter
// for the query engine. It intentionally avoids pulling in the official
// client library: the surface we need (a handful of counters and gauges,
// rendered once per scrape) does not warrant the dependency.
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/kartikbazzad/reldb/internal/errors"
)

// PrometheusExporter accumulates query-engine counters and gauges and
// renders them in Prometheus exposition format.
type PrometheusExporter struct {
	mu sync.RWMutex

	// queriesTotal counts executed queries by kind (select/insert/update/delete) and status.
	queriesTotal map[string]map[string]uint64

	// planDurations/execDurations hold recent wall-clock samples, seconds.
	planDurations map[string][]float64
	execDurations map[string][]float64

	rowsScanned   uint64
	rowsReturned  uint64
	planCacheHits uint64
	planCacheMiss uint64

	errorsTotal map[errors.ErrorCategory]uint64
}

// NewPrometheusExporter creates an empty exporter.
func NewPrometheusExporter() *PrometheusExporter {
	return &PrometheusExporter{
		queriesTotal:  make(map[string]map[string]uint64),
		planDurations: make(map[string][]float64),
		execDurations: make(map[string][]float64),
		errorsTotal:   make(map[errors.ErrorCategory]uint64),
	}
}

// RecordQuery records one completed query of the given kind and status
// ("ok" or "error"), plus how long planning and execution each took.
func (pe *PrometheusExporter) RecordQuery(kind, status string, planTime, execTime time.Duration) {
	pe.mu.Lock()
	defer pe.mu.Unlock()

	if pe.queriesTotal[kind] == nil {
		pe.queriesTotal[kind] = make(map[string]uint64)
	}
	pe.queriesTotal[kind][status]++

	pe.planDurations[kind] = appendBounded(pe.planDurations[kind], planTime.Seconds())
	pe.execDurations[kind] = appendBounded(pe.execDurations[kind], execTime.Seconds())
}

func appendBounded(samples []float64, v float64) []float64 {
	samples = append(samples, v)
	if len(samples) > 1000 {
		samples = samples[len(samples)-1000:]
	}
	return samples
}

// AddRowsScanned adds to the running count of rows read off TableAccess.
func (pe *PrometheusExporter) AddRowsScanned(n uint64) {
	pe.mu.Lock()
	defer pe.mu.Unlock()
	pe.rowsScanned += n
}

// AddRowsReturned adds to the running count of rows handed back to callers.
func (pe *PrometheusExporter) AddRowsReturned(n uint64) {
	pe.mu.Lock()
	defer pe.mu.Unlock()
	pe.rowsReturned += n
}

// RecordPlanCache records a cache hit or miss against the physical plan cache.
func (pe *PrometheusExporter) RecordPlanCache(hit bool) {
	pe.mu.Lock()
	defer pe.mu.Unlock()
	if hit {
		pe.planCacheHits++
	} else {
		pe.planCacheMiss++
	}
}

// RecordError records an error occurrence by classified category.
func (pe *PrometheusExporter) RecordError(category errors.ErrorCategory) {
	pe.mu.Lock()
	defer pe.mu.Unlock()
	pe.errorsTotal[category]++
}

// Export renders every counter and gauge in Prometheus exposition format.
func (pe *PrometheusExporter) Export() string {
	pe.mu.RLock()
	defer pe.mu.RUnlock()

	var out string

	out += "# HELP reldb_queries_total Total number of executed queries by kind and status\n"
	out += "# TYPE reldb_queries_total counter\n"
	for kind, statuses := range pe.queriesTotal {
		for status, count := range statuses {
			out += fmt.Sprintf("reldb_queries_total{kind=\"%s\",status=\"%s\"} %d\n", kind, status, count)
		}
	}

	out += "# HELP reldb_plan_duration_seconds Logical+physical planning duration\n"
	out += "# TYPE reldb_plan_duration_seconds summary\n"
	out += summaryLines("reldb_plan_duration_seconds", pe.planDurations)

	out += "# HELP reldb_exec_duration_seconds Plan execution duration\n"
	out += "# TYPE reldb_exec_duration_seconds summary\n"
	out += summaryLines("reldb_exec_duration_seconds", pe.execDurations)

	out += "# HELP reldb_rows_scanned_total Rows read by TableAccess operators\n"
	out += "# TYPE reldb_rows_scanned_total counter\n"
	out += fmt.Sprintf("reldb_rows_scanned_total %d\n", pe.rowsScanned)

	out += "# HELP reldb_rows_returned_total Rows returned to callers\n"
	out += "# TYPE reldb_rows_returned_total counter\n"
	out += fmt.Sprintf("reldb_rows_returned_total %d\n", pe.rowsReturned)

	out += "# HELP reldb_plan_cache_total Physical plan cache lookups by outcome\n"
	out += "# TYPE reldb_plan_cache_total counter\n"
	out += fmt.Sprintf("reldb_plan_cache_total{outcome=\"hit\"} %d\n", pe.planCacheHits)
	out += fmt.Sprintf("reldb_plan_cache_total{outcome=\"miss\"} %d\n", pe.planCacheMiss)

	out += "# HELP reldb_errors_total Total number of errors by classified category\n"
	out += "# TYPE reldb_errors_total counter\n"
	for category, count := range pe.errorsTotal {
		out += fmt.Sprintf("reldb_errors_total{category=\"%s\"} %d\n", categoryString(category), count)
	}

	return out
}

func summaryLines(name string, byKind map[string][]float64) string {
	var out string
	for kind, samples := range byKind {
		if len(samples) == 0 {
			continue
		}
		var sum, min, max float64
		min, max = samples[0], samples[0]
		for _, s := range samples {
			sum += s
			if s < min {
				min = s
			}
			if s > max {
				max = s
			}
		}
		avg := sum / float64(len(samples))
		out += fmt.Sprintf("%s{kind=\"%s\",quantile=\"0\"} %f\n", name, kind, min)
		out += fmt.Sprintf("%s{kind=\"%s\",quantile=\"0.5\"} %f\n", name, kind, avg)
		out += fmt.Sprintf("%s{kind=\"%s\",quantile=\"1\"} %f\n", name, kind, max)
		out += fmt.Sprintf("%s_sum{kind=\"%s\"} %f\n", name, kind, sum)
		out += fmt.Sprintf("%s_count{kind=\"%s\"} %d\n", name, kind, len(samples))
	}
	return out
}

func categoryString(category errors.ErrorCategory) string {
	switch category {
	case errors.ErrorTransient:
		return "transient"
	case errors.ErrorPermanent:
		return "permanent"
	case errors.ErrorCritical:
		return "critical"
	case errors.ErrorValidation:
		return "validation"
	case errors.ErrorNetwork:
		return "network"
	default:
		return "unknown"
	}
}
