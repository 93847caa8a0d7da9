package exec

import (
	"math"

	"github.com/kartikbazzad/reldb/internal/query"
	"github.com/kartikbazzad/reldb/internal/types"
)

// aggAlias names the output column an Aggregator contributes, defaulting
// to "fn(column)" style rendering when no explicit Alias was set.
func aggAlias(a query.Aggregator) string {
	if a.Alias != "" {
		return a.Alias
	}
	if a.Star {
		return a.Func.String() + "(*)"
	}
	name := a.Column.Column
	if a.Distinct {
		return a.Func.String() + "(distinct(" + name + "))"
	}
	return a.Func.String() + "(" + name + ")"
}

// collectValues extracts every non-absent value of col across the
// relation, per spec's "COUNT of a column skips absent values"; other
// aggregators skip them too, since there's no meaningful MIN/MAX/SUM
// contribution from an absent value.
func collectValues(rel Relation, col query.ColumnRef, distinct bool) []types.Value {
	var out []types.Value
	seen := make(map[string]bool)
	for _, t := range rel {
		v, ok := t.Resolve(col)
		if !ok || v.IsAbsent() {
			continue
		}
		if distinct {
			key := v.String()
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, v)
	}
	return out
}

// computeAggregate reduces rel per the Aggregator's function, over the
// distinct multiset of col's values when Distinct is set. Aggregate over
// empty input: COUNT = 0, SUM = 0, MIN/MAX/AVG/STDDEV = Absent, per spec §8.
func computeAggregate(a query.Aggregator, rel Relation) types.Value {
	if a.Star {
		return types.Int(int64(len(rel)))
	}

	values := collectValues(rel, a.Column, a.Distinct)

	switch a.Func {
	case query.AggCount:
		return types.Int(int64(len(values)))
	case query.AggSum:
		if len(values) == 0 {
			return types.Int(0)
		}
		sum := 0.0
		for _, v := range values {
			f, _ := v.Numeric()
			sum += f
		}
		return types.Float(sum)
	case query.AggMin:
		if len(values) == 0 {
			return types.Absent
		}
		min := values[0]
		for _, v := range values[1:] {
			if v.Compare(min) < 0 {
				min = v
			}
		}
		return min
	case query.AggMax:
		if len(values) == 0 {
			return types.Absent
		}
		max := values[0]
		for _, v := range values[1:] {
			if v.Compare(max) > 0 {
				max = v
			}
		}
		return max
	case query.AggAvg:
		if len(values) == 0 {
			return types.Absent
		}
		sum := 0.0
		for _, v := range values {
			f, _ := v.Numeric()
			sum += f
		}
		return types.Float(sum / float64(len(values)))
	case query.AggStddev:
		if len(values) < 2 {
			return types.Absent
		}
		sum := 0.0
		for _, v := range values {
			f, _ := v.Numeric()
			sum += f
		}
		mean := sum / float64(len(values))
		var variance float64
		for _, v := range values {
			f, _ := v.Numeric()
			variance += (f - mean) * (f - mean)
		}
		variance /= float64(len(values) - 1)
		return types.Float(math.Sqrt(variance))
	default:
		return types.Absent
	}
}
