package exec

import "github.com/kartikbazzad/reldb/internal/types"

// ToRows converts a final Relation into the caller-facing projection shape
// spec §4.6 mandates: a flat map[string]Value when exactly one real table
// is in scope, or a types.CompositeRow when more than one is. This
// distinction must be observable to the caller, so it is computed once
// here rather than smoothed over.
func ToRows(rel Relation) []interface{} {
	out := make([]interface{}, 0, len(rel))
	for _, t := range rel {
		out = append(out, toOutputRow(t))
	}
	return out
}

func toOutputRow(t Tuple) interface{} {
	realTables := 0
	for name := range t {
		if name != "" {
			realTables++
		}
	}

	if realTables <= 1 {
		flat := make(map[string]types.Value)
		for _, row := range t {
			for k, v := range row.Payload {
				flat[k] = v
			}
		}
		return flat
	}

	composite := make(types.CompositeRow, realTables)
	for name, row := range t {
		if name == "" {
			for k, v := range row.Payload {
				composite[k] = map[string]types.Value{"": v}
			}
			continue
		}
		composite[name] = row.Payload
	}
	return composite
}

// AffectedCount extracts the "count" scalar a mutating operator's single
// output row carries.
func AffectedCount(rel Relation) int {
	if len(rel) == 0 {
		return 0
	}
	row, ok := rel[0][""]
	if !ok {
		return 0
	}
	n, _ := row.Payload["count"].AsInt()
	return int(n)
}
