// Package engine is the query engine façade: converts a validated query
// description to a physical plan, then drives plan execution. Grounded on
// askorykh-goDB's internal/engine/engine.go — a thin façade over storage
// with transaction-wrapped mutation methods, generalized here to
// Plan/Execute over the two-stage compiler instead of a single-pass
// statement dispatcher.
package engine

import "github.com/google/uuid"

// Result is the discriminated shape returned by Execute: for Select, Rows
// holds the projection-shaped output; for Insert/Update/Delete, Affected
// holds the count of rows written.
type Result struct {
	QueryID  uuid.UUID
	Rows     []interface{} // populated for Select
	Affected int           // populated for Insert/Update/Delete
}
