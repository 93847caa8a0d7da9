package types

// RowID is a non-negative integer unique within its owning table.
type RowID int64

// Row is the unit of storage: an integer identity plus a payload addressable
// by column name. The zero value is not meaningful; construct with NewRow.
type Row struct {
	ID      RowID
	Payload map[string]Value
}

// NewRow builds a Row, copying the supplied payload so the caller's map can
// be mutated afterward without aliasing the stored row.
func NewRow(id RowID, payload map[string]Value) Row {
	p := make(map[string]Value, len(payload))
	for k, v := range payload {
		p[k] = v
	}
	return Row{ID: id, Payload: p}
}

// Get returns the value at column, or Absent if the column is unset.
func (r Row) Get(column string) Value {
	if v, ok := r.Payload[column]; ok {
		return v
	}
	return Absent
}

// With returns a copy of r with column set to v, leaving r untouched. Used
// by Update to apply assignments to a copy before writing back.
func (r Row) With(column string, v Value) Row {
	p := make(map[string]Value, len(r.Payload)+1)
	for k, val := range r.Payload {
		p[k] = val
	}
	p[column] = v
	return Row{ID: r.ID, Payload: p}
}

// Project returns a copy of the payload restricted to cols. Columns absent
// from the row are simply omitted, not stamped Absent, since Project is
// specified over "selected columns to values" already present on the row.
func (r Row) Project(cols []string) map[string]Value {
	out := make(map[string]Value, len(cols))
	for _, c := range cols {
		if v, ok := r.Payload[c]; ok {
			out[c] = v
		}
	}
	return out
}
