package query

import (
	"github.com/google/uuid"
	"github.com/kartikbazzad/reldb/internal/types"
)

// AggFunc names a reduction kind.
type AggFunc int

const (
	AggNone AggFunc = iota
	AggMin
	AggMax
	AggSum
	AggAvg
	AggCount
	AggStddev
)

func (f AggFunc) String() string {
	switch f {
	case AggMin:
		return "min"
	case AggMax:
		return "max"
	case AggSum:
		return "sum"
	case AggAvg:
		return "avg"
	case AggCount:
		return "count"
	case AggStddev:
		return "stddev"
	default:
		return "none"
	}
}

// Aggregator is a reduction applied to a column, optionally over only its
// distinct values. Column == "" with Func == AggCount and Star == true
// models COUNT(*).
type Aggregator struct {
	Func     AggFunc
	Column   ColumnRef
	Distinct bool
	Star     bool
	Alias    string // result column name; defaults to Func(column) rendering
}

// SortDir is the direction of one OrderSpec.
type SortDir int

const (
	Asc SortDir = iota
	Desc
)

// OrderSpec names one column of a multi-column ORDER BY; specs are applied
// lexicographically left to right via a single comparator, not repeated
// sorts, so the result stays stable with respect to earlier keys.
type OrderSpec struct {
	Column ColumnRef
	Dir    SortDir
}

// ConflictPolicy governs Insert collision behaviour.
type ConflictPolicy int

const (
	ConflictError ConflictPolicy = iota
	ConflictReplace
)

// ProjectedColumn is either a bare column reference or an aggregator
// applied to one; Select's projection list is a mix of both.
type ProjectedColumn struct {
	Column ColumnRef // meaningful when Agg == nil
	Agg    *Aggregator
	Alias  string
}

// ExplicitJoin pairs a table reference with the predicate joining it to
// what precedes it in the from list; present only for queries that spell
// out "inner join ... on ...", as opposed to an implicit cross product
// filtered by a WHERE clause.
type ExplicitJoin struct {
	Table     string
	Predicate Predicate
}

// Select describes a read query: tables, optional predicate, projection
// (possibly including aggregators), explicit joins, ordering, and
// limit/skip.
type Select struct {
	ID          uuid.UUID
	Tables      []string
	Predicate   Predicate
	Projection  []ProjectedColumn // empty means "*"
	Joins       []ExplicitJoin
	OrderBy     []OrderSpec
	Limit       *int
	Skip        *int
	// Distinct, when set, requests the standalone Distinct(column) form:
	// one output row per distinct value of the column, in input order of
	// first occurrence. Mutually exclusive with a non-trivial Projection.
	Distinct *ColumnRef
}

// Insert describes a write of new rows into Table, under ConflictPolicy
// when a row's identity collides with an existing one.
type Insert struct {
	ID       uuid.UUID
	Table    string
	Rows     []types.Row
	Policy   ConflictPolicy
}

// Assignment sets Column to a literal new Value. (Expression-valued
// assignments beyond a literal are out of scope; the query builder that
// would construct them is an external collaborator.)
type Assignment struct {
	Column ColumnRef
	Value  types.Value
}

// Update describes a write that applies Assignments to every row of Table
// matching Predicate (nil predicate degenerates to "every row").
type Update struct {
	ID          uuid.UUID
	Table       string
	Predicate   Predicate
	Assignments []Assignment
}

// Delete describes removing every row of Table matching Predicate (nil
// predicate degenerates to "every row").
type Delete struct {
	ID        uuid.UUID
	Table     string
	Predicate Predicate
}

// Description is the tagged union over the four query shapes the engine
// façade consumes. Exactly one field is non-nil.
type Description struct {
	Select *Select
	Insert *Insert
	Update *Update
	Delete *Delete
}

// NewID allocates a fresh correlation id for a query description, used to
// tie together log lines and the eventual Result envelope.
func NewID() uuid.UUID { return uuid.New() }

// Kind returns a short tag naming which shape is populated, used by
// metrics and logging.
func (d Description) Kind() string {
	switch {
	case d.Select != nil:
		return "select"
	case d.Insert != nil:
		return "insert"
	case d.Update != nil:
		return "update"
	case d.Delete != nil:
		return "delete"
	default:
		return "unknown"
	}
}
