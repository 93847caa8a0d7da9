// Package catalog holds the read-only schema model: tables, columns, and
// the references between them. It is the sole source of truth for name
// resolution used by predicate construction, query validation, and the
// logical planner's rewrite rules.
//
// Grounded on the teacher's CollectionRegistry (name validation, existence
// checks, registry-held metadata) re-pointed at table/column metadata
// instead of document collections.
package catalog

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/kartikbazzad/reldb/internal/types"
)

var nameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Reference declares a foreign-key-like relationship: Column in the owning
// table logically references Table.RefColumn. The catalog does not enforce
// referential integrity (index maintenance is out of scope); it only
// records the relationship for planners and tooling that want it.
type Reference struct {
	Column     string
	RefTable   string
	RefColumn  string
}

// Table is read-only schema metadata for one table.
type Table struct {
	Name       string
	Columns    []types.Column
	PrimaryKey string
	References []Reference

	byName map[string]types.Column
}

// Column looks up a column by name within this table.
func (t *Table) Column(name string) (types.Column, bool) {
	c, ok := t.byName[name]
	return c, ok
}

// Catalog is the registry of tables. It is mutable only until Freeze is
// called, after which it must not be modified further — mirroring spec's
// "read-only after construction" contract.
type Catalog struct {
	mu     sync.RWMutex
	tables map[string]*Table
	order  []string
	frozen bool
}

// New returns an empty, mutable catalog.
func New() *Catalog {
	return &Catalog{tables: make(map[string]*Table)}
}

// ValidateTableName enforces the same identifier syntax rule the teacher's
// collection registry applies to collection names.
func ValidateTableName(name string) error {
	if !nameRE.MatchString(name) {
		return fmt.Errorf("catalog: invalid table name %q: must match %s", name, nameRE.String())
	}
	return nil
}

// CreateTable registers a new table. Returns an error if the catalog is
// frozen, the name is invalid, the table already exists, or a column name
// collides.
func (c *Catalog) CreateTable(name string, columns []types.Column, primaryKey string, refs []Reference) (*Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		return nil, fmt.Errorf("catalog: frozen, cannot create table %q", name)
	}
	if err := ValidateTableName(name); err != nil {
		return nil, err
	}
	if _, exists := c.tables[name]; exists {
		return nil, fmt.Errorf("catalog: table %q already exists", name)
	}

	byName := make(map[string]types.Column, len(columns))
	for i := range columns {
		columns[i].TableName = name
		if _, dup := byName[columns[i].Name]; dup {
			return nil, fmt.Errorf("catalog: duplicate column %q in table %q", columns[i].Name, name)
		}
		byName[columns[i].Name] = columns[i]
	}

	t := &Table{
		Name:       name,
		Columns:    columns,
		PrimaryKey: primaryKey,
		References: refs,
		byName:     byName,
	}
	c.tables[name] = t
	c.order = append(c.order, name)
	return t, nil
}

// Freeze prevents further CreateTable calls, matching spec's "read-only
// after construction" contract.
func (c *Catalog) Freeze() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = true
}

// Table returns the named table's metadata.
func (c *Catalog) Table(name string) (*Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[name]
	return t, ok
}

// Tables returns every registered table in registration order.
func (c *Catalog) Tables() []*Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Table, 0, len(c.order))
	for _, n := range c.order {
		out = append(out, c.tables[n])
	}
	return out
}

// Resolve looks up column metadata by table and column name. This is the
// single source of truth predicate construction, the validator, and the
// logical planner's rewrite rules all call into for name resolution.
func (c *Catalog) Resolve(table, column string) (types.Column, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.tables[table]
	if !ok {
		return types.Column{}, fmt.Errorf("catalog: unknown table %q", table)
	}
	col, ok := t.byName[column]
	if !ok {
		return types.Column{}, fmt.Errorf("catalog: unknown column %q on table %q", column, table)
	}
	return col, nil
}
