package exec

import (
	"sync/atomic"

	"github.com/kartikbazzad/reldb/internal/errors"
	"github.com/kartikbazzad/reldb/internal/memtable"
)

// CancelFlag is the cooperative cancellation flag spec §5 describes:
// checked at each suspension point (every storage call), never forcibly
// interrupting a running operator.
type CancelFlag struct {
	flag atomic.Bool
}

// Cancel requests cancellation; takes effect at the next suspension point.
func (c *CancelFlag) Cancel() { c.flag.Store(true) }

// Cancelled reports whether cancellation has been requested.
func (c *CancelFlag) Cancelled() bool {
	return c != nil && c.flag.Load()
}

// ExecContext carries the cancellation flag and a reference to storage, per
// spec §6. Storage is keyed by table name since the Storage interface
// itself (get/put/remove) has no notion of "which table" — that binding is
// the façade's job, not the core's.
type ExecContext struct {
	Cancel  *CancelFlag
	Storage map[string]memtable.Storage
}

func (c *ExecContext) storageFor(table string) (memtable.Storage, error) {
	s, ok := c.Storage[table]
	if !ok {
		return nil, &errors.StorageError{Op: "resolve", Err: errors.ErrUnknownTable}
	}
	return s, nil
}

// checkCancelled is called immediately before every storage call, the only
// suspension points the core has.
func (c *ExecContext) checkCancelled() error {
	if c.Cancel.Cancelled() {
		return errors.ErrCancelled
	}
	return nil
}
