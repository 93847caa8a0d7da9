// Package memtable implements the in-memory row store the query engine's
// operators read from and write to: a sharded identity-keyed map with
// bulk get/put/remove and the "empty means all" convention preserved on
// both Get and Remove.
//
// Grounded on the teacher's sharded document index (IndexShard/Index):
// per-shard RWMutex plus a plain map, shard selected by id % shardCount.
// Unlike the teacher's index this store carries no MVCC visibility state —
// there is no transaction manager in scope, so a row simply exists or not.
package memtable

import (
	"sync"

	"github.com/kartikbazzad/reldb/internal/types"
)

type shard struct {
	mu   sync.RWMutex
	data map[types.RowID]types.Row
}

func newShard() *shard {
	return &shard{data: make(map[types.RowID]types.Row)}
}

func (s *shard) get(id types.RowID) (types.Row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.data[id]
	return r, ok
}

func (s *shard) put(r types.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[r.ID] = r
}

func (s *shard) remove(id types.RowID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return false
	}
	delete(s.data, id)
	return true
}

func (s *shard) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[types.RowID]types.Row)
}

func (s *shard) snapshot(out *[]types.Row, mu *sync.Mutex) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mu.Lock()
	defer mu.Unlock()
	for _, r := range s.data {
		*out = append(*out, r)
	}
}

func (s *shard) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
