// Package config holds tunables for the query engine, its memory tables,
// and the demo tooling built on top of it.
package config

import (
	"runtime"
	"time"
)

// Config aggregates every tunable surface of the engine.
type Config struct {
	Memory MemoryConfig
	Query  QueryConfig
	Bench  BenchConfig
}

// MemoryConfig controls the in-memory table store.
type MemoryConfig struct {
	ShardCount int // number of shards a MemoryTable hashes row ids across
}

// QueryConfig bounds query planning and execution.
type QueryConfig struct {
	MaxLimit            int           // largest Limit a Select may request; 0 = unbounded
	MaxTablesPerSelect  int           // largest number of tables a single Select may join
	PlanCacheSize       int           // entries retained in the physical-plan LRU cache
	DefaultQueryTimeout time.Duration // per-query deadline a caller arms on the ExecContext's CancelFlag
}

// BenchConfig tunes the cmd/reldbbench load-generation harness.
type BenchConfig struct {
	WorkerCount  int           // size of the ants pool that fans out queries
	WorkerExpiry time.Duration // idle goroutine expiry for the ants pool
	QueueDepth   int           // pending submissions before Submit blocks
}

// Default returns sensible defaults, mirroring the shape of a production
// deployment: small fixed pools, generous but finite caches.
func Default() *Config {
	return &Config{
		Memory: MemoryConfig{
			ShardCount: 16,
		},
		Query: QueryConfig{
			MaxLimit:            100000,
			MaxTablesPerSelect:  8,
			PlanCacheSize:       256,
			DefaultQueryTimeout: 30 * time.Second,
		},
		Bench: BenchConfig{
			WorkerCount:  runtime.NumCPU(),
			WorkerExpiry: time.Second,
			QueueDepth:   1024,
		},
	}
}
