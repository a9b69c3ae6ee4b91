// Package repository persists composer snapshots. Stores are plain
// key/value backends; SnapshotRepository layers the draft and last-order
// documents on top of one.
package repository

import "context"

// Store is a key/value backend for snapshot documents.
type Store interface {
	// Get returns the stored value, or nil without error when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// Ensure implementations satisfy Store.
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
	_ Store = (*PostgresStore)(nil)
	_ Store = (*SafeStore)(nil)
)
