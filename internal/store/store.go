// Package store is the durable client-side key/value storage. It survives
// process restarts the way browser localStorage survives reloads: the
// session layer keeps its token, refresh token, user blob, and expiry here.
package store

import "context"

// Store defines the persistence contract for client state.
//
// Get returns the raw stored string and whether the key was present;
// callers own interpretation of the value (and tolerance of garbage).
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// SetMany writes all pairs in a single transaction.
	SetMany(ctx context.Context, pairs map[string]string) error
	// DeleteAll removes the given keys atomically.
	DeleteAll(ctx context.Context, keys ...string) error
	Close() error
}
