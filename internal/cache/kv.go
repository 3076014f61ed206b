// Package cache persists questionnaires in the user_questionnaires
// key-value format shared with the web client's local storage.
package cache

import "context"

// KV is a string key-value store. Implementations back the Store adapter
// with memory, a file per key, SQLite, or Redis.
type KV interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	Close() error
}
