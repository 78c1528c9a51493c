// Package store provides SQLite-backed key-value storage for the runtime
// Environment.
//
// The store implements env.Storage on a single table:
//   - key: storage key (binary collation)
//   - value: JSON text as written by env.SetValue
//   - updated_at: unix milliseconds of the last write, for inspection only
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Durability beyond "a saved value can be loaded by key" is not a goal.
package store
