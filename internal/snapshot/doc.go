// Package snapshot persists recognition runs in a SQLite database.
//
// A snapshot file sits next to its image with the ".links" extension and
// can hold any number of runs. Each run stores:
//   - Links: every relation with its usage count and frequency
//   - Pairs: the pair frequency table observed while indexing
//   - Roots: the compressed root of every row and column
//   - Levels: the level matrix, zstd-compressed
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Runs are keyed by their UUIDv7 run id, so ordering by id follows creation
// time.
package snapshot
