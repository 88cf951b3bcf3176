// Package repositories implements SQLite persistence for fetched objects and activity cursors.
//
// Key Implementations:
//   - [ObjectRepository] : cached catalog objects keyed by object key, stored as JSON and decoded on read
//   - [CursorRepository] : the newest activity id seen per user and scope
//   - [ObjectCacheAdapter] : write-through caching for anything that fetches objects
//
// Sequence numbers provide stable, human-readable ordering independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
