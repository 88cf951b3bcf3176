// Package tasks runs multi-call operations against the API with progress reporting.
//
// # Operations
//
//  1. [Exporter.ExportPlaylists] : bulk playlist export
//     - Resolves each playlist with its track keys
//     - Fetches the tracks in batches and keeps playlist order
//     - Writes one export per playlist in the chosen format plus a manifest
//
//  2. [CollectAll] : drains a start/count listing into a single slice
//
//  3. [NextActivity] : fetches the activity updates newer than the stored cursor and advances it
//
// # Progress Reporting
//
// Operations accept an optional ProgressUpdate channel. Sends never block; updates are dropped when the
// channel is full.
//
// # Object Caching
//
// The optional [ObjectCacher] (repositories.ObjectCacheAdapter) stores every playlist and track an export
// fetched. Cache failures are logged and never fail an export.
package tasks
