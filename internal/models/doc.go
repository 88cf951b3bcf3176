// Package models defines the Rdio entities returned by the web API and the persistent records rdx keeps about them.
//
// The package contains three categories of types:
//
// 1. Catalog objects: immutable snapshots decoded from one JSON object, all implementing [Object]
//   - [Artist] : an artist, or an artist in a user's collection
//   - [Album] : an album, or an album in a user's collection
//   - [Track] : a single track with its album and artist references
//   - [Playlist] : a playlist and its owner
//   - [User] : a person, with name and gender derived on decode
//
// 2. Composite results: shapes returned by specific procedures
//   - [SearchResult] : per-type counts and a mixed list of objects
//   - [ActivityStream] : a page of [ActivityItem] updates with a paging cursor
//   - [PlaylistSet] : owned, collaborative and subscribed playlists
//
// 3. Persistent records: database-backed values with lifecycle metadata
//   - [CachedObject] : the raw payload of a fetched object
//   - [ActivityCursor] : the last seen activity id for a user and scope
//
// Objects are told apart by their "type" discriminator. [DecodeObject] fails with
// [ErrUnknownType] when it meets a discriminator it does not know rather than skipping the record.
package models
