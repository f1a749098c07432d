// Package localstore is the on-device database of the client.
//
// A Store wraps one SQLite file and exposes typed accessors over the
// repositories in internal/client/repositories. EnsureSchema must succeed
// before anything else; until then every accessor returns ErrNotReady.
//
// All writes, including snapshot imports and watermark changes, are
// serialized by a single writer lock and run in one transaction each.
// Reads do not take the lock.
//
// The sync watermark is kept in the metadata table, which snapshots never
// contain, so ImportAll cannot drop it. Local edits move the watermark
// forward to the edit time, but only once the device has synced at least
// once; a device that never synced always pulls first.
package localstore
