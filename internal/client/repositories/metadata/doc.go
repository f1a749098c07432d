// Package metadata stores small key/value settings of the local database
// outside the snapshot tables: the sync watermark and the persisted session.
// Values survive ImportAll because snapshots never include this table.
package metadata
