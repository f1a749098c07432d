package models

import "time"

// Snapshot indexes one uploaded database blob. The newest row is the
// server's state; its CreatedAt is the last_update reported to clients.
type Snapshot struct {
	ID         int64
	ObjectKey  string
	Size       int64
	Checksum   string
	UploadedBy *int64
	CreatedAt  time.Time
}
