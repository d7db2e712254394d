package models

import "time"

// Snapshot is one immutable historical copy of the target file.
type Snapshot struct {
	ID        string
	Path      string
	CreatedAt time.Time
	Size      int64
}
