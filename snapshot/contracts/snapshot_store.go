package contracts

import "github.com/meysamhadeli/docai/snapshot/models"

// ISnapshotStore manages the timestamp-ordered backup history of a single
// target file under a project root.
type ISnapshotStore interface {
	// Create copies the target file's current bytes into a new snapshot and
	// returns it. When the target file does not exist there is nothing to
	// protect and Create returns (nil, nil).
	Create(rootDir string) (*models.Snapshot, error)

	// List returns the snapshot history newest first. A missing history
	// directory yields an empty slice, not an error.
	List(rootDir string) ([]models.Snapshot, error)

	// Restore copies the referenced snapshot's bytes back onto the target
	// file. The caller is responsible for snapshotting the current state
	// first if it wants the pre-restore content to stay recoverable.
	Restore(rootDir string, id string) error
}
