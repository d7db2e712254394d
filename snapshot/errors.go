package snapshot

import "fmt"

// StorageError wraps a filesystem failure during snapshot creation, listing,
// restoration or apply. The underlying cause is preserved for errors.Is/As.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s on %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a restore request for a snapshot that no longer
// exists on disk.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("snapshot '%s' not found", e.ID)
}
