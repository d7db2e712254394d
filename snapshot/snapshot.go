package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/meysamhadeli/docai/snapshot/contracts"
	"github.com/meysamhadeli/docai/snapshot/models"
)

const (
	// historyDirName is the per-project directory holding snapshot files.
	historyDirName = ".docai/backups"

	// timestampLayout is zero-padded down to nanoseconds so that the
	// lexicographic order of snapshot filenames equals chronological order.
	timestampLayout = "20060102T150405.000000000"

	snapshotExt = ".bak"
)

// snapshotNamePattern matches exactly the files this store creates; temp
// files and foreign entries in the history directory are never listed.
var snapshotNamePattern = regexp.MustCompile(`^\d{8}T\d{6}\.\d{9}\.bak$`)

// SnapshotStore keeps timestamp-ordered byte copies of a single target file
// per project root.
type SnapshotStore struct {
	targetName string

	mu     sync.Mutex
	lastID string
}

// NewSnapshotStore creates a store for the given target file name
// (e.g. "README.md").
func NewSnapshotStore(targetName string) contracts.ISnapshotStore {
	return &SnapshotStore{targetName: targetName}
}

func (s *SnapshotStore) historyDir(rootDir string) string {
	return filepath.Join(rootDir, filepath.FromSlash(historyDirName))
}

// nextID issues a unique, strictly increasing snapshot identifier. Nanosecond
// resolution alone is enough on every platform we care about, but the bump
// loop makes uniqueness a hard guarantee within a single process.
func (s *SnapshotStore) nextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	id := now.Format(timestampLayout)
	for id <= s.lastID && s.lastID != "" {
		now = now.Add(time.Nanosecond)
		id = now.Format(timestampLayout)
	}
	s.lastID = id
	return id
}

func (s *SnapshotStore) Create(rootDir string) (*models.Snapshot, error) {
	targetPath := filepath.Join(rootDir, s.targetName)

	content, err := os.ReadFile(targetPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Nothing to protect yet.
			return nil, nil
		}
		return nil, &StorageError{Op: "snapshot", Path: targetPath, Err: err}
	}

	historyDir := s.historyDir(rootDir)
	if err := os.MkdirAll(historyDir, 0755); err != nil {
		return nil, &StorageError{Op: "snapshot", Path: historyDir, Err: err}
	}

	id := s.nextID()
	snapshotPath := filepath.Join(historyDir, id+snapshotExt)

	if err := WriteFileAtomic(historyDir, snapshotPath, content); err != nil {
		return nil, &StorageError{Op: "snapshot", Path: snapshotPath, Err: err}
	}

	createdAt, _ := time.Parse(timestampLayout, id)
	return &models.Snapshot{
		ID:        id,
		Path:      snapshotPath,
		CreatedAt: createdAt,
		Size:      int64(len(content)),
	}, nil
}

func (s *SnapshotStore) List(rootDir string) ([]models.Snapshot, error) {
	historyDir := s.historyDir(rootDir)

	entries, err := os.ReadDir(historyDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Snapshot{}, nil
		}
		return nil, &StorageError{Op: "list", Path: historyDir, Err: err}
	}

	snapshots := make([]models.Snapshot, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !snapshotNamePattern.MatchString(entry.Name()) {
			continue
		}

		id := entry.Name()[:len(entry.Name())-len(snapshotExt)]
		createdAt, err := time.Parse(timestampLayout, id)
		if err != nil {
			continue
		}

		var size int64
		if info, err := entry.Info(); err == nil {
			size = info.Size()
		}

		snapshots = append(snapshots, models.Snapshot{
			ID:        id,
			Path:      filepath.Join(historyDir, entry.Name()),
			CreatedAt: createdAt,
			Size:      size,
		})
	}

	// Newest first; IDs sort lexicographically in chronological order.
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].ID > snapshots[j].ID
	})

	return snapshots, nil
}

func (s *SnapshotStore) Restore(rootDir string, id string) error {
	snapshotPath := filepath.Join(s.historyDir(rootDir), id+snapshotExt)

	content, err := os.ReadFile(snapshotPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &NotFoundError{ID: id}
		}
		return &StorageError{Op: "restore", Path: snapshotPath, Err: err}
	}

	targetPath := filepath.Join(rootDir, s.targetName)
	if err := WriteFileAtomic(rootDir, targetPath, content); err != nil {
		return &StorageError{Op: "restore", Path: targetPath, Err: err}
	}

	return nil
}

// WriteFileAtomic writes content to a temp file in dir and renames it onto
// finalPath, so a reader never observes a truncated or mixed file.
func WriteFileAtomic(dir string, finalPath string, content []byte) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize file: %w", err)
	}

	return nil
}
