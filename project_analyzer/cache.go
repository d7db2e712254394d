package project_analyzer

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zeebo/xxh3"
)

// fileScanEntry caches per-file scan results so repeated analyses do not
// reread unchanged files. Invalidation is by modification time and size.
type fileScanEntry struct {
	Lines    int
	Decls    int
	Language string
	ModTime  time.Time
	Size     int64
}

// ScanCache is a gob-encoded, file-backed cache for scan results, keyed by
// an xxh3 hash of the source file path.
type ScanCache struct {
	cacheDir string
	mutex    sync.RWMutex
}

// NewScanCache creates (and lazily populates) a cache directory. If cacheDir
// is empty the cache lives under <cwd>/.docai/cache.
func NewScanCache(cacheDir string) (*ScanCache, error) {
	if cacheDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		cacheDir = filepath.Join(cwd, ".docai", "cache")
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &ScanCache{cacheDir: cacheDir}, nil
}

func (c *ScanCache) cachePath(filePath string) string {
	sum := xxh3.HashString(filePath)
	return filepath.Join(c.cacheDir, fmt.Sprintf("%016x.cache", sum))
}

// Get returns the cached entry for filePath if the file is unchanged since
// it was cached.
func (c *ScanCache) Get(filePath string, info os.FileInfo) (*fileScanEntry, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	data, err := os.ReadFile(c.cachePath(filePath))
	if err != nil {
		return nil, false
	}

	var entry fileScanEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entry); err != nil {
		return nil, false
	}

	if !info.ModTime().Equal(entry.ModTime) || info.Size() != entry.Size {
		return nil, false
	}

	return &entry, true
}

// Set stores the scan entry for filePath, stamped with the file's current
// metadata.
func (c *ScanCache) Set(filePath string, info os.FileInfo, entry fileScanEntry) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry.ModTime = info.ModTime()
	entry.Size = info.Size()

	var buffer bytes.Buffer
	if err := gob.NewEncoder(&buffer).Encode(entry); err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	if err := os.WriteFile(c.cachePath(filePath), buffer.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

// Clear removes every cache entry.
func (c *ScanCache) Clear() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entries, err := os.ReadDir(c.cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		os.Remove(filepath.Join(c.cacheDir, entry.Name()))
	}
	return nil
}

// Stats reports entry count and total size for the reset-cache command.
func (c *ScanCache) Stats() (map[string]interface{}, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entries, err := os.ReadDir(c.cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var totalSize int64
	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if info, err := entry.Info(); err == nil {
			totalSize += info.Size()
		}
		count++
	}

	return map[string]interface{}{
		"cache_dir":   c.cacheDir,
		"cache_files": count,
		"total_size":  totalSize,
	}, nil
}
