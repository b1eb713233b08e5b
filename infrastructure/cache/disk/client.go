// ABOUTME: Disk feed cache storing one JSON file per feed URL
// ABOUTME: Writes are atomic and flushed so entries survive restarts intact

package disk

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"feedfetcher/core/domain"
)

const fileExt = ".json"

// ErrNilInfo is returned when Put is given a nil entry
var ErrNilInfo = errors.New("feed info cannot be nil")

// DiskCache implements interfaces.FeedCache on a directory. The directory is
// created on first write, and a directory removed behind the cache's back is
// treated as empty.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// NewDiskCache creates a cache rooted at dir
func NewDiskCache(dir string) (*DiskCache, error) {
	if dir == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory: %w", err)
	}
	return &DiskCache{dir: abs}, nil
}

// Dir returns the cache directory
func (c *DiskCache) Dir() string {
	return c.dir
}

// Get returns the entry for url, or nil
func (c *DiskCache) Get(ctx context.Context, url string) (*domain.FeedInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.read(url)
}

// Put writes info for url and syncs it to disk before returning
func (c *DiskCache) Put(ctx context.Context, url string, info *domain.FeedInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if info == nil {
		return ErrNilInfo
	}

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode feed info: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	return c.writeFile(c.path(url), data)
}

// Remove deletes the entry for url and returns it
func (c *DiskCache) Remove(ctx context.Context, url string) (*domain.FeedInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	info, err := c.read(url)
	if err != nil || info == nil {
		return nil, err
	}
	if err := os.Remove(c.path(url)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to remove cache file: %w", err)
	}
	return info, nil
}

// Clear deletes every cache file in the directory. Other files are left alone.
func (c *DiskCache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to list cache directory: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || !isCacheFile(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove cache file: %w", err)
		}
	}
	return nil
}

func (c *DiskCache) read(url string) (*domain.FeedInfo, error) {
	data, err := os.ReadFile(c.path(url))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var info domain.FeedInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("corrupt cache file for %s: %w", url, err)
	}
	return &info, nil
}

// writeFile replaces path atomically: temp file, fsync, rename, directory fsync
func (c *DiskCache) writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cache file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}

	if d, err := os.Open(c.dir); err == nil {
		d.Sync()
		d.Close()
	}
	return nil
}

// path maps url to a file name that is safe on every filesystem
func (c *DiskCache) path(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+fileExt)
}

func isCacheFile(name string) bool {
	if !strings.HasSuffix(name, fileExt) {
		return false
	}
	base := strings.TrimSuffix(name, fileExt)
	if len(base) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(base)
	return err == nil
}
