package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	fileExt        = ".json"
	tempFilePrefix = ".tmp-"
)

var _ Backend = (*FileBackend)(nil)

// FileBackend stores each key in its own file under dir. Writes go to a temp
// file which is then renamed over the old one, so a failed write never leaves
// a half written value behind.
type FileBackend struct {
	mu    sync.Mutex
	dir   string
	quota int64
}

// NewFileBackend creates a backend rooted at dir, limited to quotaBytes
// (0 means unlimited). The directory is created on first write.
func NewFileBackend(dir string, quotaBytes int64) *FileBackend {
	return &FileBackend{
		dir:   dir,
		quota: quotaBytes,
	}
}

func (b *FileBackend) Dir() string {
	return b.dir
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, key+fileExt)
}

func (b *FileBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	value, err := os.ReadFile(b.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return value, true, nil
}

func (b *FileBackend) Set(_ context.Context, key string, value []byte) (err error) {
	if err := checkKey(key); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.MkdirAll(b.dir, 0700); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	if b.quota > 0 {
		used, err := b.usage(key)
		if err != nil {
			return err
		}
		if used+entrySize(key, value) > b.quota {
			return ErrStorageQuotaExceeded
		}
	}

	tmp, err := os.CreateTemp(b.dir, tempFilePrefix+key+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", key, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err = os.Rename(tmp.Name(), b.path(key)); err != nil {
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

func (b *FileBackend) Remove(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.Remove(b.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Usage returns the bytes currently counted against the quota.
func (b *FileBackend) Usage() (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.usage("")
}

// usage sums key and value sizes of all stored keys except skipKey.
func (b *FileBackend) usage(skipKey string) (int64, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read storage dir: %w", err)
	}

	var used int64
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, tempFilePrefix) || !strings.HasSuffix(name, fileExt) {
			continue
		}
		key := strings.TrimSuffix(name, fileExt)
		if key == skipKey {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return 0, err
		}
		used += int64(len(key)) + info.Size()
	}
	return used, nil
}
