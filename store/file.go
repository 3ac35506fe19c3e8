package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// FileTier is the fast tier: one plain file per key under a root directory.
// It is synchronous, human-inspectable and quota-limited, which makes it the
// natural home for the day-to-day registry blob while oversized values are
// routed to the durable tier.
type FileTier struct {
	root  string
	quota int64 // total bytes across all files, 0 means unlimited

	mu    sync.Mutex
	usage int64
}

// NewFileTier opens (creating if needed) a file tier rooted at dir, with a
// total size quota in bytes. Existing files count against the quota.
func NewFileTier(dir string, quota int64) (*FileTier, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create fast tier directory %q: %w", dir, err)
	}
	t := &FileTier{root: dir, quota: quota}

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		t.usage += info.Size()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cannot scan fast tier directory %q: %w", dir, err)
	}
	return t, nil
}

// path maps a namespaced key onto a file, path-escaping both parts so any
// key is a valid file name.
func (t *FileTier) path(namespace, key string) string {
	return filepath.Join(t.root, url.PathEscape(namespace), url.PathEscape(key))
}

func (t *FileTier) Get(_ context.Context, namespace, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(t.path(namespace, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cannot read %s/%s: %w", namespace, key, err)
	}
	return data, true, nil
}

func (t *FileTier) Put(_ context.Context, namespace, key string, value []byte) error {
	file := t.path(namespace, key)

	var prior int64
	if info, err := os.Stat(file); err == nil {
		prior = info.Size()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.quota > 0 && t.usage-prior+int64(len(value)) > t.quota {
		return ErrQuotaExceeded
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return fmt.Errorf("cannot create namespace directory for %s/%s: %w", namespace, key, err)
	}
	if err := os.WriteFile(file, value, 0o644); err != nil {
		return fmt.Errorf("cannot write %s/%s: %w", namespace, key, err)
	}
	t.usage += int64(len(value)) - prior
	return nil
}

func (t *FileTier) Delete(_ context.Context, namespace, key string) error {
	file := t.path(namespace, key)
	info, err := os.Stat(file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot stat %s/%s: %w", namespace, key, err)
	}
	if err := os.Remove(file); err != nil {
		return fmt.Errorf("cannot delete %s/%s: %w", namespace, key, err)
	}
	t.mu.Lock()
	t.usage -= info.Size()
	t.mu.Unlock()
	return nil
}

func (t *FileTier) Close() error { return nil }

var _ KV = (*FileTier)(nil)
