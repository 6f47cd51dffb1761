package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"planner-cli/internal/model"
)

// DefaultFallbackQuota mirrors the few-megabyte origin quota of browser key/value storage.
const DefaultFallbackQuota int64 = 5 << 20

// Fallback is the size-limited backstop store: one JSON file per key under an origin directory.
//
// It never returns errors to callers. Reads of missing or corrupt data yield an empty list;
// failed writes return false and leave the cause in LastErr.
type Fallback struct {
	dir   string
	quota int64

	mu      sync.Mutex
	lastErr error
}

// NewFallback scopes the store to root/origin. An empty root yields a store that is always
// unavailable (the analogue of storage disabled by the browser).
func NewFallback(root, origin string, quota int64) *Fallback {
	if quota <= 0 {
		quota = DefaultFallbackQuota
	}
	dir := ""
	if strings.TrimSpace(root) != "" {
		dir = filepath.Join(root, sanitizeOrigin(origin))
	}
	return &Fallback{dir: dir, quota: quota}
}

func sanitizeOrigin(origin string) string {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return "default"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, origin)
}

func (f *Fallback) Dir() string { return f.dir }

func (f *Fallback) Available() bool { return f.dir != "" }

func (f *Fallback) path(key string) string {
	return filepath.Join(f.dir, sanitizeOrigin(key)+".json")
}

// LastErr is the cause of the most recent failed write, or nil.
func (f *Fallback) LastErr() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

func (f *Fallback) fail(err error) bool {
	f.mu.Lock()
	f.lastErr = err
	f.mu.Unlock()
	return false
}

// LoadList returns the records under key, or an empty list when missing or corrupt.
func (f *Fallback) LoadList(key string) []model.Record {
	recs, _, ok := f.Lookup(key)
	if !ok {
		return []model.Record{}
	}
	return recs
}

// Lookup is LoadList that also reports the write time and whether a well-formed list was found.
func (f *Fallback) Lookup(key string) ([]model.Record, time.Time, bool) {
	b, ok := f.Raw(key)
	if !ok {
		return nil, time.Time{}, false
	}
	recs, err := DecodeList(b)
	if err != nil {
		return nil, time.Time{}, false
	}
	var at time.Time
	if st, err := os.Stat(f.path(key)); err == nil {
		at = st.ModTime().UTC()
	}
	return recs, at, true
}

// Raw returns the stored bytes under key.
func (f *Fallback) Raw(key string) ([]byte, bool) {
	if !f.Available() {
		return nil, false
	}
	b, err := os.ReadFile(f.path(key))
	if err != nil || len(b) == 0 {
		return nil, false
	}
	return b, true
}

func (f *Fallback) SaveList(key string, records []model.Record) bool {
	return f.SaveListAt(key, records, time.Now())
}

// SaveListAt writes records under key and stamps the file with at.
func (f *Fallback) SaveListAt(key string, records []model.Record, at time.Time) bool {
	b, err := EncodeList(records)
	if err != nil {
		return f.fail(err)
	}
	return f.write(key, b, at)
}

func (f *Fallback) write(key string, b []byte, at time.Time) bool {
	if !f.Available() {
		return f.fail(fmt.Errorf("%w: fallback storage disabled", ErrStoreUnavailable))
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return f.fail(fmt.Errorf("%w: %w", ErrStoreUnavailable, err))
	}
	used, err := f.usedExcept(key)
	if err != nil {
		return f.fail(fmt.Errorf("%w: %w", ErrStoreUnavailable, err))
	}
	if used+int64(len(b)) > f.quota {
		return f.fail(fmt.Errorf("%w: %s needs %d bytes, %d of %d in use", ErrQuotaExceeded, key, len(b), used, f.quota))
	}

	path := f.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		_ = os.Remove(tmp)
		return f.fail(fmt.Errorf("%w: %w", ErrStoreUnavailable, err))
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return f.fail(fmt.Errorf("%w: %w", ErrStoreUnavailable, err))
	}
	_ = os.Chtimes(path, at, at)

	f.mu.Lock()
	f.lastErr = nil
	f.mu.Unlock()
	return true
}

func (f *Fallback) usedExcept(key string) (int64, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	skip := filepath.Base(f.path(key))
	var total int64
	for _, e := range entries {
		if e.IsDir() || e.Name() == skip || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}

// Remove deletes key; missing keys are ignored.
func (f *Fallback) Remove(key string) bool {
	if !f.Available() {
		return false
	}
	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return f.fail(err)
	}
	return true
}
