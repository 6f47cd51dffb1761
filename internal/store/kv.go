package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	// modernc.org/sqlite driver name is "sqlite".
	_ "modernc.org/sqlite"
)

const SQLiteFileName = "planner.sqlite"

// Entry is a stored value plus the time it was written.
type Entry struct {
	Value     []byte
	UpdatedAt time.Time
}

// KV is the durable key/value store: one SQLite table of opaque values under string keys.
//
// The handle is opened lazily and shared; Open may be called any number of times from any
// goroutine. Every failure is reported as an error wrapping ErrStoreUnavailable.
type KV struct {
	path string
	now  func() time.Time

	mu       sync.Mutex
	db       *sql.DB
	migrated bool
}

func NewKV(path string) *KV {
	return &KV{path: path, now: time.Now}
}

func (s *KV) Path() string { return s.path }

func (s *KV) Open(ctx context.Context) error {
	_, err := s.handle(ctx)
	return err
}

func (s *KV) handle(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db, nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, unavailable("open", err)
	}
	// SQLite has one writer; a single pooled connection keeps pragmas and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, unavailable("open", err)
		}
	}
	if !s.migrated {
		if err := migrateKV(ctx, db); err != nil {
			_ = db.Close()
			return nil, unavailable("migrate", err)
		}
		s.migrated = true
	}
	s.db = db
	return db, nil
}

func migrateKV(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv (
		k TEXT PRIMARY KEY,
		v TEXT NOT NULL,
		updated_at_unixns INTEGER NOT NULL
	);`)
	return err
}

// Get returns the entry under key; ok is false when the key is absent.
func (s *KV) Get(ctx context.Context, key string) (Entry, bool, error) {
	db, err := s.handle(ctx)
	if err != nil {
		return Entry{}, false, err
	}
	var v string
	var ns int64
	err = db.QueryRowContext(ctx, `SELECT v, updated_at_unixns FROM kv WHERE k = ?`, key).Scan(&v, &ns)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, unavailable("get "+key, err)
	}
	return Entry{Value: []byte(v), UpdatedAt: time.Unix(0, ns).UTC()}, true, nil
}

func (s *KV) Put(ctx context.Context, key string, value []byte) error {
	return s.PutAt(ctx, key, value, s.now())
}

// PutAt writes value under key and records at as its write time.
func (s *KV) PutAt(ctx context.Context, key string, value []byte, at time.Time) error {
	db, err := s.handle(ctx)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `INSERT INTO kv(k, v, updated_at_unixns) VALUES(?, ?, ?)
		ON CONFLICT(k) DO UPDATE SET v = excluded.v, updated_at_unixns = excluded.updated_at_unixns`,
		key, string(value), at.UTC().UnixNano())
	if err != nil {
		return unavailable("put "+key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *KV) Delete(ctx context.Context, key string) error {
	db, err := s.handle(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM kv WHERE k = ?`, key); err != nil {
		return unavailable("delete "+key, err)
	}
	return nil
}

// Clear removes every key; the table itself stays.
func (s *KV) Clear(ctx context.Context) error {
	db, err := s.handle(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM kv`); err != nil {
		return unavailable("clear", err)
	}
	return nil
}

// Keys lists stored keys in ascending order.
func (s *KV) Keys(ctx context.Context) ([]string, error) {
	db, err := s.handle(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT k FROM kv ORDER BY k ASC`)
	if err != nil {
		return nil, unavailable("keys", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, unavailable("keys", err)
		}
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("keys", err)
	}
	return out, nil
}

func (s *KV) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
