package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the database file created inside the cache directory.
const FileName = "responses.db"

// Store is a SQLite-backed response store. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file.
	CreateIfNotExists bool

	// EnableWAL enables write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Entry is one cached response.
type Entry struct {
	Key      string
	Status   int
	Header   http.Header
	Body     []byte
	StoredAt time.Time
}

// Open opens or creates the store in dir.
func Open(dir string, opts Options) (*Store, error) {
	path := filepath.Join(dir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("cache database not found at %s", path)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check cache path: %w", err)
		}
	} else if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dsn := path + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = path + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, path: path, now: time.Now}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS responses (
		key TEXT PRIMARY KEY,
		status INTEGER NOT NULL,
		header_json TEXT NOT NULL,
		body BLOB,
		stored_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_responses_stored_at ON responses(stored_at);
	`
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Get returns the entry stored under key, or nil when there is none.
func (s *Store) Get(ctx context.Context, key string) (*Entry, error) {
	query := `SELECT key, status, header_json, body, stored_at FROM responses WHERE key = ?`

	var (
		e          Entry
		headerJSON string
		storedAt   int64
	)
	err := s.db.QueryRowContext(ctx, query, key).Scan(&e.Key, &e.Status, &headerJSON, &e.Body, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // a miss is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached response: %w", err)
	}
	if err := json.Unmarshal([]byte(headerJSON), &e.Header); err != nil {
		return nil, fmt.Errorf("failed to parse cached headers: %w", err)
	}
	e.StoredAt = time.Unix(0, storedAt)
	return &e, nil
}

// Put stores e, replacing any entry with the same key. A zero StoredAt is
// set to the current time.
func (s *Store) Put(ctx context.Context, e *Entry) error {
	if e.StoredAt.IsZero() {
		e.StoredAt = s.now()
	}
	headerJSON, err := json.Marshal(e.Header)
	if err != nil {
		return fmt.Errorf("failed to serialize headers: %w", err)
	}

	query := `
	INSERT INTO responses (key, status, header_json, body, stored_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		status = excluded.status,
		header_json = excluded.header_json,
		body = excluded.body,
		stored_at = excluded.stored_at
	`
	if _, err := s.db.ExecContext(ctx, query, e.Key, e.Status, string(headerJSON), e.Body, e.StoredAt.UnixNano()); err != nil {
		return fmt.Errorf("failed to store response: %w", err)
	}
	return nil
}

// Purge deletes entries older than olderThan and returns how many were
// removed.
func (s *Store) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.now().Add(-olderThan).UnixNano()
	res, err := s.db.ExecContext(ctx, `DELETE FROM responses WHERE stored_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}
	return res.RowsAffected()
}

// Len returns the number of stored entries.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM responses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cached responses: %w", err)
	}
	return n, nil
}
