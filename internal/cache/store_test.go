package cache

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates the database file", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), "nested", "cache")
		s, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}
		defer s.Close()

		if s.Path() != filepath.Join(dir, FileName) {
			t.Errorf("expected path in %s, got %s", dir, s.Path())
		}
		if _, err := os.Stat(s.Path()); err != nil {
			t.Errorf("expected database file to exist: %v", err)
		}
	})

	t.Run("fails when the database is missing and creation is off", func(t *testing.T) {
		t.Parallel()
		_, err := Open(t.TempDir(), Options{})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})
}

func TestStoreGetPut(t *testing.T) {
	t.Parallel()

	t.Run("miss returns nil", func(t *testing.T) {
		t.Parallel()
		s := openTestStore(t)
		e, err := s.Get(context.Background(), "missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e != nil {
			t.Errorf("expected nil entry, got %+v", e)
		}
	})

	t.Run("round trips an entry", func(t *testing.T) {
		t.Parallel()
		s := openTestStore(t)
		ctx := context.Background()
		h := http.Header{}
		h.Set("Link", `<https://api.github.com/x?page=2>; rel="next"`)

		if err := s.Put(ctx, &Entry{Key: "k", Status: 200, Header: h, Body: []byte(`{"a":1}`)}); err != nil {
			t.Fatalf("failed to put: %v", err)
		}
		e, err := s.Get(ctx, "k")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if e == nil {
			t.Fatal("expected entry")
		}
		if e.Status != 200 {
			t.Errorf("expected status 200, got %d", e.Status)
		}
		if string(e.Body) != `{"a":1}` {
			t.Errorf("expected body to round trip, got %s", e.Body)
		}
		if e.Header.Get("Link") != h.Get("Link") {
			t.Errorf("expected Link header, got %q", e.Header.Get("Link"))
		}
		if e.StoredAt.IsZero() {
			t.Error("expected StoredAt to be set")
		}
	})

	t.Run("put replaces an existing key", func(t *testing.T) {
		t.Parallel()
		s := openTestStore(t)
		ctx := context.Background()
		_ = s.Put(ctx, &Entry{Key: "k", Status: 200, Body: []byte("old")})
		_ = s.Put(ctx, &Entry{Key: "k", Status: 404, Body: []byte("new")})

		e, err := s.Get(ctx, "k")
		if err != nil {
			t.Fatalf("failed to get: %v", err)
		}
		if e.Status != 404 || string(e.Body) != "new" {
			t.Errorf("expected replaced entry, got %d %s", e.Status, e.Body)
		}
		n, _ := s.Len(ctx)
		if n != 1 {
			t.Errorf("expected 1 entry, got %d", n)
		}
	})
}

func TestStorePurge(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()
	_ = s.Put(ctx, &Entry{Key: "old", Status: 200, StoredAt: now.Add(-48 * time.Hour)})
	_ = s.Put(ctx, &Entry{Key: "new", Status: 200, StoredAt: now})

	removed, err := s.Purge(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("failed to purge: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
	if e, _ := s.Get(ctx, "old"); e != nil {
		t.Error("expected old entry to be purged")
	}
	if e, _ := s.Get(ctx, "new"); e == nil {
		t.Error("expected new entry to remain")
	}
}
