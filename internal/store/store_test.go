package store_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/derickschaefer/ezdota/internal/store"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

// testDB opens a fresh isolated database in t.TempDir().
// It is closed and deleted automatically when the test ends.
func testDB(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustPut(t *testing.T, s *store.Store, key, body string, ttl time.Duration) {
	t.Helper()
	if err := s.Put(key, []byte(body), ttl); err != nil {
		t.Fatalf("Put %s: %v", key, err)
	}
}

// ─── Open / Path ──────────────────────────────────────────────────────────────

func TestOpenCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c", "test.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open with nested path: %v", err)
	}
	defer s.Close()
	if s.Path() != path {
		t.Errorf("Path: expected %q, got %q", path, s.Path())
	}
}

func TestOpenWritesSchemaMeta(t *testing.T) {
	s := testDB(t)
	st, err := s.Stats(time.Now())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.SchemaVersion != 1 {
		t.Errorf("SchemaVersion: expected 1, got %d", st.SchemaVersion)
	}
	if st.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set on first open")
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	mustPut(t, s, "heroStats", `[{"id":1}]`, time.Hour)
	s.Close()

	s, err = store.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	body, err := s.Get("heroStats", time.Now())
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if string(body) != `[{"id":1}]` {
		t.Errorf("body: got %s", body)
	}
}

// ─── Put / Get ────────────────────────────────────────────────────────────────

func TestPutGet(t *testing.T) {
	s := testDB(t)
	mustPut(t, s, "match_42", `{"match_id":42}`, 24*time.Hour)

	body, err := s.Get("match_42", time.Now())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != `{"match_id":42}` {
		t.Errorf("body: got %s", body)
	}
}

func TestGetMissing(t *testing.T) {
	s := testDB(t)
	_, err := s.Get("nope", time.Now())
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetExpired(t *testing.T) {
	s := testDB(t)
	mustPut(t, s, "matches_1_100", `[]`, 5*time.Minute)

	if _, err := s.Get("matches_1_100", time.Now().Add(4*time.Minute)); err != nil {
		t.Errorf("entry should be fresh after 4m: %v", err)
	}
	_, err := s.Get("matches_1_100", time.Now().Add(6*time.Minute))
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("entry should be expired after 6m, got %v", err)
	}

	// The envelope is still readable for inspection.
	e, err := s.Entry("matches_1_100")
	if err != nil {
		t.Fatalf("Entry: %v", err)
	}
	if got := e.ExpiresAt.Sub(e.FetchedAt); got != 5*time.Minute {
		t.Errorf("ttl: expected 5m, got %s", got)
	}
}

func TestPutStampsFetchedAt(t *testing.T) {
	s := testDB(t)
	before := time.Now().Add(-time.Second)
	mustPut(t, s, "player_1", `{}`, time.Minute)
	after := time.Now().Add(time.Second)

	e, err := s.Entry("player_1")
	if err != nil {
		t.Fatalf("Entry: %v", err)
	}
	if e.FetchedAt.Before(before) || e.FetchedAt.After(after) {
		t.Errorf("FetchedAt %v outside expected range [%v, %v]", e.FetchedAt, before, after)
	}
	if e.Key != "player_1" {
		t.Errorf("Key: got %q", e.Key)
	}
}

func TestPutOverwrites(t *testing.T) {
	s := testDB(t)
	mustPut(t, s, "wl_1", `{"win":1,"lose":0}`, time.Minute)
	mustPut(t, s, "wl_1", `{"win":2,"lose":0}`, time.Minute)

	body, _ := s.Get("wl_1", time.Now())
	if string(body) != `{"win":2,"lose":0}` {
		t.Errorf("overwrite: got %s", body)
	}
}

func TestPutRejectsBadInput(t *testing.T) {
	s := testDB(t)
	if err := s.Put("k", []byte(`{}`), 0); err == nil {
		t.Error("expected error for zero ttl")
	}
	if err := s.Put("k", []byte(`not json`), time.Minute); err == nil {
		t.Error("expected error for invalid JSON body")
	}
}

func TestDelete(t *testing.T) {
	s := testDB(t)
	mustPut(t, s, "match_1", `{}`, time.Minute)
	if err := s.Delete("match_1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("match_1", time.Now()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete("match_1"); err != nil {
		t.Errorf("deleting a missing key should succeed: %v", err)
	}
}

// ─── Keys ─────────────────────────────────────────────────────────────────────

func TestKeysByPrefix(t *testing.T) {
	s := testDB(t)
	for _, k := range []string{"match_1", "match_2", "matches_7_100", "player_7"} {
		mustPut(t, s, k, `{}`, time.Minute)
	}

	all, err := s.Keys("")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("all keys: expected 4, got %v", all)
	}

	matches, _ := s.Keys("match_")
	if len(matches) != 2 || matches[0] != "match_1" || matches[1] != "match_2" {
		t.Errorf("match_ prefix: got %v", matches)
	}

	none, _ := s.Keys("totals_")
	if len(none) != 0 {
		t.Errorf("totals_ prefix: expected none, got %v", none)
	}
}

// ─── Stats & Maintenance ──────────────────────────────────────────────────────

func TestStatsAndClearExpired(t *testing.T) {
	s := testDB(t)
	mustPut(t, s, "matches_1_20", `[]`, 5*time.Minute)
	mustPut(t, s, "match_1", `{}`, 24*time.Hour)
	mustPut(t, s, "heroStats", `[]`, 7*24*time.Hour)

	later := time.Now().Add(time.Hour)
	st, err := s.Stats(later)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Entries != 3 || st.Expired != 1 {
		t.Errorf("Stats: expected 3 entries / 1 expired, got %+v", st)
	}
	if st.Bytes <= 0 {
		t.Errorf("Bytes should be positive, got %d", st.Bytes)
	}

	n, err := s.ClearExpired(later)
	if err != nil {
		t.Fatalf("ClearExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("ClearExpired: expected 1 removed, got %d", n)
	}
	keys, _ := s.Keys("")
	if len(keys) != 2 {
		t.Errorf("after prune: expected 2 keys, got %v", keys)
	}
}

func TestClearExpiredRemovesCorruptEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	mustPut(t, s, "good", `{}`, time.Hour)
	s.Close()

	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		t.Fatalf("bolt.Open: %v", err)
	}
	_ = db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte("responses")).Put([]byte("bad"), []byte("{broken"))
	})
	db.Close()

	s, err = store.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	if _, err := s.Get("bad", time.Now()); err == nil || errors.Is(err, store.ErrNotFound) {
		t.Errorf("corrupt entry should surface a decode error, got %v", err)
	}
	n, _ := s.ClearExpired(time.Now())
	if n != 1 {
		t.Errorf("expected the corrupt entry to be pruned, removed %d", n)
	}
}

func TestClearAll(t *testing.T) {
	s := testDB(t)
	mustPut(t, s, "a", `1`, time.Minute)
	mustPut(t, s, "b", `2`, time.Minute)
	if err := s.ClearAll(); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	st, _ := s.Stats(time.Now())
	if st.Entries != 0 {
		t.Errorf("after ClearAll: expected 0 entries, got %d", st.Entries)
	}
	// Bucket is recreated and writable.
	mustPut(t, s, "c", `3`, time.Minute)
}
