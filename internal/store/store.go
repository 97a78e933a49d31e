// Package store provides a thin bbolt wrapper used as ezdota's local
// response cache.
//
// Every OpenDota response is stored as a JSON envelope carrying its own
// expiry, so match lists, match details and the hero catalog can live for
// different lengths of time. Expired entries read as misses and are
// removed by ClearExpired.
//
// Buckets:
//
//	responses  cached API bodies keyed by request (player_<id>, match_<id>, ...)
//	_meta      internal: schema version, created_at
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Current schema version. Bump when bucket layout or key format changes.
const schemaVersion = 1

var (
	bucketResponses = []byte("responses")
	bucketInternal  = []byte("_meta")
)

// ErrNotFound is returned by Get for missing or expired keys.
var ErrNotFound = errors.New("store: not found")

// Store wraps a bbolt database.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the bbolt database at path.
// Parent directories are created automatically.
// Runs schema migrations on every open.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening db %s: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the filesystem path of the open database.
func (s *Store) Path() string {
	return s.db.Path()
}

// ─── Migrations ───────────────────────────────────────────────────────────────

// migrate ensures all buckets exist and the schema version is recorded.
func (s *Store) migrate() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketResponses, bucketInternal} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}

		meta := tx.Bucket(bucketInternal)
		if meta.Get([]byte("schema_version")) == nil {
			if err := meta.Put([]byte("schema_version"), []byte(strconv.Itoa(schemaVersion))); err != nil {
				return err
			}
			if err := meta.Put([]byte("created_at"), []byte(time.Now().UTC().Format(time.RFC3339))); err != nil {
				return err
			}
		}
		return nil
	})
}

// ─── Responses ────────────────────────────────────────────────────────────────

// Entry is the on-disk envelope for one cached response.
type Entry struct {
	Key       string          `json:"key"`
	FetchedAt time.Time       `json:"fetched_at"`
	ExpiresAt time.Time       `json:"expires_at"`
	Body      json.RawMessage `json:"body"`
}

// Expired reports whether the entry is stale at now.
func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Put stores body under key for ttl. body must be valid JSON.
func (s *Store) Put(key string, body []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("store: ttl must be positive, got %s", ttl)
	}
	if !json.Valid(body) {
		return fmt.Errorf("store: body for %s is not valid JSON", key)
	}
	now := time.Now().UTC()
	b, err := json.Marshal(Entry{
		Key:       key,
		FetchedAt: now,
		ExpiresAt: now.Add(ttl),
		Body:      body,
	})
	if err != nil {
		return fmt.Errorf("encoding entry %s: %w", key, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketResponses).Put([]byte(key), b)
	})
}

// Get returns the body stored under key, or ErrNotFound when the key is
// missing or expired at now.
func (s *Store) Get(key string, now time.Time) ([]byte, error) {
	e, err := s.Entry(key)
	if err != nil {
		return nil, err
	}
	if e.Expired(now) {
		return nil, ErrNotFound
	}
	return e.Body, nil
}

// Entry returns the full envelope for key, expired or not.
func (s *Store) Entry(key string) (Entry, error) {
	var e Entry
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketResponses).Get([]byte(key))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &e)
	})
	if err != nil {
		return Entry{}, fmt.Errorf("decoding entry %s: %w", key, err)
	}
	if !found {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketResponses).Delete([]byte(key))
	})
}

// Keys returns every key starting with prefix, in byte order.
// Pass prefix="" to list all keys.
func (s *Store) Keys(prefix string) ([]string, error) {
	p := []byte(prefix)
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketResponses).Cursor()
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	return keys, err
}

// ─── Stats & Maintenance ──────────────────────────────────────────────────────

// Stats summarizes the response bucket.
type Stats struct {
	Entries       int       `json:"entries"`
	Expired       int       `json:"expired"`
	Bytes         int64     `json:"bytes"`
	SchemaVersion int       `json:"schema_version"`
	CreatedAt     time.Time `json:"created_at"`
}

// Stats counts entries, how many are expired at now, and their total size.
func (s *Store) Stats(now time.Time) (Stats, error) {
	var st Stats
	err := s.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(bucketInternal)
		st.SchemaVersion, _ = strconv.Atoi(string(meta.Get([]byte("schema_version"))))
		st.CreatedAt, _ = time.Parse(time.RFC3339, string(meta.Get([]byte("created_at"))))

		return tx.Bucket(bucketResponses).ForEach(func(k, v []byte) error {
			st.Entries++
			st.Bytes += int64(len(k) + len(v))
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil || e.Expired(now) {
				st.Expired++
			}
			return nil
		})
	})
	return st, err
}

// ClearExpired deletes entries that are stale at now, including entries
// that no longer decode, and returns how many were removed.
func (s *Store) ClearExpired(now time.Time) (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketResponses)
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil || e.Expired(now) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

// ClearAll deletes every cached response.
func (s *Store) ClearAll() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketResponses); err != nil {
			return fmt.Errorf("clearing bucket %s: %w", bucketResponses, err)
		}
		_, err := tx.CreateBucket(bucketResponses)
		return err
	})
}
