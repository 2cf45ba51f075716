// Package cache implements a minimal disk-backed cache with read-time TTL.
// Each key maps to one JSON file named by the key's SHA-256 digest, holding
// the write timestamp and the serialized payload. Caching is best-effort:
// read failures degrade to a miss and write failures are logged and
// swallowed, so the cache can never break the pipeline.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// entry is the on-disk layout of one cache file.
type entry struct {
	Timestamp time.Time       `json:"timestamp"`
	Content   json.RawMessage `json:"content"`
}

// Cache stores values as one file per key under a single directory.
// Entries are never deleted on expiry; Get simply ignores anything older
// than the caller's max age. The directory grows until Prune is run.
type Cache struct {
	dir string

	// now is swappable in tests.
	now func() time.Time
}

// New creates the cache directory if needed and returns a Cache over it.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{dir: dir, now: time.Now}, nil
}

// Get returns the raw payload stored under key if it was written less than
// maxAge ago. Any failure to read or decode the backing file is treated as
// a miss; it is never surfaced to the caller.
func (c *Cache) Get(key string, maxAge time.Duration) (json.RawMessage, bool) {
	path := c.path(key)

	data, err := os.ReadFile(path) // #nosec G304 -- path is derived from a hex digest under c.dir
	if err != nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		slog.Warn("cache read error, treating as miss",
			slog.String("key", key),
			slog.Any("error", err))
		return nil, false
	}

	if c.now().Sub(e.Timestamp) >= maxAge {
		return nil, false
	}

	slog.Debug("cache hit", slog.String("key", key))
	return e.Content, true
}

// GetJSON is Get plus unmarshalling of the payload into out.
// A payload that no longer decodes counts as a miss.
func (c *Cache) GetJSON(key string, maxAge time.Duration, out any) bool {
	raw, ok := c.Get(key, maxAge)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		slog.Warn("cache payload decode error, treating as miss",
			slog.String("key", key),
			slog.Any("error", err))
		return false
	}
	return true
}

// Set unconditionally overwrites the entry for key with the current
// timestamp. Failures are logged and swallowed: caching is never a blocking
// requirement for correctness.
func (c *Cache) Set(key string, value any) {
	content, err := json.Marshal(value)
	if err != nil {
		slog.Warn("cache write error",
			slog.String("key", key),
			slog.Any("error", err))
		return
	}

	data, err := json.MarshalIndent(entry{Timestamp: c.now(), Content: content}, "", "  ")
	if err != nil {
		slog.Warn("cache write error",
			slog.String("key", key),
			slog.Any("error", err))
		return
	}

	if err := os.WriteFile(c.path(key), data, 0o600); err != nil {
		slog.Warn("cache write error",
			slog.String("key", key),
			slog.Any("error", err))
	}
}

// Prune physically removes cache files whose entries are older than maxAge.
// This is the external maintenance hook for the otherwise unbounded store;
// the read path never depends on it.
func (c *Cache) Prune(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, fmt.Errorf("read cache dir: %w", err)
	}

	cutoff := c.now().Add(-maxAge)
	removed := 0

	for _, de := range entries {
		if de.IsDir() || filepath.Ext(de.Name()) != ".json" {
			continue
		}
		path := filepath.Join(c.dir, de.Name())

		data, err := os.ReadFile(path) // #nosec G304 -- enumerated from c.dir
		if err != nil {
			continue
		}
		var e entry
		// Undecodable files are stale garbage; prune them too.
		if err := json.Unmarshal(data, &e); err == nil && !e.Timestamp.Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			slog.Warn("cache prune error",
				slog.String("file", de.Name()),
				slog.Any("error", err))
			continue
		}
		removed++
	}

	if removed > 0 {
		slog.Info("cache pruned", slog.Int("removed", removed))
	}
	return removed, nil
}

// path maps a human-readable key to its backing file. The digest keeps
// filenames fixed-length and filesystem-safe regardless of key content.
func (c *Cache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}
