// Package storage provides the disk-backed cache and the recommendation
// history store.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hazemk/borsa/internal/common"
)

// cacheEnvelope wraps a cached payload with its write timestamp. The
// timestamp is an implementation detail of freshness decisions and is
// never exposed to callers.
type cacheEnvelope struct {
	WrittenAtMillis int64           `json:"written_at_ms"`
	Payload         json.RawMessage `json:"payload"`
}

// DiskCache is a JSON-file-per-key cache with a freshness window.
// Read and write failures degrade to cache-miss / no-op: cache
// availability is an optimization, never correctness-critical, so errors
// here are logged and swallowed.
type DiskCache struct {
	basePath string
	ttl      time.Duration
	logger   *common.Logger
	now      func() time.Time // injectable clock for testing
}

// NewDiskCache creates a DiskCache rooted at basePath. The directory is
// created lazily on first write, so construction never fails.
func NewDiskCache(logger *common.Logger, basePath string, ttl time.Duration) *DiskCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DiskCache{
		basePath: basePath,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// sanitizeKey makes a key safe for use as a filename.
// Replaces /, \, : with _ and collapses ".." to "_" to prevent path
// traversal. Single dots are preserved (common in symbols like COMI.EGX).
func sanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key)
}

func (c *DiskCache) filePath(key string) string {
	return filepath.Join(c.basePath, sanitizeKey(key)+".json")
}

// read loads an envelope from disk. Any failure is a miss.
func (c *DiskCache) read(key string) (*cacheEnvelope, bool) {
	data, err := os.ReadFile(c.filePath(key))
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return nil, false
	}

	var env cacheEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache entry malformed")
		return nil, false
	}
	return &env, true
}

// Get unmarshals the cached payload into dest if the entry exists and is
// within the freshness window. Expired entries are not deleted, just not
// surfaced — GetStale can still read them.
func (c *DiskCache) Get(key string, dest interface{}) bool {
	env, ok := c.read(key)
	if !ok {
		return false
	}

	writtenAt := time.UnixMilli(env.WrittenAtMillis)
	if c.now().Sub(writtenAt) >= c.ttl {
		return false
	}

	if err := json.Unmarshal(env.Payload, dest); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache payload unmarshal failed")
		return false
	}
	return true
}

// GetStale unmarshals the cached payload regardless of age. Used only as
// a last-resort fallback when live providers and the fresh cache fail.
func (c *DiskCache) GetStale(key string, dest interface{}) bool {
	env, ok := c.read(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(env.Payload, dest); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache payload unmarshal failed")
		return false
	}
	return true
}

// Set overwrites the entry wholesale and resets its write timestamp.
// Write failures are logged and swallowed.
func (c *DiskCache) Set(key string, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache marshal failed")
		return
	}

	env := cacheEnvelope{
		WrittenAtMillis: c.now().UnixMilli(),
		Payload:         payload,
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache envelope marshal failed")
		return
	}
	data = append(data, '\n')

	if err := os.MkdirAll(c.basePath, 0755); err != nil {
		c.logger.Warn().Err(err).Str("path", c.basePath).Msg("Cache directory create failed")
		return
	}

	// Atomic write: temp file in the same directory, then rename.
	tmpFile, err := os.CreateTemp(c.basePath, ".tmp-*")
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache temp file create failed")
		return
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
		return
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache temp file close failed")
		return
	}
	if err := os.Rename(tmpPath, c.filePath(key)); err != nil {
		os.Remove(tmpPath)
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache rename failed")
		return
	}
}

// Delete removes a single entry. Missing entries are not an error.
func (c *DiskCache) Delete(key string) {
	os.Remove(c.filePath(key))
}

// Clear removes all entries unconditionally. Best effort: per-entry
// errors are logged, not propagated.
func (c *DiskCache) Clear() int {
	entries, err := os.ReadDir(c.basePath)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn().Err(err).Str("path", c.basePath).Msg("Cache clear failed to list entries")
		}
		return 0
	}

	count := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(c.basePath, e.Name())); err != nil {
			c.logger.Warn().Err(err).Str("entry", e.Name()).Msg("Cache clear failed to remove entry")
			continue
		}
		count++
	}
	return count
}

// Key composes a cache key from a semantic prefix and its parts,
// guaranteeing no collision between data kinds for the same symbol.
// Example: Key("historical", "COMI", "282") -> "historical:COMI:282".
func Key(prefix string, parts ...string) string {
	return fmt.Sprintf("%s:%s", prefix, strings.Join(parts, ":"))
}
