// Package cache remembers reduced document results in Redis so unchanged
// files are not tokenized again. Entries are keyed by path, size and the
// modification time observed at planning. Fragment size is not part of the
// key because results do not depend on it.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/analyzer/document"
	pkgredis "github.com/Adithya-Monish-Kumar-K/docrank/pkg/redis"
)

const keyPrefix = "rank:"

// Backend is the subset of the Redis client the cache needs.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type entry struct {
	Histogram document.Histogram `json:"histogram"`
	MaxWords  []string           `json:"max_words"`
	Rank      float64            `json:"rank"`
}

type ResultCache struct {
	backend Backend
	ttl     time.Duration
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

func New(backend Backend, ttl time.Duration) *ResultCache {
	return &ResultCache{
		backend: backend,
		ttl:     ttl,
		logger:  slog.Default().With("component", "result-cache"),
	}
}

// Lookup restores doc's merged results on a hit. Any backend or decoding
// error counts as a miss, as does a file that changed since it was planned.
func (c *ResultCache) Lookup(ctx context.Context, doc *document.Document) bool {
	key, err := Key(doc)
	if err != nil || !unchanged(doc) {
		c.misses.Add(1)
		return false
	}
	data, err := c.backend.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return false
	}
	if e.Histogram == nil {
		e.Histogram = document.Histogram{}
	}
	doc.Histogram = e.Histogram
	doc.MaxWords = e.MaxWords
	doc.Rank = e.Rank
	doc.Cached = true
	c.hits.Add(1)
	c.logger.Debug("cache hit", "document", doc.Name(), "key", key)
	return true
}

// Store saves doc's merged results under the key of the file version that
// was planned. If the file has changed since, the results may mix both
// versions and nothing is stored.
func (c *ResultCache) Store(ctx context.Context, doc *document.Document) {
	key, err := Key(doc)
	if err != nil {
		c.logger.Warn("cache key unavailable", "document", doc.Path, "error", err)
		return
	}
	if !unchanged(doc) {
		c.logger.Warn("document changed during run, not caching", "document", doc.Path)
		return
	}
	data, err := json.Marshal(entry{Histogram: doc.Histogram, MaxWords: doc.MaxWords, Rank: doc.Rank})
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.backend.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

func (c *ResultCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Key derives the cache key from the size and modification time recorded
// when doc was planned.
func Key(doc *document.Document) (string, error) {
	if doc.ModTime.IsZero() {
		return "", errors.New("modification time not recorded")
	}
	return buildKey(doc.Path, doc.Size, doc.ModTime), nil
}

// unchanged reports whether the file still has its planned size and
// modification time.
func unchanged(doc *document.Document) bool {
	info, err := os.Stat(doc.Path)
	if err != nil {
		return false
	}
	return info.Size() == doc.Size && info.ModTime().Equal(doc.ModTime)
}

func buildKey(path string, size int64, modTime time.Time) string {
	raw := fmt.Sprintf("%s|%d|%d", path, size, modTime.UnixNano())
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
