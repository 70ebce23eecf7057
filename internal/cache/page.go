// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go provides the full-page HTML cache for public catalog pages.
// Only unparameterised views (no search query, first page) are cached,
// and any admin mutation clears the whole cache since a single category
// or book change can alter every listing.
package cache

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached pages.
	pageKeyPrefix = "page:"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// Cache keys for the public pages.
const (
	HomeKey   = "home"
	BooksKey  = "books"
	NovelsKey = "novels"
)

// CategoryKey returns the cache key for a category folder page.
func CategoryKey(id int64) string {
	return "category:" + strconv.FormatInt(id, 10)
}

// Pages is a rendered-page cache. Implementations log their own failures;
// a failing cache behaves like an empty one.
type Pages interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, html []byte)
	InvalidateAll(ctx context.Context)
}

// PageCache manages full-page HTML caching in Valkey.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Pages = (*PageCache)(nil)

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Get retrieves cached HTML for a page key.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("page cache hit", "key", key)
	return val, true
}

// Set stores rendered HTML for a page key with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, key string, html []byte) {
	if err := pc.client.Set(ctx, pageKeyPrefix+key, html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes all cached pages by scanning for the prefix.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, pageKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("page cache fully cleared", "deleted", deleted)
	}
}

// MemoryPages is an in-process Pages used when Valkey is not configured
// and in tests.
type MemoryPages struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	html    []byte
	expires time.Time
}

var _ Pages = (*MemoryPages)(nil)

// NewMemoryPages returns an empty in-process page cache.
func NewMemoryPages(ttl time.Duration) *MemoryPages {
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}
	return &MemoryPages{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the cached page unless it has expired.
func (m *MemoryPages) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().After(e.expires) {
		delete(m.entries, key)
		return nil, false
	}
	return e.html, true
}

// Set stores a page.
func (m *MemoryPages) Set(_ context.Context, key string, html []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{
		html:    append([]byte(nil), html...),
		expires: m.now().Add(m.ttl),
	}
}

// InvalidateAll drops every cached page.
func (m *MemoryPages) InvalidateAll(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.entries)
}

// Len returns the number of cached pages, expired ones included.
func (m *MemoryPages) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
