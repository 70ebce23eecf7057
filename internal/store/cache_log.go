// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// CacheLogEntry is one page-cache purge caused by an admin mutation.
type CacheLogEntry struct {
	ID            int64
	EntityType    string // "category" or "book"
	EntityID      int64
	Action        string // "create", "update" or "delete"
	InvalidatedAt time.Time
}

const (
	insertCacheLog = `INSERT INTO cache_invalidation_log (entity_type, entity_id, action) VALUES ($1, $2, $3)`

	recentCacheLog = `
		SELECT id, entity_type, entity_id, action, invalidated_at
		FROM cache_invalidation_log
		ORDER BY invalidated_at DESC, id DESC
		LIMIT $1`
)

// CacheLogStore records page-cache purges so the dashboard can show what
// changed recently.
type CacheLogStore struct {
	db *sql.DB
}

// NewCacheLogStore creates a new CacheLogStore.
func NewCacheLogStore(db *sql.DB) *CacheLogStore {
	return &CacheLogStore{db: db}
}

// Log records a purge. A failed insert is logged and otherwise ignored;
// the purge itself has already happened.
func (s *CacheLogStore) Log(ctx context.Context, entityType string, entityID int64, action string) {
	attrs := []any{"entity_type", entityType, "entity_id", entityID, "action", action}
	if _, err := s.db.ExecContext(ctx, insertCacheLog, entityType, entityID, action); err != nil {
		slog.Warn("cache log insert failed", append(attrs, "error", err)...)
		return
	}
	slog.Debug("page cache purged", attrs...)
}

// RecentEntries returns up to limit purges, newest first.
func (s *CacheLogStore) RecentEntries(ctx context.Context, limit int) ([]CacheLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, recentCacheLog, limit)
	if err != nil {
		return nil, fmt.Errorf("query cache log: %w", err)
	}
	defer rows.Close()

	entries := make([]CacheLogEntry, 0, limit)
	for rows.Next() {
		var e CacheLogEntry
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.InvalidatedAt); err != nil {
			return nil, fmt.Errorf("scan cache log: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cache log: %w", err)
	}
	return entries, nil
}
