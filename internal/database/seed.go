// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"libris/internal/source"
)

// Seed populates an empty catalog with the demo categories and books.
// It does nothing when any category already exists.
func Seed(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	categories := source.DemoCategories()
	for _, c := range categories {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO categories (id, name, parent_id, created_at)
			VALUES ($1, $2, $3, $4)
		`, c.ID, c.Name, c.ParentID, c.CreatedAt); err != nil {
			return fmt.Errorf("seed insert category %q: %w", c.Name, err)
		}
	}

	books := source.DemoBooks()
	for _, b := range books {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO books (id, title, mega_link, cover_image, category_id, tags, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, b.ID, b.Title, b.MegaLink, b.CoverImage, b.CategoryID, b.Tags, b.CreatedAt); err != nil {
			return fmt.Errorf("seed insert book %q: %w", b.Title, err)
		}
	}

	// Explicit ids leave the sequences behind; move them past the seed.
	for _, table := range []string{"categories", "books"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT MAX(id) FROM %s))`, table, table,
		)); err != nil {
			return fmt.Errorf("seed reset %s sequence: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with demo catalog",
		"categories", len(categories),
		"books", len(books),
		"novels_category_id", source.DemoNovelsID,
	)
	return nil
}
