// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go provides the shared database helper for the store
// integration tests. They skip when PostgreSQL is not reachable.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"testing"

	"libris/internal/database"
)

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// testDB connects to the POSTGRES_* database and applies migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		env("POSTGRES_USER", "libris"), env("POSTGRES_PASSWORD", "changeme"),
		env("POSTGRES_HOST", "localhost"), env("POSTGRES_PORT", "5432"),
		env("POSTGRES_DB", "libris"))

	db, err := database.Connect(dsn)
	if err != nil {
		t.Skipf("skipping integration test: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// cleanCategories deletes the books filed under each id and then the
// category itself. Pass leaf ids before their parents.
func cleanCategories(t *testing.T, db *sql.DB, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		if _, err := db.Exec("DELETE FROM books WHERE category_id = $1", id); err != nil {
			t.Logf("clean books of %d: %v", id, err)
		}
		if _, err := db.Exec("DELETE FROM categories WHERE id = $1", id); err != nil {
			t.Logf("clean category %d: %v", id, err)
		}
	}
}
