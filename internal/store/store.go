// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides PostgreSQL access for the catalog. Each store
// wraps a *sql.DB opened with the pgx driver; Catalog combines them into a
// source.Source.
package store

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"libris/internal/source"
)

// Catalog is the PostgreSQL-backed source.Source.
type Catalog struct {
	*CategoryStore
	*BookStore
}

var _ source.Source = (*Catalog)(nil)

// NewCatalog returns a Catalog over db.
func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{
		CategoryStore: NewCategoryStore(db),
		BookStore:     NewBookStore(db),
	}
}

// isForeignKeyViolation reports whether err is a Postgres FK violation.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
