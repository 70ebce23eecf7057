// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package source

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"libris/internal/catalog"
	"libris/internal/models"
)

// Snapshot is one consistent read of the catalog: the category index and
// a book listing, fetched together. Degraded is set when either fetch
// failed and the snapshot stands in with empty data.
type Snapshot struct {
	Index    *catalog.Index
	Books    []models.Book
	Degraded bool
}

// Load fetches the category set and the book listing concurrently and
// indexes the categories. A failed fetch is logged and treated as empty;
// the page renders whatever half succeeded.
func Load(ctx context.Context, r Reader, q BookQuery, opts ...catalog.Option) *Snapshot {
	var (
		categories []models.Category
		books      []models.Book
		g          errgroup.Group
	)

	// Each half degrades on its own, so a failure must not cancel the other.
	g.Go(func() error {
		var err error
		if categories, err = r.ListCategories(ctx); err != nil {
			categories = nil
			return fmt.Errorf("list categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if books, err = r.ListBooks(ctx, q); err != nil {
			books = nil
			return fmt.Errorf("list books: %w", err)
		}
		return nil
	})

	err := g.Wait()
	if err != nil {
		slog.Error("load snapshot degraded", "error", err)
	}

	return &Snapshot{
		Index:    catalog.NewIndex(categories, opts...),
		Books:    books,
		Degraded: err != nil,
	}
}

// Categories fetches and indexes the category set alone.
func Categories(ctx context.Context, r Reader, opts ...catalog.Option) *catalog.Index {
	categories, err := r.ListCategories(ctx)
	if err != nil {
		slog.Error("load categories failed", "error", err)
	}
	return catalog.NewIndex(categories, opts...)
}

// Books fetches a book listing, logging and swallowing errors. ok is false
// when the fetch failed and the nil listing is a stand-in.
func Books(ctx context.Context, r Reader, q BookQuery) (books []models.Book, ok bool) {
	books, err := r.ListBooks(ctx, q)
	if err != nil {
		slog.Error("load books failed", "error", err)
		return nil, false
	}
	return books, true
}
