// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package source defines the data-source boundary of the catalog: the
// three read shapes the public pages need, the admin mutations, and a
// snapshot loader that fetches categories and books concurrently.
// Implementations live in internal/store (PostgreSQL), internal/source/rest
// (hosted PostgREST backend) and this package (in-memory).
package source

import (
	"context"
	"errors"

	"libris/internal/models"
)

var (
	// ErrNotFound is returned by mutations that target a missing row.
	ErrNotFound = errors.New("not found")
	// ErrInUse is returned when deleting a category that still has child
	// categories or books filed under it.
	ErrInUse = errors.New("category in use")
)

// Order selects the sort order of a book listing.
type Order int

const (
	// OrderNewest sorts by creation time, newest first.
	OrderNewest Order = iota
	// OrderTitle sorts alphabetically by title.
	OrderTitle
)

// BookQuery narrows a book listing. The zero value lists every book,
// newest first, without category names.
type BookQuery struct {
	CategoryID        *int64 // only books filed in this category
	ExcludeCategoryID *int64 // skip books filed in this category
	WithCategoryName  bool   // populate Book.CategoryName
	Order             Order
	Limit             int // 0 means unlimited
}

// Reader is the read side used by the public pages.
type Reader interface {
	// ListCategories returns every category ordered by name.
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListBooks(ctx context.Context, q BookQuery) ([]models.Book, error)
	// FindCategory returns the category or nil when it does not exist.
	FindCategory(ctx context.Context, id int64) (*models.Category, error)
}

// BookFinder looks up a single book. The download redirect and the admin
// edit form use it.
type BookFinder interface {
	// FindBook returns the book or nil when it does not exist.
	FindBook(ctx context.Context, id int64) (*models.Book, error)
}

// Writer carries the admin mutations.
type Writer interface {
	BookFinder

	CreateCategory(ctx context.Context, c *models.Category) (*models.Category, error)
	UpdateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id int64) error

	CreateBook(ctx context.Context, b *models.Book) (*models.Book, error)
	UpdateBook(ctx context.Context, b *models.Book) error
	DeleteBook(ctx context.Context, id int64) error
}

// Source is a complete backend.
type Source interface {
	Reader
	Writer
}
