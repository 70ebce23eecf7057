// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"libris/internal/models"
	"libris/internal/source"
)

// BookStore manages books in the database.
type BookStore struct {
	db *sql.DB
}

// NewBookStore returns a new BookStore.
func NewBookStore(db *sql.DB) *BookStore {
	return &BookStore{db: db}
}

const bookColumns = `b.id, b.title, b.mega_link, b.cover_image, b.category_id, b.tags, b.created_at`

// scanBook scans a book row. When withName is set the row carries the
// joined category name as an extra trailing column.
func scanBook(row scanner, tm *pgtype.Map, withName bool) (*models.Book, error) {
	var b models.Book
	dest := []any{
		&b.ID, &b.Title, &b.MegaLink, &b.CoverImage, &b.CategoryID,
		tm.SQLScanner(&b.Tags), &b.CreatedAt,
	}
	var name sql.NullString
	if withName {
		dest = append(dest, &name)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
	b.CategoryName = name.String
	return &b, nil
}

// ListBooks returns the books matching q.
func (s *BookStore) ListBooks(ctx context.Context, q source.BookQuery) ([]models.Book, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT ` + bookColumns)
	if q.WithCategoryName {
		sb.WriteString(`, c.name FROM books b LEFT JOIN categories c ON c.id = b.category_id`)
	} else {
		sb.WriteString(` FROM books b`)
	}

	switch {
	case q.CategoryID != nil:
		args = append(args, *q.CategoryID)
		sb.WriteString(` WHERE b.category_id = $1`)
	case q.ExcludeCategoryID != nil:
		args = append(args, *q.ExcludeCategoryID)
		sb.WriteString(` WHERE b.category_id <> $1`)
	}

	if q.Order == source.OrderTitle {
		sb.WriteString(` ORDER BY b.title, b.id`)
	} else {
		sb.WriteString(` ORDER BY b.created_at DESC, b.id DESC`)
	}

	if q.Limit > 0 {
		args = append(args, q.Limit)
		sb.WriteString(` LIMIT $` + strconv.Itoa(len(args)))
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	tm := pgtype.NewMap()
	var items []models.Book
	for rows.Next() {
		b, err := scanBook(rows, tm, q.WithCategoryName)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		items = append(items, *b)
	}
	return items, rows.Err()
}

// FindBook retrieves a book with its category name. Returns nil if not found.
func (s *BookStore) FindBook(ctx context.Context, id int64) (*models.Book, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+bookColumns+`, c.name
		FROM books b LEFT JOIN categories c ON c.id = b.category_id
		WHERE b.id = $1
	`, id)
	b, err := scanBook(row, pgtype.NewMap(), true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find book by id: %w", err)
	}
	return b, nil
}

// CreateBook inserts a new book and returns it.
func (s *BookStore) CreateBook(ctx context.Context, b *models.Book) (*models.Book, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO books AS b (title, mega_link, cover_image, category_id, tags)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+bookColumns,
		b.Title, b.MegaLink, b.CoverImage, b.CategoryID, tagsArg(b.Tags),
	)
	created, err := scanBook(row, pgtype.NewMap(), false)
	if isForeignKeyViolation(err) {
		return nil, fmt.Errorf("create book: category %d: %w", b.CategoryID, source.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	return created, nil
}

// UpdateBook replaces the editable fields of a book.
func (s *BookStore) UpdateBook(ctx context.Context, b *models.Book) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE books SET
			title = $1, mega_link = $2, cover_image = $3,
			category_id = $4, tags = $5
		WHERE id = $6
	`, b.Title, b.MegaLink, b.CoverImage, b.CategoryID, tagsArg(b.Tags), b.ID)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("update book: category %d: %w", b.CategoryID, source.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	return affectedOne(res, "update book", b.ID)
}

// DeleteBook removes a book by ID.
func (s *BookStore) DeleteBook(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return affectedOne(res, "delete book", id)
}

// tagsArg never lets a nil slice reach the NOT NULL tags column.
func tagsArg(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
