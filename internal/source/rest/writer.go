// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package rest

import (
	"context"
	"fmt"

	"libris/internal/models"
	"libris/internal/source"
)

const returnRepresentation = "return=representation"

type categoryInput struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
}

type bookInput struct {
	Title      string   `json:"title"`
	MegaLink   string   `json:"mega_link"`
	CoverImage *string  `json:"cover_image"`
	CategoryID int64    `json:"category_id"`
	Tags       []string `json:"tags"`
}

func newBookInput(b *models.Book) bookInput {
	tags := b.Tags
	if tags == nil {
		tags = []string{}
	}
	return bookInput{
		Title:      b.Title,
		MegaLink:   b.MegaLink,
		CoverImage: b.CoverImage,
		CategoryID: b.CategoryID,
		Tags:       tags,
	}
}

// CreateCategory inserts a category and returns the stored row.
func (c *Client) CreateCategory(ctx context.Context, cat *models.Category) (*models.Category, error) {
	var rows []categoryRow
	if err := c.throttle(ctx, "create category"); err != nil {
		return nil, err
	}
	resp, err := c.request(ctx).
		SetHeader("Prefer", returnRepresentation).
		SetQueryParam("select", categorySelect).
		SetBody(categoryInput{Name: cat.Name, ParentID: cat.ParentID}).
		SetResult(&rows).
		Post("/categories")
	if err := check(resp, err, "create category"); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create category: empty response")
	}
	created := rows[0].model()
	return &created, nil
}

// UpdateCategory renames or re-parents a category.
func (c *Client) UpdateCategory(ctx context.Context, cat *models.Category) error {
	var rows []categoryRow
	if err := c.throttle(ctx, "update category"); err != nil {
		return err
	}
	resp, err := c.request(ctx).
		SetHeader("Prefer", returnRepresentation).
		SetQueryParam("id", eq(cat.ID)).
		SetQueryParam("select", "id").
		SetBody(categoryInput{Name: cat.Name, ParentID: cat.ParentID}).
		SetResult(&rows).
		Patch("/categories")
	if err := check(resp, err, "update category"); err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("update category %d: %w", cat.ID, source.ErrNotFound)
	}
	return nil
}

// DeleteCategory removes a category. The backend refuses while books or
// child categories reference it.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.delete(ctx, "/categories", id, "delete category")
}

// CreateBook inserts a book and returns the stored row.
func (c *Client) CreateBook(ctx context.Context, b *models.Book) (*models.Book, error) {
	var rows []bookRow
	if err := c.throttle(ctx, "create book"); err != nil {
		return nil, err
	}
	resp, err := c.request(ctx).
		SetHeader("Prefer", returnRepresentation).
		SetQueryParam("select", bookWithNameSelect).
		SetBody(newBookInput(b)).
		SetResult(&rows).
		Post("/books")
	if err := check(resp, err, "create book"); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("create book: empty response")
	}
	created := rows[0].model()
	return &created, nil
}

// UpdateBook replaces the editable fields of a book.
func (c *Client) UpdateBook(ctx context.Context, b *models.Book) error {
	var rows []bookRow
	if err := c.throttle(ctx, "update book"); err != nil {
		return err
	}
	resp, err := c.request(ctx).
		SetHeader("Prefer", returnRepresentation).
		SetQueryParam("id", eq(b.ID)).
		SetQueryParam("select", "id").
		SetBody(newBookInput(b)).
		SetResult(&rows).
		Patch("/books")
	if err := check(resp, err, "update book"); err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("update book %d: %w", b.ID, source.ErrNotFound)
	}
	return nil
}

// DeleteBook removes a book.
func (c *Client) DeleteBook(ctx context.Context, id int64) error {
	return c.delete(ctx, "/books", id, "delete book")
}

func (c *Client) delete(ctx context.Context, path string, id int64, op string) error {
	var rows []struct {
		ID int64 `json:"id"`
	}
	if err := c.throttle(ctx, op); err != nil {
		return err
	}
	resp, err := c.request(ctx).
		SetHeader("Prefer", returnRepresentation).
		SetQueryParam("id", eq(id)).
		SetQueryParam("select", "id").
		SetResult(&rows).
		Delete(path)
	if err := check(resp, err, op); err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s %d: %w", op, id, source.ErrNotFound)
	}
	return nil
}
