// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package rest

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"libris/internal/models"
	"libris/internal/source"
)

type categoryRow struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ParentID  *int64    `json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (r categoryRow) model() models.Category {
	return models.Category{ID: r.ID, Name: r.Name, ParentID: r.ParentID, CreatedAt: r.CreatedAt}
}

type bookRow struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	MegaLink   string    `json:"mega_link"`
	CoverImage *string   `json:"cover_image"`
	CategoryID int64     `json:"category_id"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`

	// Embedded resource, present when the select asks for categories(name).
	Categories *struct {
		Name string `json:"name"`
	} `json:"categories,omitempty"`
}

func (r bookRow) model() models.Book {
	b := models.Book{
		ID:         r.ID,
		Title:      r.Title,
		MegaLink:   r.MegaLink,
		CoverImage: r.CoverImage,
		CategoryID: r.CategoryID,
		Tags:       r.Tags,
		CreatedAt:  r.CreatedAt,
	}
	if b.Tags == nil {
		b.Tags = []string{}
	}
	if r.Categories != nil {
		b.CategoryName = r.Categories.Name
	}
	return b
}

const (
	categorySelect     = "id,name,parent_id,created_at"
	bookSelect         = "id,title,mega_link,cover_image,category_id,tags,created_at"
	bookWithNameSelect = bookSelect + ",categories(name)"
)

// ListCategories returns every category ordered by name.
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var rows []categoryRow
	if err := c.throttle(ctx, "list categories"); err != nil {
		return nil, err
	}
	resp, err := c.request(ctx).
		SetQueryParam("select", categorySelect).
		SetQueryParam("order", "name.asc").
		SetResult(&rows).
		Get("/categories")
	if err := check(resp, err, "list categories"); err != nil {
		return nil, err
	}

	out := make([]models.Category, len(rows))
	for i, r := range rows {
		out[i] = r.model()
	}
	return out, nil
}

// ListBooks returns the books matching q.
func (c *Client) ListBooks(ctx context.Context, q source.BookQuery) ([]models.Book, error) {
	sel := bookSelect
	if q.WithCategoryName {
		sel = bookWithNameSelect
	}
	order := "created_at.desc,id.desc"
	if q.Order == source.OrderTitle {
		order = "title.asc,id.asc"
	}

	if err := c.throttle(ctx, "list books"); err != nil {
		return nil, err
	}
	req := c.request(ctx).
		SetQueryParam("select", sel).
		SetQueryParam("order", order)
	switch {
	case q.CategoryID != nil:
		req.SetQueryParam("category_id", eq(*q.CategoryID))
	case q.ExcludeCategoryID != nil:
		req.SetQueryParam("category_id", fmt.Sprintf("neq.%d", *q.ExcludeCategoryID))
	}
	if q.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(q.Limit))
	}

	var rows []bookRow
	resp, err := req.SetResult(&rows).Get("/books")
	if err := check(resp, err, "list books"); err != nil {
		return nil, err
	}

	out := make([]models.Book, len(rows))
	for i, r := range rows {
		out[i] = r.model()
	}
	return out, nil
}

// FindCategory returns the category or nil.
func (c *Client) FindCategory(ctx context.Context, id int64) (*models.Category, error) {
	var rows []categoryRow
	if err := c.throttle(ctx, "find category"); err != nil {
		return nil, err
	}
	resp, err := c.request(ctx).
		SetQueryParam("select", categorySelect).
		SetQueryParam("id", eq(id)).
		SetResult(&rows).
		Get("/categories")
	if err := check(resp, err, "find category"); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	cat := rows[0].model()
	return &cat, nil
}

// FindBook returns the book, with its category name, or nil.
func (c *Client) FindBook(ctx context.Context, id int64) (*models.Book, error) {
	var rows []bookRow
	if err := c.throttle(ctx, "find book"); err != nil {
		return nil, err
	}
	resp, err := c.request(ctx).
		SetQueryParam("select", bookWithNameSelect).
		SetQueryParam("id", eq(id)).
		SetResult(&rows).
		Get("/books")
	if err := check(resp, err, "find book"); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	b := rows[0].model()
	return &b, nil
}
