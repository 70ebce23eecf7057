// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package source

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"libris/internal/models"
)

var _ Source = (*Memory)(nil)

// Memory is an in-process Source. It is safe for concurrent use and is
// what the server runs on when no database is configured.
type Memory struct {
	mu         sync.RWMutex
	categories map[int64]models.Category
	books      map[int64]models.Book
	nextID     int64
	now        func() time.Time
}

// NewMemory returns an empty in-memory source.
func NewMemory() *Memory {
	return &Memory{
		categories: make(map[int64]models.Category),
		books:      make(map[int64]models.Book),
		nextID:     1,
		now:        time.Now,
	}
}

// NewMemoryWith returns an in-memory source preloaded with the given rows.
// Ids are kept as given; new rows are numbered after the highest one.
func NewMemoryWith(categories []models.Category, books []models.Book) *Memory {
	m := NewMemory()
	for _, c := range categories {
		m.categories[c.ID] = c
		m.bump(c.ID)
	}
	for _, b := range books {
		b.Tags = slices.Clone(b.Tags)
		m.books[b.ID] = b
		m.bump(b.ID)
	}
	return m
}

func (m *Memory) bump(id int64) {
	if id >= m.nextID {
		m.nextID = id + 1
	}
}

// ListCategories returns every category ordered by name.
func (m *Memory) ListCategories(_ context.Context) ([]models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}

	col := collate.New(language.Und)
	sort.Slice(out, func(i, j int) bool {
		if d := col.CompareString(out[i].Name, out[j].Name); d != 0 {
			return d < 0
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ListBooks returns the books matching q.
func (m *Memory) ListBooks(_ context.Context, q BookQuery) ([]models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Book, 0, len(m.books))
	for _, b := range m.books {
		if q.CategoryID != nil && b.CategoryID != *q.CategoryID {
			continue
		}
		if q.ExcludeCategoryID != nil && b.CategoryID == *q.ExcludeCategoryID {
			continue
		}
		b.Tags = slices.Clone(b.Tags)
		if q.WithCategoryName {
			b.CategoryName = m.categories[b.CategoryID].Name
		}
		out = append(out, b)
	}

	switch q.Order {
	case OrderTitle:
		col := collate.New(language.Und)
		sort.Slice(out, func(i, j int) bool {
			if d := col.CompareString(out[i].Title, out[j].Title); d != 0 {
				return d < 0
			}
			return out[i].ID < out[j].ID
		})
	default:
		sort.Slice(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].ID > out[j].ID
		})
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// FindCategory returns the category or nil.
func (m *Memory) FindCategory(_ context.Context, id int64) (*models.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// CreateCategory stores a new category and returns it with its id set.
func (m *Memory) CreateCategory(_ context.Context, c *models.Category) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.ParentID != nil {
		if _, ok := m.categories[*c.ParentID]; !ok {
			return nil, fmt.Errorf("create category: parent %d: %w", *c.ParentID, ErrNotFound)
		}
	}

	created := *c
	created.ID = m.nextID
	created.CreatedAt = m.now()
	m.nextID++
	m.categories[created.ID] = created
	return &created, nil
}

// UpdateCategory renames or re-parents a category.
func (m *Memory) UpdateCategory(_ context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.categories[c.ID]
	if !ok {
		return fmt.Errorf("update category %d: %w", c.ID, ErrNotFound)
	}
	if c.ParentID != nil {
		if _, ok := m.categories[*c.ParentID]; !ok {
			return fmt.Errorf("update category: parent %d: %w", *c.ParentID, ErrNotFound)
		}
	}
	existing.Name = c.Name
	existing.ParentID = c.ParentID
	m.categories[c.ID] = existing
	return nil
}

// DeleteCategory removes an empty category.
func (m *Memory) DeleteCategory(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[id]; !ok {
		return fmt.Errorf("delete category %d: %w", id, ErrNotFound)
	}
	for _, c := range m.categories {
		if c.HasParent(id) {
			return fmt.Errorf("delete category %d: %w", id, ErrInUse)
		}
	}
	for _, b := range m.books {
		if b.CategoryID == id {
			return fmt.Errorf("delete category %d: %w", id, ErrInUse)
		}
	}
	delete(m.categories, id)
	return nil
}

// FindBook returns the book or nil.
func (m *Memory) FindBook(_ context.Context, id int64) (*models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.books[id]
	if !ok {
		return nil, nil
	}
	b.Tags = slices.Clone(b.Tags)
	b.CategoryName = m.categories[b.CategoryID].Name
	return &b, nil
}

// CreateBook stores a new book and returns it with its id set.
func (m *Memory) CreateBook(_ context.Context, b *models.Book) (*models.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[b.CategoryID]; !ok {
		return nil, fmt.Errorf("create book: category %d: %w", b.CategoryID, ErrNotFound)
	}

	created := *b
	created.ID = m.nextID
	created.CreatedAt = m.now()
	created.Tags = slices.Clone(b.Tags)
	created.CategoryName = ""
	m.nextID++
	m.books[created.ID] = created

	created.CategoryName = m.categories[created.CategoryID].Name
	return &created, nil
}

// UpdateBook replaces the editable fields of a book.
func (m *Memory) UpdateBook(_ context.Context, b *models.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.books[b.ID]
	if !ok {
		return fmt.Errorf("update book %d: %w", b.ID, ErrNotFound)
	}
	if _, ok := m.categories[b.CategoryID]; !ok {
		return fmt.Errorf("update book: category %d: %w", b.CategoryID, ErrNotFound)
	}
	existing.Title = b.Title
	existing.MegaLink = b.MegaLink
	existing.CoverImage = b.CoverImage
	existing.CategoryID = b.CategoryID
	existing.Tags = slices.Clone(b.Tags)
	m.books[b.ID] = existing
	return nil
}

// DeleteBook removes a book.
func (m *Memory) DeleteBook(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.books[id]; !ok {
		return fmt.Errorf("delete book %d: %w", id, ErrNotFound)
	}
	delete(m.books, id)
	return nil
}
