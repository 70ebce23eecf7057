// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog resolves the category hierarchy and runs the book
// query pipeline (filter, paginate, folder view) over a snapshot that was
// already fetched from the data source. Nothing in this package performs
// I/O or returns an error; broken data degrades to partial results.
package catalog

import "libris/internal/models"

// DefaultMaxDepth bounds how many ancestor hops a walk may take. Cycles are
// caught separately by a visited set, so the bound only matters for
// pathological hierarchies.
const DefaultMaxDepth = 32

// Index is an id-indexed view of one category snapshot. It answers parent,
// children, and root lookups in constant time and is safe for concurrent
// reads once built.
type Index struct {
	byID     map[int64]*models.Category
	children map[int64][]*models.Category
	roots    []*models.Category
	order    []int64
	maxDepth int
}

// Option configures an Index.
type Option func(*Index)

// WithMaxDepth sets the maximum number of ancestor hops. Values below 1
// fall back to DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(ix *Index) {
		if n >= 1 {
			ix.maxDepth = n
		}
	}
}

// NewIndex builds an Index from a flat category list. Duplicate ids are
// last-write-wins; sibling order follows the input order.
func NewIndex(categories []models.Category, opts ...Option) *Index {
	ix := &Index{
		byID:     make(map[int64]*models.Category, len(categories)),
		children: make(map[int64][]*models.Category),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(ix)
	}

	for i := range categories {
		c := categories[i]
		if _, seen := ix.byID[c.ID]; !seen {
			ix.order = append(ix.order, c.ID)
		}
		ix.byID[c.ID] = &c
	}

	for _, id := range ix.order {
		c := ix.byID[id]
		if c.ParentID == nil {
			ix.roots = append(ix.roots, c)
			continue
		}
		ix.children[*c.ParentID] = append(ix.children[*c.ParentID], c)
	}

	return ix
}

// Len returns the number of distinct categories in the index.
func (ix *Index) Len() int {
	return len(ix.order)
}

// MaxDepth returns the ancestor hop bound used by walks.
func (ix *Index) MaxDepth() int {
	return ix.maxDepth
}

// Get returns the category with the given id.
func (ix *Index) Get(id int64) (*models.Category, bool) {
	c, ok := ix.byID[id]
	return c, ok
}

// Name returns the display name of a category, or "" for unknown ids.
func (ix *Index) Name(id int64) string {
	if c, ok := ix.byID[id]; ok {
		return c.Name
	}
	return ""
}

// Parent returns the parent of the given category. It reports false for
// roots, unknown ids, and parents missing from the snapshot.
func (ix *Index) Parent(id int64) (*models.Category, bool) {
	c, ok := ix.byID[id]
	if !ok || c.ParentID == nil {
		return nil, false
	}
	p, ok := ix.byID[*c.ParentID]
	return p, ok
}

// Children returns the immediate child categories of id in snapshot order.
func (ix *Index) Children(id int64) []models.Category {
	return values(ix.children[id])
}

// Roots returns all root categories in snapshot order.
func (ix *Index) Roots() []models.Category {
	return values(ix.roots)
}

// All returns every category in snapshot order.
func (ix *Index) All() []models.Category {
	out := make([]models.Category, 0, len(ix.order))
	for _, id := range ix.order {
		out = append(out, *ix.byID[id])
	}
	return out
}

// IsDescendant reports whether candidate sits somewhere below ancestor.
// A category is considered its own descendant so that re-parenting a
// category under itself is rejected by the same check. Unlike Ancestry the
// walk ignores MaxDepth and stops only at a root, a broken reference or a
// cycle.
func (ix *Index) IsDescendant(candidate, ancestor int64) bool {
	current, ok := ix.byID[candidate]
	if !ok {
		return false
	}

	visited := make(map[int64]bool)
	for current.ID != ancestor {
		visited[current.ID] = true
		parent, ok := ix.Parent(current.ID)
		if !ok || visited[parent.ID] {
			return false
		}
		current = parent
	}
	return true
}

func values(ptrs []*models.Category) []models.Category {
	out := make([]models.Category, 0, len(ptrs))
	for _, c := range ptrs {
		out = append(out, *c)
	}
	return out
}
