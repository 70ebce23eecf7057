// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"strings"

	"libris/internal/models"
)

// HomeLabel is the name of the synthetic root breadcrumb.
const HomeLabel = "Home"

// PathSeparator joins ancestor names in a category path label.
const PathSeparator = " > "

// BreadcrumbItem is one step of a navigation trail. ID is nil for Home.
type BreadcrumbItem struct {
	Name string
	ID   *int64
}

// IsHome reports whether the item is the synthetic Home root.
func (b BreadcrumbItem) IsHome() bool {
	return b.ID == nil
}

// Ancestry returns the chain of categories from the topmost reachable
// ancestor down to id, inclusive. The walk stops at a root, at a parent
// missing from the snapshot, at the first category seen twice, or after
// MaxDepth hops. Unknown ids yield nil.
func (ix *Index) Ancestry(id int64) []*models.Category {
	current, ok := ix.byID[id]
	if !ok {
		return nil
	}

	chain := []*models.Category{current}
	visited := map[int64]bool{current.ID: true}

	for hops := 0; hops < ix.maxDepth; hops++ {
		parent, ok := ix.Parent(current.ID)
		if !ok || visited[parent.ID] {
			break
		}
		visited[parent.ID] = true
		chain = append(chain, parent)
		current = parent
	}

	// Reverse into root-first order.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Breadcrumbs returns the navigation trail for a category: Home first,
// then each ancestor, ending at the category itself. Unknown ids yield an
// empty trail so the caller can answer with not-found.
func (ix *Index) Breadcrumbs(id int64) []BreadcrumbItem {
	chain := ix.Ancestry(id)
	if len(chain) == 0 {
		return nil
	}

	trail := make([]BreadcrumbItem, 0, len(chain)+1)
	trail = append(trail, BreadcrumbItem{Name: HomeLabel})
	for _, c := range chain {
		cid := c.ID
		trail = append(trail, BreadcrumbItem{Name: c.Name, ID: &cid})
	}
	return trail
}

// PathLabel returns the ancestor names of a category joined root-first,
// e.g. "Grade 10 > Physics". Unknown ids yield "".
func (ix *Index) PathLabel(id int64) string {
	chain := ix.Ancestry(id)
	names := make([]string, len(chain))
	for i, c := range chain {
		names[i] = c.Name
	}
	return strings.Join(names, PathSeparator)
}
