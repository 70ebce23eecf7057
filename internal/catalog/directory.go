// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"fmt"

	"libris/internal/models"
)

// Mode is the state of a folder view.
type Mode int

const (
	// Browsing shows child folders and every book filed in the folder.
	Browsing Mode = iota
	// Searching shows only the folder's books that match the query.
	Searching
)

// String returns the mode name.
func (m Mode) String() string {
	if m == Searching {
		return "searching"
	}
	return "browsing"
}

// Directory is one rendered level of the category tree.
type Directory struct {
	Category    models.Category
	Breadcrumbs []BreadcrumbItem
	Mode        Mode
	Query       string
	Folders     []models.Category
	Books       []models.Book

	// Resources counts every book filed in the folder, independent of the
	// current query.
	Resources int
}

// Browse builds the folder view for a category. books may contain books
// from any category; only those filed directly under id are considered.
// While query is non-empty the view switches to Searching, which hides the
// child folders and keeps the books matching on title or tag. Subfolders
// are never searched. Browse reports false when id is not in the index.
func Browse(ix *Index, id int64, books []models.Book, query string) (*Directory, bool) {
	c, ok := ix.Get(id)
	if !ok {
		return nil, false
	}

	own := make([]models.Book, 0, len(books))
	for _, b := range books {
		if b.CategoryID == id {
			own = append(own, b)
		}
	}

	d := &Directory{
		Category:    *c,
		Breadcrumbs: ix.Breadcrumbs(id),
		Query:       query,
		Resources:   len(own),
	}

	if query == "" {
		d.Mode = Browsing
		d.Folders = ix.Children(id)
		d.Books = own
		return d, true
	}

	d.Mode = Searching
	d.Folders = []models.Category{}
	d.Books = Filter(own, query, FolderFields)
	return d, true
}

// IsEmpty reports a browsing view with neither folders nor books.
func (d *Directory) IsEmpty() bool {
	return d.Mode == Browsing && len(d.Folders) == 0 && len(d.Books) == 0
}

// NoResults reports a search that matched nothing.
func (d *Directory) NoResults() bool {
	return d.Mode == Searching && len(d.Books) == 0
}

// EmptyMessage returns the indicator text for an empty view, or "" when
// the view has content.
func (d *Directory) EmptyMessage() string {
	switch {
	case d.NoResults():
		return fmt.Sprintf("No results found for %q", d.Query)
	case d.IsEmpty():
		return "This folder is empty."
	default:
		return ""
	}
}
