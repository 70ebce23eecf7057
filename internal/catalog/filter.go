// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"strings"

	"golang.org/x/text/cases"

	"libris/internal/models"
)

// Field selects which book attributes a query is matched against.
type Field uint8

const (
	FieldTitle Field = 1 << iota
	FieldTags
	FieldCategory
)

// Field sets used by the public pages.
const (
	// FolderFields matches a folder listing: title or any tag.
	FolderFields = FieldTitle | FieldTags
	// CatalogFields matches the home and novels catalogs: title or category name.
	CatalogFields = FieldTitle | FieldCategory
)

// Has reports whether f includes every bit of other.
func (f Field) Has(other Field) bool {
	return f&other == other
}

// Filter returns the books whose selected fields contain query as a
// case-insensitive substring, in input order. An empty query returns
// books unchanged.
func Filter(books []models.Book, query string, fields Field) []models.Book {
	if query == "" {
		return books
	}

	needle := fold(query)
	out := make([]models.Book, 0, len(books))
	for _, b := range books {
		if matches(&b, needle, fields) {
			out = append(out, b)
		}
	}
	return out
}

// Matches reports whether a single book matches query on the given fields.
func Matches(b *models.Book, query string, fields Field) bool {
	if query == "" {
		return true
	}
	return matches(b, fold(query), fields)
}

func matches(b *models.Book, needle string, fields Field) bool {
	if fields.Has(FieldTitle) && strings.Contains(fold(b.Title), needle) {
		return true
	}
	if fields.Has(FieldTags) {
		for _, tag := range b.Tags {
			if strings.Contains(fold(tag), needle) {
				return true
			}
		}
	}
	if fields.Has(FieldCategory) && b.CategoryName != "" && strings.Contains(fold(b.CategoryName), needle) {
		return true
	}
	return false
}

// fold normalises a string for case-insensitive comparison. A fresh
// caser is used per call since casers carry state.
func fold(s string) string {
	return cases.Fold().String(s)
}
