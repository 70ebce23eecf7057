// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"
)

// DefaultTagPreview is how many tags a book card shows before collapsing
// the rest into a "+N" indicator.
const DefaultTagPreview = 3

// Book is a catalog entry pointing to an externally hosted resource,
// tagged and filed under exactly one category.
type Book struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	MegaLink   string    `json:"mega_link"`
	CoverImage *string   `json:"cover_image,omitempty"`
	CategoryID int64     `json:"category_id"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`

	// Virtual field populated by joined queries. Empty when the query did
	// not join categories or the category reference is broken.
	CategoryName string `json:"-"`
}

// CoverURL returns the cover image URL, or an empty string when the book
// has no cover and should render the placeholder.
func (b *Book) CoverURL() string {
	if b.CoverImage == nil {
		return ""
	}
	return strings.TrimSpace(*b.CoverImage)
}

// TagPreview returns at most n tags for display plus the number of tags
// that were left out.
func (b *Book) TagPreview(n int) ([]string, int) {
	if n < 0 {
		n = 0
	}
	if len(b.Tags) <= n {
		return b.Tags, 0
	}
	return b.Tags[:n], len(b.Tags) - n
}

// ParseTags splits a comma-separated tag string, trimming whitespace and
// dropping empty entries. Order is preserved.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
