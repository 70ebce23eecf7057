// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// Validation limits for category and book fields.
const (
	maxCategoryNameLen = 200
	maxTitleLen        = 300
	maxLinkLen         = 2_000
	maxTagLen          = 60
	maxTags            = 30
)

// validateCategory checks category form inputs and returns the first error found.
func validateCategory(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Category name is required."
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return "Category name is too long (max 200 characters)."
	}
	return ""
}

// validateBook checks book form inputs and returns the first error found.
// coverImage may be empty.
func validateBook(title, megaLink, coverImage string, tags []string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if strings.TrimSpace(megaLink) == "" {
		return "Download link is required."
	}
	if len(megaLink) > maxLinkLen || !isHTTPURL(megaLink) {
		return "Download link must be an http(s) URL."
	}
	if coverImage != "" && (len(coverImage) > maxLinkLen || !isHTTPURL(coverImage)) {
		return "Cover image must be an http(s) URL."
	}
	if len(tags) > maxTags {
		return "Too many tags (max 30)."
	}
	for _, t := range tags {
		if utf8.RuneCountInString(t) > maxTagLen {
			return "Tags are limited to 60 characters each."
		}
	}
	return ""
}

// isHTTPURL reports whether raw is an absolute http or https URL with a host.
func isHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
