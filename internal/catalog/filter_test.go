// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"testing"

	"libris/internal/models"
)

func TestFilterEmptyQueryReturnsInput(t *testing.T) {
	books := sampleBooks()
	got := Filter(books, "", FolderFields)
	if !equalIDs(bookIDs(got), bookIDs(books)) {
		t.Errorf("empty query: got %v, want %v", bookIDs(got), bookIDs(books))
	}
}

func TestFilterCaseInsensitive(t *testing.T) {
	books := sampleBooks()

	lower := bookIDs(Filter(books, "sci", FolderFields))
	upper := bookIDs(Filter(books, "SCI", FolderFields))
	if !equalIDs(lower, upper) {
		t.Errorf("case: %v != %v", lower, upper)
	}
	// "Science" tag on 11, "sci-fi" tag on 14.
	if !equalIDs(lower, []int64{11, 14}) {
		t.Errorf("sci: got %v, want [11 14]", lower)
	}
}

func TestFilterIdempotent(t *testing.T) {
	books := sampleBooks()
	for _, q := range []string{"p", "physics", "2023", "zzz"} {
		once := Filter(books, q, FolderFields)
		twice := Filter(once, q, FolderFields)
		if !equalIDs(bookIDs(once), bookIDs(twice)) {
			t.Errorf("%q: once %v, twice %v", q, bookIDs(once), bookIDs(twice))
		}
	}
}

func TestFilterFieldSelection(t *testing.T) {
	books := sampleBooks()

	tests := []struct {
		name   string
		query  string
		fields Field
		want   []int64
	}{
		{"title only", "notes", FieldTitle, []int64{10}},
		{"tag ignored without tag field", "classic", FieldTitle, []int64{}},
		{"tag matched", "classic", FolderFields, []int64{13}},
		{"category matched", "chemistry", CatalogFields, []int64{12}},
		{"category ignored in folder fields", "kinematics", FolderFields, []int64{}},
		{"category name for catalog", "novels", CatalogFields, []int64{13}},
		{"order preserved", "p", FieldTitle, []int64{10, 11}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bookIDs(Filter(books, tt.query, tt.fields))
			if !equalIDs(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterMissingCategoryName(t *testing.T) {
	books := []models.Book{{ID: 1, Title: "Loose", CategoryID: 99}}
	if got := Filter(books, "loose", CatalogFields); len(got) != 1 {
		t.Errorf("title match should survive a blank category: got %d", len(got))
	}
	if got := Filter(books, "99", CatalogFields); len(got) != 0 {
		t.Errorf("blank category must not match: got %d", len(got))
	}
}

func TestFilterUnicodeFolding(t *testing.T) {
	books := []models.Book{
		{ID: 1, Title: "Die Bücher"},
		{ID: 2, Title: "ΟΔΥΣΣΕΙΑ"},
	}
	if got := bookIDs(Filter(books, "BÜCHER", FieldTitle)); !equalIDs(got, []int64{1}) {
		t.Errorf("umlaut: got %v", got)
	}
	if got := bookIDs(Filter(books, "οδυσσεια", FieldTitle)); !equalIDs(got, []int64{2}) {
		t.Errorf("greek: got %v", got)
	}
}

func TestMatches(t *testing.T) {
	b := models.Book{Title: "Physics Notes", Tags: []string{"2023"}}
	if !Matches(&b, "", FieldTitle) {
		t.Error("empty query should match")
	}
	if !Matches(&b, "2023", FolderFields) {
		t.Error("tag should match")
	}
	if Matches(&b, "2023", FieldTitle) {
		t.Error("tag should not match on title only")
	}
}

func TestFieldHas(t *testing.T) {
	if !FolderFields.Has(FieldTitle) || !FolderFields.Has(FieldTags) {
		t.Error("folder fields should include title and tags")
	}
	if FolderFields.Has(FieldCategory) {
		t.Error("folder fields should not include category")
	}
}
