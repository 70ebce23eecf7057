// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package source

import (
	"context"
	"errors"
	"testing"

	"libris/internal/models"
)

func TestMemoryListCategoriesOrderedByName(t *testing.T) {
	m := NewDemo()
	cats, err := m.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(cats) != len(DemoCategories()) {
		t.Fatalf("count: got %d, want %d", len(cats), len(DemoCategories()))
	}
	for i := 1; i < len(cats); i++ {
		if cats[i-1].Name > cats[i].Name {
			t.Errorf("not sorted: %q before %q", cats[i-1].Name, cats[i].Name)
		}
	}
}

func TestMemoryListBooksQueries(t *testing.T) {
	ctx := context.Background()
	m := NewDemo()
	novels := DemoNovelsID

	all, _ := m.ListBooks(ctx, BookQuery{})
	if len(all) != len(DemoBooks()) {
		t.Fatalf("all: got %d, want %d", len(all), len(DemoBooks()))
	}
	if all[0].ID != 107 {
		t.Errorf("newest first: got %d, want 107", all[0].ID)
	}
	if all[0].CategoryName != "" {
		t.Error("category name should be empty without WithCategoryName")
	}

	only, _ := m.ListBooks(ctx, BookQuery{CategoryID: &novels, WithCategoryName: true})
	if len(only) != 2 {
		t.Fatalf("novels: got %d, want 2", len(only))
	}
	if only[0].CategoryName != "Novels" {
		t.Errorf("category name: got %q, want Novels", only[0].CategoryName)
	}

	rest, _ := m.ListBooks(ctx, BookQuery{ExcludeCategoryID: &novels})
	for _, b := range rest {
		if b.CategoryID == novels {
			t.Errorf("book %d should be excluded", b.ID)
		}
	}
	if len(rest) != len(DemoBooks())-2 {
		t.Errorf("excluded: got %d, want %d", len(rest), len(DemoBooks())-2)
	}

	byTitle, _ := m.ListBooks(ctx, BookQuery{Order: OrderTitle, Limit: 3})
	if len(byTitle) != 3 {
		t.Fatalf("limit: got %d, want 3", len(byTitle))
	}
	if byTitle[0].Title != "2021 A/L Paper" {
		t.Errorf("first by title: got %q", byTitle[0].Title)
	}
}

func TestMemoryCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	root, err := m.CreateCategory(ctx, &models.Category{Name: "Grade 12"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if root.ID == 0 || root.CreatedAt.IsZero() {
		t.Errorf("created category missing id or timestamp: %+v", root)
	}

	child, err := m.CreateCategory(ctx, &models.Category{Name: "Biology", ParentID: &root.ID})
	if err != nil {
		t.Fatalf("CreateCategory child: %v", err)
	}

	missing := int64(999)
	if _, err := m.CreateCategory(ctx, &models.Category{Name: "Orphan", ParentID: &missing}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing parent: got %v, want ErrNotFound", err)
	}

	if err := m.DeleteCategory(ctx, root.ID); !errors.Is(err, ErrInUse) {
		t.Errorf("delete parent: got %v, want ErrInUse", err)
	}

	child.Name = "Botany"
	child.ParentID = nil
	if err := m.UpdateCategory(ctx, child); err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	found, _ := m.FindCategory(ctx, child.ID)
	if found == nil || found.Name != "Botany" || found.ParentID != nil {
		t.Errorf("after update: got %+v", found)
	}

	if err := m.DeleteCategory(ctx, root.ID); err != nil {
		t.Errorf("delete emptied parent: %v", err)
	}
	if c, _ := m.FindCategory(ctx, root.ID); c != nil {
		t.Error("category should be gone")
	}
	if err := m.DeleteCategory(ctx, root.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestMemoryBookLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewDemo()

	created, err := m.CreateBook(ctx, &models.Book{
		Title:      "Optics",
		MegaLink:   "https://mega.nz/file/optics",
		CategoryID: 2,
		Tags:       []string{"light"},
	})
	if err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	if created.ID <= 107 {
		t.Errorf("id should follow seeded ids: got %d", created.ID)
	}
	if created.CategoryName != "Physics" {
		t.Errorf("category name: got %q", created.CategoryName)
	}

	if err := m.DeleteCategory(ctx, 2); !errors.Is(err, ErrInUse) {
		t.Errorf("delete category with books: got %v, want ErrInUse", err)
	}

	created.Title = "Geometric Optics"
	created.Tags = []string{"light", "lenses"}
	if err := m.UpdateBook(ctx, created); err != nil {
		t.Fatalf("UpdateBook: %v", err)
	}
	found, _ := m.FindBook(ctx, created.ID)
	if found == nil || found.Title != "Geometric Optics" || len(found.Tags) != 2 {
		t.Errorf("after update: got %+v", found)
	}

	// Callers must not be able to mutate stored tags.
	found.Tags[0] = "mutated"
	again, _ := m.FindBook(ctx, created.ID)
	if again.Tags[0] != "light" {
		t.Errorf("stored tags leaked: %v", again.Tags)
	}

	if _, err := m.CreateBook(ctx, &models.Book{Title: "x", CategoryID: 999}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing category: got %v, want ErrNotFound", err)
	}

	if err := m.DeleteBook(ctx, created.ID); err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}
	if b, _ := m.FindBook(ctx, created.ID); b != nil {
		t.Error("book should be gone")
	}
	if err := m.UpdateBook(ctx, created); !errors.Is(err, ErrNotFound) {
		t.Errorf("update deleted book: got %v, want ErrNotFound", err)
	}
}
