// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import "libris/internal/models"

func ptr(id int64) *int64 { return &id }

// gradeTree returns a small two-root hierarchy:
//
//	Grade 10 (1)
//	├── Physics (2)
//	│   └── Mechanics (4)
//	│       └── Kinematics (5)
//	└── Chemistry (3)
//	Novels (6)
func gradeTree() []models.Category {
	return []models.Category{
		{ID: 1, Name: "Grade 10"},
		{ID: 2, Name: "Physics", ParentID: ptr(1)},
		{ID: 3, Name: "Chemistry", ParentID: ptr(1)},
		{ID: 4, Name: "Mechanics", ParentID: ptr(2)},
		{ID: 5, Name: "Kinematics", ParentID: ptr(4)},
		{ID: 6, Name: "Novels"},
	}
}

func sampleBooks() []models.Book {
	return []models.Book{
		{ID: 10, Title: "Physics Notes", CategoryID: 2, CategoryName: "Physics", Tags: []string{"2023"}},
		{ID: 11, Title: "Past Papers", CategoryID: 2, CategoryName: "Physics", Tags: []string{"Science", "exam"}},
		{ID: 12, Title: "Organic Chemistry", CategoryID: 3, CategoryName: "Chemistry"},
		{ID: 13, Title: "Madol Doova", CategoryID: 6, CategoryName: "Novels", Tags: []string{"classic"}},
		{ID: 14, Title: "Motion Basics", CategoryID: 5, CategoryName: "Kinematics", Tags: []string{"sci-fi"}},
	}
}

func bookIDs(books []models.Book) []int64 {
	ids := make([]int64, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}
	return ids
}

func categoryIDs(cats []models.Category) []int64 {
	ids := make([]int64, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
