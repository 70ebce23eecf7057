// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package source

import (
	"time"

	"libris/internal/models"
)

// DemoNovelsID is the id of the novels category in the demo data.
const DemoNovelsID int64 = 7

func id(v int64) *int64 { return &v }

func str(v string) *string { return &v }

// DemoCategories returns the demo category tree used for development
// seeding and the in-memory source.
func DemoCategories() []models.Category {
	at := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	return []models.Category{
		{ID: 1, Name: "Grade 10", CreatedAt: at},
		{ID: 2, Name: "Physics", ParentID: id(1), CreatedAt: at},
		{ID: 3, Name: "Chemistry", ParentID: id(1), CreatedAt: at},
		{ID: 4, Name: "Grade 11", CreatedAt: at},
		{ID: 5, Name: "Combined Maths", ParentID: id(4), CreatedAt: at},
		{ID: 6, Name: "Past Papers", ParentID: id(5), CreatedAt: at},
		{ID: DemoNovelsID, Name: "Novels", CreatedAt: at},
	}
}

// DemoBooks returns the demo books, oldest first.
func DemoBooks() []models.Book {
	at := func(day int) time.Time {
		return time.Date(2026, 1, day, 12, 0, 0, 0, time.UTC)
	}
	return []models.Book{
		{ID: 101, Title: "Physics Notes", MegaLink: "https://mega.nz/file/demo-physics-notes", CategoryID: 2, Tags: []string{"2023", "notes"}, CreatedAt: at(6)},
		{ID: 102, Title: "Mechanics Workbook", MegaLink: "https://mega.nz/file/demo-mechanics", CategoryID: 2, Tags: []string{"exercises"}, CreatedAt: at(7)},
		{ID: 103, Title: "Organic Chemistry Basics", MegaLink: "https://mega.nz/file/demo-organic", CategoryID: 3, Tags: []string{"science", "theory", "2022", "revision"}, CreatedAt: at(8)},
		{ID: 104, Title: "Calculus Primer", MegaLink: "https://mega.nz/file/demo-calculus", CategoryID: 5, Tags: []string{"maths"}, CoverImage: str("https://images.example.org/covers/calculus.jpg"), CreatedAt: at(9)},
		{ID: 105, Title: "2021 A/L Paper", MegaLink: "https://mega.nz/file/demo-al-2021", CategoryID: 6, Tags: []string{"2021", "exam"}, CreatedAt: at(10)},
		{ID: 106, Title: "Madol Doova", MegaLink: "https://mega.nz/file/demo-madol-doova", CategoryID: DemoNovelsID, Tags: []string{"classic"}, CreatedAt: at(11)},
		{ID: 107, Title: "Gamperaliya", MegaLink: "https://mega.nz/file/demo-gamperaliya", CategoryID: DemoNovelsID, Tags: []string{"classic", "saga"}, CreatedAt: at(12)},
	}
}

// NewDemo returns an in-memory source loaded with the demo data.
func NewDemo() *Memory {
	return NewMemoryWith(DemoCategories(), DemoBooks())
}
