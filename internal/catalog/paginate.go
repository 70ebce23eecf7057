// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

// DefaultPageSize is the number of books shown per catalog page.
const DefaultPageSize = 12

// Page is one slice of an ordered result set plus the metadata needed to
// render navigation.
type Page[T any] struct {
	Items      []T
	Number     int // 1-based; clamped into [1, TotalPages]
	Size       int
	TotalPages int
	TotalItems int
}

// Paginate slices items into pages of size and returns the requested page.
// A page number outside [1, TotalPages] is clamped. Empty input yields
// TotalPages 0 and no items. A non-positive size falls back to
// DefaultPageSize.
func Paginate[T any](items []T, size, page int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}

	total := (len(items) + size - 1) / size
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}

	p := Page[T]{
		Number:     page,
		Size:       size,
		TotalPages: total,
		TotalItems: len(items),
	}
	if total == 0 {
		p.Items = items[:0:0]
		return p
	}

	start := (page - 1) * size
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	p.Items = items[start:end]
	return p
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool {
	return p.Number > 1
}

// HasNext reports whether a following page exists.
func (p Page[T]) HasNext() bool {
	return p.Number < p.TotalPages
}

// Prev returns the previous page number, never below 1.
func (p Page[T]) Prev() int {
	if p.Number <= 1 {
		return 1
	}
	return p.Number - 1
}

// Next returns the next page number, never above TotalPages.
func (p Page[T]) Next() int {
	if p.Number >= p.TotalPages {
		return p.Number
	}
	return p.Number + 1
}

// Window returns the page links for this page. See Window.
func (p Page[T]) Window() []PageLink {
	return Window(p.Number, p.TotalPages)
}

// PageLink is one entry of a pagination control. Ellipsis entries stand
// in for a run of hidden pages and carry no number.
type PageLink struct {
	Number   int
	Current  bool
	Ellipsis bool
}

// Window computes the pagination links around current. The first and
// last pages, the current page, and its immediate neighbours are always
// shown. A run of two or more hidden pages collapses into one ellipsis; a
// single hidden page is shown as its number (4 pages from page 1 give
// 1 2 3 4, not 1 2 … 4). Fewer than two pages produce no links.
func Window(current, total int) []PageLink {
	if total < 2 {
		return nil
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}

	visible := func(n int) bool {
		return n == 1 || n == total || (n >= current-1 && n <= current+1)
	}

	var links []PageLink
	for n := 1; n <= total; n++ {
		if visible(n) {
			links = append(links, PageLink{Number: n, Current: n == current})
			continue
		}

		// n starts a hidden run; find where it ends.
		end := n
		for end+1 <= total && !visible(end+1) {
			end++
		}
		if end == n {
			links = append(links, PageLink{Number: n})
		} else {
			links = append(links, PageLink{Ellipsis: true})
		}
		n = end
	}
	return links
}
