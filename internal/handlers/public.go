// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"libris/internal/cache"
	"libris/internal/catalog"
	"libris/internal/middleware"
	"libris/internal/models"
	"libris/internal/render"
	"libris/internal/source"
)

// CatalogOptions configures the public catalog pages.
type CatalogOptions struct {
	NovelsCategoryID *int64 // nil means the novels page is empty
	PageSize         int
	MaxDepth         int
}

// PublicSource is what the public pages read from.
type PublicSource interface {
	source.Reader
	source.BookFinder
}

// Public groups handlers for the public catalog. It checks the page cache
// before loading a snapshot from the data source, and stores rendered
// results on miss.
type Public struct {
	renderer *render.Renderer
	source   PublicSource
	pages    cache.Pages
	opts     CatalogOptions
}

// NewPublic creates a new Public handler group.
func NewPublic(renderer *render.Renderer, src PublicSource, pages cache.Pages, opts CatalogOptions) *Public {
	if opts.PageSize <= 0 {
		opts.PageSize = catalog.DefaultPageSize
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = catalog.DefaultMaxDepth
	}
	return &Public{
		renderer: renderer,
		source:   src,
		pages:    pages,
		opts:     opts,
	}
}

// view is a page ready to render. A degraded view was built from a failed
// fetch and is never cached.
type view struct {
	name     string
	status   int
	data     *render.PageData
	degraded bool
}

// Home renders the study areas and the searchable catalog of everything
// except novels.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	q, page := listParams(r)

	p.serve(w, r, cache.HomeKey, func(ctx context.Context) view {
		snap := source.Load(ctx, p.source, source.BookQuery{
			ExcludeCategoryID: p.opts.NovelsCategoryID,
			WithCategoryName:  true,
			Order:             source.OrderNewest,
		}, catalog.WithMaxDepth(p.opts.MaxDepth))

		areas := make([]models.Category, 0)
		for _, c := range snap.Index.Roots() {
			if p.opts.NovelsCategoryID != nil && c.ID == *p.opts.NovelsCategoryID {
				continue
			}
			areas = append(areas, c)
		}

		v := p.listing("home", "Home", "/", q, page, snap.Books, catalog.CatalogFields)
		v.data.Data["Areas"] = areas
		v.data.Data["SearchHint"] = "category"
		v.degraded = snap.Degraded
		return v
	})
}

// Books renders the full catalog, matched on title or tag.
func (p *Public) Books(w http.ResponseWriter, r *http.Request) {
	q, page := listParams(r)

	p.serve(w, r, cache.BooksKey, func(ctx context.Context) view {
		books, ok := source.Books(ctx, p.source, source.BookQuery{
			WithCategoryName: true,
			Order:            source.OrderNewest,
		})
		v := p.listing("books", "All books", "/books", q, page, books, catalog.FolderFields)
		v.data.Data["SearchHint"] = "tag"
		v.degraded = !ok
		return v
	})
}

// Novels renders the books filed in the configured novels category.
func (p *Public) Novels(w http.ResponseWriter, r *http.Request) {
	q, page := listParams(r)

	p.serve(w, r, cache.NovelsKey, func(ctx context.Context) view {
		var books []models.Book
		ok := true
		if p.opts.NovelsCategoryID != nil {
			books, ok = source.Books(ctx, p.source, source.BookQuery{
				CategoryID:       p.opts.NovelsCategoryID,
				WithCategoryName: true,
				Order:            source.OrderNewest,
			})
		}
		v := p.listing("novels", "Novels & short stories", "/novels", q, page, books, catalog.CatalogFields)
		v.data.Data["SearchHint"] = "category"
		v.degraded = !ok
		return v
	})
}

// Category renders a folder of the category tree: breadcrumbs, child
// folders and the books filed directly in it, or the matching books while
// a search is active.
func (p *Public) Category(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		p.NotFound(w, r)
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	p.serve(w, r, cache.CategoryKey(id), func(ctx context.Context) view {
		snap := source.Load(ctx, p.source, source.BookQuery{
			CategoryID: &id,
			Order:      source.OrderTitle,
		}, catalog.WithMaxDepth(p.opts.MaxDepth))

		dir, found := catalog.Browse(snap.Index, id, snap.Books, q)
		if !found {
			return notFoundView("This category does not exist.")
		}
		return view{
			name:   "category",
			status: http.StatusOK,
			data: &render.PageData{
				Title: dir.Category.Name,
				Data:  map[string]any{"Dir": dir},
			},
			degraded: snap.Degraded,
		}
	})
}

// Download redirects to the book's external download link.
func (p *Public) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		p.NotFound(w, r)
		return
	}

	book, err := p.source.FindBook(r.Context(), id)
	if err != nil {
		slog.Error("find book failed", "error", err, "book_id", id,
			"request_id", middleware.RequestIDFromCtx(r.Context()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if book == nil || !isHTTPURL(book.MegaLink) {
		p.NotFound(w, r)
		return
	}

	http.Redirect(w, r, book.MegaLink, http.StatusSeeOther)
}

// NotFound renders the catalog's 404 page.
func (p *Public) NotFound(w http.ResponseWriter, r *http.Request) {
	p.write(w, r, notFoundView(""), "", false)
}

// serve answers from the page cache when the request has no query string
// and key is cached; otherwise it builds the view, renders it, and caches
// successful unparameterised results.
func (p *Public) serve(w http.ResponseWriter, r *http.Request, key string, build func(ctx context.Context) view) {
	cacheable := r.URL.RawQuery == ""
	if cacheable {
		if cached, ok := p.pages.Get(r.Context(), key); ok {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(cached)
			return
		}
	}

	p.write(w, r, build(r.Context()), key, cacheable)
}

// write renders v and sends it, storing complete 200 responses under key
// when cacheable is set.
func (p *Public) write(w http.ResponseWriter, r *http.Request, v view, key string, cacheable bool) {
	body, err := p.renderer.Bytes(v.name, v.data)
	if err != nil {
		slog.Error("render page failed", "template", v.name, "error", err,
			"request_id", middleware.RequestIDFromCtx(r.Context()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if cacheable && v.status == http.StatusOK && !v.degraded {
		p.pages.Set(r.Context(), key, body)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(v.status)
	w.Write(body)
}

// listing builds a searchable, paginated book listing.
func (p *Public) listing(name, title, path, q string, page int, books []models.Book, fields catalog.Field) view {
	matched := catalog.Filter(books, q, fields)
	return view{
		name:   name,
		status: http.StatusOK,
		data: &render.PageData{
			Title: title,
			Data: map[string]any{
				"Path":  path,
				"Query": q,
				"Page":  catalog.Paginate(matched, p.opts.PageSize, page),
			},
		},
	}
}

func notFoundView(message string) view {
	return view{
		name:   "not_found",
		status: http.StatusNotFound,
		data: &render.PageData{
			Title: "Not found",
			Data:  map[string]any{"Message": message},
		},
	}
}

// listParams reads the trimmed search query and the requested page. A
// missing or malformed page number means page 1.
func listParams(r *http.Request) (string, int) {
	query := r.URL.Query()
	q := strings.TrimSpace(query.Get("q"))
	page, err := strconv.Atoi(query.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	return q, page
}

// parseID parses a positive integer id from a path segment.
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
