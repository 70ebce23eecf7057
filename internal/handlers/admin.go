// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for Libris. Handlers are
// grouped by concern (admin, public, auth) and receive their dependencies
// through the handler struct.
package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"libris/internal/cache"
	"libris/internal/catalog"
	"libris/internal/middleware"
	"libris/internal/models"
	"libris/internal/render"
	"libris/internal/source"
	"libris/internal/storage"
	"libris/internal/store"
)

const (
	// recentBooks is how many books the dashboard lists.
	recentBooks = 10
	// cacheLogEntries is how many invalidation events the dashboard lists.
	cacheLogEntries = 10
	// maxCoverSize caps uploaded cover images.
	maxCoverSize = 5 << 20
)

// allowedCoverTypes maps sniffed content types to file extensions.
var allowedCoverTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// doneMessages are the flash messages shown after a redirect.
var doneMessages = map[string]string{
	"category-created": "Category added.",
	"category-updated": "Category saved.",
	"category-deleted": "Category deleted.",
	"book-created":     "Book added.",
	"book-updated":     "Book saved.",
	"book-deleted":     "Book deleted.",
}

// CacheLog records page-cache purges. store.CacheLogStore implements it.
type CacheLog interface {
	Log(ctx context.Context, entityType string, entityID int64, action string)
	RecentEntries(ctx context.Context, limit int) ([]store.CacheLogEntry, error)
}

// CoverStorage stores uploaded cover images. storage.Client implements it.
type CoverStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	FileURL(key string) string
	ExtractKey(rawURL string) (string, bool)
}

// AdminOptions carries the optional admin dependencies.
type AdminOptions struct {
	CacheLog CacheLog     // nil when the source has no database
	Covers   CoverStorage // nil when S3 is not configured
	MaxDepth int
}

// Admin groups all admin panel HTTP handlers and their dependencies.
type Admin struct {
	renderer *render.Renderer
	source   source.Source
	pages    cache.Pages
	cacheLog CacheLog
	covers   CoverStorage
	maxDepth int
}

// NewAdmin creates a new Admin handler group with the given dependencies.
func NewAdmin(renderer *render.Renderer, src source.Source, pages cache.Pages, opts AdminOptions) *Admin {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = catalog.DefaultMaxDepth
	}
	return &Admin{
		renderer: renderer,
		source:   src,
		pages:    pages,
		cacheLog: opts.CacheLog,
		covers:   opts.Covers,
		maxDepth: opts.MaxDepth,
	}
}

// categoryForm is the state of the category editor.
type categoryForm struct {
	ID       int64
	Name     string
	ParentID *int64
}

// bookForm is the state of the book editor.
type bookForm struct {
	ID         int64
	Title      string
	MegaLink   string
	CoverImage string
	Tags       string
	CategoryID int64
}

// dashboardState carries form contents and errors into a dashboard render.
type dashboardState struct {
	category      categoryForm
	book          bookForm
	categoryError string
	bookError     string
}

// Dashboard renders counts, the category list, the most recent books and
// the editors. ?edit_category= and ?edit_book= load a record into the
// matching editor.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var state dashboardState

	if raw := r.URL.Query().Get("edit_category"); raw != "" {
		id, ok := parseID(raw)
		if !ok {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		c, err := a.source.FindCategory(ctx, id)
		if err != nil {
			a.serverError(w, r, "find category failed", err)
			return
		}
		if c == nil {
			http.NotFound(w, r)
			return
		}
		state.category = categoryForm{ID: c.ID, Name: c.Name, ParentID: c.ParentID}
	}

	if raw := r.URL.Query().Get("edit_book"); raw != "" {
		id, ok := parseID(raw)
		if !ok {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		b, err := a.source.FindBook(ctx, id)
		if err != nil {
			a.serverError(w, r, "find book failed", err)
			return
		}
		if b == nil {
			http.NotFound(w, r)
			return
		}
		state.book = bookForm{
			ID:         b.ID,
			Title:      b.Title,
			MegaLink:   b.MegaLink,
			CoverImage: b.CoverURL(),
			Tags:       strings.Join(b.Tags, ", "),
			CategoryID: b.CategoryID,
		}
	}

	a.renderDashboard(w, r, state)
}

func (a *Admin) renderDashboard(w http.ResponseWriter, r *http.Request, state dashboardState) {
	ctx := r.Context()

	snap := source.Load(ctx, a.source, source.BookQuery{
		WithCategoryName: true,
		Order:            source.OrderNewest,
	}, catalog.WithMaxDepth(a.maxDepth))

	options := snap.Index.Options()
	parents := options
	if state.category.ID != 0 {
		parents = make([]catalog.CategoryOption, 0, len(options))
		for _, o := range options {
			if !snap.Index.IsDescendant(o.ID, state.category.ID) {
				parents = append(parents, o)
			}
		}
	}

	recent := snap.Books
	if len(recent) > recentBooks {
		recent = recent[:recentBooks]
	}

	data := map[string]any{
		"CategoryCount":  snap.Index.Len(),
		"BookCount":      len(snap.Books),
		"Categories":     options,
		"ParentOptions":  parents,
		"Recent":         recent,
		"CategoryForm":   state.category,
		"BookForm":       state.book,
		"CategoryError":  state.categoryError,
		"BookError":      state.bookError,
		"StorageEnabled": a.covers != nil,
	}

	if a.cacheLog != nil {
		entries, err := a.cacheLog.RecentEntries(ctx, cacheLogEntries)
		if err != nil {
			slog.Warn("load cache log failed", "error", err)
		}
		data["CacheLog"] = entries
	}

	var flashes []render.Flash
	if msg, ok := doneMessages[r.URL.Query().Get("done")]; ok {
		flashes = append(flashes, render.Flash{Type: "success", Message: msg})
	}

	a.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Dashboard",
		Data:    data,
		Flashes: flashes,
	})
}

// --- Categories ---

// CategoryCreate handles the new category form.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	form, ok := readCategoryForm(r)
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if msg := a.checkCategory(r.Context(), form); msg != "" {
		a.renderDashboard(w, r, dashboardState{category: form, categoryError: msg})
		return
	}

	created, err := a.source.CreateCategory(r.Context(), &models.Category{Name: form.Name, ParentID: form.ParentID})
	if err != nil {
		slog.Error("create category failed", "error", err)
		a.renderDashboard(w, r, dashboardState{category: form, categoryError: "Could not save the category."})
		return
	}

	a.purge(r.Context(), "category", created.ID, "create")
	http.Redirect(w, r, "/admin?done=category-created", http.StatusSeeOther)
}

// CategoryUpdate renames or re-parents a category.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form, ok := readCategoryForm(r)
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form.ID = id

	if msg := a.checkCategory(r.Context(), form); msg != "" {
		a.renderDashboard(w, r, dashboardState{category: form, categoryError: msg})
		return
	}

	err := a.source.UpdateCategory(r.Context(), &models.Category{ID: id, Name: form.Name, ParentID: form.ParentID})
	if errors.Is(err, source.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("update category failed", "error", err, "category_id", id)
		a.renderDashboard(w, r, dashboardState{category: form, categoryError: "Could not save the category."})
		return
	}

	a.purge(r.Context(), "category", id, "update")
	http.Redirect(w, r, "/admin?done=category-updated", http.StatusSeeOther)
}

// CategoryDelete removes a category that has no children and no books.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	err := a.source.DeleteCategory(r.Context(), id)
	switch {
	case errors.Is(err, source.ErrNotFound):
		http.NotFound(w, r)
		return
	case errors.Is(err, source.ErrInUse):
		a.renderDashboard(w, r, dashboardState{
			categoryError: "This category still has subcategories or books. Move or delete them first.",
		})
		return
	case err != nil:
		a.serverError(w, r, "delete category failed", err)
		return
	}

	a.purge(r.Context(), "category", id, "delete")
	http.Redirect(w, r, "/admin?done=category-deleted", http.StatusSeeOther)
}

// checkCategory validates a category form against the current tree.
func (a *Admin) checkCategory(ctx context.Context, form categoryForm) string {
	if msg := validateCategory(form.Name); msg != "" {
		return msg
	}
	if form.ParentID == nil {
		return ""
	}

	ix := source.Categories(ctx, a.source, catalog.WithMaxDepth(a.maxDepth))
	if _, ok := ix.Get(*form.ParentID); !ok {
		return "Parent category not found."
	}
	if form.ID != 0 && ix.IsDescendant(*form.ParentID, form.ID) {
		return "A category cannot be moved under itself or one of its subcategories."
	}
	return ""
}

// readCategoryForm reads the category editor fields. It reports false for
// a malformed parent id.
func readCategoryForm(r *http.Request) (categoryForm, bool) {
	form := categoryForm{Name: strings.TrimSpace(r.FormValue("name"))}
	if raw := strings.TrimSpace(r.FormValue("parent_id")); raw != "" {
		id, ok := parseID(raw)
		if !ok {
			return form, false
		}
		form.ParentID = &id
	}
	return form, true
}

// --- Books ---

// BookCreate handles the new book form, including an optional cover upload.
func (a *Admin) BookCreate(w http.ResponseWriter, r *http.Request) {
	form, ok := readBookForm(r)
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if msg := a.checkBook(r.Context(), form); msg != "" {
		a.renderDashboard(w, r, dashboardState{book: form, bookError: msg})
		return
	}

	uploadedKey, msg := a.uploadCover(r, &form)
	if msg != "" {
		a.renderDashboard(w, r, dashboardState{book: form, bookError: msg})
		return
	}

	created, err := a.source.CreateBook(r.Context(), form.model())
	if err != nil {
		slog.Error("create book failed", "error", err)
		a.discardCover(r.Context(), uploadedKey)
		a.renderDashboard(w, r, dashboardState{book: form, bookError: "Could not save the book."})
		return
	}

	a.purge(r.Context(), "book", created.ID, "create")
	http.Redirect(w, r, "/admin?done=book-created", http.StatusSeeOther)
}

// BookUpdate saves the book editor. A replaced cover that lived in our
// bucket is deleted once the update succeeds.
func (a *Admin) BookUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form, ok := readBookForm(r)
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form.ID = id

	existing, err := a.source.FindBook(r.Context(), id)
	if err != nil {
		a.serverError(w, r, "find book failed", err)
		return
	}
	if existing == nil {
		http.NotFound(w, r)
		return
	}

	if msg := a.checkBook(r.Context(), form); msg != "" {
		a.renderDashboard(w, r, dashboardState{book: form, bookError: msg})
		return
	}

	uploadedKey, msg := a.uploadCover(r, &form)
	if msg != "" {
		a.renderDashboard(w, r, dashboardState{book: form, bookError: msg})
		return
	}

	err = a.source.UpdateBook(r.Context(), form.model())
	if errors.Is(err, source.ErrNotFound) {
		a.discardCover(r.Context(), uploadedKey)
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("update book failed", "error", err, "book_id", id)
		a.discardCover(r.Context(), uploadedKey)
		a.renderDashboard(w, r, dashboardState{book: form, bookError: "Could not save the book."})
		return
	}

	if old := existing.CoverURL(); old != "" && old != form.CoverImage {
		a.deleteStoredCover(r.Context(), old)
	}

	a.purge(r.Context(), "book", id, "update")
	http.Redirect(w, r, "/admin?done=book-updated", http.StatusSeeOther)
}

// BookDelete removes a book and its uploaded cover.
func (a *Admin) BookDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	existing, err := a.source.FindBook(r.Context(), id)
	if err != nil {
		a.serverError(w, r, "find book failed", err)
		return
	}
	if existing == nil {
		http.NotFound(w, r)
		return
	}

	if err := a.source.DeleteBook(r.Context(), id); err != nil {
		if errors.Is(err, source.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		a.serverError(w, r, "delete book failed", err)
		return
	}

	a.deleteStoredCover(r.Context(), existing.CoverURL())
	a.purge(r.Context(), "book", id, "delete")
	http.Redirect(w, r, "/admin?done=book-deleted", http.StatusSeeOther)
}

// checkBook validates a book form and confirms its category exists.
func (a *Admin) checkBook(ctx context.Context, form bookForm) string {
	if msg := validateBook(form.Title, form.MegaLink, form.CoverImage, models.ParseTags(form.Tags)); msg != "" {
		return msg
	}
	if form.CategoryID == 0 {
		return "Choose a category."
	}
	c, err := a.source.FindCategory(ctx, form.CategoryID)
	if err != nil {
		slog.Error("find category failed", "error", err, "category_id", form.CategoryID)
		return "Could not check the category."
	}
	if c == nil {
		return "Category not found."
	}
	return ""
}

// model converts the form into a book record.
func (f bookForm) model() *models.Book {
	b := &models.Book{
		ID:         f.ID,
		Title:      strings.TrimSpace(f.Title),
		MegaLink:   strings.TrimSpace(f.MegaLink),
		CategoryID: f.CategoryID,
		Tags:       models.ParseTags(f.Tags),
	}
	if f.CoverImage != "" {
		cover := f.CoverImage
		b.CoverImage = &cover
	}
	return b
}

// readBookForm reads the book editor fields. It reports false for a
// malformed category id.
func readBookForm(r *http.Request) (bookForm, bool) {
	form := bookForm{
		Title:      strings.TrimSpace(r.FormValue("title")),
		MegaLink:   strings.TrimSpace(r.FormValue("mega_link")),
		CoverImage: strings.TrimSpace(r.FormValue("cover_image")),
		Tags:       strings.TrimSpace(r.FormValue("tags")),
	}
	if raw := strings.TrimSpace(r.FormValue("category_id")); raw != "" {
		id, ok := parseID(raw)
		if !ok {
			return form, false
		}
		form.CategoryID = id
	}
	return form, true
}

// --- Covers ---

// uploadCover stores the cover_file upload, when present, and points the
// form at it. It returns the new object key and a user-facing error.
func (a *Admin) uploadCover(r *http.Request, form *bookForm) (string, string) {
	if a.covers == nil || r.MultipartForm == nil {
		return "", ""
	}
	file, header, err := r.FormFile("cover_file")
	if errors.Is(err, http.ErrMissingFile) {
		return "", ""
	}
	if err != nil {
		return "", "Could not read the uploaded cover."
	}
	defer file.Close()

	if header.Size > maxCoverSize {
		return "", "Cover image is too large (max 5 MB)."
	}

	contentType, err := sniff(file)
	if err != nil {
		return "", "Could not read the uploaded cover."
	}
	ext, ok := allowedCoverTypes[contentType]
	if !ok {
		return "", "Cover must be a JPEG, PNG or WebP image."
	}

	key := storage.CoverKey(form.Title, "cover"+ext)
	if err := a.covers.Upload(r.Context(), key, contentType, file, header.Size); err != nil {
		slog.Error("cover upload failed", "error", err, "key", key)
		return "", "Could not upload the cover."
	}

	form.CoverImage = a.covers.FileURL(key)
	return key, ""
}

// sniff detects the content type of an upload and rewinds it.
func sniff(file multipart.File) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}

// discardCover removes a cover uploaded for a write that then failed.
func (a *Admin) discardCover(ctx context.Context, key string) {
	if key == "" || a.covers == nil {
		return
	}
	if err := a.covers.Delete(ctx, key); err != nil {
		slog.Warn("discard cover failed", "error", err, "key", key)
	}
}

// deleteStoredCover removes a cover that lives in our bucket. Covers
// hosted elsewhere are left alone.
func (a *Admin) deleteStoredCover(ctx context.Context, rawURL string) {
	if rawURL == "" || a.covers == nil {
		return
	}
	key, ok := a.covers.ExtractKey(rawURL)
	if !ok {
		return
	}
	if err := a.covers.Delete(ctx, key); err != nil {
		slog.Warn("delete cover failed", "error", err, "key", key)
	}
}

// --- Cache ---

// purge clears the public page cache after a mutation and records why.
func (a *Admin) purge(ctx context.Context, entityType string, id int64, action string) {
	a.pages.InvalidateAll(ctx)
	if a.cacheLog != nil {
		a.cacheLog.Log(ctx, entityType, id, action)
	}
}

func (a *Admin) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "error", err, "request_id", middleware.RequestIDFromCtx(r.Context()))
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
