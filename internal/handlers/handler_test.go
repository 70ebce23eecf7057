// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Everything runs against the in-memory demo source, an in-memory page
// cache and in-memory sessions.
package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"

	"libris/internal/cache"
	"libris/internal/middleware"
	"libris/internal/models"
	"libris/internal/render"
	"libris/internal/session"
	"libris/internal/source"
	"libris/internal/store"
)

const testBucketURL = "https://covers.test/libris/"

// fakeCovers records cover uploads and deletions.
type fakeCovers struct {
	mu       sync.Mutex
	uploaded map[string][]byte
	deleted  []string
	failNext bool
}

func newFakeCovers() *fakeCovers {
	return &fakeCovers{uploaded: make(map[string][]byte)}
}

func (f *fakeCovers) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return io.ErrUnexpectedEOF
	}
	f.uploaded[key] = data
	return nil
}

func (f *fakeCovers) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	delete(f.uploaded, key)
	return nil
}

func (f *fakeCovers) FileURL(key string) string { return testBucketURL + key }

func (f *fakeCovers) ExtractKey(rawURL string) (string, bool) {
	if !strings.HasPrefix(rawURL, testBucketURL) {
		return "", false
	}
	return strings.TrimPrefix(rawURL, testBucketURL), true
}

// fakeCacheLog keeps invalidation events in memory.
type fakeCacheLog struct {
	mu      sync.Mutex
	entries []store.CacheLogEntry
}

func (f *fakeCacheLog) Log(_ context.Context, entityType string, entityID int64, action string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, store.CacheLogEntry{
		ID:            int64(len(f.entries) + 1),
		EntityType:    entityType,
		EntityID:      entityID,
		Action:        action,
		InvalidatedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	})
}

func (f *fakeCacheLog) RecentEntries(_ context.Context, limit int) ([]store.CacheLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.CacheLogEntry, 0, limit)
	for i := len(f.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.entries[i])
	}
	return out, nil
}

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	Source   *source.Memory
	Renderer *render.Renderer
	Sessions *session.Store
	Pages    *cache.MemoryPages
	Covers   *fakeCovers
	CacheLog *fakeCacheLog
	Admin    *Admin
	Auth     *Auth
	Public   *Public
}

// newTestEnv creates a complete test environment without a TOTP secret.
func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, AuthOptions{DevPasskey: "admin"})
}

func newTestEnvWith(t *testing.T, authOpts AuthOptions) *testEnv {
	t.Helper()

	renderer, err := render.New(true)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	src := source.NewDemo()
	pages := cache.NewMemoryPages(time.Minute)
	sessions := session.NewStore(session.NewMemory(), false)
	covers := newFakeCovers()
	cacheLog := &fakeCacheLog{}

	novels := source.DemoNovelsID
	public := NewPublic(renderer, src, pages, CatalogOptions{NovelsCategoryID: &novels})
	admin := NewAdmin(renderer, src, pages, AdminOptions{CacheLog: cacheLog, Covers: covers})
	auth, err := NewAuth(renderer, sessions, authOpts)
	if err != nil {
		t.Fatalf("NewAuth: %v", err)
	}

	return &testEnv{
		Source:   src,
		Renderer: renderer,
		Sessions: sessions,
		Pages:    pages,
		Covers:   covers,
		CacheLog: cacheLog,
		Admin:    admin,
		Auth:     auth,
		Public:   public,
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// adminSession is a fully authenticated admin session.
func adminSession() *session.Data {
	return &session.Data{Admin: true, TwoFADone: true, CreatedAt: time.Now()}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// postForm builds a urlencoded POST request.
func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// postMultipart builds a multipart POST request with an optional file.
func postMultipart(t *testing.T, target string, fields url.Values, fileField string, file []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range fields {
		for _, v := range vs {
			if err := mw.WriteField(k, v); err != nil {
				t.Fatalf("write field: %v", err)
			}
		}
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, "cover.bin")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(file)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// parseHTML parses a recorded response body.
func parseHTML(t *testing.T, rr *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rr.Body.String()))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// sessionCookie returns the non-empty session cookie set by a response.
func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == session.CookieName && c.Value != "" {
			return c
		}
	}
	return nil
}

func ptr[T any](v T) *T { return &v }

func formatInt(id int64) string { return strconv.FormatInt(id, 10) }

func sampleBook(title string, categoryID int64) *models.Book {
	return &models.Book{
		Title:      title,
		MegaLink:   "https://mega.nz/file/" + strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		CategoryID: categoryID,
	}
}

func sampleCategory(name string, parentID *int64) *models.Category {
	return &models.Category{Name: name, ParentID: parentID}
}
