// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public catalog
// and the admin panel. Public pages render to bytes so they can be stored
// in the page cache; admin pages render straight to the response and
// support HTMX partial rendering via the HX-Request header.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"libris/internal/catalog"
	"libris/internal/middleware"
	"libris/internal/models"
	"libris/internal/session"
)

//go:embed templates/public/*.html templates/admin/*.html
var templateFS embed.FS

// Template sets. Each set has its own base.html layout.
const (
	setPublic = "public"
	setAdmin  = "admin"
)

// PageData holds all data passed to templates.
type PageData struct {
	Title     string         // Page title for <title> tag
	Session   *session.Data  // Current admin session (nil on public pages)
	CSRFToken string         // CSRF token for admin forms
	Data      map[string]any // Page-specific data
	Flashes   []Flash        // One-time notification messages
}

// Flash represents a one-time notification message displayed to the user.
type Flash struct {
	Type    string // "success", "error"
	Message string
}

// TagView is the capped tag list shown on a book card.
type TagView struct {
	Tags []string
	More int
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	roots     map[string]string // template name -> root template to execute
	funcMap   template.FuncMap
}

// standaloneTemplates lists admin templates that render as full HTML
// pages without the base layout.
var standaloneTemplates = map[string]bool{
	"login":      true,
	"2fa_verify": true,
}

// New creates a Renderer by parsing every embedded template. Each page is
// paired with the base layout of its set. devMode is exposed to templates
// through isDev.
func New(devMode bool) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		roots:     make(map[string]string),
		funcMap:   funcMap(devMode),
	}

	for _, set := range []string{setPublic, setAdmin} {
		dir := "templates/" + set
		entries, err := templateFS.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read embedded templates: %w", err)
		}

		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || name == "base.html" || !strings.HasSuffix(name, ".html") {
				continue
			}
			tmplName := strings.TrimSuffix(name, ".html")
			if _, dup := r.templates[tmplName]; dup {
				return nil, fmt.Errorf("duplicate template %q", tmplName)
			}

			var (
				tmpl     *template.Template
				parseErr error
			)
			if set == setAdmin && standaloneTemplates[tmplName] {
				tmpl, parseErr = template.New(name).Funcs(r.funcMap).ParseFS(templateFS, dir+"/"+name)
				r.roots[tmplName] = name
			} else {
				tmpl, parseErr = template.New("base.html").Funcs(r.funcMap).ParseFS(
					templateFS, dir+"/base.html", dir+"/"+name,
				)
				r.roots[tmplName] = "base.html"
			}
			if parseErr != nil {
				return nil, fmt.Errorf("parse template %s: %w", name, parseErr)
			}

			r.templates[tmplName] = tmpl
		}
	}

	return r, nil
}

// funcMap returns the helpers available to every template.
func funcMap(devMode bool) template.FuncMap {
	return template.FuncMap{
		// deref safely dereferences a string pointer.
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"isDev": func() bool {
			return devMode
		},
		// int64Eq compares an optional id with a value.
		"int64Eq": func(ptr *int64, val int64) bool {
			return ptr != nil && *ptr == val
		},
		"pageURL": PageURL,
		"tagPreview": func(b models.Book) TagView {
			tags, more := b.TagPreview(models.DefaultTagPreview)
			return TagView{Tags: tags, More: more}
		},
		"cover": func(b models.Book) string {
			return b.CoverURL()
		},
		"crumbURL": func(b catalog.BreadcrumbItem) string {
			if b.IsHome() {
				return "/"
			}
			return "/category/" + strconv.FormatInt(*b.ID, 10)
		},
		"isLast": func(i, n int) bool {
			return i == n-1
		},
		"plural": func(n int, one, many string) string {
			if n == 1 {
				return one
			}
			return many
		},
	}
}

// PageURL builds a link to page n of a listing at path, keeping the search
// query. Page 1 is the bare listing.
func PageURL(path, query string, n int) string {
	v := url.Values{}
	if query != "" {
		v.Set("q", query)
	}
	if n > 1 {
		v.Set("page", strconv.Itoa(n))
	}
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

// Has reports whether a template with the given name was parsed.
func (rn *Renderer) Has(name string) bool {
	_, ok := rn.templates[name]
	return ok
}

// Bytes renders a full page into memory. Public handlers use it so the
// result can be cached.
func (rn *Renderer) Bytes(name string, data *PageData) ([]byte, error) {
	tmpl, ok := rn.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := executeTemplate(&buf, tmpl, rn.roots[name], data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Page renders a full admin page or an HTMX partial, depending on the
// request headers. For HTMX requests, only the "content" block is sent.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}

	execName := rn.roots[name]
	if isHTMX(r) {
		execName = "content"
	}

	// Render into a buffer first so a template error still yields a clean 500.
	var buf bytes.Buffer
	if err := executeTemplate(&buf, tmpl, execName, data); err != nil {
		slog.Error("render template failed", "template", name, "error", err,
			"request_id", middleware.RequestIDFromCtx(r.Context()))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// executeTemplate wraps template execution with error handling.
func executeTemplate(w io.Writer, tmpl *template.Template, name string, data any) error {
	return tmpl.ExecuteTemplate(w, name, data)
}

// isHTMX returns true if the request was made by HTMX (has HX-Request header).
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
