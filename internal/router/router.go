// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for Libris.
// It organizes routes into public and admin groups with appropriate
// middleware stacks.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"libris/internal/handlers"
	"libris/internal/middleware"
	"libris/internal/session"
	"libris/web"
)

// Deps carries everything the router wires together.
type Deps struct {
	Sessions     *session.Store
	Admin        *handlers.Admin
	Auth         *handlers.Auth
	Public       *handlers.Public
	LoginLimiter *middleware.RateLimiter // nil disables login throttling
	SecureCookie bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(d.Sessions))

	// Health check: no auth, no CSRF.
	r.Get("/health", healthHandler)

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic(err) // embedded path is fixed at build time
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static)))

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.NewCSRF(d.SecureCookie))

		// Auth pages, accessible without a session.
		r.Get("/login", d.Auth.LoginPage)
		if d.LoginLimiter != nil {
			r.With(d.LoginLimiter.Middleware).Post("/login", d.Auth.LoginSubmit)
		} else {
			r.Post("/login", d.Auth.LoginSubmit)
		}
		r.Post("/logout", d.Auth.Logout)

		// Second factor: requires a session but not a completed 2FA step.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/2fa/verify", d.Auth.TwoFAVerifyPage)
			r.Post("/2fa/verify", d.Auth.TwoFAVerifySubmit)
		})

		// Fully authenticated admin area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA(d.Auth.TOTPEnabled()))

			r.Get("/", d.Admin.Dashboard)
			r.Get("/2fa/setup", d.Auth.TwoFASetupPage)
			r.Post("/2fa/setup", d.Auth.TwoFASetupCheck)

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", d.Admin.CategoryCreate)
				r.Post("/{id}", d.Admin.CategoryUpdate)
				r.Post("/{id}/delete", d.Admin.CategoryDelete)
			})

			r.Route("/books", func(r chi.Router) {
				r.Post("/", d.Admin.BookCreate)
				r.Post("/{id}", d.Admin.BookUpdate)
				r.Post("/{id}/delete", d.Admin.BookDelete)
			})
		})
	})

	// Public catalog.
	r.Get("/", d.Public.Home)
	r.Get("/books", d.Public.Books)
	r.Get("/novels", d.Public.Novels)
	r.Get("/category/{id}", d.Public.Category)
	r.Get("/books/{id}/download", d.Public.Download)
	r.NotFound(d.Public.NotFound)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
