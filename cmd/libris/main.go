// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the Libris server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support. Two operator commands
// help fill in the admin credentials:
//
//	libris hash-passkey <passkey>   print a value for ADMIN_PASSKEY_HASH
//	libris totp-secret              print a value for ADMIN_TOTP_SECRET
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	qrcode "github.com/skip2/go-qrcode"

	"libris/internal/cache"
	"libris/internal/config"
	"libris/internal/database"
	"libris/internal/handlers"
	"libris/internal/middleware"
	"libris/internal/render"
	"libris/internal/router"
	"libris/internal/session"
	"libris/internal/source"
	"libris/internal/source/rest"
	"libris/internal/storage"
	"libris/internal/store"
)

const (
	loginAttempts = 5
	loginWindow   = time.Minute
)

func main() {
	if len(os.Args) > 1 {
		if err := runCommand(os.Stdout, os.Args[1], os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "libris:", err)
			os.Exit(2)
		}
		return
	}

	// A missing .env file is fine; real deployments use the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "libris: load .env:", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg)
	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"source", cfg.DataSource,
	)

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// setupLogger installs the default logger: text in development, JSON
// otherwise.
func setupLogger(cfg *config.Config) {
	var h slog.Handler
	if cfg.IsDev() {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(h))
}

// runCommand dispatches the operator subcommands.
func runCommand(out io.Writer, name string, args []string) error {
	switch name {
	case "hash-passkey":
		if len(args) != 1 {
			return errors.New("usage: libris hash-passkey <passkey>")
		}
		hash, err := handlers.HashPasskey(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "ADMIN_PASSKEY_HASH=%s\n", hash)
		return nil

	case "totp-secret":
		key, err := handlers.NewTOTPKey()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "ADMIN_TOTP_SECRET=%s\n\n", key.Secret())
		fmt.Fprintf(out, "Enrolment URL: %s\n\n", handlers.TOTPURL(key.Secret()))
		if qr, err := qrcode.New(handlers.TOTPURL(key.Secret()), qrcode.Medium); err == nil {
			fmt.Fprintln(out, qr.ToSmallString(false))
		}
		return nil

	default:
		return fmt.Errorf("unknown command %q (want hash-passkey or totp-secret)", name)
	}
}

// backend is the catalog source plus whatever must be closed with it.
type backend struct {
	source   source.Source
	cacheLog handlers.CacheLog
	closers  []func() error
}

func (b *backend) close() {
	for _, c := range b.closers {
		if err := c(); err != nil {
			slog.Warn("close failed", "error", err)
		}
	}
}

// openBackend connects the configured data source.
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.DataSource {
	case config.SourcePostgres:
		db, err := database.Connect(cfg.DSN())
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		if cfg.IsDev() {
			if err := database.Seed(ctx, db); err != nil {
				db.Close()
				return nil, err
			}
		}
		return postgresBackend(db), nil

	case config.SourceREST:
		client, err := rest.New(rest.Config{
			BaseURL: cfg.RESTURL,
			Key:     cfg.RESTKey,
			RPS:     cfg.RESTRPS,
			Retries: 2,
		})
		if err != nil {
			return nil, err
		}
		slog.Info("rest backend configured", "url", cfg.RESTURL, "rps", cfg.RESTRPS)
		return &backend{source: client, closers: []func() error{client.Close}}, nil

	default:
		slog.Warn("using in-memory demo catalog; changes are lost on restart")
		return &backend{source: source.NewDemo()}, nil
	}
}

func postgresBackend(db *sql.DB) *backend {
	return &backend{
		source:   store.NewCatalog(db),
		cacheLog: store.NewCacheLogStore(db),
		closers:  []func() error{db.Close},
	}
}

// connectValkey returns the Valkey client, or nil when it is unreachable
// in development. Production requires it.
func connectValkey(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client, err := cache.ConnectValkey(ctx, cfg.ValkeyAddr(), cfg.ValkeyPassword)
	if err == nil {
		return client, nil
	}
	if !cfg.IsDev() {
		return nil, err
	}
	slog.Warn("valkey unavailable, using in-memory sessions and page cache", "error", err)
	return nil, nil
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	be, err := openBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.DataSource, err)
	}
	defer be.close()

	valkey, err := connectValkey(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect valkey: %w", err)
	}

	var (
		pages    cache.Pages
		sessions *session.Store
	)
	secureCookies := !cfg.IsDev()
	if valkey != nil {
		defer valkey.Close()
		pages = cache.NewPageCache(valkey, cfg.PageCacheTTL)
		sessions = session.NewStore(session.NewValkey(valkey), secureCookies)
	} else {
		pages = cache.NewMemoryPages(cfg.PageCacheTTL)
		sessions = session.NewStore(session.NewMemory(), secureCookies)
	}

	var covers handlers.CoverStorage
	storageClient, err := storage.New(storage.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	if storageClient != nil {
		covers = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, cover uploads disabled")
	}

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}

	devPasskey := ""
	if cfg.IsDev() {
		devPasskey = config.DevPasskey
	}
	auth, err := handlers.NewAuth(renderer, sessions, handlers.AuthOptions{
		PasskeyHash: cfg.AdminPasskeyHash,
		DevPasskey:  devPasskey,
		TOTPSecret:  cfg.AdminTOTPSecret,
	})
	if err != nil {
		return fmt.Errorf("init auth: %w", err)
	}

	public := handlers.NewPublic(renderer, be.source, pages, handlers.CatalogOptions{
		NovelsCategoryID: cfg.NovelsCategory(),
		PageSize:         cfg.PageSize,
		MaxDepth:         cfg.MaxDepth,
	})
	admin := handlers.NewAdmin(renderer, be.source, pages, handlers.AdminOptions{
		CacheLog: be.cacheLog,
		Covers:   covers,
		MaxDepth: cfg.MaxDepth,
	})

	limiter := middleware.NewRateLimiter(loginAttempts, loginWindow)
	defer limiter.Stop()

	r := router.New(router.Deps{
		Sessions:     sessions,
		Admin:        admin,
		Auth:         auth,
		Public:       public,
		LoginLimiter: limiter,
		SecureCookie: secureCookies,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
