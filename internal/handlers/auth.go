// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/crypto/bcrypt"

	"libris/internal/middleware"
	"libris/internal/render"
	"libris/internal/session"
)

const (
	// totpIssuer labels the account in authenticator apps.
	totpIssuer = "Libris"
	// totpAccount is the single admin account name.
	totpAccount = "admin"
)

// AuthOptions configures the admin gate.
type AuthOptions struct {
	// PasskeyHash is the bcrypt hash of the admin passkey.
	PasskeyHash string
	// DevPasskey is accepted when PasskeyHash is empty. Leave it empty
	// outside development.
	DevPasskey string
	// TOTPSecret enables the second factor when set.
	TOTPSecret string
}

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	renderer *render.Renderer
	sessions *session.Store
	hash     []byte
	secret   string
}

// NewAuth creates a new Auth handler group. When no passkey hash is
// configured the development passkey is hashed once at startup; with
// neither, every login attempt fails.
func NewAuth(renderer *render.Renderer, sessions *session.Store, opts AuthOptions) (*Auth, error) {
	a := &Auth{
		renderer: renderer,
		sessions: sessions,
		secret:   strings.TrimSpace(opts.TOTPSecret),
	}

	switch {
	case opts.PasskeyHash != "":
		a.hash = []byte(opts.PasskeyHash)
	case opts.DevPasskey != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(opts.DevPasskey), bcrypt.MinCost)
		if err != nil {
			return nil, fmt.Errorf("hash dev passkey: %w", err)
		}
		a.hash = hash
		slog.Warn("admin passkey hash not configured, using development passkey")
	}

	return a, nil
}

// TOTPEnabled reports whether logins need the second factor.
func (a *Auth) TOTPEnabled() bool {
	return a.secret != ""
}

// checkPasskey compares a submitted passkey with the configured hash.
func (a *Auth) checkPasskey(passkey string) bool {
	if len(a.hash) == 0 || passkey == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(a.hash, []byte(passkey)) == nil
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && (sess.TwoFADone || !a.TOTPEnabled()) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "login", &render.PageData{
		Title: "Sign In",
	})
}

// LoginSubmit checks the passkey and opens an admin session.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if !a.checkPasskey(r.FormValue("passkey")) {
		slog.Warn("admin login rejected", "remote_addr", r.RemoteAddr,
			"request_id", middleware.RequestIDFromCtx(r.Context()))
		a.renderer.Page(w, r, "login", &render.PageData{
			Title: "Sign In",
			Data:  map[string]any{"Error": "Invalid passkey."},
		})
		return
	}

	// Drop any previous session before issuing a new id.
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("destroy previous session failed", "error", err)
	}

	_, err := a.sessions.Create(r.Context(), w, &session.Data{
		Admin:     true,
		TwoFADone: !a.TOTPEnabled(),
	})
	if err != nil {
		slog.Error("session create failed", "error", err,
			"request_id", middleware.RequestIDFromCtx(r.Context()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if a.TOTPEnabled() {
		http.Redirect(w, r, "/admin/2fa/verify", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// TwoFAVerifyPage renders the code entry form.
func (a *Auth) TwoFAVerifyPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}
	if !a.TOTPEnabled() || sess.TwoFADone {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	a.renderer.Page(w, r, "2fa_verify", &render.PageData{
		Title: "Two-Factor Authentication",
	})
}

// TwoFAVerifySubmit validates the TOTP code and completes authentication.
func (a *Auth) TwoFAVerifySubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
		return
	}
	if !a.TOTPEnabled() {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	if !totp.Validate(strings.TrimSpace(r.FormValue("code")), a.secret) {
		a.renderer.Page(w, r, "2fa_verify", &render.PageData{
			Title: "Two-Factor Authentication",
			Data:  map[string]any{"Error": "Invalid code. Please try again."},
		})
		return
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err,
			"request_id", middleware.RequestIDFromCtx(r.Context()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// TwoFASetupPage shows the configured secret as a QR code so another
// device can be enrolled.
func (a *Auth) TwoFASetupPage(w http.ResponseWriter, r *http.Request) {
	a.renderSetup(w, r, nil)
}

// TwoFASetupCheck tests a code against the configured secret without
// changing the session.
func (a *Auth) TwoFASetupCheck(w http.ResponseWriter, r *http.Request) {
	if !a.TOTPEnabled() {
		a.renderSetup(w, r, nil)
		return
	}
	if totp.Validate(strings.TrimSpace(r.FormValue("code")), a.secret) {
		a.renderSetup(w, r, map[string]any{"Success": "Code accepted. This device is enrolled."})
		return
	}
	a.renderSetup(w, r, map[string]any{"Error": "Invalid code. Please try again."})
}

func (a *Auth) renderSetup(w http.ResponseWriter, r *http.Request, extra map[string]any) {
	data := map[string]any{}
	if a.TOTPEnabled() {
		qrPNG, err := qrcode.Encode(TOTPURL(a.secret), qrcode.Medium, 256)
		if err != nil {
			slog.Error("qr code generation failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		data["QRCode"] = base64.StdEncoding.EncodeToString(qrPNG)
		data["Secret"] = a.secret
	}
	for k, v := range extra {
		data[k] = v
	}

	a.renderer.Page(w, r, "2fa_setup", &render.PageData{
		Title: "Authenticator",
		Data:  data,
	})
}

// Logout destroys the session and redirects to the login page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

// HashPasskey returns the bcrypt hash to store in ADMIN_PASSKEY_HASH.
func HashPasskey(passkey string) (string, error) {
	if passkey == "" {
		return "", fmt.Errorf("passkey is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passkey), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash passkey: %w", err)
	}
	return string(hash), nil
}

// NewTOTPKey generates a fresh secret for ADMIN_TOTP_SECRET.
func NewTOTPKey() (*otp.Key, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: totpAccount,
	})
	if err != nil {
		return nil, fmt.Errorf("generate totp key: %w", err)
	}
	return key, nil
}

// TOTPURL returns the otpauth:// enrolment URL for secret.
func TOTPURL(secret string) string {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", totpIssuer)
	return "otpauth://totp/" + totpIssuer + ":" + totpAccount + "?" + v.Encode()
}
