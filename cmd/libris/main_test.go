// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPasskeyCommand(t *testing.T) {
	var out bytes.Buffer
	if err := runCommand(&out, "hash-passkey", []string{"open sesame"}); err != nil {
		t.Fatalf("runCommand: %v", err)
	}

	line := strings.TrimSpace(out.String())
	hash, ok := strings.CutPrefix(line, "ADMIN_PASSKEY_HASH=")
	if !ok {
		t.Fatalf("output: got %q", line)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("open sesame")); err != nil {
		t.Errorf("hash does not match passkey: %v", err)
	}
}

func TestTOTPSecretCommand(t *testing.T) {
	var out bytes.Buffer
	if err := runCommand(&out, "totp-secret", nil); err != nil {
		t.Fatalf("runCommand: %v", err)
	}

	first, _, _ := strings.Cut(out.String(), "\n")
	secret, ok := strings.CutPrefix(first, "ADMIN_TOTP_SECRET=")
	if !ok || len(secret) < 16 {
		t.Fatalf("first line: got %q", first)
	}
	if !strings.Contains(out.String(), "otpauth://totp/Libris:admin?") {
		t.Error("enrolment URL missing")
	}
}

func TestRunCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		args []string
	}{
		{"missing passkey", "hash-passkey", nil},
		{"empty passkey", "hash-passkey", []string{""}},
		{"unknown command", "serve", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := runCommand(&out, tt.cmd, tt.args); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
