package admintoken

import (
	"bytes"
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("admintoken", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Role != "mentor" {
		t.Fatalf("default role = %q, want %q", cfg.Role, "mentor")
	}
	if cfg.TTL != 24*time.Hour {
		t.Fatalf("default ttl = %v, want %v", cfg.TTL, 24*time.Hour)
	}
}

func TestParseConfigOverride(t *testing.T) {
	fs := flag.NewFlagSet("admintoken", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-subject", "alice", "-role", "owner", "-ttl", "1h"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Subject != "alice" {
		t.Fatalf("subject = %q, want %q", cfg.Subject, "alice")
	}
	if cfg.Role != "owner" {
		t.Fatalf("role = %q, want %q", cfg.Role, "owner")
	}
	if cfg.TTL != time.Hour {
		t.Fatalf("ttl = %v, want %v", cfg.TTL, time.Hour)
	}
}

func TestRunMintsVerifiableToken(t *testing.T) {
	buf := &bytes.Buffer{}
	issued := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	cfg := Config{Subject: "alice", Role: "owner", TTL: time.Hour, Secret: "test-secret"}

	if err := Run(cfg, buf, func() time.Time { return issued }); err != nil {
		t.Fatalf("run: %v", err)
	}

	var claims tokenClaims
	_, err := jwt.ParseWithClaims(strings.TrimSpace(buf.String()), &claims, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(func() time.Time { return issued }))
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("subject = %q, want %q", claims.Subject, "alice")
	}
	if claims.Role != "owner" {
		t.Fatalf("role = %q, want %q", claims.Role, "owner")
	}
	if got := claims.ExpiresAt.Time; !got.Equal(issued.Add(time.Hour)) {
		t.Fatalf("expires at = %v, want %v", got, issued.Add(time.Hour))
	}
}

func TestRunValidatesConfig(t *testing.T) {
	valid := Config{Subject: "alice", Role: "mentor", TTL: time.Hour, Secret: "test-secret"}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing subject", mutate: func(c *Config) { c.Subject = " " }},
		{name: "player role", mutate: func(c *Config) { c.Role = "player" }},
		{name: "unknown role", mutate: func(c *Config) { c.Role = "wizard" }},
		{name: "zero ttl", mutate: func(c *Config) { c.TTL = 0 }},
		{name: "missing secret", mutate: func(c *Config) { c.Secret = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			if err := Run(cfg, &bytes.Buffer{}, nil); err == nil {
				t.Fatal("expected config error")
			}
		})
	}
}

func TestRunNilOutput(t *testing.T) {
	cfg := Config{Subject: "alice", Role: "mentor", TTL: time.Hour, Secret: "test-secret"}
	if err := Run(cfg, nil, nil); err == nil {
		t.Fatal("expected error for nil output")
	}
}

func TestParseConfigBadArgs(t *testing.T) {
	fs := flag.NewFlagSet("admintoken", flag.ContinueOnError)
	fs.SetOutput(&bytes.Buffer{})
	if _, err := ParseConfig(fs, []string{"-invalid"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}
