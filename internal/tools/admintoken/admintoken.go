// Package admintoken mints bearer tokens for the operator API.
package admintoken

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/louisbranch/castellan/internal/gateway/domain"
)

// Config holds configuration for token minting.
type Config struct {
	Subject string
	Role    string
	TTL     time.Duration
	Secret  string
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Role: domain.RoleMentor, TTL: 24 * time.Hour}
	fs.StringVar(&cfg.Subject, "subject", cfg.Subject, "token subject, usually the operator name")
	fs.StringVar(&cfg.Role, "role", cfg.Role, "token role: mentor or owner (default: mentor)")
	fs.DurationVar(&cfg.TTL, "ttl", cfg.TTL, "token lifetime (default: 24h)")
	fs.StringVar(&cfg.Secret, "secret", cfg.Secret, "signing secret, defaults to CASTELLAN_OPS_JWT_SECRET")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Run mints the token and writes it to out. A nil clock falls back to
// time.Now.
func Run(cfg Config, out io.Writer, clock func() time.Time) error {
	if out == nil {
		return errors.New("output is required")
	}
	subject := strings.TrimSpace(cfg.Subject)
	if subject == "" {
		return errors.New("subject is required")
	}
	role := strings.TrimSpace(cfg.Role)
	if role != domain.RoleMentor && role != domain.RoleOwner {
		return fmt.Errorf("role must be %s or %s", domain.RoleMentor, domain.RoleOwner)
	}
	if cfg.TTL <= 0 {
		return errors.New("ttl must be greater than zero")
	}
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return errors.New("signing secret is required")
	}
	if clock == nil {
		clock = time.Now
	}

	now := clock().UTC()
	claims := tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
