package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates no record exists for the identity.
	ErrNotFound = errors.New("user record not found")
	// ErrStoreNotConfigured indicates missing persistence wiring.
	ErrStoreNotConfigured = errors.New("user store is not configured")
	// ErrIdentityRequired indicates a record identity is required.
	ErrIdentityRequired = errors.New("identity is required")
)

// NewUserInput carries the profile fields observed at first contact.
type NewUserInput struct {
	Username  string
	FirstName string
	LastName  string
}

// Store is the domain persistence boundary for user records.
//
// Implementations must serialize writes per identity: GetOrCreateUser can
// never produce two records for one identity, and each snapshot update
// writes exactly its own text and timestamp.
type Store interface {
	// GetOrCreateUser returns the record for id, creating it with default
	// language and role at now when absent. The boolean reports whether this
	// call created it. Profile names refresh on every call.
	GetOrCreateUser(ctx context.Context, id string, input NewUserInput, now time.Time) (UserRecord, bool, error)
	// FindUser returns the record for id, or ErrNotFound.
	FindUser(ctx context.Context, id string) (UserRecord, error)
	// UpdateHeroSnapshot overwrites the hero text, trust status, and hero
	// timestamp, leaving sibling snapshots untouched.
	UpdateHeroSnapshot(ctx context.Context, id string, text string, trust TrustStatus, now time.Time) error
	// UpdateEquipmentSnapshot overwrites the equipment text and timestamp.
	UpdateEquipmentSnapshot(ctx context.Context, id string, text string, now time.Time) error
	// UpdateNumbersSnapshot overwrites the numbers text and timestamp.
	UpdateNumbersSnapshot(ctx context.Context, id string, text string, now time.Time) error
	// SetLanguage overwrites the reply language only.
	SetLanguage(ctx context.Context, id string, language string) error
}
