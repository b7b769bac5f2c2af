// Package storage defines the persistence records and contracts backing the
// gateway.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested user or journal record is missing.
var ErrNotFound = errors.New("record not found")

// UserRecord stores one registered Telegram identity.
type UserRecord struct {
	ID                 string
	Username           string
	FirstName          string
	LastName           string
	Language           string
	TimezoneOffset     int
	Role               string
	TrustStatus        string
	HeroText           string
	HeroUpdatedAt      *time.Time
	EquipmentText      string
	EquipmentUpdatedAt *time.Time
	NumbersText        string
	NumbersUpdatedAt   *time.Time
	CreatedAt          time.Time
}

// NewUserDefaults carries the initial fields for user record creation.
type NewUserDefaults struct {
	Username  string
	FirstName string
	LastName  string
	Language  string
	Role      string
	Trust     string
}

// UserStore persists user records.
type UserStore interface {
	GetOrCreateUser(ctx context.Context, id string, defaults NewUserDefaults, createdAt time.Time) (UserRecord, bool, error)
	GetUser(ctx context.Context, id string) (UserRecord, error)
	ListUsers(ctx context.Context, trustStatus string, limit int) ([]UserRecord, error)
	UpdateHeroSnapshot(ctx context.Context, id string, text string, trustStatus string, updatedAt time.Time) error
	UpdateEquipmentSnapshot(ctx context.Context, id string, text string, updatedAt time.Time) error
	UpdateNumbersSnapshot(ctx context.Context, id string, text string, updatedAt time.Time) error
	SetUserLanguage(ctx context.Context, id string, language string) error
	SetUserTrustStatus(ctx context.Context, id string, trustStatus string) error
	SetUserRole(ctx context.Context, id string, role string) error
	CountUsersByTrustStatus(ctx context.Context) (map[string]int, error)
}

// JournalRecord stores one processed-event outcome.
type JournalRecord struct {
	ID        string
	Identity  string
	Outcome   string
	Detail    string
	CreatedAt time.Time
}

// JournalStore persists the event processing journal.
type JournalStore interface {
	AppendJournal(ctx context.Context, record JournalRecord) error
	ListJournal(ctx context.Context, limit int) ([]JournalRecord, error)
	PruneJournal(ctx context.Context, before time.Time) (int64, error)
}
