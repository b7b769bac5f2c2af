package server

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/castellan/internal/gateway/domain"
	"github.com/louisbranch/castellan/internal/gateway/storage"
)

type domainStoreAdapter struct {
	userStore    storage.UserStore
	journalStore storage.JournalStore
}

func newDomainStoreAdapter(userStore storage.UserStore, journalStore storage.JournalStore) *domainStoreAdapter {
	return &domainStoreAdapter{
		userStore:    userStore,
		journalStore: journalStore,
	}
}

func (a *domainStoreAdapter) GetOrCreateUser(ctx context.Context, id string, input domain.NewUserInput, now time.Time) (domain.UserRecord, bool, error) {
	if a == nil || a.userStore == nil {
		return domain.UserRecord{}, false, domain.ErrStoreNotConfigured
	}
	defaults := storage.NewUserDefaults{
		Username:  input.Username,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Language:  domain.DefaultLanguage,
		Role:      domain.RolePlayer,
		Trust:     string(domain.TrustUnset),
	}
	record, created, err := a.userStore.GetOrCreateUser(ctx, id, defaults, now)
	if err != nil {
		return domain.UserRecord{}, false, mapStorageError(err)
	}
	return toDomainUser(record), created, nil
}

func (a *domainStoreAdapter) FindUser(ctx context.Context, id string) (domain.UserRecord, error) {
	if a == nil || a.userStore == nil {
		return domain.UserRecord{}, domain.ErrStoreNotConfigured
	}
	record, err := a.userStore.GetUser(ctx, id)
	if err != nil {
		return domain.UserRecord{}, mapStorageError(err)
	}
	return toDomainUser(record), nil
}

func (a *domainStoreAdapter) UpdateHeroSnapshot(ctx context.Context, id string, text string, trust domain.TrustStatus, now time.Time) error {
	if a == nil || a.userStore == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.userStore.UpdateHeroSnapshot(ctx, id, text, string(trust), now))
}

func (a *domainStoreAdapter) UpdateEquipmentSnapshot(ctx context.Context, id string, text string, now time.Time) error {
	if a == nil || a.userStore == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.userStore.UpdateEquipmentSnapshot(ctx, id, text, now))
}

func (a *domainStoreAdapter) UpdateNumbersSnapshot(ctx context.Context, id string, text string, now time.Time) error {
	if a == nil || a.userStore == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.userStore.UpdateNumbersSnapshot(ctx, id, text, now))
}

func (a *domainStoreAdapter) SetLanguage(ctx context.Context, id string, language string) error {
	if a == nil || a.userStore == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.userStore.SetUserLanguage(ctx, id, language))
}

func (a *domainStoreAdapter) AppendJournal(ctx context.Context, entry domain.JournalEntry) error {
	if a == nil || a.journalStore == nil {
		return domain.ErrStoreNotConfigured
	}
	record := storage.JournalRecord{
		ID:        entry.ID,
		Identity:  entry.Identity,
		Outcome:   string(entry.Outcome),
		Detail:    entry.Detail,
		CreatedAt: entry.CreatedAt,
	}
	return mapStorageError(a.journalStore.AppendJournal(ctx, record))
}

func (a *domainStoreAdapter) ListJournal(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	if a == nil || a.journalStore == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	records, err := a.journalStore.ListJournal(ctx, limit)
	if err != nil {
		return nil, mapStorageError(err)
	}
	entries := make([]domain.JournalEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, domain.JournalEntry{
			ID:        record.ID,
			Identity:  record.Identity,
			Outcome:   domain.Outcome(record.Outcome),
			Detail:    record.Detail,
			CreatedAt: record.CreatedAt,
		})
	}
	return entries, nil
}

func (a *domainStoreAdapter) PruneJournal(ctx context.Context, before time.Time) (int64, error) {
	if a == nil || a.journalStore == nil {
		return 0, domain.ErrStoreNotConfigured
	}
	removed, err := a.journalStore.PruneJournal(ctx, before)
	if err != nil {
		return 0, mapStorageError(err)
	}
	return removed, nil
}

func toDomainUser(record storage.UserRecord) domain.UserRecord {
	user := domain.UserRecord{
		ID:             record.ID,
		Username:       record.Username,
		FirstName:      record.FirstName,
		LastName:       record.LastName,
		Language:       record.Language,
		TimezoneOffset: record.TimezoneOffset,
		Role:           record.Role,
		Trust:          domain.TrustStatus(record.TrustStatus),
		Hero:           domain.Snapshot{Text: record.HeroText},
		Equipment:      domain.Snapshot{Text: record.EquipmentText},
		Numbers:        domain.Snapshot{Text: record.NumbersText},
		CreatedAt:      record.CreatedAt,
	}
	if record.HeroUpdatedAt != nil {
		user.Hero.UpdatedAt = *record.HeroUpdatedAt
	}
	if record.EquipmentUpdatedAt != nil {
		user.Equipment.UpdatedAt = *record.EquipmentUpdatedAt
	}
	if record.NumbersUpdatedAt != nil {
		user.Numbers.UpdatedAt = *record.NumbersUpdatedAt
	}
	return user
}

func mapStorageError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}
