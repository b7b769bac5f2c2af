package server

import (
	"context"
	"fmt"
	"time"

	"github.com/louisbranch/castellan/internal/gateway/domain"
	"github.com/louisbranch/castellan/internal/telegram"
)

type fakeStore struct {
	users       map[string]domain.UserRecord
	failResolve bool
	failHero    bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]domain.UserRecord)}
}

func (f *fakeStore) seed(id string, record domain.UserRecord) {
	record.ID = id
	if record.Language == "" {
		record.Language = domain.DefaultLanguage
	}
	if record.Role == "" {
		record.Role = domain.RolePlayer
	}
	if record.Trust == "" {
		record.Trust = domain.TrustUnset
	}
	f.users[id] = record
}

func (f *fakeStore) GetOrCreateUser(ctx context.Context, id string, input domain.NewUserInput, now time.Time) (domain.UserRecord, bool, error) {
	if f.failResolve {
		return domain.UserRecord{}, false, fmt.Errorf("resolve user failed")
	}
	if record, ok := f.users[id]; ok {
		record.Username = input.Username
		record.FirstName = input.FirstName
		record.LastName = input.LastName
		f.users[id] = record
		return record, false, nil
	}
	record := domain.UserRecord{
		ID:        id,
		Username:  input.Username,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Language:  domain.DefaultLanguage,
		Role:      domain.RolePlayer,
		Trust:     domain.TrustUnset,
		CreatedAt: now,
	}
	f.users[id] = record
	return record, true, nil
}

func (f *fakeStore) FindUser(ctx context.Context, id string) (domain.UserRecord, error) {
	record, ok := f.users[id]
	if !ok {
		return domain.UserRecord{}, domain.ErrNotFound
	}
	return record, nil
}

func (f *fakeStore) UpdateHeroSnapshot(ctx context.Context, id string, text string, trust domain.TrustStatus, now time.Time) error {
	if f.failHero {
		return fmt.Errorf("hero update failed")
	}
	record, ok := f.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	record.Hero = domain.Snapshot{Text: text, UpdatedAt: now}
	record.Trust = trust
	f.users[id] = record
	return nil
}

func (f *fakeStore) UpdateEquipmentSnapshot(ctx context.Context, id string, text string, now time.Time) error {
	record, ok := f.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	record.Equipment = domain.Snapshot{Text: text, UpdatedAt: now}
	f.users[id] = record
	return nil
}

func (f *fakeStore) UpdateNumbersSnapshot(ctx context.Context, id string, text string, now time.Time) error {
	record, ok := f.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	record.Numbers = domain.Snapshot{Text: text, UpdatedAt: now}
	f.users[id] = record
	return nil
}

func (f *fakeStore) SetLanguage(ctx context.Context, id string, language string) error {
	record, ok := f.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	record.Language = language
	f.users[id] = record
	return nil
}

type fakeJournal struct {
	entries []domain.JournalEntry
}

func (f *fakeJournal) AppendJournal(ctx context.Context, entry domain.JournalEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeJournal) ListJournal(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	if limit <= 0 || limit > len(f.entries) {
		limit = len(f.entries)
	}
	return f.entries[:limit], nil
}

func (f *fakeJournal) PruneJournal(ctx context.Context, before time.Time) (int64, error) {
	kept := f.entries[:0]
	var removed int64
	for _, entry := range f.entries {
		if entry.CreatedAt.Before(before) {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	f.entries = kept
	return removed, nil
}

type sentMessage struct {
	chatID    int64
	messageID int64
	text      string
	keyboard  *telegram.InlineKeyboardMarkup
}

type fakeSender struct {
	sent     []sentMessage
	edits    []sentMessage
	answered []string
}

func (f *fakeSender) SendMessage(ctx context.Context, chatID int64, text string, keyboard *telegram.InlineKeyboardMarkup) error {
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text, keyboard: keyboard})
	return nil
}

func (f *fakeSender) EditMessageText(ctx context.Context, chatID int64, messageID int64, text string, keyboard *telegram.InlineKeyboardMarkup) error {
	f.edits = append(f.edits, sentMessage{chatID: chatID, messageID: messageID, text: text, keyboard: keyboard})
	return nil
}

func (f *fakeSender) AnswerCallbackQuery(ctx context.Context, callbackQueryID string) error {
	f.answered = append(f.answered, callbackQueryID)
	return nil
}
