package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/castellan/internal/gateway/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestGetOrCreateUserCreatesOnce(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	defaults := storage.NewUserDefaults{
		Username:  "dukelion",
		FirstName: "Duke",
		LastName:  "Lion",
		Language:  "en",
		Role:      "player",
		Trust:     "unset",
	}

	record, created, err := store.GetOrCreateUser(context.Background(), "42", defaults, now)
	if err != nil {
		t.Fatalf("get or create user: %v", err)
	}
	if !created {
		t.Fatal("expected first call to create the record")
	}
	if record.ID != "42" || record.Username != "dukelion" || record.Language != "en" {
		t.Fatalf("created record = %+v", record)
	}
	if record.Role != "player" || record.TrustStatus != "unset" {
		t.Fatalf("created record defaults = %+v", record)
	}
	if !record.CreatedAt.Equal(now) {
		t.Fatalf("created at = %v, want %v", record.CreatedAt, now)
	}
	if record.HeroUpdatedAt != nil || record.EquipmentUpdatedAt != nil || record.NumbersUpdatedAt != nil {
		t.Fatalf("fresh record carries snapshot timestamps: %+v", record)
	}

	later := defaults
	later.Language = "ru"
	again, created, err := store.GetOrCreateUser(context.Background(), "42", later, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("get or create user again: %v", err)
	}
	if created {
		t.Fatal("expected second call to load the existing record")
	}
	if again.Language != "en" {
		t.Fatalf("language = %q, want existing value preserved", again.Language)
	}
	if !again.CreatedAt.Equal(now) {
		t.Fatalf("created at = %v, want original %v", again.CreatedAt, now)
	}
}

func TestGetOrCreateUserRefreshesNames(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	defaults := storage.NewUserDefaults{
		Username:  "oldname",
		FirstName: "Old",
		Language:  "en",
		Role:      "player",
		Trust:     "unset",
	}
	if _, _, err := store.GetOrCreateUser(context.Background(), "42", defaults, now); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	renamed := defaults
	renamed.Username = "newname"
	renamed.FirstName = "New"
	renamed.LastName = "Name"
	record, created, err := store.GetOrCreateUser(context.Background(), "42", renamed, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("get or create user: %v", err)
	}
	if created {
		t.Fatal("expected existing record")
	}
	if record.Username != "newname" || record.FirstName != "New" || record.LastName != "Name" {
		t.Fatalf("names not refreshed: %+v", record)
	}
}

func TestGetOrCreateUserRequiresDefaults(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	if _, _, err := store.GetOrCreateUser(context.Background(), "42", storage.NewUserDefaults{}, now); err == nil {
		t.Fatal("expected incomplete defaults error")
	}
	if _, _, err := store.GetOrCreateUser(context.Background(), " ", storage.NewUserDefaults{Language: "en", Role: "player", Trust: "unset"}, now); err == nil {
		t.Fatal("expected missing id error")
	}
}

func TestSnapshotUpdatesAreIndependent(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	seedUser(t, store, "42", now)

	heroAt := now.Add(time.Minute)
	if err := store.UpdateHeroSnapshot(context.Background(), "42", "hero report", "trusted", heroAt); err != nil {
		t.Fatalf("update hero snapshot: %v", err)
	}
	equipmentAt := now.Add(2 * time.Minute)
	if err := store.UpdateEquipmentSnapshot(context.Background(), "42", "equipment report", equipmentAt); err != nil {
		t.Fatalf("update equipment snapshot: %v", err)
	}

	record, err := store.GetUser(context.Background(), "42")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if record.HeroText != "hero report" || record.HeroUpdatedAt == nil || !record.HeroUpdatedAt.Equal(heroAt) {
		t.Fatalf("hero snapshot = %q at %v", record.HeroText, record.HeroUpdatedAt)
	}
	if record.TrustStatus != "trusted" {
		t.Fatalf("trust status = %q, want trusted", record.TrustStatus)
	}
	if record.EquipmentText != "equipment report" || record.EquipmentUpdatedAt == nil || !record.EquipmentUpdatedAt.Equal(equipmentAt) {
		t.Fatalf("equipment snapshot = %q at %v", record.EquipmentText, record.EquipmentUpdatedAt)
	}
	if record.NumbersText != "" || record.NumbersUpdatedAt != nil {
		t.Fatalf("numbers snapshot touched: %q at %v", record.NumbersText, record.NumbersUpdatedAt)
	}

	numbersAt := now.Add(3 * time.Minute)
	if err := store.UpdateNumbersSnapshot(context.Background(), "42", "numbers report", numbersAt); err != nil {
		t.Fatalf("update numbers snapshot: %v", err)
	}
	record, err = store.GetUser(context.Background(), "42")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if record.HeroText != "hero report" || !record.HeroUpdatedAt.Equal(heroAt) {
		t.Fatalf("hero snapshot changed by numbers write: %q at %v", record.HeroText, record.HeroUpdatedAt)
	}
	if record.NumbersText != "numbers report" || record.NumbersUpdatedAt == nil || !record.NumbersUpdatedAt.Equal(numbersAt) {
		t.Fatalf("numbers snapshot = %q at %v", record.NumbersText, record.NumbersUpdatedAt)
	}
}

func TestSnapshotUpdatesUnknownUser(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	if err := store.UpdateHeroSnapshot(context.Background(), "missing", "hero", "trusted", now); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("hero err = %v, want ErrNotFound", err)
	}
	if err := store.UpdateEquipmentSnapshot(context.Background(), "missing", "equipment", now); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("equipment err = %v, want ErrNotFound", err)
	}
	if err := store.UpdateNumbersSnapshot(context.Background(), "missing", "numbers", now); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("numbers err = %v, want ErrNotFound", err)
	}
}

func TestSetUserLanguage(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	seedUser(t, store, "42", now)

	if err := store.SetUserLanguage(context.Background(), "42", "es"); err != nil {
		t.Fatalf("set user language: %v", err)
	}
	record, err := store.GetUser(context.Background(), "42")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if record.Language != "es" {
		t.Fatalf("language = %q, want es", record.Language)
	}

	if err := store.SetUserLanguage(context.Background(), "missing", "es"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSetUserTrustStatusAndRole(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	seedUser(t, store, "42", now)

	if err := store.SetUserTrustStatus(context.Background(), "42", "untrusted"); err != nil {
		t.Fatalf("set trust status: %v", err)
	}
	if err := store.SetUserRole(context.Background(), "42", "mentor"); err != nil {
		t.Fatalf("set role: %v", err)
	}

	record, err := store.GetUser(context.Background(), "42")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if record.TrustStatus != "untrusted" || record.Role != "mentor" {
		t.Fatalf("record = %+v", record)
	}

	if err := store.SetUserTrustStatus(context.Background(), "missing", "trusted"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("trust err = %v, want ErrNotFound", err)
	}
	if err := store.SetUserRole(context.Background(), "missing", "mentor"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("role err = %v, want ErrNotFound", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)

	if _, err := store.GetUser(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListUsersFiltersByTrustStatus(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	seedUser(t, store, "1", now)
	seedUser(t, store, "2", now.Add(time.Minute))
	seedUser(t, store, "3", now.Add(2*time.Minute))
	if err := store.SetUserTrustStatus(context.Background(), "1", "trusted"); err != nil {
		t.Fatalf("set trust status: %v", err)
	}
	if err := store.SetUserTrustStatus(context.Background(), "3", "trusted"); err != nil {
		t.Fatalf("set trust status: %v", err)
	}

	all, err := store.ListUsers(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}
	if all[0].ID != "3" || all[1].ID != "2" || all[2].ID != "1" {
		t.Fatalf("order = %s, %s, %s", all[0].ID, all[1].ID, all[2].ID)
	}

	trusted, err := store.ListUsers(context.Background(), "trusted", 10)
	if err != nil {
		t.Fatalf("list trusted users: %v", err)
	}
	if len(trusted) != 2 || trusted[0].ID != "3" || trusted[1].ID != "1" {
		t.Fatalf("trusted = %+v", trusted)
	}

	limited, err := store.ListUsers(context.Background(), "", 2)
	if err != nil {
		t.Fatalf("list limited users: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("len(limited) = %d, want 2", len(limited))
	}
}

func TestCountUsersByTrustStatus(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	seedUser(t, store, "1", now)
	seedUser(t, store, "2", now)
	seedUser(t, store, "3", now)
	if err := store.SetUserTrustStatus(context.Background(), "1", "trusted"); err != nil {
		t.Fatalf("set trust status: %v", err)
	}

	counts, err := store.CountUsersByTrustStatus(context.Background())
	if err != nil {
		t.Fatalf("count users: %v", err)
	}
	if counts["trusted"] != 1 || counts["unset"] != 2 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestJournalAppendListPrune(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	entries := []storage.JournalRecord{
		{ID: "entry-1", Identity: "42", Outcome: "processed", Detail: "hero", CreatedAt: now},
		{ID: "entry-2", Identity: "42", Outcome: "rate_limited", CreatedAt: now.Add(time.Minute)},
		{ID: "entry-3", Identity: "7", Outcome: "unrecognized", CreatedAt: now.Add(2 * time.Minute)},
	}
	for _, entry := range entries {
		if err := store.AppendJournal(context.Background(), entry); err != nil {
			t.Fatalf("append journal %s: %v", entry.ID, err)
		}
	}

	listed, err := store.ListJournal(context.Background(), 10)
	if err != nil {
		t.Fatalf("list journal: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("len(listed) = %d, want 3", len(listed))
	}
	if listed[0].ID != "entry-3" || listed[2].ID != "entry-1" {
		t.Fatalf("order = %s ... %s", listed[0].ID, listed[2].ID)
	}
	if listed[2].Detail != "hero" || !listed[2].CreatedAt.Equal(now) {
		t.Fatalf("entry-1 = %+v", listed[2])
	}

	removed, err := store.PruneJournal(context.Background(), now.Add(90*time.Second))
	if err != nil {
		t.Fatalf("prune journal: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	remaining, err := store.ListJournal(context.Background(), 10)
	if err != nil {
		t.Fatalf("list journal after prune: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != "entry-3" {
		t.Fatalf("remaining = %+v", remaining)
	}
}

func TestAppendJournalRequiresFields(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	if err := store.AppendJournal(context.Background(), storage.JournalRecord{Identity: "42", Outcome: "processed", CreatedAt: now}); err == nil {
		t.Fatal("expected missing id error")
	}
	if err := store.AppendJournal(context.Background(), storage.JournalRecord{ID: "entry-1", Outcome: "processed", CreatedAt: now}); err == nil {
		t.Fatal("expected missing identity error")
	}
	if err := store.AppendJournal(context.Background(), storage.JournalRecord{ID: "entry-1", Identity: "42", CreatedAt: now}); err == nil {
		t.Fatal("expected missing outcome error")
	}
}

func seedUser(t *testing.T, store *Store, id string, createdAt time.Time) {
	t.Helper()
	defaults := storage.NewUserDefaults{
		Username:  "player" + id,
		FirstName: "Player",
		Language:  "en",
		Role:      "player",
		Trust:     "unset",
	}
	if _, _, err := store.GetOrCreateUser(context.Background(), id, defaults, createdAt); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	storePath := filepath.Join(t.TempDir(), "castellan.db")
	store, err := Open(storePath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := store.Close(); closeErr != nil {
			t.Fatalf("close store: %v", closeErr)
		}
	})
	return store
}
