// Package sqlite provides SQLite-backed persistence for gateway state.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/castellan/internal/gateway/storage"
	"github.com/louisbranch/castellan/internal/gateway/storage/sqlite/migrations"
	sqlitemigrate "github.com/louisbranch/castellan/internal/platform/storage/sqlitemigrate"
	_ "modernc.org/sqlite"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Store provides SQLite-backed persistence for user records and the
// processing journal.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a gateway SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := store.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) runMigrations() error {
	return sqlitemigrate.ApplyMigrations(s.sqlDB, migrations.FS, "")
}

const userColumns = `id, username, first_name, last_name, language, timezone_offset, role, trust_status,
hero_text, hero_updated_at, equipment_text, equipment_updated_at, numbers_text, numbers_updated_at, created_at`

// GetOrCreateUser returns the record for id, inserting it with the provided
// defaults at createdAt when absent. The boolean reports whether this call
// created the record. Observed profile names refresh on every call.
func (s *Store) GetOrCreateUser(ctx context.Context, id string, defaults storage.NewUserDefaults, createdAt time.Time) (storage.UserRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return storage.UserRecord{}, false, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.UserRecord{}, false, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.UserRecord{}, false, fmt.Errorf("user id is required")
	}
	language := strings.TrimSpace(defaults.Language)
	role := strings.TrimSpace(defaults.Role)
	trust := strings.TrimSpace(defaults.Trust)
	if language == "" || role == "" || trust == "" {
		return storage.UserRecord{}, false, fmt.Errorf("user defaults are incomplete")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.UserRecord{}, false, fmt.Errorf("begin user write: %w", err)
	}
	rollbackWith := func(cause error) (storage.UserRecord, bool, error) {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return storage.UserRecord{}, false, fmt.Errorf("%w: rollback user write: %v", cause, rollbackErr)
		}
		return storage.UserRecord{}, false, cause
	}

	res, err := tx.ExecContext(ctx, `
	INSERT INTO users (id, username, first_name, last_name, language, role, trust_status, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO NOTHING
	`,
		id,
		strings.TrimSpace(defaults.Username),
		strings.TrimSpace(defaults.FirstName),
		strings.TrimSpace(defaults.LastName),
		language,
		role,
		trust,
		toMillis(createdAt),
	)
	if err != nil {
		return rollbackWith(fmt.Errorf("insert user: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return rollbackWith(fmt.Errorf("insert user rows: %w", err))
	}
	created := affected > 0

	if !created {
		if _, err := tx.ExecContext(ctx, `
		UPDATE users SET username = ?, first_name = ?, last_name = ? WHERE id = ?
		`,
			strings.TrimSpace(defaults.Username),
			strings.TrimSpace(defaults.FirstName),
			strings.TrimSpace(defaults.LastName),
			id,
		); err != nil {
			return rollbackWith(fmt.Errorf("refresh user names: %w", err))
		}
	}

	row := tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	record, err := scanUser(row.Scan)
	if err != nil {
		return rollbackWith(fmt.Errorf("load user: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return storage.UserRecord{}, false, fmt.Errorf("commit user write: %w", err)
	}
	return record, created, nil
}

// GetUser loads one user record by id.
func (s *Store) GetUser(ctx context.Context, id string) (storage.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.UserRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.UserRecord{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.UserRecord{}, fmt.Errorf("user id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	record, err := scanUser(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return storage.UserRecord{}, storage.ErrNotFound
		}
		return storage.UserRecord{}, fmt.Errorf("load user: %w", err)
	}
	return record, nil
}

// ListUsers returns records newest first, optionally filtered by trust
// status. A non-positive limit falls back to the default page size.
func (s *Store) ListUsers(ctx context.Context, trustStatus string, limit int) ([]storage.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id DESC LIMIT ?`
	args := []any{limit}
	trustStatus = strings.TrimSpace(trustStatus)
	if trustStatus != "" {
		query = `SELECT ` + userColumns + ` FROM users WHERE trust_status = ? ORDER BY created_at DESC, id DESC LIMIT ?`
		args = []any{trustStatus, limit}
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]storage.UserRecord, 0, limit)
	for rows.Next() {
		record, err := scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return records, nil
}

// UpdateHeroSnapshot overwrites the hero text, trust status, and hero
// timestamp for one record. Sibling snapshot columns are not touched.
func (s *Store) UpdateHeroSnapshot(ctx context.Context, id string, text string, trustStatus string, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("user id is required")
	}
	trustStatus = strings.TrimSpace(trustStatus)
	if trustStatus == "" {
		return fmt.Errorf("trust status is required")
	}

	res, err := s.sqlDB.ExecContext(ctx, `
	UPDATE users SET hero_text = ?, trust_status = ?, hero_updated_at = ? WHERE id = ?
	`, text, trustStatus, toMillis(updatedAt), id)
	if err != nil {
		return fmt.Errorf("update hero snapshot: %w", err)
	}
	return requireRowAffected(res, "update hero snapshot")
}

// UpdateEquipmentSnapshot overwrites the equipment text and timestamp only.
func (s *Store) UpdateEquipmentSnapshot(ctx context.Context, id string, text string, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("user id is required")
	}

	res, err := s.sqlDB.ExecContext(ctx, `
	UPDATE users SET equipment_text = ?, equipment_updated_at = ? WHERE id = ?
	`, text, toMillis(updatedAt), id)
	if err != nil {
		return fmt.Errorf("update equipment snapshot: %w", err)
	}
	return requireRowAffected(res, "update equipment snapshot")
}

// UpdateNumbersSnapshot overwrites the numbers text and timestamp only.
func (s *Store) UpdateNumbersSnapshot(ctx context.Context, id string, text string, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("user id is required")
	}

	res, err := s.sqlDB.ExecContext(ctx, `
	UPDATE users SET numbers_text = ?, numbers_updated_at = ? WHERE id = ?
	`, text, toMillis(updatedAt), id)
	if err != nil {
		return fmt.Errorf("update numbers snapshot: %w", err)
	}
	return requireRowAffected(res, "update numbers snapshot")
}

// SetUserLanguage overwrites the reply language for one record.
func (s *Store) SetUserLanguage(ctx context.Context, id string, language string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("user id is required")
	}
	language = strings.TrimSpace(language)
	if language == "" {
		return fmt.Errorf("language is required")
	}

	res, err := s.sqlDB.ExecContext(ctx, `UPDATE users SET language = ? WHERE id = ?`, language, id)
	if err != nil {
		return fmt.Errorf("set user language: %w", err)
	}
	return requireRowAffected(res, "set user language")
}

// SetUserTrustStatus overwrites the trust status for one record. The next
// processed hero snapshot overwrites it again.
func (s *Store) SetUserTrustStatus(ctx context.Context, id string, trustStatus string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("user id is required")
	}
	trustStatus = strings.TrimSpace(trustStatus)
	if trustStatus == "" {
		return fmt.Errorf("trust status is required")
	}

	res, err := s.sqlDB.ExecContext(ctx, `UPDATE users SET trust_status = ? WHERE id = ?`, trustStatus, id)
	if err != nil {
		return fmt.Errorf("set user trust status: %w", err)
	}
	return requireRowAffected(res, "set user trust status")
}

// SetUserRole overwrites the role for one record.
func (s *Store) SetUserRole(ctx context.Context, id string, role string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("user id is required")
	}
	role = strings.TrimSpace(role)
	if role == "" {
		return fmt.Errorf("role is required")
	}

	res, err := s.sqlDB.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return fmt.Errorf("set user role: %w", err)
	}
	return requireRowAffected(res, "set user role")
}

// CountUsersByTrustStatus returns record counts grouped by trust status.
func (s *Store) CountUsersByTrustStatus(ctx context.Context) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `SELECT trust_status, COUNT(*) FROM users GROUP BY trust_status`)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var trustStatus string
		var count int
		if err := rows.Scan(&trustStatus, &count); err != nil {
			return nil, fmt.Errorf("scan user count row: %w", err)
		}
		counts[trustStatus] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user count rows: %w", err)
	}
	return counts, nil
}

// AppendJournal persists one processing journal row.
func (s *Store) AppendJournal(ctx context.Context, record storage.JournalRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("journal id is required")
	}
	if strings.TrimSpace(record.Identity) == "" {
		return fmt.Errorf("journal identity is required")
	}
	if strings.TrimSpace(record.Outcome) == "" {
		return fmt.Errorf("journal outcome is required")
	}

	if _, err := s.sqlDB.ExecContext(ctx, `
	INSERT INTO journal_entries (id, identity, outcome, detail, created_at)
	VALUES (?, ?, ?, ?, ?)
	`,
		record.ID,
		record.Identity,
		record.Outcome,
		record.Detail,
		toMillis(record.CreatedAt),
	); err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	return nil
}

// ListJournal returns journal rows newest first, at most limit.
func (s *Store) ListJournal(ctx context.Context, limit int) ([]storage.JournalRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
	SELECT id, identity, outcome, detail, created_at
	FROM journal_entries
	ORDER BY created_at DESC, id DESC
	LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]storage.JournalRecord, 0, limit)
	for rows.Next() {
		var record storage.JournalRecord
		var createdAt int64
		if err := rows.Scan(&record.ID, &record.Identity, &record.Outcome, &record.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		record.CreatedAt = fromMillis(createdAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal rows: %w", err)
	}
	return records, nil
}

// PruneJournal deletes journal rows created before the horizon and returns
// how many were removed.
func (s *Store) PruneJournal(ctx context.Context, before time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM journal_entries WHERE created_at < ?`, toMillis(before))
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune journal rows: %w", err)
	}
	return removed, nil
}

type scanner func(dest ...any) error

func scanUser(scan scanner) (storage.UserRecord, error) {
	var record storage.UserRecord
	var heroUpdatedAt sql.NullInt64
	var equipmentUpdatedAt sql.NullInt64
	var numbersUpdatedAt sql.NullInt64
	var createdAt int64
	if err := scan(
		&record.ID,
		&record.Username,
		&record.FirstName,
		&record.LastName,
		&record.Language,
		&record.TimezoneOffset,
		&record.Role,
		&record.TrustStatus,
		&record.HeroText,
		&heroUpdatedAt,
		&record.EquipmentText,
		&equipmentUpdatedAt,
		&record.NumbersText,
		&numbersUpdatedAt,
		&createdAt,
	); err != nil {
		return storage.UserRecord{}, err
	}
	if heroUpdatedAt.Valid {
		value := fromMillis(heroUpdatedAt.Int64)
		record.HeroUpdatedAt = &value
	}
	if equipmentUpdatedAt.Valid {
		value := fromMillis(equipmentUpdatedAt.Int64)
		record.EquipmentUpdatedAt = &value
	}
	if numbersUpdatedAt.Valid {
		value := fromMillis(numbersUpdatedAt.Int64)
		record.NumbersUpdatedAt = &value
	}
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

func requireRowAffected(res sql.Result, operation string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", operation, err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
