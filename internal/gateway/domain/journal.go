package domain

import (
	"context"
	"time"
)

// Outcome is the terminal state of one handled inbound event.
type Outcome string

const (
	// OutcomeProcessed means the event was admitted and fully handled.
	OutcomeProcessed Outcome = "processed"
	// OutcomeRateLimited means admission was refused.
	OutcomeRateLimited Outcome = "rate_limited"
	// OutcomeExpired means a hero forward was older than the forward window.
	OutcomeExpired Outcome = "expired"
	// OutcomeUnrecognized means the content matched no report or command.
	OutcomeUnrecognized Outcome = "unrecognized"
	// OutcomeStorageError means a store operation failed mid-event.
	OutcomeStorageError Outcome = "storage_error"
)

// JournalEntry records how one inbound event terminated.
type JournalEntry struct {
	ID        string
	Identity  string
	Outcome   Outcome
	Detail    string
	CreatedAt time.Time
}

// Journal is the append-only trail of handled events.
type Journal interface {
	AppendJournal(ctx context.Context, entry JournalEntry) error
	// ListJournal returns entries newest first, at most limit.
	ListJournal(ctx context.Context, limit int) ([]JournalEntry, error)
	// PruneJournal deletes entries created before the horizon and returns
	// how many were removed.
	PruneJournal(ctx context.Context, before time.Time) (int64, error)
}
