package domain

import "time"

// StaleThreshold bounds hero snapshot age for guild tooling access.
const StaleThreshold = 48 * time.Hour

// AccessReason explains an access decision.
type AccessReason string

const (
	// AccessTrustedOK allows access for a trusted record with fresh data.
	AccessTrustedOK AccessReason = "trusted_ok"
	// AccessUntrusted denies access while trust is unset or untrusted.
	AccessUntrusted AccessReason = "untrusted"
	// AccessStaleData denies access when the hero snapshot is too old.
	AccessStaleData AccessReason = "stale_data"
)

// AccessDecision is the outcome of evaluating one record against policy.
// Decisions are transient values and are never persisted.
type AccessDecision struct {
	Allowed bool
	Reason  AccessReason
}

// EvaluateAccess decides whether a record may reach guild tooling at now.
// Trust is checked before freshness: an untrusted record is denied no
// matter how recent its data is.
func EvaluateAccess(record UserRecord, now time.Time) AccessDecision {
	if record.Trust != TrustTrusted {
		return AccessDecision{Reason: AccessUntrusted}
	}
	if record.Hero.UpdatedAt.IsZero() || now.Sub(record.Hero.UpdatedAt) > StaleThreshold {
		return AccessDecision{Reason: AccessStaleData}
	}
	return AccessDecision{Allowed: true, Reason: AccessTrustedOK}
}
