// Package domain holds the gateway's user records, report classification,
// and the trust/freshness access policy.
package domain

import (
	"strings"
	"time"
)

// Languages the gateway can reply in.
const (
	LanguageEN = "en"
	LanguageES = "es"
	LanguageRU = "ru"
)

// DefaultLanguage is assigned at registration until the player picks one.
const DefaultLanguage = LanguageEN

// Roles a record can hold. Mentors may override a player's trust status;
// owners may additionally assign roles.
const (
	RolePlayer = "player"
	RoleMentor = "mentor"
	RoleOwner  = "owner"
)

// TrustStatus classifies a player from their most recent hero snapshot.
type TrustStatus string

const (
	// TrustUnset means no hero snapshot has been processed yet.
	TrustUnset TrustStatus = "unset"
	// TrustTrusted means the last hero snapshot carried the castle marker.
	TrustTrusted TrustStatus = "trusted"
	// TrustUntrusted means the last hero snapshot lacked the castle marker.
	TrustUntrusted TrustStatus = "untrusted"
)

// Snapshot is one forwarded game report and when it was stored.
type Snapshot struct {
	Text      string
	UpdatedAt time.Time
}

// UserRecord is the durable profile for one Telegram identity.
type UserRecord struct {
	ID             string
	Username       string
	FirstName      string
	LastName       string
	Language       string
	TimezoneOffset int
	Role           string
	Trust          TrustStatus
	Hero           Snapshot
	Equipment      Snapshot
	Numbers        Snapshot
	CreatedAt      time.Time
}

// DisplayName returns the best human-readable name on the record, falling
// back to the username and finally the identity itself.
func (r UserRecord) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
	if name != "" {
		return name
	}
	if username := strings.TrimSpace(r.Username); username != "" {
		return "@" + username
	}
	return r.ID
}
