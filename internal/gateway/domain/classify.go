package domain

import (
	"strings"
	"time"
)

// Marker tokens the game bot embeds in each report. Classification is
// deliberate substring matching for compatibility; the tokens must not
// change.
const (
	heroMarker      = "🗡️Attack Force:"
	equipmentMarker = "🧳Equipment"
	numbersMarker   = "Additional info"
	trustMarker     = "🇮🇲"
)

// ForwardWindow bounds how long after its forward timestamp a hero report
// is still accepted.
const ForwardWindow = 40 * time.Second

// SnapshotKind identifies which game report a forwarded message carries.
type SnapshotKind string

const (
	// SnapshotHero is a /hero report.
	SnapshotHero SnapshotKind = "hero"
	// SnapshotEquipment is a /bag report.
	SnapshotEquipment SnapshotKind = "equipment"
	// SnapshotNumbers is a /numbers report.
	SnapshotNumbers SnapshotKind = "numbers"
	// SnapshotUnrecognized is any text matching no report marker.
	SnapshotUnrecognized SnapshotKind = "unrecognized"
)

// Classify maps forwarded text to the report kind it carries. When a message
// contains several markers, hero wins over equipment, equipment over numbers.
func Classify(text string) SnapshotKind {
	switch {
	case strings.Contains(text, heroMarker):
		return SnapshotHero
	case strings.Contains(text, equipmentMarker):
		return SnapshotEquipment
	case strings.Contains(text, numbersMarker):
		return SnapshotNumbers
	default:
		return SnapshotUnrecognized
	}
}

// DeriveTrust reports the trust a hero report confers: the castle marker at
// the start of the text marks a trusted player, anything else is untrusted.
func DeriveTrust(text string) TrustStatus {
	if strings.HasPrefix(text, trustMarker) {
		return TrustTrusted
	}
	return TrustUntrusted
}

// ForwardExpired reports whether a hero report's forward timestamp is too
// old to accept at now. Expired reports never overwrite stored trust.
func ForwardExpired(forwardedAt, now time.Time) bool {
	return now.Sub(forwardedAt) > ForwardWindow
}
