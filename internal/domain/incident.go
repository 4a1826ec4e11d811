package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ClassifySeverity maps the provider's numeric priority code to a canonical
// severity: 1 and 2 are high impact, 3 medium, everything else low. A missing
// priority is Unknown rather than guessed.
func ClassifySeverity(priority *int) Severity {
	if priority == nil {
		return SeverityUnknown
	}
	switch *priority {
	case 1, 2:
		return SeverityHigh
	case 3:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// DeriveIncidentID produces a deterministic id for records the provider
// shipped without one. Hashing type|lat|lng|start keeps ids unique within a
// batch and stable across reprocessing of the same raw record.
func DeriveIncidentID(incidentType string, loc Coordinate, start time.Time) string {
	input := fmt.Sprintf("%s|%.5f|%.5f|%d", incidentType, loc.Lat, loc.Lng, start.Unix())
	hash := sha256.Sum256([]byte(input))
	return "dev-" + hex.EncodeToString(hash[:8])
}
