package care

import (
	"vitalwatch-server/internal/models"
)

// ResolveStatus derives the patient status implied by one batch of
// alert candidates. Any high severity alert forces critical; a medium
// alert raises the status to warning but never downgrades an already
// critical patient; otherwise the current status stands. Resolution is
// monotonic within a batch: high always wins over a simultaneous
// medium from the same reading.
func ResolveStatus(current models.PatientStatus, candidates []AlertCandidate) models.PatientStatus {
	hasHigh := false
	hasMedium := false
	for _, c := range candidates {
		switch c.Severity {
		case models.SeverityHigh:
			hasHigh = true
		case models.SeverityMedium:
			hasMedium = true
		}
	}

	switch {
	case hasHigh:
		return models.StatusCritical
	case hasMedium && current != models.StatusCritical:
		return models.StatusWarning
	default:
		return current
	}
}
